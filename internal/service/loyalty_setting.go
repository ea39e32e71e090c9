package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dujiao-next/loyalty/internal/cache"
	"github.com/dujiao-next/loyalty/internal/constants"
	"github.com/dujiao-next/loyalty/internal/logger"
	"github.com/dujiao-next/loyalty/internal/models"
)

const (
	loyaltyTierNameMaxRune = 32
	loyaltyTierMaxCount    = 50
	loyaltyCacheTimeout    = 500 * time.Millisecond
)

// LoyaltyTier 会员等级（名称 + 积分门槛）
type LoyaltyTier struct {
	Name      string `json:"name"`
	Threshold int    `json:"threshold"`
}

// LoyaltySetting 会员体系配置
type LoyaltySetting struct {
	Tiers              []LoyaltyTier `json:"tiers"`
	NotifyOnTierChange bool          `json:"notify_on_tier_change"`
	MentionTierCoupon  bool          `json:"mention_tier_coupon"`
}

// LoyaltyDefaultSetting 默认会员体系配置
func LoyaltyDefaultSetting() LoyaltySetting {
	return LoyaltySetting{
		Tiers: []LoyaltyTier{
			{Name: constants.TierSubscriber, Threshold: 0},
			{Name: constants.TierRookie, Threshold: 25},
			{Name: constants.TierHustler, Threshold: 50},
			{Name: constants.TierPlaymaker, Threshold: 100},
			{Name: constants.TierMaverick, Threshold: 200},
			{Name: constants.TierTrailblazer, Threshold: 350},
			{Name: constants.TierLegend, Threshold: 500},
			{Name: constants.TierElite, Threshold: 700},
			{Name: constants.TierOG, Threshold: 1000},
		},
		NotifyOnTierChange: true,
		MentionTierCoupon:  true,
	}
}

// NormalizeLoyaltySetting 归一化会员配置：去除空白名称并按门槛升序排列
func NormalizeLoyaltySetting(setting LoyaltySetting) LoyaltySetting {
	tiers := make([]LoyaltyTier, 0, len(setting.Tiers))
	for _, tier := range setting.Tiers {
		name := clipRunes(strings.TrimSpace(tier.Name), loyaltyTierNameMaxRune)
		if name == "" {
			continue
		}
		tiers = append(tiers, LoyaltyTier{Name: name, Threshold: tier.Threshold})
		if len(tiers) >= loyaltyTierMaxCount {
			break
		}
	}
	sort.SliceStable(tiers, func(i, j int) bool {
		return tiers[i].Threshold < tiers[j].Threshold
	})
	setting.Tiers = tiers
	return setting
}

// ValidateLoyaltySetting 校验会员配置
func ValidateLoyaltySetting(setting LoyaltySetting) error {
	normalized := NormalizeLoyaltySetting(setting)
	if len(normalized.Tiers) == 0 {
		return fmt.Errorf("%w: tiers must not be empty", ErrLoyaltyConfigInvalid)
	}
	if normalized.Tiers[0].Threshold != 0 {
		return fmt.Errorf("%w: baseline tier threshold must be 0", ErrLoyaltyConfigInvalid)
	}
	seen := make(map[string]struct{}, len(normalized.Tiers))
	for i, tier := range normalized.Tiers {
		key := strings.ToLower(tier.Name)
		if _, ok := seen[key]; ok {
			return fmt.Errorf("%w: duplicate tier %s", ErrLoyaltyConfigInvalid, tier.Name)
		}
		seen[key] = struct{}{}
		if i > 0 && tier.Threshold <= normalized.Tiers[i-1].Threshold {
			return fmt.Errorf("%w: thresholds must be strictly increasing (%s)", ErrLoyaltyConfigInvalid, tier.Name)
		}
	}
	return nil
}

// LoyaltySettingToMap 将会员配置转换为 settings 存储结构
func LoyaltySettingToMap(setting LoyaltySetting) map[string]interface{} {
	normalized := NormalizeLoyaltySetting(setting)
	tiers := make([]interface{}, 0, len(normalized.Tiers))
	for _, tier := range normalized.Tiers {
		tiers = append(tiers, map[string]interface{}{
			"name":      tier.Name,
			"threshold": tier.Threshold,
		})
	}
	return map[string]interface{}{
		"tiers":                 tiers,
		"notify_on_tier_change": normalized.NotifyOnTierChange,
		"mention_tier_coupon":   normalized.MentionTierCoupon,
	}
}

func loyaltySettingFromJSON(raw models.JSON, fallback LoyaltySetting) LoyaltySetting {
	result := fallback

	if tiersRaw, ok := raw["tiers"]; ok {
		if tiers := parseLoyaltyTiers(tiersRaw); len(tiers) > 0 {
			result.Tiers = tiers
		}
	}
	if notifyRaw, ok := raw["notify_on_tier_change"]; ok {
		result.NotifyOnTierChange = settingBool(notifyRaw)
	}
	if mentionRaw, ok := raw["mention_tier_coupon"]; ok {
		result.MentionTierCoupon = settingBool(mentionRaw)
	}

	result = NormalizeLoyaltySetting(result)
	if err := ValidateLoyaltySetting(result); err != nil {
		logger.Warnw("loyalty_setting_invalid_fallback_default", "error", err)
		return fallback
	}
	return result
}

func parseLoyaltyTiers(raw interface{}) []LoyaltyTier {
	items, ok := raw.([]interface{})
	if !ok {
		if typed, ok := raw.([]LoyaltyTier); ok {
			return append([]LoyaltyTier(nil), typed...)
		}
		return nil
	}
	tiers := make([]LoyaltyTier, 0, len(items))
	for _, item := range items {
		entry, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		threshold, err := settingInt(entry["threshold"])
		if err != nil {
			continue
		}
		tiers = append(tiers, LoyaltyTier{
			Name:      settingText(entry["name"]),
			Threshold: threshold,
		})
	}
	return tiers
}

// GetLoyaltySetting 获取会员配置（Redis 缓存 -> settings -> 默认值）
func (s *SettingService) GetLoyaltySetting() (LoyaltySetting, error) {
	fallback := LoyaltyDefaultSetting()
	if s == nil {
		return fallback, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), loyaltyCacheTimeout)
	defer cancel()
	var cached LoyaltySetting
	if hit, err := cache.GetJSON(ctx, cache.LoyaltyConfigKey(), &cached); err != nil {
		logger.Warnw("loyalty_setting_cache_get_failed", "error", err)
	} else if hit && ValidateLoyaltySetting(cached) == nil {
		return NormalizeLoyaltySetting(cached), nil
	}

	value, err := s.GetByKey(constants.SettingKeyLoyaltyConfig)
	if err != nil {
		return fallback, err
	}
	setting := fallback
	if value != nil {
		setting = loyaltySettingFromJSON(value, fallback)
	}
	if err := cache.SetJSON(ctx, cache.LoyaltyConfigKey(), setting, s.cacheTTL); err != nil {
		logger.Warnw("loyalty_setting_cache_set_failed", "error", err)
	}
	return setting, nil
}

// UpdateLoyaltySetting 更新会员配置并清除缓存
func (s *SettingService) UpdateLoyaltySetting(setting LoyaltySetting) (LoyaltySetting, error) {
	normalized := NormalizeLoyaltySetting(setting)
	if err := ValidateLoyaltySetting(normalized); err != nil {
		return LoyaltyDefaultSetting(), err
	}
	if _, err := s.repo.Upsert(constants.SettingKeyLoyaltyConfig, models.JSON(LoyaltySettingToMap(normalized))); err != nil {
		return LoyaltyDefaultSetting(), err
	}
	ctx, cancel := context.WithTimeout(context.Background(), loyaltyCacheTimeout)
	defer cancel()
	if err := cache.Del(ctx, cache.LoyaltyConfigKey()); err != nil {
		logger.Warnw("loyalty_setting_cache_invalidate_failed", "error", err)
	}
	return normalized, nil
}

// ResolveTier 返回门槛不超过 points 的最高等级；低于首个门槛时返回基础等级
func ResolveTier(points int, tiers []LoyaltyTier) LoyaltyTier {
	if len(tiers) == 0 {
		return LoyaltyTier{}
	}
	resolved := tiers[0]
	for _, tier := range tiers[1:] {
		if points < tier.Threshold {
			break
		}
		resolved = tier
	}
	return resolved
}

// tierIndex 返回等级在表中的位置，未找到为 -1
func tierIndex(tiers []LoyaltyTier, name string) int {
	for i, tier := range tiers {
		if strings.EqualFold(tier.Name, name) {
			return i
		}
	}
	return -1
}
