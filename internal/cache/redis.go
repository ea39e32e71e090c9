package cache

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/dujiao-next/loyalty/internal/config"
	"github.com/dujiao-next/loyalty/internal/constants"

	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "loyalty"

// 未启用时 client 为空，所有读写退化为空操作
var current = struct {
	client *redis.Client
	prefix string
}{prefix: defaultPrefix}

// InitRedis 初始化 Redis 客户端
func InitRedis(cfg *config.RedisConfig) error {
	if cfg == nil || !cfg.Enabled {
		current.client = nil
		return nil
	}
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.Port
	if port <= 0 {
		port = 6379
	}
	current.prefix = strings.TrimSpace(cfg.Prefix)
	if current.prefix == "" {
		current.prefix = defaultPrefix
	}
	current.client = redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(host, strconv.Itoa(port)),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return nil
}

// Ping 检查 Redis 连通性
func Ping(ctx context.Context) error {
	if !Enabled() {
		return nil
	}
	return current.client.Ping(ctx).Err()
}

// Close 关闭 Redis 客户端
func Close() error {
	client := current.client
	current.client = nil
	if client == nil {
		return nil
	}
	return client.Close()
}

// Enabled 判断缓存是否启用
func Enabled() bool {
	return current.client != nil
}

// Client 获取 Redis 客户端，未启用时返回 nil
func Client() *redis.Client {
	return current.client
}

// GetJSON 读取 JSON 缓存，未命中返回 false
func GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !Enabled() {
		return false, nil
	}
	raw, err := current.client.Get(ctx, Key(key)).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return false, nil
	case err != nil:
		return false, err
	}
	return true, json.Unmarshal(raw, dest)
}

// SetJSON 写入 JSON 缓存
func SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !Enabled() {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return current.client.Set(ctx, Key(key), payload, ttl).Err()
}

// Del 删除缓存
func Del(ctx context.Context, keys ...string) error {
	if !Enabled() || len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, key := range keys {
		prefixed[i] = Key(key)
	}
	return current.client.Del(ctx, prefixed...).Err()
}

// Key 拼接带前缀的缓存键，空白片段忽略
func Key(parts ...string) string {
	var b strings.Builder
	b.WriteString(current.prefix)
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			b.WriteByte(':')
			b.WriteString(part)
		}
	}
	return b.String()
}

// LoyaltyConfigKey 等级配置缓存键
func LoyaltyConfigKey() string {
	return "setting:" + constants.SettingKeyLoyaltyConfig
}

// UserLockKey 用户级互斥锁键
func UserLockKey(userID uint) string {
	return "lock:user:" + strconv.FormatUint(uint64(userID), 10)
}
