package service

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/dujiao-next/loyalty/internal/constants"
)

// CodeGeneratorConfig 推广码生成规则
type CodeGeneratorConfig struct {
	Prefix       string
	DateLayout   string
	SuffixLength int
	Charset      string
	MaxAttempts  int
}

// CodeGenerator 推广码生成器：前缀 + 日期段 + 随机后缀，冲突时有限次重试
type CodeGenerator struct {
	cfg    CodeGeneratorConfig
	now    func() time.Time
	suffix func(length int, charset string) (string, error)
}

// NewCodeGenerator 创建推广码生成器，缺省字段回落到默认规则
func NewCodeGenerator(cfg CodeGeneratorConfig) *CodeGenerator {
	cfg.Prefix = strings.ToUpper(strings.TrimSpace(cfg.Prefix))
	if strings.TrimSpace(cfg.DateLayout) == "" {
		cfg.DateLayout = constants.AffiliateCodeDateLayout
	}
	if cfg.SuffixLength <= 0 {
		cfg.SuffixLength = constants.AffiliateCodeSuffixLength
	}
	if cfg.Charset == "" {
		cfg.Charset = constants.AffiliateCodeCharset
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = constants.AffiliateCodeMaxAttempts
	}
	return &CodeGenerator{
		cfg:    cfg,
		now:    time.Now,
		suffix: randomCodeSuffix,
	}
}

// MaxAttempts 最大尝试次数
func (g *CodeGenerator) MaxAttempts() int {
	return g.cfg.MaxAttempts
}

// SeedPrefix 当前周期的码前缀（如 FS1026）
func (g *CodeGenerator) SeedPrefix() string {
	return g.cfg.Prefix + g.now().Format(g.cfg.DateLayout)
}

// Mint 生成并通过 reserve 原子占用推广码。
// reserve 返回 ErrAffiliateCodeTaken 时换一个后缀重试，其余错误直接返回。
func (g *CodeGenerator) Mint(seedPrefix string, reserve func(code string) error) (string, error) {
	if reserve == nil {
		return "", ErrInvalidInput
	}
	seed := strings.ToUpper(strings.TrimSpace(seedPrefix))
	for attempt := 1; attempt <= g.cfg.MaxAttempts; attempt++ {
		suffix, err := g.suffix(g.cfg.SuffixLength, g.cfg.Charset)
		if err != nil {
			return "", err
		}
		code := seed + suffix
		err = reserve(code)
		if err == nil {
			return code, nil
		}
		if errors.Is(err, ErrAffiliateCodeTaken) {
			continue
		}
		return "", err
	}
	return "", fmt.Errorf("%w: %d attempts", ErrCollisionExhausted, g.cfg.MaxAttempts)
}

func randomCodeSuffix(length int, charset string) (string, error) {
	if length <= 0 || charset == "" {
		return "", ErrInvalidInput
	}
	max := big.NewInt(int64(len(charset)))
	buf := make([]byte, length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = charset[n.Int64()]
	}
	return string(buf), nil
}
