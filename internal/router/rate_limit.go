package router

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	handlershared "github.com/dujiao-next/loyalty/internal/http/handlers/shared"
	"github.com/dujiao-next/loyalty/internal/http/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimitKeyFunc 生成限流 key 的函数
type RateLimitKeyFunc func(*gin.Context) string

// RateLimitRule 固定窗口限流规则，BlockSeconds > 0 时超限后封禁
type RateLimitRule struct {
	Prefix        string
	WindowSeconds int
	MaxRequests   int
	BlockSeconds  int
	MessageKey    string
}

func (r RateLimitRule) enabled() bool {
	return r.WindowSeconds > 0 && r.MaxRequests > 0
}

func (r RateLimitRule) messageKey() string {
	if key := strings.TrimSpace(r.MessageKey); key != "" {
		return key
	}
	return "error.rate_limited"
}

func (r RateLimitRule) bucket(raw string) string {
	if r.Prefix == "" {
		return raw
	}
	return r.Prefix + ":" + raw
}

// KEYS[1] 计数桶；ARGV: 窗口秒数, 阈值, 封禁秒数。返回 {当前计数, 剩余秒数}
var fixedWindowScript = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
	redis.call("EXPIRE", KEYS[1], ARGV[1])
end
if n == tonumber(ARGV[2]) + 1 and tonumber(ARGV[3]) > 0 then
	redis.call("EXPIRE", KEYS[1], ARGV[3])
end
return {n, redis.call("TTL", KEYS[1])}
`)

type rateDecision struct {
	count int64
	ttl   int64
}

func hitBucket(ctx context.Context, client *redis.Client, bucket string, rule RateLimitRule) (rateDecision, error) {
	values, err := fixedWindowScript.Run(ctx, client, []string{bucket}, rule.WindowSeconds, rule.MaxRequests, rule.BlockSeconds).Int64Slice()
	if err != nil {
		return rateDecision{}, err
	}
	if len(values) < 2 {
		return rateDecision{}, fmt.Errorf("unexpected rate limit reply: %v", values)
	}
	return rateDecision{count: values[0], ttl: values[1]}, nil
}

// RateLimitMiddleware Redis 频率限制中间件，Redis 未配置时放行
func RateLimitMiddleware(client *redis.Client, rule RateLimitRule, keyFunc RateLimitKeyFunc) gin.HandlerFunc {
	if keyFunc == nil {
		keyFunc = KeyByIP
	}
	return func(c *gin.Context) {
		if client == nil || !rule.enabled() {
			c.Next()
			return
		}

		raw := strings.TrimSpace(keyFunc(c))
		if raw == "" {
			raw = c.ClientIP()
		}
		decision, err := hitBucket(c.Request.Context(), client, rule.bucket(raw), rule)
		if err != nil {
			handlershared.RespondError(c, response.CodeInternal, "error.rate_limit_unavailable", err)
			c.Abort()
			return
		}
		if decision.count <= int64(rule.MaxRequests) {
			c.Next()
			return
		}

		wait := retryAfterSeconds(decision.ttl, rule)
		c.Header("Retry-After", strconv.Itoa(wait))
		msg := fmt.Sprintf(handlershared.Message(rule.messageKey()), wait)
		response.ErrorWithData(c, response.CodeTooManyRequests, msg, gin.H{"retry_after": wait})
		c.Abort()
	}
}

// retryAfterSeconds 依次取 TTL、封禁时长、窗口时长，至少 1 秒
func retryAfterSeconds(ttlSeconds int64, rule RateLimitRule) int {
	for _, candidate := range []int{int(ttlSeconds), rule.BlockSeconds, rule.WindowSeconds} {
		if candidate >= 1 {
			return candidate
		}
	}
	return 1
}

// KeyByIP 使用 IP 作为限流 key
func KeyByIP(c *gin.Context) string {
	return c.ClientIP()
}

// KeyByUserID 已鉴权请求按用户限流，否则回退到 IP
func KeyByUserID(c *gin.Context) string {
	if id, ok := c.Get(handlershared.ContextUserIDKey); ok {
		if userID, _ := id.(uint); userID > 0 {
			return "user:" + strconv.FormatUint(uint64(userID), 10)
		}
	}
	return c.ClientIP()
}
