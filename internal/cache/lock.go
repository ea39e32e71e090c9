package cache

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockNotAcquired 等待超时仍未拿到锁
var ErrLockNotAcquired = errors.New("cache lock not acquired")

const lockRetryInterval = 25 * time.Millisecond

var releaseLockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

// Lock 已持有的分布式锁
type Lock struct {
	key   string
	token string
}

// AcquireLock 通过 SET NX PX 获取分布式锁，在 ctx 截止前轮询等待
func AcquireLock(ctx context.Context, key string, ttl time.Duration) (*Lock, error) {
	if !Enabled() {
		return nil, errors.New("redis not enabled")
	}
	fullKey := Key(key)
	token := uuid.NewString()
	ticker := time.NewTicker(lockRetryInterval)
	defer ticker.Stop()
	for {
		ok, err := current.client.SetNX(ctx, fullKey, token, ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			return &Lock{key: fullKey, token: token}, nil
		}
		select {
		case <-ctx.Done():
			return nil, ErrLockNotAcquired
		case <-ticker.C:
		}
	}
}

// Release 释放锁，仅当令牌匹配时删除
func (l *Lock) Release(ctx context.Context) error {
	if l == nil || !Enabled() {
		return nil
	}
	return releaseLockScript.Run(ctx, current.client, []string{l.key}, l.token).Err()
}
