package cache

import (
	"context"
	"testing"

	"github.com/dujiao-next/loyalty/internal/config"
)

func TestKeyJoinsPrefixAndSkipsBlankParts(t *testing.T) {
	old := current.prefix
	t.Cleanup(func() { current.prefix = old })
	current.prefix = "loyalty"

	if got := Key(LoyaltyConfigKey()); got != "loyalty:setting:loyalty_config" {
		t.Fatalf("unexpected key: %s", got)
	}
	if got := Key("ratelimit", " ", "coupon"); got != "loyalty:ratelimit:coupon" {
		t.Fatalf("unexpected key: %s", got)
	}
	if got := Key(UserLockKey(42)); got != "loyalty:lock:user:42" {
		t.Fatalf("unexpected lock key: %s", got)
	}
}

func TestDisabledCacheIsNoop(t *testing.T) {
	if err := InitRedis(&config.RedisConfig{Enabled: false}); err != nil {
		t.Fatalf("init disabled redis failed: %v", err)
	}
	if Enabled() || Client() != nil {
		t.Fatalf("disabled redis should expose no client")
	}

	var dest map[string]int
	hit, err := GetJSON(context.Background(), "any", &dest)
	if err != nil || hit {
		t.Fatalf("disabled cache should miss without error, hit=%v err=%v", hit, err)
	}
	if err := SetJSON(context.Background(), "any", map[string]int{"a": 1}, 0); err != nil {
		t.Fatalf("disabled set should be noop: %v", err)
	}
	if err := Del(context.Background(), "any"); err != nil {
		t.Fatalf("disabled del should be noop: %v", err)
	}
	var lock *Lock
	if err := lock.Release(context.Background()); err != nil {
		t.Fatalf("nil lock release should be noop: %v", err)
	}
}

func TestInitRedisAppliesPrefix(t *testing.T) {
	t.Cleanup(func() {
		_ = Close()
		current.prefix = defaultPrefix
	})
	if err := InitRedis(&config.RedisConfig{Enabled: true, Host: " ", Prefix: " shop "}); err != nil {
		t.Fatalf("init redis failed: %v", err)
	}
	if !Enabled() {
		t.Fatalf("redis should be enabled")
	}
	if got := Client().Options().Addr; got != "127.0.0.1:6379" {
		t.Fatalf("addr want 127.0.0.1:6379 got %s", got)
	}
	if got := Key("a"); got != "shop:a" {
		t.Fatalf("key want shop:a got %s", got)
	}
}
