package cache

import (
	"context"
	"testing"
	"time"

	"github.com/leafcart/internal/config"
)

func TestDisabledCacheIsNoop(t *testing.T) {
	if err := InitRedis(&config.RedisConfig{Enabled: false}); err != nil {
		t.Fatalf("init disabled redis failed: %v", err)
	}
	ctx := context.Background()
	if Enabled() || Client() != nil {
		t.Fatalf("cache should be disabled")
	}
	var dest map[string]int
	hit, err := GetJSON(ctx, "k", &dest)
	if err != nil || hit {
		t.Fatalf("disabled get should miss, hit=%v err=%v", hit, err)
	}
	if err := SetJSON(ctx, "k", map[string]int{"a": 1}, time.Minute); err != nil {
		t.Fatalf("disabled set failed: %v", err)
	}
	if err := Del(ctx, "k"); err != nil {
		t.Fatalf("disabled del failed: %v", err)
	}
}

func TestTryLockWithoutRedis(t *testing.T) {
	_ = InitRedis(nil)
	ctx := context.Background()
	token, ok, err := TryLock(ctx, OrderLockKey(1, "abc"), time.Second)
	if err != nil || !ok || token != "" {
		t.Fatalf("unexpected lock result token=%q ok=%v err=%v", token, ok, err)
	}
	if err := Unlock(ctx, OrderLockKey(1, "abc"), token); err != nil {
		t.Fatalf("unlock failed: %v", err)
	}
	if _, _, err := TryLock(ctx, " ", time.Second); err != ErrLockKeyEmpty {
		t.Fatalf("expected ErrLockKeyEmpty, got %v", err)
	}
}

func TestKeys(t *testing.T) {
	redisPrefix = "lc"
	if got := BuildKey(CartSnapshotKey(7, "usd")); got != "lc:cart:7:USD" {
		t.Fatalf("unexpected cart key: %s", got)
	}
	if got := BuildKey(OrderLockKey(7, "k1")); got != "lc:order:lock:7:k1" {
		t.Fatalf("unexpected lock key: %s", got)
	}
}
