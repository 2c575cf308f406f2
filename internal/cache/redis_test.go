package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func unreachableRedis() *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1", // nothing listening
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	return NewRedisStore(client, "test:")
}

func TestRedisStore_UnreachableIsNotAMiss(t *testing.T) {
	s := unreachableRedis()
	defer s.Close()
	ctx := context.Background()

	_, err := s.Get(ctx, "k")
	if err == nil {
		t.Fatal("expected error from unreachable redis, got nil")
	}
	if errors.Is(err, ErrMiss) {
		t.Error("connection failure must not be reported as a miss")
	}

	if err := s.Set(ctx, "k", []byte("v"), time.Minute); err == nil {
		t.Error("expected Set error from unreachable redis")
	}
	if err := s.Ping(ctx); err == nil {
		t.Error("expected Ping error from unreachable redis")
	}
}

func TestCache_OverUnreachableRedisDegradesToMiss(t *testing.T) {
	c := New(unreachableRedis())
	defer c.Close()

	if got := c.LoadGeo(context.Background()); got != nil {
		t.Errorf("LoadGeo = %+v, want nil", got)
	}
}

func TestNewRedisClient(t *testing.T) {
	client := NewRedisClient(RedisConfig{Address: "localhost:6379", DB: 2})
	defer client.Close()

	opts := client.Options()
	if opts.Addr != "localhost:6379" || opts.DB != 2 {
		t.Errorf("options = %s db %d", opts.Addr, opts.DB)
	}
}
