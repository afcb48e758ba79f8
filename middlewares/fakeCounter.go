package middlewares

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// FakeCounter is a Counter for tests; each call is delegated to its Fn field.
type FakeCounter struct {
	IncrFn   func(ctx context.Context, key string) *redis.IntCmd
	DecrFn   func(ctx context.Context, key string) *redis.IntCmd
	ExpireFn func(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	TTLFn    func(ctx context.Context, key string) *redis.DurationCmd
}

func (f *FakeCounter) Incr(ctx context.Context, key string) *redis.IntCmd {
	if f.IncrFn == nil {
		panic("IncrFn not set")
	}
	return f.IncrFn(ctx, key)
}

func (f *FakeCounter) Decr(ctx context.Context, key string) *redis.IntCmd {
	if f.DecrFn == nil {
		panic("DecrFn not set")
	}
	return f.DecrFn(ctx, key)
}

func (f *FakeCounter) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	if f.ExpireFn == nil {
		panic("ExpireFn not set")
	}
	return f.ExpireFn(ctx, key, expiration)
}

func (f *FakeCounter) TTL(ctx context.Context, key string) *redis.DurationCmd {
	if f.TTLFn == nil {
		panic("TTLFn not set")
	}
	return f.TTLFn(ctx, key)
}

// NewCountingFake returns a FakeCounter backed by a plain map, with every key
// reporting ttl as its remaining time.
func NewCountingFake(ttl time.Duration) *FakeCounter {
	counts := make(map[string]int64)
	return &FakeCounter{
		IncrFn: func(_ context.Context, key string) *redis.IntCmd {
			counts[key]++
			return redis.NewIntResult(counts[key], nil)
		},
		DecrFn: func(_ context.Context, key string) *redis.IntCmd {
			counts[key]--
			return redis.NewIntResult(counts[key], nil)
		},
		ExpireFn: func(context.Context, string, time.Duration) *redis.BoolCmd {
			return redis.NewBoolResult(true, nil)
		},
		TTLFn: func(context.Context, string) *redis.DurationCmd {
			return redis.NewDurationResult(ttl, nil)
		},
	}
}
