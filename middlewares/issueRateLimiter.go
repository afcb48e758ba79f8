package middlewares

import (
	"context"
	"fmt"
	"time"

	"publicseva-be/apperrors"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const issueLimitWindow = 24 * time.Hour

// Counter is the subset of the redis client the limiter needs.
type Counter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Decr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	TTL(ctx context.Context, key string) *redis.DurationCmd
}

// RateLimitError carries how long the caller should wait.
type RateLimitError struct {
	Err        *apperrors.Error
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string { return e.Err.Error() }

func (e *RateLimitError) Unwrap() error { return e.Err }

// IssueRateLimiter caps how many issues one user may create per day. The first
// increment of a user's counter starts the window. A creation the handler
// rejects with a 4xx is given back. A nil counter disables it.
func IssueRateLimiter(counter Counter, prefix string, limit int) Guard {
	return func(c *gin.Context) error {
		if counter == nil || limit <= 0 {
			return nil
		}
		identity, ok := GetIdentity(c)
		if !ok {
			return apperrors.Unauthenticated("Not authenticated")
		}

		ctx := c.Request.Context()
		userKey := prefix + ":" + identity.UserID

		count, err := counter.Incr(ctx, userKey).Result()
		if err != nil {
			return apperrors.Internal("redis error incrementing count", fmt.Errorf("incr %s: %w", userKey, err))
		}

		if count == 1 {
			if err := counter.Expire(ctx, userKey, issueLimitWindow).Err(); err != nil {
				return apperrors.Internal("redis error setting TTL", fmt.Errorf("expire %s: %w", userKey, err))
			}
		}

		if count > int64(limit) {
			retryAfter, _ := counter.TTL(ctx, userKey).Result()
			return &RateLimitError{
				Err:        apperrors.New(apperrors.KindRateLimited, fmt.Sprintf("Daily limit of %d issues reached", limit)),
				RetryAfter: retryAfter,
			}
		}

		After(c, func(c *gin.Context) {
			if status := c.Writer.Status(); status < 400 || status >= 500 {
				return
			}
			if err := counter.Decr(context.WithoutCancel(c.Request.Context()), userKey).Err(); err != nil {
				zerolog.Ctx(c.Request.Context()).Warn().Err(err).Str("key", userKey).Msg("Failed to refund issue limit")
			}
		})
		return nil
	}
}
