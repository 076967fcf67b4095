package ratelimit

import (
	"context"
	"fmt"
	"time"

	"anoa.com/newtongame/pkg/apperror"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Limiter allows one action per user per window. A nil Redis client allows everything.
type Limiter struct {
	rdb *redis.Client
}

func New(rdb *redis.Client) *Limiter {
	return &Limiter{rdb: rdb}
}

// ExceededError is returned when an action is attempted inside its window.
type ExceededError struct {
	RetryAfter time.Duration
}

func (e *ExceededError) Error() string {
	secs := int(e.RetryAfter.Round(time.Second) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return fmt.Sprintf("Too many requests, try again in %ds", secs)
}

func (e *ExceededError) Unwrap() error {
	return apperror.ErrRateLimitExceeded
}

func key(userID uuid.UUID, action string) string {
	return fmt.Sprintf("rate_limit:user:%s:%s", userID.String(), action)
}

// Allow claims the window for userID and action. It reports false while a
// previous claim is still live.
func (l *Limiter) Allow(ctx context.Context, userID uuid.UUID, action string, window time.Duration) (bool, error) {
	if l == nil || l.rdb == nil || window <= 0 {
		return true, nil
	}

	wasSet, err := l.rdb.SetNX(ctx, key(userID, action), "locked", window).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit in redis: %w", err)
	}
	return wasSet, nil
}

// RetryAfter is the time left on the current window.
func (l *Limiter) RetryAfter(ctx context.Context, userID uuid.UUID, action string) (time.Duration, error) {
	if l == nil || l.rdb == nil {
		return 0, nil
	}
	ttl, err := l.rdb.TTL(ctx, key(userID, action)).Result()
	if err != nil {
		return 0, err
	}
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}

// Clear releases the window, e.g. when the limited action failed.
func (l *Limiter) Clear(ctx context.Context, userID uuid.UUID, action string) error {
	if l == nil || l.rdb == nil {
		return nil
	}
	return l.rdb.Del(ctx, key(userID, action)).Err()
}
