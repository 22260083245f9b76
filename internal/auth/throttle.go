package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const throttleKeyPrefix = "login:failures:" // login:failures:{lower(email)}

// Default throttle settings.
const (
	DefaultMaxFailures = 5
	DefaultLockout     = 15 * time.Minute
)

// RedisThrottle counts failed logins per email in Redis. Once MaxFailures
// is reached the email is locked out until the counter expires.
type RedisThrottle struct {
	client      *redis.Client
	maxFailures int64
	lockout     time.Duration
}

// ThrottleConfig holds configuration for the Redis throttle.
type ThrottleConfig struct {
	Client      *redis.Client
	MaxFailures int
	Lockout     time.Duration
}

// NewRedisThrottle creates a new Redis-backed login throttle.
func NewRedisThrottle(cfg ThrottleConfig) *RedisThrottle {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = DefaultMaxFailures
	}
	if cfg.Lockout <= 0 {
		cfg.Lockout = DefaultLockout
	}
	return &RedisThrottle{
		client:      cfg.Client,
		maxFailures: int64(cfg.MaxFailures),
		lockout:     cfg.Lockout,
	}
}

// Allow reports whether email may attempt a login.
func (t *RedisThrottle) Allow(ctx context.Context, email string) (bool, error) {
	n, err := t.client.Get(ctx, t.key(email)).Int64()
	if errors.Is(err, redis.Nil) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading login failures: %w", err)
	}
	return n < t.maxFailures, nil
}

// RecordFailure increments the failure counter of email. The lockout window
// starts at the first failure.
func (t *RedisThrottle) RecordFailure(ctx context.Context, email string) error {
	key := t.key(email)

	n, err := t.client.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("recording login failure: %w", err)
	}
	if n == 1 {
		if err := t.client.Expire(ctx, key, t.lockout).Err(); err != nil {
			return fmt.Errorf("setting lockout window: %w", err)
		}
	}
	return nil
}

// Reset clears the failure counter of email.
func (t *RedisThrottle) Reset(ctx context.Context, email string) error {
	if err := t.client.Del(ctx, t.key(email)).Err(); err != nil {
		return fmt.Errorf("resetting login failures: %w", err)
	}
	return nil
}

func (t *RedisThrottle) key(email string) string {
	return throttleKeyPrefix + strings.ToLower(strings.TrimSpace(email))
}

var _ LoginThrottle = (*RedisThrottle)(nil)
