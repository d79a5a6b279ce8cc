// Package rate is the server-side login throttle: fixed-window counters in
// redis, keyed by email and client IP. It backs up the client-side limiter
// for callers that bypass the official client.
package rate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds throttle tuning parameters.
type Config struct {
	MaxLoginAttempts int
	Cooldown         time.Duration
	EnableIPThrottle bool
}

// Limiter enforces per-email and per-IP login attempt budgets using
// redis counters with fixed-window semantics.
type Limiter struct {
	redis  redis.UniversalClient
	config Config
}

// New creates a Limiter backed by the given redis client.
func New(redisClient redis.UniversalClient, cfg Config) *Limiter {
	return &Limiter{
		redis:  redisClient,
		config: cfg,
	}
}

// Check reports whether the email+IP pair is still within the login
// attempt budget. Returns ErrRateLimited when the budget is exhausted.
func (l *Limiter) Check(ctx context.Context, email, ip string) error {
	if err := l.checkCounter(ctx, loginEmailKey(email)); err != nil {
		return err
	}

	if l.config.EnableIPThrottle && ip != "" {
		if err := l.checkCounter(ctx, loginIPKey(ip)); err != nil {
			return err
		}
	}

	return nil
}

// Increment records a failed login attempt for the email+IP pair.
func (l *Limiter) Increment(ctx context.Context, email, ip string) error {
	count, err := l.incrementWithTTL(ctx, loginEmailKey(email))
	if err != nil {
		return err
	}
	if count > int64(l.config.MaxLoginAttempts) {
		return ErrRateLimited
	}

	if l.config.EnableIPThrottle && ip != "" {
		count, err = l.incrementWithTTL(ctx, loginIPKey(ip))
		if err != nil {
			return err
		}
		if count > int64(l.config.MaxLoginAttempts) {
			return ErrRateLimited
		}
	}

	return nil
}

// Reset clears the failed-login counters for the email+IP pair. Called
// after a successful login.
func (l *Limiter) Reset(ctx context.Context, email, ip string) error {
	keys := []string{loginEmailKey(email)}
	if l.config.EnableIPThrottle && ip != "" {
		keys = append(keys, loginIPKey(ip))
	}

	if err := l.redis.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return nil
}

func (l *Limiter) checkCounter(ctx context.Context, key string) error {
	count, err := l.redis.Get(ctx, key).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	if count >= int64(l.config.MaxLoginAttempts) {
		return ErrRateLimited
	}

	return nil
}

func (l *Limiter) incrementWithTTL(ctx context.Context, key string) (int64, error) {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	// Fixed-window semantics: set TTL only for the first hit in the window.
	if count == 1 {
		if err := l.redis.Expire(ctx, key, l.config.Cooldown).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}

	return count, nil
}

func loginEmailKey(email string) string { return "throttle:login:email:" + email }

func loginIPKey(ip string) string { return "throttle:login:ip:" + ip }
