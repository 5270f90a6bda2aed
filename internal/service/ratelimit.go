package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	maxLoginFailures = 5
	loginWindow      = 15 * time.Minute
)

// RateLimiter counts failed logins per email and client address in Redis.
// Without a Redis client every check passes.
type RateLimiter struct {
	redis *redis.Client
}

func NewRateLimiter(redis *redis.Client) *RateLimiter {
	return &RateLimiter{
		redis: redis,
	}
}

func loginKey(email, ip string) string {
	return fmt.Sprintf("login_attempts:%s|%s", email, ip)
}

func (r *RateLimiter) enabled() bool {
	return r != nil && r.redis != nil
}

func (r *RateLimiter) CheckLogin(ctx context.Context, email, ip string) error {
	if !r.enabled() {
		return nil
	}

	count, err := r.redis.Get(ctx, loginKey(email, ip)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("failed to read login attempts: %w", err)
	}

	if count >= maxLoginFailures {
		return ErrTooManyAttempts
	}

	return nil
}

func (r *RateLimiter) RecordFailedLogin(ctx context.Context, email, ip string) error {
	if !r.enabled() {
		return nil
	}
	key := loginKey(email, ip)

	count, err := r.redis.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("failed to count login attempt: %w", err)
	}

	if count == 1 {
		if err := r.redis.Expire(ctx, key, loginWindow).Err(); err != nil {
			return fmt.Errorf("failed to expire login attempts: %w", err)
		}
	}

	return nil
}

func (r *RateLimiter) ResetAttempts(ctx context.Context, email, ip string) error {
	if !r.enabled() {
		return nil
	}
	return r.redis.Del(ctx, loginKey(email, ip)).Err()
}
