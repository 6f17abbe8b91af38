package services

import (
	"context"
	"strings"
	"time"

	"github.com/discussion-system/discussion-system/pkg/cache"
)

// LoginGuard throttles repeated failed logins per email.
type LoginGuard interface {
	Allow(ctx context.Context, email string) (bool, error)
	RecordFailure(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}

type RedisLoginGuard struct {
	client      *cache.RedisClient
	maxAttempts int64
	window      time.Duration
}

func NewRedisLoginGuard(client *cache.RedisClient, maxAttempts int, window time.Duration) *RedisLoginGuard {
	return &RedisLoginGuard{
		client:      client,
		maxAttempts: int64(maxAttempts),
		window:      window,
	}
}

func loginFailuresKey(email string) string {
	return "login_failures:" + strings.ToLower(email)
}

func (g *RedisLoginGuard) Allow(ctx context.Context, email string) (bool, error) {
	if g.maxAttempts <= 0 {
		return true, nil
	}
	n, err := g.client.GetInt(ctx, loginFailuresKey(email))
	if err != nil {
		return true, err
	}
	return n < g.maxAttempts, nil
}

func (g *RedisLoginGuard) RecordFailure(ctx context.Context, email string) error {
	_, err := g.client.IncrWithin(ctx, loginFailuresKey(email), g.window)
	return err
}

func (g *RedisLoginGuard) Reset(ctx context.Context, email string) error {
	return g.client.Delete(ctx, loginFailuresKey(email))
}

// NopLoginGuard never throttles; used when redis is disabled.
type NopLoginGuard struct{}

func (NopLoginGuard) Allow(context.Context, string) (bool, error) { return true, nil }

func (NopLoginGuard) RecordFailure(context.Context, string) error { return nil }

func (NopLoginGuard) Reset(context.Context, string) error { return nil }
