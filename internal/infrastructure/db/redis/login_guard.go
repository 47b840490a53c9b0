package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultMaxAttempts = 5
	defaultLockout     = 15 * time.Minute
)

// recordFailure increments the counter and gives it a TTL in one step. A key
// left without a TTL is repaired on the next failure.
var recordFailure = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if redis.call("PTTL", KEYS[1]) < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return n
`)

// LoginGuard counts failed logins per subject in Redis. The auth service
// passes "<username>@<client ip>" as the subject, so failures from one client
// cannot lock the account out for everyone else.
// Key format: login:fail:<subject>
//
// The counter's TTL is set on the first failure, so a burst of maxAttempts
// failures locks the subject until that window expires.
type LoginGuard struct {
	client      *redis.Client
	maxAttempts int64
	window      time.Duration
}

func NewLoginGuard(client *redis.Client, maxAttempts int, window time.Duration) *LoginGuard {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	if window <= 0 {
		window = defaultLockout
	}
	return &LoginGuard{client: client, maxAttempts: int64(maxAttempts), window: window}
}

func (g *LoginGuard) Blocked(ctx context.Context, subject string) (bool, error) {
	n, err := g.client.Get(ctx, g.key(subject)).Int64()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("login guard check: %w", err)
	}
	return n >= g.maxAttempts, nil
}

func (g *LoginGuard) RecordFailure(ctx context.Context, subject string) error {
	err := recordFailure.Run(ctx, g.client, []string{g.key(subject)}, g.window.Milliseconds()).Err()
	if err != nil {
		return fmt.Errorf("login guard record: %w", err)
	}
	return nil
}

func (g *LoginGuard) Reset(ctx context.Context, subject string) error {
	if err := g.client.Del(ctx, g.key(subject)).Err(); err != nil {
		return fmt.Errorf("login guard reset: %w", err)
	}
	return nil
}

func (g *LoginGuard) key(subject string) string {
	return "login:fail:" + subject
}
