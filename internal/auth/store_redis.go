// Copyright (c) 2026 Identra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/identra/internal/platform/constants"
)

// RedisTokenDenylist implements TokenDenylist on Redis.
//
// Each revoked jti becomes a key with a TTL equal to the token's remaining
// lifetime, so revocations expire exactly when the token itself would have.
type RedisTokenDenylist struct {
	client *redis.Client
}

// NewTokenDenylist creates a Redis-backed access-token denylist.
func NewTokenDenylist(client *redis.Client) *RedisTokenDenylist {
	return &RedisTokenDenylist{client: client}
}

func denylistKey(jti string) string {
	return constants.RedisPrefixDeniedToken + jti
}

// Deny revokes the token ID for the given remaining lifetime. A non-positive
// TTL means the token is already expired and there is nothing to record.
func (denylist *RedisTokenDenylist) Deny(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	if err := denylist.client.Set(ctx, denylistKey(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("redis_denylist_deny_failed: %w", err)
	}

	return nil
}

// IsDenied reports whether the token ID has been revoked.
func (denylist *RedisTokenDenylist) IsDenied(ctx context.Context, jti string) (bool, error) {
	err := denylist.client.Get(ctx, denylistKey(jti)).Err()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("redis_denylist_check_failed: %w", err)
	}

	return true, nil
}
