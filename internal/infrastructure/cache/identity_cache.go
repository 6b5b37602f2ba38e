package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/vidstream-accounts/internal/domain/entity"
	"github.com/oksasatya/vidstream-accounts/pkg/helpers"
)

const keyPrefix = "account:identity:"

// IdentityCache keeps sanitized accounts in Redis so the auth gate can skip
// the database on every request.
type IdentityCache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewIdentityCache(rdb redis.Cmdable, ttl time.Duration) *IdentityCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &IdentityCache{rdb: rdb, ttl: ttl}
}

func Key(accountID string) string { return keyPrefix + accountID }

func (c *IdentityCache) Get(ctx context.Context, accountID string) (*entity.PublicAccount, bool, error) {
	var a entity.PublicAccount
	found, err := helpers.RedisGetJSON(ctx, c.rdb, Key(accountID), &a)
	if err != nil || !found {
		return nil, false, err
	}
	return &a, true, nil
}

func (c *IdentityCache) Set(ctx context.Context, a entity.PublicAccount) error {
	return helpers.RedisSetJSON(ctx, c.rdb, Key(a.ID), a, c.ttl)
}

func (c *IdentityCache) Delete(ctx context.Context, accountID string) error {
	return helpers.RedisDel(ctx, c.rdb, Key(accountID))
}
