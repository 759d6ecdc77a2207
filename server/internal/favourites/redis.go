// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package favourites

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// deviceTTL bounds how long favourites of an idle anonymous device are kept.
const deviceTTL = 90 * 24 * time.Hour

// NewRedisStore returns a Store for anonymous devices. Each device has a sorted
// set scored by the time a recipe was favourited.
func NewRedisStore(rdb redis.Cmdable) *RedisStore {
	return &RedisStore{
		rdb: rdb,
		now: time.Now,
	}
}

type RedisStore struct {
	rdb redis.Cmdable
	now func() time.Time
}

func (s *RedisStore) List(ctx context.Context, ownerID string) ([]string, error) {
	ids, err := s.rdb.ZRange(ctx, key(ownerID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("favourites: listing favourites: %w", err)
	}
	return ids, nil
}

func (s *RedisStore) Add(ctx context.Context, ownerID string, recipeID string) error {
	k := key(ownerID)
	_, err := s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.ZAddNX(ctx, k, redis.Z{Score: float64(s.now().UnixNano()), Member: recipeID})
		p.Expire(ctx, k, deviceTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("favourites: saving favourite: %w", err)
	}
	return nil
}

func (s *RedisStore) Remove(ctx context.Context, ownerID string, recipeID string) error {
	if err := s.rdb.ZRem(ctx, key(ownerID), recipeID).Err(); err != nil {
		return fmt.Errorf("favourites: deleting favourite: %w", err)
	}
	return nil
}

func key(ownerID string) string {
	return "cookshelf:favourites:" + ownerID
}
