// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package catalog

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/curioswitch/cookshelf/common/recipedb"
)

// Lookuper fetches a single catalog recipe.
type Lookuper interface {
	GetByID(ctx context.Context, id string) (recipedb.Recipe, error)
}

// Batch memoizes lookups for the lifetime of one aggregation so an id that
// appears more than once in the same user action is only fetched once.
// Only successful lookups are memoized so failures can be retried.
type Batch struct {
	src Lookuper

	group singleflight.Group

	mu   sync.Mutex
	done map[string]recipedb.Recipe
}

// NewBatch returns a Batch reading through src.
func NewBatch(src Lookuper) *Batch {
	return &Batch{
		src:  src,
		done: map[string]recipedb.Recipe{},
	}
}

func (b *Batch) GetByID(ctx context.Context, id string) (recipedb.Recipe, error) {
	b.mu.Lock()
	r, ok := b.done[id]
	b.mu.Unlock()
	if ok {
		return r, nil
	}

	v, err, _ := b.group.Do(id, func() (any, error) {
		r, err := b.src.GetByID(ctx, id)
		if err == nil {
			b.mu.Lock()
			b.done[id] = r
			b.mu.Unlock()
		}
		return r, err
	})
	r, _ = v.(recipedb.Recipe)
	return r, err
}
