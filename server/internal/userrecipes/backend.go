// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package userrecipes

import (
	"context"
	"slices"
	"sync"

	"github.com/curioswitch/cookshelf/common/recipedb"
)

// Backend persists user recipe rows.
type Backend interface {
	// ListByOwner returns the rows authored by ownerID in creation order.
	ListByOwner(ctx context.Context, ownerID string) ([]Row, error)

	// Get returns the row with id, or recipedb.ErrNotFound.
	Get(ctx context.Context, id string) (*Row, error)

	// Insert stores a new row.
	Insert(ctx context.Context, row *Row) error

	// Delete removes the row with id if it is owned by ownerID.
	Delete(ctx context.Context, ownerID string, id string) error
}

// NewMemoryBackend returns a Backend holding rows in process memory.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

// MemoryBackend is a Backend for local runs and tests.
type MemoryBackend struct {
	mu   sync.Mutex
	rows []Row
}

func (b *MemoryBackend) ListByOwner(_ context.Context, ownerID string) ([]Row, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var res []Row
	for _, r := range b.rows {
		if r.UserID == ownerID {
			res = append(res, r)
		}
	}
	return res, nil
}

func (b *MemoryBackend) Get(_ context.Context, id string) (*Row, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := slices.IndexFunc(b.rows, func(r Row) bool { return r.ID == id })
	if i < 0 {
		return nil, recipedb.ErrNotFound
	}
	r := b.rows[i]
	return &r, nil
}

func (b *MemoryBackend) Insert(_ context.Context, row *Row) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.rows = append(b.rows, *row)
	return nil
}

func (b *MemoryBackend) Delete(_ context.Context, ownerID string, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := slices.IndexFunc(b.rows, func(r Row) bool { return r.ID == id })
	switch {
	case i < 0:
		return recipedb.ErrNotFound
	case b.rows[i].UserID != ownerID:
		return recipedb.ErrForbidden
	}
	b.rows = slices.Delete(b.rows, i, i+1)
	return nil
}
