// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package favourites

import (
	"context"
	"slices"
	"sync"
)

// Store persists favourite recipe ids per owner. Owners are identities in
// identity mode and device ids in anonymous mode.
type Store interface {
	// List returns the favourite ids of ownerID, oldest first.
	List(ctx context.Context, ownerID string) ([]string, error)

	// Add records recipeID as a favourite. Adding an existing favourite is not
	// an error.
	Add(ctx context.Context, ownerID string, recipeID string) error

	// Remove forgets recipeID. Removing an absent favourite is not an error.
	Remove(ctx context.Context, ownerID string, recipeID string) error
}

// NewMemoryStore returns a Store holding favourites in process memory.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		ids: map[string][]string{},
	}
}

type MemoryStore struct {
	mu  sync.Mutex
	ids map[string][]string
}

func (s *MemoryStore) List(_ context.Context, ownerID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.ids[ownerID]), nil
}

func (s *MemoryStore) Add(_ context.Context, ownerID string, recipeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !slices.Contains(s.ids[ownerID], recipeID) {
		s.ids[ownerID] = append(s.ids[ownerID], recipeID)
	}
	return nil
}

func (s *MemoryStore) Remove(_ context.Context, ownerID string, recipeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ids[ownerID] = slices.DeleteFunc(s.ids[ownerID], func(id string) bool { return id == recipeID })
	return nil
}
