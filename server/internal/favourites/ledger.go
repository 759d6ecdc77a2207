// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

// Package favourites tracks the favourite recipes of a session.
package favourites

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/curioswitch/cookshelf/common/recipedb"
	"github.com/curioswitch/cookshelf/server/internal/metrics"
)

// Mode selects who owns favourites. A deployment uses exactly one.
type Mode string

const (
	// ModeIdentity scopes favourites to a signed-in identity.
	ModeIdentity Mode = "identity"

	// ModeAnonymous scopes favourites to a device.
	ModeAnonymous Mode = "anonymous"
)

// ParseMode parses a configured mode, defaulting to ModeIdentity.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeIdentity:
		return ModeIdentity, nil
	case ModeAnonymous:
		return ModeAnonymous, nil
	default:
		return "", fmt.Errorf("favourites: unknown mode %q", s)
	}
}

// NewLedger returns a Ledger persisting through store.
func NewLedger(store Store) *Ledger {
	return &Ledger{
		store: store,
		set:   map[string]struct{}{},
	}
}

// Ledger is the in-memory favourite set of one owner. Writes are applied
// optimistically and rolled back if the store rejects them. The set is
// replaced from the store on every List and after every accepted write.
type Ledger struct {
	store Store

	// writeMu serializes loads and writes.
	writeMu sync.Mutex

	mu     sync.RWMutex
	owner  string
	loaded bool
	ids    []string
	set    map[string]struct{}
}

// Load replaces the set with the favourites of ownerID from the store.
func (l *Ledger) Load(ctx context.Context, ownerID string) error {
	l.writeMu.Lock()
	defer l.writeMu.Unlock()

	return l.load(ctx, ownerID)
}

// List reloads the favourite ids of ownerID from the store and returns them,
// oldest first. Each query lists once, so writes from other devices are seen
// by the next query.
func (l *Ledger) List(ctx context.Context, ownerID string) ([]string, error) {
	if ownerID == "" {
		return nil, nil
	}

	l.writeMu.Lock()
	defer l.writeMu.Unlock()

	if err := l.load(ctx, ownerID); err != nil {
		return nil, err
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.ids), nil
}

// IsFavourite reports whether id is in the current set.
func (l *Ledger) IsFavourite(id string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	_, ok := l.set[id]
	return ok
}

// Add marks id as a favourite of ownerID. Adding an existing favourite is a
// no-op.
func (l *Ledger) Add(ctx context.Context, ownerID string, id string) error {
	return l.write(ctx, "add", ownerID, id, true)
}

// Remove unmarks id. Removing an absent favourite is a no-op.
func (l *Ledger) Remove(ctx context.Context, ownerID string, id string) error {
	return l.write(ctx, "remove", ownerID, id, false)
}

func (l *Ledger) write(ctx context.Context, op string, ownerID string, id string, add bool) error {
	if ownerID == "" {
		return recipedb.ErrUnauthenticated
	}

	l.writeMu.Lock()
	defer l.writeMu.Unlock()

	if err := l.ensureLoaded(ctx, ownerID); err != nil {
		return err
	}

	l.mu.Lock()
	if _, ok := l.set[id]; ok == add {
		l.mu.Unlock()
		return nil
	}
	prev := slices.Clone(l.ids)
	if add {
		l.ids = append(l.ids, id)
		l.set[id] = struct{}{}
	} else {
		l.ids = slices.DeleteFunc(l.ids, func(s string) bool { return s == id })
		delete(l.set, id)
	}
	l.mu.Unlock()

	var err error
	if add {
		err = l.store.Add(ctx, ownerID, id)
	} else {
		err = l.store.Remove(ctx, ownerID, id)
	}
	if err != nil {
		metrics.FavouriteRollbacks.WithLabelValues(op).Inc()
		l.replace(prev)
		return recipedb.NewSourceFailure(recipedb.SourceFavourites, err)
	}

	if err := l.load(ctx, ownerID); err != nil {
		// The optimistic set already matches the accepted write.
		slog.WarnContext(ctx, "favourites: refreshing after write", "op", op, "error", err)
	}
	return nil
}

func (l *Ledger) ensureLoaded(ctx context.Context, ownerID string) error {
	l.mu.RLock()
	ok := l.loaded && l.owner == ownerID
	l.mu.RUnlock()
	if ok {
		return nil
	}
	return l.load(ctx, ownerID)
}

func (l *Ledger) load(ctx context.Context, ownerID string) error {
	ids, err := l.store.List(ctx, ownerID)
	if err != nil {
		return recipedb.NewSourceFailure(recipedb.SourceFavourites, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.owner = ownerID
	l.loaded = true
	l.setLocked(ids)
	return nil
}

func (l *Ledger) replace(ids []string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.setLocked(ids)
}

func (l *Ledger) setLocked(ids []string) {
	l.ids = make([]string, 0, len(ids))
	l.set = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := l.set[id]; dup {
			continue
		}
		l.ids = append(l.ids, id)
		l.set[id] = struct{}{}
	}
}
