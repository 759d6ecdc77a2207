// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

// Package session holds the mutable recipe state of one client.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/curioswitch/cookshelf/common/recipedb"
	"github.com/curioswitch/cookshelf/server/internal/aggregate"
	"github.com/curioswitch/cookshelf/server/internal/favourites"
	"github.com/curioswitch/cookshelf/server/internal/userrecipes"
)

// Session is the state of one identity on one device. The favourite set is only
// mutated through the ledger and the authored recipes only through the adapter.
type Session struct {
	identity        string
	favouritesOwner string

	runner  aggregate.Runner
	ledger  *favourites.Ledger
	recipes *userrecipes.Adapter

	mu    sync.Mutex
	views map[string]*aggregate.View
}

// Identity returns the signed-in identity, empty when anonymous.
func (s *Session) Identity() string {
	return s.identity
}

// Query runs q for the named view. The returned bool is false when a newer
// query for the same view was submitted before q settled.
func (s *Session) Query(ctx context.Context, view string, q aggregate.Query) (aggregate.Result, bool) {
	return s.view(view).Submit(ctx, q, s.sources())
}

// Get returns a single recipe by id with its favourite flag.
func (s *Session) Get(ctx context.Context, id string) (aggregate.Item, error) {
	res := s.runner.Run(ctx, aggregate.ByID(id), s.sources())
	if len(res.Items) > 0 {
		return res.Items[0], nil
	}
	if len(res.SourceErrors) > 0 {
		e := res.SourceErrors[0]
		return aggregate.Item{}, recipedb.NewSourceFailure(e.Source, errors.New(e.Message))
	}
	return aggregate.Item{}, recipedb.ErrNotFound
}

// CreateRecipe stores a new recipe authored by the session identity.
func (s *Session) CreateRecipe(ctx context.Context, draft *recipedb.Draft) (recipedb.Recipe, error) {
	return s.recipes.Create(ctx, s.identity, draft)
}

// DeleteRecipe deletes a recipe authored by the session identity and removes
// it from the favourite set.
func (s *Session) DeleteRecipe(ctx context.Context, id string) error {
	if err := s.recipes.DeleteByID(ctx, s.identity, id); err != nil {
		return err
	}
	if s.favouritesOwner == "" {
		return nil
	}
	if err := s.ledger.Remove(ctx, s.favouritesOwner, id); err != nil {
		// The favourite is now dangling and dropped when favourites are listed.
		slog.WarnContext(ctx, "session: removing favourite of deleted recipe", "id", id, "error", err)
	}
	return nil
}

// AddFavourite marks id as a favourite.
func (s *Session) AddFavourite(ctx context.Context, id string) error {
	return s.ledger.Add(ctx, s.favouritesOwner, id)
}

// RemoveFavourite unmarks id.
func (s *Session) RemoveFavourite(ctx context.Context, id string) error {
	return s.ledger.Remove(ctx, s.favouritesOwner, id)
}

// IsFavourite reports whether id is in the loaded favourite set.
func (s *Session) IsFavourite(id string) bool {
	return s.ledger.IsFavourite(id)
}

func (s *Session) sources() aggregate.Sources {
	return aggregate.Sources{
		Identity:        s.identity,
		FavouritesOwner: s.favouritesOwner,
		UserRecipes:     s.recipes,
		Favourites:      s.ledger,
	}
}

func (s *Session) view(name string) *aggregate.View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.views[name]
	if !ok {
		v = aggregate.NewView(s.runner)
		s.views[name] = v
	}
	return v
}
