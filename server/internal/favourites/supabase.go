// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package favourites

import (
	"context"
	"fmt"

	"github.com/supabase-community/supabase-go"
)

const favouritesTable = "favourites"

type favouriteRow struct {
	UserID   string `json:"user_id"`
	RecipeID string `json:"recipe_id"`
}

func NewSupabaseStore(client *supabase.Client) *SupabaseStore {
	return &SupabaseStore{
		client: client,
	}
}

// SupabaseStore keeps favourites in the favourites(user_id, recipe_id) table.
type SupabaseStore struct {
	client *supabase.Client
}

func (s *SupabaseStore) List(_ context.Context, ownerID string) ([]string, error) {
	var rows []favouriteRow
	if _, err := s.client.From(favouritesTable).Select("user_id,recipe_id", "", false).Eq("user_id", ownerID).ExecuteTo(&rows); err != nil {
		return nil, fmt.Errorf("favourites: listing favourites: %w", err)
	}
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.RecipeID)
	}
	return ids, nil
}

func (s *SupabaseStore) Add(_ context.Context, ownerID string, recipeID string) error {
	row := favouriteRow{UserID: ownerID, RecipeID: recipeID}
	if _, _, err := s.client.From(favouritesTable).Insert(row, true, "user_id,recipe_id", "minimal", "").Execute(); err != nil {
		return fmt.Errorf("favourites: saving favourite: %w", err)
	}
	return nil
}

func (s *SupabaseStore) Remove(_ context.Context, ownerID string, recipeID string) error {
	if _, _, err := s.client.From(favouritesTable).Delete("minimal", "").Eq("user_id", ownerID).Eq("recipe_id", recipeID).Execute(); err != nil {
		return fmt.Errorf("favourites: deleting favourite: %w", err)
	}
	return nil
}
