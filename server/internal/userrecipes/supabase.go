// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package userrecipes

import (
	"context"
	"fmt"

	"github.com/supabase-community/supabase-go"

	"github.com/curioswitch/cookshelf/common/recipedb"
)

const recipesTable = "recipes"

// NewSupabaseBackend returns a Backend over the recipes table of a Supabase
// project.
func NewSupabaseBackend(client *supabase.Client) *SupabaseBackend {
	return &SupabaseBackend{
		client: client,
	}
}

// SupabaseBackend stores rows in the recipes table. The PostgREST client does
// not take a context so cancellation is not propagated.
type SupabaseBackend struct {
	client *supabase.Client
}

func (b *SupabaseBackend) ListByOwner(_ context.Context, ownerID string) ([]Row, error) {
	var rows []Row
	if _, err := b.client.From(recipesTable).Select("*", "", false).Eq("user_id", ownerID).ExecuteTo(&rows); err != nil {
		return nil, fmt.Errorf("userrecipes: listing recipes: %w", err)
	}
	return rows, nil
}

func (b *SupabaseBackend) Get(_ context.Context, id string) (*Row, error) {
	var rows []Row
	if _, err := b.client.From(recipesTable).Select("*", "", false).Eq("id", id).ExecuteTo(&rows); err != nil {
		return nil, fmt.Errorf("userrecipes: getting recipe: %w", err)
	}
	if len(rows) == 0 {
		return nil, recipedb.ErrNotFound
	}
	return &rows[0], nil
}

func (b *SupabaseBackend) Insert(_ context.Context, row *Row) error {
	if _, _, err := b.client.From(recipesTable).Insert(row, false, "", "minimal", "").Execute(); err != nil {
		return fmt.Errorf("userrecipes: inserting recipe: %w", err)
	}
	return nil
}

func (b *SupabaseBackend) Delete(ctx context.Context, ownerID string, id string) error {
	row, err := b.Get(ctx, id)
	if err != nil {
		return err
	}
	if row.UserID != ownerID {
		return recipedb.ErrForbidden
	}
	if _, _, err := b.client.From(recipesTable).Delete("minimal", "").Eq("id", id).Eq("user_id", ownerID).Execute(); err != nil {
		return fmt.Errorf("userrecipes: deleting recipe: %w", err)
	}
	return nil
}
