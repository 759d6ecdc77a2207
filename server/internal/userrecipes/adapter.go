// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

// Package userrecipes adapts the per-user recipe store into canonical recipes.
package userrecipes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/curioswitch/cookshelf/common/recipedb"
	"github.com/curioswitch/cookshelf/server/internal/metrics"
)

// ImageWriter uploads draft images given as data URLs.
type ImageWriter interface {
	WriteDataURL(ctx context.Context, pathNoExt string, dataURL string) (string, error)
}

// NewAdapter returns an Adapter over backend. images may be nil, in which case
// drafts with uploaded images are rejected.
func NewAdapter(backend Backend, images ImageWriter) *Adapter {
	return &Adapter{
		backend: backend,
		images:  images,
		now:     time.Now,
	}
}

// Adapter reads and writes the recipes of the identity of one session. It
// keeps no copy of the rows; every list reads the backend.
type Adapter struct {
	backend Backend
	images  ImageWriter
	now     func() time.Time
}

// ListForIdentity returns the recipes authored by identityID in creation
// order. An empty identity has no recipes.
func (a *Adapter) ListForIdentity(ctx context.Context, identityID string) ([]recipedb.Recipe, error) {
	if identityID == "" {
		return nil, nil
	}

	rows, err := a.backend.ListByOwner(ctx, identityID)
	if err != nil {
		return nil, recipedb.NewSourceFailure(recipedb.SourceUserRecipes, err)
	}

	recipes := make([]recipedb.Recipe, 0, len(rows))
	for _, row := range rows {
		if err := row.validate(); err != nil {
			metrics.UserRecipesMalformedRecords.Inc()
			slog.WarnContext(ctx, "userrecipes: skipping malformed recipe", "id", row.ID, "error", err)
			continue
		}
		if row.UserID != identityID {
			continue
		}
		recipes = append(recipes, row.toRecipe())
	}
	return recipes, nil
}

// Create stores a new recipe authored by identityID.
func (a *Adapter) Create(ctx context.Context, identityID string, draft *recipedb.Draft) (recipedb.Recipe, error) {
	if identityID == "" {
		return recipedb.Recipe{}, recipedb.ErrUnauthenticated
	}
	if err := draft.Validate(); err != nil {
		return recipedb.Recipe{}, err
	}

	id := recipedb.LocalIDPrefix + uuid.NewString()

	image := draft.Image
	if strings.HasPrefix(image, "data:") {
		if a.images == nil {
			return recipedb.Recipe{}, fmt.Errorf("%w: image uploads are not enabled", recipedb.ErrInvalidDraft)
		}
		url, err := a.images.WriteDataURL(ctx, fmt.Sprintf("recipes/%s/main-image", id), image)
		if err != nil {
			return recipedb.Recipe{}, fmt.Errorf("userrecipes: saving main image: %w", err)
		}
		image = url
	}

	row := rowFromDraft(id, identityID, draft, image, a.now())
	if err := a.backend.Insert(ctx, row); err != nil {
		return recipedb.Recipe{}, recipedb.NewSourceFailure(recipedb.SourceUserRecipes, err)
	}
	return row.toRecipe(), nil
}

// DeleteByID deletes a recipe owned by identityID. The backend is unchanged
// when an error is returned.
func (a *Adapter) DeleteByID(ctx context.Context, identityID string, id string) error {
	if identityID == "" {
		return recipedb.ErrUnauthenticated
	}
	if recipedb.ClassifyOrigin(id) != recipedb.OriginUser {
		return fmt.Errorf("userrecipes: catalog recipe %s: %w", id, recipedb.ErrForbidden)
	}

	if err := a.backend.Delete(ctx, identityID, id); err != nil {
		if errors.Is(err, recipedb.ErrNotFound) || errors.Is(err, recipedb.ErrForbidden) {
			return err
		}
		return recipedb.NewSourceFailure(recipedb.SourceUserRecipes, err)
	}
	return nil
}
