// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package userrecipes

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curioswitch/cookshelf/common/recipedb"
)

func draft() *recipedb.Draft {
	return &recipedb.Draft{
		Title:        "Butter Chicken",
		Category:     "Chicken",
		Area:         "Indian",
		Ingredients:  []string{"chicken", " butter ", "tomato"},
		Instructions: "Simmer.",
		VideoURL:     "https://youtu.be/a03U45jFxOI",
	}
}

type fakeImages struct {
	paths []string
	err   error
}

func (f *fakeImages) WriteDataURL(_ context.Context, pathNoExt string, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.paths = append(f.paths, pathNoExt)
	return "https://storage.googleapis.com/bucket/" + pathNoExt + ".png", nil
}

type failingBackend struct {
	MemoryBackend
	err error
}

func (f *failingBackend) ListByOwner(context.Context, string) ([]Row, error) {
	return nil, f.err
}

func (f *failingBackend) Delete(context.Context, string, string) error {
	return f.err
}

func TestListForIdentity(t *testing.T) {
	t.Run("anonymous is empty", func(t *testing.T) {
		a := NewAdapter(&failingBackend{err: errors.New("unreachable")}, nil)
		recipes, err := a.ListForIdentity(t.Context(), "")
		require.NoError(t, err)
		assert.Empty(t, recipes)
	})

	t.Run("skips malformed rows", func(t *testing.T) {
		b := NewMemoryBackend()
		ctx := t.Context()
		require.NoError(t, b.Insert(ctx, &Row{ID: "local_a1", UserID: "alice", Title: "Dal", Area: "Indian", Ingredients: "lentils,onion"}))
		require.NoError(t, b.Insert(ctx, &Row{ID: "local_a2", UserID: "alice", Title: "", Ingredients: "rice"}))
		require.NoError(t, b.Insert(ctx, &Row{ID: "52977", UserID: "alice", Title: "Corba", Ingredients: "lentils"}))
		require.NoError(t, b.Insert(ctx, &Row{ID: "local_a3", UserID: "alice", Title: "Empty", Ingredients: " , "}))
		require.NoError(t, b.Insert(ctx, &Row{ID: "local_b1", UserID: "bob", Title: "Bob's", Ingredients: "salt"}))

		a := NewAdapter(b, nil)
		recipes, err := a.ListForIdentity(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, recipes, 1)
		assert.Equal(t, recipedb.Recipe{
			ID:          "local_a1",
			Title:       "Dal",
			Area:        "Indian",
			Ingredients: []string{"lentils", "onion"},
			Origin:      recipedb.OriginUser,
			OwnerID:     "alice",
		}, recipes[0])
	})

	t.Run("backend failure", func(t *testing.T) {
		a := NewAdapter(&failingBackend{err: errors.New("connection refused")}, nil)
		_, err := a.ListForIdentity(t.Context(), "alice")
		sf, ok := recipedb.AsSourceFailure(err)
		require.True(t, ok)
		assert.Equal(t, recipedb.SourceUserRecipes, sf.Source)
	})

	t.Run("reloads on identity change", func(t *testing.T) {
		b := NewMemoryBackend()
		ctx := t.Context()
		require.NoError(t, b.Insert(ctx, &Row{ID: "local_a1", UserID: "alice", Title: "Dal", Ingredients: "lentils"}))
		require.NoError(t, b.Insert(ctx, &Row{ID: "local_b1", UserID: "bob", Title: "Stew", Ingredients: "beef"}))

		a := NewAdapter(b, nil)
		recipes, err := a.ListForIdentity(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, recipes, 1)
		assert.Equal(t, "local_a1", recipes[0].ID)

		recipes, err = a.ListForIdentity(ctx, "bob")
		require.NoError(t, err)
		require.Len(t, recipes, 1)
		assert.Equal(t, "local_b1", recipes[0].ID)
	})

	t.Run("sees changes from other writers", func(t *testing.T) {
		b := NewMemoryBackend()
		ctx := t.Context()
		require.NoError(t, b.Insert(ctx, &Row{ID: "local_a1", UserID: "alice", Title: "Dal", Ingredients: "lentils"}))

		laptop := NewAdapter(b, nil)
		phone := NewAdapter(b, nil)
		recipes, err := laptop.ListForIdentity(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, recipes, 1)

		require.NoError(t, phone.DeleteByID(ctx, "alice", "local_a1"))
		r, err := phone.Create(ctx, "alice", draft())
		require.NoError(t, err)

		recipes, err = laptop.ListForIdentity(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, recipes, 1)
		assert.Equal(t, r.ID, recipes[0].ID)
	})
}

func TestCreate(t *testing.T) {
	t.Run("requires identity", func(t *testing.T) {
		a := NewAdapter(NewMemoryBackend(), nil)
		_, err := a.Create(t.Context(), "", draft())
		assert.ErrorIs(t, err, recipedb.ErrUnauthenticated)
	})

	t.Run("rejects invalid draft", func(t *testing.T) {
		a := NewAdapter(NewMemoryBackend(), nil)
		d := draft()
		d.Ingredients = nil
		_, err := a.Create(t.Context(), "alice", d)
		assert.ErrorIs(t, err, recipedb.ErrInvalidDraft)
	})

	t.Run("stores and lists", func(t *testing.T) {
		b := NewMemoryBackend()
		a := NewAdapter(b, nil)
		now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
		a.now = func() time.Time { return now }
		ctx := t.Context()

		_, err := a.ListForIdentity(ctx, "alice")
		require.NoError(t, err)

		r, err := a.Create(ctx, "alice", draft())
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(r.ID, recipedb.LocalIDPrefix))
		assert.Equal(t, recipedb.OriginUser, r.Origin)
		assert.Equal(t, []string{"chicken", "butter", "tomato"}, r.Ingredients)
		assert.Equal(t, "alice", r.OwnerID)

		row, err := b.Get(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, "chicken,butter,tomato", row.Ingredients)
		assert.Equal(t, "https://youtu.be/a03U45jFxOI", row.Youtube)
		assert.Equal(t, now, row.CreatedAt)

		recipes, err := a.ListForIdentity(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, recipes, 1)
		assert.Equal(t, r.ID, recipes[0].ID)
	})

	t.Run("uploads data url image", func(t *testing.T) {
		images := &fakeImages{}
		a := NewAdapter(NewMemoryBackend(), images)
		d := draft()
		d.Image = "data:image/png;base64,iVBORw0KGgo="

		r, err := a.Create(t.Context(), "alice", d)
		require.NoError(t, err)
		require.Len(t, images.paths, 1)
		assert.Equal(t, "recipes/"+r.ID+"/main-image", images.paths[0])
		assert.Equal(t, "https://storage.googleapis.com/bucket/recipes/"+r.ID+"/main-image.png", r.ThumbnailURL)
	})

	t.Run("keeps image url", func(t *testing.T) {
		images := &fakeImages{}
		a := NewAdapter(NewMemoryBackend(), images)
		d := draft()
		d.Image = "https://example.com/curry.jpg"

		r, err := a.Create(t.Context(), "alice", d)
		require.NoError(t, err)
		assert.Empty(t, images.paths)
		assert.Equal(t, "https://example.com/curry.jpg", r.ThumbnailURL)
	})

	t.Run("upload without storage", func(t *testing.T) {
		a := NewAdapter(NewMemoryBackend(), nil)
		d := draft()
		d.Image = "data:image/png;base64,iVBORw0KGgo="

		_, err := a.Create(t.Context(), "alice", d)
		assert.ErrorIs(t, err, recipedb.ErrInvalidDraft)
	})
}

func TestDeleteByID(t *testing.T) {
	setup := func(t *testing.T) (*Adapter, *MemoryBackend) {
		t.Helper()
		b := NewMemoryBackend()
		require.NoError(t, b.Insert(t.Context(), &Row{ID: "local_a1", UserID: "alice", Title: "Dal", Ingredients: "lentils"}))
		require.NoError(t, b.Insert(t.Context(), &Row{ID: "local_b1", UserID: "bob", Title: "Stew", Ingredients: "beef"}))
		return NewAdapter(b, nil), b
	}

	t.Run("owner deletes", func(t *testing.T) {
		a, b := setup(t)
		ctx := t.Context()
		_, err := a.ListForIdentity(ctx, "alice")
		require.NoError(t, err)

		require.NoError(t, a.DeleteByID(ctx, "alice", "local_a1"))
		_, err = b.Get(ctx, "local_a1")
		assert.ErrorIs(t, err, recipedb.ErrNotFound)
		recipes, err := a.ListForIdentity(ctx, "alice")
		require.NoError(t, err)
		assert.Empty(t, recipes)
	})

	t.Run("foreign recipe is forbidden", func(t *testing.T) {
		a, b := setup(t)
		ctx := t.Context()
		_, err := a.ListForIdentity(ctx, "alice")
		require.NoError(t, err)

		err = a.DeleteByID(ctx, "alice", "local_b1")
		require.ErrorIs(t, err, recipedb.ErrForbidden)
		_, err = b.Get(ctx, "local_b1")
		require.NoError(t, err)
		recipes, err := a.ListForIdentity(ctx, "alice")
		require.NoError(t, err)
		assert.Len(t, recipes, 1)
	})

	t.Run("catalog recipe is forbidden", func(t *testing.T) {
		a, _ := setup(t)
		assert.ErrorIs(t, a.DeleteByID(t.Context(), "alice", "52977"), recipedb.ErrForbidden)
	})

	t.Run("missing", func(t *testing.T) {
		a, _ := setup(t)
		assert.ErrorIs(t, a.DeleteByID(t.Context(), "alice", "local_zz"), recipedb.ErrNotFound)
	})

	t.Run("anonymous", func(t *testing.T) {
		a, _ := setup(t)
		assert.ErrorIs(t, a.DeleteByID(t.Context(), "", "local_a1"), recipedb.ErrUnauthenticated)
	})

	t.Run("backend failure", func(t *testing.T) {
		a := NewAdapter(&failingBackend{err: errors.New("timeout")}, nil)
		err := a.DeleteByID(t.Context(), "alice", "local_a1")
		sf, ok := recipedb.AsSourceFailure(err)
		require.True(t, ok)
		assert.Equal(t, recipedb.SourceUserRecipes, sf.Source)
	})
}
