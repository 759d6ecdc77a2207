// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curioswitch/cookshelf/common/recipedb"
)

const lookupBody = `{"meals":[{
	"idMeal":"52977",
	"strMeal":"Corba",
	"strCategory":"Side",
	"strArea":"Turkish",
	"strInstructions":"Pick through your lentils.",
	"strMealThumb":"https://www.themealdb.com/images/media/meals/58oia61564916529.jpg",
	"strYoutube":"https://www.youtube.com/watch?v=VVnZd8A84z4",
	"strSource":"https://findingtimeforcooking.com/main-dishes/red-lentil-soup-corba/",
	"strIngredient1":"Lentils",
	"strIngredient2":"Onion",
	"strIngredient3":"",
	"strIngredient4":" Carrots ",
	"strIngredient5":null,
	"strMeasure1":"1 cup"
}]}`

func newServer(t *testing.T, handler http.HandlerFunc) *Gateway {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewGateway(Config{BaseURL: srv.URL, Timeout: time.Second})
}

func TestSearchByArea(t *testing.T) {
	t.Run("normalizes summaries", func(t *testing.T) {
		gw := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/filter.php", r.URL.Path)
			assert.Equal(t, "Indian", r.URL.Query().Get("a"))
			_, _ = w.Write([]byte(`{"meals":[
				{"idMeal":"52977","strMeal":"Corba","strMealThumb":"https://img/1.jpg"},
				{"idMeal":"53000","strMeal":"Dal","strMealThumb":"https://img/2.jpg"}
			]}`))
		})

		recipes, err := gw.SearchByArea(t.Context(), "Indian")
		require.NoError(t, err)
		require.Len(t, recipes, 2)
		assert.Equal(t, "52977", recipes[0].ID)
		assert.Equal(t, "Corba", recipes[0].Title)
		assert.Equal(t, "Indian", recipes[0].Area)
		assert.Equal(t, recipedb.OriginCatalog, recipes[0].Origin)
		assert.True(t, recipes[0].IsSummary())
		assert.Equal(t, "53000", recipes[1].ID)

		b, err := json.Marshal(recipes[0])
		require.NoError(t, err)
		assert.Contains(t, string(b), `"ingredients":[]`)
	})

	t.Run("skips malformed records", func(t *testing.T) {
		gw := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"meals":[
				{"idMeal":"1","strMeal":"Good"},
				{"idMeal":"","strMeal":"No id"},
				{"idMeal":"2"},
				{"idMeal":42,"strMeal":"Wrong type"},
				{"idMeal":"local_x","strMeal":"Local"},
				{"idMeal":"3","strMeal":"Also good"}
			]}`))
		})

		recipes, err := gw.SearchByArea(t.Context(), "Thai")
		require.NoError(t, err)
		require.Len(t, recipes, 2)
		assert.Equal(t, "1", recipes[0].ID)
		assert.Equal(t, "3", recipes[1].ID)
	})

	t.Run("null meals", func(t *testing.T) {
		gw := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"meals":null}`))
		})

		recipes, err := gw.SearchByArea(t.Context(), "Atlantean")
		require.NoError(t, err)
		assert.Empty(t, recipes)
	})

	t.Run("server error", func(t *testing.T) {
		gw := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		_, err := gw.SearchByArea(t.Context(), "Indian")
		sf, ok := recipedb.AsSourceFailure(err)
		require.True(t, ok)
		assert.Equal(t, recipedb.SourceCatalog, sf.Source)
	})

	t.Run("bad body", func(t *testing.T) {
		gw := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		})

		_, err := gw.SearchByArea(t.Context(), "Indian")
		_, ok := recipedb.AsSourceFailure(err)
		assert.True(t, ok)
	})

	t.Run("timeout", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		t.Cleanup(srv.Close)
		t.Cleanup(func() { close(release) })
		gw := NewGateway(Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})

		_, err := gw.SearchByArea(t.Context(), "Indian")
		_, ok := recipedb.AsSourceFailure(err)
		assert.True(t, ok)
	})
}

func TestGetByID(t *testing.T) {
	t.Run("full record", func(t *testing.T) {
		gw := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/lookup.php", r.URL.Path)
			assert.Equal(t, "52977", r.URL.Query().Get("i"))
			_, _ = w.Write([]byte(lookupBody))
		})

		recipe, err := gw.GetByID(t.Context(), "52977")
		require.NoError(t, err)
		assert.Equal(t, recipedb.Recipe{
			ID:           "52977",
			Title:        "Corba",
			ThumbnailURL: "https://www.themealdb.com/images/media/meals/58oia61564916529.jpg",
			Category:     "Side",
			Area:         "Turkish",
			Instructions: "Pick through your lentils.",
			SourceURL:    "https://findingtimeforcooking.com/main-dishes/red-lentil-soup-corba/",
			VideoURL:     "https://www.youtube.com/watch?v=VVnZd8A84z4",
			Ingredients:  []string{"Lentils", "Onion", "Carrots"},
			Origin:       recipedb.OriginCatalog,
		}, recipe)
	})

	t.Run("not found", func(t *testing.T) {
		gw := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"meals":null}`))
		})

		_, err := gw.GetByID(t.Context(), "99999")
		assert.ErrorIs(t, err, recipedb.ErrNotFound)
	})

	t.Run("malformed record is not found", func(t *testing.T) {
		gw := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"meals":[{"idMeal":"52977","strMeal":"Corba"}]}`))
		})

		_, err := gw.GetByID(t.Context(), "52977")
		assert.ErrorIs(t, err, recipedb.ErrNotFound)
	})

	t.Run("local id never hits the network", func(t *testing.T) {
		var calls atomic.Int32
		gw := newServer(t, func(_ http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
		})

		_, err := gw.GetByID(t.Context(), "local_a1")
		assert.ErrorIs(t, err, recipedb.ErrNotFound)
		assert.Zero(t, calls.Load())
	})
}

func TestCircuitBreaker(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	gw := NewGateway(Config{BaseURL: srv.URL, BreakerFailures: 2, BreakerCooldown: time.Hour})

	for range 2 {
		_, err := gw.GetByID(t.Context(), "1")
		_, ok := recipedb.AsSourceFailure(err)
		require.True(t, ok)
	}

	_, err := gw.GetByID(t.Context(), "1")
	sf, ok := recipedb.AsSourceFailure(err)
	require.True(t, ok)
	assert.Equal(t, recipedb.SourceCatalog, sf.Source)
	assert.Equal(t, int32(2), calls.Load())
}

type countingLookuper struct {
	calls atomic.Int32
	err   error
}

func (c *countingLookuper) GetByID(_ context.Context, id string) (recipedb.Recipe, error) {
	c.calls.Add(1)
	if c.err != nil {
		return recipedb.Recipe{}, c.err
	}
	return recipedb.Recipe{ID: id, Origin: recipedb.OriginCatalog}, nil
}

func TestBatch(t *testing.T) {
	t.Run("memoizes success", func(t *testing.T) {
		src := &countingLookuper{}
		b := NewBatch(src)

		for range 3 {
			r, err := b.GetByID(t.Context(), "52977")
			require.NoError(t, err)
			assert.Equal(t, "52977", r.ID)
		}
		assert.Equal(t, int32(1), src.calls.Load())
	})

	t.Run("does not memoize failures", func(t *testing.T) {
		src := &countingLookuper{err: recipedb.NewSourceFailure(recipedb.SourceCatalog, errors.New("boom"))}
		b := NewBatch(src)

		_, err := b.GetByID(t.Context(), "52977")
		require.Error(t, err)
		_, err = b.GetByID(t.Context(), "52977")
		require.Error(t, err)
		assert.Equal(t, int32(2), src.calls.Load())
	})
}
