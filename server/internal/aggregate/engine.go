// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

// Package aggregate merges catalog and user recipes into the lists views render.
package aggregate

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/wandb/parallel"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/curioswitch/cookshelf/common/recipedb"
	"github.com/curioswitch/cookshelf/server/internal/catalog"
	"github.com/curioswitch/cookshelf/server/internal/metrics"
)

var tracer = otel.Tracer("github.com/curioswitch/cookshelf/server/internal/aggregate")

const (
	defaultLookupConcurrency = 8
	defaultRetryWait         = 200 * time.Millisecond
)

// Catalog is the remote recipe catalog.
type Catalog interface {
	SearchByArea(ctx context.Context, area string) ([]recipedb.Recipe, error)
	GetByID(ctx context.Context, id string) (recipedb.Recipe, error)
}

// UserRecipes lists the recipes authored by an identity. A query lists them
// once and resolves ids against that list.
type UserRecipes interface {
	ListForIdentity(ctx context.Context, identityID string) ([]recipedb.Recipe, error)
}

// FavouriteSet is the session's favourite ids.
type FavouriteSet interface {
	List(ctx context.Context, ownerID string) ([]string, error)
}

// Sources are the session-scoped inputs of a query.
type Sources struct {
	// Identity is the signed-in identity, empty when anonymous.
	Identity string

	// FavouritesOwner owns the favourite set. It is the identity in identity
	// mode and the device id in anonymous mode.
	FavouritesOwner string

	UserRecipes UserRecipes
	Favourites  FavouriteSet
}

// Config configures an Engine.
type Config struct {
	// LookupConcurrency bounds concurrent catalog lookups when resolving
	// favourites.
	LookupConcurrency int

	// RetryWait is the wait before retrying a failed favourite lookup.
	RetryWait time.Duration
}

// NewEngine returns an Engine reading the catalog through cat.
func NewEngine(cat Catalog, cfg Config) *Engine {
	if cfg.LookupConcurrency <= 0 {
		cfg.LookupConcurrency = defaultLookupConcurrency
	}
	if cfg.RetryWait <= 0 {
		cfg.RetryWait = defaultRetryWait
	}
	return &Engine{
		catalog:           cat,
		lookupConcurrency: cfg.LookupConcurrency,
		retryWait:         cfg.RetryWait,
	}
}

// Engine answers queries. It never fails: source failures are reported in a
// partial Result.
type Engine struct {
	catalog           Catalog
	lookupConcurrency int
	retryWait         time.Duration
}

// Run answers q. Fan-out calls are buffered and merged after all of them
// settle, user recipes first, so the order does not depend on timing.
func (e *Engine) Run(ctx context.Context, q Query, s Sources) Result {
	ctx, span := tracer.Start(ctx, "aggregate.Run", trace.WithAttributes(attribute.String("kind", string(q.Kind))))
	defer span.End()

	var m merger
	var favs []string
	var grp errgroup.Group
	grp.Go(func() error {
		ids, err := s.Favourites.List(ctx, s.FavouritesOwner)
		if err != nil {
			m.fail(recipedb.SourceFavourites, err)
			return nil
		}
		favs = ids
		return nil
	})

	switch q.Kind {
	case KindByArea:
		grp.Go(func() error {
			e.byArea(ctx, q.Area, s, &m)
			return nil
		})
	case KindUserAuthored:
		grp.Go(func() error {
			e.userAuthored(ctx, s, &m)
			return nil
		})
	case KindByID:
		grp.Go(func() error {
			e.byID(ctx, q.ID, s, &m)
			return nil
		})
	case KindFavourites:
		// Resolution needs the favourite ids first.
	default:
		slog.WarnContext(ctx, "aggregate: unknown query kind", "kind", q.Kind)
	}
	_ = grp.Wait()

	if q.Kind == KindFavourites && !m.failed(recipedb.SourceFavourites) {
		e.favourites(ctx, favs, s, &m)
	}

	res := m.result(favs)
	metrics.AggregationsTotal.WithLabelValues(string(q.Kind), strconv.FormatBool(res.Partial)).Inc()
	span.SetAttributes(attribute.Int("items", len(res.Items)), attribute.Bool("partial", res.Partial))
	return res
}

func (e *Engine) byArea(ctx context.Context, area string, s Sources, m *merger) {
	var grp errgroup.Group
	grp.Go(func() error {
		recipes, err := s.UserRecipes.ListForIdentity(ctx, s.Identity)
		if err != nil {
			m.fail(recipedb.SourceUserRecipes, err)
			return nil
		}
		var matching []recipedb.Recipe
		for _, r := range recipes {
			if recipedb.SameArea(r.Area, area) {
				matching = append(matching, r)
			}
		}
		m.setUser(matching)
		return nil
	})
	grp.Go(func() error {
		recipes, err := e.catalog.SearchByArea(ctx, area)
		if err != nil {
			m.fail(recipedb.SourceCatalog, err)
			return nil
		}
		m.setCatalog(recipes)
		return nil
	})
	_ = grp.Wait()
}

func (e *Engine) userAuthored(ctx context.Context, s Sources, m *merger) {
	recipes, err := s.UserRecipes.ListForIdentity(ctx, s.Identity)
	if err != nil {
		m.fail(recipedb.SourceUserRecipes, err)
		return
	}
	m.setUser(recipes)
}

func (e *Engine) byID(ctx context.Context, id string, s Sources, m *merger) {
	recipes, err := s.UserRecipes.ListForIdentity(ctx, s.Identity)
	if err != nil {
		m.fail(recipedb.SourceUserRecipes, err)
	} else if i := slices.IndexFunc(recipes, func(r recipedb.Recipe) bool { return r.ID == id }); i >= 0 {
		m.setUser([]recipedb.Recipe{recipes[i]})
		return
	}

	if recipedb.ClassifyOrigin(id) != recipedb.OriginCatalog {
		return
	}
	r, err := e.catalog.GetByID(ctx, id)
	switch {
	case err == nil:
		m.setCatalog([]recipedb.Recipe{r})
	case errors.Is(err, recipedb.ErrNotFound):
	default:
		m.fail(recipedb.SourceCatalog, err)
	}
}

// favourites resolves ids against the user store first and then the catalog.
// An id that resolves in neither after one retry is dropped.
func (e *Engine) favourites(ctx context.Context, ids []string, s Sources, m *merger) {
	if len(ids) == 0 {
		return
	}

	owned, userErr := s.UserRecipes.ListForIdentity(ctx, s.Identity)
	if userErr != nil {
		m.fail(recipedb.SourceUserRecipes, userErr)
	}
	authored := make(map[string]recipedb.Recipe, len(owned))
	for _, r := range owned {
		authored[r.ID] = r
	}

	var user []recipedb.Recipe
	var remote []string
	for _, id := range ids {
		if r, ok := authored[id]; ok {
			user = append(user, r)
			continue
		}
		if recipedb.ClassifyOrigin(id) == recipedb.OriginUser {
			if userErr == nil {
				metrics.FavouritesDropped.Inc()
				slog.DebugContext(ctx, "aggregate: dropping dangling favourite", "id", id)
			}
			continue
		}
		remote = append(remote, id)
	}
	m.setUser(user)

	if len(remote) == 0 {
		return
	}

	batch := catalog.NewBatch(e.catalog)
	resolved := make([]recipedb.Recipe, len(remote))
	errs := make([]error, len(remote))
	exec := parallel.Limited(ctx, e.lookupConcurrency)
	for i, id := range remote {
		exec.Go(func(ctx context.Context) {
			resolved[i], errs[i] = e.lookupWithRetry(ctx, batch, id)
		})
	}
	exec.Wait()

	var recipes []recipedb.Recipe
	for i, err := range errs {
		switch {
		case err == nil:
			recipes = append(recipes, resolved[i])
		case errors.Is(err, recipedb.ErrNotFound):
			metrics.FavouritesDropped.Inc()
			slog.DebugContext(ctx, "aggregate: dropping dangling favourite", "id", remote[i])
		default:
			m.fail(recipedb.SourceCatalog, err)
		}
	}
	m.setCatalog(recipes)
}

func (e *Engine) lookupWithRetry(ctx context.Context, batch *catalog.Batch, id string) (recipedb.Recipe, error) {
	return backoff.Retry(ctx, func() (recipedb.Recipe, error) {
		return batch.GetByID(ctx, id)
	}, backoff.WithMaxTries(2), backoff.WithBackOff(backoff.NewConstantBackOff(e.retryWait)))
}

// merger buffers the outcome of each source until a query settles.
type merger struct {
	mu      sync.Mutex
	user    []recipedb.Recipe
	catalog []recipedb.Recipe
	errs    []SourceError
}

func (m *merger) setUser(recipes []recipedb.Recipe) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = recipes
}

func (m *merger) setCatalog(recipes []recipedb.Recipe) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.catalog = recipes
}

// fail records a failure of src. Each source is reported at most once.
func (m *merger) fail(src recipedb.Source, err error) {
	msg := err.Error()
	if sf, ok := recipedb.AsSourceFailure(err); ok {
		src = sf.Source
		msg = sf.Err.Error()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.errs {
		if e.Source == src {
			return
		}
	}
	m.errs = append(m.errs, SourceError{Source: src, Message: msg})
}

func (m *merger) failed(src recipedb.Source) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.errs {
		if e.Source == src {
			return true
		}
	}
	return false
}

func (m *merger) result(favourites []string) Result {
	m.mu.Lock()
	defer m.mu.Unlock()

	favs := make(map[string]struct{}, len(favourites))
	for _, id := range favourites {
		favs[id] = struct{}{}
	}

	res := Result{
		Items:        make([]Item, 0, len(m.user)+len(m.catalog)),
		Partial:      len(m.errs) > 0,
		SourceErrors: m.errs,
	}
	seen := make(map[string]struct{}, cap(res.Items))
	for _, group := range [][]recipedb.Recipe{m.user, m.catalog} {
		for _, r := range group {
			if _, dup := seen[r.ID]; dup {
				continue
			}
			seen[r.ID] = struct{}{}
			_, fav := favs[r.ID]
			res.Items = append(res.Items, Item{Recipe: r, Favourite: fav})
		}
	}
	return res
}
