// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/curioswitch/cookshelf/common/recipedb"
	"github.com/curioswitch/cookshelf/server/internal/metrics"
)

const (
	// DefaultBaseURL is the public TheMealDB API.
	DefaultBaseURL = "https://www.themealdb.com/api/json/v1/1"

	// DefaultTimeout bounds a single catalog request.
	DefaultTimeout = 10 * time.Second

	// maxResponseSize bounds the catalog response body (2MB).
	maxResponseSize = 2 * 1024 * 1024
)

var tracer = otel.Tracer("github.com/curioswitch/cookshelf/server/internal/catalog")

var errTooLarge = errors.New("catalog: response too large")

// Config configures a Gateway.
type Config struct {
	// BaseURL is the root of the catalog API, without a trailing slash.
	BaseURL string

	// Timeout bounds each request.
	Timeout time.Duration

	// HTTPClient overrides the client used for requests. Timeout is not applied
	// to it.
	HTTPClient *http.Client

	// BreakerFailures is the number of consecutive failures that opens the breaker.
	BreakerFailures uint32

	// BreakerCooldown is how long the breaker stays open before probing again.
	BreakerCooldown time.Duration
}

// Gateway reads recipes from the remote catalog. All transport and server
// failures are returned as *recipedb.SourceFailure.
type Gateway struct {
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

// NewGateway returns a Gateway for cfg, filling in defaults.
func NewGateway(cfg Config) *Gateway {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = 5
	}
	if cfg.BreakerCooldown == 0 {
		cfg.BreakerCooldown = 30 * time.Second
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "catalog",
		MaxRequests: 1,
		Timeout:     cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			slog.Warn("catalog: circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
		IsSuccessful: func(err error) bool {
			// A caller giving up is not a sign of an unhealthy catalog.
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return &Gateway{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  client,
		breaker: breaker,
	}
}

// SearchByArea returns summaries of the catalog recipes for a cuisine. Records
// that cannot be normalized are skipped and counted.
func (g *Gateway) SearchByArea(ctx context.Context, area string) ([]recipedb.Recipe, error) {
	ctx, span := tracer.Start(ctx, "catalog.SearchByArea", trace.WithAttributes(attribute.String("area", area)))
	defer span.End()

	meals, err := g.fetch(ctx, "filter", "filter.php", url.Values{"a": {area}})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	recipes := make([]recipedb.Recipe, 0, len(meals))
	skipped := 0
	for _, raw := range meals {
		var rec RawRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			skipped++
			continue
		}
		if err := rec.validate(false); err != nil {
			skipped++
			continue
		}
		recipes = append(recipes, rec.toRecipe(area))
	}
	if skipped > 0 {
		metrics.CatalogMalformedRecords.Add(float64(skipped))
		slog.WarnContext(ctx, "catalog: skipped malformed records", "area", area, "skipped", skipped)
	}
	span.SetAttributes(attribute.Int("results", len(recipes)), attribute.Int("skipped", skipped))
	return recipes, nil
}

// GetByID returns the full catalog recipe with the given id, or
// recipedb.ErrNotFound.
func (g *Gateway) GetByID(ctx context.Context, id string) (recipedb.Recipe, error) {
	ctx, span := tracer.Start(ctx, "catalog.GetByID", trace.WithAttributes(attribute.String("id", id)))
	defer span.End()

	if recipedb.ClassifyOrigin(id) != recipedb.OriginCatalog {
		return recipedb.Recipe{}, recipedb.ErrNotFound
	}

	meals, err := g.fetch(ctx, "lookup", "lookup.php", url.Values{"i": {id}})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return recipedb.Recipe{}, err
	}
	if len(meals) == 0 {
		return recipedb.Recipe{}, recipedb.ErrNotFound
	}

	var rec RawRecord
	if err := json.Unmarshal(meals[0], &rec); err == nil {
		err = rec.validate(true)
		if err == nil {
			return rec.toRecipe(""), nil
		}
		slog.WarnContext(ctx, "catalog: malformed lookup record", "id", id, "error", err)
	} else {
		slog.WarnContext(ctx, "catalog: undecodable lookup record", "id", id, "error", err)
	}
	metrics.CatalogMalformedRecords.Inc()
	return recipedb.Recipe{}, recipedb.ErrNotFound
}

func (g *Gateway) fetch(ctx context.Context, endpoint string, path string, params url.Values) ([]json.RawMessage, error) {
	start := time.Now()
	res, err := g.breaker.Execute(func() (any, error) {
		return g.doFetch(ctx, path, params)
	})
	metrics.CatalogRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		outcome := "error"
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			outcome = "rejected"
		}
		metrics.CatalogRequestsTotal.WithLabelValues(endpoint, outcome).Inc()
		return nil, recipedb.NewSourceFailure(recipedb.SourceCatalog, fmt.Errorf("catalog: %s: %w", endpoint, err))
	}
	metrics.CatalogRequestsTotal.WithLabelValues(endpoint, "ok").Inc()
	meals, _ := res.([]json.RawMessage)
	return meals, nil
}

func (g *Gateway) doFetch(ctx context.Context, path string, params url.Values) ([]json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/"+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if len(body) > maxResponseSize {
		return nil, errTooLarge
	}

	var meals mealsResponse
	if err := json.Unmarshal(body, &meals); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return meals.Meals, nil
}
