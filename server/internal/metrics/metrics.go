// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

// Package metrics provides Prometheus metrics for the cookshelf server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CatalogRequestsTotal tracks catalog requests by endpoint and outcome.
	CatalogRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cookshelf",
			Subsystem: "catalog",
			Name:      "requests_total",
			Help:      "Total number of catalog requests by endpoint and outcome",
		},
		[]string{"endpoint", "outcome"},
	)

	// CatalogRequestDuration tracks catalog request latency.
	CatalogRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cookshelf",
			Subsystem: "catalog",
			Name:      "request_duration_seconds",
			Help:      "Duration of catalog requests in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"endpoint"},
	)

	// CatalogMalformedRecords counts catalog records skipped during normalization.
	CatalogMalformedRecords = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "cookshelf",
			Subsystem: "catalog",
			Name:      "malformed_records_total",
			Help:      "Total number of catalog records skipped because they could not be normalized",
		},
	)

	// UserRecipesMalformedRecords counts stored user recipes skipped during normalization.
	UserRecipesMalformedRecords = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "cookshelf",
			Subsystem: "user_recipes",
			Name:      "malformed_records_total",
			Help:      "Total number of stored user recipes skipped because they could not be normalized",
		},
	)

	// AggregationsTotal tracks aggregations by query kind and completeness.
	AggregationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cookshelf",
			Subsystem: "aggregate",
			Name:      "queries_total",
			Help:      "Total number of aggregation queries by kind and whether the result was partial",
		},
		[]string{"kind", "partial"},
	)

	// AggregationsSuperseded counts results discarded because a newer query was issued.
	AggregationsSuperseded = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "cookshelf",
			Subsystem: "aggregate",
			Name:      "superseded_total",
			Help:      "Total number of aggregation results discarded in favor of a newer query",
		},
	)

	// FavouritesDropped counts favourite ids dropped because they no longer resolve.
	FavouritesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "cookshelf",
			Subsystem: "aggregate",
			Name:      "dangling_favourites_total",
			Help:      "Total number of favourite ids dropped because they resolved in no source",
		},
	)

	// FavouriteRollbacks counts optimistic favourite changes undone after a store failure.
	FavouriteRollbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cookshelf",
			Subsystem: "favourites",
			Name:      "rollbacks_total",
			Help:      "Total number of optimistic favourite changes rolled back",
		},
		[]string{"op"},
	)

	// ActiveSessions tracks sessions currently held in memory.
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "cookshelf",
			Subsystem: "session",
			Name:      "active",
			Help:      "Number of sessions held in memory",
		},
	)
)
