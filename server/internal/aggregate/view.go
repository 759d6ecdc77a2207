// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package aggregate

import (
	"context"
	"sync"

	"github.com/curioswitch/cookshelf/server/internal/metrics"
)

// Runner answers a query.
type Runner interface {
	Run(ctx context.Context, q Query, s Sources) Result
}

// NewView returns a View answering through runner.
func NewView(runner Runner) *View {
	return &View{
		runner: runner,
	}
}

// View is one logical list a session renders, such as the recipe grid. When
// queries overlap, only the most recently submitted one is published.
type View struct {
	runner Runner

	mu        sync.Mutex
	seq       uint64
	latest    Result
	published bool
}

// Submit runs q and publishes its result unless a newer query was submitted
// while it ran. The returned bool reports whether the result was published.
func (v *View) Submit(ctx context.Context, q Query, s Sources) (Result, bool) {
	v.mu.Lock()
	v.seq++
	seq := v.seq
	v.mu.Unlock()

	res := v.runner.Run(ctx, q, s)

	v.mu.Lock()
	defer v.mu.Unlock()
	if seq != v.seq {
		metrics.AggregationsSuperseded.Inc()
		return res, false
	}
	v.latest = res
	v.published = true
	return res, true
}

// Latest returns the last published result.
func (v *View) Latest() (Result, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.latest, v.published
}
