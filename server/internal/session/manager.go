// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/curioswitch/cookshelf/server/internal/aggregate"
	"github.com/curioswitch/cookshelf/server/internal/auth"
	"github.com/curioswitch/cookshelf/server/internal/favourites"
	"github.com/curioswitch/cookshelf/server/internal/metrics"
	"github.com/curioswitch/cookshelf/server/internal/userrecipes"
)

const (
	defaultIdleTTL     = 30 * time.Minute
	defaultMaxSessions = 10000
)

// Config configures a Manager.
type Config struct {
	// Mode selects whether favourites belong to identities or devices.
	Mode favourites.Mode

	// IdleTTL is how long an unused session is kept.
	IdleTTL time.Duration

	// MaxSessions bounds the sessions kept in memory. The least recently used
	// session is evicted to make room.
	MaxSessions int
}

// NewManager returns a Manager creating sessions over the given stores.
func NewManager(runner aggregate.Runner, recipes userrecipes.Backend, images userrecipes.ImageWriter, favs favourites.Store, cfg Config) *Manager {
	if cfg.Mode == "" {
		cfg.Mode = favourites.ModeIdentity
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = defaultIdleTTL
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = defaultMaxSessions
	}
	return &Manager{
		runner:      runner,
		recipes:     recipes,
		images:      images,
		favs:        favs,
		mode:        cfg.Mode,
		idleTTL:     cfg.IdleTTL,
		maxSessions: cfg.MaxSessions,
		now:         time.Now,
		sessions:    map[key]*entry{},
	}
}

type key struct {
	identity string
	device   string
}

type entry struct {
	session  *Session
	lastUsed time.Time
}

// Manager owns the sessions of all clients and evicts idle ones.
type Manager struct {
	runner      aggregate.Runner
	recipes     userrecipes.Backend
	images      userrecipes.ImageWriter
	favs        favourites.Store
	mode        favourites.Mode
	idleTTL     time.Duration
	maxSessions int
	now         func() time.Time

	mu       sync.Mutex
	sessions map[key]*entry
}

// Mode returns the favourites mode of the deployment.
func (m *Manager) Mode() favourites.Mode {
	return m.mode
}

// Get returns the session of identity on device, creating it if needed.
// Either may be empty.
func (m *Manager) Get(identity string, device string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := key{identity: identity, device: device}
	e, ok := m.sessions[k]
	if !ok {
		if len(m.sessions) >= m.maxSessions {
			m.evictOldestLocked()
		}
		e = &entry{session: m.newSession(identity, device)}
		m.sessions[k] = e
		metrics.ActiveSessions.Set(float64(len(m.sessions)))
	}
	e.lastUsed = m.now()
	return e.session
}

// FromContext returns the session of the request in ctx. A device whose cookie
// was issued by this request gets a session that is not kept, so clients that
// drop cookies cannot fill the manager.
func (m *Manager) FromContext(ctx context.Context) *Session {
	identity, device := auth.UserID(ctx), auth.DeviceID(ctx)
	if auth.IsNewDevice(ctx) {
		return m.newSession(identity, device)
	}
	return m.Get(identity, device)
}

// Sweep evicts sessions idle for longer than the TTL and returns how many were
// evicted.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-m.idleTTL)
	evicted := 0
	for k, e := range m.sessions {
		if e.lastUsed.Before(cutoff) {
			delete(m.sessions, k)
			evicted++
		}
	}
	metrics.ActiveSessions.Set(float64(len(m.sessions)))
	return evicted
}

func (m *Manager) evictOldestLocked() {
	var oldest key
	var oldestUsed time.Time
	found := false
	for k, e := range m.sessions {
		if !found || e.lastUsed.Before(oldestUsed) {
			oldest, oldestUsed, found = k, e.lastUsed, true
		}
	}
	if found {
		delete(m.sessions, oldest)
	}
}

// Run sweeps idle sessions until ctx is done.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(m.idleTTL / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				slog.DebugContext(ctx, "session: evicted idle sessions", "count", n)
			}
		}
	}
}

func (m *Manager) newSession(identity string, device string) *Session {
	owner := identity
	if m.mode == favourites.ModeAnonymous {
		owner = device
	}
	return &Session{
		identity:        identity,
		favouritesOwner: owner,
		runner:          m.runner,
		ledger:          favourites.NewLedger(m.favs),
		recipes:         userrecipes.NewAdapter(m.recipes, m.images),
		views:           map[string]*aggregate.View{},
	}
}
