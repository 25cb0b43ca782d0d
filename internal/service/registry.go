package service

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/pet-progression/internal/clock"
	"github.com/pet-progression/internal/discovery"
	"github.com/pet-progression/internal/domain"
	"github.com/pet-progression/internal/events"
	"github.com/pet-progression/internal/random"
	"github.com/pet-progression/internal/store"
)

// Options configures the sessions built by a Registry.
type Options struct {
	Clock     clock.Clock
	Location  *time.Location
	Seed      int64
	Discovery discovery.Defaults
}

// Registry lazily builds one Session per player over a shared store and bus.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	store    store.Store
	bus      *events.Bus
	cal      *clock.Calendar
	seed     int64
	defaults discovery.Defaults
	logger   *slog.Logger
}

// NewRegistry creates a registry. A zero seed draws one from crypto/rand.
func NewRegistry(st store.Store, bus *events.Bus, opts Options, logger *slog.Logger) (*Registry, error) {
	seed := opts.Seed
	if seed == 0 {
		var err error
		if seed, err = random.NewSeed(); err != nil {
			return nil, fmt.Errorf("seeding discovery: %w", err)
		}
	}
	defaults := opts.Discovery
	if defaults == (discovery.Defaults{}) {
		defaults = discovery.DefaultDefaults()
	}
	return &Registry{
		sessions: make(map[string]*Session),
		store:    st,
		bus:      bus,
		cal:      clock.NewCalendar(opts.Clock, opts.Location),
		seed:     seed,
		defaults: defaults,
		logger:   logger,
	}, nil
}

// Session returns the session of playerID, building it on first use.
func (r *Registry) Session(playerID string) (*Session, error) {
	if playerID == "" {
		return nil, fmt.Errorf("%w: player id is required", domain.ErrInvalidRequest)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[playerID]; ok {
		return s, nil
	}
	s := NewSession(playerID, r.store, r.cal, r.bus, random.ForPlayer(r.seed, playerID), r.defaults, r.logger)
	r.sessions[playerID] = s
	r.logger.Debug("session created", "player_id", playerID)
	return s, nil
}

// PlayerIDs returns the players with a live session, sorted.
func (r *Registry) PlayerIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Calendar returns the calendar shared by every session.
func (r *Registry) Calendar() *clock.Calendar {
	return r.cal
}
