// Package discovery rolls cooldown- and cap-gated resource discoveries.
package discovery

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pet-progression/internal/catalog"
	"github.com/pet-progression/internal/clock"
	"github.com/pet-progression/internal/domain"
	"github.com/pet-progression/internal/store"
)

// HistoryLimit bounds the stored discovery history.
const HistoryLimit = 100

// Source is the random source behind every roll. *rand.Rand satisfies it.
type Source interface {
	Float64() float64
	Intn(n int) int
}

// Defaults seeds the settings document of a player who has none yet.
type Defaults struct {
	Enabled       bool
	IntervalHours float64
	Chance        float64
	MaxPerDay     int
}

// DefaultDefaults returns the stock discovery gate.
func DefaultDefaults() Defaults {
	return Defaults{
		Enabled:       true,
		IntervalHours: 4,
		Chance:        0.5,
		MaxPerDay:     10,
	}
}

// itemCountWeights is the cumulative distribution of draws per discovery.
var itemCountWeights = []struct {
	upTo  float64
	count int
}{
	{0.60, 1},
	{0.80, 2},
	{1.00, 3},
}

// rarityCutoffs is the cumulative distribution of rarity tiers.
var rarityCutoffs = []struct {
	upTo   float64
	rarity domain.Rarity
}{
	{0.60, domain.RarityCommon},
	{0.85, domain.RarityUncommon},
	{0.95, domain.RarityRare},
	{0.99, domain.RarityEpic},
}

// Scheduler owns a player's discovery settings and history.
type Scheduler struct {
	playerID string
	store    store.Store
	cal      *clock.Calendar
	rng      Source
	pools    catalog.Pools
	flavors  map[domain.Rarity][]string
	defaults Defaults
	logger   *slog.Logger
}

// Option customizes a Scheduler.
type Option func(*Scheduler)

// WithPools replaces the resource pools.
func WithPools(p catalog.Pools) Option {
	return func(s *Scheduler) { s.pools = p }
}

// WithDefaults replaces the settings used for new players.
func WithDefaults(d Defaults) Option {
	return func(s *Scheduler) { s.defaults = d }
}

// NewScheduler creates a scheduler for one player.
func NewScheduler(playerID string, st store.Store, cal *clock.Calendar, rng Source, logger *slog.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{
		playerID: playerID,
		store:    st,
		cal:      cal,
		rng:      rng,
		pools:    catalog.DefaultPools(),
		flavors:  catalog.FlavorMessages,
		defaults: DefaultDefaults(),
		logger:   logger.With("component", "discovery", "player_id", playerID),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scheduler) defaultSettings() domain.DiscoverySettings {
	return domain.DiscoverySettings{
		Version:         domain.DiscoverySettingsVersion,
		Enabled:         s.defaults.Enabled,
		IntervalHours:   s.defaults.IntervalHours,
		DiscoveryChance: s.defaults.Chance,
		MaxPerDay:       s.defaults.MaxPerDay,
		LastResetDate:   s.cal.Today(),
	}
}

// load returns the hydrated settings with the daily counter reset applied in
// memory. ok is false when storage failed.
func (s *Scheduler) load(ctx context.Context) (domain.DiscoverySettings, bool) {
	settings := s.defaultSettings()
	if _, err := s.store.Get(ctx, store.DiscoverySettingsKey(s.playerID), &settings); err != nil {
		s.logger.Warn("failed to load discovery settings", "error", err)
		return s.defaultSettings(), false
	}
	settings.Version = domain.DiscoverySettingsVersion
	if today := s.cal.Today(); settings.LastResetDate != today {
		settings.DailyCount = 0
		settings.LastResetDate = today
	}
	return settings, true
}

// Settings returns the current settings, or the defaults when storage fails.
func (s *Scheduler) Settings(ctx context.Context) domain.DiscoverySettings {
	settings, _ := s.load(ctx)
	return settings
}

// SettingsUpdate is a partial change to the settings. Nil fields are kept.
type SettingsUpdate struct {
	Enabled       *bool    `json:"enabled,omitempty"`
	IntervalHours *float64 `json:"interval_hours,omitempty"`
	Chance        *float64 `json:"discovery_chance,omitempty"`
	MaxPerDay     *int     `json:"max_per_day,omitempty"`
}

// UpdateSettings applies u after validating it.
func (s *Scheduler) UpdateSettings(ctx context.Context, u SettingsUpdate) domain.Result {
	settings, ok := s.load(ctx)
	if !ok {
		return domain.Fail("Couldn't reach storage, try again.")
	}
	if u.IntervalHours != nil && *u.IntervalHours < 0 {
		return domain.Fail("Interval must not be negative.")
	}
	if u.Chance != nil && (*u.Chance < 0 || *u.Chance > 1) {
		return domain.Fail("Discovery chance must be between 0 and 1.")
	}
	if u.MaxPerDay != nil && *u.MaxPerDay < 0 {
		return domain.Fail("Daily maximum must not be negative.")
	}

	if u.Enabled != nil {
		settings.Enabled = *u.Enabled
	}
	if u.IntervalHours != nil {
		settings.IntervalHours = *u.IntervalHours
	}
	if u.Chance != nil {
		settings.DiscoveryChance = *u.Chance
	}
	if u.MaxPerDay != nil {
		settings.MaxPerDay = *u.MaxPerDay
	}

	if err := s.store.Set(ctx, store.DiscoverySettingsKey(s.playerID), settings); err != nil {
		s.logger.Warn("failed to save discovery settings", "error", err)
		return domain.Fail("Couldn't reach storage, try again.")
	}
	return domain.Ok("Discovery settings saved.")
}

func (s *Scheduler) gateOpen(settings domain.DiscoverySettings, now time.Time) bool {
	if !settings.Enabled {
		return false
	}
	if settings.DailyCount >= settings.MaxPerDay {
		return false
	}
	since := now.Sub(settings.LastDiscoveryTime).Hours()
	return since >= settings.IntervalHours
}

// ShouldDiscover reports whether the gate is open: enabled, cooled down and
// under the daily cap.
func (s *Scheduler) ShouldDiscover(ctx context.Context) bool {
	settings, ok := s.load(ctx)
	if !ok {
		return false
	}
	return s.gateOpen(settings, s.cal.Now())
}

// Discover rolls for items when the gate is open. A roll that finds nothing
// leaves the gate untouched so the player can try again.
func (s *Scheduler) Discover(ctx context.Context) []domain.DiscoveryRecord {
	settings, ok := s.load(ctx)
	if !ok {
		return nil
	}
	now := s.cal.Now()
	if !s.gateOpen(settings, now) {
		return nil
	}

	records := s.roll(settings.DiscoveryChance, now)
	if len(records) == 0 {
		return nil
	}

	settings.LastDiscoveryTime = now
	settings.DailyCount += len(records)
	if err := s.store.Set(ctx, store.DiscoverySettingsKey(s.playerID), settings); err != nil {
		s.logger.Warn("failed to save discovery settings", "error", err)
		return nil
	}

	s.appendHistory(ctx, records)
	return records
}

func (s *Scheduler) roll(chance float64, now time.Time) []domain.DiscoveryRecord {
	n := s.itemCount()
	var records []domain.DiscoveryRecord
	for i := 0; i < n; i++ {
		if s.rng.Float64() >= chance {
			continue
		}
		rarity := s.rarity()
		pool := s.pools[rarity]
		if len(pool) == 0 {
			continue
		}
		res := pool[s.rng.Intn(len(pool))]
		records = append(records, domain.DiscoveryRecord{
			ID:         uuid.NewString(),
			ResourceID: res.ID,
			Quantity:   s.quantity(rarity),
			Rarity:     rarity,
			Timestamp:  now,
			Message:    s.flavor(rarity),
		})
	}
	return records
}

func (s *Scheduler) itemCount() int {
	r := s.rng.Float64()
	for _, w := range itemCountWeights {
		if r < w.upTo {
			return w.count
		}
	}
	return itemCountWeights[len(itemCountWeights)-1].count
}

func (s *Scheduler) rarity() domain.Rarity {
	r := s.rng.Float64()
	for _, c := range rarityCutoffs {
		if r <= c.upTo {
			return c.rarity
		}
	}
	return domain.RarityLegendary
}

func (s *Scheduler) quantity(r domain.Rarity) int {
	switch r {
	case domain.RarityCommon:
		return 1 + s.rng.Intn(3)
	case domain.RarityUncommon:
		return 1 + s.rng.Intn(2)
	default:
		return 1
	}
}

func (s *Scheduler) flavor(r domain.Rarity) string {
	msgs := s.flavors[r]
	if len(msgs) == 0 {
		return ""
	}
	return msgs[s.rng.Intn(len(msgs))]
}

// History returns the stored discovery history, empty when storage fails.
func (s *Scheduler) History(ctx context.Context) domain.DiscoveryHistory {
	var h domain.DiscoveryHistory
	if _, err := s.store.Get(ctx, store.DiscoveryHistoryKey(s.playerID), &h); err != nil {
		s.logger.Warn("failed to load discovery history", "error", err)
		return domain.DiscoveryHistory{Version: domain.DiscoverySettingsVersion}
	}
	h.Version = domain.DiscoverySettingsVersion
	return h
}

func (s *Scheduler) appendHistory(ctx context.Context, records []domain.DiscoveryRecord) {
	var h domain.DiscoveryHistory
	if _, err := s.store.Get(ctx, store.DiscoveryHistoryKey(s.playerID), &h); err != nil {
		s.logger.Warn("failed to load discovery history", "error", err)
		return
	}
	h.Version = domain.DiscoverySettingsVersion
	h.Total += len(records)
	h.Records = append(h.Records, records...)
	if over := len(h.Records) - HistoryLimit; over > 0 {
		h.Records = h.Records[over:]
	}
	if err := s.store.Set(ctx, store.DiscoveryHistoryKey(s.playerID), h); err != nil {
		s.logger.Warn("failed to save discovery history", "error", err)
	}
}
