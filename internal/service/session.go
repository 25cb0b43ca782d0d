// Package service wires the progression components into per-player sessions.
package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/pet-progression/internal/achievement"
	"github.com/pet-progression/internal/catalog"
	"github.com/pet-progression/internal/clock"
	"github.com/pet-progression/internal/discovery"
	"github.com/pet-progression/internal/domain"
	"github.com/pet-progression/internal/events"
	"github.com/pet-progression/internal/interaction"
	"github.com/pet-progression/internal/inventory"
	"github.com/pet-progression/internal/mission"
	"github.com/pet-progression/internal/rewards"
	"github.com/pet-progression/internal/store"
)

// ActionRequest is one pet action submitted by the UI or the action stream.
type ActionRequest struct {
	PetID        string            `json:"pet_id"`
	Action       domain.ActionType `json:"action"`
	StatBoost    int               `json:"stat_boost"`
	AchievedGoal bool              `json:"achieved_goal"`
}

// ActionOutcome is the full result of RecordAction.
type ActionOutcome struct {
	interaction.ActionResult
	Points        *domain.PointsAward  `json:"points,omitempty"`
	Unlocked      []domain.Achievement `json:"unlocked,omitempty"`
	MissionsReady []domain.Mission     `json:"missions_ready,omitempty"`
}

// DiscoveryOutcome is the full result of Discover.
type DiscoveryOutcome struct {
	Records       []domain.DiscoveryRecord `json:"records"`
	Inventory     *domain.Inventory        `json:"inventory,omitempty"`
	Unlocked      []domain.Achievement     `json:"unlocked,omitempty"`
	MissionsReady []domain.Mission         `json:"missions_ready,omitempty"`
}

// Session is the progression engine of one player. Every operation holds the
// session lock so a player's documents are mutated by one caller at a time.
type Session struct {
	mu       sync.Mutex
	playerID string
	cal      *clock.Calendar
	bus      *events.Bus
	logger   *slog.Logger

	ledger       *interaction.Ledger
	discovery    *discovery.Scheduler
	inventory    *inventory.Inventory
	economy      *rewards.Economy
	wallet       *wallet
	missions     *mission.Tracker
	achievements *achievement.Tracker
}

// NewSession builds a session over st. Events are published on bus.
func NewSession(playerID string, st store.Store, cal *clock.Calendar, bus *events.Bus, rng discovery.Source, defaults discovery.Defaults, logger *slog.Logger) *Session {
	econ := rewards.New(playerID, st, cal, logger)
	w := &wallet{playerID: playerID, economy: econ, bus: bus, cal: cal}
	return &Session{
		playerID:     playerID,
		cal:          cal,
		bus:          bus,
		logger:       logger.With("component", "session", "player_id", playerID),
		ledger:       interaction.NewLedger(playerID, st, cal, logger),
		discovery:    discovery.NewScheduler(playerID, st, cal, rng, logger, discovery.WithDefaults(defaults)),
		inventory:    inventory.New(playerID, st, logger),
		economy:      econ,
		wallet:       w,
		missions:     mission.NewTracker(playerID, st, cal, w, logger),
		achievements: achievement.NewTracker(playerID, st, cal, bus, logger),
	}
}

// PlayerID returns the session's player.
func (s *Session) PlayerID() string {
	return s.playerID
}

func (s *Session) header() events.Header {
	return events.Header{PlayerID: s.playerID, Timestamp: s.cal.Now()}
}

// AdoptPet creates a new pet.
func (s *Session) AdoptPet(ctx context.Context, petID string) domain.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Adopt(ctx, petID)
}

// Pets returns the adopted pet ids.
func (s *Session) Pets(ctx context.Context) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Pets(ctx)
}

// Stats returns a pet's current stats.
func (s *Session) Stats(ctx context.Context, petID string) (domain.PetStats, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Stats(ctx, petID)
}

// AllStats returns the current stats of every pet. It never writes.
func (s *Session) AllStats(ctx context.Context) []domain.PetStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.PetStats
	for _, id := range s.ledger.Pets(ctx) {
		if st, ok := s.ledger.Stats(ctx, id); ok {
			out = append(out, st)
		}
	}
	return out
}

// RecordAction runs an action through the ledger and, on success, awards
// points, checks achievements and advances missions.
func (s *Session) RecordAction(ctx context.Context, req ActionRequest) ActionOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := ActionOutcome{ActionResult: s.ledger.RecordAction(ctx, req.PetID, req.Action, req.StatBoost)}
	if !out.Success {
		return out
	}
	s.bus.Publish(events.ActionRecorded{
		Header: s.header(),
		PetID:  req.PetID,
		Action: req.Action,
		Stats:  out.Stats,
	})

	award, ok := s.economy.AwardInteractionPoints(ctx, req.PetID, req.Action, req.AchievedGoal)
	measures := map[domain.RequirementType]int{}
	if ok {
		out.Points = &award
		acct := s.economy.Points(ctx)
		s.bus.Publish(events.PointsAwarded{Header: s.header(), Award: award, TotalPoints: acct.TotalPoints})

		interactions := 0
		for _, p := range acct.Pets {
			if p != nil {
				interactions += p.InteractionCount
			}
		}
		measures[domain.ReqInteract] = interactions
		measures[domain.ReqStreakDays] = acct.CurrentStreak
	}

	out.Unlocked = s.achievements.Check(ctx, measures)
	s.creditAchievements(ctx, out.Unlocked)

	out.MissionsReady = append(out.MissionsReady, s.missions.Track(ctx, domain.RequirementForAction(req.Action), 1)...)
	out.MissionsReady = append(out.MissionsReady, s.missions.Track(ctx, domain.ReqInteract, 1)...)
	if ok {
		out.MissionsReady = append(out.MissionsReady, s.missions.Track(ctx, domain.ReqEarnPoints, award.Total)...)
	}
	return out
}

// ShouldDiscover reports whether the discovery gate is open.
func (s *Session) ShouldDiscover(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.discovery.ShouldDiscover(ctx)
}

// Discover rolls for items and folds any finds into the inventory,
// achievements and missions.
func (s *Session) Discover(ctx context.Context) DiscoveryOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.discovery.Discover(ctx)
	out := DiscoveryOutcome{Records: records}
	if len(records) == 0 {
		out.Records = []domain.DiscoveryRecord{}
		return out
	}
	s.bus.Publish(events.DiscoveryMade{Header: s.header(), Records: records})

	deltas := inventory.DeltasFrom(records)
	if inv, ok := s.inventory.Apply(ctx, deltas); ok {
		out.Inventory = &inv
		changes := make(map[string]int, len(deltas))
		for _, d := range deltas {
			changes[d.ResourceID] += d.Quantity
		}
		s.bus.Publish(events.InventoryChanged{Header: s.header(), Deltas: changes, TotalQuantity: inv.TotalQuantity()})
		out.Unlocked = append(out.Unlocked, s.achievements.CheckInventory(ctx, inv)...)
	}

	history := s.discovery.History(ctx)
	out.Unlocked = append(out.Unlocked, s.achievements.CheckDiscoveries(ctx, history.Total)...)
	s.creditAchievements(ctx, out.Unlocked)

	out.MissionsReady = s.missions.Track(ctx, domain.ReqDiscoverItems, len(records))
	return out
}

// DiscoveryHistory returns the recent discoveries.
func (s *Session) DiscoveryHistory(ctx context.Context) domain.DiscoveryHistory {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.discovery.History(ctx)
}

// DiscoverySettings returns the discovery gate settings.
func (s *Session) DiscoverySettings(ctx context.Context) domain.DiscoverySettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.discovery.Settings(ctx)
}

// UpdateDiscoverySettings changes the discovery gate settings.
func (s *Session) UpdateDiscoverySettings(ctx context.Context, u discovery.SettingsUpdate) domain.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.discovery.UpdateSettings(ctx, u)
}

// Inventory returns the player's holdings.
func (s *Session) Inventory(ctx context.Context) domain.Inventory {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inventory.Load(ctx)
}

// Missions returns the active missions.
func (s *Session) Missions(ctx context.Context) []domain.Mission {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.missions.Missions(ctx)
}

// CompleteMission claims a finished mission.
func (s *Session) CompleteMission(ctx context.Context, id string) domain.MissionResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := s.missions.CompleteMission(ctx, id)
	if !res.Success {
		return res
	}
	s.bus.Publish(events.MissionCompleted{
		Header:        s.header(),
		MissionID:     res.MissionID,
		Scope:         res.Scope,
		CompletionKey: res.CompletionKey,
		Rewards:       res.Rewards,
	})
	if res.LevelAfter > res.LevelBefore {
		s.bus.Publish(events.LevelUp{Header: s.header(), From: res.LevelBefore, To: res.LevelAfter, Bonus: res.LevelUpBonus})
	}

	if len(res.Items) > 0 {
		deltas := make([]inventory.Delta, 0, len(res.Items))
		changes := make(map[string]int, len(res.Items))
		for _, it := range res.Items {
			deltas = append(deltas, inventory.Delta{ResourceID: it.ItemID, Rarity: rarityOf(it.ItemID), Quantity: it.Amount})
			changes[it.ItemID] += it.Amount
		}
		if inv, ok := s.inventory.Apply(ctx, deltas); ok {
			s.bus.Publish(events.InventoryChanged{Header: s.header(), Deltas: changes, TotalQuantity: inv.TotalQuantity()})
			s.creditAchievements(ctx, s.achievements.CheckInventory(ctx, inv))
		}
	}
	return res
}

// Progress returns the player's experience and level.
func (s *Session) Progress(ctx context.Context) domain.PlayerProgress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.missions.Progress(ctx)
}

// Achievements returns every achievement with progress.
func (s *Session) Achievements(ctx context.Context) []domain.Achievement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.achievements.Achievements(ctx)
}

// UpdateAchievement sets the progress of one achievement.
func (s *Session) UpdateAchievement(ctx context.Context, id string, value int) domain.AchievementUpdate {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := s.achievements.UpdateProgress(ctx, id, value)
	if res.Status == domain.UpdateCompleted && res.Achievement != nil {
		s.creditAchievements(ctx, []domain.Achievement{*res.Achievement})
	}
	return res
}

// AddCustomAchievement stores a player-defined achievement.
func (s *Session) AddCustomAchievement(ctx context.Context, spec achievement.CustomSpec) (domain.Achievement, domain.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.achievements.AddCustom(ctx, spec)
}

// RemoveCustomAchievement deletes a player-defined achievement.
func (s *Session) RemoveCustomAchievement(ctx context.Context, id string) domain.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.achievements.RemoveCustom(ctx, id)
}

// Points returns the points account.
func (s *Session) Points(ctx context.Context) domain.PointsAccount {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.economy.Points(ctx)
}

// Balance returns the star fragment balance.
func (s *Session) Balance(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.economy.Balance(ctx)
}

// Ledger returns the currency ledger with its transactions.
func (s *Session) Ledger(ctx context.Context) domain.CurrencyLedger {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.economy.Ledger(ctx)
}

// Spend debits star fragments.
func (s *Session) Spend(ctx context.Context, amount int, description string) domain.LedgerResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wallet.Spend(ctx, amount, description)
}

// ClaimDailyLogin credits the once-a-day login bonus.
func (s *Session) ClaimDailyLogin(ctx context.Context) domain.LedgerResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wallet.ClaimDailyLogin(ctx)
}

// creditAchievements pays the star fragment reward of each unlocked
// achievement. Callers hold the lock.
func (s *Session) creditAchievements(ctx context.Context, unlocked []domain.Achievement) {
	for _, a := range unlocked {
		if a.Reward.Type != domain.RewardStarFragments || a.Reward.Amount <= 0 {
			continue
		}
		if res := s.wallet.Earn(ctx, a.Reward.Amount, domain.SourceAchievement, a.Title); !res.Success {
			s.logger.Error("achievement reward not credited", "achievement_id", a.ID, "reason", res.Message)
		}
	}
}

func rarityOf(resourceID string) domain.Rarity {
	if r, ok := catalog.Lookup(resourceID); ok {
		return r.Rarity
	}
	return domain.RarityCommon
}
