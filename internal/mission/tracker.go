package mission

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pet-progression/internal/catalog"
	"github.com/pet-progression/internal/clock"
	"github.com/pet-progression/internal/domain"
	"github.com/pet-progression/internal/store"
)

// LevelUpBonusPerLevel is multiplied by the new level on level-up.
const LevelUpBonusPerLevel = 50

const storageFailure = "Couldn't reach storage, try again."

// Wallet credits star fragments.
type Wallet interface {
	Earn(ctx context.Context, amount int, source, description string) domain.LedgerResult
}

// Tracker owns a player's mission progress and experience.
type Tracker struct {
	playerID  string
	store     store.Store
	cal       *clock.Calendar
	wallet    Wallet
	templates []catalog.MissionTemplate
	logger    *slog.Logger
}

// Option customizes a Tracker.
type Option func(*Tracker)

// WithTemplates replaces the mission set.
func WithTemplates(templates []catalog.MissionTemplate) Option {
	return func(t *Tracker) { t.templates = templates }
}

// NewTracker creates the mission tracker for one player.
func NewTracker(playerID string, st store.Store, cal *clock.Calendar, wallet Wallet, logger *slog.Logger, opts ...Option) *Tracker {
	t := &Tracker{
		playerID:  playerID,
		store:     st,
		cal:       cal,
		wallet:    wallet,
		templates: catalog.Missions,
		logger:    logger.With("component", "mission", "player_id", playerID),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

type documents struct {
	periodic  domain.MissionState
	season    domain.MissionState
	seasonKey string
}

func (t *Tracker) load(ctx context.Context) (documents, error) {
	docs := documents{
		periodic:  NewState(),
		season:    NewState(),
		seasonKey: t.cal.SeasonKey(t.cal.Now()),
	}
	if _, err := t.store.Get(ctx, store.MissionsKey(t.playerID), &docs.periodic); err != nil {
		return docs, fmt.Errorf("loading missions: %w", err)
	}
	if _, err := t.store.Get(ctx, store.SeasonMissionsKey(t.playerID, docs.seasonKey), &docs.season); err != nil {
		return docs, fmt.Errorf("loading season missions: %w", err)
	}
	normalize(&docs.periodic)
	normalize(&docs.season)
	return docs, nil
}

func (t *Tracker) save(ctx context.Context, docs documents, periodic, season bool) error {
	if periodic {
		prune(t.cal, t.templates, &docs.periodic, t.cal.Now())
		if err := t.store.Set(ctx, store.MissionsKey(t.playerID), docs.periodic); err != nil {
			return fmt.Errorf("saving missions: %w", err)
		}
	}
	if season {
		if err := t.store.Set(ctx, store.SeasonMissionsKey(t.playerID, docs.seasonKey), docs.season); err != nil {
			return fmt.Errorf("saving season missions: %w", err)
		}
	}
	return nil
}

// Missions returns the active missions, or the bare templates when storage
// fails.
func (t *Tracker) Missions(ctx context.Context) []domain.Mission {
	docs, err := t.load(ctx)
	if err != nil {
		t.logger.Warn("failed to load missions", "error", err)
		docs = documents{periodic: NewState(), season: NewState()}
	}
	return Hydrate(t.cal, t.templates, docs.periodic, docs.season, t.cal.Now())
}

// Track adds amount to every open mission counting reqType. It returns the
// missions that reached their target with this call.
func (t *Tracker) Track(ctx context.Context, reqType domain.RequirementType, amount int) []domain.Mission {
	if amount <= 0 || reqType == "" {
		return nil
	}
	docs, err := t.load(ctx)
	if err != nil {
		t.logger.Warn("failed to load missions", "error", err)
		return nil
	}

	now := t.cal.Now()
	var periodic, season bool
	var ready []string
	for _, tpl := range t.templates {
		if tpl.Requirement.Type != reqType {
			continue
		}
		state := &docs.periodic
		if tpl.Scope == domain.ScopeSeason {
			state = &docs.season
		}
		key := CompletionKey(t.cal, tpl, now)
		if _, done := state.Completed[key]; done {
			continue
		}
		before := state.Progress[key]
		if before >= tpl.Requirement.Target {
			continue
		}
		after := min(before+amount, tpl.Requirement.Target)
		state.Progress[key] = after
		if tpl.Scope == domain.ScopeSeason {
			season = true
		} else {
			periodic = true
		}
		if after >= tpl.Requirement.Target {
			ready = append(ready, tpl.ID)
		}
	}
	if !periodic && !season {
		return nil
	}

	if err := t.save(ctx, docs, periodic, season); err != nil {
		t.logger.Warn("failed to save mission progress", "requirement", reqType, "error", err)
		return nil
	}

	if len(ready) == 0 {
		return nil
	}
	all := Hydrate(t.cal, t.templates, docs.periodic, docs.season, now)
	out := make([]domain.Mission, 0, len(ready))
	for _, m := range all {
		for _, id := range ready {
			if m.ID == id {
				out = append(out, m)
			}
		}
	}
	return out
}

func (t *Tracker) template(id string) (catalog.MissionTemplate, bool) {
	for _, tpl := range t.templates {
		if tpl.ID == id {
			return tpl, true
		}
	}
	return catalog.MissionTemplate{}, false
}

// CompleteMission claims a finished mission. The completion key is recorded
// before any reward is credited so a key is paid at most once.
func (t *Tracker) CompleteMission(ctx context.Context, id string) domain.MissionResult {
	res := domain.MissionResult{MissionID: id}

	tpl, ok := t.template(id)
	if !ok {
		res.Result = domain.Fail(fmt.Sprintf("Unknown mission %q.", id))
		return res
	}

	docs, err := t.load(ctx)
	if err != nil {
		t.logger.Warn("failed to load missions", "mission_id", id, "error", err)
		res.Result = domain.Fail(storageFailure)
		return res
	}

	now := t.cal.Now()
	key := CompletionKey(t.cal, tpl, now)
	state := &docs.periodic
	if tpl.Scope == domain.ScopeSeason {
		state = &docs.season
	}
	if _, done := state.Completed[key]; done {
		res.Result = domain.Fail("Mission already completed.")
		return res
	}
	if progress := state.Progress[key]; progress < tpl.Requirement.Target {
		res.Result = domain.Fail(fmt.Sprintf("Mission not finished yet (%d/%d).", progress, tpl.Requirement.Target))
		return res
	}

	state.Completed[key] = now
	res.Scope = tpl.Scope
	res.CompletionKey = key
	res.Rewards = append([]domain.Reward(nil), tpl.Rewards...)
	isSeason := tpl.Scope == domain.ScopeSeason
	if err := t.save(ctx, docs, !isSeason, isSeason); err != nil {
		t.logger.Warn("failed to record mission completion", "mission_id", id, "error", err)
		res.Result = domain.Fail(storageFailure)
		return res
	}

	for _, r := range tpl.Rewards {
		switch r.Type {
		case domain.RewardStarFragments:
			res.StarFragments += r.Amount
		case domain.RewardExperience:
			res.Experience += r.Amount
		case domain.RewardItem:
			res.Items = append(res.Items, r)
		}
	}

	if res.StarFragments > 0 {
		if credit := t.wallet.Earn(ctx, res.StarFragments, domain.SourceMission, tpl.Title); !credit.Success {
			t.logger.Error("mission reward not credited", "mission_id", id, "amount", res.StarFragments, "reason", credit.Message)
		}
	}

	res.LevelBefore, res.LevelAfter = t.addExperience(ctx, res.Experience)
	if res.LevelAfter > res.LevelBefore {
		res.LevelUpBonus = res.LevelAfter * LevelUpBonusPerLevel
		desc := fmt.Sprintf("Reached level %d", res.LevelAfter)
		if credit := t.wallet.Earn(ctx, res.LevelUpBonus, domain.SourceLevelUp, desc); !credit.Success {
			t.logger.Error("level-up bonus not credited", "level", res.LevelAfter, "reason", credit.Message)
		}
	}

	if tpl.Scope == domain.ScopeDaily {
		t.Track(ctx, domain.ReqCompleteDaily, 1)
	}

	t.logger.Info("mission completed", "mission_id", id, "completion_key", key)
	res.Result = domain.Ok(fmt.Sprintf("%s complete! +%d star fragments, +%d XP.", tpl.Title, res.StarFragments, res.Experience))
	return res
}

func (t *Tracker) loadProgress(ctx context.Context) (domain.PlayerProgress, error) {
	p := domain.PlayerProgress{Version: domain.PlayerProgressVersion, Level: 1}
	if _, err := t.store.Get(ctx, store.ProgressKey(t.playerID), &p); err != nil {
		return domain.PlayerProgress{Version: domain.PlayerProgressVersion, Level: 1}, err
	}
	p.Version = domain.PlayerProgressVersion
	p.Level = domain.LevelForExperience(p.Experience)
	return p, nil
}

// Progress returns the player's experience and level.
func (t *Tracker) Progress(ctx context.Context) domain.PlayerProgress {
	p, err := t.loadProgress(ctx)
	if err != nil {
		t.logger.Warn("failed to load progress", "error", err)
	}
	return p
}

func (t *Tracker) addExperience(ctx context.Context, xp int) (before, after int) {
	p, err := t.loadProgress(ctx)
	if err != nil {
		t.logger.Warn("failed to load progress", "error", err)
		return p.Level, p.Level
	}
	before = p.Level
	if xp <= 0 {
		return before, before
	}

	p.Experience += xp
	p.Level = domain.LevelForExperience(p.Experience)
	p.UpdatedAt = t.cal.Now()
	if err := t.store.Set(ctx, store.ProgressKey(t.playerID), p); err != nil {
		t.logger.Warn("failed to save progress", "error", err)
		return before, before
	}
	return before, p.Level
}
