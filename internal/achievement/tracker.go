// Package achievement tracks threshold achievements and custom player goals.
package achievement

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/pet-progression/internal/catalog"
	"github.com/pet-progression/internal/clock"
	"github.com/pet-progression/internal/domain"
	"github.com/pet-progression/internal/events"
	"github.com/pet-progression/internal/store"
)

const storageFailure = "Couldn't reach storage, try again."

// Publisher receives unlock notifications.
type Publisher interface {
	Publish(e events.Event)
}

// Tracker owns a player's achievement document.
type Tracker struct {
	playerID  string
	store     store.Store
	cal       *clock.Calendar
	publisher Publisher
	templates []catalog.AchievementTemplate
	newID     func() string
	logger    *slog.Logger
}

// Option customizes a Tracker.
type Option func(*Tracker)

// WithTemplates replaces the built-in achievement set.
func WithTemplates(templates []catalog.AchievementTemplate) Option {
	return func(t *Tracker) { t.templates = templates }
}

// NewTracker creates the achievement tracker for one player.
func NewTracker(playerID string, st store.Store, cal *clock.Calendar, pub Publisher, logger *slog.Logger, opts ...Option) *Tracker {
	t := &Tracker{
		playerID:  playerID,
		store:     st,
		cal:       cal,
		publisher: pub,
		templates: catalog.Achievements,
		newID:     uuid.NewString,
		logger:    logger.With("component", "achievement", "player_id", playerID),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func newState() domain.AchievementState {
	return domain.AchievementState{
		Version:  domain.AchievementStateVersion,
		Progress: make(map[string]*domain.AchievementProgress),
	}
}

func (t *Tracker) load(ctx context.Context) (domain.AchievementState, error) {
	s := newState()
	if _, err := t.store.Get(ctx, store.AchievementsKey(t.playerID), &s); err != nil {
		return newState(), fmt.Errorf("loading achievements: %w", err)
	}
	s.Version = domain.AchievementStateVersion
	if s.Progress == nil {
		s.Progress = make(map[string]*domain.AchievementProgress)
	}
	return s, nil
}

func (t *Tracker) save(ctx context.Context, s domain.AchievementState) error {
	if err := t.store.Set(ctx, store.AchievementsKey(t.playerID), s); err != nil {
		return fmt.Errorf("saving achievements: %w", err)
	}
	return nil
}

// Hydrate merges the templates and the stored custom definitions with the
// stored progress.
func Hydrate(templates []catalog.AchievementTemplate, s domain.AchievementState) []domain.Achievement {
	out := make([]domain.Achievement, 0, len(templates)+len(s.Custom))
	for _, tpl := range templates {
		out = append(out, domain.Achievement{
			ID:          tpl.ID,
			Title:       tpl.Title,
			Description: tpl.Description,
			Category:    tpl.Category,
			Requirement: tpl.Requirement,
			Reward:      tpl.Reward,
		})
	}
	for _, c := range s.Custom {
		c.Custom = true
		c.Progress, c.Completed, c.CompletedAt = 0, false, nil
		out = append(out, c)
	}
	for i := range out {
		if p := s.Progress[out[i].ID]; p != nil {
			out[i].Progress = p.Progress
			out[i].Completed = p.Completed
			out[i].CompletedAt = p.CompletedAt
		}
	}
	return out
}

// Achievements returns every achievement, without progress when storage fails.
func (t *Tracker) Achievements(ctx context.Context) []domain.Achievement {
	s, err := t.load(ctx)
	if err != nil {
		t.logger.Warn("failed to load achievements", "error", err)
	}
	return Hydrate(t.templates, s)
}

// apply sets a's progress to min(value, target) in s. It reports what changed
// and the updated achievement.
func (t *Tracker) apply(s *domain.AchievementState, a domain.Achievement, value int) (domain.UpdateStatus, domain.Achievement) {
	if a.Completed {
		return domain.UpdateNoop, a
	}
	progress := min(max(value, 0), a.Requirement.Target)
	if progress == a.Progress {
		return domain.UpdateNoop, a
	}

	a.Progress = progress
	p := &domain.AchievementProgress{Progress: progress}
	status := domain.UpdateProgressed
	if progress >= a.Requirement.Target {
		now := t.cal.Now()
		a.Completed = true
		a.CompletedAt = &now
		p.Completed = true
		p.CompletedAt = &now
		status = domain.UpdateCompleted
	}
	s.Progress[a.ID] = p
	return status, a
}

func (t *Tracker) notify(unlocked []domain.Achievement) {
	for _, a := range unlocked {
		t.logger.Info("achievement unlocked", "achievement_id", a.ID)
		if t.publisher != nil {
			t.publisher.Publish(events.AchievementUnlocked{
				Header:      events.Header{PlayerID: t.playerID, Timestamp: t.cal.Now()},
				Achievement: a,
			})
		}
	}
}

// UpdateProgress sets the progress of one achievement. Unknown or completed
// achievements are left alone.
func (t *Tracker) UpdateProgress(ctx context.Context, id string, value int) domain.AchievementUpdate {
	s, err := t.load(ctx)
	if err != nil {
		t.logger.Warn("failed to load achievements", "error", err)
		return domain.AchievementUpdate{Status: domain.UpdateNoop}
	}

	var target *domain.Achievement
	all := Hydrate(t.templates, s)
	for i := range all {
		if all[i].ID == id {
			target = &all[i]
			break
		}
	}
	if target == nil {
		return domain.AchievementUpdate{Status: domain.UpdateNoop}
	}

	status, updated := t.apply(&s, *target, value)
	if status == domain.UpdateNoop {
		return domain.AchievementUpdate{Status: status, Achievement: &updated}
	}
	if err := t.save(ctx, s); err != nil {
		t.logger.Warn("failed to save achievement progress", "achievement_id", id, "error", err)
		return domain.AchievementUpdate{Status: domain.UpdateNoop, Achievement: target}
	}
	if status == domain.UpdateCompleted {
		t.notify([]domain.Achievement{updated})
	}
	return domain.AchievementUpdate{Status: status, Achievement: &updated}
}

// Check feeds measured values into every achievement tracking them and
// returns the ones unlocked by this call.
func (t *Tracker) Check(ctx context.Context, values map[domain.RequirementType]int) []domain.Achievement {
	if len(values) == 0 {
		return nil
	}
	s, err := t.load(ctx)
	if err != nil {
		t.logger.Warn("failed to load achievements", "error", err)
		return nil
	}

	changed := false
	var unlocked []domain.Achievement
	for _, a := range Hydrate(t.templates, s) {
		v, ok := values[a.Requirement.Type]
		if !ok {
			continue
		}
		status, updated := t.apply(&s, a, v)
		switch status {
		case domain.UpdateCompleted:
			unlocked = append(unlocked, updated)
			changed = true
		case domain.UpdateProgressed:
			changed = true
		}
	}
	if !changed {
		return nil
	}

	if err := t.save(ctx, s); err != nil {
		t.logger.Warn("failed to save achievement progress", "error", err)
		return nil
	}
	t.notify(unlocked)
	return unlocked
}

// CheckInventory measures inventory size and rarity diversity.
func (t *Tracker) CheckInventory(ctx context.Context, inv domain.Inventory) []domain.Achievement {
	return t.Check(ctx, map[domain.RequirementType]int{
		domain.ReqInventoryCount: inv.TotalQuantity(),
		domain.ReqRarityTypes:    len(inv.DistinctRarities()),
	})
}

// CheckDiscoveries measures the cumulative discovery count.
func (t *Tracker) CheckDiscoveries(ctx context.Context, total int) []domain.Achievement {
	return t.Check(ctx, map[domain.RequirementType]int{domain.ReqDiscoveryCount: total})
}

// CustomSpec describes a player-defined achievement.
type CustomSpec struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Target      int           `json:"target"`
	Reward      domain.Reward `json:"reward"`
}

// AddCustom stores a new custom achievement under a generated id.
func (t *Tracker) AddCustom(ctx context.Context, spec CustomSpec) (domain.Achievement, domain.Result) {
	if strings.TrimSpace(spec.Title) == "" {
		return domain.Achievement{}, domain.Fail("A custom achievement needs a title.")
	}
	if spec.Target <= 0 {
		return domain.Achievement{}, domain.Fail("Target must be positive.")
	}

	s, err := t.load(ctx)
	if err != nil {
		t.logger.Warn("failed to load achievements", "error", err)
		return domain.Achievement{}, domain.Fail(storageFailure)
	}

	a := domain.Achievement{
		ID:          "custom_" + t.newID(),
		Title:       spec.Title,
		Description: spec.Description,
		Category:    domain.CategoryCustom,
		Requirement: domain.Requirement{Type: domain.ReqCustom, Target: spec.Target},
		Reward:      spec.Reward,
		Custom:      true,
	}
	s.Custom = append(s.Custom, a)
	if err := t.save(ctx, s); err != nil {
		t.logger.Warn("failed to save custom achievement", "error", err)
		return domain.Achievement{}, domain.Fail(storageFailure)
	}
	return a, domain.Ok(fmt.Sprintf("Added %q.", a.Title))
}

// RemoveCustom deletes a custom achievement and its progress.
func (t *Tracker) RemoveCustom(ctx context.Context, id string) domain.Result {
	s, err := t.load(ctx)
	if err != nil {
		t.logger.Warn("failed to load achievements", "error", err)
		return domain.Fail(storageFailure)
	}

	idx := -1
	for i, c := range s.Custom {
		if c.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return domain.Fail(fmt.Sprintf("No custom achievement %q.", id))
	}

	s.Custom = append(s.Custom[:idx], s.Custom[idx+1:]...)
	delete(s.Progress, id)
	if err := t.save(ctx, s); err != nil {
		t.logger.Warn("failed to remove custom achievement", "achievement_id", id, "error", err)
		return domain.Fail(storageFailure)
	}
	return domain.Ok("Custom achievement removed.")
}
