// Package mission tracks daily, weekly and season missions and pays out
// their rewards.
package mission

import (
	"time"

	"github.com/pet-progression/internal/catalog"
	"github.com/pet-progression/internal/clock"
	"github.com/pet-progression/internal/domain"
)

// CompletionKey returns the key under which tpl's progress and completion are
// stored for the window containing now.
func CompletionKey(cal *clock.Calendar, tpl catalog.MissionTemplate, now time.Time) string {
	switch tpl.Scope {
	case domain.ScopeDaily:
		return tpl.ID + "_" + cal.DateKey(now)
	case domain.ScopeWeekly:
		return tpl.ID + "_" + cal.WeekKey(now)
	default:
		return tpl.ID
	}
}

// ExpiresAt returns the end of the window containing now.
func ExpiresAt(cal *clock.Calendar, scope domain.MissionScope, now time.Time) time.Time {
	switch scope {
	case domain.ScopeDaily:
		return cal.EndOfDay(now)
	case domain.ScopeWeekly:
		return cal.EndOfWeek(now)
	default:
		return cal.EndOfSeason(now)
	}
}

// NewState returns an empty mission document.
func NewState() domain.MissionState {
	return domain.MissionState{
		Version:   domain.MissionStateVersion,
		Progress:  make(map[string]int),
		Completed: make(map[string]time.Time),
	}
}

func normalize(s *domain.MissionState) {
	s.Version = domain.MissionStateVersion
	if s.Progress == nil {
		s.Progress = make(map[string]int)
	}
	if s.Completed == nil {
		s.Completed = make(map[string]time.Time)
	}
}

// Hydrate builds the active missions from templates and the stored documents.
// periodic holds daily and weekly progress, season the current season's.
func Hydrate(cal *clock.Calendar, templates []catalog.MissionTemplate, periodic, season domain.MissionState, now time.Time) []domain.Mission {
	out := make([]domain.Mission, 0, len(templates))
	for _, tpl := range templates {
		state := periodic
		if tpl.Scope == domain.ScopeSeason {
			state = season
		}
		key := CompletionKey(cal, tpl, now)
		_, done := state.Completed[key]

		progress := state.Progress[key]
		if done {
			progress = tpl.Requirement.Target
		}
		out = append(out, domain.Mission{
			ID:            tpl.ID,
			Title:         tpl.Title,
			Description:   tpl.Description,
			Scope:         tpl.Scope,
			Requirement:   tpl.Requirement,
			Rewards:       append([]domain.Reward(nil), tpl.Rewards...),
			Progress:      min(progress, tpl.Requirement.Target),
			Completed:     done,
			CompletionKey: key,
			ExpiresAt:     ExpiresAt(cal, tpl.Scope, now),
		})
	}
	return out
}

// prune drops periodic entries that belong to a past window.
func prune(cal *clock.Calendar, templates []catalog.MissionTemplate, s *domain.MissionState, now time.Time) {
	live := make(map[string]bool, len(templates))
	for _, tpl := range templates {
		if tpl.Scope != domain.ScopeSeason {
			live[CompletionKey(cal, tpl, now)] = true
		}
	}
	for k := range s.Progress {
		if !live[k] {
			delete(s.Progress, k)
		}
	}
	for k := range s.Completed {
		if !live[k] {
			delete(s.Completed, k)
		}
	}
}
