package rewards

import (
	"context"
	"fmt"
	"strings"

	"github.com/pet-progression/internal/domain"
	"github.com/pet-progression/internal/store"
)

// Multiplier returns the multi-pet multiplier for display. Awards use the
// integer form in scaledPoints.
func Multiplier(petCount int) float64 {
	if petCount <= 1 {
		return 1
	}
	return float64(10+petCount-1) / 10
}

// scaledPoints is floor(base * (1 + 0.1*(petCount-1))) without float error.
func scaledPoints(base, petCount int) int {
	if petCount <= 1 {
		return base
	}
	return base * (10 + petCount - 1) / 10
}

func (e *Economy) newAccount() domain.PointsAccount {
	return domain.PointsAccount{
		Version:  domain.PointsAccountVersion,
		PlayerID: e.playerID,
		Pets:     make(map[string]*domain.PetPoints),
	}
}

func (e *Economy) loadPoints(ctx context.Context) (domain.PointsAccount, error) {
	acct := e.newAccount()
	if _, err := e.store.Get(ctx, store.PointsKey(e.playerID), &acct); err != nil {
		return e.newAccount(), err
	}
	acct.Version = domain.PointsAccountVersion
	acct.PlayerID = e.playerID
	if acct.Pets == nil {
		acct.Pets = make(map[string]*domain.PetPoints)
	}
	if today := e.cal.Today(); acct.DailyPointsDate != today {
		acct.DailyPoints = 0
		acct.DailyPointsDate = today
	}
	return acct, nil
}

// Points returns the points account, empty when storage fails.
func (e *Economy) Points(ctx context.Context) domain.PointsAccount {
	acct, err := e.loadPoints(ctx)
	if err != nil {
		e.logger.Warn("failed to load points", "error", err)
	}
	return acct
}

// nextStreak applies one interaction on today to a streak last extended on
// last. Interacting again on the same day keeps the streak.
func (e *Economy) nextStreak(streak int, last string) int {
	today := e.cal.Today()
	switch {
	case last == today && streak > 0:
		return streak
	case last == e.cal.Yesterday():
		return streak + 1
	default:
		return 1
	}
}

// AwardInteractionPoints credits points for an action on petID. The
// multiplier counts every pet the player has interacted with, this one
// included. ok is false when nothing was persisted.
func (e *Economy) AwardInteractionPoints(ctx context.Context, petID string, action domain.ActionType, achievedGoal bool) (domain.PointsAward, bool) {
	acct, err := e.loadPoints(ctx)
	if err != nil {
		e.logger.Warn("failed to load points", "error", err)
		return domain.PointsAward{PetID: petID, Action: action}, false
	}

	pet, ok := acct.Pets[petID]
	if !ok || pet == nil {
		pet = &domain.PetPoints{}
		acct.Pets[petID] = pet
	}
	petCount := acct.ActivePetCount()
	if pet.InteractionCount == 0 {
		petCount++
	}

	today := e.cal.Today()
	base := e.basePoints[action]
	points := scaledPoints(base, petCount)
	goal := 0
	if achievedGoal {
		goal = points * GoalBonusPercent / 100
	}

	acct.CurrentStreak = e.nextStreak(acct.CurrentStreak, acct.LastInteractionDate)
	acct.LastInteractionDate = today
	if acct.CurrentStreak > acct.LongestStreak {
		acct.LongestStreak = acct.CurrentStreak
	}
	streakBonus := min(acct.CurrentStreak, MaxStreakBonus)
	total := points + goal + streakBonus

	if pet.LastInteractionDate != today {
		pet.DailyPoints = 0
	}
	pet.StreakDays = e.nextStreak(pet.StreakDays, pet.LastInteractionDate)
	pet.LastInteractionDate = today
	pet.DailyPoints += total
	pet.TotalPoints += total
	pet.InteractionCount++
	pet.MoodBonusPoints += goal

	acct.DailyPoints += total
	acct.TotalPoints += total
	acct.LastUpdated = e.cal.Now()

	award := domain.PointsAward{
		PetID:       petID,
		Action:      action,
		BasePoints:  base,
		Multiplier:  Multiplier(petCount),
		PetCount:    petCount,
		Points:      points,
		GoalBonus:   goal,
		StreakBonus: streakBonus,
		Streak:      acct.CurrentStreak,
		Total:       total,
	}
	award.Description = describe(award)

	if err := e.store.Set(ctx, store.PointsKey(e.playerID), acct); err != nil {
		e.logger.Warn("failed to save points", "pet_id", petID, "error", err)
		return domain.PointsAward{PetID: petID, Action: action}, false
	}

	e.logger.Debug("points awarded", "pet_id", petID, "action", action, "total", total)
	return award, true
}

func describe(a domain.PointsAward) string {
	var b strings.Builder
	fmt.Fprintf(&b, "+%d for %s", a.Points, a.Action)
	if a.PetCount > 1 {
		fmt.Fprintf(&b, " (%d x%.1f with %d pets)", a.BasePoints, a.Multiplier, a.PetCount)
	}
	if a.GoalBonus > 0 {
		fmt.Fprintf(&b, ", +%d goal bonus", a.GoalBonus)
	}
	if a.StreakBonus > 0 {
		fmt.Fprintf(&b, ", +%d for a %d-day streak", a.StreakBonus, a.Streak)
	}
	fmt.Fprintf(&b, " = %d points", a.Total)
	return b.String()
}
