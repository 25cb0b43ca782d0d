package service

import (
	"context"

	"github.com/pet-progression/internal/clock"
	"github.com/pet-progression/internal/domain"
	"github.com/pet-progression/internal/events"
	"github.com/pet-progression/internal/rewards"
)

// wallet credits through the economy and announces every transaction.
type wallet struct {
	playerID string
	economy  *rewards.Economy
	bus      *events.Bus
	cal      *clock.Calendar
}

func (w *wallet) publish(res domain.LedgerResult) {
	if !res.Success || res.Transaction == nil {
		return
	}
	w.bus.Publish(events.CurrencyChanged{
		Header:      events.Header{PlayerID: w.playerID, Timestamp: w.cal.Now()},
		Transaction: *res.Transaction,
		Balance:     res.Balance,
	})
}

func (w *wallet) Earn(ctx context.Context, amount int, source, description string) domain.LedgerResult {
	res := w.economy.Earn(ctx, amount, source, description)
	w.publish(res)
	return res
}

func (w *wallet) Spend(ctx context.Context, amount int, description string) domain.LedgerResult {
	res := w.economy.Spend(ctx, amount, description)
	w.publish(res)
	return res
}

func (w *wallet) ClaimDailyLogin(ctx context.Context) domain.LedgerResult {
	res := w.economy.ClaimDailyLogin(ctx)
	w.publish(res)
	return res
}
