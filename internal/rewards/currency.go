package rewards

import (
	"context"
	"fmt"

	"github.com/pet-progression/internal/domain"
	"github.com/pet-progression/internal/store"
)

const storageFailure = "Couldn't reach storage, try again."

func (e *Economy) newLedger() domain.CurrencyLedger {
	return domain.CurrencyLedger{Version: domain.CurrencyLedgerVersion, PlayerID: e.playerID}
}

func (e *Economy) loadLedger(ctx context.Context) (domain.CurrencyLedger, error) {
	l := e.newLedger()
	if _, err := e.store.Get(ctx, store.CurrencyKey(e.playerID), &l); err != nil {
		return e.newLedger(), err
	}
	l.Version = domain.CurrencyLedgerVersion
	l.PlayerID = e.playerID
	return l, nil
}

// Ledger returns the currency ledger, empty when storage fails.
func (e *Economy) Ledger(ctx context.Context) domain.CurrencyLedger {
	l, err := e.loadLedger(ctx)
	if err != nil {
		e.logger.Warn("failed to load currency", "error", err)
	}
	return l
}

// Balance returns the star fragment balance, zero when storage fails.
func (e *Economy) Balance(ctx context.Context) int {
	return e.Ledger(ctx).Balance
}

func (e *Economy) appendTx(ctx context.Context, l *domain.CurrencyLedger, typ domain.TransactionType, amount int, source, description string) (*domain.Transaction, error) {
	tx := domain.Transaction{
		ID:          e.newID(),
		Type:        typ,
		Amount:      amount,
		Source:      source,
		Description: description,
		Timestamp:   e.cal.Now(),
	}
	switch typ {
	case domain.TransactionEarned:
		l.Balance += amount
		l.TotalEarned += amount
	case domain.TransactionSpent:
		l.Balance -= amount
	}
	l.Transactions = append(l.Transactions, tx)

	if err := e.store.Set(ctx, store.CurrencyKey(e.playerID), l); err != nil {
		return nil, fmt.Errorf("saving currency: %w", err)
	}
	return &tx, nil
}

// Earn credits amount from source.
func (e *Economy) Earn(ctx context.Context, amount int, source, description string) domain.LedgerResult {
	if amount <= 0 {
		return domain.LedgerResult{Result: domain.Fail("Amount must be positive.")}
	}
	l, err := e.loadLedger(ctx)
	if err != nil {
		e.logger.Warn("failed to load currency", "error", err)
		return domain.LedgerResult{Result: domain.Fail(storageFailure)}
	}

	tx, err := e.appendTx(ctx, &l, domain.TransactionEarned, amount, source, description)
	if err != nil {
		e.logger.Warn("failed to credit currency", "source", source, "amount", amount, "error", err)
		return domain.LedgerResult{Result: domain.Fail(storageFailure), Balance: l.Balance - amount}
	}
	return domain.LedgerResult{
		Result:      domain.Ok(fmt.Sprintf("Earned %d star fragments.", amount)),
		Balance:     l.Balance,
		Transaction: tx,
	}
}

// Spend debits amount. It fails without touching the ledger when the balance
// is too low.
func (e *Economy) Spend(ctx context.Context, amount int, description string) domain.LedgerResult {
	if amount <= 0 {
		return domain.LedgerResult{Result: domain.Fail("Amount must be positive.")}
	}
	l, err := e.loadLedger(ctx)
	if err != nil {
		e.logger.Warn("failed to load currency", "error", err)
		return domain.LedgerResult{Result: domain.Fail(storageFailure)}
	}
	if amount > l.Balance {
		return domain.LedgerResult{
			Result:  domain.Fail(fmt.Sprintf("Not enough star fragments: have %d, need %d.", l.Balance, amount)),
			Balance: l.Balance,
		}
	}

	tx, err := e.appendTx(ctx, &l, domain.TransactionSpent, amount, domain.SourceShop, description)
	if err != nil {
		e.logger.Warn("failed to debit currency", "amount", amount, "error", err)
		return domain.LedgerResult{Result: domain.Fail(storageFailure), Balance: l.Balance + amount}
	}
	return domain.LedgerResult{
		Result:      domain.Ok(fmt.Sprintf("Spent %d star fragments.", amount)),
		Balance:     l.Balance,
		Transaction: tx,
	}
}

// ClaimDailyLogin credits the login bonus once per calendar date.
func (e *Economy) ClaimDailyLogin(ctx context.Context) domain.LedgerResult {
	l, err := e.loadLedger(ctx)
	if err != nil {
		e.logger.Warn("failed to load currency", "error", err)
		return domain.LedgerResult{Result: domain.Fail(storageFailure)}
	}
	today := e.cal.Today()
	if l.LastLoginClaim == today {
		return domain.LedgerResult{
			Result:  domain.Fail("Daily bonus already claimed today."),
			Balance: l.Balance,
		}
	}

	l.LastLoginClaim = today
	tx, err := e.appendTx(ctx, &l, domain.TransactionEarned, DailyLoginBonus, domain.SourceDailyLogin, "Daily login bonus")
	if err != nil {
		e.logger.Warn("failed to credit login bonus", "error", err)
		return domain.LedgerResult{Result: domain.Fail(storageFailure), Balance: l.Balance - DailyLoginBonus}
	}
	return domain.LedgerResult{
		Result:      domain.Ok(fmt.Sprintf("Welcome back! +%d star fragments.", DailyLoginBonus)),
		Balance:     l.Balance,
		Transaction: tx,
	}
}
