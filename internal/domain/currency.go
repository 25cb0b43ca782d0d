package domain

import "time"

// CurrencyLedgerVersion is the schema version of CurrencyLedger documents.
const CurrencyLedgerVersion = 1

// TransactionType is the direction of a ledger entry.
type TransactionType string

const (
	TransactionEarned TransactionType = "earned"
	TransactionSpent  TransactionType = "spent"
)

// Currency sources written into the ledger.
const (
	SourceMission     = "mission"
	SourceLevelUp     = "level_up"
	SourceAchievement = "achievement"
	SourceDailyLogin  = "daily_login"
	SourceShop        = "shop"
)

// Transaction is one append-only ledger entry.
type Transaction struct {
	ID          string          `json:"id"`
	Type        TransactionType `json:"type"`
	Amount      int             `json:"amount"`
	Source      string          `json:"source"`
	Description string          `json:"description"`
	Timestamp   time.Time       `json:"timestamp"`
}

// CurrencyLedger holds a player's star fragment balance.
type CurrencyLedger struct {
	Version        int           `json:"version"`
	PlayerID       string        `json:"player_id"`
	Balance        int           `json:"balance"`
	TotalEarned    int           `json:"total_earned"`
	LastLoginClaim string        `json:"last_login_claim,omitempty"`
	Transactions   []Transaction `json:"transactions"`
}

// LedgerResult is returned by earn and spend operations.
type LedgerResult struct {
	Result
	Balance     int          `json:"balance"`
	Transaction *Transaction `json:"transaction,omitempty"`
}
