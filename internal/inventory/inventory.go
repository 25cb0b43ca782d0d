// Package inventory keeps a player's resource holdings.
package inventory

import (
	"context"
	"log/slog"

	"github.com/pet-progression/internal/domain"
	"github.com/pet-progression/internal/store"
)

// Version is the schema version of Inventory documents.
const Version = 1

// Delta is a signed quantity change for one resource.
type Delta struct {
	ResourceID string        `json:"resource_id"`
	Rarity     domain.Rarity `json:"rarity"`
	Quantity   int           `json:"quantity"`
}

// DeltasFrom turns discovery records into positive deltas.
func DeltasFrom(records []domain.DiscoveryRecord) []Delta {
	out := make([]Delta, 0, len(records))
	for _, r := range records {
		out = append(out, Delta{ResourceID: r.ResourceID, Rarity: r.Rarity, Quantity: r.Quantity})
	}
	return out
}

// Inventory is the store-backed holdings of one player.
type Inventory struct {
	playerID string
	store    store.Store
	logger   *slog.Logger
}

// New creates an inventory for one player.
func New(playerID string, st store.Store, logger *slog.Logger) *Inventory {
	return &Inventory{
		playerID: playerID,
		store:    st,
		logger:   logger.With("component", "inventory", "player_id", playerID),
	}
}

func empty() domain.Inventory {
	return domain.Inventory{Version: Version, Items: make(map[string]*domain.InventoryItem)}
}

func (i *Inventory) load(ctx context.Context) (domain.Inventory, error) {
	inv := empty()
	if _, err := i.store.Get(ctx, store.InventoryKey(i.playerID), &inv); err != nil {
		return empty(), err
	}
	inv.Version = Version
	if inv.Items == nil {
		inv.Items = make(map[string]*domain.InventoryItem)
	}
	return inv, nil
}

// Load returns the holdings, empty when storage fails.
func (i *Inventory) Load(ctx context.Context) domain.Inventory {
	inv, err := i.load(ctx)
	if err != nil {
		i.logger.Warn("failed to load inventory", "error", err)
	}
	return inv
}

// Apply adds the deltas. Stacks never go below zero and empty stacks are
// dropped. ok is false when nothing was persisted.
func (i *Inventory) Apply(ctx context.Context, deltas []Delta) (domain.Inventory, bool) {
	inv, err := i.load(ctx)
	if err != nil {
		i.logger.Warn("failed to load inventory", "error", err)
		return inv, false
	}
	if len(deltas) == 0 {
		return inv, true
	}

	for _, d := range deltas {
		item, ok := inv.Items[d.ResourceID]
		if !ok {
			if d.Quantity <= 0 {
				continue
			}
			item = &domain.InventoryItem{ResourceID: d.ResourceID, Rarity: d.Rarity}
			inv.Items[d.ResourceID] = item
		}
		item.Quantity += d.Quantity
		if item.Quantity <= 0 {
			delete(inv.Items, d.ResourceID)
		}
	}

	if err := i.store.Set(ctx, store.InventoryKey(i.playerID), inv); err != nil {
		i.logger.Warn("failed to save inventory", "error", err)
		return inv, false
	}
	return inv, true
}
