package domain

// InventoryItem is one stack of a resource.
type InventoryItem struct {
	ResourceID string `json:"resource_id"`
	Rarity     Rarity `json:"rarity"`
	Quantity   int    `json:"quantity"`
}

// Inventory is a player's resource holdings keyed by resource id.
type Inventory struct {
	Version int                       `json:"version"`
	Items   map[string]*InventoryItem `json:"items"`
}

// TotalQuantity sums every stack.
func (inv Inventory) TotalQuantity() int {
	total := 0
	for _, it := range inv.Items {
		if it != nil {
			total += it.Quantity
		}
	}
	return total
}

// DistinctRarities returns the set of rarities with a positive quantity.
func (inv Inventory) DistinctRarities() map[Rarity]bool {
	out := make(map[Rarity]bool)
	for _, it := range inv.Items {
		if it != nil && it.Quantity > 0 {
			out[it.Rarity] = true
		}
	}
	return out
}
