// Package catalog holds the static content the progression engine rolls
// against: resource pools, flavor text, mission and achievement templates.
package catalog

import "github.com/pet-progression/internal/domain"

// Resource is a discoverable item.
type Resource struct {
	ID     string        `json:"id"`
	Name   string        `json:"name"`
	Rarity domain.Rarity `json:"rarity"`
}

// Resources is the default discovery pool.
var Resources = []Resource{
	{ID: "moss_tuft", Name: "Moss Tuft", Rarity: domain.RarityCommon},
	{ID: "river_pebble", Name: "River Pebble", Rarity: domain.RarityCommon},
	{ID: "dry_twig", Name: "Dry Twig", Rarity: domain.RarityCommon},
	{ID: "wild_berry", Name: "Wild Berry", Rarity: domain.RarityCommon},
	{ID: "silk_thread", Name: "Silk Thread", Rarity: domain.RarityUncommon},
	{ID: "glow_mushroom", Name: "Glow Mushroom", Rarity: domain.RarityUncommon},
	{ID: "amber_drop", Name: "Amber Drop", Rarity: domain.RarityUncommon},
	{ID: "moon_petal", Name: "Moon Petal", Rarity: domain.RarityRare},
	{ID: "crystal_shard", Name: "Crystal Shard", Rarity: domain.RarityRare},
	{ID: "comet_dust", Name: "Comet Dust", Rarity: domain.RarityEpic},
	{ID: "phoenix_feather", Name: "Phoenix Feather", Rarity: domain.RarityEpic},
	{ID: "star_core", Name: "Star Core", Rarity: domain.RarityLegendary},
}

// Pools groups resources by rarity.
type Pools map[domain.Rarity][]Resource

// PoolsFrom groups rs by rarity.
func PoolsFrom(rs []Resource) Pools {
	p := make(Pools)
	for _, r := range rs {
		p[r.Rarity] = append(p[r.Rarity], r)
	}
	return p
}

// DefaultPools returns the default resource pools.
func DefaultPools() Pools {
	return PoolsFrom(Resources)
}

// FlavorMessages are shown with a discovery, chosen at random per tier.
var FlavorMessages = map[domain.Rarity][]string{
	domain.RarityCommon: {
		"Your pet sniffed out something by the path.",
		"A small find, tucked under a leaf.",
		"Your pet proudly drops a little treasure at your feet.",
	},
	domain.RarityUncommon: {
		"Ooh, that one shimmers a bit!",
		"Your pet dug a little deeper than usual.",
	},
	domain.RarityRare: {
		"A rare find! Your pet is wagging with pride.",
		"Something unusual glints in the grass.",
	},
	domain.RarityEpic: {
		"Incredible! An epic discovery!",
		"The air hums as your pet uncovers something special.",
	},
	domain.RarityLegendary: {
		"LEGENDARY! Your pet found something out of the stars!",
	},
}

// Lookup finds a resource by id.
func Lookup(id string) (Resource, bool) {
	for _, r := range Resources {
		if r.ID == id {
			return r, true
		}
	}
	return Resource{}, false
}
