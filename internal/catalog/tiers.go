// internal/catalog/tiers.go
package catalog

import "strings"

// Tier is one bucket in the fixed rarity vocabulary pack recipes draw from.
type Tier string

const (
	TierCommon                  Tier = "common"
	TierUncommon                Tier = "uncommon"
	TierRare                    Tier = "rare"
	TierDoubleRare              Tier = "double_rare"
	TierIllustrationRare        Tier = "illustration_rare"
	TierUltraRare               Tier = "ultra_rare"
	TierSpecialIllustrationRare Tier = "special_illustration_rare"
	TierHyperRare               Tier = "hyper_rare"
)

// Tiers lists the vocabulary in ascending pull-rate order.
var Tiers = []Tier{
	TierCommon,
	TierUncommon,
	TierRare,
	TierDoubleRare,
	TierIllustrationRare,
	TierUltraRare,
	TierSpecialIllustrationRare,
	TierHyperRare,
}

// tierRule classifies raw provider rarity labels into one tier. A label
// matches when it equals any exact entry or contains any substring entry.
// Rules are independent per tier: one label may land in several pools
// ("Rare Holo V" is both rare and double_rare).
type tierRule struct {
	exact    []string
	contains []string
}

var tierRules = map[Tier]tierRule{
	TierCommon:                  {exact: []string{"Common"}},
	TierUncommon:                {exact: []string{"Uncommon"}},
	TierRare:                    {exact: []string{"Rare", "Rare Holo"}},
	TierDoubleRare:              {exact: []string{"Double Rare"}, contains: []string{"V", "ex"}},
	TierIllustrationRare:        {exact: []string{"Illustration Rare", "Trainer Gallery Rare (TG)"}},
	TierUltraRare:               {exact: []string{"Ultra Rare", "Full Art"}},
	TierSpecialIllustrationRare: {exact: []string{"Special Illustration Rare"}},
	TierHyperRare:               {exact: []string{"Hyper Rare", "Secret Rare"}, contains: []string{"Rainbow"}},
}

// MatchesTier reports whether a raw rarity label belongs to the given tier.
func MatchesTier(rarity string, tier Tier) bool {
	rule, ok := tierRules[tier]
	if !ok {
		return false
	}
	for _, e := range rule.exact {
		if rarity == e {
			return true
		}
	}
	for _, c := range rule.contains {
		if strings.Contains(rarity, c) {
			return true
		}
	}
	return false
}

// Pools groups one set's cards into tier pools, built once per catalog
// load. All holds every card of the set and backs the whole-catalog
// fallback; cards whose label matches no rule appear only there.
type Pools struct {
	byTier map[Tier][]Card
	All    []Card
}

// BuildPools classifies cards into the fixed tier vocabulary.
func BuildPools(cards []Card) *Pools {
	p := &Pools{
		byTier: make(map[Tier][]Card, len(Tiers)),
		All:    cards,
	}
	for _, card := range cards {
		for _, tier := range Tiers {
			if MatchesTier(card.Rarity, tier) {
				p.byTier[tier] = append(p.byTier[tier], card)
			}
		}
	}
	return p
}

// Tier returns the pool for one tier; the pool may be empty.
func (p *Pools) Tier(t Tier) []Card {
	return p.byTier[t]
}

// Union returns the concatenation of several tier pools, preserving order.
func (p *Pools) Union(tiers ...Tier) []Card {
	var out []Card
	for _, t := range tiers {
		out = append(out, p.byTier[t]...)
	}
	return out
}
