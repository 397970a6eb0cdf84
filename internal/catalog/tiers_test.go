// internal/catalog/tiers_test.go
package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchesTier(t *testing.T) {
	cases := []struct {
		rarity string
		tier   Tier
		want   bool
	}{
		{"Common", TierCommon, true},
		{"Common", TierUncommon, false},
		{"Uncommon", TierUncommon, true},
		{"Rare", TierRare, true},
		{"Rare Holo", TierRare, true},
		{"Rare Holo", TierDoubleRare, false},
		{"Double Rare", TierDoubleRare, true},
		{"Rare Holo V", TierDoubleRare, true},
		{"Rare Holo VMAX", TierDoubleRare, true},
		{"Rare Holo ex", TierDoubleRare, true},
		{"Illustration Rare", TierIllustrationRare, true},
		{"Trainer Gallery Rare (TG)", TierIllustrationRare, true},
		{"Ultra Rare", TierUltraRare, true},
		{"Full Art", TierUltraRare, true},
		{"Special Illustration Rare", TierSpecialIllustrationRare, true},
		{"Special Illustration Rare", TierIllustrationRare, false},
		{"Hyper Rare", TierHyperRare, true},
		{"Secret Rare", TierHyperRare, true},
		{"Rare Rainbow", TierHyperRare, true},
		{"Amazing Rare", TierCommon, false},
		{"", TierCommon, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, MatchesTier(tc.rarity, tc.tier),
			"rarity %q vs tier %q", tc.rarity, tc.tier)
	}
}

// One label may land in several pools; the substring rules make that the
// normal case for V and ex prints.
func TestOverlappingPools(t *testing.T) {
	cards := []Card{
		{ID: "a", Rarity: "Rare Holo V"},
		{ID: "b", Rarity: "Rare Holo"},
		{ID: "c", Rarity: "Rare Rainbow"},
		{ID: "d", Rarity: "Promo"}, // no rule matches
	}
	pools := BuildPools(cards)

	assert.Len(t, pools.Tier(TierDoubleRare), 1)
	assert.Equal(t, "a", pools.Tier(TierDoubleRare)[0].ID)
	assert.Len(t, pools.Tier(TierRare), 1)
	assert.Equal(t, "b", pools.Tier(TierRare)[0].ID)
	assert.Len(t, pools.Tier(TierHyperRare), 1)
	assert.Len(t, pools.All, 4, "unmatched labels stay drawable via All")
}

func TestPoolsUnion(t *testing.T) {
	cards := []Card{
		{ID: "ir", Rarity: "Illustration Rare"},
		{ID: "dr", Rarity: "Double Rare"},
		{ID: "c", Rarity: "Common"},
	}
	pools := BuildPools(cards)

	union := pools.Union(TierIllustrationRare, TierDoubleRare)
	assert.Len(t, union, 2)
	assert.Equal(t, "ir", union[0].ID)
	assert.Equal(t, "dr", union[1].ID)
}
