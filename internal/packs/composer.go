// internal/packs/composer.go
package packs

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"packvault/internal/catalog"
)

// Size is the number of cards in every pack.
const Size = 10

// Type identifies a pack recipe.
type Type string

const (
	TypeStandard Type = "standard"
	TypePremium  Type = "premium"
	TypeGolden   Type = "golden"
)

var ErrUnknownPackType = errors.New("unknown pack type")

// Open composes one pack of the given type. Composition is pure: it reads
// only the catalog snapshot (and, for golden packs, the owner's held card
// ids) and has no side effects. Persistence happens afterwards, in the
// collection ledger.
func Open(r *rand.Rand, packType Type, cards []catalog.Card, ownedIDs map[string]bool) ([]catalog.Card, error) {
	switch packType {
	case TypeStandard:
		return OpenStandard(r, cards), nil
	case TypePremium:
		return OpenPremium(r, cards), nil
	case TypeGolden:
		return OpenGolden(r, cards, ownedIDs), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPackType, packType)
	}
}

// OpenStandard fills six common slots, three uncommon slots and one hit
// slot rolled against the standard probability bands.
func OpenStandard(r *rand.Rand, cards []catalog.Card) []catalog.Card {
	pools := catalog.BuildPools(cards)
	pack := make([]catalog.Card, 0, Size)
	used := make(map[string]bool, Size)

	for i := 0; i < 6; i++ {
		pack = append(pack, Draw(r, pools.Tier(catalog.TierCommon), pools.Tier(catalog.TierUncommon), used, pools.All))
	}
	for i := 0; i < 3; i++ {
		pack = append(pack, Draw(r, pools.Tier(catalog.TierUncommon), pools.Tier(catalog.TierCommon), used, pools.All))
	}

	pack = append(pack, standardHit(r, pools, used))
	return pack
}

// standardHit rolls the slot-10 tier against cumulative percentage bands:
// 0.5% hyper, 2% special illustration, 4% ultra, 8% illustration, 15.5%
// double rare, remainder rare.
func standardHit(r *rand.Rand, pools *catalog.Pools, used map[string]bool) catalog.Card {
	roll := r.Float64() * 100

	switch {
	case roll < 0.5:
		return Draw(r, pools.Tier(catalog.TierHyperRare), pools.Tier(catalog.TierUltraRare), used, pools.All)
	case roll < 2.5:
		return Draw(r, pools.Tier(catalog.TierSpecialIllustrationRare), pools.Tier(catalog.TierUltraRare), used, pools.All)
	case roll < 6.5:
		return Draw(r, pools.Tier(catalog.TierUltraRare), pools.Tier(catalog.TierDoubleRare), used, pools.All)
	case roll < 14.5:
		return Draw(r, pools.Tier(catalog.TierIllustrationRare), pools.Tier(catalog.TierRare), used, pools.All)
	case roll < 30.0:
		return Draw(r, pools.Tier(catalog.TierDoubleRare), pools.Tier(catalog.TierRare), used, pools.All)
	default:
		return Draw(r, pools.Tier(catalog.TierRare), pools.Tier(catalog.TierUncommon), used, pools.All)
	}
}

// OpenPremium fills four uncommon slots, four rare slots, one mid-tier
// slot from the illustration-rare/double-rare union, and one boss slot.
func OpenPremium(r *rand.Rand, cards []catalog.Card) []catalog.Card {
	pools := catalog.BuildPools(cards)
	pack := make([]catalog.Card, 0, Size)
	used := make(map[string]bool, Size)

	for i := 0; i < 4; i++ {
		pack = append(pack, Draw(r, pools.Tier(catalog.TierUncommon), pools.Tier(catalog.TierCommon), used, pools.All))
	}
	for i := 0; i < 4; i++ {
		pack = append(pack, Draw(r, pools.Tier(catalog.TierRare), pools.Tier(catalog.TierUncommon), used, pools.All))
	}

	midTier := pools.Union(catalog.TierIllustrationRare, catalog.TierDoubleRare)
	pack = append(pack, Draw(r, midTier, pools.Tier(catalog.TierRare), used, pools.All))

	pack = append(pack, premiumBoss(r, pools, used))
	return pack
}

// premiumBoss rolls the slot-10 tier: 5% hyper, 10% special illustration,
// 25% ultra, remainder double rare.
func premiumBoss(r *rand.Rand, pools *catalog.Pools, used map[string]bool) catalog.Card {
	roll := r.Float64() * 100

	switch {
	case roll < 5:
		return Draw(r, pools.Tier(catalog.TierHyperRare), pools.Tier(catalog.TierUltraRare), used, pools.All)
	case roll < 15:
		return Draw(r, pools.Tier(catalog.TierSpecialIllustrationRare), pools.Tier(catalog.TierUltraRare), used, pools.All)
	case roll < 40:
		return Draw(r, pools.Tier(catalog.TierUltraRare), pools.Tier(catalog.TierDoubleRare), used, pools.All)
	default:
		return Draw(r, pools.Tier(catalog.TierDoubleRare), pools.Tier(catalog.TierRare), used, pools.All)
	}
}

// OpenGolden composes the guaranteed pack: slot 10 is a card the owner
// does not yet hold, preferring labels above Common/Uncommon. An owner
// with the full catalog gets a hyper rare instead. The guaranteed id is
// reserved before the filler slots are drawn so it cannot repeat.
func OpenGolden(r *rand.Rand, cards []catalog.Card, ownedIDs map[string]bool) []catalog.Card {
	pools := catalog.BuildPools(cards)
	pack := make([]catalog.Card, 0, Size)
	used := make(map[string]bool, Size)

	var guaranteed catalog.Card
	missing := Missing(cards, ownedIDs)
	if len(missing) > 0 {
		candidates := missingRares(missing)
		if len(candidates) == 0 {
			candidates = missing
		}
		guaranteed = candidates[r.IntN(len(candidates))]
		used[guaranteed.ID] = true
	} else {
		guaranteed = Draw(r, pools.Tier(catalog.TierHyperRare), pools.Tier(catalog.TierSpecialIllustrationRare), used, pools.All)
	}

	for i := 0; i < 5; i++ {
		pack = append(pack, Draw(r, pools.Tier(catalog.TierRare), pools.Tier(catalog.TierUncommon), used, pools.All))
	}
	for i := 0; i < 3; i++ {
		pack = append(pack, Draw(r, pools.Tier(catalog.TierDoubleRare), pools.Tier(catalog.TierRare), used, pools.All))
	}
	pack = append(pack, Draw(r, pools.Tier(catalog.TierUltraRare), pools.Tier(catalog.TierIllustrationRare), used, pools.All))

	pack = append(pack, guaranteed)
	return pack
}
