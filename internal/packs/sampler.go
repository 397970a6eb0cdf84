// internal/packs/sampler.go
package packs

import (
	"math/rand/v2"

	"packvault/internal/catalog"
)

// MissingCardID marks the sentinel returned when a draw has nothing to
// draw from. The sentinel is rendered distinctly by the UI and is never
// persisted into a collection.
const MissingCardID = "missing"

// MissingCard is the degrade-not-crash placeholder for an empty catalog.
var MissingCard = catalog.Card{
	ID:     MissingCardID,
	Name:   "MissingNo",
	Rarity: "Common",
}

// NewRand returns an independent generator for one pack run.
func NewRand() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// Draw picks one card for a pack slot.
//
// Pool choice widens until something is drawable: the primary tier pool if
// non-empty, else the fallback pool, else the whole catalog. Cards already
// in the pack (used) are filtered out, unless that would empty the pool;
// in small sets repetition is preferred over an empty draw. The chosen id
// is recorded in used. Draw holds no state of its own and is safe to call
// from concurrent pack runs as long as used is per-pack.
func Draw(r *rand.Rand, primary, fallback []catalog.Card, used map[string]bool, whole []catalog.Card) catalog.Card {
	pool := primary
	if len(pool) == 0 {
		pool = fallback
	}
	if len(pool) == 0 {
		pool = whole
	}
	if len(pool) == 0 {
		return MissingCard
	}

	fresh := make([]catalog.Card, 0, len(pool))
	for _, c := range pool {
		if !used[c.ID] {
			fresh = append(fresh, c)
		}
	}
	if len(fresh) == 0 {
		fresh = pool
	}

	selected := fresh[r.IntN(len(fresh))]
	used[selected.ID] = true
	return selected
}
