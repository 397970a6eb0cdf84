// internal/packs/sampler_test.go
package packs

import (
	"math/rand/v2"
	"testing"

	"packvault/internal/catalog"

	"github.com/stretchr/testify/assert"
)

func testRand() *rand.Rand {
	return rand.New(rand.NewPCG(7, 11))
}

func TestDrawWidensEmptyPools(t *testing.T) {
	r := testRand()
	whole := []catalog.Card{{ID: "w1"}, {ID: "w2"}}
	fallback := []catalog.Card{{ID: "f1"}}

	got := Draw(r, nil, fallback, map[string]bool{}, whole)
	assert.Equal(t, "f1", got.ID, "empty primary falls back")

	got = Draw(r, nil, nil, map[string]bool{}, whole)
	assert.Contains(t, []string{"w1", "w2"}, got.ID, "empty fallback widens to the whole catalog")
}

func TestDrawEmptyCatalogReturnsSentinel(t *testing.T) {
	got := Draw(testRand(), nil, nil, map[string]bool{}, nil)
	assert.Equal(t, MissingCardID, got.ID)
	assert.Equal(t, "MissingNo", got.Name)
}

func TestDrawFiltersUsedCards(t *testing.T) {
	r := testRand()
	pool := []catalog.Card{{ID: "a"}, {ID: "b"}}
	used := map[string]bool{"a": true}

	got := Draw(r, pool, nil, used, pool)
	assert.Equal(t, "b", got.ID)
	assert.True(t, used["b"], "drawn id is recorded")
}

// In a set smaller than the pack, repetition beats an empty draw.
func TestDrawRepeatsWhenPoolExhausted(t *testing.T) {
	r := testRand()
	pool := []catalog.Card{{ID: "only"}}
	used := map[string]bool{"only": true}

	got := Draw(r, pool, nil, used, pool)
	assert.Equal(t, "only", got.ID)
}

func TestMissing(t *testing.T) {
	cards := []catalog.Card{
		{ID: "a", Rarity: "Common"},
		{ID: "b", Rarity: "Rare"},
		{ID: "c", Rarity: "Ultra Rare"},
	}

	missing := Missing(cards, map[string]bool{"a": true})
	assert.Len(t, missing, 2)
	assert.Equal(t, "b", missing[0].ID)

	assert.Empty(t, Missing(cards, map[string]bool{"a": true, "b": true, "c": true}))

	rares := missingRares(missing)
	assert.Len(t, rares, 2, "Common and Uncommon are excluded, everything else counts")

	onlyCommons := missingRares([]catalog.Card{{ID: "x", Rarity: "Common"}, {ID: "y", Rarity: "Uncommon"}})
	assert.Empty(t, onlyCommons)
}
