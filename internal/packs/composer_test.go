// internal/packs/composer_test.go
package packs

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"packvault/internal/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// fullCatalog builds a set with n cards per rarity label, using exact
// labels so each card lands in exactly one tier pool.
func fullCatalog(n int) []catalog.Card {
	labels := []string{
		"Common", "Uncommon", "Rare",
		"Double Rare", "Illustration Rare", "Ultra Rare",
		"Special Illustration Rare", "Hyper Rare",
	}
	var cards []catalog.Card
	for _, label := range labels {
		for i := 0; i < n; i++ {
			cards = append(cards, catalog.Card{
				ID:     fmt.Sprintf("%s-%d", label, i),
				Name:   fmt.Sprintf("%s card %d", label, i),
				Rarity: label,
			})
		}
	}
	return cards
}

func TestOpenUnknownType(t *testing.T) {
	_, err := Open(testRand(), Type("mythic"), fullCatalog(3), nil)
	assert.ErrorIs(t, err, ErrUnknownPackType)
}

func TestOpenStandardComposition(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	cards := fullCatalog(12)

	pack := OpenStandard(r, cards)
	require.Len(t, pack, Size)

	for i := 0; i < 6; i++ {
		assert.Contains(t, []string{"Common", "Uncommon"}, pack[i].Rarity,
			"slot %d should be a common draw", i)
	}
	for i := 6; i < 9; i++ {
		assert.Contains(t, []string{"Uncommon", "Common"}, pack[i].Rarity,
			"slot %d should be an uncommon draw", i)
	}

	seen := map[string]bool{}
	for _, c := range pack {
		assert.False(t, seen[c.ID], "card %s repeated in a large set", c.ID)
		seen[c.ID] = true
	}
}

func TestOpenPremiumComposition(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 4))
	pack := OpenPremium(r, fullCatalog(12))
	require.Len(t, pack, Size)

	for i := 0; i < 4; i++ {
		assert.Equal(t, "Uncommon", pack[i].Rarity, "slot %d", i)
	}
	for i := 4; i < 8; i++ {
		assert.Equal(t, "Rare", pack[i].Rarity, "slot %d", i)
	}
	assert.Contains(t, []string{"Illustration Rare", "Double Rare"}, pack[8].Rarity)
	assert.Contains(t, []string{"Hyper Rare", "Special Illustration Rare", "Ultra Rare", "Double Rare"}, pack[9].Rarity)
}

// The hit slot follows cumulative bands: 0.5% hyper, 2% special
// illustration, 4% ultra, 8% illustration, 15.5% double rare, 70% rare.
// With a catalog holding every tier no fallback ever fires, so the slot's
// rarity identifies the band directly.
func TestStandardHitDistribution(t *testing.T) {
	if testing.Short() {
		t.Skip("distribution sampling is slow")
	}

	r := rand.New(rand.NewPCG(42, 1))
	cards := fullCatalog(12)

	const samples = 100000
	counts := map[string]int{}
	for i := 0; i < samples; i++ {
		pack := OpenStandard(r, cards)
		counts[pack[Size-1].Rarity]++
	}

	expected := map[string]float64{
		"Hyper Rare":                0.5,
		"Special Illustration Rare": 2.0,
		"Ultra Rare":                4.0,
		"Illustration Rare":         8.0,
		"Double Rare":               15.5,
		"Rare":                      70.0,
	}
	for label, want := range expected {
		got := float64(counts[label]) / samples * 100
		assert.InDelta(t, want, got, 0.5, "band for %s", label)
	}
}

func TestOpenGoldenGuaranteesMissingCard(t *testing.T) {
	r := rand.New(rand.NewPCG(5, 6))
	cards := fullCatalog(12)

	// Owner holds everything except one ultra rare.
	owned := map[string]bool{}
	for _, c := range cards {
		owned[c.ID] = true
	}
	target := "Ultra Rare-3"
	delete(owned, target)

	pack := OpenGolden(r, cards, owned)
	require.Len(t, pack, Size)
	assert.Equal(t, target, pack[Size-1].ID, "guarantee slot must be the one missing card")

	for i := 0; i < Size-1; i++ {
		assert.NotEqual(t, target, pack[i].ID, "guaranteed id is reserved before filler draws")
	}
}

// Missing commons only: the guarantee still fires, just without the
// rarity preference.
func TestOpenGoldenFallsBackToMissingCommons(t *testing.T) {
	r := rand.New(rand.NewPCG(9, 10))
	cards := fullCatalog(12)

	owned := map[string]bool{}
	for _, c := range cards {
		if c.Rarity != "Common" {
			owned[c.ID] = true
		}
	}

	pack := OpenGolden(r, cards, owned)
	assert.Equal(t, "Common", pack[Size-1].Rarity)
	assert.False(t, owned[pack[Size-1].ID])
}

func TestOpenGoldenCompleteCollection(t *testing.T) {
	r := rand.New(rand.NewPCG(13, 14))
	cards := fullCatalog(12)

	owned := map[string]bool{}
	for _, c := range cards {
		owned[c.ID] = true
	}

	pack := OpenGolden(r, cards, owned)
	require.Len(t, pack, Size)
	assert.Equal(t, "Hyper Rare", pack[Size-1].Rarity,
		"a completed collection upgrades the guarantee to a hyper rare")
}

func TestPrices(t *testing.T) {
	for _, tc := range []struct {
		packType Type
		want     int
	}{
		{TypeStandard, 100},
		{TypePremium, 250},
		{TypeGolden, 500},
	} {
		got, ok := Price(tc.packType)
		require.True(t, ok)
		assert.Equal(t, tc.want, got)
	}

	_, ok := Price(Type("mythic"))
	assert.False(t, ok)

	assert.Equal(t, 2, SellPrice("Common"))
	assert.Equal(t, 500, SellPrice("Hyper Rare"))
	assert.Equal(t, 10, SellPrice("Amazing Rare"), "unknown labels get the default")
}

// Every pack type yields exactly Size cards drawn from the catalog, for
// any non-empty catalog. An empty catalog degrades to sentinel slots
// rather than failing.
func TestOpenProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		labels := []string{
			"Common", "Uncommon", "Rare", "Rare Holo", "Rare Holo V",
			"Double Rare", "Illustration Rare", "Ultra Rare",
			"Special Illustration Rare", "Hyper Rare", "Promo",
		}
		n := rapid.IntRange(0, 40).Draw(t, "n")
		cards := make([]catalog.Card, n)
		byID := map[string]bool{}
		for i := range cards {
			cards[i] = catalog.Card{
				ID:     fmt.Sprintf("c%d", i),
				Rarity: rapid.SampledFrom(labels).Draw(t, "rarity"),
			}
			byID[cards[i].ID] = true
		}
		packType := rapid.SampledFrom([]Type{TypeStandard, TypePremium, TypeGolden}).Draw(t, "type")
		seed1 := rapid.Uint64().Draw(t, "seed1")
		seed2 := rapid.Uint64().Draw(t, "seed2")

		pack, err := Open(rand.New(rand.NewPCG(seed1, seed2)), packType, cards, map[string]bool{})
		if err != nil {
			t.Fatalf("Open failed: %v", err)
		}
		if len(pack) != Size {
			t.Fatalf("pack has %d slots, want %d", len(pack), Size)
		}
		for _, c := range pack {
			if n == 0 {
				if c.ID != MissingCardID {
					t.Fatalf("empty catalog must yield only sentinels, got %q", c.ID)
				}
				continue
			}
			if c.ID != MissingCardID && !byID[c.ID] {
				t.Fatalf("pack contains card %q not in the catalog", c.ID)
			}
		}
	})
}
