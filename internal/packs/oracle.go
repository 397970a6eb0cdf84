// internal/packs/oracle.go
package packs

import "packvault/internal/catalog"

// Missing returns the catalog cards the owner does not hold, in catalog
// order. It powers the golden pack's guarantee mechanic.
func Missing(cards []catalog.Card, ownedIDs map[string]bool) []catalog.Card {
	var missing []catalog.Card
	for _, c := range cards {
		if !ownedIDs[c.ID] {
			missing = append(missing, c)
		}
	}
	return missing
}

// missingRares filters a missing list down to cards above the
// Common/Uncommon labels. When non-empty, the guarantee slot prefers these.
func missingRares(missing []catalog.Card) []catalog.Card {
	var rares []catalog.Card
	for _, c := range missing {
		if c.Rarity != "Common" && c.Rarity != "Uncommon" {
			rares = append(rares, c)
		}
	}
	return rares
}
