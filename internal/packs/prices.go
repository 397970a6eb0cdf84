// internal/packs/prices.go
package packs

// Price returns the coin cost of one pack of the given type.
func Price(packType Type) (int, bool) {
	switch packType {
	case TypeStandard:
		return 100, true
	case TypePremium:
		return 250, true
	case TypeGolden:
		return 500, true
	default:
		return 0, false
	}
}

// sellPrices maps raw provider rarity labels to the coins credited per
// copy sold. Prices derive from the stored card, never from the caller.
var sellPrices = map[string]int{
	"Common":                    2,
	"Uncommon":                  7,
	"Rare":                      30,
	"Rare Holo":                 80,
	"Double Rare":               150,
	"Ultra Rare":                200,
	"Illustration Rare":         250,
	"Special Illustration Rare": 400,
	"Hyper Rare":                500,
}

const defaultSellPrice = 10

// SellPrice returns the coin value of one copy with the given rarity label.
func SellPrice(rarity string) int {
	if price, ok := sellPrices[rarity]; ok {
		return price
	}
	return defaultSellPrice
}
