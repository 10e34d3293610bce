package enums

import "fmt"

// ItemCategory classifies menu items. Alcohol is load-bearing for dispatch:
// halal-mode couriers are never offered orders containing it.
type ItemCategory string

const (
	ItemCategoryFood    ItemCategory = "food"
	ItemCategoryDrink   ItemCategory = "drink"
	ItemCategoryDessert ItemCategory = "dessert"
	ItemCategoryAlcohol ItemCategory = "alcohol"
)

var validItemCategories = []ItemCategory{
	ItemCategoryFood,
	ItemCategoryDrink,
	ItemCategoryDessert,
	ItemCategoryAlcohol,
}

// IsValid reports whether the value matches the canonical item category enum.
func (i ItemCategory) IsValid() bool {
	for _, candidate := range validItemCategories {
		if candidate == i {
			return true
		}
	}
	return false
}

// ParseItemCategory converts the raw string to ItemCategory.
func ParseItemCategory(value string) (ItemCategory, error) {
	for _, candidate := range validItemCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid item category %q", value)
}
