package stock

import (
	"strings"

	"github.com/labstock/backend/internal/domain/shared"
)

// Category identifies one of the stock collections tracked by the lab.
type Category string

const (
	CategoryChemicals   Category = "chemicals"
	CategoryConsumables Category = "consumables"
	CategoryEquipments  Category = "equipments"
	CategoryGlasswares  Category = "glasswares"
	CategoryBooks       Category = "books"
	CategoryOthers      Category = "others"
)

// Descriptor captures the capabilities that differ between categories.
// The stock engine is generic over it.
type Descriptor struct {
	Category Category
	// Label is the plural display name, e.g. "Equipments".
	Label string
	// Noun is used in notification messages, e.g. "The equipment X is now out of stock.".
	Noun string

	HasExpiry               bool
	IsReturnable            bool
	HasMaintenance          bool
	SeedsQuantityOnRegister bool
	RequiresHazardData      bool
}

var descriptors = map[Category]Descriptor{
	CategoryChemicals: {
		Category:           CategoryChemicals,
		Label:              "Chemicals",
		Noun:               "chemical",
		HasExpiry:          true,
		RequiresHazardData: true,
	},
	CategoryConsumables: {
		Category:           CategoryConsumables,
		Label:              "Consumables",
		Noun:               "consumable",
		HasExpiry:          true,
		RequiresHazardData: true,
	},
	CategoryEquipments: {
		Category:       CategoryEquipments,
		Label:          "Equipments",
		Noun:           "equipment",
		HasExpiry:      true,
		IsReturnable:   true,
		HasMaintenance: true,
	},
	CategoryGlasswares: {
		Category:                CategoryGlasswares,
		Label:                   "Glasswares",
		Noun:                    "glassware",
		IsReturnable:            true,
		SeedsQuantityOnRegister: true,
	},
	CategoryBooks: {
		Category:                CategoryBooks,
		Label:                   "Books",
		Noun:                    "book",
		SeedsQuantityOnRegister: true,
	},
	CategoryOthers: {
		Category:  CategoryOthers,
		Label:     "Others",
		Noun:      "item",
		HasExpiry: true,
	},
}

// AllCategories returns every category in display order.
func AllCategories() []Category {
	return []Category{
		CategoryChemicals,
		CategoryConsumables,
		CategoryEquipments,
		CategoryGlasswares,
		CategoryBooks,
		CategoryOthers,
	}
}

// ExpiryCategories returns the categories whose restocks carry expiration dates.
func ExpiryCategories() []Category {
	var out []Category
	for _, c := range AllCategories() {
		if descriptors[c].HasExpiry {
			out = append(out, c)
		}
	}
	return out
}

// ParseCategory parses a category name, case-insensitively.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := descriptors[c]; !ok {
		return "", shared.NewDomainError("INVALID_CATEGORY", "Unknown stock category: "+s)
	}
	return c, nil
}

// DescriptorFor returns the descriptor of a category.
func DescriptorFor(c Category) (Descriptor, error) {
	d, ok := descriptors[c]
	if !ok {
		return Descriptor{}, shared.NewDomainError("INVALID_CATEGORY", "Unknown stock category: "+string(c))
	}
	return d, nil
}

// MustDescriptor returns the descriptor of a known category and panics otherwise.
func MustDescriptor(c Category) Descriptor {
	d, err := DescriptorFor(c)
	if err != nil {
		panic(err)
	}
	return d
}

// Singular returns the capitalized singular label used in messages, e.g. "Equipment".
func (d Descriptor) Singular() string {
	if d.Noun == "" {
		return "Item"
	}
	return strings.ToUpper(d.Noun[:1]) + d.Noun[1:]
}

// String returns the category name.
func (c Category) String() string {
	return string(c)
}
