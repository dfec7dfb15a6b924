package models

import (
	"time"

	"github.com/google/uuid"
)

// Brand categories. The category drives keyword generation.
const (
	CategorySoftware  = "software"
	CategoryEcommerce = "ecommerce"
	CategoryFinance   = "finance"
	CategoryHealth    = "health"
	CategoryFood      = "food"
	CategoryServices  = "services"
	CategoryOther     = "other"
)

// Categories lists every accepted brand category in display order.
var Categories = []string{
	CategorySoftware,
	CategoryEcommerce,
	CategoryFinance,
	CategoryHealth,
	CategoryFood,
	CategoryServices,
	CategoryOther,
}

var categoryDisplayNames = map[string]string{
	CategorySoftware:  "Software & Technology",
	CategoryEcommerce: "E-Commerce & Retail",
	CategoryFinance:   "Finance & Accounting",
	CategoryHealth:    "Health & Wellness",
	CategoryFood:      "Food & Beverage",
	CategoryServices:  "Professional Services",
	CategoryOther:     "Other",
}

// Brand is the root entity; every ranking, citation and review belongs to one.
type Brand struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Website   string    `json:"website"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsValidCategory reports whether category is one of Categories.
func IsValidCategory(category string) bool {
	_, ok := categoryDisplayNames[category]
	return ok
}

// CategoryDisplayName returns the human label for a category, or the raw value if unknown.
func CategoryDisplayName(category string) string {
	if name, ok := categoryDisplayNames[category]; ok {
		return name
	}
	return category
}
