package models

// CatalogItem is a point-in-time snapshot of one product as exposed by the
// catalog store. The engine never mutates it; optional fields are nil when
// the store has no value for them.
type CatalogItem struct {
	SKU          string            `json:"sku" db:"sku"`
	Name         string            `json:"name" db:"name"`
	Category     string            `json:"category,omitempty" db:"category"`
	Subcategory  string            `json:"subcategory,omitempty" db:"subcategory"`
	Description  string            `json:"description,omitempty" db:"description"`
	Tags         []string          `json:"tags,omitempty" db:"tags"`
	Price        *float64          `json:"price,omitempty" db:"price"`
	WeightGrams  *float64          `json:"weight_g,omitempty" db:"weight_g"`
	Attributes   map[string]string `json:"attributes,omitempty" db:"attributes"`
	ManualRating *float64          `json:"manual_rating,omitempty" db:"manual_rating"`
	Quantity     int               `json:"quantity" db:"quantity"`
}

// ScoredItem pairs a catalog row index with its fused ranking score.
type ScoredItem struct {
	Row   int
	SKU   string
	Score float64
}
