package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/auric/recommender/pkg/models"
)

func floatPtr(v float64) *float64 { return &v }

func TestBuildFeatures(t *testing.T) {
	t.Run("weighted soup doubles structured fields", func(t *testing.T) {
		item := models.CatalogItem{
			SKU:         "R-100",
			Name:        "Aurora Ring",
			Category:    "Rings",
			Subcategory: "Engagement",
			Description: "Hand finished band with a brushed texture",
			Tags:        []string{"gold", "vintage"},
			Attributes:  map[string]string{"material": "18k gold", "supplier": "acme"},
			Price:       floatPtr(1200),
			Quantity:    3,
		}

		features := BuildFeatures(item)

		assert.Equal(t, 2, strings.Count(features.Soup, "aurora ring"))
		assert.Equal(t, 2, strings.Count(features.Soup, "engagement"))
		assert.Equal(t, 2, strings.Count(features.Soup, "gold vintage"))
		assert.Equal(t, 2, strings.Count(features.Soup, "18k gold"))
		assert.Equal(t, 1, strings.Count(features.Soup, "brushed"))
		// Non-signal attributes stay out of the soup.
		assert.NotContains(t, features.Soup, "acme")
		// Lowercased throughout.
		assert.Equal(t, strings.ToLower(features.Soup), features.Soup)
		assert.Equal(t, 1200.0, features.Price)
	})

	t.Run("missing optional fields produce zeros", func(t *testing.T) {
		features := BuildFeatures(models.CatalogItem{SKU: "X", Name: "Bare Item", Quantity: 1})

		assert.Equal(t, "bare item bare item", features.Soup)
		assert.Zero(t, features.Price)
		assert.Zero(t, features.WeightGrams)
		assert.Zero(t, features.PopularitySeed)
	})

	t.Run("popularity seed adds sold out boost", func(t *testing.T) {
		inStock := BuildFeatures(models.CatalogItem{
			SKU: "A", Name: "A", ManualRating: floatPtr(3), Quantity: 5,
		})
		soldOut := BuildFeatures(models.CatalogItem{
			SKU: "B", Name: "B", ManualRating: floatPtr(3), Quantity: 0,
		})

		assert.Equal(t, 3.0, inStock.PopularitySeed)
		assert.Equal(t, 3.5, soldOut.PopularitySeed)
	})

	t.Run("deterministic for identical input", func(t *testing.T) {
		item := models.CatalogItem{
			SKU: "R-1", Name: "Gold Ring", Tags: []string{"gold", "ring"},
			Description: "A ring", Price: floatPtr(100), Quantity: 1,
		}
		assert.Equal(t, BuildFeatures(item), BuildFeatures(item))
	})
}

func TestBaseName(t *testing.T) {
	assert.Equal(t, "gold ring", baseName("Gold Ring Alpha"))
	assert.Equal(t, "gold ring", baseName("  gold RING  "))
	assert.Equal(t, "pendant", baseName("Pendant"))
	assert.Equal(t, "", baseName(""))
}
