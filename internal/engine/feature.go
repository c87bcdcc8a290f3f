package engine

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/auric/recommender/pkg/models"
)

// Attribute keys that carry recommendation signal. Other attributes
// (internal notes, supplier codes) stay out of the soup.
var soupAttributeKeys = []string{"material", "color", "stone", "finish"}

var (
	nonWordRegex    = regexp.MustCompile(`[^\p{L}\p{N}]+`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

// ItemFeatures is the per-item output of the feature builder: the weighted
// text soup feeding the vectorizer and the raw numeric columns feeding the
// scalers.
type ItemFeatures struct {
	Soup           string
	Price          float64
	WeightGrams    float64
	PopularitySeed float64
}

// soldOutBoost is added to the popularity seed of items with no stock on
// hand; an exhausted item is treated as proven demand.
const soldOutBoost = 0.5

// BuildFeatures derives an ItemFeatures from one catalog item. It is
// deterministic and tolerates missing optional fields.
func BuildFeatures(item models.CatalogItem) ItemFeatures {
	var parts []string

	// Name, categories, tags and selected attributes are doubled so they
	// outweigh free-text description terms in the fitted vocabulary.
	appendWeighted := func(text string, weight int) {
		text = cleanText(text)
		if text == "" {
			return
		}
		for i := 0; i < weight; i++ {
			parts = append(parts, text)
		}
	}

	appendWeighted(item.Name, 2)
	appendWeighted(item.Category, 2)
	appendWeighted(item.Subcategory, 2)
	appendWeighted(strings.Join(item.Tags, " "), 2)
	for _, key := range soupAttributeKeys {
		if v, ok := item.Attributes[key]; ok {
			appendWeighted(v, 2)
		}
	}
	appendWeighted(item.Description, 1)

	features := ItemFeatures{
		Soup: strings.Join(parts, " "),
	}

	if item.Price != nil {
		features.Price = *item.Price
	}
	if item.WeightGrams != nil {
		features.WeightGrams = *item.WeightGrams
	}
	if item.ManualRating != nil {
		features.PopularitySeed = *item.ManualRating
	}
	if item.Quantity == 0 {
		features.PopularitySeed += soldOutBoost
	}

	return features
}

// cleanText lowercases, normalizes unicode and collapses everything that is
// not a letter or digit into single spaces.
func cleanText(text string) string {
	text = norm.NFC.String(text)
	text = strings.ToLower(text)
	text = nonWordRegex.ReplaceAllString(text, " ")
	text = whitespaceRegex.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// baseName reduces a display name to its first two lowercased words. Used
// by the diversity filter to group near-duplicate product variants
// ("Gold Ring A" and "Gold Ring B" share the key "gold ring").
func baseName(name string) string {
	words := strings.Fields(strings.ToLower(strings.TrimSpace(name)))
	if len(words) > 2 {
		words = words[:2]
	}
	return strings.Join(words, " ")
}
