package engine

import (
	"sort"
	"sync"

	"github.com/auric/recommender/pkg/models"
)

// fittedModel is one complete, immutable fit of the vector space: the item
// snapshot, one TF-IDF row per item, the scaled numeric columns and the
// id<->row lookup tables. A retrain builds a fresh fittedModel off to the
// side and publishes it with a single pointer swap; readers never observe
// a partially rebuilt state.
type fittedModel struct {
	items       []models.CatalogItem // row-aligned snapshot
	rows        []sparseVec
	rowIndex    map[string]int // identifier -> row
	skus        []string       // row -> identifier
	scaledPrice []float64
	popularity  []float64
	generation  uint64

	// trending memoizes the popularity-ranked candidate pool per pool
	// size. It lives inside the fit so a retrain supersedes it wholesale.
	trendingMu sync.Mutex
	trending   map[int][]int
}

// trendingPool returns the row indices of the top poolSize items by
// popularity, memoized for the lifetime of this fit. Ties keep row order.
func (m *fittedModel) trendingPool(poolSize int) []int {
	m.trendingMu.Lock()
	defer m.trendingMu.Unlock()

	if pool, ok := m.trending[poolSize]; ok {
		return pool
	}

	ranked := make([]int, len(m.items))
	for i := range ranked {
		ranked[i] = i
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return m.popularity[ranked[i]] > m.popularity[ranked[j]]
	})

	if poolSize < len(ranked) {
		ranked = ranked[:poolSize]
	}

	if m.trending == nil {
		m.trending = make(map[int][]int)
	}
	m.trending[poolSize] = ranked
	return ranked
}

// catalogSnapshot is the raw item list kept even when vectorization fails,
// so trending can still serve identifiers in catalog order.
type catalogSnapshot struct {
	items []models.CatalogItem
	bySKU map[string]models.CatalogItem
}

func newCatalogSnapshot(items []models.CatalogItem) *catalogSnapshot {
	snap := &catalogSnapshot{
		items: items,
		bySKU: make(map[string]models.CatalogItem, len(items)),
	}
	for _, item := range items {
		snap.bySKU[item.SKU] = item
	}
	return snap
}
