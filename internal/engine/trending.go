package engine

import (
	"github.com/auric/recommender/pkg/models"
)

// Trending returns up to n popular items. Before the first successful fit
// it falls back to the raw catalog snapshot in store order; once fitted it
// samples from the memoized popularity-ranked pool so repeated calls show
// some variety.
func (e *Engine) Trending(n int) []models.CatalogItem {
	if e.metrics != nil {
		e.metrics.Queries.WithLabelValues("trending").Inc()
	}
	if n <= 0 {
		return nil
	}

	model := e.model.Load()
	if model == nil {
		snap := e.snapshot.Load()
		if snap == nil {
			return nil
		}
		items := snap.items
		if len(items) > n {
			items = items[:n]
		}
		return append([]models.CatalogItem(nil), items...)
	}

	pool := model.trendingPool(e.config.TrendingPoolSize)

	var chosen []int
	if len(pool) > n {
		chosen = e.sampleRows(pool, n)
	} else {
		chosen = pool
	}

	results := make([]models.CatalogItem, len(chosen))
	for i, row := range chosen {
		results[i] = model.items[row]
	}
	return results
}

// sampleRows draws n distinct rows from the pool uniformly at random.
func (e *Engine) sampleRows(pool []int, n int) []int {
	e.rngMu.Lock()
	perm := e.rng.Perm(len(pool))
	e.rngMu.Unlock()

	chosen := make([]int, n)
	for i := 0; i < n; i++ {
		chosen[i] = pool[perm[i]]
	}
	return chosen
}
