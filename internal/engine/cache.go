package engine

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/auric/recommender/pkg/models"
)

// Warm cache for similar-item queries. Keys carry the fit generation, so
// entries written against a previous fit simply stop matching after a
// retrain and age out via TTL. All cache failures are soft: the query is
// recomputed.

func similarCacheKey(generation uint64, sku string, topN int) string {
	return fmt.Sprintf("similar:%d:%s:%d", generation, sku, topN)
}

func (e *Engine) cachedSimilar(ctx context.Context, model *fittedModel, sku string, topN int) ([]models.CatalogItem, bool) {
	if e.redis == nil {
		return nil, false
	}

	data, err := e.redis.Get(ctx, similarCacheKey(model.generation, sku, topN)).Result()
	if err != nil {
		return nil, false
	}

	var skus []string
	if err := json.Unmarshal([]byte(data), &skus); err != nil {
		e.logger.WithError(err).Warn("Failed to decode cached similar results")
		return nil, false
	}

	results := make([]models.CatalogItem, 0, len(skus))
	for _, s := range skus {
		if idx, ok := model.rowIndex[s]; ok {
			results = append(results, model.items[idx])
		}
	}

	if e.metrics != nil {
		e.metrics.CacheHits.Inc()
	}
	return results, true
}

func (e *Engine) cacheSimilar(ctx context.Context, model *fittedModel, sku string, topN int, results []models.CatalogItem) {
	if e.redis == nil {
		return
	}

	skus := make([]string, len(results))
	for i, item := range results {
		skus[i] = item.SKU
	}

	data, err := json.Marshal(skus)
	if err != nil {
		return
	}

	key := similarCacheKey(model.generation, sku, topN)
	if err := e.redis.Set(ctx, key, data, e.config.ResultCacheTTL).Err(); err != nil {
		e.logger.WithError(err).Warn("Failed to cache similar results")
	}
}
