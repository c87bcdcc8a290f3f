// Package engine implements the catalog recommendation model: a TF-IDF
// vector space over item feature soups, blended with scaled price and
// popularity signals, answering similar-item and per-user queries against
// an atomically swappable in-memory fit.
package engine

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/auric/recommender/internal/config"
	"github.com/auric/recommender/internal/store"
	"github.com/auric/recommender/pkg/models"
)

// Engine is the shared recommendation model instance: one writer path
// (Fit) and many concurrent readers (SimilarTo, RecommendForUser,
// Trending). Readers load the current fit once per call and never block
// on a retrain.
type Engine struct {
	config  *config.EngineConfig
	logger  *logrus.Logger
	catalog store.CatalogStore
	ratings store.RatingStore
	orders  store.OrderStore
	redis   *redis.Client // warm cache, may be nil
	metrics *Metrics      // may be nil

	model    atomic.Pointer[fittedModel]
	snapshot atomic.Pointer[catalogSnapshot]
	fitSeq   uint64
	fitMu    sync.Mutex // serializes writers; readers never take it

	rngMu sync.Mutex
	rng   *rand.Rand
}

func New(
	catalog store.CatalogStore,
	ratings store.RatingStore,
	orders store.OrderStore,
	redisClient *redis.Client,
	cfg *config.EngineConfig,
	metrics *Metrics,
	logger *logrus.Logger,
) *Engine {
	return &Engine{
		config:  cfg,
		logger:  logger,
		catalog: catalog,
		ratings: ratings,
		orders:  orders,
		redis:   redisClient,
		metrics: metrics,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// IsFitted reports whether a vector space is currently published. Callers
// use it to short-circuit before querying.
func (e *Engine) IsFitted() bool {
	return e.model.Load() != nil
}

// Retrain pulls a fresh catalog snapshot from the store and refits.
// Invoked at startup, from the retrain schedule and from the admin
// endpoint.
func (e *Engine) Retrain(ctx context.Context) error {
	items, err := e.catalog.ListActiveItems(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active items: %w", err)
	}
	e.Fit(items)
	return nil
}

// Fit rebuilds the whole model from a catalog snapshot and publishes it
// atomically. An empty snapshot is logged and ignored. A vectorization
// failure leaves the previous fit (if any) in place rather than crashing
// the process. Safe to call repeatedly.
func (e *Engine) Fit(items []models.CatalogItem) {
	if len(items) == 0 {
		e.logger.Warn("Fit called with empty catalog snapshot, ignoring")
		return
	}

	e.fitMu.Lock()
	defer e.fitMu.Unlock()

	started := time.Now()

	// The raw snapshot is published even when vectorization fails below,
	// so trending keeps serving identifiers in catalog order.
	e.snapshot.Store(newCatalogSnapshot(items))

	soups := make([]string, len(items))
	prices := make([]float64, len(items))
	seeds := make([]float64, len(items))
	for i, item := range items {
		features := BuildFeatures(item)
		soups[i] = features.Soup
		prices[i] = features.Price
		seeds[i] = features.PopularitySeed
	}

	_, rows, err := fitVectorizer(soups, e.config.MaxFeatures)
	if err != nil {
		e.logger.WithError(err).Error("Text vectorization unavailable, engine stays unfitted")
		return
	}

	priceScaler := fitScaler(prices)
	seedScaler := fitScaler(seeds)

	model := &fittedModel{
		items:       items,
		rows:        rows,
		rowIndex:    make(map[string]int, len(items)),
		skus:        make([]string, len(items)),
		scaledPrice: make([]float64, len(items)),
		popularity:  make([]float64, len(items)),
	}
	for i, item := range items {
		model.rowIndex[item.SKU] = i
		model.skus[i] = item.SKU
		model.scaledPrice[i] = priceScaler.scale(prices[i])
		model.popularity[i] = seedScaler.scale(seeds[i])
	}

	e.fitSeq++
	model.generation = e.fitSeq
	e.model.Store(model)

	elapsed := time.Since(started)
	if e.metrics != nil {
		e.metrics.FitTotal.Inc()
		e.metrics.FitDuration.Observe(elapsed.Seconds())
		e.metrics.FitItems.Set(float64(len(items)))
	}
	e.logger.WithFields(logrus.Fields{
		"items":      len(items),
		"generation": model.generation,
		"duration":   elapsed,
	}).Info("Recommendation model fitted")
}

// SimilarTo returns up to topN items most similar to the given identifier,
// ranked by fused content and price similarity. An unfitted engine or an
// unknown identifier yields an empty slice, not an error.
func (e *Engine) SimilarTo(ctx context.Context, sku string, topN int) []models.CatalogItem {
	if e.metrics != nil {
		e.metrics.Queries.WithLabelValues("similar").Inc()
	}

	model := e.model.Load()
	if model == nil || topN <= 0 {
		return nil
	}
	queryRow, ok := model.rowIndex[sku]
	if !ok {
		return nil
	}

	if cached, ok := e.cachedSimilar(ctx, model, sku, topN); ok {
		return cached
	}

	scored := make([]models.ScoredItem, 0, len(model.items))
	for i := range model.items {
		if i == queryRow {
			continue
		}
		content := model.rows[queryRow].dot(model.rows[i])
		price := 1 - absFloat(model.scaledPrice[queryRow]-model.scaledPrice[i])
		scored = append(scored, models.ScoredItem{
			Row:   i,
			SKU:   model.skus[i],
			Score: e.config.ContentWeight*content + e.config.PriceWeight*price,
		})
	}

	sortByScore(scored)
	if len(scored) > topN {
		scored = scored[:topN]
	}

	results := make([]models.CatalogItem, len(scored))
	for i, s := range scored {
		results[i] = model.items[s.Row]
	}

	e.cacheSimilar(ctx, model, sku, topN, results)
	return results
}

// RecommendForUser blends the user's implicit signals into a profile
// vector and ranks the catalog against it. Users with no usable signal
// fall through to Trending; store failures propagate to the caller.
func (e *Engine) RecommendForUser(ctx context.Context, userID string, topN int) ([]models.CatalogItem, error) {
	if e.metrics != nil {
		e.metrics.Queries.WithLabelValues("personalized").Inc()
	}
	if topN <= 0 {
		return nil, nil
	}

	// The single upstream I/O boundary: resolve the liked set, then
	// everything below is pure in-memory computation.
	liked, err := e.likedItems(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(liked) == 0 {
		return e.Trending(topN), nil
	}

	model := e.model.Load()
	if model == nil {
		return e.Trending(topN), nil
	}

	profile, likedRows := buildProfile(model, liked)
	if len(likedRows) == 0 {
		// Every liked item was retired before this fit.
		return e.Trending(topN), nil
	}

	priceTarget, hasTarget := likedPriceTarget(model, likedRows)

	likedSet := make(map[string]bool, len(liked))
	for _, sku := range liked {
		likedSet[sku] = true
	}

	scored := make([]models.ScoredItem, 0, len(model.items))
	for i := range model.items {
		if likedSet[model.skus[i]] {
			continue
		}
		content := profile.dot(model.rows[i])
		price := 0.5
		if hasTarget {
			price = 1 - absFloat(priceTarget-model.scaledPrice[i])
		}
		score := e.config.ProfileContent*content +
			e.config.ProfilePrice*price +
			e.config.ProfilePopular*model.popularity[i]
		scored = append(scored, models.ScoredItem{Row: i, SKU: model.skus[i], Score: score})
	}
	sortByScore(scored)

	picked := e.diversityPick(model, scored, topN)

	results := make([]models.CatalogItem, len(picked))
	for i, row := range picked {
		results[i] = model.items[row]
	}
	return results, nil
}

// diversityPick walks the ranked candidates collecting at most one item
// per base-name key within a window of 3x the requested count, then fills
// any remaining slots from the full ranking with the diversity rule
// dropped.
func (e *Engine) diversityPick(model *fittedModel, ranked []models.ScoredItem, topN int) []int {
	var picked []int
	seenBase := make(map[string]bool)
	emitted := make(map[int]bool)

	window := 3 * topN
	if window > len(ranked) {
		window = len(ranked)
	}
	for _, s := range ranked[:window] {
		if len(picked) >= topN {
			break
		}
		key := baseName(model.items[s.Row].Name)
		if seenBase[key] {
			continue
		}
		seenBase[key] = true
		emitted[s.Row] = true
		picked = append(picked, s.Row)
	}

	// Fallback completion: too few distinct base-name groups.
	for _, s := range ranked {
		if len(picked) >= topN {
			break
		}
		if emitted[s.Row] {
			continue
		}
		emitted[s.Row] = true
		picked = append(picked, s.Row)
	}

	return picked
}

// likedItems resolves the user's implicit signal: items rated at or above
// the like threshold plus every item in their orders, de-duplicated in
// first-seen order.
func (e *Engine) likedItems(ctx context.Context, userID string) ([]string, error) {
	ratings, err := e.ratings.RatingsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ratings for user %s: %w", userID, err)
	}
	orders, err := e.orders.OrdersForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load orders for user %s: %w", userID, err)
	}

	var liked []string
	seen := make(map[string]bool)
	add := func(sku string) {
		if sku == "" || seen[sku] {
			return
		}
		seen[sku] = true
		liked = append(liked, sku)
	}

	for _, r := range ratings {
		if r.Stars >= e.config.LikeThreshold {
			add(r.SKU)
		}
	}
	for _, o := range orders {
		for _, item := range o.Items {
			add(item.SKU)
		}
	}

	return liked, nil
}

// buildProfile averages the content rows of the liked items present in
// this fit. Identifiers missing from the fit are silently skipped.
func buildProfile(model *fittedModel, liked []string) (sparseVec, []int) {
	var rows []int
	for _, sku := range liked {
		if idx, ok := model.rowIndex[sku]; ok {
			rows = append(rows, idx)
		}
	}
	if len(rows) == 0 {
		return nil, nil
	}

	profile := make(sparseVec)
	for _, idx := range rows {
		for term, weight := range model.rows[idx] {
			profile[term] += weight
		}
	}
	n := float64(len(rows))
	for term := range profile {
		profile[term] /= n
	}
	return profile, rows
}

// likedPriceTarget computes the median scaled price over the liked rows
// whose items have a known price. No known price means no price signal.
func likedPriceTarget(model *fittedModel, likedRows []int) (float64, bool) {
	var prices []float64
	for _, idx := range likedRows {
		if model.items[idx].Price != nil {
			prices = append(prices, model.scaledPrice[idx])
		}
	}
	if len(prices) == 0 {
		return 0, false
	}
	sort.Float64s(prices)
	return stat.Quantile(0.5, stat.LinInterp, prices, nil), true
}

// sortByScore ranks descending; the stable sort keeps original row order
// on ties, which makes rankings reproducible across identical fits.
func sortByScore(scored []models.ScoredItem) {
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
