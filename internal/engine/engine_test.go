package engine

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/auric/recommender/internal/config"
	"github.com/auric/recommender/pkg/models"
)

type MockRatingStore struct {
	mock.Mock
}

func (m *MockRatingStore) RatingsForUser(ctx context.Context, userID string) ([]models.Rating, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Rating), args.Error(1)
}

type MockOrderStore struct {
	mock.Mock
}

func (m *MockOrderStore) OrdersForUser(ctx context.Context, userID string) ([]models.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}

type stubCatalogStore struct {
	items []models.CatalogItem
	err   error
}

func (s *stubCatalogStore) ListActiveItems(ctx context.Context) ([]models.CatalogItem, error) {
	return s.items, s.err
}

func testConfig() *config.EngineConfig {
	return &config.EngineConfig{
		MaxFeatures:      5000,
		ContentWeight:    0.85,
		PriceWeight:      0.15,
		ProfileContent:   0.6,
		ProfilePrice:     0.3,
		ProfilePopular:   0.1,
		LikeThreshold:    4.0,
		TrendingPoolSize: 100,
		ResultCacheTTL:   time.Minute,
	}
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func newTestEngine(ratings *MockRatingStore, orders *MockOrderStore) *Engine {
	return New(&stubCatalogStore{}, ratings, orders, nil, testConfig(), nil, testLogger())
}

// jewelryCatalog is the three-item scenario from the design review:
// A and B share tags and sit at close prices, C shares neither.
func jewelryCatalog() []models.CatalogItem {
	return []models.CatalogItem{
		{SKU: "A", Name: "Ring Alpha", Tags: []string{"gold", "ring"}, Price: floatPtr(1000), Quantity: 1},
		{SKU: "B", Name: "Ring Beta", Tags: []string{"gold", "ring"}, Price: floatPtr(1050), Quantity: 1},
		{SKU: "C", Name: "Necklace Gamma", Tags: []string{"diamond", "necklace"}, Price: floatPtr(50000), Quantity: 1},
	}
}

func TestEngine_Fit(t *testing.T) {
	t.Run("empty snapshot is a logged no-op", func(t *testing.T) {
		e := newTestEngine(nil, nil)

		e.Fit(nil)
		assert.False(t, e.IsFitted())

		e.Fit([]models.CatalogItem{})
		assert.False(t, e.IsFitted())
	})

	t.Run("successful fit publishes the model", func(t *testing.T) {
		e := newTestEngine(nil, nil)
		e.Fit(jewelryCatalog())
		assert.True(t, e.IsFitted())
	})

	t.Run("refit replaces the previous fit", func(t *testing.T) {
		e := newTestEngine(nil, nil)
		e.Fit(jewelryCatalog())

		e.Fit([]models.CatalogItem{
			{SKU: "Z", Name: "Brooch Omega", Tags: []string{"silver"}, Price: floatPtr(10), Quantity: 1},
		})

		assert.True(t, e.IsFitted())
		assert.Empty(t, e.SimilarTo(context.Background(), "A", 5))
		assert.Empty(t, e.SimilarTo(context.Background(), "Z", 5))
	})

	t.Run("vectorization failure leaves engine unfitted", func(t *testing.T) {
		e := newTestEngine(nil, nil)
		// Every token is filtered out, so the vocabulary comes up empty.
		e.Fit([]models.CatalogItem{
			{SKU: "A", Name: "a b", Quantity: 1},
			{SKU: "B", Name: "of", Quantity: 1},
		})
		assert.False(t, e.IsFitted())
	})
}

func TestEngine_SimilarTo(t *testing.T) {
	ctx := context.Background()

	t.Run("unfitted engine returns empty", func(t *testing.T) {
		e := newTestEngine(nil, nil)
		assert.Empty(t, e.SimilarTo(ctx, "A", 5))
	})

	t.Run("unknown identifier returns empty", func(t *testing.T) {
		e := newTestEngine(nil, nil)
		e.Fit(jewelryCatalog())
		assert.Empty(t, e.SimilarTo(ctx, "missing", 5))
	})

	t.Run("ranks tag and price neighbors first", func(t *testing.T) {
		e := newTestEngine(nil, nil)
		e.Fit(jewelryCatalog())

		results := e.SimilarTo(ctx, "A", 2)
		require.Len(t, results, 2)
		assert.Equal(t, "B", results[0].SKU)
		assert.Equal(t, "C", results[1].SKU)
	})

	t.Run("never includes the query item", func(t *testing.T) {
		e := newTestEngine(nil, nil)
		e.Fit(jewelryCatalog())

		for _, sku := range []string{"A", "B", "C"} {
			for n := 1; n <= 4; n++ {
				for _, item := range e.SimilarTo(ctx, sku, n) {
					assert.NotEqual(t, sku, item.SKU)
				}
			}
		}
	})

	t.Run("deterministic across independent fits", func(t *testing.T) {
		e1 := newTestEngine(nil, nil)
		e2 := newTestEngine(nil, nil)
		e1.Fit(jewelryCatalog())
		e2.Fit(jewelryCatalog())

		assert.Equal(t, e1.SimilarTo(ctx, "A", 3), e2.SimilarTo(ctx, "A", 3))
		assert.Equal(t, e1.SimilarTo(ctx, "C", 3), e2.SimilarTo(ctx, "C", 3))
	})
}

func TestEngine_RecommendForUser(t *testing.T) {
	ctx := context.Background()

	t.Run("single liked item recommends its neighbor", func(t *testing.T) {
		ratings := new(MockRatingStore)
		orders := new(MockOrderStore)
		ratings.On("RatingsForUser", mock.Anything, "u1").
			Return([]models.Rating{{SKU: "A", Stars: 5}}, nil)
		orders.On("OrdersForUser", mock.Anything, "u1").
			Return([]models.Order{}, nil)

		e := newTestEngine(ratings, orders)
		e.Fit(jewelryCatalog())

		results, err := e.RecommendForUser(ctx, "u1", 1)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "B", results[0].SKU)
	})

	t.Run("purchases count as likes", func(t *testing.T) {
		ratings := new(MockRatingStore)
		orders := new(MockOrderStore)
		ratings.On("RatingsForUser", mock.Anything, "u2").
			Return([]models.Rating{{SKU: "C", Stars: 2}}, nil) // below threshold
		orders.On("OrdersForUser", mock.Anything, "u2").
			Return([]models.Order{
				{Status: "COMPLETED", Items: []models.OrderItem{{SKU: "A", Qty: 1, Price: 1000}}},
			}, nil)

		e := newTestEngine(ratings, orders)
		e.Fit(jewelryCatalog())

		results, err := e.RecommendForUser(ctx, "u2", 1)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "B", results[0].SKU)
	})

	t.Run("cold start matches trending output", func(t *testing.T) {
		ratings := new(MockRatingStore)
		orders := new(MockOrderStore)
		ratings.On("RatingsForUser", mock.Anything, "new-user").
			Return([]models.Rating{}, nil)
		orders.On("OrdersForUser", mock.Anything, "new-user").
			Return([]models.Order{}, nil)

		e := newTestEngine(ratings, orders)
		e.Fit(jewelryCatalog())

		// topN above the catalog size keeps the trending path away from
		// its randomized sampling branch.
		results, err := e.RecommendForUser(ctx, "new-user", 5)
		require.NoError(t, err)
		assert.Equal(t, e.Trending(5), results)
	})

	t.Run("liked items retired from the fit fall back to trending", func(t *testing.T) {
		ratings := new(MockRatingStore)
		orders := new(MockOrderStore)
		ratings.On("RatingsForUser", mock.Anything, "u3").
			Return([]models.Rating{{SKU: "retired-sku", Stars: 5}}, nil)
		orders.On("OrdersForUser", mock.Anything, "u3").
			Return([]models.Order{}, nil)

		e := newTestEngine(ratings, orders)
		e.Fit(jewelryCatalog())

		results, err := e.RecommendForUser(ctx, "u3", 5)
		require.NoError(t, err)
		assert.Equal(t, e.Trending(5), results)
	})

	t.Run("store failure propagates", func(t *testing.T) {
		ratings := new(MockRatingStore)
		orders := new(MockOrderStore)
		ratings.On("RatingsForUser", mock.Anything, "u4").
			Return(nil, fmt.Errorf("connection refused"))

		e := newTestEngine(ratings, orders)
		e.Fit(jewelryCatalog())

		_, err := e.RecommendForUser(ctx, "u4", 5)
		assert.Error(t, err)
	})

	t.Run("deterministic across independent fits", func(t *testing.T) {
		newFitted := func() *Engine {
			ratings := new(MockRatingStore)
			orders := new(MockOrderStore)
			ratings.On("RatingsForUser", mock.Anything, "u1").
				Return([]models.Rating{{SKU: "A", Stars: 5}}, nil)
			orders.On("OrdersForUser", mock.Anything, "u1").
				Return([]models.Order{}, nil)
			e := newTestEngine(ratings, orders)
			e.Fit(jewelryCatalog())
			return e
		}

		e1, e2 := newFitted(), newFitted()
		r1, err := e1.RecommendForUser(ctx, "u1", 2)
		require.NoError(t, err)
		r2, err := e2.RecommendForUser(ctx, "u1", 2)
		require.NoError(t, err)
		assert.Equal(t, r1, r2)
	})
}

func TestEngine_DiversityFilter(t *testing.T) {
	ctx := context.Background()

	variantCatalog := func() []models.CatalogItem {
		items := []models.CatalogItem{}
		for _, suffix := range []string{"A", "B", "C", "D", "E"} {
			items = append(items, models.CatalogItem{
				SKU:      "GR-" + suffix,
				Name:     "Gold Ring " + suffix,
				Tags:     []string{"gold", "ring"},
				Price:    floatPtr(100),
				Quantity: 1,
			})
		}
		items = append(items, models.CatalogItem{
			SKU:      "SP-1",
			Name:     "Silver Pendant",
			Tags:     []string{"silver", "pendant"},
			Price:    floatPtr(120),
			Quantity: 1,
		})
		return items
	}

	likedStores := func(sku string) (*MockRatingStore, *MockOrderStore) {
		ratings := new(MockRatingStore)
		orders := new(MockOrderStore)
		ratings.On("RatingsForUser", mock.Anything, mock.Anything).
			Return([]models.Rating{{SKU: sku, Stars: 5}}, nil)
		orders.On("OrdersForUser", mock.Anything, mock.Anything).
			Return([]models.Order{}, nil)
		return ratings, orders
	}

	t.Run("at most one variant per base name", func(t *testing.T) {
		ratings, orders := likedStores("GR-A")
		e := newTestEngine(ratings, orders)
		e.Fit(variantCatalog())

		results, err := e.RecommendForUser(ctx, "u1", 2)
		require.NoError(t, err)
		require.Len(t, results, 2)

		goldRings := 0
		for _, item := range results {
			if strings.HasPrefix(item.Name, "Gold Ring") {
				goldRings++
			}
		}
		assert.Equal(t, 1, goldRings)
		assert.Equal(t, "Silver Pendant", results[1].Name)
	})

	t.Run("fallback fill relaxes the diversity rule", func(t *testing.T) {
		// Only one base-name group besides the liked item: the first pass
		// cannot reach three results on its own.
		catalog := variantCatalog()[:5] // five Gold Ring variants
		ratings, orders := likedStores("GR-A")
		e := newTestEngine(ratings, orders)
		e.Fit(catalog)

		results, err := e.RecommendForUser(ctx, "u1", 3)
		require.NoError(t, err)
		require.Len(t, results, 3)

		seen := make(map[string]bool)
		for _, item := range results {
			assert.NotEqual(t, "GR-A", item.SKU)
			assert.False(t, seen[item.SKU], "duplicate item %s", item.SKU)
			seen[item.SKU] = true
		}
	})
}

func TestEngine_Trending(t *testing.T) {
	t.Run("no snapshot yields nothing", func(t *testing.T) {
		e := newTestEngine(nil, nil)
		assert.Empty(t, e.Trending(5))
	})

	t.Run("unfitted engine serves snapshot order", func(t *testing.T) {
		e := newTestEngine(nil, nil)
		// Vectorization fails, but the snapshot is still published.
		e.Fit([]models.CatalogItem{
			{SKU: "1", Name: "a", Quantity: 1},
			{SKU: "2", Name: "b", Quantity: 1},
			{SKU: "3", Name: "c", Quantity: 1},
		})
		require.False(t, e.IsFitted())

		results := e.Trending(2)
		require.Len(t, results, 2)
		assert.Equal(t, "1", results[0].SKU)
		assert.Equal(t, "2", results[1].SKU)
	})

	t.Run("n above catalog size returns the whole catalog", func(t *testing.T) {
		e := newTestEngine(nil, nil)
		e.Fit(jewelryCatalog())

		results := e.Trending(50)
		require.Len(t, results, 3)

		seen := make(map[string]bool)
		for _, item := range results {
			assert.False(t, seen[item.SKU])
			seen[item.SKU] = true
		}
	})

	t.Run("ranked by popularity", func(t *testing.T) {
		e := newTestEngine(nil, nil)
		e.Fit([]models.CatalogItem{
			{SKU: "low", Name: "Plain Band", Tags: []string{"band"}, ManualRating: floatPtr(1), Quantity: 1},
			{SKU: "high", Name: "Star Ring", Tags: []string{"ring"}, ManualRating: floatPtr(5), Quantity: 1},
			{SKU: "mid", Name: "Nice Cuff", Tags: []string{"cuff"}, ManualRating: floatPtr(3), Quantity: 1},
		})

		results := e.Trending(3)
		require.Len(t, results, 3)
		assert.Equal(t, "high", results[0].SKU)
		assert.Equal(t, "mid", results[1].SKU)
		assert.Equal(t, "low", results[2].SKU)
	})

	t.Run("random sample stays inside the pool", func(t *testing.T) {
		var items []models.CatalogItem
		for i := 0; i < 10; i++ {
			items = append(items, models.CatalogItem{
				SKU:          fmt.Sprintf("S-%d", i),
				Name:         fmt.Sprintf("Charm Number %d", i),
				Tags:         []string{"charm"},
				ManualRating: floatPtr(float64(i % 5)),
				Quantity:     1,
			})
		}
		e := newTestEngine(nil, nil)
		e.Fit(items)

		for i := 0; i < 20; i++ {
			results := e.Trending(4)
			require.Len(t, results, 4)
			seen := make(map[string]bool)
			for _, item := range results {
				assert.False(t, seen[item.SKU])
				seen[item.SKU] = true
			}
		}
	})
}
