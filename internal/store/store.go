// Package store provides read-only access to the product, rating and order
// data the recommendation engine consumes. The engine depends on the three
// interfaces below; the pgx implementations issue plain SELECTs and own no
// schema.
package store

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/auric/recommender/pkg/models"
)

// CatalogStore lists the items eligible for recommendation.
type CatalogStore interface {
	ListActiveItems(ctx context.Context) ([]models.CatalogItem, error)
}

// RatingStore returns the explicit star ratings a user has left.
type RatingStore interface {
	RatingsForUser(ctx context.Context, userID string) ([]models.Rating, error)
}

// OrderStore returns a user's orders with their line items.
type OrderStore interface {
	OrdersForUser(ctx context.Context, userID string) ([]models.Order, error)
}

// Querier is the slice of pgxpool.Pool the stores need; it lets tests
// substitute a pgxmock pool.
type Querier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}
