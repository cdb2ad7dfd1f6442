package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/retailpulse/inventory-intel/internal/domain"
)

type salesRepository struct {
	db *DB
}

func NewSalesRepository(db *DB) *salesRepository {
	return &salesRepository{db: db}
}

const salesColumns = `
	id, store_id, article, sold_at, quantity, revenue,
	revenue_without_discount, cost, margin, channel
`

func (r *salesRepository) GetSalesSince(ctx context.Context, since time.Time) ([]domain.SalesRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM sales
		WHERE sold_at >= $1
		ORDER BY store_id, article, sold_at
	`, salesColumns)

	var rows []domain.SalesRecord
	if err := r.db.SelectContext(ctx, &rows, query, since); err != nil {
		return nil, fmt.Errorf("failed to get sales since %s: %w", since.Format("2006-01-02"), err)
	}
	return rows, nil
}

func (r *salesRepository) GetStoreSalesSince(ctx context.Context, storeID int64, since time.Time) ([]domain.SalesRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM sales
		WHERE store_id = $1 AND sold_at >= $2
		ORDER BY article, sold_at
	`, salesColumns)

	var rows []domain.SalesRecord
	if err := r.db.SelectContext(ctx, &rows, query, storeID, since); err != nil {
		return nil, fmt.Errorf("failed to get sales for store %d: %w", storeID, err)
	}
	return rows, nil
}
