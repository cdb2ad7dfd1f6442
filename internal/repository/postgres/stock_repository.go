package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/retailpulse/inventory-intel/internal/domain"
)

type stockRepository struct {
	db *DB
}

func NewStockRepository(db *DB) *stockRepository {
	return &stockRepository{db: db}
}

func (r *stockRepository) GetCurrentStock(ctx context.Context) ([]domain.StockSnapshot, error) {
	query := `
		SELECT store_id, article, quantity, updated_at
		FROM stock_snapshots
		ORDER BY store_id, article
	`

	var rows []domain.StockSnapshot
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to get current stock: %w", err)
	}
	return rows, nil
}

func (r *stockRepository) GetStoreStock(ctx context.Context, storeID int64) (map[string]float64, error) {
	query := `
		SELECT store_id, article, quantity, updated_at
		FROM stock_snapshots
		WHERE store_id = $1
	`

	var rows []domain.StockSnapshot
	if err := r.db.SelectContext(ctx, &rows, query, storeID); err != nil {
		return nil, fmt.Errorf("failed to get stock for store %d: %w", storeID, err)
	}

	out := make(map[string]float64, len(rows))
	for _, s := range rows {
		out[s.Article] = s.Quantity
	}
	return out, nil
}

// AppendHistory records the day's balances. Re-running a day overwrites that
// day's rows instead of duplicating them.
func (r *stockRepository) AppendHistory(ctx context.Context, date time.Time, snapshots []domain.StockSnapshot) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO stock_snapshot_history (store_id, article, snapshot_date, quantity)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (store_id, article, snapshot_date)
			DO UPDATE SET quantity = EXCLUDED.quantity
		`

		stmt, err := tx.PreparexContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare history insert: %w", err)
		}
		defer stmt.Close()

		for _, s := range snapshots {
			if _, err := stmt.ExecContext(ctx, s.StoreID, s.Article, date, s.Quantity); err != nil {
				return fmt.Errorf("failed to insert history row for %s: %w", s.Article, err)
			}
		}
		return nil
	})
}

func (r *stockRepository) GetHistory(ctx context.Context, storeID int64, article string, since time.Time) ([]domain.StockSnapshotHistory, error) {
	query := `
		SELECT store_id, article, snapshot_date, quantity
		FROM stock_snapshot_history
		WHERE store_id = $1 AND article = $2 AND snapshot_date >= $3
		ORDER BY snapshot_date
	`

	var rows []domain.StockSnapshotHistory
	if err := r.db.SelectContext(ctx, &rows, query, storeID, article, since); err != nil {
		return nil, fmt.Errorf("failed to get stock history: %w", err)
	}
	return rows, nil
}
