package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/retailpulse/inventory-intel/internal/domain"
)

type analyticsRepository struct {
	db *DB
}

func NewAnalyticsRepository(db *DB) *analyticsRepository {
	return &analyticsRepository{db: db}
}

// ReplaceAnalytics deletes the date's rows and inserts the fresh set in one
// transaction. Readers see either the previous complete set or the new one,
// never a mix.
func (r *analyticsRepository) ReplaceAnalytics(ctx context.Context, date time.Time, rows []domain.InventoryAnalyticsRecord) (int, error) {
	var inserted int
	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM inventory_analytics WHERE analysis_date = $1`, date); err != nil {
			return fmt.Errorf("failed to purge analytics for %s: %w", date.Format("2006-01-02"), err)
		}

		query := `
			INSERT INTO inventory_analytics (
				store_id, article, analysis_date, current_stock, avg_daily_sales,
				turnover_days, stockout_risk, overstock_risk, abc_class, xyz_class,
				service_level, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
		`

		stmt, err := tx.PreparexContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare analytics insert: %w", err)
		}
		defer stmt.Close()

		for _, row := range rows {
			_, err := stmt.ExecContext(ctx,
				row.StoreID, row.Article, date, row.CurrentStock, row.AvgDailySales,
				row.TurnoverDays, row.StockoutRisk, row.OverstockRisk, row.ABCClass,
				row.XYZClass, row.ServiceLevel,
			)
			if err != nil {
				return fmt.Errorf("failed to insert analytics row %d/%s: %w", row.StoreID, row.Article, err)
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// UpsertForecasts writes one row per article + horizon + as-of date.
func (r *analyticsRepository) UpsertForecasts(ctx context.Context, rows []domain.DemandForecast) (int, int, error) {
	var created, updated int
	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO demand_forecasts (
				article, as_of_date, horizon_days, forecasted_demand,
				confidence_lower, confidence_upper, trend, seasonality,
				accuracy, seasonal_adjustment, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
			ON CONFLICT (article, as_of_date, horizon_days)
			DO UPDATE SET
				forecasted_demand = EXCLUDED.forecasted_demand,
				confidence_lower = EXCLUDED.confidence_lower,
				confidence_upper = EXCLUDED.confidence_upper,
				trend = EXCLUDED.trend,
				seasonality = EXCLUDED.seasonality,
				accuracy = EXCLUDED.accuracy,
				seasonal_adjustment = EXCLUDED.seasonal_adjustment
			RETURNING (xmax = 0) AS inserted
		`

		stmt, err := tx.PreparexContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare forecast upsert: %w", err)
		}
		defer stmt.Close()

		for _, fc := range rows {
			var wasInsert bool
			err := stmt.QueryRowContext(ctx,
				fc.Article, fc.AsOfDate, fc.HorizonDays, fc.ForecastedDemand,
				fc.Confidence.Lower, fc.Confidence.Upper, fc.Trend, fc.Seasonality,
				fc.Accuracy, fc.SeasonalAdjustment,
			).Scan(&wasInsert)
			if err != nil {
				return fmt.Errorf("failed to upsert forecast for %s: %w", fc.Article, err)
			}
			if wasInsert {
				created++
			} else {
				updated++
			}
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return created, updated, nil
}

// UpsertRecommendations keeps at most one row per article.
func (r *analyticsRepository) UpsertRecommendations(ctx context.Context, recs []domain.PurchaseRecommendation) (int, int, error) {
	var created, updated int
	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO purchase_recommendations (
				article, current_stock, recommended_stock, safety_stock,
				reorder_point, reorder_quantity, days_of_stock, urgency_level,
				recommended_date, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
			ON CONFLICT (article)
			DO UPDATE SET
				current_stock = EXCLUDED.current_stock,
				recommended_stock = EXCLUDED.recommended_stock,
				safety_stock = EXCLUDED.safety_stock,
				reorder_point = EXCLUDED.reorder_point,
				reorder_quantity = EXCLUDED.reorder_quantity,
				days_of_stock = EXCLUDED.days_of_stock,
				urgency_level = EXCLUDED.urgency_level,
				recommended_date = EXCLUDED.recommended_date,
				updated_at = NOW()
			RETURNING (xmax = 0) AS inserted
		`

		stmt, err := tx.PreparexContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare recommendation upsert: %w", err)
		}
		defer stmt.Close()

		for _, rec := range recs {
			var wasInsert bool
			err := stmt.QueryRowContext(ctx,
				rec.Article, rec.CurrentStock, rec.RecommendedStock, rec.SafetyStock,
				rec.ReorderPoint, rec.ReorderQuantity, rec.DaysOfStock,
				rec.UrgencyLevel, rec.RecommendedDate,
			).Scan(&wasInsert)
			if err != nil {
				return fmt.Errorf("failed to upsert recommendation for %s: %w", rec.Article, err)
			}
			if wasInsert {
				created++
			} else {
				updated++
			}
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return created, updated, nil
}

// UpsertListings keeps at most one row per article and, in the same
// transaction, removes rows for articles absent from recs. Image-gated
// products are absent from the input, so a product that lost its images
// stops being served on the next run.
func (r *analyticsRepository) UpsertListings(ctx context.Context, recs []domain.WebsitePriorityRecord) (int, int, error) {
	var created, updated int
	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		survivors := make([]string, 0, len(recs))
		for _, rec := range recs {
			survivors = append(survivors, rec.Article)
		}
		if len(survivors) == 0 {
			if _, err := tx.ExecContext(ctx, `DELETE FROM website_priorities`); err != nil {
				return fmt.Errorf("failed to purge listings: %w", err)
			}
		} else {
			purge := `DELETE FROM website_priorities WHERE article <> ALL($1)`
			if _, err := tx.ExecContext(ctx, purge, pq.Array(survivors)); err != nil {
				return fmt.Errorf("failed to purge delisted articles: %w", err)
			}
		}

		query := `
			INSERT INTO website_priorities (
				article, image_score, stock_score, turnover_score, margin_score,
				revenue_score, trend_score, seasonality_score, priority_score,
				priority_class, is_recommended, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
			ON CONFLICT (article)
			DO UPDATE SET
				image_score = EXCLUDED.image_score,
				stock_score = EXCLUDED.stock_score,
				turnover_score = EXCLUDED.turnover_score,
				margin_score = EXCLUDED.margin_score,
				revenue_score = EXCLUDED.revenue_score,
				trend_score = EXCLUDED.trend_score,
				seasonality_score = EXCLUDED.seasonality_score,
				priority_score = EXCLUDED.priority_score,
				priority_class = EXCLUDED.priority_class,
				is_recommended = EXCLUDED.is_recommended,
				updated_at = NOW()
			RETURNING (xmax = 0) AS inserted
		`

		stmt, err := tx.PreparexContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare listing upsert: %w", err)
		}
		defer stmt.Close()

		for _, rec := range recs {
			var wasInsert bool
			err := stmt.QueryRowContext(ctx,
				rec.Article, rec.ImageScore, rec.StockScore, rec.TurnoverScore,
				rec.MarginScore, rec.RevenueScore, rec.TrendScore, rec.SeasonScore,
				rec.PriorityScore, rec.PriorityClass, rec.IsRecommended,
			).Scan(&wasInsert)
			if err != nil {
				return fmt.Errorf("failed to upsert listing for %s: %w", rec.Article, err)
			}
			if wasInsert {
				created++
			} else {
				updated++
			}
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return created, updated, nil
}

func (r *analyticsRepository) GetAnalytics(ctx context.Context, filter domain.AnalyticsFilter) ([]domain.InventoryAnalyticsRecord, error) {
	query := `
		SELECT id, store_id, article, analysis_date, current_stock,
		       avg_daily_sales, turnover_days, stockout_risk, overstock_risk,
		       abc_class, xyz_class, service_level, created_at
		FROM inventory_analytics
	`

	where, args := buildAnalyticsFilter(filter)
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY store_id, article"

	page, pageSize := filter.Page, filter.PageSize
	if pageSize <= 0 {
		pageSize = 100
	}
	if page < 1 {
		page = 1
	}
	args = append(args, pageSize, (page-1)*pageSize)
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	var rows []domain.InventoryAnalyticsRecord
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get analytics: %w", err)
	}
	return rows, nil
}

func buildAnalyticsFilter(filter domain.AnalyticsFilter) ([]string, []interface{}) {
	var where []string
	var args []interface{}

	next := func() int { return len(args) + 1 }

	if len(filter.StoreIDs) > 0 {
		args = append(args, pq.Array(filter.StoreIDs))
		where = append(where, fmt.Sprintf("store_id = ANY($%d)", len(args)))
	}
	if len(filter.Articles) > 0 {
		args = append(args, pq.Array(filter.Articles))
		where = append(where, fmt.Sprintf("article = ANY($%d)", len(args)))
	}
	if filter.ABCClass != "" {
		where = append(where, fmt.Sprintf("abc_class = $%d", next()))
		args = append(args, filter.ABCClass)
	}
	if filter.XYZClass != "" {
		where = append(where, fmt.Sprintf("xyz_class = $%d", next()))
		args = append(args, filter.XYZClass)
	}
	if filter.AnalysisDate != "" {
		where = append(where, fmt.Sprintf("analysis_date = $%d", next()))
		args = append(args, filter.AnalysisDate)
	}

	return where, args
}

func (r *analyticsRepository) GetRecommendations(ctx context.Context, urgency string, limit int) ([]domain.PurchaseRecommendation, error) {
	query := `
		SELECT id, article, current_stock, recommended_stock, safety_stock,
		       reorder_point, reorder_quantity, days_of_stock, urgency_level,
		       recommended_date, updated_at
		FROM purchase_recommendations
	`
	var args []interface{}
	if urgency != "" {
		query += " WHERE urgency_level = $1"
		args = append(args, urgency)
	}
	query += " ORDER BY days_of_stock ASC"
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	var rows []domain.PurchaseRecommendation
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get recommendations: %w", err)
	}
	return rows, nil
}

func (r *analyticsRepository) GetListings(ctx context.Context, onlyRecommended bool, limit int) ([]domain.WebsitePriorityRecord, error) {
	query := `
		SELECT id, article, image_score, stock_score, turnover_score,
		       margin_score, revenue_score, trend_score, seasonality_score,
		       priority_score, priority_class, is_recommended, updated_at
		FROM website_priorities
	`
	var args []interface{}
	if onlyRecommended {
		query += " WHERE is_recommended = TRUE"
	}
	query += " ORDER BY priority_score DESC"
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	var rows []domain.WebsitePriorityRecord
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get listings: %w", err)
	}
	return rows, nil
}

func (r *analyticsRepository) GetForecasts(ctx context.Context, article string) ([]domain.DemandForecast, error) {
	query := `
		SELECT article, as_of_date, horizon_days, forecasted_demand,
		       confidence_lower, confidence_upper, trend, seasonality,
		       accuracy, seasonal_adjustment
		FROM demand_forecasts
		WHERE article = $1
		ORDER BY as_of_date DESC, horizon_days
	`

	type forecastRow struct {
		Article            string    `db:"article"`
		AsOfDate           time.Time `db:"as_of_date"`
		HorizonDays        int       `db:"horizon_days"`
		ForecastedDemand   float64   `db:"forecasted_demand"`
		ConfidenceLower    float64   `db:"confidence_lower"`
		ConfidenceUpper    float64   `db:"confidence_upper"`
		Trend              float64   `db:"trend"`
		Seasonality        string    `db:"seasonality"`
		Accuracy           float64   `db:"accuracy"`
		SeasonalAdjustment float64   `db:"seasonal_adjustment"`
	}

	var rows []forecastRow
	if err := r.db.SelectContext(ctx, &rows, query, article); err != nil {
		return nil, fmt.Errorf("failed to get forecasts for %s: %w", article, err)
	}

	out := make([]domain.DemandForecast, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.DemandForecast{
			Article:          row.Article,
			AsOfDate:         row.AsOfDate,
			HorizonDays:      row.HorizonDays,
			ForecastedDemand: row.ForecastedDemand,
			Confidence: domain.ConfidenceInterval{
				Lower: row.ConfidenceLower,
				Upper: row.ConfidenceUpper,
			},
			Trend:              row.Trend,
			Seasonality:        row.Seasonality,
			Accuracy:           row.Accuracy,
			SeasonalAdjustment: row.SeasonalAdjustment,
		})
	}
	return out, nil
}
