package domain

import "time"

// Store represents a selling location. Warehouses carry IsWarehouse = true and
// act as transfer sources only.
type Store struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	IsWarehouse bool      `json:"is_warehouse" db:"is_warehouse"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Product is the catalog view of an article used for enrichment and the
// listing image gate.
type Product struct {
	ID       int64    `json:"id" db:"id"`
	Article  string   `json:"article" db:"article"`
	Name     string   `json:"name" db:"name"`
	Category string   `json:"category" db:"category"`
	Brand    string   `json:"brand" db:"brand"`
	Images   []string `json:"images" db:"-"`
}

// SalesRecord is a single row from the append-only sales ledger. It is
// read-only for the analytics engine.
type SalesRecord struct {
	ID                 int64     `json:"id" db:"id"`
	StoreID            int64     `json:"store_id" db:"store_id"`
	Article            string    `json:"article" db:"article"`
	SoldAt             time.Time `json:"sold_at" db:"sold_at"`
	Quantity           float64   `json:"quantity" db:"quantity"`
	Revenue            float64   `json:"revenue" db:"revenue"`
	RevenueWithoutDisc float64   `json:"revenue_without_discount" db:"revenue_without_discount"`
	Cost               float64   `json:"cost" db:"cost"`
	Margin             float64   `json:"margin" db:"margin"`
	Channel            string    `json:"channel" db:"channel"`
}

// StockSnapshot is the current available balance for a product at a store.
// A single live balance, not a history; see StockSnapshotHistory.
type StockSnapshot struct {
	StoreID   int64     `json:"store_id" db:"store_id"`
	Article   string    `json:"article" db:"article"`
	Quantity  float64   `json:"quantity" db:"quantity"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// StockSnapshotHistory is an append-only daily record of balances so turnover
// and averages can derive from real historical curves instead of the live
// balance alone.
type StockSnapshotHistory struct {
	StoreID      int64     `json:"store_id" db:"store_id"`
	Article      string    `json:"article" db:"article"`
	SnapshotDate time.Time `json:"snapshot_date" db:"snapshot_date"`
	Quantity     float64   `json:"quantity" db:"quantity"`
}

// TurnoverMetric aggregates sales and stock for one product at one store over
// the analysis period. Recomputed every run, never persisted as-is.
type TurnoverMetric struct {
	StoreID       int64   `json:"store_id"`
	Article       string  `json:"article"`
	PeriodDays    int     `json:"period_days"`
	TotalSold     float64 `json:"total_sold"`
	TotalRevenue  float64 `json:"total_revenue"`
	TotalMargin   float64 `json:"total_margin"`
	CurrentStock  float64 `json:"current_stock"`
	AvgDailySales float64 `json:"avg_daily_sales"`
	TurnoverRate  float64 `json:"turnover_rate"` // total_sold / current_stock, 0 when stock = 0
	TurnoverDays  float64 `json:"turnover_days"` // current_stock / avg_daily_sales, 0 when no sales
	TurnoverClass string  `json:"turnover_class"`
	HasRate       bool    `json:"has_rate"` // false when stock = 0
	HasDays       bool    `json:"has_days"` // false when sales = 0
}

// ConfidenceInterval bounds a forecast. Lower is floored at zero.
type ConfidenceInterval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// DemandForecast is the per-product demand forecast for a horizon, keyed by
// article + horizon + as-of date.
type DemandForecast struct {
	Article            string             `json:"article" db:"article"`
	AsOfDate           time.Time          `json:"as_of_date" db:"as_of_date"`
	HorizonDays        int                `json:"horizon_days" db:"horizon_days"`
	ForecastedDemand   float64            `json:"forecasted_demand" db:"forecasted_demand"`
	Confidence         ConfidenceInterval `json:"confidence_interval"`
	Trend              float64            `json:"trend" db:"trend"`
	Seasonality        string             `json:"seasonality" db:"seasonality"`
	Accuracy           float64            `json:"accuracy" db:"accuracy"`
	SeasonalAdjustment float64            `json:"seasonal_adjustment" db:"seasonal_adjustment"`
}

// MonthlyForecast is one bucket of the month-based seasonal forecast.
type MonthlyForecast struct {
	Month            time.Month `json:"month"`
	HistoricalAvg    float64    `json:"historical_avg"`
	ForecastedDemand float64    `json:"forecasted_demand"`
	SeasonalIndex    float64    `json:"seasonal_index"`
}

// WeeklyTrendPoint is one weekly bucket of the weekly trend report.
type WeeklyTrendPoint struct {
	WeekStart     time.Time `json:"week_start"`
	TotalSold     float64   `json:"total_sold"`
	PercentChange float64   `json:"percent_change"` // vs previous week, 0 for the first bucket
}

// InventoryAnalyticsRecord is the upserted analytics row, one per
// product + store + analysis date. Stale same-date rows are purged before each
// recompute inside a single transaction.
type InventoryAnalyticsRecord struct {
	ID            int64     `json:"id" db:"id"`
	StoreID       int64     `json:"store_id" db:"store_id"`
	Article       string    `json:"article" db:"article"`
	AnalysisDate  time.Time `json:"analysis_date" db:"analysis_date"`
	CurrentStock  float64   `json:"current_stock" db:"current_stock"`
	AvgDailySales float64   `json:"avg_daily_sales" db:"avg_daily_sales"`
	TurnoverDays  float64   `json:"turnover_days" db:"turnover_days"`
	StockoutRisk  float64   `json:"stockout_risk" db:"stockout_risk"`
	OverstockRisk float64   `json:"overstock_risk" db:"overstock_risk"`
	ABCClass      string    `json:"abc_class" db:"abc_class"`
	XYZClass      string    `json:"xyz_class" db:"xyz_class"`
	ServiceLevel  float64   `json:"service_level" db:"service_level"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// PurchaseRecommendation is the replenishment advice for one article. At most
// one row per article; repeated runs overwrite in place.
type PurchaseRecommendation struct {
	ID               int64      `json:"id" db:"id"`
	Article          string     `json:"article" db:"article"`
	CurrentStock     float64    `json:"current_stock" db:"current_stock"`
	RecommendedStock float64    `json:"recommended_stock" db:"recommended_stock"`
	SafetyStock      float64    `json:"safety_stock" db:"safety_stock"`
	ReorderPoint     float64    `json:"reorder_point" db:"reorder_point"`
	ReorderQuantity  float64    `json:"reorder_quantity" db:"reorder_quantity"`
	DaysOfStock      float64    `json:"days_of_stock" db:"days_of_stock"`
	UrgencyLevel     string     `json:"urgency_level" db:"urgency_level"`
	RecommendedDate  *time.Time `json:"recommended_date" db:"recommended_date"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
}

// WebsitePriorityRecord holds the listing eligibility score for one product.
type WebsitePriorityRecord struct {
	ID            int64     `json:"id" db:"id"`
	Article       string    `json:"article" db:"article"`
	ImageScore    float64   `json:"image_score" db:"image_score"`
	StockScore    float64   `json:"stock_score" db:"stock_score"`
	TurnoverScore float64   `json:"turnover_score" db:"turnover_score"`
	MarginScore   float64   `json:"margin_score" db:"margin_score"`
	RevenueScore  float64   `json:"revenue_score" db:"revenue_score"`
	TrendScore    float64   `json:"trend_score" db:"trend_score"`
	SeasonScore   float64   `json:"seasonality_score" db:"seasonality_score"`
	PriorityScore float64   `json:"priority_score" db:"priority_score"`
	PriorityClass string    `json:"priority_class" db:"priority_class"`
	IsRecommended bool      `json:"is_recommended" db:"is_recommended"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// TransferRecommendation suggests moving stock from the warehouse to a store.
// Ephemeral: computed on demand and never persisted.
type TransferRecommendation struct {
	Article       string  `json:"article"`
	ProductName   string  `json:"product_name"`
	FromStoreID   int64   `json:"from_store_id"`
	ToStoreID     int64   `json:"to_store_id"`
	ToStoreName   string  `json:"to_store_name"`
	Quantity      float64 `json:"quantity"`
	Priority      string  `json:"priority"`
	PriorityScore float64 `json:"priority_score"`
	DaysOfStock   float64 `json:"days_of_stock"`
	Justification string  `json:"justification"`
}

// StockoutForecastItem is one row of the stockout forecast report.
type StockoutForecastItem struct {
	StoreID           int64   `json:"store_id"`
	Article           string  `json:"article"`
	CurrentStock      float64 `json:"current_stock"`
	AvgDailySales     float64 `json:"avg_daily_sales"`
	DaysUntilStockout float64 `json:"days_until_stockout"`
}

// OverstockItem is one row of the overstock / dead-stock reports.
type OverstockItem struct {
	StoreID      int64   `json:"store_id"`
	Article      string  `json:"article"`
	CurrentStock float64 `json:"current_stock"`
	TurnoverDays float64 `json:"turnover_days"`
	StockValue   float64 `json:"stock_value"`
}

// InventoryHealth is the aggregate health summary for a run.
type InventoryHealth struct {
	AvgServiceLevel  float64 `json:"avg_service_level"`
	AvgStockoutRisk  float64 `json:"avg_stockout_risk"`
	AvgOverstockRisk float64 `json:"avg_overstock_risk"`
	HealthScore      float64 `json:"health_score"`
	HealthBucket     string  `json:"health_bucket"`
	TotalItems       int     `json:"total_items"`
}

// StorePerformance summarizes sales velocity for one store in the
// store-performance report.
type StorePerformance struct {
	StoreID      int64   `json:"store_id"`
	StoreName    string  `json:"store_name"`
	TotalSold    float64 `json:"total_sold"`
	TotalRevenue float64 `json:"total_revenue"`
	ActiveSKUs   int     `json:"active_skus"`
	HotSKUs      int     `json:"hot_skus"`
}

// BatchSummary aggregates per-item outcomes of one analysis run. Per-item
// failures never abort the batch; only an unreadable source feed is fatal.
type BatchSummary struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Errors  int `json:"errors"`
}

// AnalyticsFilter narrows read queries over persisted analytics rows.
type AnalyticsFilter struct {
	StoreIDs     []int64  `json:"store_ids"`
	Articles     []string `json:"articles"`
	ABCClass     string   `json:"abc_class"`
	XYZClass     string   `json:"xyz_class"`
	AnalysisDate string   `json:"analysis_date"`
	Page         int      `json:"page"`
	PageSize     int      `json:"page_size"`
}
