package repository

import (
	"context"
	"time"

	"github.com/retailpulse/inventory-intel/internal/domain"
	"github.com/retailpulse/inventory-intel/internal/pipeline"
)

// SalesRepository reads the append-only sales ledger. The analytics engine
// never writes sales rows.
type SalesRepository interface {
	GetSalesSince(ctx context.Context, since time.Time) ([]domain.SalesRecord, error)
	GetStoreSalesSince(ctx context.Context, storeID int64, since time.Time) ([]domain.SalesRecord, error)
}

// StockRepository covers current balances and the append-only daily history.
type StockRepository interface {
	GetCurrentStock(ctx context.Context) ([]domain.StockSnapshot, error)
	GetStoreStock(ctx context.Context, storeID int64) (map[string]float64, error)
	AppendHistory(ctx context.Context, date time.Time, snapshots []domain.StockSnapshot) error
	GetHistory(ctx context.Context, storeID int64, article string, since time.Time) ([]domain.StockSnapshotHistory, error)
}

// CatalogRepository reads stores and the product catalog.
type CatalogRepository interface {
	GetStores(ctx context.Context) ([]domain.Store, error)
	GetProducts(ctx context.Context) (map[string]domain.Product, error)
}

// AnalyticsRepository persists run outputs and serves filtered reads.
type AnalyticsRepository interface {
	// ReplaceAnalytics purges the date's rows and inserts the new set inside
	// one transaction, so readers never observe a partial recompute.
	ReplaceAnalytics(ctx context.Context, date time.Time, rows []domain.InventoryAnalyticsRecord) (int, error)
	UpsertForecasts(ctx context.Context, rows []domain.DemandForecast) (created, updated int, err error)
	UpsertRecommendations(ctx context.Context, recs []domain.PurchaseRecommendation) (created, updated int, err error)
	// UpsertListings also removes rows for articles absent from recs, in the
	// same transaction; the stored set always mirrors the latest run.
	UpsertListings(ctx context.Context, recs []domain.WebsitePriorityRecord) (created, updated int, err error)

	GetAnalytics(ctx context.Context, filter domain.AnalyticsFilter) ([]domain.InventoryAnalyticsRecord, error)
	GetRecommendations(ctx context.Context, urgency string, limit int) ([]domain.PurchaseRecommendation, error)
	GetListings(ctx context.Context, onlyRecommended bool, limit int) ([]domain.WebsitePriorityRecord, error)
	GetForecasts(ctx context.Context, article string) ([]domain.DemandForecast, error)
}

// RunRepository tracks analysis runs, one row per analysis date.
type RunRepository interface {
	GetOrCreateRun(ctx context.Context, date time.Time, totalItems int) (*pipeline.AnalysisRun, error)
	UpdateRun(ctx context.Context, run *pipeline.AnalysisRun) error
	GetLatestRun(ctx context.Context) (*pipeline.AnalysisRun, error)
}
