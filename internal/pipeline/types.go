package pipeline

import (
	"sort"
	"time"

	"github.com/retailpulse/inventory-intel/internal/domain"
)

// Run statuses for an analysis run.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// AnalysisRun tracks one batch recompute over the assortment. One row per
// analysis date; reruns for the same date reuse the row.
type AnalysisRun struct {
	ID             int64      `json:"id" db:"id"`
	AnalysisDate   time.Time  `json:"analysis_date" db:"analysis_date"`
	Status         string     `json:"status" db:"status"`
	TotalItems     int        `json:"total_items" db:"total_items"`
	ProcessedItems int        `json:"processed_items" db:"processed_items"`
	ErrorMessage   string     `json:"error_message" db:"error_message"`
	StartedAt      time.Time  `json:"started_at" db:"started_at"`
	CompletedAt    *time.Time `json:"completed_at" db:"completed_at"`
}

// Item identifies one unit of work: a product at a store.
type Item struct {
	StoreID int64
	Article string
}

// Snapshot is everything a run reads, loaded up front. The sales ledger and
// balances are treated as read-only from here on.
type Snapshot struct {
	AsOf     time.Time
	Stores   []domain.Store
	Products map[string]domain.Product
	// Sales rows grouped per store then per article.
	Sales map[int64]map[string][]domain.SalesRecord
	// Current balances per store then per article.
	Stock map[int64]map[string]float64
}

// Result is everything a run produces, handed to the persistence layer as one
// unit.
type Result struct {
	Metrics         []domain.TurnoverMetric
	Forecasts       []domain.DemandForecast
	Analytics       []domain.InventoryAnalyticsRecord
	Recommendations []domain.PurchaseRecommendation
	Listings        []domain.WebsitePriorityRecord
	Health          domain.InventoryHealth
	Summary         domain.BatchSummary
}

// Items enumerates every store/article pair that has either sales or stock.
func (s *Snapshot) Items() []Item {
	seen := make(map[Item]bool)
	items := make([]Item, 0)
	add := func(it Item) {
		if !seen[it] {
			seen[it] = true
			items = append(items, it)
		}
	}
	for storeID, byArticle := range s.Sales {
		for article := range byArticle {
			add(Item{StoreID: storeID, Article: article})
		}
	}
	for storeID, byArticle := range s.Stock {
		for article := range byArticle {
			add(Item{StoreID: storeID, Article: article})
		}
	}
	// Map iteration order is random; keep runs deterministic.
	sort.Slice(items, func(i, j int) bool {
		if items[i].StoreID != items[j].StoreID {
			return items[i].StoreID < items[j].StoreID
		}
		return items[i].Article < items[j].Article
	})
	return items
}
