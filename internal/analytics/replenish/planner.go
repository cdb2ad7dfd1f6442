package replenish

import (
	"math"
	"sort"
	"time"

	"github.com/retailpulse/inventory-intel/internal/domain"
)

// Config holds the replenishment policy.
type Config struct {
	LeadTimeDays      int
	SafetyStockFactor float64 // multiplier on avg_daily_sales * sqrt(lead_time)
	DeadStockDays     float64 // turnover days at or beyond which stock counts as dead
}

func DefaultConfig() Config {
	return Config{
		LeadTimeDays:      14,
		SafetyStockFactor: 1.5,
		DeadStockDays:     180,
	}
}

// daysOfStockSentinel stands in for "effectively infinite cover" when a
// product has stock but no sales.
const daysOfStockSentinel = 9999

// Planner derives purchase recommendations from per-article turnover metrics.
// The same inputs always yield the same recommendation.
type Planner struct {
	cfg Config
}

func NewPlanner(cfg Config) *Planner {
	if cfg.LeadTimeDays <= 0 {
		cfg.LeadTimeDays = 14
	}
	if cfg.SafetyStockFactor <= 0 {
		cfg.SafetyStockFactor = 1.5
	}
	return &Planner{cfg: cfg}
}

// Plan computes the recommendation for one article. now fixes the recommended
// order date so reruns within a batch stay deterministic.
func (p *Planner) Plan(m domain.TurnoverMetric, now time.Time) domain.PurchaseRecommendation {
	lead := float64(p.cfg.LeadTimeDays)

	safetyStock := m.AvgDailySales * p.cfg.SafetyStockFactor * math.Sqrt(lead)
	optimalStock := math.Ceil(math.Max(1, m.AvgDailySales*lead+safetyStock))

	// Reorder point deliberately equals the optimal stock level; demand during
	// lead time plus safety stock is both the trigger and the target.
	reorderPoint := optimalStock

	var reorderQty float64
	if m.CurrentStock < reorderPoint {
		reorderQty = math.Max(1, optimalStock-m.CurrentStock)
	}

	daysOfStock := float64(daysOfStockSentinel)
	if m.AvgDailySales > 0 {
		daysOfStock = m.CurrentStock / m.AvgDailySales
	}

	urgency := p.urgency(daysOfStock)

	rec := domain.PurchaseRecommendation{
		Article:          m.Article,
		CurrentStock:     m.CurrentStock,
		RecommendedStock: optimalStock,
		SafetyStock:      safetyStock,
		ReorderPoint:     reorderPoint,
		ReorderQuantity:  reorderQty,
		DaysOfStock:      daysOfStock,
		UrgencyLevel:     urgency,
	}

	if reorderQty > 0 {
		when := recommendedDate(urgency, now)
		rec.RecommendedDate = &when
	}

	return rec
}

func (p *Planner) urgency(daysOfStock float64) string {
	lead := float64(p.cfg.LeadTimeDays)
	switch {
	case daysOfStock < lead:
		return domain.UrgencyCritical
	case daysOfStock < 1.5*lead:
		return domain.UrgencyHigh
	case daysOfStock < 2*lead:
		return domain.UrgencyMedium
	default:
		return domain.UrgencyLow
	}
}

func recommendedDate(urgency string, now time.Time) time.Time {
	switch urgency {
	case domain.UrgencyCritical:
		return now
	case domain.UrgencyHigh:
		return now.AddDate(0, 0, 1)
	default:
		return now.AddDate(0, 0, 3)
	}
}

// DeadStock reports articles holding stock that has stopped moving:
// turnover at or beyond the dead-stock threshold with units still on hand,
// sorted by turnover days descending.
func (p *Planner) DeadStock(metrics []domain.TurnoverMetric) []domain.OverstockItem {
	items := make([]domain.OverstockItem, 0)
	for _, m := range metrics {
		if m.CurrentStock <= 0 || !m.HasDays || m.TurnoverDays < p.cfg.DeadStockDays {
			continue
		}
		var unitValue float64
		if m.TotalSold > 0 {
			unitValue = m.TotalRevenue / m.TotalSold
		}
		items = append(items, domain.OverstockItem{
			StoreID:      m.StoreID,
			Article:      m.Article,
			CurrentStock: m.CurrentStock,
			TurnoverDays: m.TurnoverDays,
			StockValue:   m.CurrentStock * unitValue,
		})
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].TurnoverDays > items[j].TurnoverDays
	})
	return items
}
