package turnover

import (
	"time"

	"github.com/retailpulse/inventory-intel/internal/domain"
)

// Config holds the turnover classification thresholds. The rate thresholds are
// annual turns; the computed period rate is annualized before bucketing so a
// 90-day window and a 365-day window classify the same assortment identically.
type Config struct {
	PeriodDays int
	FastRate   float64
	MediumRate float64
	SlowRate   float64
}

// DefaultConfig returns the standard 90-day window with 12/6/1 annual turns.
func DefaultConfig() Config {
	return Config{
		PeriodDays: 90,
		FastRate:   12,
		MediumRate: 6,
		SlowRate:   1,
	}
}

// Calculator aggregates the sales ledger and the stock snapshot into
// per-product-store turnover metrics.
type Calculator struct {
	cfg Config
}

func NewCalculator(cfg Config) *Calculator {
	if cfg.PeriodDays <= 0 {
		cfg.PeriodDays = 90
	}
	return &Calculator{cfg: cfg}
}

// Calculate aggregates one product's sales at one store over the configured
// period against its current stock balance.
func (c *Calculator) Calculate(storeID int64, article string, sales []domain.SalesRecord, currentStock float64) domain.TurnoverMetric {
	m := domain.TurnoverMetric{
		StoreID:      storeID,
		Article:      article,
		PeriodDays:   c.cfg.PeriodDays,
		CurrentStock: currentStock,
	}

	for _, s := range sales {
		m.TotalSold += s.Quantity
		m.TotalRevenue += s.Revenue
		m.TotalMargin += s.Margin
	}

	m.AvgDailySales = m.TotalSold / float64(c.cfg.PeriodDays)

	if currentStock > 0 {
		m.TurnoverRate = m.TotalSold / currentStock
		m.HasRate = true
	}
	if m.AvgDailySales > 0 {
		m.TurnoverDays = currentStock / m.AvgDailySales
		m.HasDays = true
	}

	m.TurnoverClass = c.classify(m)

	return m
}

// AnnualizedRate scales a period turnover rate to annual turns.
func (c *Calculator) AnnualizedRate(m domain.TurnoverMetric) float64 {
	if !m.HasRate {
		return 0
	}
	return m.TurnoverRate * 365 / float64(m.PeriodDays)
}

func (c *Calculator) classify(m domain.TurnoverMetric) string {
	rate := c.AnnualizedRate(m)
	switch {
	case rate >= c.cfg.FastRate:
		return domain.TurnoverFast
	case rate >= c.cfg.MediumRate:
		return domain.TurnoverMedium
	case rate >= c.cfg.SlowRate:
		return domain.TurnoverSlow
	default:
		return domain.TurnoverVerySlow
	}
}

// MergeByArticle folds per-store metrics into one metric per article, used by
// the planner and the classification passes where recommendations are global.
func MergeByArticle(metrics []domain.TurnoverMetric) map[string]domain.TurnoverMetric {
	merged := make(map[string]domain.TurnoverMetric)
	for _, m := range metrics {
		agg, ok := merged[m.Article]
		if !ok {
			agg = domain.TurnoverMetric{
				Article:    m.Article,
				PeriodDays: m.PeriodDays,
			}
		}
		agg.TotalSold += m.TotalSold
		agg.TotalRevenue += m.TotalRevenue
		agg.TotalMargin += m.TotalMargin
		agg.CurrentStock += m.CurrentStock
		merged[m.Article] = agg
	}

	for article, agg := range merged {
		agg.AvgDailySales = agg.TotalSold / float64(agg.PeriodDays)
		if agg.CurrentStock > 0 {
			agg.TurnoverRate = agg.TotalSold / agg.CurrentStock
			agg.HasRate = true
		}
		if agg.AvgDailySales > 0 {
			agg.TurnoverDays = agg.CurrentStock / agg.AvgDailySales
			agg.HasDays = true
		}
		merged[article] = agg
	}

	return merged
}

// PeriodStart returns the inclusive start of the analysis window ending at asOf.
func (c *Calculator) PeriodStart(asOf time.Time) time.Time {
	return asOf.AddDate(0, 0, -c.cfg.PeriodDays)
}
