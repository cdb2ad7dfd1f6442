package risk

import (
	"math"
	"sort"

	"github.com/retailpulse/inventory-intel/internal/domain"
)

// Config holds the risk horizons and the health score weights.
type Config struct {
	StockoutHorizonDays float64 // days of cover below which stockout risk accrues
	OverstockDaysLimit  float64 // turnover days beyond which overstock risk accrues

	ServiceLevelWeight  float64
	StockoutRiskWeight  float64
	OverstockRiskWeight float64
}

func DefaultConfig() Config {
	return Config{
		StockoutHorizonDays: 14,
		OverstockDaysLimit:  180,
		ServiceLevelWeight:  0.5,
		StockoutRiskWeight:  0.3,
		OverstockRiskWeight: 0.2,
	}
}

// Assessment is the per-item risk result.
type Assessment struct {
	DaysUntilStockout float64 // +Inf when there are no sales
	StockoutRisk      float64
	OverstockRisk     float64
	ServiceLevel      float64
}

// Analyzer scores stockout and overstock risk per product-store and
// aggregates assortment health.
type Analyzer struct {
	cfg Config
}

func NewAnalyzer(cfg Config) *Analyzer {
	return &Analyzer{cfg: cfg}
}

// Assess scores one turnover metric. A product with no velocity is treated as
// not at risk: zero stock with zero sales yields zero stockout risk, zero
// overstock risk and zero service level.
func (a *Analyzer) Assess(m domain.TurnoverMetric) Assessment {
	var out Assessment

	if m.AvgDailySales > 0 {
		out.DaysUntilStockout = m.CurrentStock / m.AvgDailySales
	} else {
		out.DaysUntilStockout = math.Inf(1)
	}

	if out.DaysUntilStockout < a.cfg.StockoutHorizonDays {
		out.StockoutRisk = 1 - out.DaysUntilStockout/a.cfg.StockoutHorizonDays
	}

	if m.HasDays && m.TurnoverDays > a.cfg.OverstockDaysLimit {
		out.OverstockRisk = math.Min(1, (m.TurnoverDays-a.cfg.OverstockDaysLimit)/a.cfg.OverstockDaysLimit)
	}

	switch {
	case m.CurrentStock <= 0:
		out.ServiceLevel = 0
	case out.StockoutRisk < 0.1:
		out.ServiceLevel = 1.0
	default:
		out.ServiceLevel = 0.8
	}

	return out
}

// Health aggregates per-item assessments into the overall inventory health
// score and bucket.
func (a *Analyzer) Health(assessments []Assessment) domain.InventoryHealth {
	h := domain.InventoryHealth{TotalItems: len(assessments)}
	if len(assessments) == 0 {
		h.HealthBucket = domain.HealthPoor
		return h
	}

	for _, item := range assessments {
		h.AvgServiceLevel += item.ServiceLevel
		h.AvgStockoutRisk += item.StockoutRisk
		h.AvgOverstockRisk += item.OverstockRisk
	}
	n := float64(len(assessments))
	h.AvgServiceLevel /= n
	h.AvgStockoutRisk /= n
	h.AvgOverstockRisk /= n

	h.HealthScore = 100 * (a.cfg.ServiceLevelWeight*h.AvgServiceLevel +
		a.cfg.StockoutRiskWeight*(1-h.AvgStockoutRisk) +
		a.cfg.OverstockRiskWeight*(1-h.AvgOverstockRisk))

	switch {
	case h.HealthScore >= 80:
		h.HealthBucket = domain.HealthExcellent
	case h.HealthScore >= 60:
		h.HealthBucket = domain.HealthGood
	case h.HealthScore >= 40:
		h.HealthBucket = domain.HealthFair
	default:
		h.HealthBucket = domain.HealthPoor
	}

	return h
}

// StockoutForecast lists products expected to run out within horizonDays,
// sorted ascending by days remaining.
func (a *Analyzer) StockoutForecast(metrics []domain.TurnoverMetric, horizonDays float64) []domain.StockoutForecastItem {
	items := make([]domain.StockoutForecastItem, 0)
	for _, m := range metrics {
		if m.AvgDailySales <= 0 {
			continue
		}
		days := m.CurrentStock / m.AvgDailySales
		if days > horizonDays {
			continue
		}
		items = append(items, domain.StockoutForecastItem{
			StoreID:           m.StoreID,
			Article:           m.Article,
			CurrentStock:      m.CurrentStock,
			AvgDailySales:     m.AvgDailySales,
			DaysUntilStockout: days,
		})
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].DaysUntilStockout < items[j].DaysUntilStockout
	})
	return items
}

// OverstockReport lists products whose turnover days meet or exceed the
// threshold, sorted descending.
func (a *Analyzer) OverstockReport(metrics []domain.TurnoverMetric, thresholdDays float64) []domain.OverstockItem {
	items := make([]domain.OverstockItem, 0)
	for _, m := range metrics {
		if !m.HasDays || m.TurnoverDays < thresholdDays {
			continue
		}
		items = append(items, domain.OverstockItem{
			StoreID:      m.StoreID,
			Article:      m.Article,
			CurrentStock: m.CurrentStock,
			TurnoverDays: m.TurnoverDays,
			StockValue:   m.CurrentStock * unitRevenue(m),
		})
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].TurnoverDays > items[j].TurnoverDays
	})
	return items
}

// ClassPair is one article's assigned classes, input of the cross-tab.
type ClassPair struct {
	ABCClass string
	XYZClass string
}

// CrossTab counts articles per ABC x XYZ cell.
func CrossTab(pairs []ClassPair) map[string]map[string]int {
	tab := make(map[string]map[string]int, 3)
	for _, abc := range []string{domain.ABCClassA, domain.ABCClassB, domain.ABCClassC} {
		tab[abc] = make(map[string]int, 3)
	}
	for _, p := range pairs {
		if _, ok := tab[p.ABCClass]; !ok {
			continue
		}
		tab[p.ABCClass][p.XYZClass]++
	}
	return tab
}

// unitRevenue approximates the per-unit selling value from period revenue.
func unitRevenue(m domain.TurnoverMetric) float64 {
	if m.TotalSold <= 0 {
		return 0
	}
	return m.TotalRevenue / m.TotalSold
}
