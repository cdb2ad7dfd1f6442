package risk

import (
	"math"
	"testing"

	"github.com/retailpulse/inventory-intel/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func metric(stock, avgDaily float64) domain.TurnoverMetric {
	m := domain.TurnoverMetric{
		CurrentStock:  stock,
		AvgDailySales: avgDaily,
		PeriodDays:    90,
	}
	if avgDaily > 0 {
		m.TurnoverDays = stock / avgDaily
		m.HasDays = true
	}
	return m
}

func TestStockoutRiskBounds(t *testing.T) {
	a := NewAnalyzer(DefaultConfig())

	// At or beyond the 14-day horizon the risk is exactly zero.
	safe := a.Assess(metric(28, 2)) // 14 days
	assert.Zero(t, safe.StockoutRisk)

	// Risk approaches 1 as cover approaches zero.
	critical := a.Assess(metric(0.2, 2)) // 0.1 days
	assert.Greater(t, critical.StockoutRisk, 0.99)

	empty := a.Assess(metric(0, 2))
	assert.InDelta(t, 1.0, empty.StockoutRisk, 1e-9)

	for _, m := range []domain.TurnoverMetric{metric(5, 1), metric(100, 1), metric(0, 0)} {
		out := a.Assess(m)
		assert.GreaterOrEqual(t, out.StockoutRisk, 0.0)
		assert.LessOrEqual(t, out.StockoutRisk, 1.0)
		assert.GreaterOrEqual(t, out.OverstockRisk, 0.0)
		assert.LessOrEqual(t, out.OverstockRisk, 1.0)
	}
}

func TestOverstockRisk(t *testing.T) {
	a := NewAnalyzer(DefaultConfig())

	assert.Zero(t, a.Assess(metric(180, 1)).OverstockRisk) // exactly 180 days
	half := a.Assess(metric(270, 1))                       // 270 days -> (270-180)/180
	assert.InDelta(t, 0.5, half.OverstockRisk, 1e-9)
	maxed := a.Assess(metric(720, 1)) // capped at 1
	assert.InDelta(t, 1.0, maxed.OverstockRisk, 1e-9)
}

// No velocity is not "at risk": zero stock with zero sales scores zero on
// both risks and zero service level.
func TestNoVelocityEdgeCase(t *testing.T) {
	a := NewAnalyzer(DefaultConfig())

	out := a.Assess(metric(0, 0))
	assert.Zero(t, out.StockoutRisk)
	assert.Zero(t, out.OverstockRisk)
	assert.Zero(t, out.ServiceLevel)
	assert.True(t, math.IsInf(out.DaysUntilStockout, 1))
}

func TestServiceLevels(t *testing.T) {
	a := NewAnalyzer(DefaultConfig())

	assert.InDelta(t, 1.0, a.Assess(metric(100, 1)).ServiceLevel, 1e-9) // low risk
	assert.InDelta(t, 0.8, a.Assess(metric(5, 1)).ServiceLevel, 1e-9)   // stocked but risky
	assert.Zero(t, a.Assess(metric(0, 1)).ServiceLevel)
}

func TestHealthScoreBuckets(t *testing.T) {
	a := NewAnalyzer(DefaultConfig())

	perfect := a.Health([]Assessment{{ServiceLevel: 1}, {ServiceLevel: 1}})
	assert.InDelta(t, 100, perfect.HealthScore, 1e-9)
	assert.Equal(t, domain.HealthExcellent, perfect.HealthBucket)

	poor := a.Health([]Assessment{{StockoutRisk: 1, OverstockRisk: 1}})
	assert.Equal(t, domain.HealthPoor, poor.HealthBucket)

	empty := a.Health(nil)
	assert.Equal(t, domain.HealthPoor, empty.HealthBucket)
	assert.Zero(t, empty.TotalItems)
}

func TestStockoutForecastSortedAscending(t *testing.T) {
	a := NewAnalyzer(DefaultConfig())

	metrics := []domain.TurnoverMetric{
		withArticle(metric(20, 2), "TEN"),
		withArticle(metric(2, 2), "ONE"),
		withArticle(metric(10, 2), "FIVE"),
		withArticle(metric(100, 2), "FAR"),  // beyond horizon
		withArticle(metric(50, 0), "STILL"), // no sales
	}

	items := a.StockoutForecast(metrics, 14)
	require.Len(t, items, 3)
	assert.Equal(t, "ONE", items[0].Article)
	assert.Equal(t, "FIVE", items[1].Article)
	assert.Equal(t, "TEN", items[2].Article)
}

func TestOverstockReportSortedDescending(t *testing.T) {
	a := NewAnalyzer(DefaultConfig())

	metrics := []domain.TurnoverMetric{
		withArticle(metric(200, 1), "OLD"),
		withArticle(metric(400, 1), "OLDER"),
		withArticle(metric(30, 1), "FRESH"),
	}

	items := a.OverstockReport(metrics, 180)
	require.Len(t, items, 2)
	assert.Equal(t, "OLDER", items[0].Article)
	assert.Equal(t, "OLD", items[1].Article)
}

func TestCrossTab(t *testing.T) {
	tab := CrossTab([]ClassPair{
		{ABCClass: "A", XYZClass: "X"},
		{ABCClass: "A", XYZClass: "X"},
		{ABCClass: "A", XYZClass: "Z"},
		{ABCClass: "C", XYZClass: "Z"},
	})

	assert.Equal(t, 2, tab["A"]["X"])
	assert.Equal(t, 1, tab["A"]["Z"])
	assert.Equal(t, 1, tab["C"]["Z"])
	assert.Zero(t, tab["B"]["Y"])
}

func withArticle(m domain.TurnoverMetric, article string) domain.TurnoverMetric {
	m.Article = article
	return m
}
