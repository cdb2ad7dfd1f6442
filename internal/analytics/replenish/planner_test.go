package replenish

import (
	"testing"
	"time"

	"github.com/retailpulse/inventory-intel/internal/analytics/turnover"
	"github.com/retailpulse/inventory-intel/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

// A weekly pattern of [0,0,1,0,2,1,0] repeated over twelve full weeks with 5
// on hand and a 14-day lead time: avg daily sales 4/7, safety stock ~3.21,
// optimal stock and reorder point 12, reorder quantity 7, critical urgency.
func TestPlanWeeklyPattern(t *testing.T) {
	pattern := []float64{0, 0, 1, 0, 2, 1, 0}
	periodDays := 84

	sales := make([]domain.SalesRecord, 0)
	start := now.AddDate(0, 0, -(periodDays - 1))
	for i := 0; i < periodDays; i++ {
		q := pattern[i%len(pattern)]
		if q == 0 {
			continue
		}
		sales = append(sales, domain.SalesRecord{Article: "SKU-1", SoldAt: start.AddDate(0, 0, i), Quantity: q})
	}

	calc := turnover.NewCalculator(turnover.Config{PeriodDays: periodDays, FastRate: 12, MediumRate: 6, SlowRate: 1})
	m := calc.Calculate(1, "SKU-1", sales, 5)
	require.InDelta(t, 4.0/7.0, m.AvgDailySales, 1e-9)

	p := NewPlanner(Config{LeadTimeDays: 14, SafetyStockFactor: 1.5, DeadStockDays: 180})
	rec := p.Plan(m, now)

	assert.InDelta(t, 3.21, rec.SafetyStock, 0.01)
	assert.InDelta(t, 12, rec.RecommendedStock, 1e-9)
	assert.InDelta(t, 12, rec.ReorderPoint, 1e-9)
	assert.InDelta(t, 7, rec.ReorderQuantity, 1e-9)
	assert.InDelta(t, 8.75, rec.DaysOfStock, 1e-9)
	assert.Equal(t, domain.UrgencyCritical, rec.UrgencyLevel)
	require.NotNil(t, rec.RecommendedDate)
	assert.Equal(t, now, *rec.RecommendedDate)
}

// Identical inputs always produce the identical recommendation.
func TestPlanIdempotent(t *testing.T) {
	p := NewPlanner(DefaultConfig())
	m := domain.TurnoverMetric{Article: "SKU-1", AvgDailySales: 1.5, CurrentStock: 10}

	first := p.Plan(m, now)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, p.Plan(m, now))
	}
}

func TestPlanNoReorderWhenStocked(t *testing.T) {
	p := NewPlanner(DefaultConfig())

	// 100 on hand against ~1/day: far above the reorder point.
	rec := p.Plan(domain.TurnoverMetric{Article: "SKU-1", AvgDailySales: 1, CurrentStock: 100}, now)

	assert.Zero(t, rec.ReorderQuantity)
	assert.Nil(t, rec.RecommendedDate)
	assert.Equal(t, domain.UrgencyLow, rec.UrgencyLevel)
}

func TestPlanUrgencyLadder(t *testing.T) {
	p := NewPlanner(Config{LeadTimeDays: 10, SafetyStockFactor: 1.5})

	tests := []struct {
		stock float64
		want  string
	}{
		{5, domain.UrgencyCritical}, // 5 days < lead
		{12, domain.UrgencyHigh},    // < 1.5x lead
		{18, domain.UrgencyMedium},  // < 2x lead
		{40, domain.UrgencyLow},
	}
	for _, tt := range tests {
		rec := p.Plan(domain.TurnoverMetric{Article: "SKU", AvgDailySales: 1, CurrentStock: tt.stock}, now)
		assert.Equal(t, tt.want, rec.UrgencyLevel, "stock=%v", tt.stock)
	}
}

func TestPlanRecommendedDates(t *testing.T) {
	p := NewPlanner(Config{LeadTimeDays: 10, SafetyStockFactor: 1.5})

	critical := p.Plan(domain.TurnoverMetric{Article: "SKU", AvgDailySales: 1, CurrentStock: 5}, now)
	require.NotNil(t, critical.RecommendedDate)
	assert.Equal(t, now, *critical.RecommendedDate)

	high := p.Plan(domain.TurnoverMetric{Article: "SKU", AvgDailySales: 1, CurrentStock: 12}, now)
	require.NotNil(t, high.RecommendedDate)
	assert.Equal(t, now.AddDate(0, 0, 1), *high.RecommendedDate)
}

func TestPlanNoSalesSentinel(t *testing.T) {
	p := NewPlanner(DefaultConfig())

	rec := p.Plan(domain.TurnoverMetric{Article: "SKU", AvgDailySales: 0, CurrentStock: 3}, now)
	assert.InDelta(t, 9999, rec.DaysOfStock, 1e-9)
	assert.Equal(t, domain.UrgencyLow, rec.UrgencyLevel)
	// Optimal stock floors at 1; with 3 on hand nothing is reordered.
	assert.Zero(t, rec.ReorderQuantity)
}

func TestDeadStockReport(t *testing.T) {
	p := NewPlanner(DefaultConfig())

	metrics := []domain.TurnoverMetric{
		{Article: "DEAD", CurrentStock: 50, TurnoverDays: 400, HasDays: true, TotalSold: 5, TotalRevenue: 100},
		{Article: "DEADER", CurrentStock: 10, TurnoverDays: 900, HasDays: true, TotalSold: 1, TotalRevenue: 30},
		{Article: "ALIVE", CurrentStock: 10, TurnoverDays: 20, HasDays: true},
		{Article: "EMPTY", CurrentStock: 0, TurnoverDays: 500, HasDays: true},
	}

	items := p.DeadStock(metrics)
	require.Len(t, items, 2)
	assert.Equal(t, "DEADER", items[0].Article)
	assert.Equal(t, "DEAD", items[1].Article)
	assert.InDelta(t, 50*20, items[1].StockValue, 1e-9)
}
