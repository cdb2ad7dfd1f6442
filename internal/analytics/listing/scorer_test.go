package listing

import (
	"testing"

	"github.com/retailpulse/inventory-intel/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func perfectInput(images []string) Input {
	return Input{
		Product:           domain.Product{Article: "SKU-1", Images: images},
		CurrentStock:      50,
		TurnoverDays:      10,
		HasTurnoverDays:   true,
		AvgMarginPct:      60,
		Revenue:           250000,
		FirstHalfRevenue:  100000,
		SecondHalfRevenue: 150000,
	}
}

// A product with no catalog images never receives a listing score, no matter
// how strong every other signal is.
func TestScoreImageGate(t *testing.T) {
	s := NewScorer(DefaultWeights())

	_, ok := s.Score(perfectInput(nil))
	assert.False(t, ok)

	_, ok = s.Score(perfectInput([]string{}))
	assert.False(t, ok)

	rec, ok := s.Score(perfectInput([]string{"https://cdn.example.com/sku1.jpg"}))
	require.True(t, ok)
	assert.InDelta(t, 1, rec.ImageScore, 1e-9)
}

func TestScoreComponents(t *testing.T) {
	s := NewScorer(DefaultWeights())

	rec, ok := s.Score(Input{
		Product:           domain.Product{Article: "SKU-1", Images: []string{"a.jpg"}},
		CurrentStock:      10,
		TurnoverDays:      365.0 / 2,
		HasTurnoverDays:   true,
		AvgMarginPct:      25,
		Revenue:           25000,
		FirstHalfRevenue:  100,
		SecondHalfRevenue: 100,
	})
	require.True(t, ok)

	assert.InDelta(t, 1, rec.ImageScore, 1e-9)
	assert.InDelta(t, 1, rec.StockScore, 1e-9)
	assert.InDelta(t, 0.5, rec.TurnoverScore, 1e-9)
	assert.InDelta(t, 0.5, rec.MarginScore, 1e-9)
	assert.InDelta(t, 0.5, rec.RevenueScore, 1e-9)
	assert.InDelta(t, 0.5, rec.TrendScore, 1e-9)
	assert.InDelta(t, 0.5, rec.SeasonScore, 1e-9)

	// 100 * (0.40 + 0.30 + 0.15*0.5 + 0.10*0.5 + 0.025*0.5 + 0.025*0.5)
	assert.InDelta(t, 85, rec.PriorityScore, 1e-9)
	assert.Equal(t, domain.ListingPriorityHigh, rec.PriorityClass)
	assert.True(t, rec.IsRecommended)
}

func TestScoreTrend(t *testing.T) {
	tests := []struct {
		name       string
		first, sec float64
		want       float64
	}{
		{"new product", 0, 500, 1.0},
		{"no sales", 0, 0, 0.0},
		{"flat", 100, 100, 0.5},
		{"doubling caps at one", 100, 300, 1.0},
		{"collapse floors at zero", 100, 10, 0.0},
		{"moderate growth", 100, 120, 0.7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, trendScore(tt.first, tt.sec), 1e-9)
		})
	}
}

func TestScoreOutOfStockLowScore(t *testing.T) {
	s := NewScorer(DefaultWeights())

	rec, ok := s.Score(Input{
		Product:      domain.Product{Article: "SKU-1", Images: []string{"a.jpg"}},
		CurrentStock: 0,
	})
	require.True(t, ok)

	assert.Zero(t, rec.StockScore)
	assert.Equal(t, domain.ListingPriorityLow, rec.PriorityClass)
	// No stock and a sub-40 score: not worth listing.
	assert.False(t, rec.IsRecommended)
}

func TestPrioritizedOrdering(t *testing.T) {
	records := []domain.WebsitePriorityRecord{
		{Article: "LOW", PriorityScore: 20},
		{Article: "HIGH", PriorityScore: 90},
		{Article: "MID", PriorityScore: 55},
	}

	out := Prioritized(records)
	require.Len(t, out, 3)
	assert.Equal(t, "HIGH", out[0].Article)
	assert.Equal(t, "MID", out[1].Article)
	assert.Equal(t, "LOW", out[2].Article)
	// Input untouched.
	assert.Equal(t, "LOW", records[0].Article)
}

func TestHiddenGems(t *testing.T) {
	records := []domain.WebsitePriorityRecord{
		{Article: "GEM", MarginScore: 0.8, TrendScore: 0.9, PriorityScore: 45},
		{Article: "ALREADY-HIGH", MarginScore: 0.8, TrendScore: 0.9, PriorityScore: 75},
		{Article: "WEAK-MARGIN", MarginScore: 0.3, TrendScore: 0.9, PriorityScore: 45},
		{Article: "WEAK-TREND", MarginScore: 0.8, TrendScore: 0.2, PriorityScore: 45},
	}

	gems := HiddenGems(records)
	require.Len(t, gems, 1)
	assert.Equal(t, "GEM", gems[0].Article)
}
