package transfer

import (
	"testing"
	"time"

	"github.com/retailpulse/inventory-intel/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var asOf = time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

func storeSales(storeID int64, article string, perDay float64, days int) []domain.SalesRecord {
	sales := make([]domain.SalesRecord, 0, days)
	for i := 0; i < days; i++ {
		sales = append(sales, domain.SalesRecord{
			StoreID:  storeID,
			Article:  article,
			SoldAt:   asOf.AddDate(0, 0, -i),
			Quantity: perDay,
		})
	}
	return sales
}

func TestRecommendBasic(t *testing.T) {
	r := NewRecommender(DefaultConfig())

	warehouse := domain.Store{ID: 1, Name: "Main WH", IsWarehouse: true}
	// Store 2 sells 2/day over 90 days and holds almost nothing.
	stores := []StoreDemand{
		{
			Store: domain.Store{ID: 2, Name: "Store A"},
			Sales: storeSales(2, "SKU-1", 2, 90),
			Stock: map[string]float64{"SKU-1": 4},
		},
	}

	recs := r.Recommend(warehouse, map[string]float64{"SKU-1": 500}, stores, nil, asOf)
	require.Len(t, recs, 1)

	rec := recs[0]
	assert.Equal(t, int64(1), rec.FromStoreID)
	assert.Equal(t, int64(2), rec.ToStoreID)
	// 2/day * 14 days cover - 4 on hand = 24.
	assert.InDelta(t, 24, rec.Quantity, 1e-9)
	// 4 units at 2/day is 2 days of cover.
	assert.InDelta(t, 2, rec.DaysOfStock, 1e-9)
	assert.Equal(t, domain.TransferPriorityCritical, rec.Priority)
}

// The sum of recommended quantities per article never exceeds what the
// warehouse actually holds, even when several stores compete for it.
func TestRecommendBoundedByWarehouseStock(t *testing.T) {
	r := NewRecommender(DefaultConfig())

	warehouse := domain.Store{ID: 1, IsWarehouse: true}
	stores := []StoreDemand{
		{
			Store: domain.Store{ID: 2, Name: "Store A"},
			Sales: storeSales(2, "SKU-1", 3, 90),
			Stock: map[string]float64{"SKU-1": 0},
		},
		{
			Store: domain.Store{ID: 3, Name: "Store B"},
			Sales: storeSales(3, "SKU-1", 3, 90),
			Stock: map[string]float64{"SKU-1": 1},
		},
		{
			Store: domain.Store{ID: 4, Name: "Store C"},
			Sales: storeSales(4, "SKU-1", 3, 90),
			Stock: map[string]float64{"SKU-1": 2},
		},
	}

	// Each store needs ~40+ units but the warehouse only has 50.
	recs := r.Recommend(warehouse, map[string]float64{"SKU-1": 50}, stores, nil, asOf)

	var total float64
	for _, rec := range recs {
		assert.GreaterOrEqual(t, rec.Quantity, 0.0)
		total += rec.Quantity
	}
	assert.LessOrEqual(t, total, 50.0)
	// The most urgent store (zero stock) is served first and in full.
	require.NotEmpty(t, recs)
	assert.Equal(t, int64(2), recs[0].ToStoreID)
	assert.InDelta(t, 42, recs[0].Quantity, 1e-9)
}

func TestRecommendSkipsCoveredAndIdleStores(t *testing.T) {
	r := NewRecommender(DefaultConfig())

	warehouse := domain.Store{ID: 1, IsWarehouse: true}
	stores := []StoreDemand{
		{
			// Plenty of cover: 1/day with 60 on hand.
			Store: domain.Store{ID: 2},
			Sales: storeSales(2, "SKU-1", 1, 90),
			Stock: map[string]float64{"SKU-1": 60},
		},
		{
			// No local demand at all.
			Store: domain.Store{ID: 3},
			Sales: nil,
			Stock: map[string]float64{"SKU-1": 0},
		},
	}

	recs := r.Recommend(warehouse, map[string]float64{"SKU-1": 100}, stores, nil, asOf)
	assert.Empty(t, recs)
}

func TestRecommendIgnoresWarehouseDestinations(t *testing.T) {
	r := NewRecommender(DefaultConfig())

	warehouse := domain.Store{ID: 1, IsWarehouse: true}
	stores := []StoreDemand{
		{
			Store: domain.Store{ID: 5, Name: "Second WH", IsWarehouse: true},
			Sales: storeSales(5, "SKU-1", 2, 90),
			Stock: map[string]float64{"SKU-1": 0},
		},
	}

	recs := r.Recommend(warehouse, map[string]float64{"SKU-1": 100}, stores, nil, asOf)
	assert.Empty(t, recs)
}

func TestRecommendPriorityLadder(t *testing.T) {
	// Hot bonus off so scores map straight to the priority buckets.
	r := NewRecommender(Config{PeriodDays: 90, CoverDays: 14, CriticalDays: 7, HighDays: 10, HotTopN: 10})

	warehouse := domain.Store{ID: 1, IsWarehouse: true}
	// 1/day local demand: stock on hand equals days of cover.
	mkStore := func(id int64, stock float64) StoreDemand {
		return StoreDemand{
			Store: domain.Store{ID: id},
			Sales: storeSales(id, "SKU-1", 1, 90),
			Stock: map[string]float64{"SKU-1": stock},
		}
	}
	stores := []StoreDemand{mkStore(2, 5), mkStore(3, 8), mkStore(4, 12)}

	recs := r.Recommend(warehouse, map[string]float64{"SKU-1": 1000}, stores, nil, asOf)
	require.Len(t, recs, 3)

	assert.Equal(t, domain.TransferPriorityCritical, recs[0].Priority)
	assert.InDelta(t, 100, recs[0].PriorityScore, 1e-9)
	assert.Equal(t, domain.TransferPriorityHigh, recs[1].Priority)
	assert.InDelta(t, 75, recs[1].PriorityScore, 1e-9)
	assert.Equal(t, domain.TransferPriorityMedium, recs[2].Priority)
	assert.InDelta(t, 50, recs[2].PriorityScore, 1e-9)
}

func TestRecommendHotBonus(t *testing.T) {
	r := NewRecommender(Config{PeriodDays: 90, CoverDays: 14, CriticalDays: 7, HighDays: 10, HotBonus: 20, HotTopN: 1})

	warehouse := domain.Store{ID: 1, IsWarehouse: true}
	// HOT sells far more than COLD, so with topN=1 only HOT gets the bonus.
	sales := append(storeSales(2, "HOT", 5, 90), storeSales(2, "COLD", 1, 90)...)
	stores := []StoreDemand{
		{
			Store: domain.Store{ID: 2},
			Sales: sales,
			Stock: map[string]float64{"HOT": 5, "COLD": 1},
		},
	}

	recs := r.Recommend(warehouse, map[string]float64{"HOT": 100, "COLD": 100}, stores, nil, asOf)
	require.Len(t, recs, 2)

	byArticle := map[string]domain.TransferRecommendation{}
	for _, rec := range recs {
		byArticle[rec.Article] = rec
	}
	assert.InDelta(t, 120, byArticle["HOT"].PriorityScore, 1e-9)
	assert.InDelta(t, 100, byArticle["COLD"].PriorityScore, 1e-9)
	assert.Contains(t, byArticle["HOT"].Justification, "hot at this store")
}

func TestHotProductsRanking(t *testing.T) {
	// RISING only sold in the recent half; STEADY sold throughout at volume.
	sales := append(storeSales(2, "STEADY", 2, 90), storeSales(2, "RISING", 4, 30)...)

	scores := HotProducts(sales, asOf, 90, 10)
	require.Len(t, scores, 2)

	byArticle := map[string]HotScore{}
	for _, s := range scores {
		byArticle[s.Article] = s
	}

	rising := byArticle["RISING"]
	assert.InDelta(t, 1.0, rising.Trend, 1e-9)
	assert.InDelta(t, 30.0/90.0, rising.Frequency, 1e-9)

	steady := byArticle["STEADY"]
	assert.InDelta(t, 1.0, steady.Volume, 1e-9)
	assert.InDelta(t, 1.0, steady.Frequency, 1e-9)

	for _, s := range scores {
		assert.GreaterOrEqual(t, s.Score, 0.0)
		assert.LessOrEqual(t, s.Score, 1.0)
	}
}

func TestHotProductsTopN(t *testing.T) {
	sales := make([]domain.SalesRecord, 0)
	for _, a := range []string{"A", "B", "C", "D", "E"} {
		sales = append(sales, storeSales(2, a, 1, 10)...)
	}

	scores := HotProducts(sales, asOf, 90, 3)
	assert.Len(t, scores, 3)

	assert.Nil(t, HotProducts(nil, asOf, 90, 3))
	assert.Nil(t, HotProducts(sales, asOf, 90, 0))
}
