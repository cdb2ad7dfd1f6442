package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailpulse/inventory-intel/internal/analytics/classify"
	"github.com/retailpulse/inventory-intel/internal/analytics/forecast"
	"github.com/retailpulse/inventory-intel/internal/analytics/listing"
	"github.com/retailpulse/inventory-intel/internal/analytics/replenish"
	"github.com/retailpulse/inventory-intel/internal/analytics/risk"
	"github.com/retailpulse/inventory-intel/internal/analytics/turnover"
	"github.com/retailpulse/inventory-intel/internal/domain"
)

var asOf = time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

func testConfig() OrchestratorConfig {
	return OrchestratorConfig{
		Turnover:    turnover.DefaultConfig(),
		Classify:    classify.DefaultConfig(),
		Risk:        risk.DefaultConfig(),
		Replenish:   replenish.DefaultConfig(),
		Listing:     listing.DefaultWeights(),
		Blend:       forecast.DefaultBlendWeights(),
		HistoryDays: 90,
		HorizonDays: 30,
		Workers:     4,
	}
}

func dailySales(storeID int64, article string, perDay, price float64, days int) []domain.SalesRecord {
	rows := make([]domain.SalesRecord, 0, days)
	for i := 0; i < days; i++ {
		rows = append(rows, domain.SalesRecord{
			StoreID:  storeID,
			Article:  article,
			SoldAt:   asOf.AddDate(0, 0, -i),
			Quantity: perDay,
			Revenue:  perDay * price,
			Margin:   perDay * price * 0.4,
		})
	}
	return rows
}

func testSnapshot() *Snapshot {
	return &Snapshot{
		AsOf: asOf,
		Stores: []domain.Store{
			{ID: 1, Name: "Main WH", IsWarehouse: true},
			{ID: 2, Name: "Store A"},
		},
		Products: map[string]domain.Product{
			"TOP":    {Article: "TOP", Name: "Top seller", Images: []string{"top.jpg"}},
			"MID":    {Article: "MID", Name: "Mid seller", Images: []string{"mid.jpg"}},
			"NOIMG":  {Article: "NOIMG", Name: "No photos"},
			"SPARSE": {Article: "SPARSE", Name: "Rare mover", Images: []string{"s.jpg"}},
		},
		Sales: map[int64]map[string][]domain.SalesRecord{
			2: {
				"TOP":   dailySales(2, "TOP", 5, 100, 90),
				"MID":   dailySales(2, "MID", 2, 50, 90),
				"NOIMG": dailySales(2, "NOIMG", 1, 30, 90),
				// Three sales days: under the forecast minimum.
				"SPARSE": dailySales(2, "SPARSE", 1, 20, 3),
			},
		},
		Stock: map[int64]map[string]float64{
			1: {"TOP": 200, "MID": 100},
			2: {"TOP": 30, "MID": 20, "NOIMG": 10, "SPARSE": 5},
		},
	}
}

func TestRunProducesAllOutputs(t *testing.T) {
	o := NewOrchestrator(testConfig(), zerolog.Nop())

	res, err := o.Run(context.Background(), testSnapshot())
	require.NoError(t, err)

	// One metric per store/article pair with sales or stock.
	assert.Len(t, res.Metrics, 6)

	// Forecasts for the three articles with enough history; SPARSE skipped.
	assert.Len(t, res.Forecasts, 3)
	assert.Equal(t, 1, res.Summary.Skipped)
	assert.Zero(t, res.Summary.Errors)

	// Every analytics row carries both classes.
	assert.Len(t, res.Analytics, 6)
	for _, rec := range res.Analytics {
		assert.True(t, domain.ValidABCClass(rec.ABCClass), "abc for %s", rec.Article)
		assert.True(t, domain.ValidXYZClass(rec.XYZClass), "xyz for %s", rec.Article)
		assert.Equal(t, asOf, rec.AnalysisDate)
	}

	// One recommendation per article.
	assert.Len(t, res.Recommendations, 4)

	// NOIMG has no catalog image and never appears in the listing output.
	for _, l := range res.Listings {
		assert.NotEqual(t, "NOIMG", l.Article)
	}
	assert.Len(t, res.Listings, 3)

	assert.Equal(t, 6, res.Health.TotalItems)
	assert.NotEmpty(t, res.Health.HealthBucket)
}

// Two runs over the same snapshot yield identical output slices.
func TestRunDeterministic(t *testing.T) {
	o := NewOrchestrator(testConfig(), zerolog.Nop())

	first, err := o.Run(context.Background(), testSnapshot())
	require.NoError(t, err)
	second, err := o.Run(context.Background(), testSnapshot())
	require.NoError(t, err)

	assert.Equal(t, first.Metrics, second.Metrics)
	assert.Equal(t, first.Analytics, second.Analytics)
	assert.Equal(t, first.Recommendations, second.Recommendations)
	assert.Equal(t, first.Listings, second.Listings)
	assert.Equal(t, first.Health, second.Health)
}

func TestRunHonorsDeadline(t *testing.T) {
	o := NewOrchestrator(testConfig(), zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := o.Run(ctx, testSnapshot())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSnapshotItemsSortedAndDeduplicated(t *testing.T) {
	snap := testSnapshot()
	items := snap.Items()

	require.Len(t, items, 6)
	for i := 1; i < len(items); i++ {
		prev, cur := items[i-1], items[i]
		less := prev.StoreID < cur.StoreID ||
			(prev.StoreID == cur.StoreID && prev.Article < cur.Article)
		assert.True(t, less, "items out of order at %d", i)
	}
}

func TestPoolContinuesPastFailures(t *testing.T) {
	pool := NewPool(3, zerolog.Nop())

	items := []Item{
		{StoreID: 1, Article: "A"},
		{StoreID: 1, Article: "BAD"},
		{StoreID: 1, Article: "C"},
		{StoreID: 2, Article: "BAD"},
	}

	processed, failed, err := pool.Run(context.Background(), items, func(ctx context.Context, item Item) error {
		if item.Article == "BAD" {
			return errors.New("boom")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, processed)
	assert.Equal(t, 2, failed)
}
