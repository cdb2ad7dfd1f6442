package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailpulse/inventory-intel/internal/domain"
)

func TestAnalyticsFilterHashStable(t *testing.T) {
	a := domain.AnalyticsFilter{StoreIDs: []int64{3, 1, 2}, Articles: []string{"B", "a"}, ABCClass: "A"}
	b := domain.AnalyticsFilter{StoreIDs: []int64{1, 2, 3}, Articles: []string{"A", "b"}, ABCClass: "a"}

	// Order and case of filter values never change the key.
	assert.Equal(t, analyticsFilterHash(a), analyticsFilterHash(b))
}

func TestAnalyticsFilterHashDistinguishes(t *testing.T) {
	base := domain.AnalyticsFilter{ABCClass: "A"}
	other := domain.AnalyticsFilter{ABCClass: "A", XYZClass: "X"}
	paged := domain.AnalyticsFilter{ABCClass: "A", Page: 2, PageSize: 50}

	assert.NotEqual(t, analyticsFilterHash(base), analyticsFilterHash(other))
	assert.NotEqual(t, analyticsFilterHash(base), analyticsFilterHash(paged))
	assert.Equal(t, "default", analyticsFilterHash(domain.AnalyticsFilter{}))
}

func TestNoopCacheNeverHits(t *testing.T) {
	c := NewNoopAnalyticsCache()
	ctx := context.Background()

	rows, hit, err := c.GetAnalytics(ctx, domain.AnalyticsFilter{})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Nil(t, rows)

	require.NoError(t, c.SetHealth(ctx, domain.InventoryHealth{HealthScore: 90}))
	health, hit, err := c.GetHealth(ctx)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Nil(t, health)

	assert.NoError(t, c.InvalidateAll(ctx))
}
