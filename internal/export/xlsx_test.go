package export

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/retailpulse/inventory-intel/internal/domain"
	"github.com/retailpulse/inventory-intel/internal/storage"
)

type fakeStore struct {
	keys []string
}

func (f *fakeStore) UploadObject(ctx context.Context, key string, data []byte) error {
	f.keys = append(f.keys, key)
	return nil
}

func (f *fakeStore) ListObjects(ctx context.Context, prefix string) ([]storage.ObjectInfo, error) {
	out := make([]storage.ObjectInfo, 0, len(f.keys))
	for _, k := range f.keys {
		out = append(out, storage.ObjectInfo{Key: k})
	}
	return out, nil
}

func TestWriteReport(t *testing.T) {
	store := &fakeStore{}
	e := NewExporter(t.TempDir(), store)
	asOf := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	orderBy := asOf

	path, err := e.WriteReport(context.Background(), Report{
		AsOf: asOf,
		Analytics: []domain.InventoryAnalyticsRecord{
			{StoreID: 2, Article: "TOP", AnalysisDate: asOf, CurrentStock: 20, ABCClass: "A", XYZClass: "X"},
		},
		Recommendations: []domain.PurchaseRecommendation{
			{Article: "TOP", ReorderQuantity: 7, UrgencyLevel: domain.UrgencyCritical, RecommendedDate: &orderBy},
		},
		Listings: []domain.WebsitePriorityRecord{
			{Article: "TOP", PriorityScore: 85, PriorityClass: domain.ListingPriorityHigh, IsRecommended: true},
		},
		DeadStock: []domain.OverstockItem{
			{StoreID: 2, Article: "DEAD", CurrentStock: 50, TurnoverDays: 400, StockValue: 1000},
		},
		Transfers: []domain.TransferRecommendation{
			{Article: "TOP", FromStoreID: 1, ToStoreID: 2, Quantity: 50, Priority: domain.TransferPriorityCritical},
		},
		Health: &domain.InventoryHealth{HealthScore: 82.5, HealthBucket: domain.HealthExcellent, TotalItems: 1},
	})
	require.NoError(t, err)
	assert.Contains(t, path, "inventory_report_2026-08-31.xlsx")

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	assert.Contains(t, sheets, "Analytics")
	assert.Contains(t, sheets, "Purchase Recommendations")
	assert.Contains(t, sheets, "Listing Priority")
	assert.Contains(t, sheets, "Dead Stock")
	assert.Contains(t, sheets, "Transfers")
	assert.Contains(t, sheets, "Health")
	assert.NotContains(t, sheets, "Sheet1")

	require.Len(t, store.keys, 1)
	assert.Equal(t, "exports/inventory_report_2026-08-31.xlsx", store.keys[0])

	article, err := f.GetCellValue("Analytics", "B2")
	require.NoError(t, err)
	assert.Equal(t, "TOP", article)

	urgency, err := f.GetCellValue("Purchase Recommendations", "H2")
	require.NoError(t, err)
	assert.Equal(t, domain.UrgencyCritical, urgency)

	orderDate, err := f.GetCellValue("Purchase Recommendations", "I2")
	require.NoError(t, err)
	assert.Equal(t, "2026-08-31", orderDate)
}

func TestWriteReportEmpty(t *testing.T) {
	e := NewExporter(t.TempDir(), nil)

	path, err := e.WriteReport(context.Background(), Report{
		AsOf: time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	// Header rows exist even with no data.
	header, err := f.GetCellValue("Analytics", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Store ID", header)
}
