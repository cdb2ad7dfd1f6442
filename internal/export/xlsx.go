package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/retailpulse/inventory-intel/internal/domain"
	"github.com/retailpulse/inventory-intel/internal/storage"
)

// Exporter writes run outputs to an XLSX workbook and optionally pushes the
// file to object storage.
type Exporter struct {
	outputDir string
	store     storage.ObjectStorage // nil disables uploads
}

func NewExporter(outputDir string, store storage.ObjectStorage) *Exporter {
	return &Exporter{outputDir: outputDir, store: store}
}

// Report is everything one export carries.
type Report struct {
	AsOf            time.Time
	Analytics       []domain.InventoryAnalyticsRecord
	Recommendations []domain.PurchaseRecommendation
	Listings        []domain.WebsitePriorityRecord
	DeadStock       []domain.OverstockItem
	Transfers       []domain.TransferRecommendation
	Health          *domain.InventoryHealth
}

// WriteReport writes the workbook and returns the local file path.
func (e *Exporter) WriteReport(ctx context.Context, report Report) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := e.writeAnalyticsSheet(f, report.Analytics); err != nil {
		return "", err
	}
	if err := e.writeRecommendationsSheet(f, report.Recommendations); err != nil {
		return "", err
	}
	if err := e.writeListingsSheet(f, report.Listings); err != nil {
		return "", err
	}
	if len(report.DeadStock) > 0 {
		if err := e.writeDeadStockSheet(f, report.DeadStock); err != nil {
			return "", err
		}
	}
	if len(report.Transfers) > 0 {
		if err := e.writeTransfersSheet(f, report.Transfers); err != nil {
			return "", err
		}
	}
	if report.Health != nil {
		if err := e.writeHealthSheet(f, report.Health); err != nil {
			return "", err
		}
	}

	// The default sheet is replaced by the first data sheet.
	f.DeleteSheet("Sheet1")

	if err := os.MkdirAll(e.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export dir: %w", err)
	}

	name := fmt.Sprintf("inventory_report_%s.xlsx", report.AsOf.Format("2006-01-02"))
	path := filepath.Join(e.outputDir, name)
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save report: %w", err)
	}

	if e.store != nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return path, fmt.Errorf("failed to read report for upload: %w", err)
		}
		key := "exports/" + name
		if err := e.store.UploadObject(ctx, key, data); err != nil {
			// The local file is still a valid artifact.
			log.Warn().Err(err).Str("key", key).Msg("report upload failed")
		}
	}

	return path, nil
}

func (e *Exporter) writeAnalyticsSheet(f *excelize.File, rows []domain.InventoryAnalyticsRecord) error {
	const sheet = "Analytics"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	header := []interface{}{
		"Store ID", "Article", "Analysis Date", "Current Stock", "Avg Daily Sales",
		"Turnover Days", "Stockout Risk", "Overstock Risk", "ABC", "XYZ", "Service Level",
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i, r := range rows {
		row := []interface{}{
			r.StoreID, r.Article, r.AnalysisDate.Format("2006-01-02"), r.CurrentStock,
			r.AvgDailySales, r.TurnoverDays, r.StockoutRisk, r.OverstockRisk,
			r.ABCClass, r.XYZClass, r.ServiceLevel,
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func (e *Exporter) writeRecommendationsSheet(f *excelize.File, recs []domain.PurchaseRecommendation) error {
	const sheet = "Purchase Recommendations"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	header := []interface{}{
		"Article", "Current Stock", "Recommended Stock", "Safety Stock",
		"Reorder Point", "Reorder Quantity", "Days of Stock", "Urgency", "Order By",
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i, r := range recs {
		orderBy := ""
		if r.RecommendedDate != nil {
			orderBy = r.RecommendedDate.Format("2006-01-02")
		}
		row := []interface{}{
			r.Article, r.CurrentStock, r.RecommendedStock, r.SafetyStock,
			r.ReorderPoint, r.ReorderQuantity, r.DaysOfStock, r.UrgencyLevel, orderBy,
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func (e *Exporter) writeListingsSheet(f *excelize.File, recs []domain.WebsitePriorityRecord) error {
	const sheet = "Listing Priority"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	header := []interface{}{
		"Article", "Priority Score", "Class", "Recommended",
		"Image", "Stock", "Turnover", "Margin", "Revenue", "Trend",
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i, r := range recs {
		row := []interface{}{
			r.Article, r.PriorityScore, r.PriorityClass, r.IsRecommended,
			r.ImageScore, r.StockScore, r.TurnoverScore, r.MarginScore,
			r.RevenueScore, r.TrendScore,
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func (e *Exporter) writeDeadStockSheet(f *excelize.File, items []domain.OverstockItem) error {
	const sheet = "Dead Stock"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	header := []interface{}{
		"Store ID", "Article", "Current Stock", "Turnover Days", "Stock Value",
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i, item := range items {
		row := []interface{}{
			item.StoreID, item.Article, item.CurrentStock, item.TurnoverDays, item.StockValue,
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func (e *Exporter) writeTransfersSheet(f *excelize.File, recs []domain.TransferRecommendation) error {
	const sheet = "Transfers"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	header := []interface{}{
		"Article", "From Store", "To Store", "Quantity",
		"Priority", "Priority Score", "Days of Stock", "Justification",
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i, r := range recs {
		row := []interface{}{
			r.Article, r.FromStoreID, r.ToStoreID, r.Quantity,
			r.Priority, r.PriorityScore, r.DaysOfStock, r.Justification,
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func (e *Exporter) writeHealthSheet(f *excelize.File, health *domain.InventoryHealth) error {
	const sheet = "Health"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	rows := [][]interface{}{
		{"Health Score", health.HealthScore},
		{"Bucket", health.HealthBucket},
		{"Avg Service Level", health.AvgServiceLevel},
		{"Avg Stockout Risk", health.AvgStockoutRisk},
		{"Avg Overstock Risk", health.AvgOverstockRisk},
		{"Total Items", health.TotalItems},
	}
	for i := range rows {
		cell := fmt.Sprintf("A%d", i+1)
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return err
		}
	}
	return nil
}
