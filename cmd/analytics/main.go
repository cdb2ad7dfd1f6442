package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/retailpulse/inventory-intel/internal/cache"
	"github.com/retailpulse/inventory-intel/internal/config"
	"github.com/retailpulse/inventory-intel/internal/domain"
	"github.com/retailpulse/inventory-intel/internal/export"
	"github.com/retailpulse/inventory-intel/internal/repository/postgres"
	"github.com/retailpulse/inventory-intel/internal/service"
	"github.com/retailpulse/inventory-intel/internal/storage"
	"github.com/retailpulse/inventory-intel/pkg/logger"
)

type dbKeyType struct{}

var dbKey = dbKeyType{}

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func newDateFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "date",
		Usage: "Analysis date (YYYY-MM-DD), defaults to today",
	}
}

func initDB(c *cli.Context) error {
	db, err := postgres.NewDBFromURL(c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	c.Context = context.WithValue(c.Context, dbKey, db)
	return nil
}

func closeDB(c *cli.Context) error {
	if db, ok := c.Context.Value(dbKey).(*postgres.DB); ok && db != nil {
		return db.Close()
	}
	return nil
}

func dbFrom(c *cli.Context) *postgres.DB {
	return c.Context.Value(dbKey).(*postgres.DB)
}

func parseDate(c *cli.Context) (time.Time, error) {
	raw := c.String("date")
	if raw == "" {
		return time.Now(), nil
	}
	asOf, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date %q: %w", raw, err)
	}
	return asOf, nil
}

func analyticsServiceFrom(c *cli.Context) *service.AnalyticsService {
	db := dbFrom(c)
	cfg := config.Load()
	return service.NewAnalyticsService(
		postgres.NewSalesRepository(db),
		postgres.NewStockRepository(db),
		postgres.NewCatalogRepository(db),
		postgres.NewAnalyticsRepository(db),
		postgres.NewRunRepository(db),
		cache.NewNoopAnalyticsCache(),
		cfg,
	)
}

func runAnalysis(c *cli.Context) error {
	asOf, err := parseDate(c)
	if err != nil {
		return err
	}

	svc := analyticsServiceFrom(c)
	run, summary, err := svc.RunAnalysis(c.Context, asOf)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	log.Info().
		Int64("run_id", run.ID).
		Str("analysis_date", run.AnalysisDate.Format("2006-01-02")).
		Int("total_items", run.TotalItems).
		Int("processed_items", run.ProcessedItems).
		Int("created", summary.Created).
		Int("updated", summary.Updated).
		Int("errors", summary.Errors).
		Msg("analysis run completed")
	return nil
}

func runTransfers(c *cli.Context) error {
	asOf, err := parseDate(c)
	if err != nil {
		return err
	}

	db := dbFrom(c)
	cfg := config.Load()
	svc := service.NewTransferService(
		postgres.NewSalesRepository(db),
		postgres.NewStockRepository(db),
		postgres.NewCatalogRepository(db),
		cfg,
	)

	recs, err := svc.Recommend(c.Context, asOf)
	if err != nil {
		return fmt.Errorf("transfer recommendation failed: %w", err)
	}

	if len(recs) == 0 {
		fmt.Println("no transfers recommended")
		return nil
	}

	fmt.Printf("%-16s %-6s %-6s %6s %-10s %6s %6s  %s\n",
		"ARTICLE", "FROM", "TO", "QTY", "PRIORITY", "SCORE", "DAYS", "REASON")
	for _, r := range recs {
		fmt.Printf("%-16s %-6d %-6d %6.0f %-10s %6.0f %6.1f  %s\n",
			r.Article, r.FromStoreID, r.ToStoreID, r.Quantity,
			r.Priority, r.PriorityScore, r.DaysOfStock, r.Justification)
	}
	return nil
}

func runExport(c *cli.Context) error {
	asOf, err := parseDate(c)
	if err != nil {
		return err
	}

	db := dbFrom(c)
	svc := analyticsServiceFrom(c)
	cfg := config.Load()
	transfers := service.NewTransferService(
		postgres.NewSalesRepository(db),
		postgres.NewStockRepository(db),
		postgres.NewCatalogRepository(db),
		cfg,
	)

	analytics, err := svc.GetAnalytics(c.Context, domain.AnalyticsFilter{PageSize: 10000})
	if err != nil {
		return fmt.Errorf("failed to load analytics: %w", err)
	}
	recs, err := svc.GetRecommendations(c.Context, "", 0)
	if err != nil {
		return fmt.Errorf("failed to load recommendations: %w", err)
	}
	listings, err := svc.GetListings(c.Context, false, 0)
	if err != nil {
		return fmt.Errorf("failed to load listings: %w", err)
	}
	deadStock, err := svc.GetDeadStock(c.Context, asOf)
	if err != nil {
		return fmt.Errorf("failed to load dead stock: %w", err)
	}
	transferRecs, err := transfers.Recommend(c.Context, asOf)
	if err != nil {
		// A chain without a configured warehouse still gets its workbook.
		log.Warn().Err(err).Msg("skipping transfer sheet")
		transferRecs = nil
	}
	health, err := svc.GetHealth(c.Context, asOf)
	if err != nil {
		return fmt.Errorf("failed to load health summary: %w", err)
	}

	outputDir := c.String("output-dir")
	if outputDir == "" {
		outputDir = cfg.Export.OutputDir
	}

	var store storage.ObjectStorage
	if c.Bool("upload") {
		s3, err := storage.NewS3Client(cfg.Export)
		if err != nil {
			return fmt.Errorf("failed to initialize object storage: %w", err)
		}
		store = s3
	}

	path, err := export.NewExporter(outputDir, store).WriteReport(c.Context, export.Report{
		AsOf:            asOf,
		Analytics:       analytics,
		Recommendations: recs,
		Listings:        listings,
		DeadStock:       deadStock,
		Transfers:       transferRecs,
		Health:          health,
	})
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	log.Info().Str("path", path).Int("rows", len(analytics)).Msg("report written")
	return nil
}

func listReports(c *cli.Context) error {
	cfg := config.Load()
	s3, err := storage.NewS3Client(cfg.Export)
	if err != nil {
		return fmt.Errorf("failed to initialize object storage: %w", err)
	}

	objects, err := s3.ListObjects(c.Context, "exports/")
	if err != nil {
		return fmt.Errorf("failed to list reports: %w", err)
	}

	if len(objects) == 0 {
		fmt.Println("no uploaded reports found")
		return nil
	}

	fmt.Printf("%-48s %10s  %s\n", "KEY", "SIZE", "MODIFIED")
	for _, obj := range objects {
		fmt.Printf("%-48s %10d  %s\n", obj.Key, obj.Size, obj.LastModified.Format(time.RFC3339))
	}
	return nil
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		logger.SetLevel(level)
	}

	app := &cli.App{
		Name:  "analytics",
		Usage: "Run inventory analytics from the command line",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Run the full analysis pipeline for a date",
				Flags: []cli.Flag{
					newDBURLFlag(),
					newDateFlag(),
				},
				Before: initDB,
				After:  closeDB,
				Action: runAnalysis,
			},
			{
				Name:  "transfers",
				Usage: "Print warehouse-to-store transfer recommendations",
				Flags: []cli.Flag{
					newDBURLFlag(),
					newDateFlag(),
				},
				Before: initDB,
				After:  closeDB,
				Action: runTransfers,
			},
			{
				Name:  "export",
				Usage: "Export the latest analytics to an XLSX workbook",
				Flags: []cli.Flag{
					newDBURLFlag(),
					newDateFlag(),
					&cli.StringFlag{
						Name:    "output-dir",
						Usage:   "Directory for the generated workbook",
						EnvVars: []string{"EXPORT_OUTPUT_DIR"},
					},
					&cli.BoolFlag{
						Name:  "upload",
						Usage: "Upload the workbook to object storage after writing",
					},
				},
				Before: initDB,
				After:  closeDB,
				Action: runExport,
			},
			{
				Name:   "reports",
				Usage:  "List workbooks previously uploaded to object storage",
				Action: listReports,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}
