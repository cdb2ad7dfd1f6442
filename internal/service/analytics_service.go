package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/retailpulse/inventory-intel/internal/analytics/classify"
	"github.com/retailpulse/inventory-intel/internal/analytics/forecast"
	"github.com/retailpulse/inventory-intel/internal/analytics/listing"
	"github.com/retailpulse/inventory-intel/internal/analytics/replenish"
	"github.com/retailpulse/inventory-intel/internal/analytics/risk"
	"github.com/retailpulse/inventory-intel/internal/analytics/turnover"
	"github.com/retailpulse/inventory-intel/internal/cache"
	"github.com/retailpulse/inventory-intel/internal/config"
	"github.com/retailpulse/inventory-intel/internal/domain"
	"github.com/retailpulse/inventory-intel/internal/pipeline"
	"github.com/retailpulse/inventory-intel/internal/repository"
)

// AnalyticsService owns the batch analysis run and the reads over its
// persisted outputs.
type AnalyticsService struct {
	sales     repository.SalesRepository
	stock     repository.StockRepository
	catalog   repository.CatalogRepository
	analytics repository.AnalyticsRepository
	runs      repository.RunRepository
	cache     cache.AnalyticsCache

	orchestrator *pipeline.Orchestrator
	analyzer     *risk.Analyzer
	planner      *replenish.Planner
	forecaster   *forecast.Forecaster
	cfg          *config.Config
}

func NewAnalyticsService(
	sales repository.SalesRepository,
	stock repository.StockRepository,
	catalog repository.CatalogRepository,
	analytics repository.AnalyticsRepository,
	runs repository.RunRepository,
	analyticsCache cache.AnalyticsCache,
	cfg *config.Config,
) *AnalyticsService {
	orcCfg := pipeline.OrchestratorConfig{
		Turnover: turnover.Config{
			PeriodDays: cfg.Analytics.HistoryDays,
			FastRate:   cfg.Policy.TurnoverFastRate,
			MediumRate: cfg.Policy.TurnoverMediumRate,
			SlowRate:   cfg.Policy.TurnoverSlowRate,
		},
		Classify: classify.DefaultConfig(),
		Risk: risk.Config{
			StockoutHorizonDays: cfg.Policy.StockoutHorizonDays,
			OverstockDaysLimit:  cfg.Policy.OverstockDaysLimit,
			ServiceLevelWeight:  cfg.Policy.HealthServiceWeight,
			StockoutRiskWeight:  cfg.Policy.HealthStockoutWeight,
			OverstockRiskWeight: cfg.Policy.HealthOverstockWeight,
		},
		Replenish: replenish.Config{
			LeadTimeDays:      cfg.Analytics.LeadTimeDays,
			SafetyStockFactor: cfg.Policy.SafetyStockFactor,
			DeadStockDays:     cfg.Policy.OverstockDaysLimit,
		},
		Listing: listing.Weights{
			Image:    cfg.Policy.ListingImageWeight,
			Stock:    cfg.Policy.ListingStockWeight,
			Turnover: cfg.Policy.ListingTurnoverWeight,
			Margin:   cfg.Policy.ListingMarginWeight,
			Revenue:  cfg.Policy.ListingRevenueWeight,
			Trend:    cfg.Policy.ListingTrendWeight,
		},
		Blend: forecast.BlendWeights{
			WeightedAvg: cfg.Policy.ForecastWeightedAvg,
			TrendAvg:    cfg.Policy.ForecastTrendAvg,
			MovingAvg7:  cfg.Policy.ForecastMovingAvg7,
			SimpleAvg:   cfg.Policy.ForecastSimpleAvg,
		},
		HistoryDays: cfg.Analytics.HistoryDays,
		HorizonDays: cfg.Analytics.ForecastDays,
		Workers:     cfg.Analytics.WorkerCount,
	}

	return &AnalyticsService{
		sales:        sales,
		stock:        stock,
		catalog:      catalog,
		analytics:    analytics,
		runs:         runs,
		cache:        analyticsCache,
		orchestrator: pipeline.NewOrchestrator(orcCfg, log.With().Str("component", "pipeline").Logger()),
		analyzer:     risk.NewAnalyzer(orcCfg.Risk),
		planner:      replenish.NewPlanner(replenish.Config{LeadTimeDays: cfg.Analytics.LeadTimeDays, SafetyStockFactor: cfg.Policy.SafetyStockFactor, DeadStockDays: cfg.Policy.OverstockDaysLimit}),
		forecaster:   forecast.NewForecaster(cfg.Analytics.HistoryDays, cfg.Analytics.ForecastDays, orcCfg.Blend),
		cfg:          cfg,
	}
}

// RunAnalysis executes one complete analysis for asOf and persists every
// output. The run is bounded by the configured batch deadline.
func (s *AnalyticsService) RunAnalysis(ctx context.Context, asOf time.Time) (*pipeline.AnalysisRun, domain.BatchSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Analytics.BatchDeadline)
	defer cancel()

	var summary domain.BatchSummary

	snap, err := s.loadSnapshot(ctx, asOf)
	if err != nil {
		// An unreadable source feed is the one fatal input error.
		return nil, summary, fmt.Errorf("failed to load snapshot: %w", err)
	}

	run, err := s.runs.GetOrCreateRun(ctx, truncateDay(asOf), len(snap.Items()))
	if err != nil {
		return nil, summary, err
	}
	run.Status = pipeline.StatusProcessing
	if err := s.runs.UpdateRun(ctx, run); err != nil {
		return nil, summary, err
	}

	res, err := s.orchestrator.Run(ctx, snap)
	if err != nil {
		s.failRun(ctx, run, err)
		return run, summary, err
	}
	summary = res.Summary

	// Record today's balances so history-based averages accrue over time.
	current, err := s.stock.GetCurrentStock(ctx)
	if err == nil {
		if err := s.stock.AppendHistory(ctx, truncateDay(asOf), current); err != nil {
			log.Warn().Err(err).Msg("failed to append stock history")
		}
	}

	if err := s.persist(ctx, asOf, res, &summary); err != nil {
		s.failRun(ctx, run, err)
		return run, summary, err
	}

	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to invalidate analytics cache")
	}

	now := time.Now()
	run.Status = pipeline.StatusCompleted
	run.ProcessedItems = len(res.Analytics)
	run.CompletedAt = &now
	if err := s.runs.UpdateRun(ctx, run); err != nil {
		return run, summary, err
	}

	log.Info().
		Int("created", summary.Created).
		Int("updated", summary.Updated).
		Int("skipped", summary.Skipped).
		Int("errors", summary.Errors).
		Msg("analysis persisted")

	return run, summary, nil
}

func (s *AnalyticsService) persist(ctx context.Context, asOf time.Time, res *pipeline.Result, summary *domain.BatchSummary) error {
	inserted, err := s.analytics.ReplaceAnalytics(ctx, truncateDay(asOf), res.Analytics)
	if err != nil {
		return fmt.Errorf("failed to replace analytics: %w", err)
	}
	summary.Created += inserted

	created, updated, err := s.analytics.UpsertForecasts(ctx, res.Forecasts)
	if err != nil {
		return fmt.Errorf("failed to upsert forecasts: %w", err)
	}
	summary.Created += created
	summary.Updated += updated

	created, updated, err = s.analytics.UpsertRecommendations(ctx, res.Recommendations)
	if err != nil {
		return fmt.Errorf("failed to upsert recommendations: %w", err)
	}
	summary.Created += created
	summary.Updated += updated

	created, updated, err = s.analytics.UpsertListings(ctx, res.Listings)
	if err != nil {
		return fmt.Errorf("failed to upsert listings: %w", err)
	}
	summary.Created += created
	summary.Updated += updated

	if err := s.cache.SetHealth(ctx, res.Health); err != nil {
		log.Warn().Err(err).Msg("failed to cache health summary")
	}
	return nil
}

func (s *AnalyticsService) failRun(ctx context.Context, run *pipeline.AnalysisRun, cause error) {
	now := time.Now()
	run.Status = pipeline.StatusFailed
	run.ErrorMessage = cause.Error()
	run.CompletedAt = &now
	if err := s.runs.UpdateRun(ctx, run); err != nil {
		log.Error().Err(err).Int64("run_id", run.ID).Msg("failed to mark run failed")
	}
}

// loadSnapshot reads everything a run needs up front.
func (s *AnalyticsService) loadSnapshot(ctx context.Context, asOf time.Time) (*pipeline.Snapshot, error) {
	since := asOf.AddDate(0, 0, -s.cfg.Analytics.HistoryDays)

	stores, err := s.catalog.GetStores(ctx)
	if err != nil {
		return nil, err
	}
	products, err := s.catalog.GetProducts(ctx)
	if err != nil {
		return nil, err
	}
	sales, err := s.sales.GetSalesSince(ctx, since)
	if err != nil {
		return nil, err
	}
	stock, err := s.stock.GetCurrentStock(ctx)
	if err != nil {
		return nil, err
	}

	snap := &pipeline.Snapshot{
		AsOf:     asOf,
		Stores:   stores,
		Products: products,
		Sales:    make(map[int64]map[string][]domain.SalesRecord),
		Stock:    make(map[int64]map[string]float64),
	}
	for _, row := range sales {
		byArticle, ok := snap.Sales[row.StoreID]
		if !ok {
			byArticle = make(map[string][]domain.SalesRecord)
			snap.Sales[row.StoreID] = byArticle
		}
		byArticle[row.Article] = append(byArticle[row.Article], row)
	}
	for _, row := range stock {
		byArticle, ok := snap.Stock[row.StoreID]
		if !ok {
			byArticle = make(map[string]float64)
			snap.Stock[row.StoreID] = byArticle
		}
		byArticle[row.Article] = row.Quantity
	}
	return snap, nil
}

// GetAnalytics serves filtered analytics rows through the cache.
func (s *AnalyticsService) GetAnalytics(ctx context.Context, filter domain.AnalyticsFilter) ([]domain.InventoryAnalyticsRecord, error) {
	if rows, hit, err := s.cache.GetAnalytics(ctx, filter); err != nil {
		log.Warn().Err(err).Msg("analytics cache read failed")
	} else if hit {
		return rows, nil
	}

	rows, err := s.analytics.GetAnalytics(ctx, filter)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetAnalytics(ctx, filter, rows); err != nil {
		log.Warn().Err(err).Msg("analytics cache write failed")
	}
	return rows, nil
}

func (s *AnalyticsService) GetRecommendations(ctx context.Context, urgency string, limit int) ([]domain.PurchaseRecommendation, error) {
	return s.analytics.GetRecommendations(ctx, urgency, limit)
}

func (s *AnalyticsService) GetListings(ctx context.Context, onlyRecommended bool, limit int) ([]domain.WebsitePriorityRecord, error) {
	return s.analytics.GetListings(ctx, onlyRecommended, limit)
}

func (s *AnalyticsService) GetForecasts(ctx context.Context, article string) ([]domain.DemandForecast, error) {
	return s.analytics.GetForecasts(ctx, article)
}

func (s *AnalyticsService) GetLatestRun(ctx context.Context) (*pipeline.AnalysisRun, error) {
	return s.runs.GetLatestRun(ctx)
}

// GetHealth recomputes the health summary from the current metrics when the
// cached copy has expired.
func (s *AnalyticsService) GetHealth(ctx context.Context, asOf time.Time) (*domain.InventoryHealth, error) {
	if health, hit, err := s.cache.GetHealth(ctx); err != nil {
		log.Warn().Err(err).Msg("health cache read failed")
	} else if hit {
		return health, nil
	}

	metrics, err := s.currentMetrics(ctx, asOf)
	if err != nil {
		return nil, err
	}
	assessments := make([]risk.Assessment, 0, len(metrics))
	for _, m := range metrics {
		assessments = append(assessments, s.analyzer.Assess(m))
	}
	health := s.analyzer.Health(assessments)

	if err := s.cache.SetHealth(ctx, health); err != nil {
		log.Warn().Err(err).Msg("health cache write failed")
	}
	return &health, nil
}

// GetStockoutForecast reports items expected to run out inside the configured
// horizon.
func (s *AnalyticsService) GetStockoutForecast(ctx context.Context, asOf time.Time) ([]domain.StockoutForecastItem, error) {
	metrics, err := s.currentMetrics(ctx, asOf)
	if err != nil {
		return nil, err
	}
	return s.analyzer.StockoutForecast(metrics, float64(s.cfg.Analytics.StockoutHorizon)), nil
}

// GetDeadStock reports stock that stopped moving.
func (s *AnalyticsService) GetDeadStock(ctx context.Context, asOf time.Time) ([]domain.OverstockItem, error) {
	metrics, err := s.currentMetrics(ctx, asOf)
	if err != nil {
		return nil, err
	}
	return s.planner.DeadStock(metrics), nil
}

// GetClassMatrix builds the ABC x XYZ distribution from the persisted rows of
// one analysis date.
func (s *AnalyticsService) GetClassMatrix(ctx context.Context, analysisDate string) (map[string]map[string]int, error) {
	rows, err := s.GetAnalytics(ctx, domain.AnalyticsFilter{
		AnalysisDate: analysisDate,
		PageSize:     10000,
	})
	if err != nil {
		return nil, err
	}

	// One pair per article; rows are per store, so dedupe first.
	byArticle := make(map[string]risk.ClassPair, len(rows))
	for _, row := range rows {
		byArticle[row.Article] = risk.ClassPair{ABCClass: row.ABCClass, XYZClass: row.XYZClass}
	}
	pairs := make([]risk.ClassPair, 0, len(byArticle))
	for _, p := range byArticle {
		pairs = append(pairs, p)
	}
	return risk.CrossTab(pairs), nil
}

// GetMonthlySeasonal forecasts one article's demand per calendar month from
// up to a year of ledger history.
func (s *AnalyticsService) GetMonthlySeasonal(ctx context.Context, article string, asOf time.Time) ([]domain.MonthlyForecast, error) {
	records, err := s.articleSales(ctx, article, asOf.AddDate(-1, 0, 0))
	if err != nil {
		return nil, err
	}
	return s.forecaster.MonthlySeasonal(records, asOf), nil
}

// GetWeeklyTrend reports an article's week-over-week movement. The report
// needs at least two full weekly buckets.
func (s *AnalyticsService) GetWeeklyTrend(ctx context.Context, article string, asOf time.Time) ([]domain.WeeklyTrendPoint, error) {
	records, err := s.articleSales(ctx, article, asOf.AddDate(0, 0, -s.cfg.Analytics.HistoryDays))
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no sales history for %s", article)
	}
	points, ok := s.forecaster.WeeklyTrend(records, asOf)
	if !ok {
		return nil, fmt.Errorf("not enough history for a weekly trend on %s", article)
	}
	return points, nil
}

// GetHiddenGems surfaces listings with strong margin and trend that the
// overall score buries.
func (s *AnalyticsService) GetHiddenGems(ctx context.Context) ([]domain.WebsitePriorityRecord, error) {
	records, err := s.analytics.GetListings(ctx, false, 0)
	if err != nil {
		return nil, err
	}
	return listing.HiddenGems(records), nil
}

// GetStockHistory reads the accumulated balance snapshots for one item.
func (s *AnalyticsService) GetStockHistory(ctx context.Context, storeID int64, article string, asOf time.Time) ([]domain.StockSnapshotHistory, error) {
	since := asOf.AddDate(0, 0, -s.cfg.Analytics.HistoryDays)
	return s.stock.GetHistory(ctx, storeID, article, since)
}

func (s *AnalyticsService) articleSales(ctx context.Context, article string, since time.Time) ([]domain.SalesRecord, error) {
	all, err := s.sales.GetSalesSince(ctx, since)
	if err != nil {
		return nil, err
	}
	records := make([]domain.SalesRecord, 0)
	for _, r := range all {
		if r.Article == article {
			records = append(records, r)
		}
	}
	return records, nil
}

// currentMetrics recomputes per-item turnover from the ledger and balances.
func (s *AnalyticsService) currentMetrics(ctx context.Context, asOf time.Time) ([]domain.TurnoverMetric, error) {
	snap, err := s.loadSnapshot(ctx, asOf)
	if err != nil {
		return nil, err
	}

	calc := turnover.NewCalculator(turnover.Config{
		PeriodDays: s.cfg.Analytics.HistoryDays,
		FastRate:   s.cfg.Policy.TurnoverFastRate,
		MediumRate: s.cfg.Policy.TurnoverMediumRate,
		SlowRate:   s.cfg.Policy.TurnoverSlowRate,
	})
	items := snap.Items()
	metrics := make([]domain.TurnoverMetric, 0, len(items))
	for _, item := range items {
		metrics = append(metrics, calc.Calculate(item.StoreID, item.Article, snap.Sales[item.StoreID][item.Article], snap.Stock[item.StoreID][item.Article]))
	}
	return metrics, nil
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
