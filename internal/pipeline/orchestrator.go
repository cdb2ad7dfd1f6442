package pipeline

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/retailpulse/inventory-intel/internal/analytics/classify"
	"github.com/retailpulse/inventory-intel/internal/analytics/forecast"
	"github.com/retailpulse/inventory-intel/internal/analytics/listing"
	"github.com/retailpulse/inventory-intel/internal/analytics/replenish"
	"github.com/retailpulse/inventory-intel/internal/analytics/risk"
	"github.com/retailpulse/inventory-intel/internal/analytics/turnover"
	"github.com/retailpulse/inventory-intel/internal/domain"
)

// Orchestrator runs the full analysis pass over a snapshot: per-item turnover
// first, then the global phases that need the complete aggregate (forecasting,
// classification, risk, replenishment, listing priority). Classification never
// runs on a partial set.
type Orchestrator struct {
	calc       *turnover.Calculator
	forecaster *forecast.Forecaster
	classifier *classify.Engine
	analyzer   *risk.Analyzer
	planner    *replenish.Planner
	scorer     *listing.Scorer

	pool        *Pool
	historyDays int
	log         zerolog.Logger
}

type OrchestratorConfig struct {
	Turnover    turnover.Config
	Classify    classify.Config
	Risk        risk.Config
	Replenish   replenish.Config
	Listing     listing.Weights
	Blend       forecast.BlendWeights
	HistoryDays int
	HorizonDays int
	Workers     int
}

func NewOrchestrator(cfg OrchestratorConfig, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		calc:        turnover.NewCalculator(cfg.Turnover),
		forecaster:  forecast.NewForecaster(cfg.HistoryDays, cfg.HorizonDays, cfg.Blend),
		classifier:  classify.NewEngine(cfg.Classify),
		analyzer:    risk.NewAnalyzer(cfg.Risk),
		planner:     replenish.NewPlanner(cfg.Replenish),
		scorer:      listing.NewScorer(cfg.Listing),
		pool:        NewPool(cfg.Workers, log),
		historyDays: cfg.HistoryDays,
		log:         log,
	}
}

// Run executes one analysis pass. A failed item is counted and skipped; the
// only fatal error is the context deadline expiring mid-batch.
func (o *Orchestrator) Run(ctx context.Context, snap *Snapshot) (*Result, error) {
	started := time.Now()
	items := snap.Items()

	o.log.Info().
		Int("items", len(items)).
		Time("as_of", snap.AsOf).
		Msg("analysis run started")

	res := &Result{}

	// Phase 1: per-item turnover metrics.
	var mu sync.Mutex
	metrics := make([]domain.TurnoverMetric, 0, len(items))
	processed, failed, err := o.pool.Run(ctx, items, func(ctx context.Context, item Item) error {
		sales := snap.Sales[item.StoreID][item.Article]
		stock := snap.Stock[item.StoreID][item.Article]
		m := o.calc.Calculate(item.StoreID, item.Article, sales, stock)

		mu.Lock()
		metrics = append(metrics, m)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}
	res.Summary.Errors += failed

	// The pool hands metrics back in completion order.
	sort.Slice(metrics, func(i, j int) bool {
		if metrics[i].StoreID != metrics[j].StoreID {
			return metrics[i].StoreID < metrics[j].StoreID
		}
		return metrics[i].Article < metrics[j].Article
	})
	res.Metrics = metrics

	// Phase 2: global per-article aggregates, then both classification passes
	// over the complete set.
	merged := turnover.MergeByArticle(metrics)
	classes := o.classifier.Classify(classify.BuildAggregates(merged))

	articles := make([]string, 0, len(merged))
	for article := range merged {
		articles = append(articles, article)
	}
	sort.Strings(articles)

	salesByArticle := make(map[string][]domain.SalesRecord, len(articles))
	for _, byArticle := range snap.Sales {
		for article, rows := range byArticle {
			salesByArticle[article] = append(salesByArticle[article], rows...)
		}
	}

	// Phase 3: per-article forecasting. A thin history is a skip, not an error.
	for _, article := range articles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fc, ok := o.forecaster.Forecast(article, salesByArticle[article], snap.AsOf)
		if !ok {
			res.Summary.Skipped++
			continue
		}
		res.Forecasts = append(res.Forecasts, *fc)
	}

	// Phase 4: per-item risk joined with the global classes.
	assessments := make([]risk.Assessment, 0, len(metrics))
	for _, m := range metrics {
		as := o.analyzer.Assess(m)
		assessments = append(assessments, as)

		cls := classes[m.Article]
		res.Analytics = append(res.Analytics, domain.InventoryAnalyticsRecord{
			StoreID:       m.StoreID,
			Article:       m.Article,
			AnalysisDate:  truncateDay(snap.AsOf),
			CurrentStock:  m.CurrentStock,
			AvgDailySales: m.AvgDailySales,
			TurnoverDays:  m.TurnoverDays,
			StockoutRisk:  as.StockoutRisk,
			OverstockRisk: as.OverstockRisk,
			ABCClass:      cls.ABCClass,
			XYZClass:      cls.XYZClass,
			ServiceLevel:  as.ServiceLevel,
		})
	}
	res.Health = o.analyzer.Health(assessments)

	// Phase 5: per-article replenishment and listing priority.
	half := snap.AsOf.AddDate(0, 0, -o.historyDays/2)
	for _, article := range articles {
		m := merged[article]
		res.Recommendations = append(res.Recommendations, o.planner.Plan(m, snap.AsOf))

		product, ok := snap.Products[article]
		if !ok {
			continue
		}
		var firstHalf, secondHalf float64
		for _, s := range salesByArticle[article] {
			if s.SoldAt.Before(half) {
				firstHalf += s.Revenue
			} else {
				secondHalf += s.Revenue
			}
		}
		rec, ok := o.scorer.Score(listing.Input{
			Product:           product,
			CurrentStock:      m.CurrentStock,
			TurnoverDays:      m.TurnoverDays,
			HasTurnoverDays:   m.HasDays,
			AvgMarginPct:      marginPct(m),
			Revenue:           m.TotalRevenue,
			FirstHalfRevenue:  firstHalf,
			SecondHalfRevenue: secondHalf,
		})
		if !ok {
			// Image gate: the product is excluded from listing outputs entirely.
			continue
		}
		res.Listings = append(res.Listings, rec)
	}

	o.log.Info().
		Int("processed", processed).
		Int("failed", failed).
		Int("skipped", res.Summary.Skipped).
		Int("forecasts", len(res.Forecasts)).
		Dur("elapsed", time.Since(started)).
		Msg("analysis run finished")

	return res, nil
}

func marginPct(m domain.TurnoverMetric) float64 {
	if m.TotalRevenue <= 0 {
		return 0
	}
	return m.TotalMargin / m.TotalRevenue * 100
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
