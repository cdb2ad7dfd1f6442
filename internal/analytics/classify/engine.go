package classify

import (
	"sort"

	"github.com/retailpulse/inventory-intel/internal/domain"
)

// Aggregate is the per-article input of the classification passes: the full
// candidate set is collected first (pass one), then classified in a single
// pass over the complete collection (pass two). Both ABC and XYZ are relative
// to the whole set, so classifying per product or on a partial stream is
// incorrect.
type Aggregate struct {
	Article        string  `json:"article"`
	Revenue        float64 `json:"revenue"`
	AvgDailySales  float64 `json:"avg_daily_sales"`
	AnnualizedRate float64 `json:"annualized_rate"`
	HasRate        bool    `json:"has_rate"`
}

// Result assigns exactly one ABC and one XYZ class to an article.
type Result struct {
	Article  string `json:"article"`
	ABCClass string `json:"abc_class"`
	XYZClass string `json:"xyz_class"`
}

// Config holds the classification cutoffs.
type Config struct {
	ABCCutoffA         float64 // cumulative revenue share for class A
	ABCCutoffB         float64 // cumulative revenue share for class B
	MinMoverDailySales float64 // below this avg daily sales a product is always Z

	// Turnover regimes map to a synthetic variability proxy; the proxy is
	// then bucketed with CV-like cutoffs. This substitutes for a true
	// sales-variance CV, which the live stock snapshot cannot provide.
	FastRate   float64
	MediumRate float64
	XYZCutoffX float64
	XYZCutoffY float64
}

func DefaultConfig() Config {
	return Config{
		ABCCutoffA:         0.80,
		ABCCutoffB:         0.95,
		MinMoverDailySales: 0.1,
		FastRate:           12,
		MediumRate:         6,
		XYZCutoffX:         0.5,
		XYZCutoffY:         1.0,
	}
}

// Engine performs the two-pass ABC/XYZ classification.
type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// BuildAggregates is pass one: it folds per-store turnover metrics into the
// per-article candidate set, passed by value to keep the passes independently
// testable.
func BuildAggregates(merged map[string]domain.TurnoverMetric) []Aggregate {
	aggs := make([]Aggregate, 0, len(merged))
	for _, m := range merged {
		a := Aggregate{
			Article:       m.Article,
			Revenue:       m.TotalRevenue,
			AvgDailySales: m.AvgDailySales,
			HasRate:       m.HasRate,
		}
		if m.HasRate && m.PeriodDays > 0 {
			a.AnnualizedRate = m.TurnoverRate * 365 / float64(m.PeriodDays)
		}
		aggs = append(aggs, a)
	}
	sort.Slice(aggs, func(i, j int) bool { return aggs[i].Article < aggs[j].Article })
	return aggs
}

// Classify is pass two: it assigns ABC and XYZ classes over the complete
// candidate set. Every article receives exactly one class of each kind.
func (e *Engine) Classify(items []Aggregate) map[string]Result {
	results := make(map[string]Result, len(items))
	for _, item := range items {
		results[item.Article] = Result{
			Article:  item.Article,
			ABCClass: domain.ABCClassC,
			XYZClass: e.xyzClass(item),
		}
	}

	// ABC: sort by revenue descending, stable so equal revenues keep input
	// order, then cut on cumulative share.
	byRevenue := append([]Aggregate(nil), items...)
	sort.SliceStable(byRevenue, func(i, j int) bool {
		return byRevenue[i].Revenue > byRevenue[j].Revenue
	})

	var total float64
	for _, item := range byRevenue {
		total += item.Revenue
	}

	var cumulative float64
	for _, item := range byRevenue {
		r := results[item.Article]
		if total <= 0 {
			// No revenue anywhere: the whole set stays C.
			results[item.Article] = r
			continue
		}
		cumulative += item.Revenue
		share := cumulative / total
		switch {
		case share <= e.cfg.ABCCutoffA:
			r.ABCClass = domain.ABCClassA
		case share <= e.cfg.ABCCutoffB:
			r.ABCClass = domain.ABCClassB
		default:
			r.ABCClass = domain.ABCClassC
		}
		results[item.Article] = r
	}

	return results
}

// xyzClass maps demand regularity to X, Y or Z. Sub-threshold movers always
// land in Z regardless of their turnover regime.
func (e *Engine) xyzClass(item Aggregate) string {
	if item.AvgDailySales < e.cfg.MinMoverDailySales {
		return domain.XYZClassZ
	}

	proxy := e.variabilityProxy(item)
	switch {
	case proxy < e.cfg.XYZCutoffX:
		return domain.XYZClassX
	case proxy < e.cfg.XYZCutoffY:
		return domain.XYZClassY
	default:
		return domain.XYZClassZ
	}
}

// variabilityProxy converts the turnover regime into a CV-like value: fast,
// regular turnover reads as low variability, sporadic turnover as high.
func (e *Engine) variabilityProxy(item Aggregate) float64 {
	if !item.HasRate {
		return 1.25
	}
	switch {
	case item.AnnualizedRate >= e.cfg.FastRate:
		return 0.3
	case item.AnnualizedRate >= e.cfg.MediumRate:
		return 0.75
	default:
		return 1.25
	}
}
