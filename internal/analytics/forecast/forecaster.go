package forecast

import (
	"math"
	"sort"
	"time"

	"github.com/retailpulse/inventory-intel/internal/domain"
)

const (
	// minHistoryDays is the minimum number of distinct sales days a product
	// needs before a forecast is produced. Products below it are skipped,
	// never treated as an error.
	minHistoryDays = 7

	// minSeasonalityDays gates the seasonality label.
	minSeasonalityDays = 14

	// zConfidence95 is the z-score for the 95% confidence interval.
	zConfidence95 = 1.96
)

// Seasonality labels emitted by the forecaster.
const (
	SeasonalityInsufficient = "insufficient_data"
	SeasonalityWeekly       = "weekly"
	SeasonalityWeak         = "weak"
	SeasonalityStable       = "stable"
)

// BlendWeights are the forecast blending weights over the four base
// estimators. They should sum to 1.
type BlendWeights struct {
	WeightedAvg float64
	TrendAvg    float64
	MovingAvg7  float64
	SimpleAvg   float64
}

// DefaultBlendWeights mirrors the standard 0.4/0.3/0.2/0.1 policy.
func DefaultBlendWeights() BlendWeights {
	return BlendWeights{
		WeightedAvg: 0.4,
		TrendAvg:    0.3,
		MovingAvg7:  0.2,
		SimpleAvg:   0.1,
	}
}

// Forecaster produces per-product demand forecasts from daily sales series.
type Forecaster struct {
	historyDays  int
	forecastDays int
	weights      BlendWeights
}

func NewForecaster(historyDays, forecastDays int, weights BlendWeights) *Forecaster {
	if historyDays <= 0 {
		historyDays = 90
	}
	if forecastDays <= 0 {
		forecastDays = 30
	}
	return &Forecaster{
		historyDays:  historyDays,
		forecastDays: forecastDays,
		weights:      weights,
	}
}

// Forecast computes the demand forecast for one article. The second return is
// false when the article lacks the minimum history; that is a skip, not an
// error.
func (f *Forecaster) Forecast(article string, records []domain.SalesRecord, asOf time.Time) (*domain.DemandForecast, bool) {
	series, salesDays := BuildDailySeries(records, asOf, f.historyDays)
	if salesDays < minHistoryDays {
		return nil, false
	}

	stats := ComputeStats(series)
	adjustment := SeasonalAdjustment(series, asOf, f.forecastDays)

	h := float64(f.forecastDays)
	baseDaily := f.weights.WeightedAvg*stats.WeightedAvg +
		f.weights.TrendAvg*(stats.SimpleAvg+stats.Trend*h) +
		f.weights.MovingAvg7*stats.MovingAvg7 +
		f.weights.SimpleAvg*stats.SimpleAvg

	demand := baseDaily * h * adjustment
	if demand < 0 {
		demand = 0
	}

	spread := zConfidence95 * stats.StdDev * math.Sqrt(h)
	lower := demand - spread
	if lower < 0 {
		lower = 0
	}

	return &domain.DemandForecast{
		Article:            article,
		AsOfDate:           truncateDay(asOf),
		HorizonDays:        f.forecastDays,
		ForecastedDemand:   demand,
		Confidence:         domain.ConfidenceInterval{Lower: lower, Upper: demand + spread},
		Trend:              stats.Trend,
		Seasonality:        seasonalityLabel(series, salesDays),
		Accuracy:           accuracy(stats.CV),
		SeasonalAdjustment: adjustment,
	}, true
}

// accuracy maps the coefficient of variation to a 0..100 score.
func accuracy(cv float64) float64 {
	return clamp(100-50*cv, 0, 100)
}

// seasonalityLabel classifies the series by week-to-week variability.
func seasonalityLabel(series []DailyPoint, salesDays int) string {
	if salesDays < minSeasonalityDays {
		return SeasonalityInsufficient
	}

	weekly := weeklyTotals(series)
	if len(weekly) < 2 {
		return SeasonalityInsufficient
	}

	var sum float64
	for _, w := range weekly {
		sum += w
	}
	mean := sum / float64(len(weekly))
	if mean == 0 {
		return SeasonalityStable
	}

	var variance float64
	for _, w := range weekly {
		d := w - mean
		variance += d * d
	}
	cv := math.Sqrt(variance/float64(len(weekly))) / mean

	switch {
	case cv > 0.3:
		return SeasonalityWeekly
	case cv > 0.1:
		return SeasonalityWeak
	default:
		return SeasonalityStable
	}
}

// weeklyTotals buckets a daily series into consecutive 7-day totals, oldest
// first. A trailing partial week is dropped.
func weeklyTotals(series []DailyPoint) []float64 {
	full := len(series) / 7
	totals := make([]float64, 0, full)
	for w := 0; w < full; w++ {
		var sum float64
		for _, p := range series[w*7 : (w+1)*7] {
			sum += p.Quantity
		}
		totals = append(totals, sum)
	}
	return totals
}

// MonthlySeasonal produces a 12-month seasonal forecast from month-bucketed
// history: each future month's demand is the overall monthly mean scaled by
// that month's seasonal index.
func (f *Forecaster) MonthlySeasonal(records []domain.SalesRecord, asOf time.Time) []domain.MonthlyForecast {
	sums := make(map[time.Month]float64)
	counts := make(map[time.Month]int)

	// Bucket by calendar month; count distinct year-months so multi-year
	// history averages instead of inflating.
	seen := make(map[string]bool)
	for _, r := range records {
		m := r.SoldAt.Month()
		sums[m] += r.Quantity
		key := r.SoldAt.Format("2006-01")
		if !seen[key] {
			seen[key] = true
			counts[m]++
		}
	}

	var globalSum float64
	var activeMonths int
	avgs := make(map[time.Month]float64)
	for m := time.January; m <= time.December; m++ {
		if counts[m] > 0 {
			avgs[m] = sums[m] / float64(counts[m])
			globalSum += avgs[m]
			activeMonths++
		}
	}
	if activeMonths == 0 {
		return nil
	}
	globalAvg := globalSum / float64(activeMonths)

	out := make([]domain.MonthlyForecast, 0, 12)
	for i := 1; i <= 12; i++ {
		month := asOf.AddDate(0, i, 0).Month()
		index := 1.0
		if globalAvg > 0 {
			if avg, ok := avgs[month]; ok {
				index = avg / globalAvg
			}
		}
		out = append(out, domain.MonthlyForecast{
			Month:            month,
			HistoricalAvg:    avgs[month],
			ForecastedDemand: globalAvg * index,
			SeasonalIndex:    index,
		})
	}
	return out
}

// WeeklyTrend buckets history into ISO-week totals with percent change week
// over week. Requires at least two weekly buckets; returns false otherwise.
func (f *Forecaster) WeeklyTrend(records []domain.SalesRecord, asOf time.Time) ([]domain.WeeklyTrendPoint, bool) {
	series, _ := BuildDailySeries(records, asOf, f.historyDays)

	byWeek := make(map[time.Time]float64)
	for _, p := range series {
		byWeek[weekStart(p.Date)] += p.Quantity
	}

	starts := make([]time.Time, 0, len(byWeek))
	for ws := range byWeek {
		starts = append(starts, ws)
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i].Before(starts[j]) })

	if len(starts) < 2 {
		return nil, false
	}

	points := make([]domain.WeeklyTrendPoint, 0, len(starts))
	for i, ws := range starts {
		p := domain.WeeklyTrendPoint{WeekStart: ws, TotalSold: byWeek[ws]}
		if i > 0 {
			prev := byWeek[starts[i-1]]
			if prev > 0 {
				p.PercentChange = (p.TotalSold - prev) / prev * 100
			}
		}
		points = append(points, p)
	}
	return points, true
}

// weekStart truncates to the Monday of the date's week.
func weekStart(t time.Time) time.Time {
	t = truncateDay(t)
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
