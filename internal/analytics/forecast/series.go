package forecast

import (
	"math"
	"time"

	"github.com/retailpulse/inventory-intel/internal/domain"
)

// DailyPoint is one day of the zero-filled demand series.
type DailyPoint struct {
	Date     time.Time
	Quantity float64
}

// BuildDailySeries folds ledger rows into a complete daily series covering
// historyDays up to and including asOf, zero-filling days without sales.
// It also reports the number of distinct days that actually had sales.
func BuildDailySeries(records []domain.SalesRecord, asOf time.Time, historyDays int) ([]DailyPoint, int) {
	asOf = truncateDay(asOf)
	start := asOf.AddDate(0, 0, -(historyDays - 1))

	byDay := make(map[time.Time]float64, len(records))
	for _, r := range records {
		day := truncateDay(r.SoldAt)
		if day.Before(start) || day.After(asOf) {
			continue
		}
		byDay[day] += r.Quantity
	}

	series := make([]DailyPoint, 0, historyDays)
	for d := start; !d.After(asOf); d = d.AddDate(0, 0, 1) {
		series = append(series, DailyPoint{Date: d, Quantity: byDay[d]})
	}

	return series, len(byDay)
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SeriesStats carries the intermediate statistics of one demand series.
type SeriesStats struct {
	SimpleAvg   float64
	WeightedAvg float64
	MovingAvg7  float64
	MovingAvg30 float64
	Trend       float64 // OLS slope per day-index
	StdDev      float64
	CV          float64 // stddev / mean, 0 when mean = 0
}

// ComputeStats derives the core statistics from a daily series.
func ComputeStats(series []DailyPoint) SeriesStats {
	n := len(series)
	if n == 0 {
		return SeriesStats{}
	}

	var stats SeriesStats
	var sum float64
	for _, p := range series {
		sum += p.Quantity
	}
	stats.SimpleAvg = sum / float64(n)

	// Linear weights (i+1)/n favor recent days.
	var weighted, weightSum float64
	for i, p := range series {
		w := float64(i+1) / float64(n)
		weighted += p.Quantity * w
		weightSum += w
	}
	if weightSum > 0 {
		stats.WeightedAvg = weighted / weightSum
	}

	stats.MovingAvg7 = movingAvg(series, 7)
	stats.MovingAvg30 = movingAvg(series, 30)
	stats.Trend = olsSlope(series)

	var variance float64
	for _, p := range series {
		d := p.Quantity - stats.SimpleAvg
		variance += d * d
	}
	stats.StdDev = math.Sqrt(variance / float64(n))
	if stats.SimpleAvg > 0 {
		stats.CV = stats.StdDev / stats.SimpleAvg
	}

	return stats
}

func movingAvg(series []DailyPoint, window int) float64 {
	n := len(series)
	if n == 0 {
		return 0
	}
	if window > n {
		window = n
	}
	var sum float64
	for _, p := range series[n-window:] {
		sum += p.Quantity
	}
	return sum / float64(window)
}

// olsSlope fits quantity against the day index with ordinary least squares and
// returns the slope.
func olsSlope(series []DailyPoint) float64 {
	n := float64(len(series))
	if n < 2 {
		return 0
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, p := range series {
		x := float64(i)
		sumX += x
		sumY += p.Quantity
		sumXY += x * p.Quantity
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}

// WeekdayPattern returns the mean quantity per weekday over the series.
func WeekdayPattern(series []DailyPoint) [7]float64 {
	var sums, counts [7]float64
	for _, p := range series {
		wd := int(p.Date.Weekday())
		sums[wd] += p.Quantity
		counts[wd]++
	}

	var pattern [7]float64
	for i := range pattern {
		if counts[i] > 0 {
			pattern[i] = sums[i] / counts[i]
		}
	}
	return pattern
}

// SeasonalAdjustment averages the weekday ratio (weekday avg over global
// weekday avg) across the forecast horizon. Defaults to 1.0 when the series
// carries no signal.
func SeasonalAdjustment(series []DailyPoint, asOf time.Time, horizonDays int) float64 {
	pattern := WeekdayPattern(series)

	var global float64
	for _, v := range pattern {
		global += v
	}
	global /= 7
	if global <= 0 || horizonDays <= 0 {
		return 1.0
	}

	asOf = truncateDay(asOf)
	var sum float64
	for i := 1; i <= horizonDays; i++ {
		wd := int(asOf.AddDate(0, 0, i).Weekday())
		sum += pattern[wd] / global
	}
	return sum / float64(horizonDays)
}
