package listing

import (
	"math"
	"sort"

	"github.com/retailpulse/inventory-intel/internal/domain"
)

// Weights are the listing priority component weights. They should sum to 1.
type Weights struct {
	Image    float64
	Stock    float64
	Turnover float64
	Margin   float64
	Revenue  float64
	Trend    float64
}

// DefaultWeights mirrors the standard 0.40/0.30/0.15/0.10/0.025/0.025 policy.
func DefaultWeights() Weights {
	return Weights{
		Image:    0.40,
		Stock:    0.30,
		Turnover: 0.15,
		Margin:   0.10,
		Revenue:  0.025,
		Trend:    0.025,
	}
}

// Input carries everything the scorer needs for one product.
type Input struct {
	Product           domain.Product
	CurrentStock      float64
	TurnoverDays      float64
	HasTurnoverDays   bool
	AvgMarginPct      float64 // percent, 0..100
	Revenue           float64 // period revenue
	FirstHalfRevenue  float64
	SecondHalfRevenue float64
}

// Scorer computes website listing priority. Products without a single catalog
// image are excluded before any other signal is looked at.
type Scorer struct {
	weights Weights
}

func NewScorer(weights Weights) *Scorer {
	return &Scorer{weights: weights}
}

// Score evaluates one product. The second return is false when the product
// failed the image gate and must not appear in any listing output.
func (s *Scorer) Score(in Input) (domain.WebsitePriorityRecord, bool) {
	if len(in.Product.Images) == 0 {
		return domain.WebsitePriorityRecord{}, false
	}

	rec := domain.WebsitePriorityRecord{
		Article:    in.Product.Article,
		ImageScore: 1,
		// Placeholder until a real seasonal demand signal exists; weightless
		// today but persisted so the schema is stable.
		SeasonScore: 0.5,
	}

	if in.CurrentStock > 0 {
		rec.StockScore = 1
	}

	if in.HasTurnoverDays {
		rec.TurnoverScore = clamp(1-in.TurnoverDays/365, 0, 1)
	}

	rec.MarginScore = clamp(in.AvgMarginPct/50, 0, 1)
	rec.RevenueScore = clamp(math.Sqrt(in.Revenue/100000), 0, 1)
	rec.TrendScore = trendScore(in.FirstHalfRevenue, in.SecondHalfRevenue)

	rec.PriorityScore = 100 * (s.weights.Image*rec.ImageScore +
		s.weights.Stock*rec.StockScore +
		s.weights.Turnover*rec.TurnoverScore +
		s.weights.Margin*rec.MarginScore +
		s.weights.Revenue*rec.RevenueScore +
		s.weights.Trend*rec.TrendScore)

	switch {
	case rec.PriorityScore >= 70:
		rec.PriorityClass = domain.ListingPriorityHigh
	case rec.PriorityScore >= 40:
		rec.PriorityClass = domain.ListingPriorityMedium
	default:
		rec.PriorityClass = domain.ListingPriorityLow
	}

	rec.IsRecommended = in.CurrentStock > 0 || rec.PriorityScore >= 40

	return rec, true
}

// trendScore scores first-half versus second-half revenue growth. A product
// that only sold in the second half reads as new and maximally trending; one
// with no sales at all scores zero.
func trendScore(firstHalf, secondHalf float64) float64 {
	if firstHalf <= 0 {
		if secondHalf > 0 {
			return 1.0
		}
		return 0.0
	}
	growth := (secondHalf - firstHalf) / firstHalf
	return clamp(0.5+growth, 0, 1)
}

// Prioritized sorts records by priority score descending. Gated products are
// never present in the input by construction.
func Prioritized(records []domain.WebsitePriorityRecord) []domain.WebsitePriorityRecord {
	out := append([]domain.WebsitePriorityRecord(nil), records...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PriorityScore > out[j].PriorityScore
	})
	return out
}

// HiddenGems finds products with strong margin and momentum that the overall
// score still ranks below 60.
func HiddenGems(records []domain.WebsitePriorityRecord) []domain.WebsitePriorityRecord {
	gems := make([]domain.WebsitePriorityRecord, 0)
	for _, r := range records {
		if r.MarginScore >= 0.6 && r.TrendScore >= 0.6 && r.PriorityScore < 60 {
			gems = append(gems, r)
		}
	}
	sort.SliceStable(gems, func(i, j int) bool {
		return gems[i].PriorityScore > gems[j].PriorityScore
	})
	return gems
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
