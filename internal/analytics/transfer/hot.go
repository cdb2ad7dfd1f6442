package transfer

import (
	"sort"
	"time"

	"github.com/retailpulse/inventory-intel/internal/domain"
)

// HotScore weighs recent growth, purchase frequency and sales volume for one
// article at one store.
type HotScore struct {
	Article   string  `json:"article"`
	Score     float64 `json:"score"`
	Trend     float64 `json:"trend"`
	Frequency float64 `json:"frequency"`
	Volume    float64 `json:"volume"`
}

const (
	hotTrendWeight     = 0.4
	hotFrequencyWeight = 0.3
	hotVolumeWeight    = 0.3
)

// HotProducts ranks the store's articles by hot score and returns the top N.
// sales must already be scoped to the store; the trend component compares the
// recent half of the window against the older half.
func HotProducts(sales []domain.SalesRecord, asOf time.Time, periodDays, topN int) []HotScore {
	if topN <= 0 || len(sales) == 0 {
		return nil
	}

	half := asOf.AddDate(0, 0, -periodDays/2)

	type acc struct {
		oldQty, recentQty float64
		totalQty          float64
		days              map[string]bool
	}
	byArticle := make(map[string]*acc)

	for _, s := range sales {
		a, ok := byArticle[s.Article]
		if !ok {
			a = &acc{days: make(map[string]bool)}
			byArticle[s.Article] = a
		}
		a.totalQty += s.Quantity
		a.days[s.SoldAt.Format("2006-01-02")] = true
		if s.SoldAt.Before(half) {
			a.oldQty += s.Quantity
		} else {
			a.recentQty += s.Quantity
		}
	}

	var maxVolume float64
	for _, a := range byArticle {
		if a.totalQty > maxVolume {
			maxVolume = a.totalQty
		}
	}
	if maxVolume <= 0 {
		return nil
	}

	scores := make([]HotScore, 0, len(byArticle))
	for article, a := range byArticle {
		s := HotScore{
			Article:   article,
			Trend:     trendComponent(a.oldQty, a.recentQty),
			Frequency: clamp(float64(len(a.days))/float64(periodDays), 0, 1),
			Volume:    a.totalQty / maxVolume,
		}
		s.Score = hotTrendWeight*s.Trend + hotFrequencyWeight*s.Frequency + hotVolumeWeight*s.Volume
		scores = append(scores, s)
	}

	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		return scores[i].Article < scores[j].Article
	})

	if len(scores) > topN {
		scores = scores[:topN]
	}
	return scores
}

// trendComponent maps recent-vs-old growth into 0..1, with flat demand at 0.5.
func trendComponent(oldQty, recentQty float64) float64 {
	if oldQty <= 0 {
		if recentQty > 0 {
			return 1.0
		}
		return 0.0
	}
	growth := (recentQty - oldQty) / oldQty
	return clamp(0.5+growth/2, 0, 1)
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
