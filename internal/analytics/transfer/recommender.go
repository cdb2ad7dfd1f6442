package transfer

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/retailpulse/inventory-intel/internal/domain"
)

// Config holds the transfer policy.
type Config struct {
	PeriodDays    int     // sales lookback for local demand
	CoverDays     float64 // days of cover a transfer should restore
	CriticalDays  float64
	HighDays      float64
	HotBonus      float64
	HotTopN       int
}

func DefaultConfig() Config {
	return Config{
		PeriodDays:   90,
		CoverDays:    14,
		CriticalDays: 7,
		HighDays:     10,
		HotBonus:     20,
		HotTopN:      10,
	}
}

// StoreDemand is the recommender's view of one destination store: its own
// sales history (local demand, never the global average) and balances.
type StoreDemand struct {
	Store domain.Store
	Sales []domain.SalesRecord        // this store's ledger rows over the period
	Stock map[string]float64          // article -> on-hand at this store
}

// Recommender proposes warehouse-to-store rebalancing moves.
type Recommender struct {
	cfg Config
}

func NewRecommender(cfg Config) *Recommender {
	if cfg.PeriodDays <= 0 {
		cfg.PeriodDays = 90
	}
	return &Recommender{cfg: cfg}
}

// Recommend computes transfer suggestions for every product with positive
// warehouse stock. Warehouse availability is decremented as quantities are
// assigned, so the total recommended outflow can never exceed what the
// warehouse holds. Output is sorted by priority score descending.
func (r *Recommender) Recommend(warehouse domain.Store, warehouseStock map[string]float64, stores []StoreDemand, products map[string]domain.Product, asOf time.Time) []domain.TransferRecommendation {
	available := make(map[string]float64, len(warehouseStock))
	for article, qty := range warehouseStock {
		if qty > 0 {
			available[article] = qty
		}
	}
	if len(available) == 0 {
		return nil
	}

	type candidate struct {
		rec    domain.TransferRecommendation
		needed float64
	}
	candidates := make([]candidate, 0)

	for _, sd := range stores {
		if sd.Store.IsWarehouse {
			continue
		}

		avgByArticle := localAvgDailySales(sd.Sales, r.cfg.PeriodDays)
		hot := hotSet(HotProducts(sd.Sales, asOf, r.cfg.PeriodDays, r.cfg.HotTopN))

		for article := range available {
			avg := avgByArticle[article]
			if avg <= 0 {
				continue
			}

			storeStock := sd.Stock[article]
			days := storeStock / avg
			if days >= r.cfg.CoverDays {
				continue
			}

			needed := math.Ceil(math.Max(1, avg*r.cfg.CoverDays-storeStock))

			priority, score := r.priority(days)
			if hot[article] {
				score += r.cfg.HotBonus
			}

			rec := domain.TransferRecommendation{
				Article:       article,
				ProductName:   products[article].Name,
				FromStoreID:   warehouse.ID,
				ToStoreID:     sd.Store.ID,
				ToStoreName:   sd.Store.Name,
				Priority:      priority,
				PriorityScore: score,
				DaysOfStock:   days,
				Justification: justification(days, avg, hot[article]),
			}
			candidates = append(candidates, candidate{rec: rec, needed: needed})
		}
	}

	// Allocate warehouse stock to the most urgent destinations first.
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].rec.PriorityScore != candidates[j].rec.PriorityScore {
			return candidates[i].rec.PriorityScore > candidates[j].rec.PriorityScore
		}
		return candidates[i].rec.DaysOfStock < candidates[j].rec.DaysOfStock
	})

	out := make([]domain.TransferRecommendation, 0, len(candidates))
	for _, c := range candidates {
		left := available[c.rec.Article]
		if left <= 0 {
			continue
		}
		qty := math.Min(c.needed, left)
		available[c.rec.Article] = left - qty

		rec := c.rec
		rec.Quantity = qty
		out = append(out, rec)
	}

	return out
}

func (r *Recommender) priority(daysOfStock float64) (string, float64) {
	switch {
	case daysOfStock < r.cfg.CriticalDays:
		return domain.TransferPriorityCritical, 100
	case daysOfStock < r.cfg.HighDays:
		return domain.TransferPriorityHigh, 75
	default:
		return domain.TransferPriorityMedium, 50
	}
}

func justification(days, avgDaily float64, hot bool) string {
	msg := fmt.Sprintf("%.1f days of cover at %.2f units/day local demand", days, avgDaily)
	if hot {
		msg += ", hot at this store"
	}
	return msg
}

// localAvgDailySales computes per-article average daily sales from a single
// store's own ledger rows.
func localAvgDailySales(sales []domain.SalesRecord, periodDays int) map[string]float64 {
	totals := make(map[string]float64)
	for _, s := range sales {
		totals[s.Article] += s.Quantity
	}
	avgs := make(map[string]float64, len(totals))
	for article, total := range totals {
		avgs[article] = total / float64(periodDays)
	}
	return avgs
}

func hotSet(scores []HotScore) map[string]bool {
	set := make(map[string]bool, len(scores))
	for _, s := range scores {
		set[s.Article] = true
	}
	return set
}
