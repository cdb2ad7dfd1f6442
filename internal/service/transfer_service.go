package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/retailpulse/inventory-intel/internal/analytics/transfer"
	"github.com/retailpulse/inventory-intel/internal/config"
	"github.com/retailpulse/inventory-intel/internal/domain"
	"github.com/retailpulse/inventory-intel/internal/repository"
)

// TransferService computes warehouse-to-store transfer suggestions on demand.
// Nothing here is persisted.
type TransferService struct {
	sales   repository.SalesRepository
	stock   repository.StockRepository
	catalog repository.CatalogRepository

	recommender *transfer.Recommender
	cfg         *config.Config
}

func NewTransferService(
	sales repository.SalesRepository,
	stock repository.StockRepository,
	catalog repository.CatalogRepository,
	cfg *config.Config,
) *TransferService {
	return &TransferService{
		sales:   sales,
		stock:   stock,
		catalog: catalog,
		recommender: transfer.NewRecommender(transfer.Config{
			PeriodDays:   cfg.Analytics.HistoryDays,
			CoverDays:    float64(cfg.Analytics.TransferCover),
			CriticalDays: cfg.Policy.TransferCriticalDays,
			HighDays:     cfg.Policy.TransferHighDays,
			HotBonus:     cfg.Policy.TransferHotBonus,
			HotTopN:      cfg.Analytics.HotTopN,
		}),
		cfg: cfg,
	}
}

// Recommend builds transfer suggestions from the first warehouse store found.
func (s *TransferService) Recommend(ctx context.Context, asOf time.Time) ([]domain.TransferRecommendation, error) {
	stores, err := s.catalog.GetStores(ctx)
	if err != nil {
		return nil, err
	}

	var warehouse *domain.Store
	destinations := make([]domain.Store, 0, len(stores))
	for _, st := range stores {
		if st.IsWarehouse && warehouse == nil {
			wh := st
			warehouse = &wh
			continue
		}
		if !st.IsWarehouse {
			destinations = append(destinations, st)
		}
	}
	if warehouse == nil {
		return nil, fmt.Errorf("no warehouse store configured")
	}

	products, err := s.catalog.GetProducts(ctx)
	if err != nil {
		return nil, err
	}
	warehouseStock, err := s.stock.GetStoreStock(ctx, warehouse.ID)
	if err != nil {
		return nil, err
	}

	since := asOf.AddDate(0, 0, -s.cfg.Analytics.HistoryDays)

	// Load each destination's ledger and balances concurrently.
	demands := make([]transfer.StoreDemand, len(destinations))
	g, gctx := errgroup.WithContext(ctx)
	for i, st := range destinations {
		i, st := i, st
		g.Go(func() error {
			sales, err := s.sales.GetStoreSalesSince(gctx, st.ID, since)
			if err != nil {
				return fmt.Errorf("failed to load sales for store %d: %w", st.ID, err)
			}
			stock, err := s.stock.GetStoreStock(gctx, st.ID)
			if err != nil {
				return fmt.Errorf("failed to load stock for store %d: %w", st.ID, err)
			}
			demands[i] = transfer.StoreDemand{Store: st, Sales: sales, Stock: stock}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return s.recommender.Recommend(*warehouse, warehouseStock, demands, products, asOf), nil
}

// HotProducts ranks a single store's hottest articles.
func (s *TransferService) HotProducts(ctx context.Context, storeID int64, asOf time.Time) ([]transfer.HotScore, error) {
	since := asOf.AddDate(0, 0, -s.cfg.Analytics.HistoryDays)
	sales, err := s.sales.GetStoreSalesSince(ctx, storeID, since)
	if err != nil {
		return nil, err
	}
	return transfer.HotProducts(sales, asOf, s.cfg.Analytics.HistoryDays, s.cfg.Analytics.HotTopN), nil
}

// StorePerformance summarizes per-store sales velocity over the period,
// loading stores in parallel.
func (s *TransferService) StorePerformance(ctx context.Context, asOf time.Time) ([]domain.StorePerformance, error) {
	stores, err := s.catalog.GetStores(ctx)
	if err != nil {
		return nil, err
	}

	since := asOf.AddDate(0, 0, -s.cfg.Analytics.HistoryDays)

	var mu sync.Mutex
	out := make([]domain.StorePerformance, 0, len(stores))

	g, gctx := errgroup.WithContext(ctx)
	for _, st := range stores {
		st := st
		if st.IsWarehouse {
			continue
		}
		g.Go(func() error {
			sales, err := s.sales.GetStoreSalesSince(gctx, st.ID, since)
			if err != nil {
				return fmt.Errorf("failed to load sales for store %d: %w", st.ID, err)
			}

			perf := domain.StorePerformance{StoreID: st.ID, StoreName: st.Name}
			articles := make(map[string]bool)
			for _, row := range sales {
				perf.TotalSold += row.Quantity
				perf.TotalRevenue += row.Revenue
				articles[row.Article] = true
			}
			perf.ActiveSKUs = len(articles)
			perf.HotSKUs = len(transfer.HotProducts(sales, asOf, s.cfg.Analytics.HistoryDays, s.cfg.Analytics.HotTopN))

			mu.Lock()
			out = append(out, perf)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool { return out[i].TotalRevenue > out[j].TotalRevenue })
	return out, nil
}
