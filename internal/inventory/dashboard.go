package inventory

import (
	"context"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/shopstock/shopstock/internal/domain"
	"golang.org/x/sync/errgroup"
)

// Summary is the inventory dashboard.
type Summary struct {
	TotalProducts      int64   `json:"totalProducts"`
	OutOfStockProducts int64   `json:"outOfStockProducts"`
	LowStockProducts   int64   `json:"lowStockProducts"`
	PendingOrders      int64   `json:"pendingOrders"`
	WindowDays         int     `json:"windowDays"`
	OrderCount         int     `json:"orderCount"`
	OrderValueMean     float64 `json:"orderValueMean"`
	OrderValueMedian   float64 `json:"orderValueMedian"`
}

// Summary gathers the dashboard counters concurrently. Order value
// statistics cover orders placed in the last windowDays days.
func (s *Service) Summary(ctx context.Context, windowDays int) (*Summary, error) {
	if windowDays <= 0 {
		windowDays = 30
	}
	sum := &Summary{WindowDays: windowDays}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		sum.TotalProducts, err = s.store.Products.CountProducts(gctx, "")
		return
	})
	g.Go(func() (err error) {
		sum.OutOfStockProducts, err = s.store.Products.CountProducts(gctx, "out")
		return
	})
	g.Go(func() (err error) {
		sum.LowStockProducts, err = s.store.Products.CountProducts(gctx, "low")
		return
	})
	g.Go(func() (err error) {
		sum.PendingOrders, err = s.store.Orders.CountByStatus(gctx, domain.OrderStatusPending)
		return
	})
	g.Go(func() error {
		totals, err := s.store.Orders.Totals(gctx, time.Now().AddDate(0, 0, -windowDays))
		if err != nil {
			return err
		}
		values := make(stats.Float64Data, 0, len(totals))
		for _, t := range totals {
			values = append(values, t.InexactFloat64())
		}
		sum.OrderCount = len(values)
		if len(values) == 0 {
			return nil
		}
		if sum.OrderValueMean, err = values.Mean(); err != nil {
			return err
		}
		if sum.OrderValueMedian, err = values.Median(); err != nil {
			return err
		}
		sum.OrderValueMean, _ = stats.Round(sum.OrderValueMean, 2)
		sum.OrderValueMedian, _ = stats.Round(sum.OrderValueMedian, 2)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sum, nil
}

// CountLowStock is used by the periodic sweep.
func (s *Service) CountLowStock(ctx context.Context) (int64, error) {
	return s.store.Products.CountProducts(ctx, "low")
}
