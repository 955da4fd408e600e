// Package inventory changes stock outside of checkout and reports on it.
package inventory

import (
	"context"
	"io"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/shopstock/shopstock/internal/apperr"
	"github.com/shopstock/shopstock/internal/domain"
	"github.com/shopstock/shopstock/internal/events"
	"github.com/shopstock/shopstock/internal/notify"
	"github.com/shopstock/shopstock/internal/repository"
	"go.uber.org/zap"
)

type Service struct {
	store   *repository.Store
	emitter *notify.Emitter
}

func NewService(store *repository.Store, emitter *notify.Emitter) *Service {
	return &Service{store: store, emitter: emitter}
}

// QuantityUpdate sets a product's on-hand quantity from a shop's view.
type QuantityUpdate struct {
	ShopID    int64  `json:"-"`
	ProductID int64  `json:"-"`
	UserID    int64  `json:"-"`
	Quantity  *int   `json:"quantity"`
	Action    string `json:"action"`
	Note      string `json:"note"`
}

// UpdateQuantity overwrites the quantity, records one ledger row and raises
// a low stock notification when the new quantity is below the minimum. The
// shop must sell the product; any other product is reported as missing.
func (s *Service) UpdateQuantity(ctx context.Context, in QuantityUpdate) (*domain.Product, error) {
	if in.Quantity == nil || *in.Quantity < 0 {
		return nil, apperr.Validation("Quantity must be a non-negative number.")
	}
	if in.ShopID == 0 {
		return nil, apperr.Validation("shopId is required.")
	}
	action := strings.TrimSpace(in.Action)
	if action == "" {
		action = domain.ChangeTypeManualUpdate
	}

	var (
		product *domain.Product
		pending []events.Event
	)
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		pending = pending[:0]
		if _, err := tx.Shops.GetShop(ctx, in.ShopID); err != nil {
			return err
		}
		sells, err := tx.Shops.ShopSellsProducts(ctx, in.ShopID, []int64{in.ProductID})
		if err != nil {
			return err
		}
		if !sells {
			return apperr.NotFound("product", in.ProductID)
		}
		oldQty, err := tx.Products.SetQuantity(ctx, in.ProductID, *in.Quantity)
		if err != nil {
			return err
		}
		entry := &domain.StockHistory{
			ProductID:   in.ProductID,
			OldQuantity: oldQty,
			NewQuantity: *in.Quantity,
			ChangeType:  action,
			Note:        in.Note,
		}
		if in.UserID != 0 {
			uid := in.UserID
			entry.UserID = &uid
		}
		if err = tx.Ledger.Record(ctx, entry); err != nil {
			return err
		}
		product, err = tx.Products.GetProduct(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if product.IsLowStock() {
			_, evt, err := s.emitter.CreateLowStockNotification(ctx, tx.Notifications, product, in.ShopID)
			if err != nil {
				return err
			}
			pending = append(pending, evt)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.emitter.Publish(pending...)
	zap.L().Info("product quantity updated",
		zap.String("namespace", "inventory"),
		zap.Int64("product_id", product.ID),
		zap.Int("quantity", product.Quantity),
		zap.String("action", action))
	return product, nil
}

func (s *Service) StockHistory(ctx context.Context, productID int64, page, pageSize int) ([]*domain.StockHistory, int64, error) {
	if _, err := s.store.Products.GetProduct(ctx, productID); err != nil {
		return nil, 0, err
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.store.Ledger.ListByProduct(ctx, productID, page, pageSize)
}

// ExportStockHistory writes the product's full ledger as CSV, newest first.
func (s *Service) ExportStockHistory(ctx context.Context, productID int64, w io.Writer) error {
	if _, err := s.store.Products.GetProduct(ctx, productID); err != nil {
		return err
	}
	rows, _, err := s.store.Ledger.ListByProduct(ctx, productID, 0, 0)
	if err != nil {
		return err
	}
	return gocsv.Marshal(rows, w)
}
