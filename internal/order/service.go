// Package order implements the checkout workflow: a user's bucket is split
// into one order per shop, stock is decremented under a conditional update
// and every decrement is written to the stock ledger.
package order

import (
	"context"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/shopstock/shopstock/internal/apperr"
	"github.com/shopstock/shopstock/internal/domain"
	"github.com/shopstock/shopstock/internal/events"
	"github.com/shopstock/shopstock/internal/notify"
	"github.com/shopstock/shopstock/internal/repository"
	"github.com/shopstock/shopstock/pkg/common"
	"go.uber.org/zap"
)

type Service struct {
	store   *repository.Store
	emitter *notify.Emitter
}

func NewService(store *repository.Store, emitter *notify.Emitter) *Service {
	return &Service{store: store, emitter: emitter}
}

type PlacedItem struct {
	ProductID int64           `json:"productId,string"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type PlacedOrder struct {
	OrderID     int64           `json:"orderId,string"`
	ShopID      int64           `json:"shopId,string"`
	ShopName    string          `json:"shopName"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Items       []PlacedItem    `json:"items"`
	Status      string          `json:"status"`
}

// OwnerNotifications is the refreshed order notification list of one shop
// owner touched by a checkout.
type OwnerNotifications struct {
	OwnerID       int64                       `json:"ownerId,string"`
	Notifications []*domain.OrderNotification `json:"notifications"`
}

type CheckoutResult struct {
	Orders               []PlacedOrder        `json:"orders"`
	UpdatedNotifications []OwnerNotifications `json:"updatedNotifications,omitempty"`
}

// shopGroup is the unit of atomicity: the bucket items of one shop.
type shopGroup struct {
	shop  *domain.Shop
	items []domain.BucketItem
}

// partitionByShop groups items by shop, keeping groups in the order their
// shop first appears and items in bucket order.
func partitionByShop(items []domain.BucketItem) []*shopGroup {
	var groups []*shopGroup
	index := make(map[int64]*shopGroup)
	for _, item := range items {
		g, ok := index[item.ShopID]
		if !ok {
			g = &shopGroup{shop: item.Shop}
			if g.shop == nil {
				g.shop = &domain.Shop{ID: item.ShopID}
			}
			index[item.ShopID] = g
			groups = append(groups, g)
		}
		g.items = append(g.items, item)
	}
	return groups
}

// precheckStock compares the bucket snapshot with the requested quantities,
// summed per product across shops. It is advisory; the conditional
// decrement is authoritative.
func precheckStock(items []domain.BucketItem) error {
	requested := make(map[int64]int)
	var order []int64
	for _, item := range items {
		if item.Product == nil {
			return apperr.NotFound("product", item.ProductID)
		}
		if _, ok := requested[item.ProductID]; !ok {
			order = append(order, item.ProductID)
		}
		requested[item.ProductID] += item.Quantity
	}
	products := make(map[int64]*domain.Product)
	for _, item := range items {
		products[item.ProductID] = item.Product
	}
	for _, id := range order {
		p := products[id]
		if p.Quantity < requested[id] {
			return &apperr.InsufficientStockError{
				ProductID:   p.ID,
				ProductName: p.Name,
				Available:   p.Quantity,
				Requested:   requested[id],
			}
		}
	}
	return nil
}

// Checkout turns the user's bucket into one PENDING order per shop.
//
// Each shop group commits in its own transaction: order, items, stock
// decrements, ledger rows and notifications land together or not at all.
// Groups committed before a failing group stay committed, but the bucket is
// only cleared once every group has committed, so a failed checkout leaves it
// intact for a retry.
func (s *Service) Checkout(ctx context.Context, userID int64) (*CheckoutResult, error) {
	bucket, err := s.store.Buckets.GetWithItems(ctx, userID)
	if err != nil {
		return nil, err
	}
	if bucket == nil || len(bucket.Items) == 0 {
		return nil, &apperr.EmptyBucketError{UserID: userID}
	}
	if err = precheckStock(bucket.Items); err != nil {
		return nil, err
	}

	var (
		result   = &CheckoutResult{}
		consumed []int64
		pending  []events.Event
	)
	for _, g := range partitionByShop(bucket.Items) {
		placed, evts, err := s.placeShopOrder(ctx, userID, g)
		if err != nil {
			zap.L().Error("checkout shop group failed",
				zap.String("namespace", "order"),
				zap.Int64("user_id", userID),
				zap.Int64("shop_id", g.shop.ID),
				zap.Int("committed_orders", len(result.Orders)),
				zap.Error(err))
			s.emitter.Publish(pending...)
			return nil, err
		}
		result.Orders = append(result.Orders, *placed)
		pending = append(pending, evts...)
		for _, item := range g.items {
			consumed = append(consumed, item.ID)
		}
	}
	if _, err = s.store.Buckets.ClearItems(ctx, bucket.ID, consumed); err != nil {
		return nil, err
	}
	s.emitter.Publish(pending...)

	result.UpdatedNotifications, err = s.ownerNotifications(ctx, bucket.Items)
	if err != nil {
		zap.L().Warn("load updated order notifications", zap.String("namespace", "order"), zap.Error(err))
	}
	zap.L().Info("checkout completed",
		zap.String("namespace", "order"),
		zap.Int64("user_id", userID),
		zap.Int("orders", len(result.Orders)))
	return result, nil
}

func (s *Service) placeShopOrder(ctx context.Context, userID int64, g *shopGroup) (*PlacedOrder, []events.Event, error) {
	order := &domain.Order{
		ID:          common.UUIDint64(),
		UserID:      userID,
		ShopID:      g.shop.ID,
		Status:      domain.OrderStatusPending,
		TotalAmount: decimal.Zero,
	}
	for _, item := range g.items {
		price := item.Product.Price
		order.TotalAmount = order.TotalAmount.Add(price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		order.Items = append(order.Items, domain.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     price,
		})
	}

	var evts []events.Event
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		evts = evts[:0]
		if err := tx.Orders.Create(ctx, order); err != nil {
			return err
		}
		note := "order " + strconv.FormatInt(order.ID, 10)
		for _, item := range g.items {
			oldQty, newQty, err := tx.Products.DecrementQuantity(ctx, item.ProductID, item.Quantity)
			if err != nil {
				return err
			}
			uid := userID
			if err = tx.Ledger.Record(ctx, &domain.StockHistory{
				ProductID:   item.ProductID,
				OldQuantity: oldQty,
				NewQuantity: newQty,
				ChangeType:  domain.ChangeTypeSale,
				UserID:      &uid,
				Note:        note,
			}); err != nil {
				return err
			}
			if notify.CrossedLowStock(oldQty, newQty, item.Product.MinimumStock) {
				snapshot := *item.Product
				snapshot.Quantity = newQty
				_, evt, err := s.emitter.CreateLowStockNotification(ctx, tx.Notifications, &snapshot, g.shop.ID)
				if err != nil {
					return err
				}
				evts = append(evts, evt)
			}
		}
		_, evt, err := s.emitter.CreateOrderNotification(ctx, tx.Notifications, order)
		if err != nil {
			return err
		}
		evts = append(evts, evt)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	placed := &PlacedOrder{
		OrderID:     order.ID,
		ShopID:      order.ShopID,
		ShopName:    g.shop.Name,
		TotalAmount: order.TotalAmount,
		Status:      order.Status,
	}
	for _, item := range order.Items {
		placed.Items = append(placed.Items, PlacedItem{ProductID: item.ProductID, Quantity: item.Quantity, Price: item.Price})
	}
	return placed, evts, nil
}

func (s *Service) ownerNotifications(ctx context.Context, items []domain.BucketItem) ([]OwnerNotifications, error) {
	var owners []int64
	for _, item := range items {
		if item.Shop != nil && item.Shop.OwnerID != 0 {
			owners = append(owners, item.Shop.OwnerID)
		}
	}
	var out []OwnerNotifications
	for _, ownerID := range common.UniqueInt64s(owners) {
		rows, err := s.OwnerOrderNotifications(ctx, ownerID)
		if err != nil {
			return out, err
		}
		out = append(out, OwnerNotifications{OwnerID: ownerID, Notifications: rows})
	}
	return out, nil
}

// OwnerOrderNotifications lists the order notifications of every shop the
// owner runs, newest first.
func (s *Service) OwnerOrderNotifications(ctx context.Context, ownerID int64) ([]*domain.OrderNotification, error) {
	shops, err := s.store.Shops.ListShopsByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(shops))
	for _, shop := range shops {
		ids = append(ids, shop.ID)
	}
	return s.store.Notifications.ListOrderNotificationsByShops(ctx, ids)
}

// CheckoutMessage is the summary line returned with a successful checkout.
func CheckoutMessage(r *CheckoutResult) string {
	return fmt.Sprintf("%d order(s) created and notifications sent.", len(r.Orders))
}
