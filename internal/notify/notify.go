// Package notify creates the records that tell shop owners about new orders
// and low stock, and the matching domain events.
package notify

import (
	"context"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/shopstock/shopstock/internal/apperr"
	"github.com/shopstock/shopstock/internal/domain"
	"github.com/shopstock/shopstock/internal/events"
	"github.com/shopstock/shopstock/internal/repository"
	"github.com/shopstock/shopstock/pkg/common"
	"go.uber.org/zap"
)

// Emitter writes notifications through the repository it is handed, so
// callers inside a transaction pass the transaction-bound repository.
// Events are returned to the caller and published only after commit.
type Emitter struct {
	bus *events.Bus
}

func NewEmitter(bus *events.Bus) *Emitter {
	return &Emitter{bus: bus}
}

// CrossedLowStock reports whether a decrement from oldQty to newQty moved
// the product from at-or-above the minimum to strictly below it.
func CrossedLowStock(oldQty, newQty, minimum int) bool {
	return oldQty >= minimum && newQty < minimum
}

func LowStockMessage(p *domain.Product) string {
	return fmt.Sprintf("Low stock alert: %q only has %d left (minimum: %d).", p.Name, p.Quantity, p.MinimumStock)
}

func OrderMessage(orderID int64, itemCount int, total decimal.Decimal) string {
	return fmt.Sprintf("New order %d placed for %d item(s) totaling $%s.", orderID, itemCount, total.StringFixed(2))
}

// CreateLowStockNotification records a low stock alert for product in shop.
// product must carry the quantity after the change.
func (e *Emitter) CreateLowStockNotification(ctx context.Context, repo repository.NotificationRepository,
	product *domain.Product, shopID int64) (*domain.Notification, events.Event, error) {
	if shopID == 0 {
		return nil, events.Event{}, apperr.Validation("shop id is required for a low stock notification")
	}
	productID := product.ID
	n := &domain.Notification{
		ID:        common.UUIDint64(),
		Message:   LowStockMessage(product),
		Type:      domain.NotificationTypeLowStock,
		ProductID: &productID,
		ShopID:    &shopID,
	}
	if err := repo.Create(ctx, n); err != nil {
		return nil, events.Event{}, err
	}
	evt := events.New(events.TopicStockLow, strconv.FormatInt(product.ID, 10), events.StockLow{
		ProductID:    product.ID,
		ShopID:       shopID,
		ProductName:  product.Name,
		Quantity:     product.Quantity,
		MinimumStock: product.MinimumStock,
	})
	return n, evt, nil
}

// CreateOrderNotification records the owner-facing notification of a newly
// placed order. There is exactly one per order.
func (e *Emitter) CreateOrderNotification(ctx context.Context, repo repository.NotificationRepository,
	order *domain.Order) (*domain.OrderNotification, events.Event, error) {
	n := &domain.OrderNotification{
		ID:      common.UUIDint64(),
		ShopID:  order.ShopID,
		OrderID: order.ID,
		Status:  order.Status,
		Message: OrderMessage(order.ID, len(order.Items), order.TotalAmount),
	}
	if err := repo.CreateOrderNotification(ctx, n); err != nil {
		return nil, events.Event{}, err
	}
	evt := events.New(events.TopicOrderPlaced, strconv.FormatInt(order.ID, 10), events.OrderPlaced{
		OrderID:     order.ID,
		UserID:      order.UserID,
		ShopID:      order.ShopID,
		TotalAmount: order.TotalAmount,
		ItemCount:   len(order.Items),
	})
	return n, evt, nil
}

// Publish hands committed events to the bus.
func (e *Emitter) Publish(evts ...events.Event) {
	if e == nil || len(evts) == 0 {
		return
	}
	zap.L().Debug("publish domain events", zap.String("namespace", "notify"), zap.Int("count", len(evts)))
	e.bus.Publish(evts...)
}
