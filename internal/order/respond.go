package order

import (
	"context"
	"strconv"
	"strings"

	"github.com/shopstock/shopstock/internal/apperr"
	"github.com/shopstock/shopstock/internal/domain"
	"github.com/shopstock/shopstock/internal/events"
	"github.com/shopstock/shopstock/internal/repository"
	"go.uber.org/zap"
)

// RespondToOrder records the shop owner's decision on the order
// notification and mirrors the status onto the order. Applying the same
// decision twice leaves the same state.
func (s *Service) RespondToOrder(ctx context.Context, orderID int64, decision, message string) (*domain.OrderNotification, error) {
	decision = strings.ToUpper(strings.TrimSpace(decision))
	if !domain.ValidOrderDecision(decision) {
		return nil, apperr.Validation("Invalid status. Use ACCEPTED or REJECTED.")
	}

	var updated *domain.OrderNotification
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		n, err := tx.Notifications.GetOrderNotificationByOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if err = tx.Notifications.UpdateOrderNotification(ctx, n.ID, decision, message); err != nil {
			return err
		}
		if err = tx.Orders.UpdateStatus(ctx, orderID, decision); err != nil {
			return err
		}
		updated, err = tx.Notifications.GetOrderNotificationByOrder(ctx, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.emitter.Publish(events.New(events.TopicOrderResponded, strconv.FormatInt(orderID, 10), events.OrderResponded{
		OrderID: orderID,
		ShopID:  updated.ShopID,
		Status:  decision,
		Message: message,
	}))
	zap.L().Info("order responded",
		zap.String("namespace", "order"),
		zap.Int64("order_id", orderID),
		zap.String("status", decision))
	return updated, nil
}

// RespondAsOwner is RespondToOrder restricted to the owner of the order's shop.
func (s *Service) RespondAsOwner(ctx context.Context, ownerID, orderID int64, decision, message string) (*domain.OrderNotification, error) {
	if !domain.ValidOrderDecision(strings.ToUpper(strings.TrimSpace(decision))) {
		return nil, apperr.Validation("Invalid status. Use ACCEPTED or REJECTED.")
	}
	n, err := s.store.Notifications.GetOrderNotificationByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	shop, err := s.store.Shops.GetShop(ctx, n.ShopID)
	if err != nil {
		return nil, err
	}
	if shop.OwnerID != ownerID {
		return nil, apperr.Forbidden("only the shop owner can respond to this order")
	}
	return s.RespondToOrder(ctx, orderID, decision, message)
}
