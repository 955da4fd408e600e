package inventory

import (
	"context"

	"github.com/shopstock/shopstock/internal/apperr"
	"github.com/shopstock/shopstock/internal/domain"
)

// ShopNotifications lists the general notifications of a shop run by ownerID.
func (s *Service) ShopNotifications(ctx context.Context, ownerID, shopID int64, unreadOnly bool, page, pageSize int) ([]*domain.Notification, int64, error) {
	shop, err := s.store.Shops.GetShop(ctx, shopID)
	if err != nil {
		return nil, 0, err
	}
	if shop.OwnerID != ownerID {
		return nil, 0, apperr.Forbidden("shop %d is not managed by the current user", shopID)
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.store.Notifications.ListByShop(ctx, shopID, unreadOnly, page, pageSize)
}

// MarkNotification flips the read flag. A notification of another shop is
// reported as missing.
func (s *Service) MarkNotification(ctx context.Context, shopID, notificationID int64, read bool) (*domain.Notification, error) {
	n, err := s.store.Notifications.Get(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	if n.ShopID == nil || *n.ShopID != shopID {
		return nil, apperr.NotFound("notification", notificationID)
	}
	if err = s.store.Notifications.SetRead(ctx, notificationID, read); err != nil {
		return nil, err
	}
	n.IsRead = read
	return n, nil
}
