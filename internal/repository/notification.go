package repository

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/shopstock/shopstock/internal/apperr"
	"github.com/shopstock/shopstock/internal/domain"
	"gorm.io/gorm"
)

// GormNotificationRepository is the GORM implementation of NotificationRepository
type GormNotificationRepository struct {
	db *gorm.DB
}

func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

func (r *GormNotificationRepository) CreateOrderNotification(ctx context.Context, n *domain.OrderNotification) error {
	return errors.Wrap(r.db.WithContext(ctx).Create(n).Error, "create order notification")
}

func (r *GormNotificationRepository) GetOrderNotificationByOrder(ctx context.Context, orderID int64) (*domain.OrderNotification, error) {
	var n domain.OrderNotification
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("order notification for order", orderID)
	}
	if err != nil {
		return nil, errors.Wrap(err, "query order notification")
	}
	return &n, nil
}

func (r *GormNotificationRepository) UpdateOrderNotification(ctx context.Context, id int64, status, message string) error {
	err := r.db.WithContext(ctx).Model(&domain.OrderNotification{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"message":    message,
			"updated_at": time.Now(),
		}).Error
	return errors.Wrap(err, "update order notification")
}

func (r *GormNotificationRepository) ListOrderNotificationsByShops(ctx context.Context, shopIDs []int64) ([]*domain.OrderNotification, error) {
	var rows []*domain.OrderNotification
	if len(shopIDs) == 0 {
		return rows, nil
	}
	err := r.db.WithContext(ctx).
		Preload("Order").
		Preload("Order.Items").
		Where("shop_id IN ?", shopIDs).
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	return rows, errors.Wrap(err, "query order notifications")
}

func (r *GormNotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	return errors.Wrap(r.db.WithContext(ctx).Create(n).Error, "create notification")
}

func (r *GormNotificationRepository) Get(ctx context.Context, id int64) (*domain.Notification, error) {
	var n domain.Notification
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("notification", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "query notification")
	}
	return &n, nil
}

func (r *GormNotificationRepository) ListByShop(ctx context.Context, shopID int64, unreadOnly bool, page, pageSize int) ([]*domain.Notification, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.Notification{}).Where("shop_id = ?", shopID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count notifications")
	}

	var rows []*domain.Notification
	err := query.Order("created_at DESC, id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&rows).Error
	return rows, total, errors.Wrap(err, "query notifications")
}

func (r *GormNotificationRepository) SetRead(ctx context.Context, id int64, read bool) error {
	err := r.db.WithContext(ctx).Model(&domain.Notification{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_read":    read,
			"updated_at": time.Now(),
		}).Error
	return errors.Wrap(err, "update notification")
}

func (r *GormNotificationRepository) DeleteReadBefore(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("is_read = ? AND created_at < ?", true, before).
		Delete(&domain.Notification{})
	return res.RowsAffected, errors.Wrap(res.Error, "delete notifications")
}
