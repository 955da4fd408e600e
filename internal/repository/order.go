package repository

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/shopstock/shopstock/internal/apperr"
	"github.com/shopstock/shopstock/internal/domain"
	"github.com/shopstock/shopstock/pkg/common"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository is the GORM implementation of OrderRepository
type GormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(order).Error; err != nil {
		return errors.Wrap(err, "create order")
	}
	if len(order.Items) == 0 {
		return nil
	}
	for i := range order.Items {
		if order.Items[i].ID == 0 {
			order.Items[i].ID = common.UUIDint64()
		}
		order.Items[i].OrderID = order.ID
	}
	return errors.Wrap(db.Omit(clause.Associations).Create(&order.Items).Error, "create order items")
}

func (r *GormOrderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	var order domain.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_item.id ASC") }).
		Where("id = ?", id).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("order", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "query order")
	}
	return &order, nil
}

func (r *GormOrderRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	res := r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return errors.Wrap(res.Error, "update order status")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("order", id)
	}
	return nil
}

var orderSortColumns = map[string]string{
	"createdAt":   "orders.created_at",
	"totalAmount": "orders.total_amount",
}

func (r *GormOrderRepository) List(ctx context.Context, f OrderFilter) ([]*domain.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.Order{})
	if f.UserID != 0 {
		query = query.Where("orders.user_id = ?", f.UserID)
	}
	if f.ShopID != 0 {
		query = query.Where("orders.shop_id = ?", f.ShopID)
	}
	if f.Status != "" {
		query = query.Where("orders.status = ?", strings.ToUpper(f.Status))
	}
	if f.MinTotal != nil {
		query = query.Where("orders.total_amount >= ?", *f.MinTotal)
	}
	if f.MaxTotal != nil {
		query = query.Where("orders.total_amount <= ?", *f.MaxTotal)
	}
	if f.StartDate != nil {
		query = query.Where("orders.created_at >= ?", *f.StartDate)
	}
	if f.EndDate != nil {
		query = query.Where("orders.created_at <= ?", *f.EndDate)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count orders")
	}

	sortCol, ok := orderSortColumns[f.SortBy]
	if !ok {
		sortCol = "orders.created_at"
	}
	order := "DESC"
	if strings.EqualFold(f.SortOrder, "asc") {
		order = "ASC"
	}

	var orders []*domain.Order
	err := query.
		Preload("Shop").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_item.id ASC") }).
		Preload("Items.Product").
		Order(sortCol + " " + order).
		Offset((f.Page - 1) * f.PageSize).
		Limit(f.PageSize).
		Find(&orders).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "query orders")
	}
	return orders, total, nil
}

func (r *GormOrderRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&domain.Order{}).Where("status = ?", status).Count(&total).Error
	return total, errors.Wrap(err, "count orders")
}

func (r *GormOrderRepository) Totals(ctx context.Context, since time.Time) ([]decimal.Decimal, error) {
	var totals []decimal.Decimal
	err := r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("created_at >= ?", since).
		Pluck("total_amount", &totals).Error
	return totals, errors.Wrap(err, "query order totals")
}

func (r *GormOrderRepository) CountItemsForProduct(ctx context.Context, productID int64) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&domain.OrderItem{}).Where("product_id = ?", productID).Count(&total).Error
	return total, errors.Wrap(err, "count order items")
}
