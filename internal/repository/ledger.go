package repository

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/shopstock/shopstock/internal/domain"
	"github.com/shopstock/shopstock/pkg/common"
	"gorm.io/gorm"
)

// GormStockLedger is the GORM implementation of StockLedger
type GormStockLedger struct {
	db *gorm.DB
}

func NewGormStockLedger(db *gorm.DB) *GormStockLedger {
	return &GormStockLedger{db: db}
}

// Record appends one entry. Change is always derived from the quantities.
func (r *GormStockLedger) Record(ctx context.Context, entry *domain.StockHistory) error {
	if entry.ID == 0 {
		entry.ID = common.UUIDint64()
	}
	entry.Change = entry.NewQuantity - entry.OldQuantity
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	return errors.Wrap(r.db.WithContext(ctx).Create(entry).Error, "record stock history")
}

func (r *GormStockLedger) ListByProduct(ctx context.Context, productID int64, page, pageSize int) ([]*domain.StockHistory, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.StockHistory{}).Where("product_id = ?", productID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count stock history")
	}

	var rows []*domain.StockHistory
	query = query.Order("id DESC")
	if pageSize > 0 {
		query = query.Offset((page - 1) * pageSize).Limit(pageSize)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, errors.Wrap(err, "query stock history")
	}
	return rows, total, nil
}

func (r *GormStockLedger) CountByProduct(ctx context.Context, productID int64) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&domain.StockHistory{}).Where("product_id = ?", productID).Count(&total).Error
	return total, errors.Wrap(err, "count stock history")
}
