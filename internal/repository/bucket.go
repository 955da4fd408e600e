package repository

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopstock/shopstock/internal/domain"
	"github.com/shopstock/shopstock/pkg/common"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormBucketRepository is the GORM implementation of BucketRepository
type GormBucketRepository struct {
	db *gorm.DB
}

func NewGormBucketRepository(db *gorm.DB) *GormBucketRepository {
	return &GormBucketRepository{db: db}
}

func (r *GormBucketRepository) GetWithItems(ctx context.Context, userID int64) (*domain.Bucket, error) {
	var bucket domain.Bucket
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("bucket_item.created_at ASC, bucket_item.id ASC")
		}).
		Preload("Items.Product").
		Preload("Items.Shop").
		Where("user_id = ?", userID).
		First(&bucket).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "query bucket")
	}
	return &bucket, nil
}

func (r *GormBucketRepository) GetOrCreate(ctx context.Context, userID int64) (*domain.Bucket, error) {
	var bucket domain.Bucket
	err := r.db.WithContext(ctx).
		Where(domain.Bucket{UserID: userID}).
		Attrs(domain.Bucket{ID: common.UUIDint64()}).
		FirstOrCreate(&bucket).Error
	if err != nil {
		return nil, errors.Wrap(err, "create bucket")
	}
	return &bucket, nil
}

// UpsertItem inserts a (bucket, product, shop) line or overwrites its
// quantity. It reports whether the line was created by this call.
func (r *GormBucketRepository) UpsertItem(ctx context.Context, bucketID, productID, shopID int64, quantity int) (bool, error) {
	db := r.db.WithContext(ctx)
	item := domain.BucketItem{
		ID:        common.UUIDint64(),
		BucketID:  bucketID,
		ProductID: productID,
		ShopID:    shopID,
		Quantity:  quantity,
	}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "bucket_id"}, {Name: "product_id"}, {Name: "shop_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"quantity", "updated_at"}),
	}).Create(&item).Error
	if err != nil {
		return false, errors.Wrap(err, "upsert bucket item")
	}
	var ids []int64
	err = db.Model(&domain.BucketItem{}).
		Where("bucket_id = ? AND product_id = ? AND shop_id = ?", bucketID, productID, shopID).
		Pluck("id", &ids).Error
	if err != nil {
		return false, errors.Wrap(err, "query bucket item")
	}
	return len(ids) == 1 && ids[0] == item.ID, nil
}

func (r *GormBucketRepository) RemoveItems(ctx context.Context, bucketID, shopID int64, productIDs []int64) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("bucket_id = ? AND shop_id = ? AND product_id IN ?", bucketID, shopID, productIDs).
		Delete(&domain.BucketItem{})
	return res.RowsAffected, errors.Wrap(res.Error, "delete bucket items")
}

func (r *GormBucketRepository) ClearItems(ctx context.Context, bucketID int64, itemIDs []int64) (int64, error) {
	query := r.db.WithContext(ctx).Where("bucket_id = ?", bucketID)
	if itemIDs != nil {
		if len(itemIDs) == 0 {
			return 0, nil
		}
		query = query.Where("id IN ?", itemIDs)
	}
	res := query.Delete(&domain.BucketItem{})
	return res.RowsAffected, errors.Wrap(res.Error, "clear bucket items")
}
