package repository

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopstock/shopstock/internal/apperr"
	"github.com/shopstock/shopstock/internal/domain"
	"github.com/shopstock/shopstock/pkg/common"
	"gorm.io/gorm"
)

// GormShopRepository is the GORM implementation of ShopRepository
type GormShopRepository struct {
	db *gorm.DB
}

func NewGormShopRepository(db *gorm.DB) *GormShopRepository {
	return &GormShopRepository{db: db}
}

func (r *GormShopRepository) GetShop(ctx context.Context, id int64) (*domain.Shop, error) {
	var shop domain.Shop
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&shop).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("shop", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "query shop")
	}
	return &shop, nil
}

func (r *GormShopRepository) GetShopBySlug(ctx context.Context, slug string) (*domain.Shop, error) {
	var shop domain.Shop
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&shop).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("shop", slug)
	}
	if err != nil {
		return nil, errors.Wrap(err, "query shop")
	}
	return &shop, nil
}

func (r *GormShopRepository) FindShopsByIDs(ctx context.Context, ids []int64) ([]*domain.Shop, error) {
	var shops []*domain.Shop
	if len(ids) == 0 {
		return shops, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&shops).Error
	return shops, errors.Wrap(err, "query shops")
}

func (r *GormShopRepository) ListShopsByOwner(ctx context.Context, ownerID int64) ([]*domain.Shop, error) {
	var shops []*domain.Shop
	err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("id ASC").Find(&shops).Error
	return shops, errors.Wrap(err, "query shops")
}

func (r *GormShopRepository) CreateShop(ctx context.Context, shop *domain.Shop) error {
	return errors.Wrap(r.db.WithContext(ctx).Create(shop).Error, "create shop")
}

func (r *GormShopRepository) SaveShop(ctx context.Context, shop *domain.Shop) error {
	shop.UpdatedAt = time.Now()
	return errors.Wrap(r.db.WithContext(ctx).Save(shop).Error, "update shop")
}

func (r *GormShopRepository) SlugTaken(ctx context.Context, slug string, exceptID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Shop{}).
		Where("slug = ? AND id <> ?", slug, exceptID).
		Count(&count).Error
	return count > 0, errors.Wrap(err, "query shop slug")
}

func (r *GormShopRepository) NameTaken(ctx context.Context, name string, exceptID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Shop{}).
		Where("name = ? AND id <> ?", name, exceptID).
		Count(&count).Error
	return count > 0, errors.Wrap(err, "query shop name")
}

func (r *GormShopRepository) GetCategory(ctx context.Context, shopID, id int64) (*domain.Category, error) {
	var c domain.Category
	err := r.db.WithContext(ctx).Where("id = ? AND shop_id = ?", id, shopID).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("category", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "query category")
	}
	return &c, nil
}

func (r *GormShopRepository) ListCategories(ctx context.Context, shopID int64, q string) ([]*domain.Category, error) {
	query := r.db.WithContext(ctx).Where("shop_id = ?", shopID)
	if q = strings.TrimSpace(q); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}
	var categories []*domain.Category
	err := query.Order("name ASC").Find(&categories).Error
	return categories, errors.Wrap(err, "query categories")
}

func (r *GormShopRepository) CategoryNameTaken(ctx context.Context, shopID int64, name string, exceptID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Category{}).
		Where("shop_id = ? AND name = ? AND id <> ?", shopID, name, exceptID).
		Count(&count).Error
	return count > 0, errors.Wrap(err, "query category name")
}

func (r *GormShopRepository) CreateCategory(ctx context.Context, c *domain.Category) error {
	return errors.Wrap(r.db.WithContext(ctx).Create(c).Error, "create category")
}

func (r *GormShopRepository) SaveCategory(ctx context.Context, c *domain.Category) error {
	c.UpdatedAt = time.Now()
	return errors.Wrap(r.db.WithContext(ctx).Save(c).Error, "update category")
}

func (r *GormShopRepository) DeleteCategory(ctx context.Context, shopID, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("category_id = ? AND shop_id = ?", id, shopID).Delete(&domain.ProductCategory{}).Error; err != nil {
			return errors.Wrap(err, "delete category links")
		}
		res := tx.Where("id = ? AND shop_id = ?", id, shopID).Delete(&domain.Category{})
		if res.Error != nil {
			return errors.Wrap(res.Error, "delete category")
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("category", id)
		}
		return nil
	})
}

func (r *GormShopRepository) SyncCategorySlugs(ctx context.Context, shopID int64, slug string) error {
	err := r.db.WithContext(ctx).Model(&domain.Category{}).
		Where("shop_id = ?", shopID).
		Update("slug", slug).Error
	return errors.Wrap(err, "update category slugs")
}

func (r *GormShopRepository) LinkProducts(ctx context.Context, shopID, categoryID int64, productIDs []int64) (int, error) {
	db := r.db.WithContext(ctx)
	var existing []int64
	if err := db.Model(&domain.ProductCategory{}).
		Where("shop_id = ? AND category_id = ? AND product_id IN ?", shopID, categoryID, productIDs).
		Pluck("product_id", &existing).Error; err != nil {
		return 0, errors.Wrap(err, "query product links")
	}
	linked := make(map[int64]bool, len(existing))
	for _, id := range existing {
		linked[id] = true
	}

	var rows []domain.ProductCategory
	for _, pid := range common.UniqueInt64s(productIDs) {
		if linked[pid] {
			continue
		}
		rows = append(rows, domain.ProductCategory{
			ID:         common.UUIDint64(),
			ProductID:  pid,
			ShopID:     shopID,
			CategoryID: categoryID,
			CreatedAt:  time.Now(),
		})
	}
	if len(rows) == 0 {
		return 0, nil
	}
	if err := db.Create(&rows).Error; err != nil {
		return 0, errors.Wrap(err, "create product links")
	}
	return len(rows), nil
}

func (r *GormShopRepository) UnlinkProducts(ctx context.Context, shopID, categoryID int64, productIDs []int64) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("shop_id = ? AND category_id = ? AND product_id IN ?", shopID, categoryID, productIDs).
		Delete(&domain.ProductCategory{})
	return res.RowsAffected, errors.Wrap(res.Error, "delete product links")
}

func (r *GormShopRepository) ShopSellsProducts(ctx context.Context, shopID int64, productIDs []int64) (bool, error) {
	ids := common.UniqueInt64s(productIDs)
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.ProductCategory{}).
		Where("shop_id = ? AND product_id IN ?", shopID, ids).
		Distinct("product_id").
		Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, "query product links")
	}
	return count == int64(len(ids)), nil
}
