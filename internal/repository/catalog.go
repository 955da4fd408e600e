package repository

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopstock/shopstock/internal/apperr"
	"github.com/shopstock/shopstock/internal/domain"
	"gorm.io/gorm"
)

// GormCatalogRepository is the GORM implementation of CatalogRepository
type GormCatalogRepository struct {
	db *gorm.DB
}

func NewGormCatalogRepository(db *gorm.DB) *GormCatalogRepository {
	return &GormCatalogRepository{db: db}
}

func (r *GormCatalogRepository) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("product", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "query product")
	}
	return &p, nil
}

func (r *GormCatalogRepository) FindProductsByIDs(ctx context.Context, ids []int64) ([]*domain.Product, error) {
	var products []*domain.Product
	if len(ids) == 0 {
		return products, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, errors.Wrap(err, "query products")
	}
	return products, nil
}

func (r *GormCatalogRepository) CreateProduct(ctx context.Context, p *domain.Product) error {
	return errors.Wrap(r.db.WithContext(ctx).Create(p).Error, "create product")
}

func (r *GormCatalogRepository) SaveProduct(ctx context.Context, p *domain.Product) error {
	p.UpdatedAt = time.Now()
	err := r.db.WithContext(ctx).Model(&domain.Product{}).
		Where("id = ?", p.ID).
		Select("name", "category", "description", "price", "minimum_stock", "sku", "image_url", "note", "updated_at").
		Updates(p).Error
	return errors.Wrap(err, "update product")
}

func (r *GormCatalogRepository) DeleteProduct(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&domain.ProductCategory{}).Error; err != nil {
			return errors.Wrap(err, "delete product links")
		}
		if err := tx.Where("product_id = ?", id).Delete(&domain.BucketItem{}).Error; err != nil {
			return errors.Wrap(err, "delete bucket items")
		}
		res := tx.Where("id = ?", id).Delete(&domain.Product{})
		if res.Error != nil {
			return errors.Wrap(res.Error, "delete product")
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("product", id)
		}
		return nil
	})
}

// whitelist of sortable columns
var productSortColumns = map[string]string{
	"id":         "product.id",
	"name":       "product.name",
	"price":      "product.price",
	"quantity":   "product.quantity",
	"created_at": "product.created_at",
	"updated_at": "product.updated_at",
}

func (r *GormCatalogRepository) ListProducts(ctx context.Context, f ProductFilter) ([]*domain.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.Product{})

	if q := strings.TrimSpace(f.Query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(product.name) LIKE ? OR LOWER(product.category) LIKE ? OR LOWER(product.description) LIKE ?", like, like, like)
	}
	if f.Category != "" {
		query = query.Where("product.category = ?", f.Category)
	}
	if f.ShopID != 0 || f.CategoryID != 0 {
		sub := r.db.Model(&domain.ProductCategory{}).Select("product_id")
		if f.ShopID != 0 {
			sub = sub.Where("shop_id = ?", f.ShopID)
		}
		if f.CategoryID != 0 {
			sub = sub.Where("category_id = ?", f.CategoryID)
		}
		query = query.Where("product.id IN (?)", sub)
	}
	if f.MinPrice != nil {
		query = query.Where("product.price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		query = query.Where("product.price <= ?", *f.MaxPrice)
	}
	query = applyStockStatus(query, f.StockStatus)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count products")
	}

	sortCol, ok := productSortColumns[f.Sort]
	if !ok {
		sortCol = "product.created_at"
	}
	order := "DESC"
	if strings.EqualFold(f.Order, "asc") {
		order = "ASC"
	}

	var products []*domain.Product
	err := query.
		Order(sortCol + " " + order).
		Offset((f.Page - 1) * f.PageSize).
		Limit(f.PageSize).
		Find(&products).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "query products")
	}
	return products, total, nil
}

func applyStockStatus(query *gorm.DB, status string) *gorm.DB {
	switch status {
	case "in":
		return query.Where("product.quantity > 0")
	case "out":
		return query.Where("product.quantity = 0")
	case "low":
		return query.Where("product.quantity < product.minimum_stock")
	}
	return query
}

func (r *GormCatalogRepository) DecrementQuantity(ctx context.Context, productID int64, amount int) (int, int, error) {
	if amount <= 0 {
		return 0, 0, apperr.Validation("decrement amount must be positive")
	}
	db := r.db.WithContext(ctx)
	res := db.Model(&domain.Product{}).
		Where("id = ? AND quantity >= ?", productID, amount).
		Updates(map[string]interface{}{
			"quantity":   gorm.Expr("quantity - ?", amount),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return 0, 0, errors.Wrap(res.Error, "decrement product quantity")
	}

	var p domain.Product
	if err := db.Select("id", "name", "quantity").Where("id = ?", productID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, 0, apperr.NotFound("product", productID)
		}
		return 0, 0, errors.Wrap(err, "query product quantity")
	}
	if res.RowsAffected == 0 {
		return 0, 0, &apperr.InsufficientStockError{
			ProductID:   p.ID,
			ProductName: p.Name,
			Available:   p.Quantity,
			Requested:   amount,
		}
	}
	return p.Quantity + amount, p.Quantity, nil
}

// maxQuantityRetries bounds the compare-and-swap loop in SetQuantity
const maxQuantityRetries = 5

func (r *GormCatalogRepository) SetQuantity(ctx context.Context, productID int64, qty int) (int, error) {
	if qty < 0 {
		return 0, apperr.Validation("quantity must be a non-negative number")
	}
	db := r.db.WithContext(ctx)
	for attempt := 0; attempt < maxQuantityRetries; attempt++ {
		var p domain.Product
		if err := db.Select("id", "quantity").Where("id = ?", productID).First(&p).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, apperr.NotFound("product", productID)
			}
			return 0, errors.Wrap(err, "query product quantity")
		}
		res := db.Model(&domain.Product{}).
			Where("id = ? AND quantity = ?", productID, p.Quantity).
			Updates(map[string]interface{}{
				"quantity":   qty,
				"updated_at": time.Now(),
			})
		if res.Error != nil {
			return 0, errors.Wrap(res.Error, "update product quantity")
		}
		if res.RowsAffected == 1 {
			return p.Quantity, nil
		}
	}
	return 0, apperr.Conflict("product %d quantity changed concurrently, retry the update", productID)
}

func (r *GormCatalogRepository) CountProducts(ctx context.Context, stockStatus string) (int64, error) {
	var total int64
	err := applyStockStatus(r.db.WithContext(ctx).Model(&domain.Product{}), stockStatus).Count(&total).Error
	return total, errors.Wrap(err, "count products")
}
