package catalog

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/shopstock/shopstock/internal/apperr"
	"github.com/shopstock/shopstock/internal/domain"
	"github.com/shopstock/shopstock/internal/repository"
	"github.com/shopstock/shopstock/pkg/common"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// ProductInput carries product fields; nil pointers leave a field unchanged
// on update. Quantity is only honoured on create.
type ProductInput struct {
	Name         *string          `json:"name"`
	Category     *string          `json:"category"`
	Description  *string          `json:"description"`
	Quantity     *int             `json:"quantity"`
	Price        *decimal.Decimal `json:"price"`
	MinimumStock *int             `json:"minimumStock"`
	SKU          *string          `json:"sku"`
	ImageURL     *string          `json:"imageUrl"`
	Note         *string          `json:"note"`
}

func (in *ProductInput) apply(p *domain.Product) error {
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return apperr.Validation("Name, if provided, must be a non-empty string.")
		}
		p.Name = name
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return apperr.Validation("price must not be negative.")
		}
		p.Price = in.Price.Round(2)
	}
	if in.MinimumStock != nil {
		if *in.MinimumStock < 0 {
			return apperr.Validation("minimumStock must not be negative.")
		}
		p.MinimumStock = *in.MinimumStock
	}
	if v := trimPtr(in.Category); v != nil {
		p.Category = *v
	}
	if v := trimPtr(in.Description); v != nil {
		p.Description = *v
	}
	if v := trimPtr(in.SKU); v != nil {
		p.SKU = *v
	}
	if v := trimPtr(in.ImageURL); v != nil {
		p.ImageURL = *v
	}
	if in.Note != nil {
		p.Note = *in.Note
	}
	return nil
}

// CreateProduct adds a product. A non-zero initial quantity is written to
// the stock ledger as the product's first entry.
func (s *Service) CreateProduct(ctx context.Context, userID int64, in ProductInput) (*domain.Product, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, apperr.Validation("name is required and must be a non-empty string.")
	}
	if in.Price == nil {
		return nil, apperr.Validation("price is required.")
	}
	p := &domain.Product{ID: common.UUIDint64()}
	if err := in.apply(p); err != nil {
		return nil, err
	}
	if in.Quantity != nil {
		if *in.Quantity < 0 {
			return nil, apperr.Validation("Quantity must be a non-negative number.")
		}
		p.Quantity = *in.Quantity
	}

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Products.CreateProduct(ctx, p); err != nil {
			return err
		}
		if p.Quantity == 0 {
			return nil
		}
		uid := userID
		return tx.Ledger.Record(ctx, &domain.StockHistory{
			ProductID:   p.ID,
			OldQuantity: 0,
			NewQuantity: p.Quantity,
			ChangeType:  domain.ChangeTypeInitialStock,
			UserID:      &uid,
		})
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) UpdateProduct(ctx context.Context, productID int64, in ProductInput) (*domain.Product, error) {
	if in.Quantity != nil {
		return nil, apperr.Validation("quantity is changed through the stock quantity endpoint.")
	}
	p, err := s.store.Products.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if err = in.apply(p); err != nil {
		return nil, err
	}
	if err = s.store.Products.SaveProduct(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// DeleteProduct removes a product that was never ordered. Ordered products
// stay because order items reference them.
func (s *Service) DeleteProduct(ctx context.Context, productID int64) error {
	return s.store.Transaction(ctx, func(tx *repository.Store) error {
		n, err := tx.Orders.CountItemsForProduct(ctx, productID)
		if err != nil {
			return err
		}
		if n > 0 {
			return apperr.Conflict("Product %d has been ordered and cannot be deleted.", productID)
		}
		return tx.Products.DeleteProduct(ctx, productID)
	})
}

func (s *Service) GetProduct(ctx context.Context, productID int64) (*domain.Product, error) {
	return s.store.Products.GetProduct(ctx, productID)
}

// SearchProducts validates and normalizes f before querying.
func (s *Service) SearchProducts(ctx context.Context, f repository.ProductFilter) ([]*domain.Product, int64, error) {
	if f.MinPrice != nil && f.MaxPrice != nil && f.MinPrice.GreaterThan(*f.MaxPrice) {
		return nil, 0, apperr.Validation("minPrice must not be greater than maxPrice.")
	}
	switch f.StockStatus {
	case "", "in", "out", "low":
	default:
		return nil, 0, apperr.Validation("stockStatus must be one of 'in', 'out' or 'low'.")
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = defaultPageSize
	}
	if f.PageSize > maxPageSize {
		f.PageSize = maxPageSize
	}
	return s.store.Products.ListProducts(ctx, f)
}

func (s *Service) ShopProducts(ctx context.Context, shopID int64, f repository.ProductFilter) ([]*domain.Product, int64, error) {
	if _, err := s.store.Shops.GetShop(ctx, shopID); err != nil {
		return nil, 0, err
	}
	f.ShopID = shopID
	return s.SearchProducts(ctx, f)
}

func (s *Service) CategoryProducts(ctx context.Context, shopID, categoryID int64, f repository.ProductFilter) ([]*domain.Product, int64, error) {
	if _, err := s.store.Shops.GetCategory(ctx, shopID, categoryID); err != nil {
		return nil, 0, err
	}
	f.ShopID = shopID
	f.CategoryID = categoryID
	return s.SearchProducts(ctx, f)
}
