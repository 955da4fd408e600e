package catalog

import (
	"context"
	"strings"

	"github.com/shopstock/shopstock/internal/apperr"
	"github.com/shopstock/shopstock/internal/domain"
	"github.com/shopstock/shopstock/internal/repository"
	"github.com/shopstock/shopstock/pkg/common"
)

type CategoryInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	ImageURL    *string `json:"imageUrl"`
}

func (s *Service) CreateCategory(ctx context.Context, ownerID, shopID int64, in CategoryInput) (*domain.Category, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, apperr.Validation("Category name is required and must be a non-empty string.")
	}
	name := strings.TrimSpace(*in.Name)

	var category *domain.Category
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		shop, err := ownedShop(ctx, tx.Shops, ownerID, shopID)
		if err != nil {
			return err
		}
		taken, err := tx.Shops.CategoryNameTaken(ctx, shop.ID, name, 0)
		if err != nil {
			return err
		}
		if taken {
			return apperr.Conflict("Category '%s' already exists in this shop.", name)
		}
		category = &domain.Category{
			ID:     common.UUIDint64(),
			ShopID: shop.ID,
			Name:   name,
			Slug:   shop.Slug,
		}
		if v := trimPtr(in.Description); v != nil {
			category.Description = *v
		}
		if v := trimPtr(in.ImageURL); v != nil {
			category.ImageURL = *v
		}
		return tx.Shops.CreateCategory(ctx, category)
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

func (s *Service) UpdateCategory(ctx context.Context, ownerID, shopID, categoryID int64, in CategoryInput) (*domain.Category, error) {
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, apperr.Validation("Name, if provided, must be a non-empty string.")
	}

	var category *domain.Category
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		shop, err := ownedShop(ctx, tx.Shops, ownerID, shopID)
		if err != nil {
			return err
		}
		category, err = tx.Shops.GetCategory(ctx, shop.ID, categoryID)
		if err != nil {
			return err
		}
		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name != category.Name {
				taken, err := tx.Shops.CategoryNameTaken(ctx, shop.ID, name, category.ID)
				if err != nil {
					return err
				}
				if taken {
					return apperr.Conflict("Category '%s' already exists in this shop.", name)
				}
				category.Name = name
			}
		}
		if v := trimPtr(in.Description); v != nil {
			category.Description = *v
		}
		if v := trimPtr(in.ImageURL); v != nil {
			category.ImageURL = *v
		}
		category.Slug = shop.Slug
		return tx.Shops.SaveCategory(ctx, category)
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

func (s *Service) DeleteCategory(ctx context.Context, ownerID, shopID, categoryID int64) error {
	if _, err := ownedShop(ctx, s.store.Shops, ownerID, shopID); err != nil {
		return err
	}
	return s.store.Shops.DeleteCategory(ctx, shopID, categoryID)
}

func (s *Service) ListCategories(ctx context.Context, shopID int64, q string) ([]*domain.Category, error) {
	if _, err := s.store.Shops.GetShop(ctx, shopID); err != nil {
		return nil, err
	}
	return s.store.Shops.ListCategories(ctx, shopID, q)
}

// AddProductsToCategory links existing products to a category of the
// owner's shop and returns how many links were new.
func (s *Service) AddProductsToCategory(ctx context.Context, ownerID, shopID, categoryID int64, productIDs []int64) (int, error) {
	ids := common.UniqueInt64s(productIDs)
	if len(ids) == 0 {
		return 0, apperr.Validation("productIds (array) is required and must not be empty.")
	}
	var linked int
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := ownedShop(ctx, tx.Shops, ownerID, shopID); err != nil {
			return err
		}
		if _, err := tx.Shops.GetCategory(ctx, shopID, categoryID); err != nil {
			return err
		}
		products, err := tx.Products.FindProductsByIDs(ctx, ids)
		if err != nil {
			return err
		}
		if len(products) != len(ids) {
			return apperr.NotFound("one or more products", nil)
		}
		linked, err = tx.Shops.LinkProducts(ctx, shopID, categoryID, ids)
		return err
	})
	return linked, err
}

func (s *Service) RemoveProductsFromCategory(ctx context.Context, ownerID, shopID, categoryID int64, productIDs []int64) (int64, error) {
	ids := common.UniqueInt64s(productIDs)
	if len(ids) == 0 {
		return 0, apperr.Validation("productIds (array) is required and must not be empty.")
	}
	if _, err := ownedShop(ctx, s.store.Shops, ownerID, shopID); err != nil {
		return 0, err
	}
	if _, err := s.store.Shops.GetCategory(ctx, shopID, categoryID); err != nil {
		return 0, err
	}
	return s.store.Shops.UnlinkProducts(ctx, shopID, categoryID, ids)
}
