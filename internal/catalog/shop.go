package catalog

import (
	"context"
	"strings"

	"github.com/shopstock/shopstock/internal/apperr"
	"github.com/shopstock/shopstock/internal/domain"
	"github.com/shopstock/shopstock/internal/repository"
	"github.com/shopstock/shopstock/pkg/common"
	"go.uber.org/zap"
)

// ShopInput carries shop fields; nil pointers leave a field unchanged on
// update.
type ShopInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	LogoURL     *string `json:"logoUrl"`
}

func (s *Service) CreateShop(ctx context.Context, ownerID int64, in ShopInput) (*domain.Shop, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, apperr.Validation("name is required and must be a non-empty string.")
	}
	name := strings.TrimSpace(*in.Name)
	base := common.Slugify(name)
	if base == "" {
		return nil, apperr.Validation("name must contain at least one letter or digit.")
	}

	shop := &domain.Shop{
		ID:      common.UUIDint64(),
		Name:    name,
		OwnerID: ownerID,
		Active:  true,
	}
	if v := trimPtr(in.Description); v != nil {
		shop.Description = *v
	}
	if v := trimPtr(in.LogoURL); v != nil {
		shop.LogoURL = *v
	}

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		taken, err := tx.Shops.NameTaken(ctx, name, 0)
		if err != nil {
			return err
		}
		if taken {
			return apperr.Conflict("A shop with that name already exists.")
		}
		shop.Slug, err = common.UniqueSlug(base, func(slug string) (bool, error) {
			return tx.Shops.SlugTaken(ctx, slug, 0)
		})
		if err != nil {
			return err
		}
		return tx.Shops.CreateShop(ctx, shop)
	})
	if err != nil {
		return nil, err
	}
	zap.L().Info("shop created",
		zap.String("namespace", "catalog"),
		zap.Int64("shop_id", shop.ID),
		zap.String("slug", shop.Slug))
	return shop, nil
}

// UpdateShop edits a shop. A rename regenerates the slug, and the shop may
// keep its current slug when the new name maps to it.
func (s *Service) UpdateShop(ctx context.Context, ownerID, shopID int64, in ShopInput) (*domain.Shop, error) {
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, apperr.Validation("Name, if provided, must be a non-empty string.")
	}

	var shop *domain.Shop
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		shop, err = ownedShop(ctx, tx.Shops, ownerID, shopID)
		if err != nil {
			return err
		}
		if v := trimPtr(in.Description); v != nil {
			shop.Description = *v
		}
		if v := trimPtr(in.LogoURL); v != nil {
			shop.LogoURL = *v
		}
		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name != shop.Name {
				taken, err := tx.Shops.NameTaken(ctx, name, shop.ID)
				if err != nil {
					return err
				}
				if taken {
					return apperr.Conflict("A shop with that name already exists.")
				}
			}
			base := common.Slugify(name)
			if base == "" {
				return apperr.Validation("name must contain at least one letter or digit.")
			}
			slug, err := common.UniqueSlug(base, func(slug string) (bool, error) {
				return tx.Shops.SlugTaken(ctx, slug, shop.ID)
			})
			if err != nil {
				return err
			}
			shop.Name = name
			if slug != shop.Slug {
				shop.Slug = slug
				if err = tx.Shops.SyncCategorySlugs(ctx, shop.ID, slug); err != nil {
					return err
				}
			}
		}
		return tx.Shops.SaveShop(ctx, shop)
	})
	if err != nil {
		return nil, err
	}
	return shop, nil
}

func (s *Service) GetShop(ctx context.Context, shopID int64) (*domain.Shop, error) {
	return s.store.Shops.GetShop(ctx, shopID)
}

func (s *Service) GetShopBySlug(ctx context.Context, slug string) (*domain.Shop, error) {
	return s.store.Shops.GetShopBySlug(ctx, slug)
}

func (s *Service) ListShops(ctx context.Context, ownerID int64) ([]*domain.Shop, error) {
	return s.store.Shops.ListShopsByOwner(ctx, ownerID)
}
