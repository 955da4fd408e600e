// Package catalog manages shops, their categories and the products they
// sell. Stock quantities are not changed here; see package inventory.
package catalog

import (
	"context"
	"strings"

	"github.com/shopstock/shopstock/internal/apperr"
	"github.com/shopstock/shopstock/internal/domain"
	"github.com/shopstock/shopstock/internal/repository"
)

type Service struct {
	store   *repository.Store
	baseURL string
}

func NewService(store *repository.Store, baseURL string) *Service {
	return &Service{store: store, baseURL: strings.TrimRight(baseURL, "/")}
}

// ShopURL is the public address of a shop.
func (s *Service) ShopURL(slug string) string {
	return s.baseURL + "/shops/" + slug
}

// ownedShop loads the shop and checks that ownerID runs it.
func ownedShop(ctx context.Context, repo repository.ShopRepository, ownerID, shopID int64) (*domain.Shop, error) {
	shop, err := repo.GetShop(ctx, shopID)
	if err != nil {
		return nil, err
	}
	if shop.OwnerID != ownerID {
		return nil, apperr.Forbidden("shop %d is not managed by the current user", shopID)
	}
	return shop, nil
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
