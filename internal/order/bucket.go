package order

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/shopstock/shopstock/internal/apperr"
	"github.com/shopstock/shopstock/internal/domain"
	"github.com/shopstock/shopstock/internal/repository"
	"github.com/shopstock/shopstock/pkg/common"
)

type ItemInput struct {
	ProductID int64 `json:"productId,string"`
	Quantity  int   `json:"quantity"`
}

// BucketLine is one bucket item as shown to its user.
type BucketLine struct {
	ProductID      int64           `json:"productId,string"`
	ProductName    string          `json:"productName"`
	Price          decimal.Decimal `json:"price"`
	AvailableStock int             `json:"availableStock"`
	Quantity       int             `json:"quantity"`
	ShopID         int64           `json:"shopId,string"`
	ShopName       string          `json:"shopName"`
}

// AddItems puts products of one shop into the user's bucket. An existing
// (product, shop) line gets its quantity overwritten with the new value.
func (s *Service) AddItems(ctx context.Context, userID, shopID int64, items []ItemInput) (added, updated int, err error) {
	if shopID == 0 {
		return 0, 0, apperr.Validation("shopId is required.")
	}
	if len(items) == 0 {
		return 0, 0, apperr.Validation("items (array of { productId, quantity }) is required and must not be empty.")
	}
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		if item.ProductID == 0 {
			return 0, 0, apperr.Validation("Each item must have a valid productId.")
		}
		if item.Quantity <= 0 {
			return 0, 0, apperr.Validation("Invalid quantity for product %d. Quantity must be a positive integer.", item.ProductID)
		}
		ids = append(ids, item.ProductID)
	}
	ids = common.UniqueInt64s(ids)

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := tx.Shops.GetShop(ctx, shopID); err != nil {
			return err
		}
		products, err := tx.Products.FindProductsByIDs(ctx, ids)
		if err != nil {
			return err
		}
		if len(products) != len(ids) {
			return apperr.NotFound("one or more products", nil)
		}
		sells, err := tx.Shops.ShopSellsProducts(ctx, shopID, ids)
		if err != nil {
			return err
		}
		if !sells {
			return apperr.Validation("One or more products are not sold by shop %d.", shopID)
		}
		byID := make(map[int64]*domain.Product, len(products))
		for _, p := range products {
			byID[p.ID] = p
		}
		for _, item := range items {
			p := byID[item.ProductID]
			if p.Quantity < item.Quantity {
				return &apperr.InsufficientStockError{
					ProductID:   p.ID,
					ProductName: p.Name,
					Available:   p.Quantity,
					Requested:   item.Quantity,
				}
			}
		}

		bucket, err := tx.Buckets.GetOrCreate(ctx, userID)
		if err != nil {
			return err
		}
		added, updated = 0, 0
		for _, item := range items {
			created, err := tx.Buckets.UpsertItem(ctx, bucket.ID, item.ProductID, shopID, item.Quantity)
			if err != nil {
				return err
			}
			if created {
				added++
			} else {
				updated++
			}
		}
		return nil
	})
	return added, updated, err
}

// RemoveItems deletes the given products of one shop from the bucket.
func (s *Service) RemoveItems(ctx context.Context, userID, shopID int64, productIDs []int64) (int64, error) {
	if shopID == 0 {
		return 0, apperr.Validation("shopId is required.")
	}
	if len(productIDs) == 0 {
		return 0, apperr.Validation("productIds (array) is required and must not be empty.")
	}
	if _, err := s.store.Shops.GetShop(ctx, shopID); err != nil {
		return 0, err
	}
	bucket, err := s.store.Buckets.GetWithItems(ctx, userID)
	if err != nil {
		return 0, err
	}
	if bucket == nil {
		return 0, apperr.NotFound("bucket", nil)
	}
	return s.store.Buckets.RemoveItems(ctx, bucket.ID, shopID, productIDs)
}

// Items lists the user's bucket in insertion order.
func (s *Service) Items(ctx context.Context, userID int64) ([]BucketLine, error) {
	bucket, err := s.store.Buckets.GetWithItems(ctx, userID)
	if err != nil {
		return nil, err
	}
	if bucket == nil {
		return nil, apperr.NotFound("bucket", nil)
	}
	lines := make([]BucketLine, 0, len(bucket.Items))
	for _, item := range bucket.Items {
		line := BucketLine{ProductID: item.ProductID, Quantity: item.Quantity, ShopID: item.ShopID}
		if item.Product != nil {
			line.ProductName = item.Product.Name
			line.Price = item.Product.Price
			line.AvailableStock = item.Product.Quantity
		}
		if item.Shop != nil {
			line.ShopName = item.Shop.Name
		}
		lines = append(lines, line)
	}
	return lines, nil
}
