package order

import (
	"context"

	"github.com/shopstock/shopstock/internal/apperr"
	"github.com/shopstock/shopstock/internal/domain"
	"github.com/shopstock/shopstock/internal/repository"
)

const maxPageSize = 100

// History returns the orders matching filter with the total count.
func (s *Service) History(ctx context.Context, f repository.OrderFilter) ([]*domain.Order, int64, error) {
	if f.StartDate != nil && f.EndDate != nil && f.StartDate.After(*f.EndDate) {
		return nil, 0, apperr.Validation("startDate must not be later than endDate.")
	}
	if f.MinTotal != nil && f.MaxTotal != nil && f.MinTotal.GreaterThan(*f.MaxTotal) {
		return nil, 0, apperr.Validation("minTotal must not be greater than maxTotal.")
	}
	switch f.SortBy {
	case "":
		f.SortBy = "createdAt"
	case "createdAt", "totalAmount":
	default:
		return nil, 0, apperr.Validation("sortBy must be one of 'createdAt' or 'totalAmount'.")
	}
	switch f.SortOrder {
	case "":
		f.SortOrder = "desc"
	case "asc", "desc":
	default:
		return nil, 0, apperr.Validation("sortOrder must be 'asc' or 'desc'.")
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = 10
	}
	if f.PageSize > maxPageSize {
		f.PageSize = maxPageSize
	}
	return s.store.Orders.List(ctx, f)
}

// GetOrder returns the order when it belongs to userID or to a shop userID owns.
func (s *Service) GetOrder(ctx context.Context, userID, orderID int64) (*domain.Order, error) {
	o, err := s.store.Orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID == userID {
		return o, nil
	}
	shop, err := s.store.Shops.GetShop(ctx, o.ShopID)
	if err != nil {
		return nil, err
	}
	if shop.OwnerID != userID {
		return nil, apperr.NotFound("order", orderID)
	}
	return o, nil
}
