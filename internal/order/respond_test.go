package order

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/shopstock/shopstock/internal/apperr"
	"github.com/shopstock/shopstock/internal/domain"
	"github.com/shopstock/shopstock/internal/repository"
	"github.com/shopstock/shopstock/pkg/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func placeOrder(f *fixture, userID int64) (*domain.Shop, int64) {
	shop := f.shop("Responder", 77)
	p := f.product(shop, "P", "4", 10, 0)
	f.addToBucket(userID, shop, p, 1)
	result, err := f.svc.Checkout(f.ctx, userID)
	require.NoError(f.t, err)
	return shop, result.Orders[0].OrderID
}

func TestRespondToOrder(t *testing.T) {
	f := newFixture(t)
	_, orderID := placeOrder(f, 1)

	n, err := f.svc.RespondToOrder(f.ctx, orderID, "ACCEPTED", "ready")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusAccepted, n.Status)
	assert.Equal(t, "ready", n.Message)

	o, err := f.store.Orders.GetByID(f.ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusAccepted, o.Status)

	// same decision again is harmless
	n, err = f.svc.RespondToOrder(f.ctx, orderID, "accepted", "ready")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusAccepted, n.Status)
}

func TestRespondToOrderRejectsUnknownDecision(t *testing.T) {
	f := newFixture(t)
	_, orderID := placeOrder(f, 1)

	_, err := f.svc.RespondToOrder(f.ctx, orderID, "SHIPPED", "")
	isValidation(t, err)

	o, err := f.store.Orders.GetByID(f.ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, o.Status)
}

func TestRespondToOrderWithoutNotification(t *testing.T) {
	f := newFixture(t)
	shop := f.shop("Silent", 1)
	o := &domain.Order{
		ID:          common.UUIDint64(),
		UserID:      1,
		ShopID:      shop.ID,
		Status:      domain.OrderStatusPending,
		TotalAmount: decimal.NewFromInt(5),
	}
	require.NoError(t, f.store.Orders.Create(f.ctx, o))

	_, err := f.svc.RespondToOrder(f.ctx, o.ID, "ACCEPTED", "ready")
	assert.True(t, apperr.IsNotFound(err))

	got, err := f.store.Orders.GetByID(f.ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, got.Status)
}

func TestRespondAsOwner(t *testing.T) {
	f := newFixture(t)
	_, orderID := placeOrder(f, 1)

	_, err := f.svc.RespondAsOwner(f.ctx, 1, orderID, "REJECTED", "nope")
	var forbidden *apperr.ForbiddenError
	require.ErrorAs(t, err, &forbidden)

	n, err := f.svc.RespondAsOwner(f.ctx, 77, orderID, "REJECTED", "out of boxes")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusRejected, n.Status)

	rows, err := f.svc.OwnerOrderNotifications(f.ctx, 77)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, domain.OrderStatusRejected, rows[0].Status)
	require.NotNil(t, rows[0].Order)
	assert.Equal(t, domain.OrderStatusRejected, rows[0].Order.Status)
}

func TestHistory(t *testing.T) {
	f := newFixture(t)
	shop, firstID := placeOrder(f, 1)
	p := f.product(shop, "Bigger", "40", 10, 0)
	f.addToBucket(1, shop, p, 2)
	_, err := f.svc.Checkout(f.ctx, 1)
	require.NoError(t, err)
	_, err = f.svc.RespondToOrder(f.ctx, firstID, "ACCEPTED", "")
	require.NoError(t, err)

	orders, total, err := f.svc.History(f.ctx, repository.OrderFilter{UserID: 1, SortBy: "totalAmount", SortOrder: "asc"})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	assert.Equal(t, firstID, orders[0].ID)
	assert.Equal(t, "80.00", orders[1].TotalAmount.StringFixed(2))

	_, total, err = f.svc.History(f.ctx, repository.OrderFilter{UserID: 1, Status: "accepted"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	min := decimal.NewFromInt(10)
	_, total, err = f.svc.History(f.ctx, repository.OrderFilter{UserID: 1, MinTotal: &min})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	_, total, err = f.svc.History(f.ctx, repository.OrderFilter{UserID: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)

	start, end := time.Now(), time.Now().Add(-time.Hour)
	_, _, err = f.svc.History(f.ctx, repository.OrderFilter{StartDate: &start, EndDate: &end})
	isValidation(t, err)

	_, _, err = f.svc.History(f.ctx, repository.OrderFilter{SortBy: "name"})
	isValidation(t, err)
}

func TestGetOrderVisibility(t *testing.T) {
	f := newFixture(t)
	_, orderID := placeOrder(f, 1)

	_, err := f.svc.GetOrder(f.ctx, 1, orderID)
	assert.NoError(t, err)
	_, err = f.svc.GetOrder(f.ctx, 77, orderID)
	assert.NoError(t, err)
	_, err = f.svc.GetOrder(f.ctx, 5, orderID)
	assert.True(t, apperr.IsNotFound(err))
}
