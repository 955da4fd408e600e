package catalog

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/shopstock/shopstock/internal/apperr"
	"github.com/shopstock/shopstock/internal/domain"
	"github.com/shopstock/shopstock/internal/repository"
	"github.com/shopstock/shopstock/internal/testutil"
	"github.com/shopstock/shopstock/pkg/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func str(s string) *string { return &s }

func intp(i int) *int { return &i }

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func newService(t *testing.T) (*Service, *repository.Store) {
	store := repository.NewStore(testutil.OpenDB(t))
	return NewService(store, "http://localhost:3000/"), store
}

func TestCreateShopSlugs(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	shop, err := svc.CreateShop(ctx, 1, ShopInput{Name: str("  Café Corner "), Description: str(" fresh ")})
	require.NoError(t, err)
	assert.Equal(t, "Café Corner", shop.Name)
	assert.Equal(t, "cafe-corner", shop.Slug)
	assert.Equal(t, "fresh", shop.Description)
	assert.Equal(t, "http://localhost:3000/shops/cafe-corner", svc.ShopURL(shop.Slug))

	other, err := svc.CreateShop(ctx, 2, ShopInput{Name: str("Cafe-Corner")})
	require.NoError(t, err)
	assert.Equal(t, "cafe-corner-1", other.Slug)

	_, err = svc.CreateShop(ctx, 3, ShopInput{Name: str("Café Corner")})
	var conflict *apperr.ConflictError
	assert.ErrorAs(t, err, &conflict)

	_, err = svc.CreateShop(ctx, 3, ShopInput{Name: str("   ")})
	var verr *apperr.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestUpdateShopRename(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	shop, err := svc.CreateShop(ctx, 1, ShopInput{Name: str("Green Grocer")})
	require.NoError(t, err)
	_, err = svc.CreateShop(ctx, 2, ShopInput{Name: str("Blue Butcher")})
	require.NoError(t, err)
	cat, err := svc.CreateCategory(ctx, 1, shop.ID, CategoryInput{Name: str("Fruit")})
	require.NoError(t, err)
	assert.Equal(t, "green-grocer", cat.Slug)

	// same name keeps the slug
	same, err := svc.UpdateShop(ctx, 1, shop.ID, ShopInput{Name: str("Green Grocer"), LogoURL: str("x.png")})
	require.NoError(t, err)
	assert.Equal(t, "green-grocer", same.Slug)
	assert.Equal(t, "x.png", same.LogoURL)

	renamed, err := svc.UpdateShop(ctx, 1, shop.ID, ShopInput{Name: str("Fresh Grocer")})
	require.NoError(t, err)
	assert.Equal(t, "fresh-grocer", renamed.Slug)

	got, err := store.Shops.GetCategory(ctx, shop.ID, cat.ID)
	require.NoError(t, err)
	assert.Equal(t, "fresh-grocer", got.Slug)

	_, err = svc.UpdateShop(ctx, 1, shop.ID, ShopInput{Name: str("Blue Butcher")})
	var conflict *apperr.ConflictError
	assert.ErrorAs(t, err, &conflict)

	_, err = svc.UpdateShop(ctx, 2, shop.ID, ShopInput{Description: str("hijack")})
	var forbidden *apperr.ForbiddenError
	assert.ErrorAs(t, err, &forbidden)

	bySlug, err := svc.GetShopBySlug(ctx, "fresh-grocer")
	require.NoError(t, err)
	assert.Equal(t, shop.ID, bySlug.ID)
}

func TestCategories(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	shop, err := svc.CreateShop(ctx, 1, ShopInput{Name: str("Hardware")})
	require.NoError(t, err)

	tools, err := svc.CreateCategory(ctx, 1, shop.ID, CategoryInput{Name: str("Tools"), Description: str("hand tools")})
	require.NoError(t, err)
	_, err = svc.CreateCategory(ctx, 1, shop.ID, CategoryInput{Name: str("Tools")})
	var conflict *apperr.ConflictError
	assert.ErrorAs(t, err, &conflict)
	paint, err := svc.CreateCategory(ctx, 1, shop.ID, CategoryInput{Name: str("Paint")})
	require.NoError(t, err)

	_, err = svc.UpdateCategory(ctx, 1, shop.ID, paint.ID, CategoryInput{Name: str("Tools")})
	assert.ErrorAs(t, err, &conflict)
	updated, err := svc.UpdateCategory(ctx, 1, shop.ID, paint.ID, CategoryInput{Name: str("Paints")})
	require.NoError(t, err)
	assert.Equal(t, "Paints", updated.Name)

	found, err := svc.ListCategories(ctx, shop.ID, "hand")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, tools.ID, found[0].ID)

	require.NoError(t, svc.DeleteCategory(ctx, 1, shop.ID, paint.ID))
	assert.True(t, apperr.IsNotFound(svc.DeleteCategory(ctx, 1, shop.ID, paint.ID)))

	all, err := svc.ListCategories(ctx, shop.ID, "")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCategoryProductLinks(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	shop, err := svc.CreateShop(ctx, 1, ShopInput{Name: str("Linker")})
	require.NoError(t, err)
	cat, err := svc.CreateCategory(ctx, 1, shop.ID, CategoryInput{Name: str("All")})
	require.NoError(t, err)
	a, err := svc.CreateProduct(ctx, 1, ProductInput{Name: str("A"), Price: price("1")})
	require.NoError(t, err)
	b, err := svc.CreateProduct(ctx, 1, ProductInput{Name: str("B"), Price: price("2")})
	require.NoError(t, err)

	n, err := svc.AddProductsToCategory(ctx, 1, shop.ID, cat.ID, []int64{a.ID, b.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	n, err = svc.AddProductsToCategory(ctx, 1, shop.ID, cat.ID, []int64{a.ID})
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	_, err = svc.AddProductsToCategory(ctx, 1, shop.ID, cat.ID, []int64{common.UUIDint64()})
	assert.True(t, apperr.IsNotFound(err))

	rows, total, err := svc.CategoryProducts(ctx, shop.ID, cat.ID, repository.ProductFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, rows, 2)

	removed, err := svc.RemoveProductsFromCategory(ctx, 1, shop.ID, cat.ID, []int64{a.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	_, total, err = svc.ShopProducts(ctx, shop.ID, repository.ProductFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestProducts(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, 1, ProductInput{Name: str("No price")})
	var verr *apperr.ValidationError
	assert.ErrorAs(t, err, &verr)

	p, err := svc.CreateProduct(ctx, 1, ProductInput{
		Name:         str("Drill"),
		Price:        price("99.999"),
		Quantity:     intp(12),
		MinimumStock: intp(3),
	})
	require.NoError(t, err)
	assert.Equal(t, "100.00", p.Price.StringFixed(2))

	rows, total, err := store.Ledger.ListByProduct(ctx, p.ID, 1, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	assert.Equal(t, domain.ChangeTypeInitialStock, rows[0].ChangeType)
	assert.Equal(t, 12, rows[0].Change)

	_, err = svc.UpdateProduct(ctx, p.ID, ProductInput{Quantity: intp(1)})
	assert.ErrorAs(t, err, &verr)

	updated, err := svc.UpdateProduct(ctx, p.ID, ProductInput{Name: str("Cordless Drill"), MinimumStock: intp(5)})
	require.NoError(t, err)
	assert.Equal(t, "Cordless Drill", updated.Name)
	got, err := svc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.MinimumStock)
	assert.Equal(t, 12, got.Quantity)

	found, total, err := svc.SearchProducts(ctx, repository.ProductFilter{Query: "cordless"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, p.ID, found[0].ID)

	_, _, err = svc.SearchProducts(ctx, repository.ProductFilter{StockStatus: "maybe"})
	assert.ErrorAs(t, err, &verr)

	require.NoError(t, svc.DeleteProduct(ctx, p.ID))
	assert.True(t, apperr.IsNotFound(svc.DeleteProduct(ctx, p.ID)))
}

func TestDeleteOrderedProductConflicts(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()
	p, err := svc.CreateProduct(ctx, 1, ProductInput{Name: str("Sold"), Price: price("3")})
	require.NoError(t, err)

	require.NoError(t, store.Orders.Create(ctx, &domain.Order{
		ID:          common.UUIDint64(),
		UserID:      1,
		ShopID:      1,
		Status:      domain.OrderStatusPending,
		TotalAmount: decimal.NewFromInt(3),
		Items:       []domain.OrderItem{{ProductID: p.ID, Quantity: 1, Price: decimal.NewFromInt(3)}},
	}))

	err = svc.DeleteProduct(ctx, p.ID)
	var conflict *apperr.ConflictError
	assert.ErrorAs(t, err, &conflict)
}
