package order

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/shopstock/shopstock/internal/domain"
	"github.com/shopstock/shopstock/internal/events"
	"github.com/shopstock/shopstock/internal/notify"
	"github.com/shopstock/shopstock/internal/repository"
	"github.com/shopstock/shopstock/internal/testutil"
	"github.com/shopstock/shopstock/pkg/common"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	t          *testing.T
	ctx        context.Context
	db         *gorm.DB
	store      *repository.Store
	svc        *Service
	categories map[int64]int64
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWithBus(t, nil)
}

func newFixtureWithBus(t *testing.T, bus *events.Bus) *fixture {
	db := testutil.OpenDB(t)
	store := repository.NewStore(db)
	return &fixture{
		t:          t,
		ctx:        context.Background(),
		db:         db,
		store:      store,
		svc:        NewService(store, notify.NewEmitter(bus)),
		categories: make(map[int64]int64),
	}
}

func (f *fixture) shop(name string, ownerID int64) *domain.Shop {
	shop := &domain.Shop{
		ID:      common.UUIDint64(),
		Name:    name,
		Slug:    common.Slugify(name),
		OwnerID: ownerID,
		Active:  true,
	}
	require.NoError(f.t, f.store.Shops.CreateShop(f.ctx, shop))
	category := &domain.Category{ID: common.UUIDint64(), ShopID: shop.ID, Name: "General", Slug: shop.Slug}
	require.NoError(f.t, f.store.Shops.CreateCategory(f.ctx, category))
	f.categories[shop.ID] = category.ID
	return shop
}

func (f *fixture) product(shop *domain.Shop, name, price string, qty, minimum int) *domain.Product {
	p := &domain.Product{
		ID:           common.UUIDint64(),
		Name:         name,
		Price:        decimal.RequireFromString(price),
		Quantity:     qty,
		MinimumStock: minimum,
	}
	require.NoError(f.t, f.store.Products.CreateProduct(f.ctx, p))
	f.sell(shop, p)
	return p
}

func (f *fixture) sell(shop *domain.Shop, p *domain.Product) {
	_, err := f.store.Shops.LinkProducts(f.ctx, shop.ID, f.categories[shop.ID], []int64{p.ID})
	require.NoError(f.t, err)
}

func (f *fixture) addToBucket(userID int64, shop *domain.Shop, p *domain.Product, qty int) {
	_, _, err := f.svc.AddItems(f.ctx, userID, shop.ID, []ItemInput{{ProductID: p.ID, Quantity: qty}})
	require.NoError(f.t, err)
}

func (f *fixture) quantity(p *domain.Product) int {
	got, err := f.store.Products.GetProduct(f.ctx, p.ID)
	require.NoError(f.t, err)
	return got.Quantity
}

func (f *fixture) count(model interface{}, query string, args ...interface{}) int64 {
	var n int64
	q := f.db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(f.t, q.Count(&n).Error)
	return n
}

func repositoryFilterForShop(shopID int64) repository.OrderFilter {
	return repository.OrderFilter{ShopID: shopID, Page: 1, PageSize: 10}
}
