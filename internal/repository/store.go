package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store bundles the repositories that share one database handle. Services
// receive a Store instead of reaching for a global connection.
type Store struct {
	db            *gorm.DB
	Products      CatalogRepository
	Shops         ShopRepository
	Buckets       BucketRepository
	Ledger        StockLedger
	Notifications NotificationRepository
	Orders        OrderRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:            db,
		Products:      NewGormCatalogRepository(db),
		Shops:         NewGormShopRepository(db),
		Buckets:       NewGormBucketRepository(db),
		Ledger:        NewGormStockLedger(db),
		Notifications: NewGormNotificationRepository(db),
		Orders:        NewGormOrderRepository(db),
	}
}

func (s *Store) DB() *gorm.DB {
	return s.db
}

// Transaction runs fn with a Store bound to a single database transaction.
// Returning an error from fn rolls back every write made through tx.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
