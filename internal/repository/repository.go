// Package repository holds the data-access interfaces consumed by the
// services and their GORM implementations.
package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/shopstock/shopstock/internal/domain"
)

// CatalogRepository owns products and their stock quantity.
type CatalogRepository interface {
	// GetProduct returns a NotFoundError when the product does not exist
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)

	// FindProductsByIDs returns the products found for the distinct ids, in no particular order
	FindProductsByIDs(ctx context.Context, ids []int64) ([]*domain.Product, error)

	CreateProduct(ctx context.Context, p *domain.Product) error

	// SaveProduct persists descriptive fields; quantity is left untouched
	SaveProduct(ctx context.Context, p *domain.Product) error

	DeleteProduct(ctx context.Context, id int64) error

	ListProducts(ctx context.Context, filter ProductFilter) ([]*domain.Product, int64, error)

	// DecrementQuantity subtracts amount only if the current quantity covers it.
	// It returns InsufficientStockError otherwise. Call it inside a transaction
	// to get exact old/new values.
	DecrementQuantity(ctx context.Context, productID int64, amount int) (oldQty, newQty int, err error)

	// SetQuantity overwrites the quantity and returns the previous value
	SetQuantity(ctx context.Context, productID int64, qty int) (oldQty int, err error)

	CountProducts(ctx context.Context, stockStatus string) (int64, error)
}

// ShopRepository owns shops, categories and the product-category links.
type ShopRepository interface {
	GetShop(ctx context.Context, id int64) (*domain.Shop, error)
	GetShopBySlug(ctx context.Context, slug string) (*domain.Shop, error)
	FindShopsByIDs(ctx context.Context, ids []int64) ([]*domain.Shop, error)
	ListShopsByOwner(ctx context.Context, ownerID int64) ([]*domain.Shop, error)
	CreateShop(ctx context.Context, shop *domain.Shop) error
	SaveShop(ctx context.Context, shop *domain.Shop) error

	// SlugTaken reports whether slug is used by a shop other than exceptID
	SlugTaken(ctx context.Context, slug string, exceptID int64) (bool, error)

	// NameTaken reports whether name is used by a shop other than exceptID
	NameTaken(ctx context.Context, name string, exceptID int64) (bool, error)

	GetCategory(ctx context.Context, shopID, id int64) (*domain.Category, error)
	ListCategories(ctx context.Context, shopID int64, q string) ([]*domain.Category, error)
	CategoryNameTaken(ctx context.Context, shopID int64, name string, exceptID int64) (bool, error)
	CreateCategory(ctx context.Context, c *domain.Category) error
	SaveCategory(ctx context.Context, c *domain.Category) error
	DeleteCategory(ctx context.Context, shopID, id int64) error
	SyncCategorySlugs(ctx context.Context, shopID int64, slug string) error

	// LinkProducts adds product-category rows, skipping existing ones, and
	// returns how many were created
	LinkProducts(ctx context.Context, shopID, categoryID int64, productIDs []int64) (int, error)
	UnlinkProducts(ctx context.Context, shopID, categoryID int64, productIDs []int64) (int64, error)
	ShopSellsProducts(ctx context.Context, shopID int64, productIDs []int64) (bool, error)
}

// BucketRepository owns users' buckets and their items.
type BucketRepository interface {
	// GetWithItems returns nil without error when the user has no bucket.
	// Items are in insertion order with Product and Shop loaded.
	GetWithItems(ctx context.Context, userID int64) (*domain.Bucket, error)

	GetOrCreate(ctx context.Context, userID int64) (*domain.Bucket, error)

	// UpsertItem sets the quantity of the (bucket, product, shop) row,
	// creating it when missing. Quantity is overwritten, never summed.
	UpsertItem(ctx context.Context, bucketID, productID, shopID int64, quantity int) (created bool, err error)

	RemoveItems(ctx context.Context, bucketID, shopID int64, productIDs []int64) (int64, error)

	// ClearItems deletes the given items, or every item when itemIDs is nil
	ClearItems(ctx context.Context, bucketID int64, itemIDs []int64) (int64, error)
}

// StockLedger is the append-only audit trail of quantity changes.
type StockLedger interface {
	Record(ctx context.Context, entry *domain.StockHistory) error
	ListByProduct(ctx context.Context, productID int64, page, pageSize int) ([]*domain.StockHistory, int64, error)
	CountByProduct(ctx context.Context, productID int64) (int64, error)
}

// NotificationRepository stores order notifications and general notifications.
type NotificationRepository interface {
	CreateOrderNotification(ctx context.Context, n *domain.OrderNotification) error
	GetOrderNotificationByOrder(ctx context.Context, orderID int64) (*domain.OrderNotification, error)
	UpdateOrderNotification(ctx context.Context, id int64, status, message string) error
	ListOrderNotificationsByShops(ctx context.Context, shopIDs []int64) ([]*domain.OrderNotification, error)

	Create(ctx context.Context, n *domain.Notification) error
	Get(ctx context.Context, id int64) (*domain.Notification, error)
	ListByShop(ctx context.Context, shopID int64, unreadOnly bool, page, pageSize int) ([]*domain.Notification, int64, error)
	SetRead(ctx context.Context, id int64, read bool) error
	DeleteReadBefore(ctx context.Context, before time.Time) (int64, error)
}

// OrderRepository stores orders with their items.
type OrderRepository interface {
	// Create inserts the order and its items
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	List(ctx context.Context, filter OrderFilter) ([]*domain.Order, int64, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
	Totals(ctx context.Context, since time.Time) ([]decimal.Decimal, error)
	CountItemsForProduct(ctx context.Context, productID int64) (int64, error)
}

// ProductFilter drives product search. Zero values disable a filter.
type ProductFilter struct {
	Query       string
	Category    string
	ShopID      int64
	CategoryID  int64
	MinPrice    *decimal.Decimal
	MaxPrice    *decimal.Decimal
	StockStatus string // in | out | low
	Sort        string
	Order       string
	Page        int
	PageSize    int
}

// OrderFilter drives order history queries.
type OrderFilter struct {
	UserID    int64
	ShopID    int64
	Status    string
	MinTotal  *decimal.Decimal
	MaxTotal  *decimal.Decimal
	StartDate *time.Time
	EndDate   *time.Time
	SortBy    string // createdAt | totalAmount
	SortOrder string // asc | desc
	Page      int
	PageSize  int
}
