package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry. Quantity is the on-hand stock and must never
// go negative; all writes to it go through the catalog repository.
type Product struct {
	ID           int64           `gorm:"primaryKey" json:"id,string"`
	Name         string          `gorm:"size:200;index;not null" json:"name"`
	Category     string          `gorm:"size:100;index" json:"category"`
	Description  string          `gorm:"type:text" json:"description"`
	Quantity     int             `gorm:"not null;default:0" json:"quantity"`
	Price        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	MinimumStock int             `gorm:"not null;default:0" json:"minimum_stock"`
	SKU          string          `gorm:"size:64;index" json:"sku"`
	ImageURL     string          `gorm:"size:1024" json:"image_url"`
	Note         string          `gorm:"type:text" json:"note"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func (Product) TableName() string {
	return "product"
}

// IsLowStock reports quantity strictly below the configured minimum.
func (p *Product) IsLowStock() bool {
	return p.Quantity < p.MinimumStock
}

func (p *Product) IsOutOfStock() bool {
	return p.Quantity == 0
}

// ProductCategory links a product to a category of a shop. A product may be
// sold by several shops.
type ProductCategory struct {
	ID         int64     `gorm:"primaryKey" json:"id,string"`
	ProductID  int64     `gorm:"uniqueIndex:idx_product_shop_category;not null" json:"product_id,string"`
	ShopID     int64     `gorm:"uniqueIndex:idx_product_shop_category;index;not null" json:"shop_id,string"`
	CategoryID int64     `gorm:"uniqueIndex:idx_product_shop_category;index;not null" json:"category_id,string"`
	CreatedAt  time.Time `json:"created_at"`
}

func (ProductCategory) TableName() string {
	return "product_category"
}
