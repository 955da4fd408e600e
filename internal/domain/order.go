package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	OrderStatusPending  = "PENDING"
	OrderStatusAccepted = "ACCEPTED"
	OrderStatusRejected = "REJECTED"
)

// Order belongs to one user and one shop. A checkout spanning several shops
// produces one Order per shop.
type Order struct {
	ID          int64           `gorm:"primaryKey" json:"id,string"`
	UserID      int64           `gorm:"index;not null" json:"user_id,string"`
	ShopID      int64           `gorm:"index;not null" json:"shop_id,string"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	Status      string          `gorm:"size:16;index;not null" json:"status"`
	Items       []OrderItem     `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	Shop        *Shop           `gorm:"foreignKey:ShopID" json:"shop,omitempty"`
	CreatedAt   time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem keeps the unit price at the time of purchase.
type OrderItem struct {
	ID        int64           `gorm:"primaryKey" json:"id,string"`
	OrderID   int64           `gorm:"index;not null" json:"order_id,string"`
	ProductID int64           `gorm:"index;not null" json:"product_id,string"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Product   *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

func (OrderItem) TableName() string {
	return "order_item"
}

func ValidOrderDecision(status string) bool {
	return status == OrderStatusAccepted || status == OrderStatusRejected
}
