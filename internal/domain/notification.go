package domain

import "time"

const (
	NotificationTypeLowStock = "low_stock"
)

// OrderNotification tells a shop owner about a new order and carries the
// owner's decision.
type OrderNotification struct {
	ID        int64     `gorm:"primaryKey" json:"id,string"`
	ShopID    int64     `gorm:"index;not null" json:"shop_id,string"`
	OrderID   int64     `gorm:"uniqueIndex;not null" json:"order_id,string"`
	Status    string    `gorm:"size:16;not null" json:"status"`
	Message   string    `gorm:"type:text" json:"message"`
	Order     *Order    `gorm:"foreignKey:OrderID" json:"order,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (OrderNotification) TableName() string {
	return "order_notification"
}

type Notification struct {
	ID        int64     `gorm:"primaryKey" json:"id,string"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Type      string    `gorm:"size:32;index;not null" json:"type"`
	ProductID *int64    `gorm:"index" json:"product_id,omitempty"`
	ShopID    *int64    `gorm:"index" json:"shop_id,omitempty"`
	IsRead    bool      `gorm:"not null;default:false" json:"is_read"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Notification) TableName() string {
	return "notification"
}
