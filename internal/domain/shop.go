package domain

import "time"

type Shop struct {
	ID          int64     `gorm:"primaryKey" json:"id,string"`
	Name        string    `gorm:"size:200;uniqueIndex;not null" json:"name"`
	Slug        string    `gorm:"size:220;uniqueIndex;not null" json:"slug"`
	Description string    `gorm:"type:text" json:"description"`
	LogoURL     string    `gorm:"size:1024" json:"logo_url"`
	OwnerID     int64     `gorm:"index" json:"owner_id,string"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Shop) TableName() string {
	return "shop"
}

// Category groups products inside one shop. Its slug mirrors the shop slug.
type Category struct {
	ID          int64     `gorm:"primaryKey" json:"id,string"`
	ShopID      int64     `gorm:"uniqueIndex:idx_category_shop_name;not null" json:"shop_id,string"`
	Name        string    `gorm:"size:200;uniqueIndex:idx_category_shop_name;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	ImageURL    string    `gorm:"size:1024" json:"image_url"`
	Slug        string    `gorm:"size:220;index" json:"slug"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Category) TableName() string {
	return "category"
}
