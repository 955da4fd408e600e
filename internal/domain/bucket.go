package domain

import "time"

// Bucket is a user's pending cart. There is at most one per user.
type Bucket struct {
	ID        int64        `gorm:"primaryKey" json:"id,string"`
	UserID    int64        `gorm:"uniqueIndex;not null" json:"user_id,string"`
	Items     []BucketItem `gorm:"foreignKey:BucketID" json:"items,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

func (Bucket) TableName() string {
	return "bucket"
}

// BucketItem is unique per (bucket, product, shop).
type BucketItem struct {
	ID        int64     `gorm:"primaryKey" json:"id,string"`
	BucketID  int64     `gorm:"uniqueIndex:idx_bucket_product_shop;not null" json:"bucket_id,string"`
	ProductID int64     `gorm:"uniqueIndex:idx_bucket_product_shop;not null" json:"product_id,string"`
	ShopID    int64     `gorm:"uniqueIndex:idx_bucket_product_shop;not null" json:"shop_id,string"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	Product   *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Shop      *Shop     `gorm:"foreignKey:ShopID" json:"shop,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (BucketItem) TableName() string {
	return "bucket_item"
}
