package domain

import "time"

const (
	ChangeTypeSale         = "sale"
	ChangeTypeManualUpdate = "manual_update"
	ChangeTypeInitialStock = "initial_stock"
)

// StockHistory is an immutable ledger row written for every quantity change.
type StockHistory struct {
	ID          int64     `gorm:"primaryKey" json:"id,string" csv:"id"`
	ProductID   int64     `gorm:"index;not null" json:"product_id,string" csv:"product_id"`
	OldQuantity int       `gorm:"not null" json:"old_quantity" csv:"old_quantity"`
	NewQuantity int       `gorm:"not null" json:"new_quantity" csv:"new_quantity"`
	Change      int       `gorm:"not null" json:"change" csv:"change"`
	ChangeType  string    `gorm:"size:32;not null" json:"change_type" csv:"change_type"`
	UserID      *int64    `json:"user_id,omitempty" csv:"user_id"`
	Note        string    `gorm:"type:text" json:"note" csv:"note"`
	CreatedAt   time.Time `gorm:"index" json:"created_at" csv:"created_at"`
}

func (StockHistory) TableName() string {
	return "stock_history"
}
