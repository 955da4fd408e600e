// Package events carries domain events (order placed, order responded,
// stock low) from the services to in-process subscribers and optional
// external sinks.
package events

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TopicOrderPlaced    = "order.placed"
	TopicOrderResponded = "order.responded"
	TopicStockLow       = "stock.low"
)

// Event is the envelope delivered to subscribers and sinks.
type Event struct {
	Topic      string      `json:"topic"`
	Key        string      `json:"key"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

type OrderPlaced struct {
	OrderID     int64           `json:"order_id,string"`
	UserID      int64           `json:"user_id,string"`
	ShopID      int64           `json:"shop_id,string"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	ItemCount   int             `json:"item_count"`
}

type OrderResponded struct {
	OrderID int64  `json:"order_id,string"`
	ShopID  int64  `json:"shop_id,string"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

type StockLow struct {
	ProductID    int64  `json:"product_id,string"`
	ShopID       int64  `json:"shop_id,string"`
	ProductName  string `json:"product_name"`
	Quantity     int    `json:"quantity"`
	MinimumStock int    `json:"minimum_stock"`
}

func New(topic, key string, payload interface{}) Event {
	return Event{Topic: topic, Key: key, OccurredAt: time.Now(), Payload: payload}
}
