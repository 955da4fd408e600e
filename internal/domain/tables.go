package domain

var Tables = []interface{}{
	// System
	&SysConfig{},
	&SysOprLog{},
	// Catalog
	&Shop{},
	&Category{},
	&Product{},
	&ProductCategory{},
	// Bucket
	&Bucket{},
	&BucketItem{},
	// Orders
	&Order{},
	&OrderItem{},
	&OrderNotification{},
	// Stock
	&StockHistory{},
	&Notification{},
}
