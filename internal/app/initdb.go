package app

import (
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
	"github.com/shopstock/shopstock/internal/domain"
	"github.com/shopstock/shopstock/pkg/common"
	"go.uber.org/zap"
)

// checkSettings inserts every known setting that is missing, with its default.
func (a *Application) checkSettings() {
	var schemasData ConfigSchemasJSON
	if err := jsoniter.Unmarshal(configSchemasData, &schemasData); err != nil {
		zap.L().Error("failed to load config schemas from JSON", zap.Error(err))
		return
	}

	for sortid, schema := range schemasData.Schemas {
		parts := strings.SplitN(schema.Key, ".", 2)
		if len(parts) != 2 {
			zap.L().Warn("invalid config key format", zap.String("key", schema.Key))
			continue
		}
		category, name := parts[0], parts[1]

		var count int64
		a.gormDB.Model(&domain.SysConfig{}).
			Where("type = ? and name = ?", category, name).
			Count(&count)
		if count > 0 {
			continue
		}
		err := a.gormDB.Create(&domain.SysConfig{
			ID:     common.UUIDint64(),
			Sort:   sortid,
			Type:   category,
			Name:   name,
			Value:  schema.Default,
			Remark: schema.Description,
		}).Error
		if err != nil {
			zap.L().Error("failed to initialize config", zap.String("key", schema.Key), zap.Error(err))
			continue
		}
		zap.L().Info("initialized config",
			zap.String("key", schema.Key),
			zap.String("default", schema.Default))
	}
}

// checkDemoCatalog seeds a demo shop with a few products for local runs.
func (a *Application) checkDemoCatalog() {
	const demoShopName = "Demo Shop"

	var count int64
	a.gormDB.Model(&domain.Shop{}).Where("name = ?", demoShopName).Count(&count)
	if count > 0 {
		return
	}

	shop := domain.Shop{
		ID:          common.UUIDint64(),
		Name:        demoShopName,
		Slug:        common.Slugify(demoShopName),
		Description: "Seeded for local development",
		OwnerID:     1,
		Active:      true,
	}
	category := domain.Category{
		ID:     common.UUIDint64(),
		ShopID: shop.ID,
		Name:   "General",
		Slug:   shop.Slug,
	}
	products := []domain.Product{
		{Name: "demo-widget-basic", Category: "widgets", Price: decimal.RequireFromString("9.99"), Quantity: 100, MinimumStock: 10},
		{Name: "demo-widget-pro", Category: "widgets", Price: decimal.RequireFromString("24.50"), Quantity: 50, MinimumStock: 5},
		{Name: "demo-addon-support", Category: "services", Price: decimal.RequireFromString("49.95"), Quantity: 200, MinimumStock: 0},
	}

	tx := a.gormDB.Begin()
	if err := tx.Create(&shop).Error; err != nil {
		tx.Rollback()
		zap.L().Error("failed to create demo shop", zap.Error(err))
		return
	}
	if err := tx.Create(&category).Error; err != nil {
		tx.Rollback()
		zap.L().Error("failed to create demo category", zap.Error(err))
		return
	}
	for _, p := range products {
		p.ID = common.UUIDint64()
		if err := tx.Create(&p).Error; err != nil {
			tx.Rollback()
			zap.L().Error("failed to create demo product", zap.String("name", p.Name), zap.Error(err))
			return
		}
		link := domain.ProductCategory{ID: common.UUIDint64(), ProductID: p.ID, ShopID: shop.ID, CategoryID: category.ID}
		if err := tx.Create(&link).Error; err != nil {
			tx.Rollback()
			zap.L().Error("failed to link demo product", zap.String("name", p.Name), zap.Error(err))
			return
		}
	}
	if err := tx.Commit().Error; err != nil {
		zap.L().Error("failed to commit demo catalog", zap.Error(err))
		return
	}
	zap.L().Info("initialized demo catalog", zap.String("shop", shop.Slug), zap.Int("products", len(products)))
}
