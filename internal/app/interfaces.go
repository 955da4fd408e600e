package app

import (
	"github.com/robfig/cron/v3"
	"github.com/shopstock/shopstock/config"
	"github.com/shopstock/shopstock/internal/catalog"
	"github.com/shopstock/shopstock/internal/inventory"
	"github.com/shopstock/shopstock/internal/order"
	"gorm.io/gorm"
)

// DBProvider provides database access
type DBProvider interface {
	DB() *gorm.DB
}

// ConfigProvider provides application configuration
type ConfigProvider interface {
	Config() *config.AppConfig
}

// SettingsProvider provides system settings access
type SettingsProvider interface {
	GetSettingsStringValue(category, key string) string
	GetSettingsInt64Value(category, key string) int64
	GetSettingsBoolValue(category, key string) bool
	SaveSettings(settings map[string]interface{}) error
}

// SchedulerProvider provides task scheduling capability
type SchedulerProvider interface {
	Scheduler() *cron.Cron
}

// ConfigManagerProvider provides configuration manager access
type ConfigManagerProvider interface {
	ConfigMgr() *ConfigManager
}

// ServiceProvider exposes the domain services to the HTTP layer
type ServiceProvider interface {
	Catalog() *catalog.Service
	Inventory() *inventory.Service
	Orders() *order.Service
}

// AppContext combines all provider interfaces for full application context
type AppContext interface {
	DBProvider
	ConfigProvider
	SettingsProvider
	SchedulerProvider
	ConfigManagerProvider
	ServiceProvider

	MigrateDB(track bool) error
	InitDb()
	DropAll()
	// RunLowStockSweep recounts low stock products immediately
	RunLowStockSweep() (int64, error)
}
