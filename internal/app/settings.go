package app

import (
	_ "embed"
	"strings"
	"sync"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/shopstock/shopstock/internal/domain"
	"github.com/shopstock/shopstock/pkg/common"
	"github.com/spf13/cast"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed settings_schemas.json
var configSchemasData []byte

type ConfigSchema struct {
	Key         string `json:"key"`
	Type        string `json:"type"`
	Default     string `json:"default"`
	Description string `json:"description"`
}

type ConfigSchemasJSON struct {
	Schemas []ConfigSchema `json:"schemas"`
}

// InventorySettings are the runtime tunables of the "inventory" category.
type InventorySettings struct {
	LowStockSweepCron         string `mapstructure:"LowStockSweepCron"`
	NotificationRetentionDays int    `mapstructure:"NotificationRetentionDays"`
	DashboardWindowDays       int    `mapstructure:"DashboardWindowDays"`
}

func defaultInventorySettings() InventorySettings {
	return InventorySettings{
		LowStockSweepCron:         "@every 5m",
		NotificationRetentionDays: 30,
		DashboardWindowDays:       30,
	}
}

// ConfigManager caches the sys_config table keyed by "category.name".
type ConfigManager struct {
	db     *gorm.DB
	mu     sync.RWMutex
	values map[string]string
}

func NewConfigManager(db *gorm.DB) *ConfigManager {
	m := &ConfigManager{db: db, values: map[string]string{}}
	if err := m.Reload(); err != nil {
		zap.L().Error("load settings", zap.Error(err))
	}
	return m
}

func (m *ConfigManager) Reload() error {
	var rows []domain.SysConfig
	if err := m.db.Find(&rows).Error; err != nil {
		return errors.Wrap(err, "query settings")
	}
	values := make(map[string]string, len(rows))
	for _, row := range rows {
		values[row.Type+"."+row.Name] = row.Value
	}
	m.mu.Lock()
	m.values = values
	m.mu.Unlock()
	return nil
}

func (m *ConfigManager) GetString(category, name string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.values[category+"."+name]
}

func (m *ConfigManager) GetInt64(category, name string) int64 {
	return cast.ToInt64(m.GetString(category, name))
}

func (m *ConfigManager) GetInt(category, name string) int {
	return cast.ToInt(m.GetString(category, name))
}

func (m *ConfigManager) GetBool(category, name string) bool {
	return cast.ToBool(m.GetString(category, name))
}

// Save upserts "category.name" keyed values and reloads the cache.
func (m *ConfigManager) Save(settings map[string]interface{}) error {
	err := m.db.Transaction(func(tx *gorm.DB) error {
		for key, value := range settings {
			parts := strings.SplitN(key, ".", 2)
			if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
				return errors.Errorf("invalid setting key %q", key)
			}
			res := tx.Model(&domain.SysConfig{}).
				Where("type = ? AND name = ?", parts[0], parts[1]).
				Update("value", cast.ToString(value))
			if res.Error != nil {
				return errors.Wrap(res.Error, "update setting")
			}
			if res.RowsAffected > 0 {
				continue
			}
			if err := tx.Create(&domain.SysConfig{
				ID:    common.UUIDint64(),
				Type:  parts[0],
				Name:  parts[1],
				Value: cast.ToString(value),
			}).Error; err != nil {
				return errors.Wrap(err, "create setting")
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	return m.Reload()
}

// Decode copies the settings of category into out by field name.
func (m *ConfigManager) Decode(category string, out interface{}) error {
	prefix := category + "."
	input := map[string]string{}
	m.mu.RLock()
	for key, value := range m.values {
		if strings.HasPrefix(key, prefix) && value != "" {
			input[strings.TrimPrefix(key, prefix)] = value
		}
	}
	m.mu.RUnlock()

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}

// Inventory returns the inventory settings over their defaults.
func (m *ConfigManager) Inventory() InventorySettings {
	s := defaultInventorySettings()
	if err := m.Decode("inventory", &s); err != nil {
		zap.L().Warn("decode inventory settings", zap.Error(err))
		return defaultInventorySettings()
	}
	return s
}
