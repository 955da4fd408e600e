package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

type SysConfig struct {
	Appid    string `yaml:"appid"`
	Location string `yaml:"location"`
	Workdir  string `yaml:"workdir"`
	Debug    bool   `yaml:"debug"`
	NodeID   int64  `yaml:"node_id"`
}

type WebConfig struct {
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	BaseURL string `yaml:"base_url"`
}

type DBConfig struct {
	Type     string `yaml:"type"` // postgres | sqlite
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Passwd   string `yaml:"passwd"`
	MaxConn  int    `yaml:"max_conn"`
	IdleConn int    `yaml:"idle_conn"`
	Debug    bool   `yaml:"debug"`
}

type LogConfig struct {
	Mode       string `yaml:"mode"` // development | production
	FileEnable bool   `yaml:"file_enable"`
	Filename   string `yaml:"filename"`
}

type AuthConfig struct {
	JwtSecret string `yaml:"jwt_secret"`
}

type EventsConfig struct {
	KafkaBrokers []string `yaml:"kafka_brokers"`
	KafkaTopic   string   `yaml:"kafka_topic"`
	PoolSize     int      `yaml:"pool_size"`
}

type AppConfig struct {
	System   SysConfig    `yaml:"system"`
	Web      WebConfig    `yaml:"web"`
	Database DBConfig     `yaml:"database"`
	Logger   LogConfig    `yaml:"logger"`
	Auth     AuthConfig   `yaml:"auth"`
	Events   EventsConfig `yaml:"events"`
}

func (c *AppConfig) GetLogDir() string {
	return filepath.Join(c.System.Workdir, "logs")
}

func (c *AppConfig) GetDataDir() string {
	return filepath.Join(c.System.Workdir, "data")
}

// DefaultAppConfig is used as the base every loaded file is merged onto.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		System: SysConfig{
			Appid:    "shopstock",
			Location: "UTC",
			Workdir:  "/var/shopstock",
			NodeID:   1,
		},
		Web: WebConfig{
			Host:    "0.0.0.0",
			Port:    3000,
			BaseURL: "http://localhost:3000",
		},
		Database: DBConfig{
			Type:     "postgres",
			Host:     "127.0.0.1",
			Port:     5432,
			Name:     "shopstock",
			User:     "postgres",
			Passwd:   "postgres",
			MaxConn:  100,
			IdleConn: 10,
		},
		Logger: LogConfig{
			Mode:     "development",
			Filename: "/var/shopstock/logs/shopstock.log",
		},
		Auth: AuthConfig{
			JwtSecret: "change-me",
		},
		Events: EventsConfig{
			KafkaTopic: "shopstock.events",
			PoolSize:   16,
		},
	}
}

// LoadConfig reads the YAML file at path (when non-empty and present) over the
// defaults and then applies SHOPSTOCK_* environment overrides.
func LoadConfig(path string) (*AppConfig, error) {
	cfg := DefaultAppConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, err
			}
		case !os.IsNotExist(err):
			return nil, err
		}
	}
	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *AppConfig) {
	setString(&cfg.System.Workdir, "SHOPSTOCK_SYSTEM_WORKDIR")
	setString(&cfg.System.Location, "SHOPSTOCK_SYSTEM_LOCATION")
	setBool(&cfg.System.Debug, "SHOPSTOCK_SYSTEM_DEBUG")
	setInt64(&cfg.System.NodeID, "SHOPSTOCK_SYSTEM_NODE_ID")

	setString(&cfg.Web.Host, "SHOPSTOCK_WEB_HOST")
	setInt(&cfg.Web.Port, "SHOPSTOCK_WEB_PORT")
	setString(&cfg.Web.BaseURL, "SHOPSTOCK_WEB_BASE_URL")

	setString(&cfg.Database.Type, "SHOPSTOCK_DB_TYPE")
	setString(&cfg.Database.Host, "SHOPSTOCK_DB_HOST")
	setInt(&cfg.Database.Port, "SHOPSTOCK_DB_PORT")
	setString(&cfg.Database.Name, "SHOPSTOCK_DB_NAME")
	setString(&cfg.Database.User, "SHOPSTOCK_DB_USER")
	setString(&cfg.Database.Passwd, "SHOPSTOCK_DB_PWD")
	setBool(&cfg.Database.Debug, "SHOPSTOCK_DB_DEBUG")

	setString(&cfg.Logger.Mode, "SHOPSTOCK_LOGGER_MODE")
	setBool(&cfg.Logger.FileEnable, "SHOPSTOCK_LOGGER_FILE_ENABLE")

	setString(&cfg.Auth.JwtSecret, "SHOPSTOCK_JWT_SECRET")

	if v := os.Getenv("SHOPSTOCK_KAFKA_BROKERS"); v != "" {
		cfg.Events.KafkaBrokers = strings.Split(v, ",")
	}
	setString(&cfg.Events.KafkaTopic, "SHOPSTOCK_KAFKA_TOPIC")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = cast.ToInt(v)
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = cast.ToInt64(v)
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = cast.ToBool(v)
	}
}
