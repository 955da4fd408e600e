package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopstock/shopstock/config"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// getDatabase opens the configured database or panics. SQLite stores its
// file under <workdir>/data and is meant for local runs.
func getDatabase(cfg config.DBConfig, workdir string) *gorm.DB {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}
	if cfg.Debug {
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	}

	var dialector gorm.Dialector
	switch cfg.Type {
	case "sqlite":
		dir := filepath.Join(workdir, "data")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			panic(err)
		}
		name := cfg.Name
		if name == "" {
			name = "shopstock"
		}
		dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL",
			filepath.Join(dir, name+".db"))
		dialector = sqlite.Open(dsn)
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable TimeZone=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Passwd, cfg.Name, time.Local.String())
		dialector = postgres.Open(dsn)
	default:
		panic(fmt.Sprintf("unsupported database type %q", cfg.Type))
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		zap.S().Errorf("open %s database failed: %v", cfg.Type, err)
		panic(err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}
	if cfg.Type == "sqlite" {
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxConn)
		sqlDB.SetMaxIdleConns(cfg.IdleConn)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}
	return db
}
