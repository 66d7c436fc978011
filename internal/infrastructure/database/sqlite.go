package database

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"teachhub/config"
)

// NewSQLite opens a single-connection SQLite database. It backs local runs
// with DB_DRIVER=sqlite and the repository tests. Foreign keys are switched on
// so the restrict rules hold exactly as they do on PostgreSQL.
func NewSQLite(path string, cfg config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", path)

	db, err := gorm.Open(sqlite.Open(dsn), Options(cfg))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// One connection keeps an in-memory database alive and serialises writers.
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// Open picks the driver named by DB_DRIVER.
func Open(cfg config.Config) (*gorm.DB, error) {
	switch cfg.DBDriver {
	case "", "postgres":
		return NewPostgres(cfg)
	case "sqlite":
		return NewSQLite(cfg.DBPath, cfg)
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.DBDriver)
	}
}
