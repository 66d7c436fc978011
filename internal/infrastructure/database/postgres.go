package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"teachhub/config"
)

// NewPostgres opens the catalog database. TranslateError is required: the
// repositories rely on gorm.ErrDuplicatedKey and gorm.ErrForeignKeyViolated.
func NewPostgres(cfg config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode)

	db, err := gorm.Open(postgres.Open(dsn), Options(cfg))
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Println("Connected to PostgreSQL")
	return db, nil
}

// Options returns the gorm settings shared by every dialect the service runs on.
func Options(cfg config.Config) *gorm.Config {
	gormLogger := logger.Default.LogMode(logger.Info)
	switch cfg.GoEnv {
	case "production":
		gormLogger = logger.Default.LogMode(logger.Error)
	case "test":
		gormLogger = logger.Default.LogMode(logger.Silent)
	}
	return &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	}
}
