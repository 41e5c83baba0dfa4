package db

import (
	"fmt"  // Error wrapping
	"time" // Connection lifetimes

	"gorm.io/driver/mysql" // MySQL driver for GORM
	"gorm.io/gorm"         // GORM ORM library
	"gorm.io/gorm/logger"  // GORM logger levels
)

// Open connects to MySQL and bounds the connection pool. Callers that find
// every connection busy block until one is released.
func Open(dsn string, maxOpen int, debug bool) (*gorm.DB, error) {
	level := logger.Warn // Only slow queries and errors by default
	if debug {
		level = logger.Info
	}
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(level)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to DB: %w", err)
	}
	sqlDB, err := db.DB() // Underlying pool
	if err != nil {
		return nil, fmt.Errorf("failed to access DB pool: %w", err)
	}
	if maxOpen <= 0 {
		maxOpen = 10
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxOpen)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}
