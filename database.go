package main

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB provides the database connection.
type DB struct {
	// Object-relational mapping.
	Gorm *gorm.DB
	// Either "postgres" or "sqlite".
	Dialect string
	// Connection info string containing database name, user, port etc.
	ConnectionInfo string
}

// NewDB returns a new instance of DB.
func NewDB(cfg DatabaseConfig) *DB {
	db := &DB{
		Dialect:        cfg.Dialect,
		ConnectionInfo: cfg.ConnectionInfo(),
	}
	return db
}

// Open opens a new database connection. It also configures logging
// based on whether we're in development or in production.
func Open(db *DB, isProd bool) (err error) {
	if db.ConnectionInfo == "" {
		return fmt.Errorf("connectionInfo required")
	}
	logMode := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}
	if !isProd {
		logMode.Logger = logger.Default.LogMode(logger.Info)
	}

	var dialector gorm.Dialector
	switch db.Dialect {
	case "postgres":
		dialector = postgres.Open(db.ConnectionInfo)
	case "sqlite":
		dialector = sqlite.Open(db.ConnectionInfo)
	default:
		return fmt.Errorf("unsupported dialect %q", db.Dialect)
	}
	db.Gorm, err = gorm.Open(dialector, logMode)
	if err != nil {
		return fmt.Errorf("err opening gorm %s connection: %w", db.Dialect, err)
	}
	return nil
}

// Close closes the database connection.
func Close(db *DB) error {
	sqlDb, err := db.Gorm.DB()
	if err != nil {
		return err
	}
	return sqlDb.Close()
}
