package database

import (
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"github.com/thereayou/blog-api/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens databaseURL (postgres://... or sqlite://path) and migrates the schema.
func (d *Database) Connect(databaseURL string) error {
	var dialer gorm.Dialector
	isSQLite := false
	switch {
	case strings.HasPrefix(databaseURL, "postgres"):
		dialer = postgres.Open(databaseURL)
	case strings.HasPrefix(databaseURL, "sqlite://"):
		dialer = sqlite.Open(strings.TrimPrefix(databaseURL, "sqlite://"))
		isSQLite = true
	default:
		return fmt.Errorf("unsupported database driver: %s", databaseURL)
	}

	db, err := gorm.Open(dialer, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if isSQLite {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		// one connection: in-memory databases are per connection, and sqlite serializes writes anyway
		sqlDB.SetMaxOpenConns(1)
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return fmt.Errorf("enable foreign keys: %w", err)
		}
	}

	if err := db.AutoMigrate(&models.User{}, &models.Post{}, &models.Comment{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	d.db = db
	return nil
}

func (d *Database) Close() error {
	if d.db == nil {
		return nil
	}
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
