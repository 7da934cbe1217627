package database

import (
	"errors"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("record not found")

type Database struct {
	db *gorm.DB
}

// Gorm exposes the underlying handle for callers that need raw access (tests, health checks).
func (d *Database) Gorm() *gorm.DB {
	return d.db
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
