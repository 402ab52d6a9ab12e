package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"skytracker/backend/internal/models/entities"
)

var PgDB *gorm.DB

// InitPostgresORM opens the shared GORM handle and migrates the favorites table
func InitPostgresORM(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if err := db.AutoMigrate(&entities.Favorite{}); err != nil {
		return nil, fmt.Errorf("failed to migrate favorites: %w", err)
	}

	PgDB = db
	return db, nil
}
