package db

import (
	"fmt"

	"commentkit/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Init opens the Postgres connection and migrates the module's tables.
func Init(dsn string) (*gorm.DB, error) {
	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := Migrate(conn); err != nil {
		return nil, err
	}

	return conn, nil
}

// Migrate creates or updates the comments and reactions tables. The
// users table belongs to the host application; it is migrated here only
// so the foreign keys have something to point at in a fresh database.
func Migrate(conn *gorm.DB) error {
	err := conn.AutoMigrate(
		&models.User{},
		&models.Comment{},
		&models.Reaction{},
	)
	if err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	return nil
}
