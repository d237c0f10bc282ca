package db

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"coinhub/internal/model"
)

// Migrate creates or updates the schema. Parents come before children so
// foreign keys resolve.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.Account{},
		&model.Category{},
		&model.Transaction{},
	); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// Reset drops every table, children first. Missing tables are logged and skipped.
func Reset(db *gorm.DB) {
	tables := []interface{}{
		&model.Transaction{},
		&model.Category{},
		&model.Account{},
		&model.User{},
	}
	for _, table := range tables {
		if err := db.Migrator().DropTable(table); err != nil {
			slog.Warn("drop table failed (may not exist)", "error", err)
		}
	}
}
