// Package db opens the ledger document's SQLite store.
package db

import (
	"fmt"
	"os"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"broker_importer/internal/feature/ledger/adapters"
)

// OpenDocument opens the document database at path. The schema normally
// pre-exists (the desktop application owns it); RUN_MIGRATIONS=true creates
// it, for bootstrapping empty documents.
func OpenDocument(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open document %q: %w", path, err)
	}

	if os.Getenv("RUN_MIGRATIONS") == "true" {
		if err := adapters.Migrate(db); err != nil {
			return nil, fmt.Errorf("migrate document %q: %w", path, err)
		}
	}
	return db, nil
}
