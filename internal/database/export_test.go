package database

import (
	"database/sql"

	"github.com/golang-migrate/migrate/v4/database/sqlite3"
)

// NewSQLiteMigrator runs the embedded migrations against a SQLite handle.
func NewSQLiteMigrator(db *sql.DB) (*Migrator, error) {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return nil, err
	}
	return newMigrator(db, "sqlite3", driver)
}
