// Package migrations owns the freelog SQLite schema and applies it with
// golang-migrate.
//
// golang-migrate's bundled sqlite3 driver links mattn/go-sqlite3, which
// registers under the same driver name as ncruces/go-sqlite3. Driver in this
// package implements database.Driver directly on a *sql.DB opened with the
// ncruces driver instead.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed *.sql
var schemaFS embed.FS

// FS returns the embedded migration files.
func FS() fs.FS {
	return schemaFS
}

// Status describes the schema version of a database.
type Status struct {
	Version uint
	Dirty   bool
	// Applied is false when no migration has ever run.
	Applied bool
}

func newMigrate(db *sql.DB) (*migrate.Migrate, error) {
	source, err := iofs.New(schemaFS, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to open migration source: %w", err)
	}
	driver, err := WithInstance(db, &Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}
	return m, nil
}

// RunMigrations applies every pending migration. A database that is already
// current is not an error.
func RunMigrations(db *sql.DB) error {
	m, err := newMigrate(db)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// Rollback reverts the given number of migrations.
func Rollback(db *sql.DB, steps int) error {
	if steps <= 0 {
		return fmt.Errorf("rollback steps must be positive, got %d", steps)
	}
	m, err := newMigrate(db)
	if err != nil {
		return err
	}
	if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// CurrentStatus reports the schema version recorded in db.
func CurrentStatus(db *sql.DB) (Status, error) {
	m, err := newMigrate(db)
	if err != nil {
		return Status{}, err
	}
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return Status{}, nil
	}
	if err != nil {
		return Status{}, fmt.Errorf("failed to read schema version: %w", err)
	}
	return Status{Version: version, Dirty: dirty, Applied: true}, nil
}
