// Package sqlite implements the freelog repositories on SQLite via the
// ncruces/go-sqlite3 driver. It owns connection setup and runs migrations.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	briefs "github.com/freelog/freelog/internal/briefs/domain"
	clients "github.com/freelog/freelog/internal/clients/domain"
	finance "github.com/freelog/freelog/internal/finance/domain"
	"github.com/freelog/freelog/internal/infrastructure/migrations"
	"github.com/freelog/freelog/internal/log"
	profiles "github.com/freelog/freelog/internal/profiles/domain"
	projects "github.com/freelog/freelog/internal/projects/domain"
	sessions "github.com/freelog/freelog/internal/sessions/domain"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// DB owns the SQLite connection and hands out repositories bound to it.
type DB struct {
	conn *sql.DB
	path string
}

// NewDB opens the database at path, configures pragmas, and runs migrations.
// The parent directory is created when missing. An existing file is copied
// to {path}.bak before migrating. MemoryPath opens an in-memory database
// on a single connection.
func NewDB(path string) (*DB, error) {
	log.Debug(log.CatDB, "Opening database", "path", path)

	dsn := "file::memory:"
	if path != MemoryPath {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o700); err != nil {
			log.ErrorErr(log.CatDB, "Failed to create database directory", err, "path", dir)
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
		if _, err := os.Stat(path); err == nil {
			backup := path + ".bak"
			if err := copyFile(path, backup); err != nil {
				log.ErrorErr(log.CatDB, "Failed to create pre-migration backup", err, "backup", backup)
				return nil, fmt.Errorf("failed to create pre-migration backup: %w", err)
			}
			log.Debug(log.CatDB, "Created pre-migration backup", "backup", backup)
		}
		dsn = "file:" + path
	}

	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		log.ErrorErr(log.CatDB, "Failed to open database", err, "path", path)
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if path == MemoryPath {
		// Every pooled connection would otherwise see its own empty database.
		conn.SetMaxOpenConns(1)
	}

	if err := configure(conn, path == MemoryPath); err != nil {
		_ = conn.Close()
		log.ErrorErr(log.CatDB, "Failed to configure database", err, "path", path)
		return nil, err
	}

	if err := migrations.RunMigrations(conn); err != nil {
		_ = conn.Close()
		log.ErrorErr(log.CatDB, "Failed to run migrations", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info(log.CatDB, "Database initialized", "path", path)
	return &DB{conn: conn, path: path}, nil
}

func configure(conn *sql.DB, memory bool) error {
	if err := conn.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	pragmas := []string{"PRAGMA foreign_keys=ON", "PRAGMA busy_timeout=5000"}
	if !memory {
		pragmas = append([]string{"PRAGMA journal_mode=WAL"}, pragmas...)
	}
	for _, p := range pragmas {
		if _, err := conn.Exec(p); err != nil {
			return fmt.Errorf("failed to apply %q: %w", p, err)
		}
	}
	return nil
}

// Close releases database resources.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}
	log.Debug(log.CatDB, "Closing database", "path", db.path)
	return db.conn.Close()
}

// Connection returns the underlying *sql.DB.
func (db *DB) Connection() *sql.DB {
	return db.conn
}

// Ping checks the connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Profiles returns the profile repository.
func (db *DB) Profiles() profiles.ProfileRepository { return &profileRepository{db: db.conn} }

// Sessions returns the login session repository.
func (db *DB) Sessions() sessions.SessionRepository { return &sessionRepository{db: db.conn} }

// Clients returns the client repository.
func (db *DB) Clients() clients.ClientRepository { return &clientRepository{db: db.conn} }

// Projects returns the project repository.
func (db *DB) Projects() projects.ProjectRepository { return &projectRepository{db: db.conn} }

// Payments returns the payment repository.
func (db *DB) Payments() finance.PaymentRepository { return &paymentRepository{db: db.conn} }

// Briefs returns the brief repository.
func (db *DB) Briefs() briefs.BriefRepository { return &briefRepository{db: db.conn} }

// withTx runs fn in a transaction, committing when it returns nil.
func withTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			err = errors.Join(err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// copyFile copies src over dst, keeping src's permissions. A failed close of
// dst is reported so a truncated backup is never mistaken for a good one.
func copyFile(src, dst string) (retErr error) {
	in, err := os.Open(src) //nolint:gosec // src is the configured database path
	if err != nil {
		return err
	}
	defer func() {
		if err := in.Close(); err != nil && retErr == nil {
			retErr = fmt.Errorf("failed to close source file: %w", err)
		}
	}()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_RDWR|os.O_CREATE|os.O_TRUNC, info.Mode()) //nolint:gosec // dst is derived from the database path
	if err != nil {
		return err
	}
	defer func() {
		if err := out.Close(); err != nil && retErr == nil {
			retErr = fmt.Errorf("failed to close backup file: %w", err)
		}
	}()

	_, err = io.Copy(out, in)
	return err
}
