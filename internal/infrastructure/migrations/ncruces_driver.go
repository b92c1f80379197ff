package migrations

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/golang-migrate/migrate/v4/database"
)

// DefaultMigrationsTable records the applied schema version.
const DefaultMigrationsTable = "schema_migrations"

// ErrNilConfig is returned by WithInstance when config is nil.
var ErrNilConfig = errors.New("no config")

// Config configures Driver.
type Config struct {
	MigrationsTable string
	// NoTxWrap runs each migration file outside a transaction.
	NoTxWrap bool
}

// Driver is a golang-migrate database.Driver for ncruces/go-sqlite3.
type Driver struct {
	db     *sql.DB
	locked atomic.Bool
	config Config
}

var _ database.Driver = (*Driver)(nil)

// WithInstance wraps an open connection and makes sure the version table exists.
func WithInstance(db *sql.DB, config *Config) (database.Driver, error) {
	if config == nil {
		return nil, ErrNilConfig
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}

	d := &Driver{db: db, config: *config}
	if d.config.MigrationsTable == "" {
		d.config.MigrationsTable = DefaultMigrationsTable
	}

	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %[1]s (version uint64, dirty bool);
	CREATE UNIQUE INDEX IF NOT EXISTS version_unique ON %[1]s (version);`, d.config.MigrationsTable)
	if _, err := db.Exec(ddl); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", d.config.MigrationsTable, err)
	}
	return d, nil
}

// Open is unsupported; connections come from WithInstance.
func (d *Driver) Open(string) (database.Driver, error) {
	return nil, errors.New("open not supported; use WithInstance")
}

// Close closes the underlying connection.
func (d *Driver) Close() error {
	return d.db.Close()
}

// Lock takes the in-process migration lock.
func (d *Driver) Lock() error {
	if !d.locked.CompareAndSwap(false, true) {
		return database.ErrLocked
	}
	return nil
}

// Unlock releases the in-process migration lock.
func (d *Driver) Unlock() error {
	if !d.locked.CompareAndSwap(true, false) {
		return database.ErrNotLocked
	}
	return nil
}

// Run executes one migration file.
func (d *Driver) Run(migration io.Reader) error {
	body, err := io.ReadAll(migration)
	if err != nil {
		return err
	}
	query := string(body)

	if d.config.NoTxWrap {
		if _, err := d.db.Exec(query); err != nil {
			return &database.Error{OrigErr: err, Query: body}
		}
		return nil
	}
	return d.inTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(query); err != nil {
			return &database.Error{OrigErr: err, Query: body}
		}
		return nil
	})
}

// SetVersion replaces the recorded version.
func (d *Driver) SetVersion(version int, dirty bool) error {
	return d.inTx(func(tx *sql.Tx) error {
		del := "DELETE FROM " + d.config.MigrationsTable //nolint:gosec // table name comes from Config
		if _, err := tx.Exec(del); err != nil {
			return &database.Error{OrigErr: err, Query: []byte(del)}
		}
		// A dirty nil version is kept so a failed first down migration
		// still leaves a trace (golang-migrate issue 330).
		if version < 0 && !(version == database.NilVersion && dirty) {
			return nil
		}
		ins := "INSERT INTO " + d.config.MigrationsTable + " (version, dirty) VALUES (?, ?)" //nolint:gosec // table name comes from Config
		if _, err := tx.Exec(ins, version, dirty); err != nil {
			return &database.Error{OrigErr: err, Query: []byte(ins)}
		}
		return nil
	})
}

// Version returns the recorded version, or database.NilVersion when none is.
func (d *Driver) Version() (int, bool, error) {
	var (
		version int
		dirty   bool
	)
	q := "SELECT version, dirty FROM " + d.config.MigrationsTable + " LIMIT 1" //nolint:gosec // table name comes from Config
	if err := d.db.QueryRow(q).Scan(&version, &dirty); err != nil {
		return database.NilVersion, false, nil
	}
	return version, dirty, nil
}

// Drop removes every table.
func (d *Driver) Drop() error {
	rows, err := d.db.Query(`SELECT name FROM sqlite_master WHERE type = 'table'`)
	if err != nil {
		return &database.Error{OrigErr: err, Err: "list tables"}
	}
	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			_ = rows.Close()
			return err
		}
		if name != "" && name != "sqlite_sequence" {
			tables = append(tables, name)
		}
	}
	if err := errors.Join(rows.Err(), rows.Close()); err != nil {
		return &database.Error{OrigErr: err, Err: "list tables"}
	}

	for _, name := range tables {
		if err := d.inTx(func(tx *sql.Tx) error {
			_, err := tx.Exec("DROP TABLE " + name)
			return err
		}); err != nil {
			return &database.Error{OrigErr: err, Query: []byte("DROP TABLE " + name)}
		}
	}
	if len(tables) > 0 {
		if _, err := d.db.Exec("VACUUM"); err != nil {
			return &database.Error{OrigErr: err, Query: []byte("VACUUM")}
		}
	}
	return nil
}

func (d *Driver) inTx(fn func(*sql.Tx) error) error {
	tx, err := d.db.Begin()
	if err != nil {
		return &database.Error{OrigErr: err, Err: "transaction start failed"}
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			err = errors.Join(err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return &database.Error{OrigErr: err, Err: "transaction commit failed"}
	}
	return nil
}
