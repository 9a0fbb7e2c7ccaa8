package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var kvMigrations embed.FS

// ErrDirtySchema means an earlier kv_store migration stopped halfway and
// needs manual repair.
var ErrDirtySchema = errors.New("kv store schema is dirty")

// MigrateKVStore brings the kv_store table of the database at dbPath up to
// date and reports the schema version it ends on.
func MigrateKVStore(dbPath string) (uint, error) {
	// the migrate driver closes its handle, so it never shares the store's
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return 0, fmt.Errorf("open %s for migration: %w", dbPath, err)
	}
	defer db.Close()

	target, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return 0, fmt.Errorf("kv migration target: %w", err)
	}
	source, err := iofs.New(kvMigrations, "migrations")
	if err != nil {
		return 0, fmt.Errorf("kv migration source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite", target)
	if err != nil {
		return 0, fmt.Errorf("kv migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("migrate kv_store: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("read kv_store schema version: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("version %d: %w", version, ErrDirtySchema)
	}
	return version, nil
}
