package store

import (
	"embed"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// MigrationURL turns a driver and DSN into the database URL golang-migrate expects
func MigrationURL(driver, dsn string) (string, error) {
	switch driver {
	case DriverPostgres, DriverPgx:
		if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
			return dsn, nil
		}
		return "", errors.Newf("postgres migrations need a postgres:// url, got %q", redact(dsn))
	case DriverSQLite:
		return "sqlite://" + sqlitePath(dsn), nil
	default:
		return "", errors.Newf("unsupported database driver %q", driver)
	}
}

// NewMigrator builds a migrator over the embedded migrations. Callers close it.
func NewMigrator(driver, dsn string) (*migrate.Migrate, error) {
	dbURL, err := MigrationURL(driver, dsn)
	if err != nil {
		return nil, err
	}

	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return nil, errors.Wrap(err, "open embedded migrations")
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dbURL)
	if err != nil {
		return nil, errors.Wrap(err, "create migrator")
	}
	return m, nil
}

// Migrate applies every pending migration
func Migrate(driver, dsn string) error {
	m, err := NewMigrator(driver, dsn)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, "apply migrations")
	}
	return nil
}

func redact(dsn string) string {
	if i := strings.Index(dsn, "@"); i >= 0 {
		return "***" + dsn[i:]
	}
	return dsn
}
