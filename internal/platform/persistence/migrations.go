package persistence

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

var (
	errNoMigrationsPath = errors.New("migrations path cannot be empty")
	errNoDatabaseURL    = errors.New("database URL cannot be empty")
)

// SchemaVersion is the state of the lending schema after migrations ran.
type SchemaVersion struct {
	Version uint
	Applied bool // false when the schema was already current
}

// RunMigrations brings the lending schema up to date. migrationsPath may be a
// plain directory or a file:// URL.
func RunMigrations(databaseURL, migrationsPath string) (sv SchemaVersion, err error) {
	switch {
	case migrationsPath == "":
		return sv, errNoMigrationsPath
	case databaseURL == "":
		return sv, errNoDatabaseURL
	}

	m, err := migrate.New(migrationSourceURL(migrationsPath), databaseURL)
	if err != nil {
		return sv, fmt.Errorf("failed to open migrations at %s: %w", migrationsPath, err)
	}
	defer closeMigrator(m, &err)

	switch upErr := m.Up(); {
	case upErr == nil:
		sv.Applied = true
	case errors.Is(upErr, migrate.ErrNoChange):
	default:
		err = fmt.Errorf("failed to apply migrations: %w", upErr)
		return sv, err
	}

	version, dirty, vErr := m.Version()
	if vErr != nil && !errors.Is(vErr, migrate.ErrNilVersion) {
		err = fmt.Errorf("failed to read schema version: %w", vErr)
		return sv, err
	}
	if dirty {
		err = fmt.Errorf("schema version %d is dirty", version)
		return sv, err
	}
	sv.Version = version

	return sv, err
}

// closeMigrator releases the source and database handles. A close failure is
// reported only when nothing failed earlier.
func closeMigrator(m *migrate.Migrate, errp *error) {
	sourceErr, dbErr := m.Close()
	if *errp != nil {
		return
	}
	if closeErr := errors.Join(sourceErr, dbErr); closeErr != nil {
		*errp = fmt.Errorf("failed to close migrator: %w", closeErr)
	}
}

func migrationSourceURL(migrationsPath string) string {
	if strings.HasPrefix(migrationsPath, "file://") {
		return migrationsPath
	}
	return "file://" + strings.TrimSuffix(migrationsPath, "/")
}
