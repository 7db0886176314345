package persistence

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // PostgreSQL driver
	_ "github.com/golang-migrate/migrate/v4/source/file"       // File source driver
)

// RunMigrations brings the declarations schema up to date before the pool
// opens. A database already at the latest version is not an error.
func RunMigrations(databaseURL, migrationsPath string) error {
	if databaseURL == "" || migrationsPath == "" {
		return errors.New("both database URL and migrations path are required")
	}

	m, err := migrate.New("file://"+migrationsPath, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to initialize migrations from %s: %w", migrationsPath, err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply declarations schema migrations: %w", err)
	}

	if sourceErr, dbErr := m.Close(); sourceErr != nil {
		return fmt.Errorf("migration source close: %w", sourceErr)
	} else if dbErr != nil {
		return fmt.Errorf("migration database close: %w", dbErr)
	}

	return nil
}
