package postgres

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // register postgres driver
	_ "github.com/golang-migrate/migrate/v4/source/file"       // register file source driver
)

// SourceURL turns a migrations directory into a golang-migrate source URL.
// Values that already carry a scheme are returned unchanged.
func SourceURL(dir string) string {
	if strings.Contains(dir, "://") {
		return dir
	}
	return "file://" + filepath.ToSlash(filepath.Clean(dir))
}

// RunMigrations applies all pending migrations found in dir. Having nothing
// to apply is not an error.
func RunMigrations(dsn, dir string) error {
	m, err := migrate.New(SourceURL(dir), dsn)
	if err != nil {
		return fmt.Errorf("postgres: create migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("postgres: run migrations up: %w", err)
	}
	return nil
}

// RunMigrationsDown rolls back every migration in dir.
func RunMigrationsDown(dsn, dir string) error {
	m, err := migrate.New(SourceURL(dir), dsn)
	if err != nil {
		return fmt.Errorf("postgres: create migrator: %w", err)
	}
	defer m.Close()

	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("postgres: run migrations down: %w", err)
	}
	return nil
}
