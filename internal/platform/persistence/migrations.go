package persistence

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // PostgreSQL driver
	_ "github.com/golang-migrate/migrate/v4/source/file"       // File source driver
)

// ErrDirtySchema is returned when a previous migration stopped halfway and needs a manual fix
var ErrDirtySchema = errors.New("database schema is dirty")

// RunMigrations brings the natillera schema under migrationsPath (e.g. migrations/postgres) up
// to date. Both binaries call it at startup; concurrent runs are serialised by migrate's lock.
func RunMigrations(logger *slog.Logger, databaseURL string, migrationsPath string) error {
	if migrationsPath == "" {
		return errors.New("migrations path cannot be empty")
	}
	if databaseURL == "" {
		return errors.New("database URL cannot be empty")
	}

	m, err := migrate.New("file://"+migrationsPath, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer closeMigrate(logger, m)

	from, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		logger.Info("Empty database, applying all migrations", "path", migrationsPath)
	case err != nil:
		return fmt.Errorf("failed to read schema version: %w", err)
	case dirty:
		return fmt.Errorf("%w at version %d", ErrDirtySchema, from)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("Database schema up to date", "version", from)
			return nil
		}
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	to, _, _ := m.Version()
	logger.Info("Database schema migrated", "from_version", from, "to_version", to)
	return nil
}

func closeMigrate(logger *slog.Logger, m *migrate.Migrate) {
	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		logger.Warn("Failed to close migration source", "error", sourceErr)
	}
	if dbErr != nil {
		logger.Warn("Failed to close migration database", "error", dbErr)
	}
}
