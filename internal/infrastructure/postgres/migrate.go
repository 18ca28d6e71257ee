package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/fastygo/workdesk/internal/config"
)

const defaultMigrationsPath = "assets/migrations"

// RunMigrations applies the schema and the seeded leave types when RUN_MIGRATIONS is set.
func RunMigrations(cfg *config.Config, logger *zap.Logger) error {
	if cfg == nil || !cfg.Migrations.Enabled {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	sqlDB, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("migrations open: %w", err)
	}
	defer sqlDB.Close()
	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("migrations ping: %w", err)
	}

	driver, err := postgres.WithInstance(sqlDB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("migrations driver: %w", err)
	}
	m, err := migrate.NewWithDatabaseInstance(migrationSource(cfg.Migrations.Path), cfg.Database.Name, driver)
	if err != nil {
		return fmt.Errorf("migrations source: %w", err)
	}
	defer m.Close()

	from, _, err := schemaVersion(m)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrations up from %d: %w", from, err)
	}
	to, dirty, err := schemaVersion(m)
	if err != nil {
		return err
	}

	logger.Info("database migrations applied",
		zap.Uint("from", from),
		zap.Uint("to", to),
		zap.Bool("dirty", dirty))
	return nil
}

func schemaVersion(m *migrate.Migrate) (uint, bool, error) {
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("migrations version: %w", err)
	}
	return version, dirty, nil
}

func migrationSource(path string) string {
	if path == "" {
		path = defaultMigrationsPath
	}
	return "file://" + filepath.ToSlash(path)
}
