package postgres

import (
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/clearfreight/tariffscope/internal/config"
	"github.com/clearfreight/tariffscope/internal/infrastructure/monitoring/logging"
	"github.com/clearfreight/tariffscope/pkg/errors"
)

// RunMigrations applies every pending migration from the configured path.
// A database with no pending migrations is not an error.
func RunMigrations(cfg config.DatabaseConfig, logger logging.Logger) error {
	path := cfg.MigrationPath
	if path == "" {
		path = "migrations"
	}

	m, err := migrate.New("file://"+path, migrateDSN(cfg))
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to initialize migrator")
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil {
			logger.Warn("Migration source close failed", logging.Err(srcErr))
		}
		if dbErr != nil {
			logger.Warn("Migration database close failed", logging.Err(dbErr))
		}
	}()

	if err := m.Up(); err != nil {
		if err == migrate.ErrNoChange {
			logger.Info("No pending migrations")
			return nil
		}
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "migration failed")
	}

	version, dirty, verr := m.Version()
	if verr != nil && verr != migrate.ErrNilVersion {
		logger.Warn("Could not read migration version", logging.Err(verr))
		return nil
	}
	logger.Info("Migrations applied",
		logging.Int("version", int(version)),
		logging.Bool("dirty", dirty),
	)
	return nil
}

// migrateDSN rewrites the pool DSN onto the scheme registered by the
// golang-migrate pgx/v5 driver.
func migrateDSN(cfg config.DatabaseConfig) string {
	return strings.Replace(BuildDSN(cfg), "postgres://", "pgx5://", 1)
}
