// Package migrations bundles the schema for every SQL backend and applies it
// through golang-migrate.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"

	"taskManager/internal/logger"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed postgres/*.sql sqlite/*.sql
var files embed.FS

const (
	postgresDir = "postgres"
	sqliteDir   = "sqlite"
)

// UpPostgres applies pending migrations to the database at connString.
// The migrator opens and closes its own connection.
func UpPostgres(connString string) error {
	m, err := newPostgres(connString)
	if err != nil {
		return err
	}
	defer closeMigrate(m)
	return up(m, postgresDir)
}

func DownPostgres(connString string) error {
	m, err := newPostgres(connString)
	if err != nil {
		return err
	}
	defer closeMigrate(m)
	return down(m, postgresDir)
}

// UpSQLite applies pending migrations through db. The caller keeps ownership of db.
func UpSQLite(db *sql.DB) error {
	m, err := newSQLite(db)
	if err != nil {
		return err
	}
	return up(m, sqliteDir)
}

func newPostgres(connString string) (*migrate.Migrate, error) {
	src, err := iofs.New(files, postgresDir)
	if err != nil {
		return nil, fmt.Errorf("open postgres migration source: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, pgx5URL(connString))
	if err != nil {
		return nil, fmt.Errorf("init postgres migrator: %w", err)
	}
	return m, nil
}

func newSQLite(db *sql.DB) (*migrate.Migrate, error) {
	src, err := iofs.New(files, sqliteDir)
	if err != nil {
		return nil, fmt.Errorf("open sqlite migration source: %w", err)
	}
	driver, err := sqlitemigrate.WithInstance(db, &sqlitemigrate.Config{})
	if err != nil {
		return nil, fmt.Errorf("init sqlite migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return nil, fmt.Errorf("init sqlite migrator: %w", err)
	}
	return m, nil
}

func up(m *migrate.Migrate, dialect string) error {
	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("Migrations: schema is up to date", zap.String("dialect", dialect))
			return nil
		}
		return fmt.Errorf("apply %s migrations: %w", dialect, err)
	}

	version, _, _ := m.Version()
	logger.Info("Migrations: applied", zap.String("dialect", dialect), zap.Uint("version", version))
	return nil
}

func down(m *migrate.Migrate, dialect string) error {
	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("rollback %s migrations: %w", dialect, err)
	}
	logger.Info("Migrations: rolled back", zap.String("dialect", dialect))
	return nil
}

func closeMigrate(m *migrate.Migrate) {
	srcErr, dbErr := m.Close()
	if srcErr != nil || dbErr != nil {
		logger.Warn("Migrations: close failed", zap.NamedError("source", srcErr), zap.NamedError("database", dbErr))
	}
}

// pgx5URL rewrites a postgres:// URL to the scheme registered by the pgx/v5 driver.
func pgx5URL(connString string) string {
	for _, prefix := range []string{"postgresql://", "postgres://"} {
		if strings.HasPrefix(connString, prefix) {
			return "pgx5://" + strings.TrimPrefix(connString, prefix)
		}
	}
	return connString
}
