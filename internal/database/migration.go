package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

// MigrationManager handles database schema migrations
type MigrationManager struct {
	db             *sql.DB
	migrationsPath string
	logger         *logrus.Logger
}

// NewMigrationManager creates a new migration manager
func NewMigrationManager(db *sql.DB, migrationsPath string, logger *logrus.Logger) *MigrationManager {
	if logger == nil {
		logger = logrus.New()
	}
	return &MigrationManager{
		db:             db,
		migrationsPath: migrationsPath,
		logger:         logger,
	}
}

// MigrationStatus contains the current schema version information
type MigrationStatus struct {
	Version   uint
	Dirty     bool
	Applied   bool
	Timestamp time.Time
}

// InitializeDatabase opens the SQLite database, enables foreign keys and runs
// all pending migrations.
func InitializeDatabase(dbPath, migrationsPath string, logger *logrus.Logger) (*sql.DB, error) {
	if logger == nil {
		logger = logrus.New()
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	manager := NewMigrationManager(db, migrationsPath, logger)
	if err := manager.RunMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// initMigrate builds a migrate instance bound to the open connection
func (m *MigrationManager) initMigrate() (*migrate.Migrate, error) {
	driver, err := sqlite3.WithInstance(m.db, &sqlite3.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create sqlite3 migrate driver: %w", err)
	}

	sourceURL := "file://" + filepath.ToSlash(m.migrationsPath)
	instance, err := migrate.NewWithDatabaseInstance(sourceURL, "sqlite3", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	return instance, nil
}

// RunMigrations executes all pending migrations
func (m *MigrationManager) RunMigrations() error {
	m.logger.WithField("migrations_path", m.migrationsPath).Info("Running database migrations")

	instance, err := m.initMigrate()
	if err != nil {
		return err
	}

	if err := instance.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.logger.Info("No pending migrations")
			return nil
		}
		return fmt.Errorf("migration up failed: %w", err)
	}

	version, dirty, err := instance.Version()
	if err != nil {
		return fmt.Errorf("failed to read migration version: %w", err)
	}

	m.logger.WithFields(logrus.Fields{
		"version": version,
		"dirty":   dirty,
	}).Info("Migrations applied")

	return nil
}

// RollbackMigration rolls back the most recently applied migration
func (m *MigrationManager) RollbackMigration() error {
	instance, err := m.initMigrate()
	if err != nil {
		return err
	}

	if err := instance.Steps(-1); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.logger.Info("No migration to roll back")
			return nil
		}
		return fmt.Errorf("migration rollback failed: %w", err)
	}

	m.logger.Info("Rolled back one migration")
	return nil
}

// GetMigrationStatus returns the current schema version
func (m *MigrationManager) GetMigrationStatus() (*MigrationStatus, error) {
	instance, err := m.initMigrate()
	if err != nil {
		return nil, err
	}

	version, dirty, err := instance.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return &MigrationStatus{Applied: false, Timestamp: time.Now()}, nil
		}
		return nil, fmt.Errorf("failed to read migration version: %w", err)
	}

	return &MigrationStatus{
		Version:   version,
		Dirty:     dirty,
		Applied:   true,
		Timestamp: time.Now(),
	}, nil
}

// ValidateSchema verifies that every table the application depends on exists
func (m *MigrationManager) ValidateSchema() error {
	required := []string{"invoices", "invoice_items", "car_makes", "car_models", "particulars"}

	for _, table := range required {
		var name string
		err := m.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table,
		).Scan(&name)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("required table %s is missing", table)
			}
			return fmt.Errorf("failed to check table %s: %w", table, err)
		}
	}

	m.logger.WithField("tables", len(required)).Info("Schema validation passed")
	return nil
}
