package postgres

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATIONS
// ══════════════════════════════════════════════════════════════════════════════

// Migration represents a database migration.
type Migration struct {
	Version     int
	Description string
	Up          string
	Down        string
}

// Migrator handles database migrations.
type Migrator struct {
	conn       *Connection
	migrations []Migration
}

// NewMigrator creates a new migrator.
func NewMigrator(conn *Connection, migrations []Migration) *Migrator {
	// Sort migrations by version
	sorted := make([]Migration, len(migrations))
	copy(sorted, migrations)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Version < sorted[j].Version
	})

	return &Migrator{
		conn:       conn,
		migrations: sorted,
	}
}

// EnsureMigrationTable creates the migrations tracking table if needed.
func (m *Migrator) EnsureMigrationTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	_, err := m.conn.Exec(ctx, query)
	if err != nil {
		return fmt.Errorf("%w: failed to create migration table: %v", ErrMigrationFailed, err)
	}
	return nil
}

// GetAppliedMigrations returns the versions of applied migrations.
func (m *Migrator) GetAppliedMigrations(ctx context.Context) (map[int]bool, error) {
	query := `SELECT version FROM schema_migrations ORDER BY version`

	rows, err := m.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query migrations: %v", ErrMigrationFailed, err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("%w: failed to scan migration version: %v", ErrMigrationFailed, err)
		}
		applied[version] = true
	}

	return applied, rows.Err()
}

// Migrate applies all pending migrations.
func (m *Migrator) Migrate(ctx context.Context) error {
	if err := m.EnsureMigrationTable(ctx); err != nil {
		return err
	}

	applied, err := m.GetAppliedMigrations(ctx)
	if err != nil {
		return err
	}

	for _, migration := range m.migrations {
		if applied[migration.Version] {
			continue
		}

		err := m.conn.WithTx(ctx, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, migration.Up); err != nil {
				return fmt.Errorf("migration %d (%s) failed: %w",
					migration.Version, migration.Description, err)
			}

			insertQuery := `
				INSERT INTO schema_migrations (version, description, applied_at)
				VALUES ($1, $2, $3)
			`
			if _, err := tx.Exec(ctx, insertQuery,
				migration.Version, migration.Description, time.Now().UTC()); err != nil {
				return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
			}

			return nil
		})

		if err != nil {
			return fmt.Errorf("%w: %v", ErrMigrationFailed, err)
		}
	}

	return nil
}

// Rollback rolls back the last applied migration.
func (m *Migrator) Rollback(ctx context.Context) error {
	applied, err := m.GetAppliedMigrations(ctx)
	if err != nil {
		return err
	}

	// Find the highest applied version
	var lastVersion int
	for version := range applied {
		if version > lastVersion {
			lastVersion = version
		}
	}

	if lastVersion == 0 {
		return nil // Nothing to roll back
	}

	var target *Migration
	for i := range m.migrations {
		if m.migrations[i].Version == lastVersion {
			target = &m.migrations[i]
			break
		}
	}

	if target == nil {
		return fmt.Errorf("%w: migration %d not found", ErrMigrationFailed, lastVersion)
	}

	if target.Down == "" {
		return fmt.Errorf("%w: migration %d has no down migration", ErrMigrationFailed, lastVersion)
	}

	return m.conn.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, target.Down); err != nil {
			return fmt.Errorf("rollback %d failed: %w", target.Version, err)
		}

		deleteQuery := `DELETE FROM schema_migrations WHERE version = $1`
		if _, err := tx.Exec(ctx, deleteQuery, target.Version); err != nil {
			return fmt.Errorf("failed to remove migration record %d: %w", target.Version, err)
		}

		return nil
	})
}

// Status returns the migration status.
func (m *Migrator) Status(ctx context.Context) ([]MigrationStatus, error) {
	if err := m.EnsureMigrationTable(ctx); err != nil {
		return nil, err
	}

	applied, err := m.GetAppliedMigrations(ctx)
	if err != nil {
		return nil, err
	}

	statuses := make([]MigrationStatus, 0, len(m.migrations))
	for _, migration := range m.migrations {
		statuses = append(statuses, MigrationStatus{
			Version:     migration.Version,
			Description: migration.Description,
			Applied:     applied[migration.Version],
		})
	}

	return statuses, nil
}

// MigrationStatus represents the status of a migration.
type MigrationStatus struct {
	Version     int
	Description string
	Applied     bool
}
