package migrations

import (
	"database/sql"
	"fmt"
	"log"
)

// Migration represents a database migration
type Migration struct {
	Name    string
	UpSQL   string
	DownSQL string
}

// All lists every migration in apply order
func All() []*Migration {
	return []*Migration{
		InitialSchema,
	}
}

// Migrator manages database migrations
type Migrator struct {
	db *sql.DB
}

// New creates a new Migrator
func New(db *sql.DB) *Migrator {
	return &Migrator{db: db}
}

// Initialize creates the migrations table if it doesn't exist
func (m *Migrator) Initialize() error {
	query := `
		CREATE TABLE IF NOT EXISTS migrations (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	_, err := m.db.Exec(query)
	return err
}

// Applied returns the set of migration names already applied
func (m *Migrator) Applied() (map[string]bool, error) {
	rows, err := m.db.Query(`SELECT name FROM migrations ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		applied[name] = true
	}
	return applied, rows.Err()
}

// run executes migration SQL and its bookkeeping statement in one transaction
func (m *Migrator) run(migration *Migration, migrationSQL, recordQuery string) error {
	tx, err := m.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(migrationSQL); err != nil {
		return fmt.Errorf("failed to execute migration %s: %w", migration.Name, err)
	}
	if _, err := tx.Exec(recordQuery, migration.Name); err != nil {
		return fmt.Errorf("failed to record migration %s: %w", migration.Name, err)
	}
	return tx.Commit()
}

// Migrate applies all pending migrations in order
func (m *Migrator) Migrate(migrations []*Migration) error {
	if err := m.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize migrations: %w", err)
	}

	applied, err := m.Applied()
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	for _, migration := range migrations {
		if applied[migration.Name] {
			continue
		}
		if err := m.run(migration, migration.UpSQL, `INSERT INTO migrations (name) VALUES ($1)`); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", migration.Name, err)
		}
		log.Printf("Applied migration: %s", migration.Name)
	}
	return nil
}

// Rollback rolls back the most recently applied migration
func (m *Migrator) Rollback(migrations []*Migration) error {
	applied, err := m.Applied()
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	for i := len(migrations) - 1; i >= 0; i-- {
		migration := migrations[i]
		if !applied[migration.Name] {
			continue
		}
		if err := m.run(migration, migration.DownSQL, `DELETE FROM migrations WHERE name = $1`); err != nil {
			return fmt.Errorf("failed to rollback migration %s: %w", migration.Name, err)
		}
		log.Printf("Rolled back migration: %s", migration.Name)
		return nil
	}
	return fmt.Errorf("no migrations to rollback")
}
