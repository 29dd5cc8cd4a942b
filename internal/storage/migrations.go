package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 2

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS users (
					username TEXT PRIMARY KEY,
					password_hash TEXT NOT NULL
				)`,

				`CREATE TABLE IF NOT EXISTS categories (
					name TEXT NOT NULL,
					user_id TEXT NOT NULL,
					type TEXT NOT NULL CHECK(type IN ('Income', 'Expense')),
					deleted INTEGER NOT NULL DEFAULT 0 CHECK(deleted IN (0, 1)),
					PRIMARY KEY (name, user_id),
					FOREIGN KEY (user_id) REFERENCES users(username) ON DELETE CASCADE
				)`,

				`CREATE TABLE IF NOT EXISTS transactions (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					user_id TEXT NOT NULL,
					category_name TEXT NOT NULL,
					amount REAL NOT NULL,
					date TEXT NOT NULL,
					description TEXT NOT NULL DEFAULT '',
					FOREIGN KEY (user_id) REFERENCES users(username) ON DELETE CASCADE,
					FOREIGN KEY (category_name, user_id) REFERENCES categories(name, user_id) ON DELETE CASCADE
				)`,

				// Budgets and recurring transactions are provisioned but have no logic yet.
				`CREATE TABLE IF NOT EXISTS budgets (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					user_id TEXT NOT NULL,
					category_name TEXT NOT NULL,
					amount REAL NOT NULL,
					FOREIGN KEY (user_id) REFERENCES users(username) ON DELETE CASCADE,
					FOREIGN KEY (category_name, user_id) REFERENCES categories(name, user_id) ON DELETE CASCADE
				)`,

				`CREATE TABLE IF NOT EXISTS recurring_transactions (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					user_id TEXT NOT NULL,
					category_name TEXT NOT NULL,
					amount REAL NOT NULL,
					interval TEXT NOT NULL CHECK(interval IN ('Daily', 'Weekly', 'Monthly', 'Yearly')),
					next_due_date TEXT NOT NULL,
					description TEXT,
					FOREIGN KEY (user_id) REFERENCES users(username) ON DELETE CASCADE,
					FOREIGN KEY (category_name, user_id) REFERENCES categories(name, user_id) ON DELETE CASCADE
				)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Add lookup indexes for per-user queries",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE INDEX IF NOT EXISTS idx_categories_user_deleted ON categories(user_id, deleted)`,
				`CREATE INDEX IF NOT EXISTS idx_transactions_user_date ON transactions(user_id, date)`,
				`CREATE INDEX IF NOT EXISTS idx_transactions_category ON transactions(category_name, user_id)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query '%s': %w", query, err)
				}
			}
			return nil
		},
	},
}

// SchemaVersion returns the schema version recorded in the database.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}

// Migrate applies all pending database migrations. Running it against an
// up-to-date database is a no-op.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	currentVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	finalVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
