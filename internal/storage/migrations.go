package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version the application
// expects. Failing to reach it is a fatal error.
const ExpectedSchemaVersion = 3

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
				`CREATE TABLE IF NOT EXISTS debts (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					principal INTEGER NOT NULL,
					currency TEXT NOT NULL,
					annual_rate_bps INTEGER NOT NULL,
					term_periods INTEGER NOT NULL,
					frequency TEXT NOT NULL,
					start_date DATETIME NOT NULL,
					fixed_payment INTEGER,
					extra_policy TEXT NOT NULL DEFAULT 'none',
					extra_amount INTEGER,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					archived_at DATETIME
				)`,

				`CREATE TABLE IF NOT EXISTS schedules (
					debt_id TEXT PRIMARY KEY,
					currency TEXT NOT NULL,
					level_payment INTEGER NOT NULL,
					generated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					FOREIGN KEY (debt_id) REFERENCES debts(id)
				)`,

				`CREATE TABLE IF NOT EXISTS schedule_entries (
					debt_id TEXT NOT NULL,
					payment_number INTEGER NOT NULL,
					due_date DATETIME NOT NULL,
					payment INTEGER NOT NULL,
					interest INTEGER NOT NULL,
					principal INTEGER NOT NULL,
					balance_after INTEGER NOT NULL,
					cumulative_interest INTEGER NOT NULL,
					cumulative_principal INTEGER NOT NULL,
					PRIMARY KEY (debt_id, payment_number),
					FOREIGN KEY (debt_id) REFERENCES debts(id)
				)`,
				`CREATE INDEX idx_schedule_entries_due ON schedule_entries(debt_id, due_date)`,

				`CREATE TABLE IF NOT EXISTS payments (
					id TEXT PRIMARY KEY,
					debt_id TEXT NOT NULL,
					amount INTEGER NOT NULL,
					interest INTEGER NOT NULL,
					principal INTEGER NOT NULL,
					currency TEXT NOT NULL,
					paid_at DATETIME NOT NULL,
					is_extra INTEGER NOT NULL DEFAULT 0,
					reverses TEXT,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					FOREIGN KEY (debt_id) REFERENCES debts(id)
				)`,
				`CREATE INDEX idx_payments_debt_paid_at ON payments(debt_id, paid_at)`,
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
		Description: "Enforce append-only payments at the database level",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TRIGGER payments_no_update
					BEFORE UPDATE ON payments
				BEGIN
					SELECT RAISE(ABORT, 'payments are append-only');
				END`,
				`CREATE TRIGGER payments_no_delete
					BEFORE DELETE ON payments
				BEGIN
					SELECT RAISE(ABORT, 'payments are append-only');
				END`,
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
		Version:     3,
		Description: "Index archived debts for active-only listings",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`CREATE INDEX idx_debts_archived ON debts(archived_at)`)
			return err
		},
	},
}

// Migrate applies all pending schema migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
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

	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}
	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
