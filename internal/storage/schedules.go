package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ledgersmith/payoff/internal/common"
	"github.com/ledgersmith/payoff/internal/model"
	"github.com/ledgersmith/payoff/internal/money"
)

// SaveSchedule persists a generated schedule. A schedule already on file
// for the debt is an error: replacement must go through ReplaceSchedule so
// it stays an explicit recalculation.
func (s *SQLiteStorage) SaveSchedule(ctx context.Context, schedule *model.Schedule) error {
	return saveSchedule(ctx, s.db, schedule)
}

// SaveSchedule implements service.Transaction.
func (t *sqliteTransaction) SaveSchedule(ctx context.Context, schedule *model.Schedule) error {
	return saveSchedule(ctx, t.tx, schedule)
}

func saveSchedule(ctx context.Context, q querier, schedule *model.Schedule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateSchedule(schedule); err != nil {
		return err
	}

	var existing int
	err := q.QueryRowContext(ctx, `SELECT COUNT(1) FROM schedules WHERE debt_id = ?`, schedule.DebtID).Scan(&existing)
	if err != nil {
		return fmt.Errorf("failed to check for existing schedule: %w", err)
	}
	if existing > 0 {
		return fmt.Errorf("schedule for debt %s: %w", schedule.DebtID, common.ErrDuplicateEntry)
	}

	return insertSchedule(ctx, q, schedule)
}

func insertSchedule(ctx context.Context, q querier, schedule *model.Schedule) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO schedules (debt_id, currency, level_payment) VALUES (?, ?, ?)
	`, schedule.DebtID, string(schedule.Currency), schedule.LevelPayment.Amount())
	if err != nil {
		return fmt.Errorf("failed to save schedule: %w", err)
	}

	for _, entry := range schedule.Entries {
		_, err := q.ExecContext(ctx, `
			INSERT INTO schedule_entries (
				debt_id, payment_number, due_date, payment, interest, principal,
				balance_after, cumulative_interest, cumulative_principal
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, schedule.DebtID, entry.PaymentNumber, entry.DueDate, entry.Payment.Amount(),
			entry.Interest.Amount(), entry.Principal.Amount(), entry.BalanceAfter.Amount(),
			entry.CumulativeInterest.Amount(), entry.CumulativePrincipal.Amount())
		if err != nil {
			return fmt.Errorf("failed to save schedule entry %d: %w", entry.PaymentNumber, err)
		}
	}
	return nil
}

// ReplaceSchedule atomically swaps a debt's schedule for a recalculated one
// and persists the successor debt parameters. Payment history is untouched.
func (s *SQLiteStorage) ReplaceSchedule(ctx context.Context, debt *model.Debt, schedule *model.Schedule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := replaceSchedule(ctx, tx, debt, schedule); err != nil {
		return err
	}
	return tx.Commit()
}

// ReplaceSchedule implements service.Transaction.
func (t *sqliteTransaction) ReplaceSchedule(ctx context.Context, debt *model.Debt, schedule *model.Schedule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return replaceSchedule(ctx, t.tx, debt, schedule)
}

func replaceSchedule(ctx context.Context, q querier, debt *model.Debt, schedule *model.Schedule) error {
	if err := validateDebt(debt); err != nil {
		return err
	}
	if err := validateSchedule(schedule); err != nil {
		return err
	}

	if _, err := q.ExecContext(ctx, `DELETE FROM schedule_entries WHERE debt_id = ?`, schedule.DebtID); err != nil {
		return fmt.Errorf("failed to clear schedule entries: %w", err)
	}
	if _, err := q.ExecContext(ctx, `DELETE FROM schedules WHERE debt_id = ?`, schedule.DebtID); err != nil {
		return fmt.Errorf("failed to clear schedule: %w", err)
	}
	if err := insertSchedule(ctx, q, schedule); err != nil {
		return err
	}
	return saveDebt(ctx, q, debt)
}

// GetSchedule loads a debt's schedule, returning common.ErrNotFound when no
// schedule has been generated.
func (s *SQLiteStorage) GetSchedule(ctx context.Context, debtID string) (*model.Schedule, error) {
	return getSchedule(ctx, s.db, debtID)
}

// GetSchedule implements service.Transaction.
func (t *sqliteTransaction) GetSchedule(ctx context.Context, debtID string) (*model.Schedule, error) {
	return getSchedule(ctx, t.tx, debtID)
}

func getSchedule(ctx context.Context, q querier, debtID string) (*model.Schedule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(debtID, "debtID"); err != nil {
		return nil, err
	}

	var (
		currency     string
		levelPayment int64
	)
	err := q.QueryRowContext(ctx, `
		SELECT currency, level_payment FROM schedules WHERE debt_id = ?
	`, debtID).Scan(&currency, &levelPayment)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("schedule for debt %s: %w", debtID, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}

	cur := money.Currency(currency)
	schedule := &model.Schedule{
		DebtID:       debtID,
		Currency:     cur,
		LevelPayment: money.New(levelPayment, cur),
	}

	rows, err := q.QueryContext(ctx, `
		SELECT payment_number, due_date, payment, interest, principal,
			balance_after, cumulative_interest, cumulative_principal
		FROM schedule_entries
		WHERE debt_id = ?
		ORDER BY payment_number
	`, debtID)
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			entry                                                     model.ScheduleEntry
			payment, interest, principal, balance, cumInt, cumPrin int64
		)
		if err := rows.Scan(&entry.PaymentNumber, &entry.DueDate, &payment, &interest,
			&principal, &balance, &cumInt, &cumPrin); err != nil {
			return nil, fmt.Errorf("failed to scan schedule entry: %w", err)
		}
		entry.Payment = money.New(payment, cur)
		entry.Interest = money.New(interest, cur)
		entry.Principal = money.New(principal, cur)
		entry.BalanceAfter = money.New(balance, cur)
		entry.CumulativeInterest = money.New(cumInt, cur)
		entry.CumulativePrincipal = money.New(cumPrin, cur)
		schedule.Entries = append(schedule.Entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate schedule entries: %w", err)
	}
	return schedule, nil
}
