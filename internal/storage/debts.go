package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ledgersmith/payoff/internal/common"
	"github.com/ledgersmith/payoff/internal/model"
	"github.com/ledgersmith/payoff/internal/money"
)

// SaveDebt inserts a debt, or updates its mutable fields when it already
// exists. Amortization parameters change only through the explicit
// recalculation flow, which persists via ReplaceSchedule.
func (s *SQLiteStorage) SaveDebt(ctx context.Context, debt *model.Debt) error {
	return saveDebt(ctx, s.db, debt)
}

// SaveDebt implements service.Transaction.
func (t *sqliteTransaction) SaveDebt(ctx context.Context, debt *model.Debt) error {
	return saveDebt(ctx, t.tx, debt)
}

func saveDebt(ctx context.Context, q querier, debt *model.Debt) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateDebt(debt); err != nil {
		return err
	}

	var fixedPayment, extraAmount sql.NullInt64
	if debt.FixedPayment != nil {
		fixedPayment = sql.NullInt64{Int64: debt.FixedPayment.Amount(), Valid: true}
	}
	if debt.ExtraAmount != nil {
		extraAmount = sql.NullInt64{Int64: debt.ExtraAmount.Amount(), Valid: true}
	}
	policy := debt.ExtraPolicy
	if policy == "" {
		policy = model.ExtraPolicyNone
	}

	_, err := q.ExecContext(ctx, `
		INSERT INTO debts (
			id, name, principal, currency, annual_rate_bps, term_periods,
			frequency, start_date, fixed_payment, extra_policy, extra_amount,
			archived_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			principal = excluded.principal,
			annual_rate_bps = excluded.annual_rate_bps,
			term_periods = excluded.term_periods,
			frequency = excluded.frequency,
			start_date = excluded.start_date,
			fixed_payment = excluded.fixed_payment,
			extra_policy = excluded.extra_policy,
			extra_amount = excluded.extra_amount,
			updated_at = CURRENT_TIMESTAMP
	`, debt.ID, debt.Name, debt.Principal.Amount(), string(debt.Principal.Currency()),
		debt.AnnualRateBps, debt.TermPeriods, string(debt.Frequency), debt.StartDate,
		fixedPayment, string(policy), extraAmount, debt.ArchivedAt)
	if err != nil {
		return fmt.Errorf("failed to save debt: %w", err)
	}
	return nil
}

// GetDebt fetches a debt by id, returning common.ErrNotFound when absent.
func (s *SQLiteStorage) GetDebt(ctx context.Context, id string) (*model.Debt, error) {
	return getDebt(ctx, s.db, id)
}

// GetDebt implements service.Transaction.
func (t *sqliteTransaction) GetDebt(ctx context.Context, id string) (*model.Debt, error) {
	return getDebt(ctx, t.tx, id)
}

func getDebt(ctx context.Context, q querier, id string) (*model.Debt, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := q.QueryRowContext(ctx, `
		SELECT id, name, principal, currency, annual_rate_bps, term_periods,
			frequency, start_date, fixed_payment, extra_policy, extra_amount,
			created_at, updated_at, archived_at
		FROM debts WHERE id = ?
	`, id)

	debt, err := scanDebt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("debt %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get debt: %w", err)
	}
	return debt, nil
}

// ListDebts returns debts ordered by creation time, excluding archived ones
// unless asked for.
func (s *SQLiteStorage) ListDebts(ctx context.Context, includeArchived bool) ([]model.Debt, error) {
	return listDebts(ctx, s.db, includeArchived)
}

// ListDebts implements service.Transaction.
func (t *sqliteTransaction) ListDebts(ctx context.Context, includeArchived bool) ([]model.Debt, error) {
	return listDebts(ctx, t.tx, includeArchived)
}

func listDebts(ctx context.Context, q querier, includeArchived bool) ([]model.Debt, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT id, name, principal, currency, annual_rate_bps, term_periods,
			frequency, start_date, fixed_payment, extra_policy, extra_amount,
			created_at, updated_at, archived_at
		FROM debts`
	if !includeArchived {
		query += ` WHERE archived_at IS NULL`
	}
	query += ` ORDER BY created_at, id`

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list debts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var debts []model.Debt
	for rows.Next() {
		debt, scanErr := scanDebt(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan debt: %w", scanErr)
		}
		debts = append(debts, *debt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate debts: %w", err)
	}
	return debts, nil
}

// ArchiveDebt soft-deletes a debt (paid off or archived by the user).
func (s *SQLiteStorage) ArchiveDebt(ctx context.Context, id string, at time.Time) error {
	return archiveDebt(ctx, s.db, id, at)
}

// ArchiveDebt implements service.Transaction.
func (t *sqliteTransaction) ArchiveDebt(ctx context.Context, id string, at time.Time) error {
	return archiveDebt(ctx, t.tx, id, at)
}

func archiveDebt(ctx context.Context, q querier, id string, at time.Time) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := q.ExecContext(ctx, `
		UPDATE debts SET archived_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND archived_at IS NULL
	`, at, id)
	if err != nil {
		return fmt.Errorf("failed to archive debt: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check archive result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("debt %s: %w", id, common.ErrNotFound)
	}
	return nil
}

// scanner abstracts *sql.Row and *sql.Rows for shared scanning.
type scanner interface {
	Scan(dest ...any) error
}

func scanDebt(sc scanner) (*model.Debt, error) {
	var (
		debt         model.Debt
		principal    int64
		currency     string
		frequency    string
		policy       string
		fixedPayment sql.NullInt64
		extraAmount  sql.NullInt64
		archivedAt   sql.NullTime
	)
	err := sc.Scan(&debt.ID, &debt.Name, &principal, &currency, &debt.AnnualRateBps,
		&debt.TermPeriods, &frequency, &debt.StartDate, &fixedPayment, &policy,
		&extraAmount, &debt.CreatedAt, &debt.UpdatedAt, &archivedAt)
	if err != nil {
		return nil, err
	}

	cur := money.Currency(currency)
	debt.Principal = money.New(principal, cur)
	debt.Frequency = model.Frequency(frequency)
	debt.ExtraPolicy = model.ExtraPaymentPolicy(policy)
	if fixedPayment.Valid {
		fp := money.New(fixedPayment.Int64, cur)
		debt.FixedPayment = &fp
	}
	if extraAmount.Valid {
		extra := money.New(extraAmount.Int64, cur)
		debt.ExtraAmount = &extra
	}
	if archivedAt.Valid {
		at := archivedAt.Time
		debt.ArchivedAt = &at
	}
	return &debt, nil
}
