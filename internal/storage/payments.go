package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ledgersmith/payoff/internal/model"
	"github.com/ledgersmith/payoff/internal/money"
)

// AppendPayment inserts a ledger entry. There is no update or delete path:
// the schema enforces append-only payments with triggers, and corrections
// are recorded as reversing entries.
func (s *SQLiteStorage) AppendPayment(ctx context.Context, payment *model.Payment) error {
	return appendPayment(ctx, s.db, payment)
}

// AppendPayment implements service.Transaction.
func (t *sqliteTransaction) AppendPayment(ctx context.Context, payment *model.Payment) error {
	return appendPayment(ctx, t.tx, payment)
}

func appendPayment(ctx context.Context, q querier, payment *model.Payment) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validatePayment(payment); err != nil {
		return err
	}

	var reverses sql.NullString
	if payment.Reverses != "" {
		reverses = sql.NullString{String: payment.Reverses, Valid: true}
	}

	_, err := q.ExecContext(ctx, `
		INSERT INTO payments (
			id, debt_id, amount, interest, principal, currency, paid_at,
			is_extra, reverses
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, payment.ID, payment.DebtID, payment.Amount.Amount(), payment.Interest.Amount(),
		payment.Principal.Amount(), string(payment.Amount.Currency()), payment.PaidAt,
		payment.IsExtra, reverses)
	if err != nil {
		return fmt.Errorf("failed to append payment: %w", err)
	}
	return nil
}

// GetPayments returns all ledger entries for a debt in paid_at order.
func (s *SQLiteStorage) GetPayments(ctx context.Context, debtID string) ([]model.Payment, error) {
	return getPayments(ctx, s.db, debtID)
}

// GetPayments implements service.Transaction.
func (t *sqliteTransaction) GetPayments(ctx context.Context, debtID string) ([]model.Payment, error) {
	return getPayments(ctx, t.tx, debtID)
}

func getPayments(ctx context.Context, q querier, debtID string) ([]model.Payment, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(debtID, "debtID"); err != nil {
		return nil, err
	}

	rows, err := q.QueryContext(ctx, `
		SELECT id, debt_id, amount, interest, principal, currency, paid_at,
			is_extra, reverses, created_at
		FROM payments
		WHERE debt_id = ?
		ORDER BY paid_at, created_at
	`, debtID)
	if err != nil {
		return nil, fmt.Errorf("failed to get payments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var payments []model.Payment
	for rows.Next() {
		var (
			p                            model.Payment
			amount, interest, principal int64
			currency                     string
			reverses                     sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.DebtID, &amount, &interest, &principal,
			&currency, &p.PaidAt, &p.IsExtra, &reverses, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		cur := money.Currency(currency)
		p.Amount = money.New(amount, cur)
		p.Interest = money.New(interest, cur)
		p.Principal = money.New(principal, cur)
		p.Reverses = reverses.String
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payments: %w", err)
	}
	return payments, nil
}
