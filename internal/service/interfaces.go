// Package service defines the contracts between the engine's callers and
// their collaborators: persistence, clocks, and retry policy.
package service

import (
	"context"
	"time"

	"github.com/ledgersmith/payoff/internal/model"
)

// Storage defines the persistence contract. Payments are append-only: the
// interface deliberately exposes no update or delete for them, corrections
// happen through reversing entries.
type Storage interface {
	// Debt operations
	SaveDebt(ctx context.Context, debt *model.Debt) error
	GetDebt(ctx context.Context, id string) (*model.Debt, error)
	ListDebts(ctx context.Context, includeArchived bool) ([]model.Debt, error)
	ArchiveDebt(ctx context.Context, id string, at time.Time) error

	// Schedule operations. Schedules are replaced wholesale on an explicit
	// recalculation, never edited in place.
	SaveSchedule(ctx context.Context, schedule *model.Schedule) error
	GetSchedule(ctx context.Context, debtID string) (*model.Schedule, error)
	ReplaceSchedule(ctx context.Context, debt *model.Debt, schedule *model.Schedule) error

	// Payment operations (append-only)
	AppendPayment(ctx context.Context, payment *model.Payment) error
	GetPayments(ctx context.Context, debtID string) ([]model.Payment, error)

	// Database management
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Transaction, error)
	Close() error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit() error
	Rollback() error
	// Include all Storage methods for use within the transaction
	Storage
}

// Clock supplies the as-of timestamps reconciliation runs against. The
// engine never reads the wall clock itself.
type Clock interface {
	Now() time.Time
}

// RetryOptions configures retry behavior for upstream I/O. The engine is
// deterministic and never retries; only storage access does.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
