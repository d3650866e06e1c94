package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ledgersmith/payoff/internal/model"
)

// Validation errors.
var (
	ErrNilContext     = errors.New("context cannot be nil")
	ErrEmptyString    = errors.New("string parameter cannot be empty")
	ErrNilParameter   = errors.New("parameter cannot be nil")
	ErrInvalidDebt    = errors.New("invalid debt")
	ErrInvalidPayment = errors.New("invalid payment")
	ErrEmptySchedule  = errors.New("schedule has no entries")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateDebt validates a debt before persistence.
func validateDebt(debt *model.Debt) error {
	if debt == nil {
		return fmt.Errorf("%w: debt", ErrNilParameter)
	}
	if err := debt.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDebt, err)
	}
	return nil
}

// validatePayment validates a ledger entry before persistence.
func validatePayment(payment *model.Payment) error {
	if payment == nil {
		return fmt.Errorf("%w: payment", ErrNilParameter)
	}
	if err := payment.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayment, err)
	}
	return nil
}

// validateSchedule validates a schedule before persistence.
func validateSchedule(schedule *model.Schedule) error {
	if schedule == nil {
		return fmt.Errorf("%w: schedule", ErrNilParameter)
	}
	if err := validateString(schedule.DebtID, "schedule.DebtID"); err != nil {
		return err
	}
	if len(schedule.Entries) == 0 {
		return ErrEmptySchedule
	}
	return nil
}
