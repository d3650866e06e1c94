// Package model defines the core domain types for the amortization engine:
// debts, schedules, payments, progress statuses, and strategy plans.
package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/ledgersmith/payoff/internal/money"
)

// Frequency is the payment cadence of a debt.
type Frequency string

const (
	// FrequencyWeekly schedules one payment every 7 days.
	FrequencyWeekly Frequency = "weekly"
	// FrequencyBiweekly schedules one payment every 14 days.
	FrequencyBiweekly Frequency = "biweekly"
	// FrequencyMonthly schedules one payment per calendar month.
	FrequencyMonthly Frequency = "monthly"
)

// PeriodsPerYear returns how many payment periods a year contains.
func (f Frequency) PeriodsPerYear() int {
	switch f {
	case FrequencyWeekly:
		return 52
	case FrequencyBiweekly:
		return 26
	case FrequencyMonthly:
		return 12
	default:
		return 0
	}
}

// DueDate returns the due date of period n (1-based) for a debt starting at
// start. Monthly cadence follows calendar months so a debt starting Jan 31
// clamps per time.AddDate semantics.
func (f Frequency) DueDate(start time.Time, n int) time.Time {
	switch f {
	case FrequencyWeekly:
		return start.AddDate(0, 0, 7*n)
	case FrequencyBiweekly:
		return start.AddDate(0, 0, 14*n)
	case FrequencyMonthly:
		return start.AddDate(0, n, 0)
	default:
		return start
	}
}

// Validate checks that the frequency is one of the supported cadences.
func (f Frequency) Validate() error {
	if f.PeriodsPerYear() == 0 {
		return fmt.Errorf("unsupported frequency %q", f)
	}
	return nil
}

// ExtraPaymentPolicy controls how extra principal is layered onto the
// scheduled payment.
type ExtraPaymentPolicy string

const (
	// ExtraPolicyNone applies no extra principal.
	ExtraPolicyNone ExtraPaymentPolicy = "none"
	// ExtraPolicyFixed adds a fixed extra amount to every period.
	ExtraPolicyFixed ExtraPaymentPolicy = "fixed"
	// ExtraPolicyRoundUp lifts each payment to the next round amount and
	// applies the difference to principal.
	ExtraPolicyRoundUp ExtraPaymentPolicy = "round_up"
)

// Validate checks that the policy is one of the supported values.
func (p ExtraPaymentPolicy) Validate() error {
	switch p {
	case ExtraPolicyNone, ExtraPolicyFixed, ExtraPolicyRoundUp:
		return nil
	default:
		return fmt.Errorf("unsupported extra payment policy %q", p)
	}
}

// Debt is the definition a schedule is generated from. Identity is
// immutable; amortization parameters are frozen once a schedule exists and
// change only through an explicit recalculation.
type Debt struct {
	CreatedAt     time.Time
	UpdatedAt     time.Time
	StartDate     time.Time
	ArchivedAt    *time.Time
	FixedPayment  *money.Money
	ExtraAmount   *money.Money
	ID            string
	Name          string
	Frequency     Frequency
	ExtraPolicy   ExtraPaymentPolicy
	Principal     money.Money
	AnnualRateBps int64
	TermPeriods   int
}

// Validate enforces the debt invariants: positive principal, non-negative
// rate, positive term, a fixed payment (if set) that can actually retire the
// principal, and a positive extra amount when the fixed extra policy is set.
func (d *Debt) Validate() error {
	if d.ID == "" {
		return errors.New("debt id is required")
	}
	if !d.Principal.IsPositive() {
		return errors.New("principal must be positive")
	}
	if d.Principal.Currency() == "" {
		return errors.New("principal currency is required")
	}
	if d.AnnualRateBps < 0 {
		return errors.New("annual rate cannot be negative")
	}
	if d.TermPeriods <= 0 {
		return errors.New("term periods must be positive")
	}
	if err := d.Frequency.Validate(); err != nil {
		return err
	}
	if d.StartDate.IsZero() {
		return errors.New("start date is required")
	}
	policy := d.ExtraPolicy
	if policy == "" {
		policy = ExtraPolicyNone
	}
	if err := policy.Validate(); err != nil {
		return err
	}
	if d.FixedPayment != nil {
		if !d.FixedPayment.SameCurrency(d.Principal) {
			return errors.New("fixed payment currency must match principal")
		}
		if !d.FixedPayment.IsPositive() {
			return errors.New("fixed payment must be positive")
		}
		total := d.FixedPayment.MulInt(int64(d.TermPeriods))
		if total.LessThanOrEqual(d.Principal) {
			return errors.New("fixed payment times term must exceed principal")
		}
	}
	if policy == ExtraPolicyFixed {
		if d.ExtraAmount == nil || !d.ExtraAmount.IsPositive() {
			return errors.New("fixed extra policy requires a positive extra amount")
		}
		if !d.ExtraAmount.SameCurrency(d.Principal) {
			return errors.New("extra amount currency must match principal")
		}
	}
	return nil
}

// Currency returns the currency the debt is denominated in.
func (d *Debt) Currency() money.Currency {
	return d.Principal.Currency()
}

// IsArchived reports whether the debt has been soft-deleted (paid off or
// archived by the user).
func (d *Debt) IsArchived() bool {
	return d.ArchivedAt != nil
}
