package model

import (
	"errors"
	"time"

	"github.com/ledgersmith/payoff/internal/money"
)

// Payment is a single ledger entry: an actual amount applied against a debt,
// split into interest and principal portions. Entries are append-only;
// corrections are modeled as a reversing entry plus a new entry, never as a
// mutation.
type Payment struct {
	PaidAt    time.Time
	CreatedAt time.Time
	ID        string
	DebtID    string
	Reverses  string
	Amount    money.Money
	Interest  money.Money
	Principal money.Money
	IsExtra   bool
}

// IsReversal reports whether this entry reverses an earlier payment.
func (p *Payment) IsReversal() bool {
	return p.Reverses != ""
}

// Validate enforces the ledger-entry invariants. A reversal carries the
// negated amounts of the entry it reverses and is the only entry allowed a
// non-positive amount.
func (p *Payment) Validate() error {
	if p.ID == "" {
		return errors.New("payment id is required")
	}
	if p.DebtID == "" {
		return errors.New("payment debt id is required")
	}
	if p.PaidAt.IsZero() {
		return errors.New("payment date is required")
	}
	if !p.Amount.SameCurrency(p.Interest) || !p.Amount.SameCurrency(p.Principal) {
		return errors.New("payment portions must share one currency")
	}
	if p.IsReversal() {
		if !p.Amount.IsNegative() {
			return errors.New("reversing entry must carry a negative amount")
		}
	} else if !p.Amount.IsPositive() {
		return errors.New("payment amount must be positive")
	}
	sum, err := p.Interest.Add(p.Principal)
	if err != nil {
		return err
	}
	if !sum.Equal(p.Amount) {
		return errors.New("interest plus principal must equal amount")
	}
	return nil
}
