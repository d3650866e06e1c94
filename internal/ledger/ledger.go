// Package ledger implements the append-only payment ledger for a debt.
// A Ledger is a value: Append returns a new Ledger and never mutates the
// receiver, so callers can hand copies to concurrent evaluations safely.
package ledger

import (
	"fmt"
	"sort"
	"time"

	"github.com/ledgersmith/payoff/internal/model"
	"github.com/ledgersmith/payoff/internal/money"
)

// IntegrityError reports a payment that violates the ledger invariants and
// was rejected before append.
type IntegrityError struct {
	PaymentID string
	Reason    string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("ledger integrity: payment %s: %s", e.PaymentID, e.Reason)
}

// Ledger is the ordered, append-only record of actual payments against one
// debt. Entries are kept sorted by paid_at; entries with equal timestamps
// keep insertion order.
type Ledger struct {
	debtID   string
	currency money.Currency
	entries  []model.Payment
}

// New returns an empty ledger for the given debt and currency.
func New(debtID string, currency money.Currency) Ledger {
	return Ledger{debtID: debtID, currency: currency}
}

// FromPayments builds a ledger from stored entries, validating each one.
// The input order does not matter; entries are sorted by paid_at.
func FromPayments(debtID string, currency money.Currency, payments []model.Payment) (Ledger, error) {
	l := New(debtID, currency)
	sorted := make([]model.Payment, len(payments))
	copy(sorted, payments)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PaidAt.Before(sorted[j].PaidAt)
	})
	for _, p := range sorted {
		var err error
		l, err = l.Append(p)
		if err != nil {
			return Ledger{}, err
		}
	}
	return l, nil
}

// DebtID returns the debt this ledger records payments for.
func (l Ledger) DebtID() string { return l.debtID }

// Currency returns the ledger currency.
func (l Ledger) Currency() money.Currency { return l.currency }

// Len returns the number of entries.
func (l Ledger) Len() int { return len(l.entries) }

// Entries returns a copy of the entries in paid_at order.
func (l Ledger) Entries() []model.Payment {
	out := make([]model.Payment, len(l.entries))
	copy(out, l.entries)
	return out
}

// Append validates p and returns a new ledger containing it. The receiver
// is unchanged. Entries are rejected with an IntegrityError when the
// portions do not sum to the amount, the amount is not positive (reversals
// excepted), the currency differs from the ledger's, or the entry targets a
// different debt.
func (l Ledger) Append(p model.Payment) (Ledger, error) {
	if p.DebtID != l.debtID {
		return Ledger{}, &IntegrityError{PaymentID: p.ID, Reason: fmt.Sprintf("belongs to debt %s, ledger is for %s", p.DebtID, l.debtID)}
	}
	if err := p.Validate(); err != nil {
		return Ledger{}, &IntegrityError{PaymentID: p.ID, Reason: err.Error()}
	}
	if p.Amount.Currency() != l.currency {
		return Ledger{}, &IntegrityError{PaymentID: p.ID, Reason: fmt.Sprintf("currency %s does not match ledger currency %s", p.Amount.Currency(), l.currency)}
	}
	if p.IsReversal() {
		if _, ok := l.find(p.Reverses); !ok {
			return Ledger{}, &IntegrityError{PaymentID: p.ID, Reason: fmt.Sprintf("reverses unknown payment %s", p.Reverses)}
		}
	}
	for i := range l.entries {
		if l.entries[i].ID == p.ID {
			return Ledger{}, &IntegrityError{PaymentID: p.ID, Reason: "duplicate payment id"}
		}
	}

	entries := make([]model.Payment, len(l.entries), len(l.entries)+1)
	copy(entries, l.entries)
	// Insert keeping paid_at order; later entries with the same timestamp
	// stay after existing ones to preserve the recording sequence.
	idx := sort.Search(len(entries), func(i int) bool {
		return entries[i].PaidAt.After(p.PaidAt)
	})
	entries = append(entries, model.Payment{})
	copy(entries[idx+1:], entries[idx:])
	entries[idx] = p
	return Ledger{debtID: l.debtID, currency: l.currency, entries: entries}, nil
}

// Reverse builds and appends a reversing entry for the payment with the
// given id, dated at. It returns the new ledger and the reversing entry so
// the caller can persist it. The original entry is untouched.
func (l Ledger) Reverse(paymentID, reversalID string, at time.Time) (Ledger, model.Payment, error) {
	original, ok := l.find(paymentID)
	if !ok {
		return Ledger{}, model.Payment{}, &IntegrityError{PaymentID: paymentID, Reason: "payment not found"}
	}
	if original.IsReversal() {
		return Ledger{}, model.Payment{}, &IntegrityError{PaymentID: paymentID, Reason: "cannot reverse a reversing entry"}
	}
	for i := range l.entries {
		if l.entries[i].Reverses == paymentID {
			return Ledger{}, model.Payment{}, &IntegrityError{PaymentID: paymentID, Reason: "payment already reversed"}
		}
	}
	reversal := model.Payment{
		ID:        reversalID,
		DebtID:    original.DebtID,
		PaidAt:    at,
		Amount:    original.Amount.Neg(),
		Interest:  original.Interest.Neg(),
		Principal: original.Principal.Neg(),
		IsExtra:   original.IsExtra,
		Reverses:  original.ID,
	}
	next, err := l.Append(reversal)
	if err != nil {
		return Ledger{}, model.Payment{}, err
	}
	return next, reversal, nil
}

// TotalPaid sums payment amounts for entries with paid_at on or before asOf.
// Reversals subtract, so a reversed payment nets to zero.
func (l Ledger) TotalPaid(asOf time.Time) money.Money {
	return l.sum(asOf, func(p model.Payment) money.Money { return p.Amount })
}

// PrincipalPaid sums principal portions up to asOf.
func (l Ledger) PrincipalPaid(asOf time.Time) money.Money {
	return l.sum(asOf, func(p model.Payment) money.Money { return p.Principal })
}

// InterestPaid sums interest portions up to asOf.
func (l Ledger) InterestPaid(asOf time.Time) money.Money {
	return l.sum(asOf, func(p model.Payment) money.Money { return p.Interest })
}

func (l Ledger) sum(asOf time.Time, portion func(model.Payment) money.Money) money.Money {
	total := money.Zero(l.currency)
	for _, p := range l.entries {
		if p.PaidAt.After(asOf) {
			break
		}
		// Same currency is guaranteed at append time.
		total, _ = total.Add(portion(p))
	}
	return total
}

func (l Ledger) find(paymentID string) (model.Payment, bool) {
	for i := range l.entries {
		if l.entries[i].ID == paymentID {
			return l.entries[i], true
		}
	}
	return model.Payment{}, false
}
