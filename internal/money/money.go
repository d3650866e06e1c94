// Package money provides a fixed-point monetary value type with
// currency-safe arithmetic. Amounts are held as an integer count of minor
// units (cents for two-decimal currencies); no operation ever routes a value
// through binary floating point.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency identifies the currency a Money value is denominated in.
// The engine treats it as an opaque tag; formatting and minor-unit exponents
// are the caller's concern.
type Currency string

// Rounding selects how fractional minor units are resolved.
type Rounding int

const (
	// RoundHalfEven is banker's rounding, the default for all rate and
	// division arithmetic in the engine.
	RoundHalfEven Rounding = iota
	// RoundHalfUp rounds .5 away from zero.
	RoundHalfUp
	// RoundUp rounds away from zero.
	RoundUp
	// RoundDown truncates toward zero.
	RoundDown
)

// Money is an exact monetary amount: minor units plus a currency tag.
// The zero value is zero units of the empty currency.
type Money struct {
	amount   int64
	currency Currency
}

// MismatchError reports an attempt to combine two Money values of
// different currencies.
type MismatchError struct {
	Left  Currency
	Right Currency
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("currency mismatch: %s vs %s", e.Left, e.Right)
}

// New creates a Money from an amount in minor units.
func New(amount int64, currency Currency) Money {
	return Money{amount: amount, currency: currency}
}

// Zero returns the zero amount of the given currency.
func Zero(currency Currency) Money {
	return Money{currency: currency}
}

// ParseAmount converts a decimal string such as "12500.00" into Money,
// interpreting the value as major units with up to two decimal places.
// It exists for callers ingesting user input; engine code never parses.
func ParseAmount(s string, currency Currency) (Money, error) {
	s = strings.TrimSpace(s)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if d.Exponent() < -2 {
		return Money{}, fmt.Errorf("invalid amount %q: more than two decimal places", s)
	}
	minor := d.Shift(2)
	if !minor.IsInteger() {
		return Money{}, fmt.Errorf("invalid amount %q: not representable in minor units", s)
	}
	return Money{amount: minor.IntPart(), currency: currency}, nil
}

// Amount returns the value in minor units.
func (m Money) Amount() int64 { return m.amount }

// Currency returns the currency tag.
func (m Money) Currency() Currency { return m.currency }

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool { return m.amount == 0 }

// IsPositive reports whether the amount is greater than zero.
func (m Money) IsPositive() bool { return m.amount > 0 }

// IsNegative reports whether the amount is less than zero.
func (m Money) IsNegative() bool { return m.amount < 0 }

// SameCurrency reports whether o is denominated in the same currency.
func (m Money) SameCurrency(o Money) bool { return m.currency == o.currency }

func (m Money) check(o Money) error {
	if m.currency != o.currency {
		return &MismatchError{Left: m.currency, Right: o.currency}
	}
	return nil
}

// Add returns m + o, failing on a currency mismatch.
func (m Money) Add(o Money) (Money, error) {
	if err := m.check(o); err != nil {
		return Money{}, err
	}
	return Money{amount: m.amount + o.amount, currency: m.currency}, nil
}

// Sub returns m − o, failing on a currency mismatch.
func (m Money) Sub(o Money) (Money, error) {
	if err := m.check(o); err != nil {
		return Money{}, err
	}
	return Money{amount: m.amount - o.amount, currency: m.currency}, nil
}

// Neg returns the negated amount.
func (m Money) Neg() Money {
	return Money{amount: -m.amount, currency: m.currency}
}

// Abs returns the absolute amount.
func (m Money) Abs() Money {
	if m.amount < 0 {
		return m.Neg()
	}
	return m
}

// Cmp compares two amounts: -1 if m < o, 0 if equal, +1 if m > o.
// Fails on a currency mismatch.
func (m Money) Cmp(o Money) (int, error) {
	if err := m.check(o); err != nil {
		return 0, err
	}
	switch {
	case m.amount < o.amount:
		return -1, nil
	case m.amount > o.amount:
		return 1, nil
	default:
		return 0, nil
	}
}

// Equal reports exact equality of amount and currency.
func (m Money) Equal(o Money) bool {
	return m.currency == o.currency && m.amount == o.amount
}

// GreaterThanOrEqual reports m ≥ o for same-currency values. A mismatched
// currency reports false; use Cmp when the mismatch must surface as an error.
func (m Money) GreaterThanOrEqual(o Money) bool {
	return m.currency == o.currency && m.amount >= o.amount
}

// LessThanOrEqual reports m ≤ o for same-currency values.
func (m Money) LessThanOrEqual(o Money) bool {
	return m.currency == o.currency && m.amount <= o.amount
}

// MulRate multiplies the amount by an exact decimal rate and rounds the
// result back to minor units with the given mode.
func (m Money) MulRate(rate decimal.Decimal, r Rounding) Money {
	product := decimal.NewFromInt(m.amount).Mul(rate)
	return Money{amount: roundToInt(product, r), currency: m.currency}
}

// Div divides the amount by n and rounds to minor units with the given mode.
// n must be non-zero.
func (m Money) Div(n int64, r Rounding) Money {
	quotient := decimal.NewFromInt(m.amount).DivRound(decimal.NewFromInt(n), 12)
	return Money{amount: roundToInt(quotient, r), currency: m.currency}
}

// MulInt multiplies the amount by an integer factor.
func (m Money) MulInt(n int64) Money {
	return Money{amount: m.amount * n, currency: m.currency}
}

// RoundUpToMultiple rounds the amount up to the next multiple of unit minor
// units. Amounts already on a multiple are unchanged; unit must be positive.
func (m Money) RoundUpToMultiple(unit int64) Money {
	if unit <= 0 || m.amount <= 0 {
		return m
	}
	rem := m.amount % unit
	if rem == 0 {
		return m
	}
	return Money{amount: m.amount + (unit - rem), currency: m.currency}
}

// Decimal returns the amount in minor units as a decimal, for callers that
// need to continue exact arithmetic.
func (m Money) Decimal() decimal.Decimal {
	return decimal.NewFromInt(m.amount)
}

// String renders the amount assuming a two-decimal minor unit, for logs and
// debug output only. Locale-aware formatting belongs to the caller.
func (m Money) String() string {
	d := decimal.NewFromInt(m.amount).Shift(-2)
	if m.currency == "" {
		return d.StringFixed(2)
	}
	return fmt.Sprintf("%s %s", d.StringFixed(2), m.currency)
}

func roundToInt(d decimal.Decimal, r Rounding) int64 {
	switch r {
	case RoundHalfUp:
		return d.Round(0).IntPart()
	case RoundUp:
		return d.RoundUp(0).IntPart()
	case RoundDown:
		return d.RoundDown(0).IntPart()
	default:
		return d.RoundBank(0).IntPart()
	}
}
