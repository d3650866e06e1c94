package model

import (
	"time"

	"github.com/ledgersmith/payoff/internal/money"
)

// ScheduleEntry is one period of an amortization schedule.
//
// Invariants maintained by the generator: Interest + Principal == Payment
// (the final period absorbs any rounding residual), BalanceAfter decreases
// by exactly Principal each period, and the last entry's BalanceAfter is
// exactly zero.
type ScheduleEntry struct {
	DueDate             time.Time
	PaymentNumber       int
	Payment             money.Money
	Interest            money.Money
	Principal           money.Money
	BalanceAfter        money.Money
	CumulativeInterest  money.Money
	CumulativePrincipal money.Money
}

// Schedule is the canonical amortization table for a debt. It is immutable
// once generated; regenerating requires an explicit recalculation.
type Schedule struct {
	DebtID       string
	Currency     money.Currency
	LevelPayment money.Money
	Entries      []ScheduleEntry
}

// Final returns the last entry, or nil for an empty schedule.
func (s *Schedule) Final() *ScheduleEntry {
	if len(s.Entries) == 0 {
		return nil
	}
	return &s.Entries[len(s.Entries)-1]
}

// EntryAt returns the entry with the given payment number (1-based), or nil
// if it is out of range.
func (s *Schedule) EntryAt(n int) *ScheduleEntry {
	if n < 1 || n > len(s.Entries) {
		return nil
	}
	return &s.Entries[n-1]
}

// PeriodsElapsed counts entries whose due date is on or before asOf.
func (s *Schedule) PeriodsElapsed(asOf time.Time) int {
	elapsed := 0
	for i := range s.Entries {
		if s.Entries[i].DueDate.After(asOf) {
			break
		}
		elapsed++
	}
	return elapsed
}

// NextDueAfter returns the first entry due strictly after asOf, or nil when
// the schedule has run out.
func (s *Schedule) NextDueAfter(asOf time.Time) *ScheduleEntry {
	for i := range s.Entries {
		if s.Entries[i].DueDate.After(asOf) {
			return &s.Entries[i]
		}
	}
	return nil
}

// TotalInterest returns the cumulative interest over the whole schedule.
func (s *Schedule) TotalInterest() money.Money {
	if final := s.Final(); final != nil {
		return final.CumulativeInterest
	}
	return money.Zero(s.Currency)
}

// TotalPrincipal returns the cumulative principal over the whole schedule.
func (s *Schedule) TotalPrincipal() money.Money {
	if final := s.Final(); final != nil {
		return final.CumulativePrincipal
	}
	return money.Zero(s.Currency)
}

// RemainingInterestAfter returns scheduled interest still to be paid after
// the first n periods (n may be 0).
func (s *Schedule) RemainingInterestAfter(n int) money.Money {
	total := s.TotalInterest()
	if n <= 0 {
		return total
	}
	entry := s.EntryAt(n)
	if entry == nil {
		return money.Zero(s.Currency)
	}
	remaining, err := total.Sub(entry.CumulativeInterest)
	if err != nil {
		return money.Zero(s.Currency)
	}
	return remaining
}
