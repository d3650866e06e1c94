package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgersmith/payoff/internal/ledger"
	"github.com/ledgersmith/payoff/internal/model"
	"github.com/ledgersmith/payoff/internal/money"
)

// Evaluate reconciles a ledger against a schedule as of the given time and
// classifies the debt's progress. It is pure and idempotent: identical
// inputs always yield an identical ProgressStatus, and neither input is
// mutated. The only failure mode is cross-currency inputs.
func (e *Engine) Evaluate(schedule model.Schedule, lgr ledger.Ledger, asOf time.Time) (model.ProgressStatus, error) {
	if schedule.Currency != lgr.Currency() {
		return model.ProgressStatus{}, &money.MismatchError{Left: schedule.Currency, Right: lgr.Currency()}
	}

	periodIndex := schedule.PeriodsElapsed(asOf)

	planned := money.Zero(schedule.Currency)
	if entry := schedule.EntryAt(periodIndex); entry != nil {
		planned, _ = entry.CumulativeInterest.Add(entry.CumulativePrincipal)
	}
	actual := lgr.TotalPaid(asOf)
	drift, _ := actual.Sub(planned)

	status := model.StatusPending
	if periodIndex > 0 {
		tolerance := e.tolerance(schedule, periodIndex)
		switch {
		case drift.GreaterThanOrEqual(tolerance):
			status = model.StatusAhead
		case drift.LessThanOrEqual(tolerance.Neg()):
			status = model.StatusOffTrack
		default:
			status = model.StatusOnTrack
		}
	}

	return model.ProgressStatus{
		AsOf:               asOf,
		Status:             status,
		PeriodIndex:        periodIndex,
		ActualPaid:         actual,
		PlannedPaid:        planned,
		Drift:              drift,
		NeedsRecalculation: e.needsRecalculation(schedule, lgr, asOf, periodIndex),
	}, nil
}

// tolerance returns the drift threshold for classification: the configured
// override, or the current period's scheduled payment.
func (e *Engine) tolerance(schedule model.Schedule, periodIndex int) money.Money {
	if e.cfg.Tolerance != nil && e.cfg.Tolerance.Currency() == schedule.Currency {
		return *e.cfg.Tolerance
	}
	if entry := schedule.EntryAt(periodIndex); entry != nil {
		return entry.Payment
	}
	return schedule.LevelPayment
}

// needsRecalculation reports whether the actual outstanding balance has
// diverged from the scheduled balance by more than the materiality
// threshold, signalling that the frozen schedule no longer reflects
// reality. It is advisory, never an error.
func (e *Engine) needsRecalculation(schedule model.Schedule, lgr ledger.Ledger, asOf time.Time, periodIndex int) bool {
	principal := schedule.TotalPrincipal()
	if principal.IsZero() {
		return false
	}

	actualRemaining, _ := principal.Sub(lgr.PrincipalPaid(asOf))

	scheduledRemaining := principal
	if entry := schedule.EntryAt(periodIndex); entry != nil {
		scheduledRemaining = entry.BalanceAfter
	}

	divergence, _ := actualRemaining.Sub(scheduledRemaining)
	materiality := decimal.NewFromInt(e.cfg.MaterialityBps).
		DivRound(decimal.NewFromInt(10000), rateScale)
	threshold := principal.MulRate(materiality, money.RoundHalfEven)
	cmp, _ := divergence.Abs().Cmp(threshold)
	return cmp > 0
}
