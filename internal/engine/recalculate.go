package engine

import (
	"time"

	"github.com/ledgersmith/payoff/internal/ledger"
	"github.com/ledgersmith/payoff/internal/model"
)

// Recalculate builds a successor schedule for a debt whose frozen schedule
// has drifted from reality: the actual remaining principal is re-amortized
// over the periods left in the original term. The debt's identity and
// payment history are untouched; the returned debt definition carries the
// updated principal and term and the caller decides whether to persist it.
func (e *Engine) Recalculate(debt model.Debt, schedule model.Schedule, lgr ledger.Ledger, asOf time.Time) (model.Debt, model.Schedule, error) {
	remaining, _ := debt.Principal.Sub(lgr.PrincipalPaid(asOf))
	if !remaining.IsPositive() {
		return model.Debt{}, model.Schedule{}, &ConfigError{
			DebtID: debt.ID,
			Reason: "debt is fully paid; nothing to recalculate",
		}
	}

	elapsed := schedule.PeriodsElapsed(asOf)
	termLeft := debt.TermPeriods - elapsed
	if termLeft <= 0 {
		// Past the original term with a balance outstanding: amortize it
		// over one final period per cadence until clear.
		termLeft = 1
	}

	successor := debt
	successor.Principal = remaining
	successor.TermPeriods = termLeft
	successor.StartDate = debt.Frequency.DueDate(debt.StartDate, elapsed)
	successor.FixedPayment = nil
	successor.UpdatedAt = asOf

	fresh, err := e.Generate(successor)
	if err != nil {
		return model.Debt{}, model.Schedule{}, err
	}
	return successor, fresh, nil
}
