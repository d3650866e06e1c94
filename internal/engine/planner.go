package engine

import (
	"errors"
	"sort"
	"time"

	"github.com/ledgersmith/payoff/internal/ledger"
	"github.com/ledgersmith/payoff/internal/model"
	"github.com/ledgersmith/payoff/internal/money"
)

// PlanInput is one debt's state handed to the strategy planner.
type PlanInput struct {
	Debt     model.Debt
	Schedule model.Schedule
	Ledger   ledger.Ledger
}

// Plan orders a portfolio of debts under the given prioritization policy
// and simulates redirecting the surplus to the top-ranked debt. Ranking is
// deterministic: avalanche prefers the highest rate, snowball the lowest
// outstanding balance, with ties broken by earliest next due date and then
// lowest debt id. Only the top-ranked debt's remaining schedule is
// re-amortized; every other schedule is untouched.
func (e *Engine) Plan(inputs []PlanInput, policy model.Policy, surplus money.Money, asOf time.Time) (model.StrategyPlan, error) {
	if err := policy.Validate(); err != nil {
		return model.StrategyPlan{}, err
	}
	if len(inputs) == 0 {
		return model.StrategyPlan{}, errors.New("plan requires at least one debt")
	}
	if surplus.IsNegative() {
		return model.StrategyPlan{}, errors.New("surplus cannot be negative")
	}

	currency := inputs[0].Debt.Currency()
	if surplus.Currency() != currency {
		return model.StrategyPlan{}, &money.MismatchError{Left: currency, Right: surplus.Currency()}
	}

	positions := make([]model.DebtPosition, 0, len(inputs))
	remaining := make(map[string]money.Money, len(inputs))
	for _, in := range inputs {
		if in.Debt.Currency() != currency {
			return model.StrategyPlan{}, &money.MismatchError{Left: currency, Right: in.Debt.Currency()}
		}
		progress, err := e.Evaluate(in.Schedule, in.Ledger, asOf)
		if err != nil {
			return model.StrategyPlan{}, err
		}
		rem, _ := in.Schedule.TotalPrincipal().Sub(in.Ledger.PrincipalPaid(asOf))
		if rem.IsNegative() {
			rem = money.Zero(currency)
		}
		remaining[in.Debt.ID] = rem
		positions = append(positions, model.DebtPosition{
			Debt:     in.Debt,
			Schedule: in.Schedule,
			Progress: progress,
		})
	}

	sort.SliceStable(positions, func(i, j int) bool {
		return rankLess(&positions[i], &positions[j], policy, remaining, asOf)
	})
	for i := range positions {
		positions[i].Rank = i + 1
	}

	baseline := money.Zero(currency)
	for i := range positions {
		rem := positions[i].Schedule.RemainingInterestAfter(positions[i].Progress.PeriodIndex)
		baseline, _ = baseline.Add(rem)
	}

	total := baseline
	if surplus.IsPositive() {
		if accelerated := e.accelerate(&positions[0], remaining[positions[0].Debt.ID], surplus, asOf); accelerated != nil {
			positions[0].Accelerated = accelerated
			topBaseline := positions[0].Schedule.RemainingInterestAfter(positions[0].Progress.PeriodIndex)
			total, _ = total.Sub(topBaseline)
			total, _ = total.Add(accelerated.TotalInterest())
		}
	}
	saved, _ := baseline.Sub(total)

	return model.StrategyPlan{
		GeneratedAt:         asOf,
		ProjectedPayoffDate: projectedPayoff(positions),
		Policy:              policy,
		Positions:           positions,
		Surplus:             surplus,
		BaselineInterest:    baseline,
		TotalInterest:       total,
		InterestSaved:       saved,
	}, nil
}

// rankLess orders two positions under the policy with deterministic
// tie-breaking.
func rankLess(a, b *model.DebtPosition, policy model.Policy, remaining map[string]money.Money, asOf time.Time) bool {
	switch policy {
	case model.PolicyAvalanche:
		if a.Debt.AnnualRateBps != b.Debt.AnnualRateBps {
			return a.Debt.AnnualRateBps > b.Debt.AnnualRateBps
		}
	case model.PolicySnowball:
		ra, rb := remaining[a.Debt.ID], remaining[b.Debt.ID]
		if cmp, err := ra.Cmp(rb); err == nil && cmp != 0 {
			return cmp < 0
		}
	}
	aNext, aOK := nextDue(&a.Schedule, asOf)
	bNext, bOK := nextDue(&b.Schedule, asOf)
	switch {
	case aOK && bOK && !aNext.Equal(bNext):
		return aNext.Before(bNext)
	case aOK != bOK:
		return aOK
	}
	return a.Debt.ID < b.Debt.ID
}

func nextDue(s *model.Schedule, asOf time.Time) (time.Time, bool) {
	if entry := s.NextDueAfter(asOf); entry != nil {
		return entry.DueDate, true
	}
	return time.Time{}, false
}

// accelerate re-amortizes the top-ranked debt's remaining balance with the
// surplus layered on as a fixed extra per period. Returns nil when there is
// nothing left to accelerate.
func (e *Engine) accelerate(top *model.DebtPosition, balance, surplus money.Money, asOf time.Time) *model.Schedule {
	if !balance.IsPositive() {
		return nil
	}
	debt := top.Debt
	rate := periodRate(debt.AnnualRateBps, debt.Frequency)
	payment := top.Schedule.LevelPayment

	// The baseline payment already amortizes the original principal, and
	// the surplus only strengthens it, but a deeply off-track balance gets
	// a generous bound rather than a divergent loop.
	firstPeriod := top.Progress.PeriodIndex + 1
	maxPeriods := debt.TermPeriods * 10

	entries := amortize(amortizeInput{
		balance:     balance,
		rate:        rate,
		payment:     payment,
		extra:       surplus,
		maxPeriods:  maxPeriods,
		firstPeriod: firstPeriod,
		dueDate: func(n int) time.Time {
			return debt.Frequency.DueDate(debt.StartDate, n)
		},
	})

	return &model.Schedule{
		DebtID:       debt.ID,
		Currency:     debt.Currency(),
		LevelPayment: payment,
		Entries:      entries,
	}
}

// projectedPayoff returns the latest final due date across the portfolio,
// using the accelerated schedule where one exists.
func projectedPayoff(positions []model.DebtPosition) time.Time {
	var latest time.Time
	for i := range positions {
		schedule := &positions[i].Schedule
		if positions[i].Accelerated != nil {
			schedule = positions[i].Accelerated
		}
		if final := schedule.Final(); final != nil && final.DueDate.After(latest) {
			latest = final.DueDate
		}
	}
	return latest
}
