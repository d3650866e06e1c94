package model

import (
	"fmt"
	"time"

	"github.com/ledgersmith/payoff/internal/money"
)

// Policy selects the debt-prioritization strategy.
type Policy string

const (
	// PolicyAvalanche ranks debts by highest interest rate first.
	PolicyAvalanche Policy = "avalanche"
	// PolicySnowball ranks debts by lowest outstanding balance first.
	PolicySnowball Policy = "snowball"
)

// Validate checks that the policy is a supported strategy.
func (p Policy) Validate() error {
	switch p {
	case PolicyAvalanche, PolicySnowball:
		return nil
	default:
		return fmt.Errorf("unsupported policy %q", p)
	}
}

// DebtPosition is one debt's slot in a strategy plan: its rank under the
// active policy, its schedule and reconciliation state, and (for the
// top-ranked debt) the accelerated schedule the surplus produces.
type DebtPosition struct {
	Debt        Debt
	Schedule    Schedule
	Progress    ProgressStatus
	Accelerated *Schedule
	Rank        int
}

// StrategyPlan is the portfolio-level payoff plan: debts ordered by the
// policy, a projected all-debts-paid date, and the interest consequences of
// redirecting the surplus to the top-ranked debt.
type StrategyPlan struct {
	GeneratedAt         time.Time
	ProjectedPayoffDate time.Time
	Policy              Policy
	Positions           []DebtPosition
	Surplus             money.Money
	BaselineInterest    money.Money
	TotalInterest       money.Money
	InterestSaved       money.Money
}

// Top returns the highest-ranked position, or nil for an empty plan.
func (p *StrategyPlan) Top() *DebtPosition {
	if len(p.Positions) == 0 {
		return nil
	}
	return &p.Positions[0]
}
