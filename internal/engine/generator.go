package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgersmith/payoff/internal/model"
	"github.com/ledgersmith/payoff/internal/money"
)

// rateScale is the decimal precision period rates are carried at. Rates are
// exact rationals (basis points over periods per year); this scale keeps
// non-terminating divisions well past the residual a schedule can absorb.
const rateScale = 24

// Generate produces the canonical amortization table for a debt definition.
// The returned schedule is immutable: regenerating it requires an explicit
// recalculation, and payment history is never consulted here.
//
// A *ConfigError is returned when the parameters violate the debt
// invariants or when the payment cannot amortize the principal (payment ≤
// first period's interest); the latter is detected before any iteration.
func (e *Engine) Generate(debt model.Debt) (model.Schedule, error) {
	if err := debt.Validate(); err != nil {
		return model.Schedule{}, &ConfigError{DebtID: debt.ID, Reason: err.Error()}
	}

	rate := periodRate(debt.AnnualRateBps, debt.Frequency)
	payment := levelPayment(debt.Principal, rate, debt.TermPeriods)
	if debt.FixedPayment != nil {
		payment = *debt.FixedPayment
	}

	if rate.IsPositive() {
		firstInterest := debt.Principal.MulRate(rate, money.RoundHalfEven)
		if payment.LessThanOrEqual(firstInterest) {
			return model.Schedule{}, &ConfigError{
				DebtID: debt.ID,
				Reason: "payment does not exceed period interest; debt would never amortize",
			}
		}
	}

	extra := money.Zero(debt.Currency())
	roundUpUnit := int64(0)
	switch debt.ExtraPolicy {
	case model.ExtraPolicyFixed:
		extra = *debt.ExtraAmount
	case model.ExtraPolicyRoundUp:
		roundUpUnit = e.cfg.RoundUpUnit
	}

	entries := amortize(amortizeInput{
		balance:     debt.Principal,
		rate:        rate,
		payment:     payment,
		extra:       extra,
		roundUpUnit: roundUpUnit,
		maxPeriods:  debt.TermPeriods,
		firstPeriod: 1,
		dueDate: func(n int) time.Time {
			return debt.Frequency.DueDate(debt.StartDate, n)
		},
	})

	return model.Schedule{
		DebtID:       debt.ID,
		Currency:     debt.Currency(),
		LevelPayment: payment,
		Entries:      entries,
	}, nil
}

// amortizeInput parameterizes the shared amortization loop. The strategy
// planner reuses it to re-amortize a remaining balance mid-stream.
type amortizeInput struct {
	dueDate     func(n int) time.Time
	balance     money.Money
	rate        decimal.Decimal
	payment     money.Money
	extra       money.Money
	roundUpUnit int64
	maxPeriods  int
	firstPeriod int
}

// amortize runs the standard amortized-loan recurrence. The caller
// guarantees the payment exceeds first-period interest, so the balance
// strictly decreases and the loop is bounded. The final period absorbs any
// rounding residual so the last balance is exactly zero; overpaying
// schedules truncate at the period the balance reaches zero.
func amortize(in amortizeInput) []model.ScheduleEntry {
	currency := in.balance.Currency()
	balance := in.balance
	cumInterest := money.Zero(currency)
	cumPrincipal := money.Zero(currency)

	entries := make([]model.ScheduleEntry, 0, in.maxPeriods)
	for i := 0; i < in.maxPeriods; i++ {
		n := in.firstPeriod + i
		interest := balance.MulRate(in.rate, money.RoundHalfEven)

		payment := in.payment
		if in.roundUpUnit > 0 {
			payment = payment.RoundUpToMultiple(in.roundUpUnit)
		}
		principal, _ := payment.Sub(interest)
		if in.extra.IsPositive() {
			principal, _ = principal.Add(in.extra)
			payment, _ = payment.Add(in.extra)
		}

		last := i == in.maxPeriods-1
		if last || principal.GreaterThanOrEqual(balance) {
			// Force the closing balance to exactly zero: the residual,
			// whatever its size, moves into this period's principal
			// portion and payment.
			principal = balance
			payment, _ = interest.Add(principal)
			balance = money.Zero(currency)
			last = true
		} else {
			balance, _ = balance.Sub(principal)
		}

		cumInterest, _ = cumInterest.Add(interest)
		cumPrincipal, _ = cumPrincipal.Add(principal)

		entries = append(entries, model.ScheduleEntry{
			PaymentNumber:       n,
			DueDate:             in.dueDate(n),
			Payment:             payment,
			Interest:            interest,
			Principal:           principal,
			BalanceAfter:        balance,
			CumulativeInterest:  cumInterest,
			CumulativePrincipal: cumPrincipal,
		})
		if last {
			break
		}
	}
	return entries
}

// periodRate converts an annual rate in basis points to an exact per-period
// decimal rate for the given cadence.
func periodRate(annualBps int64, f model.Frequency) decimal.Decimal {
	perYear := int64(f.PeriodsPerYear())
	if perYear == 0 || annualBps == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(annualBps).
		DivRound(decimal.NewFromInt(10000*perYear), rateScale)
}

// levelPayment computes the constant per-period payment via the annuity
// formula, degrading to straight-line division when the rate is zero.
func levelPayment(principal money.Money, rate decimal.Decimal, term int) money.Money {
	if rate.IsZero() {
		return principal.Div(int64(term), money.RoundHalfEven)
	}
	one := decimal.New(1, 0)
	growth := one.Add(rate).Pow(decimal.NewFromInt(int64(term)))
	numerator := principal.Decimal().Mul(rate).Mul(growth)
	payment := numerator.DivRound(growth.Sub(one), rateScale)
	return money.New(payment.RoundBank(0).IntPart(), principal.Currency())
}
