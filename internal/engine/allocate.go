package engine

import (
	"errors"
	"time"

	"github.com/ledgersmith/payoff/internal/ledger"
	"github.com/ledgersmith/payoff/internal/model"
	"github.com/ledgersmith/payoff/internal/money"
)

// AllocatePayment splits a recorded amount into interest and principal
// portions against the debt's actual outstanding balance. Interest accrues
// at the period rate on the balance as of the payment date; the remainder
// retires principal. Extra payments bypass interest entirely.
//
// The caller supplies the payment id; the engine never mints identifiers.
func (e *Engine) AllocatePayment(debt model.Debt, lgr ledger.Ledger, id string, amount money.Money, paidAt time.Time, isExtra bool) (model.Payment, error) {
	if id == "" {
		return model.Payment{}, errors.New("payment id is required")
	}
	if !amount.IsPositive() {
		return model.Payment{}, errors.New("payment amount must be positive")
	}
	if amount.Currency() != debt.Currency() {
		return model.Payment{}, &money.MismatchError{Left: debt.Currency(), Right: amount.Currency()}
	}
	if lgr.Currency() != debt.Currency() {
		return model.Payment{}, &money.MismatchError{Left: debt.Currency(), Right: lgr.Currency()}
	}

	interest := money.Zero(debt.Currency())
	if !isExtra {
		balance, _ := debt.Principal.Sub(lgr.PrincipalPaid(paidAt))
		if balance.IsPositive() {
			rate := periodRate(debt.AnnualRateBps, debt.Frequency)
			interest = balance.MulRate(rate, money.RoundHalfEven)
			if amount.LessThanOrEqual(interest) {
				interest = amount
			}
		}
	}
	principal, _ := amount.Sub(interest)

	return model.Payment{
		ID:        id,
		DebtID:    debt.ID,
		PaidAt:    paidAt,
		Amount:    amount,
		Interest:  interest,
		Principal: principal,
		IsExtra:   isExtra,
	}, nil
}
