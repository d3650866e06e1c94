package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgersmith/payoff/internal/money"
)

func validPayment() Payment {
	return Payment{
		ID:        "pay-1",
		DebtID:    "debt-1",
		PaidAt:    time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC),
		Amount:    money.New(62405, "USD"),
		Interest:  money.New(18750, "USD"),
		Principal: money.New(43655, "USD"),
	}
}

func TestPayment_Validate(t *testing.T) {
	t.Run("valid payment", func(t *testing.T) {
		p := validPayment()
		require.NoError(t, p.Validate())
	})

	t.Run("portions must sum to amount", func(t *testing.T) {
		p := validPayment()
		p.Interest = money.New(18751, "USD")
		err := p.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "interest plus principal must equal amount")
	})

	t.Run("amount must be positive", func(t *testing.T) {
		p := validPayment()
		p.Amount = money.Zero("USD")
		p.Interest = money.Zero("USD")
		p.Principal = money.Zero("USD")
		err := p.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "amount must be positive")
	})

	t.Run("mixed currencies rejected", func(t *testing.T) {
		p := validPayment()
		p.Interest = money.New(18750, "EUR")
		require.Error(t, p.Validate())
	})

	t.Run("missing paid_at rejected", func(t *testing.T) {
		p := validPayment()
		p.PaidAt = time.Time{}
		require.Error(t, p.Validate())
	})

	t.Run("reversal must be negative", func(t *testing.T) {
		p := validPayment()
		p.Reverses = "pay-0"
		err := p.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reversing entry must carry a negative amount")

		p.Amount = p.Amount.Neg()
		p.Interest = p.Interest.Neg()
		p.Principal = p.Principal.Neg()
		require.NoError(t, p.Validate())
		assert.True(t, p.IsReversal())
	})
}

func TestSchedule_Helpers(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	entries := make([]ScheduleEntry, 0, 3)
	cumInterest := int64(0)
	cumPrincipal := int64(0)
	balance := int64(30000)
	for n := 1; n <= 3; n++ {
		cumInterest += 100
		cumPrincipal += 10000
		balance -= 10000
		entries = append(entries, ScheduleEntry{
			PaymentNumber:       n,
			DueDate:             FrequencyMonthly.DueDate(start, n),
			Payment:             money.New(10100, "USD"),
			Interest:            money.New(100, "USD"),
			Principal:           money.New(10000, "USD"),
			BalanceAfter:        money.New(balance, "USD"),
			CumulativeInterest:  money.New(cumInterest, "USD"),
			CumulativePrincipal: money.New(cumPrincipal, "USD"),
		})
	}
	s := Schedule{DebtID: "debt-1", Currency: "USD", LevelPayment: money.New(10100, "USD"), Entries: entries}

	assert.Equal(t, 3, s.Final().PaymentNumber)
	assert.Nil(t, s.EntryAt(0))
	assert.Nil(t, s.EntryAt(4))
	assert.Equal(t, 2, s.EntryAt(2).PaymentNumber)

	assert.Equal(t, 0, s.PeriodsElapsed(start))
	assert.Equal(t, 1, s.PeriodsElapsed(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 3, s.PeriodsElapsed(time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)))

	next := s.NextDueAfter(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	require.NotNil(t, next)
	assert.Equal(t, 2, next.PaymentNumber)
	assert.Nil(t, s.NextDueAfter(time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)))

	assert.Equal(t, int64(300), s.TotalInterest().Amount())
	assert.Equal(t, int64(30000), s.TotalPrincipal().Amount())
	assert.Equal(t, int64(200), s.RemainingInterestAfter(1).Amount())
	assert.Equal(t, int64(300), s.RemainingInterestAfter(0).Amount())
	assert.Equal(t, int64(0), s.RemainingInterestAfter(3).Amount())

	empty := Schedule{Currency: "USD"}
	assert.Nil(t, empty.Final())
	assert.True(t, empty.TotalInterest().IsZero())
}
