package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgersmith/payoff/internal/model"
	"github.com/ledgersmith/payoff/internal/money"
)

func payment(id string, day int, amount, interest int64) model.Payment {
	return model.Payment{
		ID:        id,
		DebtID:    "debt-1",
		PaidAt:    time.Date(2026, 2, day, 0, 0, 0, 0, time.UTC),
		Amount:    money.New(amount, "USD"),
		Interest:  money.New(interest, "USD"),
		Principal: money.New(amount-interest, "USD"),
	}
}

func TestLedger_AppendIsImmutable(t *testing.T) {
	l0 := New("debt-1", "USD")

	l1, err := l0.Append(payment("p1", 10, 35000, 5000))
	require.NoError(t, err)
	l2, err := l1.Append(payment("p2", 20, 30000, 4000))
	require.NoError(t, err)

	assert.Equal(t, 0, l0.Len())
	assert.Equal(t, 1, l1.Len())
	assert.Equal(t, 2, l2.Len())
}

func TestLedger_AppendRejectsBadEntries(t *testing.T) {
	l := New("debt-1", "USD")

	tests := []struct {
		mutate func(*model.Payment)
		name   string
		reason string
	}{
		{
			name:   "portions do not sum",
			mutate: func(p *model.Payment) { p.Interest = money.New(1, "USD") },
			reason: "interest plus principal",
		},
		{
			name: "non-positive amount",
			mutate: func(p *model.Payment) {
				p.Amount = money.New(-100, "USD")
				p.Interest = money.Zero("USD")
				p.Principal = money.New(-100, "USD")
			},
			reason: "amount must be positive",
		},
		{
			name:   "wrong debt",
			mutate: func(p *model.Payment) { p.DebtID = "debt-2" },
			reason: "ledger is for debt-1",
		},
		{
			name: "wrong currency",
			mutate: func(p *model.Payment) {
				p.Amount = money.New(35000, "EUR")
				p.Interest = money.New(5000, "EUR")
				p.Principal = money.New(30000, "EUR")
			},
			reason: "does not match ledger currency",
		},
		{
			name:   "unknown reversal target",
			mutate: func(p *model.Payment) { p.Reverses = "ghost" },
			reason: "negative amount", // reversal validation fires first
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := payment("p1", 10, 35000, 5000)
			tt.mutate(&p)
			_, err := l.Append(p)
			require.Error(t, err)
			var integrity *IntegrityError
			require.ErrorAs(t, err, &integrity)
			assert.Contains(t, integrity.Error(), tt.reason)
		})
	}

	t.Run("duplicate id", func(t *testing.T) {
		l1, err := l.Append(payment("p1", 10, 35000, 5000))
		require.NoError(t, err)
		_, err = l1.Append(payment("p1", 11, 35000, 5000))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate payment id")
	})
}

func TestLedger_OrderedByPaidAt(t *testing.T) {
	l := New("debt-1", "USD")

	var err error
	l, err = l.Append(payment("late", 20, 30000, 4000))
	require.NoError(t, err)
	l, err = l.Append(payment("early", 5, 35000, 5000))
	require.NoError(t, err)

	entries := l.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "early", entries[0].ID)
	assert.Equal(t, "late", entries[1].ID)
}

func TestLedger_Sums(t *testing.T) {
	l := New("debt-1", "USD")
	var err error
	l, err = l.Append(payment("p1", 10, 35000, 5000))
	require.NoError(t, err)
	l, err = l.Append(payment("p2", 20, 30000, 4000))
	require.NoError(t, err)

	before := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	mid := time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)
	after := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, int64(0), l.TotalPaid(before).Amount())
	assert.Equal(t, int64(35000), l.TotalPaid(mid).Amount())
	assert.Equal(t, int64(65000), l.TotalPaid(after).Amount())
	assert.Equal(t, int64(30000), l.PrincipalPaid(mid).Amount())
	assert.Equal(t, int64(56000), l.PrincipalPaid(after).Amount())
	assert.Equal(t, int64(9000), l.InterestPaid(after).Amount())
}

func TestLedger_AppendNeverDecreasesTotal(t *testing.T) {
	// Monotonicity: appending a payment never lowers TotalPaid for any
	// as-of at or after the payment date.
	l := New("debt-1", "USD")
	var err error
	l, err = l.Append(payment("p1", 10, 35000, 5000))
	require.NoError(t, err)

	asOf := time.Date(2026, 2, 25, 0, 0, 0, 0, time.UTC)
	before := l.TotalPaid(asOf)

	l2, err := l.Append(payment("p2", 20, 100, 0))
	require.NoError(t, err)
	after := l2.TotalPaid(asOf)

	assert.True(t, after.GreaterThanOrEqual(before))
}

func TestLedger_Reverse(t *testing.T) {
	l := New("debt-1", "USD")
	var err error
	l, err = l.Append(payment("p1", 10, 35000, 5000))
	require.NoError(t, err)

	at := time.Date(2026, 2, 12, 0, 0, 0, 0, time.UTC)
	l2, reversal, err := l.Reverse("p1", "r1", at)
	require.NoError(t, err)

	assert.Equal(t, "p1", reversal.Reverses)
	assert.Equal(t, int64(-35000), reversal.Amount.Amount())
	assert.Equal(t, 2, l2.Len())

	// Reversed payment nets to zero.
	after := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	assert.True(t, l2.TotalPaid(after).IsZero())
	assert.True(t, l2.PrincipalPaid(after).IsZero())

	// Original ledger unchanged.
	assert.Equal(t, 1, l.Len())
	assert.Equal(t, int64(35000), l.TotalPaid(after).Amount())

	t.Run("cannot reverse twice", func(t *testing.T) {
		_, _, err := l2.Reverse("p1", "r2", at)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already reversed")
	})

	t.Run("cannot reverse a reversal", func(t *testing.T) {
		_, _, err := l2.Reverse("r1", "r2", at)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot reverse a reversing entry")
	})

	t.Run("unknown payment", func(t *testing.T) {
		_, _, err := l.Reverse("ghost", "r9", at)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})
}

func TestFromPayments(t *testing.T) {
	payments := []model.Payment{
		payment("p2", 20, 30000, 4000),
		payment("p1", 10, 35000, 5000),
	}
	l, err := FromPayments("debt-1", "USD", payments)
	require.NoError(t, err)
	entries := l.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "p1", entries[0].ID)

	bad := append(payments, model.Payment{ID: "p3", DebtID: "debt-1"})
	_, err = FromPayments("debt-1", "USD", bad)
	require.Error(t, err)
}
