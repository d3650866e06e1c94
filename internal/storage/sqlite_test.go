package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgersmith/payoff/internal/common"
	"github.com/ledgersmith/payoff/internal/engine"
	"github.com/ledgersmith/payoff/internal/model"
	"github.com/ledgersmith/payoff/internal/money"
)

func testStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	s, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func testDebt(id string) *model.Debt {
	return &model.Debt{
		ID:            id,
		Name:          "Car loan",
		Principal:     money.New(1250000, "USD"),
		AnnualRateBps: 1800,
		TermPeriods:   24,
		Frequency:     model.FrequencyMonthly,
		StartDate:     time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		ExtraPolicy:   model.ExtraPolicyNone,
	}
}

func TestMigrate_IsIdempotent(t *testing.T) {
	s := testStorage(t)
	require.NoError(t, s.Migrate(context.Background()))
}

func TestDebts_RoundTrip(t *testing.T) {
	s := testStorage(t)
	ctx := context.Background()

	debt := testDebt("debt-1")
	fp := money.New(70000, "USD")
	debt.FixedPayment = &fp
	require.NoError(t, s.SaveDebt(ctx, debt))

	got, err := s.GetDebt(ctx, "debt-1")
	require.NoError(t, err)

	assert.Equal(t, debt.ID, got.ID)
	assert.Equal(t, debt.Name, got.Name)
	assert.True(t, debt.Principal.Equal(got.Principal))
	assert.Equal(t, debt.AnnualRateBps, got.AnnualRateBps)
	assert.Equal(t, debt.TermPeriods, got.TermPeriods)
	assert.Equal(t, debt.Frequency, got.Frequency)
	assert.True(t, debt.StartDate.Equal(got.StartDate))
	require.NotNil(t, got.FixedPayment)
	assert.True(t, fp.Equal(*got.FixedPayment))
	assert.Nil(t, got.ExtraAmount)
	assert.Nil(t, got.ArchivedAt)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestGetDebt_NotFound(t *testing.T) {
	s := testStorage(t)
	_, err := s.GetDebt(context.Background(), "ghost")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestSaveDebt_RejectsInvalid(t *testing.T) {
	s := testStorage(t)
	debt := testDebt("bad")
	debt.TermPeriods = 0
	err := s.SaveDebt(context.Background(), debt)
	require.ErrorIs(t, err, ErrInvalidDebt)
}

func TestListDebts_ExcludesArchived(t *testing.T) {
	s := testStorage(t)
	ctx := context.Background()

	require.NoError(t, s.SaveDebt(ctx, testDebt("active")))
	require.NoError(t, s.SaveDebt(ctx, testDebt("done")))
	require.NoError(t, s.ArchiveDebt(ctx, "done", time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)))

	active, err := s.ListDebts(ctx, false)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "active", active[0].ID)

	all, err := s.ListDebts(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	t.Run("archive is recorded", func(t *testing.T) {
		got, err := s.GetDebt(ctx, "done")
		require.NoError(t, err)
		require.NotNil(t, got.ArchivedAt)
		assert.True(t, got.IsArchived())
	})

	t.Run("archiving twice fails", func(t *testing.T) {
		err := s.ArchiveDebt(ctx, "done", time.Now().UTC())
		require.ErrorIs(t, err, common.ErrNotFound)
	})
}

func TestSchedules_RoundTrip(t *testing.T) {
	s := testStorage(t)
	ctx := context.Background()

	debt := testDebt("debt-1")
	require.NoError(t, s.SaveDebt(ctx, debt))

	generated, err := engine.New().Generate(*debt)
	require.NoError(t, err)
	require.NoError(t, s.SaveSchedule(ctx, &generated))

	got, err := s.GetSchedule(ctx, "debt-1")
	require.NoError(t, err)

	assert.Equal(t, generated.DebtID, got.DebtID)
	assert.Equal(t, generated.Currency, got.Currency)
	assert.True(t, generated.LevelPayment.Equal(got.LevelPayment))
	require.Len(t, got.Entries, len(generated.Entries))
	for i := range generated.Entries {
		want, have := generated.Entries[i], got.Entries[i]
		assert.Equal(t, want.PaymentNumber, have.PaymentNumber)
		assert.True(t, want.DueDate.Equal(have.DueDate))
		assert.True(t, want.Payment.Equal(have.Payment))
		assert.True(t, want.BalanceAfter.Equal(have.BalanceAfter))
		assert.True(t, want.CumulativePrincipal.Equal(have.CumulativePrincipal))
	}
}

func TestSaveSchedule_RefusesOverwrite(t *testing.T) {
	s := testStorage(t)
	ctx := context.Background()

	debt := testDebt("debt-1")
	require.NoError(t, s.SaveDebt(ctx, debt))

	generated, err := engine.New().Generate(*debt)
	require.NoError(t, err)
	require.NoError(t, s.SaveSchedule(ctx, &generated))

	err = s.SaveSchedule(ctx, &generated)
	require.ErrorIs(t, err, common.ErrDuplicateEntry)
}

func TestReplaceSchedule(t *testing.T) {
	s := testStorage(t)
	ctx := context.Background()
	eng := engine.New()

	debt := testDebt("debt-1")
	require.NoError(t, s.SaveDebt(ctx, debt))
	generated, err := eng.Generate(*debt)
	require.NoError(t, err)
	require.NoError(t, s.SaveSchedule(ctx, &generated))

	// Recalculated successor: smaller principal over a shorter term.
	successor := *debt
	successor.Principal = money.New(1000000, "USD")
	successor.TermPeriods = 20
	fresh, err := eng.Generate(successor)
	require.NoError(t, err)

	require.NoError(t, s.ReplaceSchedule(ctx, &successor, &fresh))

	got, err := s.GetSchedule(ctx, "debt-1")
	require.NoError(t, err)
	assert.Len(t, got.Entries, 20)

	gotDebt, err := s.GetDebt(ctx, "debt-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1000000), gotDebt.Principal.Amount())
	assert.Equal(t, 20, gotDebt.TermPeriods)
}

func TestPayments_AppendAndList(t *testing.T) {
	s := testStorage(t)
	ctx := context.Background()

	require.NoError(t, s.SaveDebt(ctx, testDebt("debt-1")))

	p1 := &model.Payment{
		ID:        "p1",
		DebtID:    "debt-1",
		PaidAt:    time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC),
		Amount:    money.New(62405, "USD"),
		Interest:  money.New(18750, "USD"),
		Principal: money.New(43655, "USD"),
	}
	p2 := &model.Payment{
		ID:        "p2",
		DebtID:    "debt-1",
		PaidAt:    time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		Amount:    money.New(10000, "USD"),
		Interest:  money.Zero("USD"),
		Principal: money.New(10000, "USD"),
		IsExtra:   true,
	}
	require.NoError(t, s.AppendPayment(ctx, p1))
	require.NoError(t, s.AppendPayment(ctx, p2))

	payments, err := s.GetPayments(ctx, "debt-1")
	require.NoError(t, err)
	require.Len(t, payments, 2)

	assert.Equal(t, "p1", payments[0].ID)
	assert.True(t, payments[0].Amount.Equal(p1.Amount))
	assert.True(t, payments[0].Interest.Equal(p1.Interest))
	assert.False(t, payments[0].IsExtra)
	assert.Equal(t, "p2", payments[1].ID)
	assert.True(t, payments[1].IsExtra)

	t.Run("rejects invalid entries", func(t *testing.T) {
		bad := &model.Payment{ID: "p3", DebtID: "debt-1", PaidAt: p1.PaidAt,
			Amount:    money.New(100, "USD"),
			Interest:  money.New(90, "USD"),
			Principal: money.New(20, "USD"),
		}
		err := s.AppendPayment(ctx, bad)
		require.ErrorIs(t, err, ErrInvalidPayment)
	})

	t.Run("duplicate id rejected", func(t *testing.T) {
		err := s.AppendPayment(ctx, p1)
		require.Error(t, err)
	})
}

func TestPayments_AppendOnlyTriggers(t *testing.T) {
	s := testStorage(t)
	ctx := context.Background()

	require.NoError(t, s.SaveDebt(ctx, testDebt("debt-1")))
	require.NoError(t, s.AppendPayment(ctx, &model.Payment{
		ID:        "p1",
		DebtID:    "debt-1",
		PaidAt:    time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC),
		Amount:    money.New(62405, "USD"),
		Interest:  money.New(18750, "USD"),
		Principal: money.New(43655, "USD"),
	}))

	_, err := s.db.ExecContext(ctx, `UPDATE payments SET amount = 1 WHERE id = 'p1'`)
	require.Error(t, err, "payments must reject updates")

	_, err = s.db.ExecContext(ctx, `DELETE FROM payments WHERE id = 'p1'`)
	require.Error(t, err, "payments must reject deletes")
}

func TestTransaction_CommitAndRollback(t *testing.T) {
	s := testStorage(t)
	ctx := context.Background()

	t.Run("rollback discards", func(t *testing.T) {
		tx, err := s.BeginTx(ctx)
		require.NoError(t, err)
		require.NoError(t, tx.SaveDebt(ctx, testDebt("temp")))
		require.NoError(t, tx.Rollback())

		_, err = s.GetDebt(ctx, "temp")
		require.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("commit persists", func(t *testing.T) {
		tx, err := s.BeginTx(ctx)
		require.NoError(t, err)
		require.NoError(t, tx.SaveDebt(ctx, testDebt("kept")))
		require.NoError(t, tx.Commit())

		got, err := s.GetDebt(ctx, "kept")
		require.NoError(t, err)
		assert.Equal(t, "kept", got.ID)
	})
}
