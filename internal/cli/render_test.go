package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgersmith/payoff/internal/model"
	"github.com/ledgersmith/payoff/internal/money"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		name   string
		amount int64
		want   string
	}{
		{name: "small", amount: 500, want: "5.00 USD"},
		{name: "thousands grouped", amount: 1250000, want: "12,500.00 USD"},
		{name: "millions grouped", amount: 123456789, want: "1,234,567.89 USD"},
		{name: "negative", amount: -62405, want: "-624.05 USD"},
		{name: "zero", amount: 0, want: "0.00 USD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatMoney(money.New(tt.amount, "USD"))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderDebtsTable_Empty(t *testing.T) {
	out := RenderDebtsTable(nil)
	assert.Contains(t, out, "No debts on file")
}

func TestRenderDebtsTable(t *testing.T) {
	debts := []model.Debt{
		{
			ID:            "d1",
			Name:          "Car loan",
			Principal:     money.New(1250000, "USD"),
			AnnualRateBps: 1800,
			TermPeriods:   24,
			Frequency:     model.FrequencyMonthly,
		},
	}
	out := RenderDebtsTable(debts)
	assert.Contains(t, out, "Car loan")
	assert.Contains(t, out, "12,500.00 USD")
	assert.Contains(t, out, "18.00%")
}

func TestRenderStatus_FlagsRecalculation(t *testing.T) {
	debt := &model.Debt{Name: "Car loan", TermPeriods: 24,
		Principal: money.New(1250000, "USD")}
	progress := &model.ProgressStatus{
		AsOf:               time.Now(),
		Status:             model.StatusAhead,
		PeriodIndex:        3,
		ActualPaid:         money.New(200000, "USD"),
		PlannedPaid:        money.New(187215, "USD"),
		Drift:              money.New(12785, "USD"),
		NeedsRecalculation: true,
	}

	out := RenderStatus(debt, progress)
	require.Contains(t, out, "ahead")
	assert.Contains(t, out, "3 of 24")
	assert.Contains(t, out, "recalculate")
}
