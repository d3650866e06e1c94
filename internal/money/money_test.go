package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{name: "whole dollars", input: "12500", want: 1250000},
		{name: "dollars and cents", input: "12500.00", want: 1250000},
		{name: "cents", input: "0.05", want: 5},
		{name: "single decimal place", input: "624.3", want: 62430},
		{name: "leading whitespace", input: " 10.00", want: 1000},
		{name: "negative", input: "-5.25", want: -525},
		{name: "too many decimal places", input: "1.005", wantErr: true},
		{name: "not a number", input: "ten dollars", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.input, "USD")
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Amount())
			assert.Equal(t, Currency("USD"), got.Currency())
		})
	}
}

func TestMoney_AddSub(t *testing.T) {
	a := New(1000, "USD")
	b := New(250, "USD")

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, int64(1250), sum.Amount())

	diff, err := a.Sub(b)
	require.NoError(t, err)
	assert.Equal(t, int64(750), diff.Amount())
}

func TestMoney_CurrencyMismatch(t *testing.T) {
	usd := New(100, "USD")
	eur := New(100, "EUR")

	_, err := usd.Add(eur)
	require.Error(t, err)

	var mismatch *MismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, Currency("USD"), mismatch.Left)
	assert.Equal(t, Currency("EUR"), mismatch.Right)

	_, err = usd.Sub(eur)
	require.Error(t, err)
	_, err = usd.Cmp(eur)
	require.Error(t, err)
}

func TestMoney_MulRate(t *testing.T) {
	tests := []struct {
		name string
		amt  int64
		rate string
		mode Rounding
		want int64
	}{
		// 12,500.00 × 1.5% monthly rate: the period-1 interest of the
		// canonical 18%/24mo example.
		{name: "period interest", amt: 1250000, rate: "0.015", mode: RoundHalfEven, want: 18750},
		{name: "half to even rounds down", amt: 125, rate: "0.1", mode: RoundHalfEven, want: 12},
		{name: "half to even rounds up", amt: 135, rate: "0.1", mode: RoundHalfEven, want: 14},
		{name: "half up", amt: 125, rate: "0.1", mode: RoundHalfUp, want: 13},
		{name: "round down truncates", amt: 199, rate: "0.1", mode: RoundDown, want: 19},
		{name: "round up", amt: 191, rate: "0.1", mode: RoundUp, want: 20},
		{name: "zero rate", amt: 99999, rate: "0", mode: RoundHalfEven, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rate, err := decimal.NewFromString(tt.rate)
			require.NoError(t, err)
			got := New(tt.amt, "USD").MulRate(rate, tt.mode)
			assert.Equal(t, tt.want, got.Amount())
			assert.Equal(t, Currency("USD"), got.Currency())
		})
	}
}

func TestMoney_Div(t *testing.T) {
	// 1,000.00 over 7 periods: 142.86 with half-even rounding.
	got := New(100000, "USD").Div(7, RoundHalfEven)
	assert.Equal(t, int64(14286), got.Amount())

	// Exact division stays exact.
	got = New(120000, "USD").Div(12, RoundHalfEven)
	assert.Equal(t, int64(10000), got.Amount())
}

func TestMoney_RoundUpToMultiple(t *testing.T) {
	tests := []struct {
		name string
		amt  int64
		unit int64
		want int64
	}{
		{name: "lifts to next dollar", amt: 62405, unit: 100, want: 62500},
		{name: "already on multiple", amt: 62500, unit: 100, want: 62500},
		{name: "one cent below", amt: 9999, unit: 100, want: 10000},
		{name: "zero amount unchanged", amt: 0, unit: 100, want: 0},
		{name: "non-positive unit unchanged", amt: 151, unit: 0, want: 151},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New(tt.amt, "USD").RoundUpToMultiple(tt.unit)
			assert.Equal(t, tt.want, got.Amount())
		})
	}
}

func TestMoney_Comparisons(t *testing.T) {
	a := New(100, "USD")
	b := New(200, "USD")

	cmp, err := a.Cmp(b)
	require.NoError(t, err)
	assert.Equal(t, -1, cmp)

	cmp, err = b.Cmp(a)
	require.NoError(t, err)
	assert.Equal(t, 1, cmp)

	cmp, err = a.Cmp(a)
	require.NoError(t, err)
	assert.Equal(t, 0, cmp)

	assert.True(t, b.GreaterThanOrEqual(a))
	assert.True(t, a.LessThanOrEqual(b))
	assert.False(t, a.GreaterThanOrEqual(New(100, "EUR")))

	assert.True(t, New(-5, "USD").IsNegative())
	assert.True(t, New(5, "USD").IsPositive())
	assert.True(t, Zero("USD").IsZero())
	assert.Equal(t, int64(5), New(-5, "USD").Abs().Amount())
}

func TestMoney_String(t *testing.T) {
	assert.Equal(t, "624.05 USD", New(62405, "USD").String())
	assert.Equal(t, "-12.34 EUR", New(-1234, "EUR").String())
	assert.Equal(t, "0.07", New(7, "").String())
}
