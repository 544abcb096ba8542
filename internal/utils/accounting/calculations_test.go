package accounting

import (
	"testing"

	"github.com/SscSPs/bookkeeping_engine/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestSignedAmount(t *testing.T) {
	tests := []struct {
		name     string
		category domain.AccountCategory
		debit    string
		credit   string
		want     string
	}{
		{"asset debit", domain.Asset, "100", "0", "100"},
		{"asset credit", domain.Asset, "0", "40", "-40"},
		{"expense debit", domain.Expense, "12.5", "0", "12.5"},
		{"liability credit", domain.Liability, "0", "75", "75"},
		{"revenue debit", domain.Revenue, "10", "0", "-10"},
		{"equity credit", domain.Equity, "0", "5000", "5000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SignedAmount(tt.category, d(tt.debit), d(tt.credit))
			require.NoError(t, err)
			assert.True(t, d(tt.want).Equal(got), "want %s got %s", tt.want, got)
		})
	}

	_, err := SignedAmount("bogus", d("1"), decimal.Zero)
	assert.Error(t, err)
}

func TestSplitTrialBalance(t *testing.T) {
	tests := []struct {
		name       string
		category   domain.AccountCategory
		closing    string
		wantDebit  string
		wantCredit string
	}{
		{"positive asset is debit", domain.Asset, "6000", "6000", "0"},
		{"negative asset flips to credit", domain.Asset, "-20", "0", "20"},
		{"positive revenue is credit", domain.Revenue, "1000", "0", "1000"},
		{"negative liability flips to debit", domain.Liability, "-3", "3", "0"},
		{"zero stays zero", domain.Equity, "0", "0", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			debit, credit := SplitTrialBalance(tt.category, d(tt.closing))
			assert.True(t, d(tt.wantDebit).Equal(debit), "debit %s", debit)
			assert.True(t, d(tt.wantCredit).Equal(credit), "credit %s", credit)
		})
	}
}

func TestBalanced(t *testing.T) {
	assert.True(t, Balanced(d("100.00"), d("100.01")))
	assert.True(t, Balanced(d("100"), d("100")))
	assert.False(t, Balanced(d("100"), d("100.02")))
}

func TestValidateLineAmounts(t *testing.T) {
	assert.NoError(t, ValidateLineAmounts(d("1"), decimal.Zero))
	assert.NoError(t, ValidateLineAmounts(decimal.Zero, d("1")))
	assert.EqualError(t, ValidateLineAmounts(d("-1"), decimal.Zero), "amounts cannot be negative")
	assert.EqualError(t, ValidateLineAmounts(d("1"), d("1")), "cannot have both debit and credit")
	assert.EqualError(t, ValidateLineAmounts(decimal.Zero, decimal.Zero), "must have either debit or credit")
}

func TestSumLines(t *testing.T) {
	debit, credit := SumLines([]domain.LineInput{
		{Debit: d("10.50")},
		{Credit: d("4.25")},
		{Credit: d("6.25")},
	})
	assert.True(t, d("10.50").Equal(debit))
	assert.True(t, d("10.50").Equal(credit))
}
