package accounting

import (
	"fmt"

	"github.com/SscSPs/bookkeeping_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Tolerance is the largest debit/credit difference still treated as balanced.
var Tolerance = decimal.NewFromFloat(0.01)

// SignedAmount applies the category sign convention to one debit/credit pair.
// This is used by posting, ledgers and reports so every path derives balances the same way.
//
// asset, expense:             +debit -credit
// liability, revenue, equity: -debit +credit
func SignedAmount(category domain.AccountCategory, debit, credit decimal.Decimal) (decimal.Decimal, error) {
	switch category {
	case domain.Asset, domain.Expense:
		return debit.Sub(credit), nil
	case domain.Liability, domain.Revenue, domain.Equity:
		return credit.Sub(debit), nil
	default:
		return decimal.Zero, fmt.Errorf("unknown account category '%s'", category)
	}
}

// ApplyActivity folds debit/credit activity into a balance.
func ApplyActivity(category domain.AccountCategory, balance, debit, credit decimal.Decimal) (decimal.Decimal, error) {
	delta, err := SignedAmount(category, debit, credit)
	if err != nil {
		return decimal.Zero, err
	}
	return balance.Add(delta), nil
}

// SplitTrialBalance places a closing balance on the debit or credit column.
// A positive balance sits on the category's natural side; a negative one flips.
func SplitTrialBalance(category domain.AccountCategory, closing decimal.Decimal) (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	onDebitSide := category.DebitNature() == closing.IsPositive()
	if closing.IsZero() {
		return
	}
	if onDebitSide {
		debit = closing.Abs()
	} else {
		credit = closing.Abs()
	}
	return
}

// Balanced reports whether two totals agree within Tolerance.
func Balanced(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(Tolerance)
}

// SumLines totals debit and credit of the given lines.
func SumLines(lines []domain.LineInput) (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, l := range lines {
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
	}
	return
}

// ValidateLineAmounts checks that exactly one side of a line is positive and none is negative.
func ValidateLineAmounts(debit, credit decimal.Decimal) error {
	if debit.IsNegative() || credit.IsNegative() {
		return fmt.Errorf("amounts cannot be negative")
	}
	if debit.IsPositive() && credit.IsPositive() {
		return fmt.Errorf("cannot have both debit and credit")
	}
	if debit.IsZero() && credit.IsZero() {
		return fmt.Errorf("must have either debit or credit")
	}
	return nil
}
