package accounting

import (
	"strings"

	"github.com/SscSPs/bookkeeping_engine/internal/core/domain"
)

var cashNameMarkers = []string{"cash", "bank", "نقد", "بنك"}

var (
	investingKeywords = []string{"equipment", "building", "machinery", "investment"}
	financingKeywords = []string{"loan", "capital", "shareholder", "owner"}
)

// IsCashAccount reports whether the account holds cash: an active asset whose
// primary or secondary name mentions cash or bank.
func IsCashAccount(acc domain.Account) bool {
	if !acc.IsActive || acc.Category != domain.Asset {
		return false
	}
	names := strings.ToLower(acc.NamePrimary + " " + acc.NameSecondary)
	for _, marker := range cashNameMarkers {
		if strings.Contains(names, marker) {
			return true
		}
	}
	return false
}

// ClassifyCashFlow buckets a cash movement by keywords of its entry and line descriptions.
// Anything unrecognised is operating.
func ClassifyCashFlow(entryDescription, lineDescription string) domain.CashFlowActivity {
	text := strings.ToLower(entryDescription + " " + lineDescription)
	switch {
	case containsAny(text, investingKeywords):
		return domain.InvestingActivity
	case containsAny(text, financingKeywords):
		return domain.FinancingActivity
	default:
		return domain.OperatingActivity
	}
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
