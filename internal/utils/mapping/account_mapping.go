package mapping

import (
	"github.com/SscSPs/bookkeeping_engine/internal/core/domain"
	"github.com/SscSPs/bookkeeping_engine/internal/models"
)

// ToModelAccount converts a domain Account to a model Account
func ToModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountID:       d.AccountID,
		ParentAccountID: NullString(d.ParentAccountID),
		Code:            d.Code,
		NamePrimary:     d.NamePrimary,
		NameSecondary:   d.NameSecondary,
		AccountType:     string(d.AccountType),
		Category:        string(d.Category),
		Level:           d.Level,
		FullPath:        d.FullPath,
		IsActive:        d.IsActive,
		OpeningBalance:  d.OpeningBalance,
		CurrentBalance:  d.CurrentBalance,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainAccount converts a model Account to a domain Account
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID:       m.AccountID,
		ParentAccountID: m.ParentAccountID.String,
		Code:            m.Code,
		NamePrimary:     m.NamePrimary,
		NameSecondary:   m.NameSecondary,
		AccountType:     domain.AccountType(m.AccountType),
		Category:        domain.AccountCategory(m.Category),
		Level:           m.Level,
		FullPath:        m.FullPath,
		IsActive:        m.IsActive,
		OpeningBalance:  m.OpeningBalance,
		CurrentBalance:  m.CurrentBalance,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}
