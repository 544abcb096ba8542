package mapping

import (
	"github.com/SscSPs/bookkeeping_engine/internal/core/domain"
	"github.com/SscSPs/bookkeeping_engine/internal/models"
)

// ToModelJournalEntry converts a domain JournalEntry header to a model JournalEntry
func ToModelJournalEntry(d domain.JournalEntry) models.JournalEntry {
	return models.JournalEntry{
		EntryID:           d.EntryID,
		EntryNumber:       d.EntryNumber,
		EntryDate:         d.EntryDate,
		Description:       d.Description,
		FiscalYearID:      d.FiscalYearID,
		TotalDebit:        d.TotalDebit,
		TotalCredit:       d.TotalCredit,
		Status:            string(d.Status),
		PostedAt:          NullTime(d.PostedAt),
		PostedBy:          NullString(d.PostedBy),
		ApprovedAt:        NullTime(d.ApprovedAt),
		ApprovedBy:        NullString(d.ApprovedBy),
		ReversalOfEntryID: NullString(d.ReversalOfEntryID),
		ReversedByEntryID: NullString(d.ReversedByEntryID),
		AuditFields:       ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainJournalEntry converts a model JournalEntry to a domain JournalEntry without lines
func ToDomainJournalEntry(m models.JournalEntry) domain.JournalEntry {
	return domain.JournalEntry{
		EntryID:           m.EntryID,
		EntryNumber:       m.EntryNumber,
		EntryDate:         domain.DateOnly(m.EntryDate),
		Description:       m.Description,
		FiscalYearID:      m.FiscalYearID,
		TotalDebit:        m.TotalDebit,
		TotalCredit:       m.TotalCredit,
		Status:            domain.EntryStatus(m.Status),
		PostedAt:          TimePtr(m.PostedAt),
		PostedBy:          m.PostedBy.String,
		ApprovedAt:        TimePtr(m.ApprovedAt),
		ApprovedBy:        m.ApprovedBy.String,
		ReversalOfEntryID: m.ReversalOfEntryID.String,
		ReversedByEntryID: m.ReversedByEntryID.String,
		AuditFields:       ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelJournalLine converts a domain JournalLine to a model JournalLine
func ToModelJournalLine(d domain.JournalLine) models.JournalLine {
	return models.JournalLine{
		LineID:      d.LineID,
		EntryID:     d.EntryID,
		AccountID:   d.AccountID,
		LineNumber:  d.LineNumber,
		Description: d.Description,
		Debit:       d.Debit,
		Credit:      d.Credit,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainJournalLine converts a model JournalLine to a domain JournalLine
func ToDomainJournalLine(m models.JournalLine) domain.JournalLine {
	return domain.JournalLine{
		LineID:      m.LineID,
		EntryID:     m.EntryID,
		AccountID:   m.AccountID,
		LineNumber:  m.LineNumber,
		Description: m.Description,
		Debit:       m.Debit,
		Credit:      m.Credit,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainPostedLine converts a joined line row to a domain PostedLine
func ToDomainPostedLine(m models.PostedLine) domain.PostedLine {
	return domain.PostedLine{
		LineID:           m.LineID,
		EntryID:          m.EntryID,
		EntryNumber:      m.EntryNumber,
		EntryDate:        domain.DateOnly(m.EntryDate),
		EntryCreatedAt:   m.EntryCreatedAt.UTC(),
		EntryDescription: m.EntryDescription,
		AccountID:        m.AccountID,
		LineNumber:       m.LineNumber,
		Description:      m.Description,
		Debit:            m.Debit,
		Credit:           m.Credit,
	}
}
