package mapping

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/SscSPs/bookkeeping_engine/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestAccountMapping_RootHasNullParent(t *testing.T) {
	acc := domain.Account{AccountID: "a", Code: "1", AccountType: domain.General, Category: domain.Asset, OpeningBalance: decimal.NewFromInt(5)}
	m := ToModelAccount(acc)
	assert.False(t, m.ParentAccountID.Valid)

	acc.ParentAccountID = "p"
	m = ToModelAccount(acc)
	assert.True(t, m.ParentAccountID.Valid)
	assert.Equal(t, "p", ToDomainAccount(m).ParentAccountID)
}

func TestJournalEntryMapping_OptionalColumns(t *testing.T) {
	posted := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	entry := domain.JournalEntry{
		EntryID:   "e",
		EntryDate: time.Date(2024, 3, 1, 15, 4, 0, 0, time.UTC),
		Status:    domain.Posted,
		PostedAt:  &posted,
		PostedBy:  "alice",
	}
	m := ToModelJournalEntry(entry)
	assert.True(t, m.PostedAt.Valid)
	assert.False(t, m.ApprovedAt.Valid)
	assert.False(t, m.ReversalOfEntryID.Valid)

	back := ToDomainJournalEntry(m)
	assert.Equal(t, domain.DateOnly(entry.EntryDate), back.EntryDate)
	assert.Equal(t, posted, *back.PostedAt)
	assert.Nil(t, back.ApprovedAt)
	assert.Empty(t, back.ReversedByEntryID)
}

func TestAuditMapping_EmptyValuesAreNull(t *testing.T) {
	m := ToModelAuditRecord(domain.AuditRecord{AuditID: "x", NewValues: json.RawMessage(`{"a":1}`)})
	assert.Nil(t, m.OldValues)
	assert.JSONEq(t, `{"a":1}`, string(m.NewValues))
}
