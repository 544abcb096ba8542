package dto

import "github.com/SscSPs/bookkeeping_engine/internal/core/domain"

// ListAuditParams defines query parameters for reading the audit log.
type ListAuditParams struct {
	Table    string `form:"table"`
	RecordID string `form:"recordId"`
	Action   string `form:"action"`
	Limit    int    `form:"limit,default=100" binding:"min=0,max=1000"`
}

// ToFilter converts the query parameters into an audit filter.
func (p ListAuditParams) ToFilter() domain.AuditFilter {
	return domain.AuditFilter{
		TableName: p.Table,
		RecordID:  p.RecordID,
		Action:    domain.AuditAction(p.Action),
		Limit:     p.Limit,
	}
}

// ListAuditResponse wraps audit records.
type ListAuditResponse struct {
	Records []domain.AuditRecord `json:"records"`
}
