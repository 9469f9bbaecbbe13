package ports

import (
	"context"

	"github.com/serverpanel/serverpanel/internal/core/domain"
)

// AuditQuery carries every filter and paging parameter of the audit
// endpoint. From and To are date strings ("2006-01-02" or RFC 3339);
// unparsable values are ignored, matching the observed behavior.
type AuditQuery struct {
	Actor   string // case-insensitive substring match
	Action  string // case-insensitive substring match
	From    string // inclusive, start of that day
	To      string // inclusive, through the end of that day
	Offset  int    // default 0
	Limit   int    // default 200, clamped to [1, 1000]
	SortBy  string // ts | actor | action; page-local re-sort only
	SortDir string // asc | desc
}

// AuditPage is one page of filtered audit entries, newest first.
type AuditPage struct {
	Total   int                 `json:"total"`
	Count   int                 `json:"count"`
	Offset  int                 `json:"offset"`
	Limit   int                 `json:"limit"`
	Entries []domain.AuditEntry `json:"audit"`
}

// Export scopes accepted by AuditService.ExportCSV.
const (
	ExportScopePage = "page"
	ExportScopeAll  = "all"
)

// AuditService filters, paginates, sorts and exports the audit log.
type AuditService interface {
	Query(ctx context.Context, q AuditQuery) (AuditPage, error)

	// ExportCSV renders either the current page or the full filtered
	// set as delimited text with header "ts,actor,action,details".
	// Embedded delimiters and newlines in values are replaced by a
	// single space so every row stays on one line.
	ExportCSV(ctx context.Context, q AuditQuery, scope string) ([]byte, error)
}
