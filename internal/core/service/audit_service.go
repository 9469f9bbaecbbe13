package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/serverpanel/serverpanel/internal/core/domain"
	"github.com/serverpanel/serverpanel/internal/core/ports"
)

const (
	auditDefaultLimit = 200
	auditMaxLimit     = 1000
)

// AuditService filters, pages and exports the audit trail. The base
// ordering is always newest first.
type AuditService struct {
	store ports.StateStore
	log   zerolog.Logger
}

func NewAuditService(store ports.StateStore, log zerolog.Logger) *AuditService {
	return &AuditService{store: store, log: log}
}

// Query applies filters and pagination to the audit trail. Sorting is
// applied to the returned page only, after offset and limit.
func (s *AuditService) Query(ctx context.Context, q ports.AuditQuery) (ports.AuditPage, error) {
	filtered, err := s.filtered(ctx, q)
	if err != nil {
		return ports.AuditPage{}, err
	}

	limit := q.Limit
	switch {
	case limit == 0:
		limit = auditDefaultLimit
	case limit < 1:
		limit = 1
	case limit > auditMaxLimit:
		limit = auditMaxLimit
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	page := []domain.AuditEntry{}
	if offset < len(filtered) {
		end := offset + limit
		if end > len(filtered) {
			end = len(filtered)
		}
		page = append(page, filtered[offset:end]...)
	}
	sortEntries(page, q.SortBy, q.SortDir)

	return ports.AuditPage{
		Total:   len(filtered),
		Count:   len(page),
		Offset:  offset,
		Limit:   limit,
		Entries: page,
	}, nil
}

// ExportCSV renders audit entries as CSV. Scope "all" exports the full
// filtered set ignoring pagination, anything else exports the current
// page.
func (s *AuditService) ExportCSV(ctx context.Context, q ports.AuditQuery, scope string) ([]byte, error) {
	var entries []domain.AuditEntry
	if scope == ports.ExportScopeAll {
		filtered, err := s.filtered(ctx, q)
		if err != nil {
			return nil, err
		}
		sortEntries(filtered, q.SortBy, q.SortDir)
		entries = filtered
	} else {
		page, err := s.Query(ctx, q)
		if err != nil {
			return nil, err
		}
		entries = page.Entries
	}

	var b strings.Builder
	b.WriteString("ts,actor,action,details\n")
	for _, e := range entries {
		b.WriteString(e.Timestamp.UTC().Format(time.RFC3339))
		b.WriteByte(',')
		b.WriteString(csvField(e.Actor))
		b.WriteByte(',')
		b.WriteString(csvField(e.Action))
		b.WriteByte(',')
		b.WriteString(csvField(e.Details))
		b.WriteByte('\n')
	}
	return []byte(b.String()), nil
}

func (s *AuditService) filtered(ctx context.Context, q ports.AuditQuery) ([]domain.AuditEntry, error) {
	all, err := s.store.Audit(ctx)
	if err != nil {
		return nil, fmt.Errorf("load audit trail: %w", err)
	}

	actor := strings.ToLower(q.Actor)
	action := strings.ToLower(q.Action)
	from, hasFrom := parseDayStart(q.From)
	to, hasTo := parseDayEnd(q.To)

	// The store appends oldest first; walk backwards for newest first.
	out := make([]domain.AuditEntry, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		e := all[i]
		if actor != "" && !strings.Contains(strings.ToLower(e.Actor), actor) {
			continue
		}
		if action != "" && !strings.Contains(strings.ToLower(e.Action), action) {
			continue
		}
		if hasFrom && e.Timestamp.Before(from) {
			continue
		}
		if hasTo && e.Timestamp.After(to) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	// Unparsable bounds are ignored rather than rejected.
	return time.Time{}, false
}

func parseDayStart(s string) (time.Time, bool) {
	t, ok := parseDate(s)
	if !ok {
		return time.Time{}, false
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location()), true
}

func parseDayEnd(s string) (time.Time, bool) {
	t, ok := parseDate(s)
	if !ok {
		return time.Time{}, false
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location()).Add(24*time.Hour - time.Millisecond), true
}

func sortEntries(entries []domain.AuditEntry, by, dir string) {
	var key func(domain.AuditEntry) string
	switch by {
	case "ts":
		key = func(e domain.AuditEntry) string { return e.Timestamp.UTC().Format(time.RFC3339Nano) }
	case "actor":
		key = func(e domain.AuditEntry) string { return e.Actor }
	case "action":
		key = func(e domain.AuditEntry) string { return e.Action }
	default:
		return
	}
	desc := dir == "desc"
	sort.SliceStable(entries, func(i, j int) bool {
		if desc {
			return key(entries[i]) > key(entries[j])
		}
		return key(entries[i]) < key(entries[j])
	})
}

// csvField keeps the export a strict four column file by flattening
// separators inside values.
func csvField(v string) string {
	v = strings.ReplaceAll(v, ",", " ")
	v = strings.ReplaceAll(v, "\r", " ")
	v = strings.ReplaceAll(v, "\n", " ")
	return v
}
