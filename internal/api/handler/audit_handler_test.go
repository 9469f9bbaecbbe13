package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/serverpanel/serverpanel/internal/core/ports"
)

type stubAuditService struct {
	lastQuery ports.AuditQuery
	lastScope string
}

func (s *stubAuditService) Query(_ context.Context, q ports.AuditQuery) (ports.AuditPage, error) {
	s.lastQuery = q
	return ports.AuditPage{Total: 1, Count: 1, Limit: q.Limit, Offset: q.Offset}, nil
}

func (s *stubAuditService) ExportCSV(_ context.Context, q ports.AuditQuery, scope string) ([]byte, error) {
	s.lastQuery = q
	s.lastScope = scope
	return []byte("ts,actor,action,details\n"), nil
}

func TestAuditHandler_QueryParsesParams(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuditService{}
	handler := NewAuditHandler(stub)

	target := "/api/audit?actor=ali&action=user.&from=2026-03-01&to=2026-03-02&limit=50&offset=10&sortBy=actor&sortDir=desc"
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	if err := handler.Query(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	q := stub.lastQuery
	if q.Actor != "ali" || q.Action != "user." || q.From != "2026-03-01" || q.To != "2026-03-02" {
		t.Fatalf("filters = %+v", q)
	}
	if q.Limit != 50 || q.Offset != 10 || q.SortBy != "actor" || q.SortDir != "desc" {
		t.Fatalf("paging = %+v", q)
	}

	var page ports.AuditPage
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if page.Total != 1 {
		t.Fatalf("page = %+v", page)
	}
}

func TestAuditHandler_QueryExportShortcut(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuditService{}
	handler := NewAuditHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/audit?export=csv", nil)
	rec := httptest.NewRecorder()
	if err := handler.Query(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if stub.lastScope != ports.ExportScopePage {
		t.Fatalf("scope = %q", stub.lastScope)
	}
	if !strings.HasPrefix(rec.Body.String(), "ts,actor,action,details") {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestAuditHandler_ExportScopeAndHeaders(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuditService{}
	handler := NewAuditHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/audit/export?scope=all", nil)
	rec := httptest.NewRecorder()
	if err := handler.Export(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if stub.lastScope != ports.ExportScopeAll {
		t.Fatalf("scope = %q", stub.lastScope)
	}
	if got := rec.Header().Get(echo.HeaderContentDisposition); !strings.Contains(got, "audit.csv") {
		t.Fatalf("content disposition = %q", got)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("content type = %q", ct)
	}

	// Unknown scopes fall back to the page export.
	req = httptest.NewRequest(http.MethodGet, "/api/audit/export?scope=everything", nil)
	if err := handler.Export(e.NewContext(req, httptest.NewRecorder())); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if stub.lastScope != ports.ExportScopePage {
		t.Fatalf("fallback scope = %q", stub.lastScope)
	}
}
