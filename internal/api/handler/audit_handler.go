package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/serverpanel/serverpanel/internal/core/ports"
)

// AuditHandler exposes the audit query engine. Both routes are admin only.
type AuditHandler struct {
	audit ports.AuditService
}

func NewAuditHandler(audit ports.AuditService) *AuditHandler {
	return &AuditHandler{audit: audit}
}

func auditQuery(c echo.Context) ports.AuditQuery {
	// Unparsable numbers fall back to the service defaults.
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	return ports.AuditQuery{
		Actor:   c.QueryParam("actor"),
		Action:  c.QueryParam("action"),
		From:    c.QueryParam("from"),
		To:      c.QueryParam("to"),
		Offset:  offset,
		Limit:   limit,
		SortBy:  c.QueryParam("sortBy"),
		SortDir: c.QueryParam("sortDir"),
	}
}

// Query handles GET /api/audit. With export=csv it behaves like Export
// for the current page.
//
// @Summary      Query the audit trail
// @Tags         audit
// @Produce      json
// @Param        actor   query  string  false  "Actor substring, case-insensitive"
// @Param        action  query  string  false  "Action substring, case-insensitive"
// @Param        from    query  string  false  "Start day (2006-01-02 or RFC 3339)"
// @Param        to      query  string  false  "End day, inclusive"
// @Param        limit   query  int     false  "Page size, default 200, max 1000"
// @Param        offset  query  int     false  "Page offset"
// @Success      200     {object}  ports.AuditPage
// @Failure      401     {object}  map[string]any
// @Failure      403     {object}  map[string]any
// @Router       /api/audit [get]
func (h *AuditHandler) Query(c echo.Context) error {
	q := auditQuery(c)
	if c.QueryParam("export") == "csv" {
		return h.writeCSV(c, q, ports.ExportScopePage)
	}

	page, err := h.audit.Query(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// Export handles GET /api/audit/export?scope=page|all.
//
// @Summary      Export the audit trail as CSV
// @Tags         audit
// @Produce      text/csv
// @Param        scope  query     string  false  "page (default) or all"
// @Success      200    {string}  string
// @Failure      401    {object}  map[string]any
// @Failure      403    {object}  map[string]any
// @Router       /api/audit/export [get]
func (h *AuditHandler) Export(c echo.Context) error {
	scope := c.QueryParam("scope")
	if scope != ports.ExportScopeAll {
		scope = ports.ExportScopePage
	}
	return h.writeCSV(c, auditQuery(c), scope)
}

func (h *AuditHandler) writeCSV(c echo.Context, q ports.AuditQuery, scope string) error {
	data, err := h.audit.ExportCSV(c.Request().Context(), q, scope)
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="audit.csv"`)
	return c.Blob(http.StatusOK, "text/csv", data)
}
