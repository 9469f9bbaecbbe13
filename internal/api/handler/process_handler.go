package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/serverpanel/serverpanel/internal/core/service"
)

// ProcessHandler exposes the external process-manager integration.
type ProcessHandler struct {
	processes *service.ProcessService
}

func NewProcessHandler(processes *service.ProcessService) *ProcessHandler {
	return &ProcessHandler{processes: processes}
}

// List handles GET /api/processes.
//
// @Summary      Managed processes
// @Tags         processes
// @Produce      json
// @Success      200  {object}  map[string]any
// @Failure      400  {object}  map[string]any
// @Router       /api/processes [get]
func (h *ProcessHandler) List(c echo.Context) error {
	procs, err := h.processes.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true, "processes": procs})
}

type controlRequest struct {
	ID string `json:"id" validate:"required"`
}

// Control handles POST /api/processes/:action.
//
// @Summary      Control a managed process
// @Tags         processes
// @Accept       json
// @Produce      json
// @Param        action  path  string  true  "start, stop, restart or delete"
// @Success      200  {object}  map[string]any
// @Failure      400  {object}  map[string]any
// @Router       /api/processes/{action} [post]
func (h *ProcessHandler) Control(c echo.Context) error {
	var req controlRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.processes.Control(c.Request().Context(), c.Param("action"), req.ID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true})
}
