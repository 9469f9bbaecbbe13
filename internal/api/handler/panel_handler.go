package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/serverpanel/serverpanel/internal/api/middleware"
	"github.com/serverpanel/serverpanel/internal/core/domain"
	"github.com/serverpanel/serverpanel/internal/core/service"
)

// PanelHandler covers the dashboard surface: configuration, features,
// activity, monitored processes, host metrics and notifications.
type PanelHandler struct {
	panel *service.PanelService
}

func NewPanelHandler(panel *service.PanelService) *PanelHandler {
	return &PanelHandler{panel: panel}
}

// GetConfig handles GET /api/config.
//
// @Summary      Read the panel configuration
// @Tags         config
// @Produce      json
// @Success      200  {object}  map[string]any
// @Router       /api/config [get]
func (h *PanelHandler) GetConfig(c echo.Context) error {
	return c.JSON(http.StatusOK, h.panel.Config(c.Request().Context()))
}

// UpdateConfig handles POST /api/config with a shallow-merge patch.
//
// @Summary      Update the panel configuration
// @Tags         config
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]any
// @Failure      400  {object}  map[string]any
// @Router       /api/config [post]
func (h *PanelHandler) UpdateConfig(c echo.Context) error {
	var patch map[string]any
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	merged, err := h.panel.UpdateConfig(c.Request().Context(), actor(c), patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true, "config": merged})
}

// GetFeatures handles GET /api/features.
//
// @Summary      Read enabled features
// @Tags         config
// @Produce      json
// @Success      200  {object}  map[string]any
// @Router       /api/features [get]
func (h *PanelHandler) GetFeatures(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"ok":       true,
		"features": h.panel.Features(c.Request().Context()),
	})
}

type featuresRequest struct {
	Features []string `json:"features"`
}

// UpdateFeatures handles POST /api/features, replacing the whole list.
//
// @Summary      Replace enabled features
// @Tags         config
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]any
// @Failure      400  {object}  map[string]any
// @Router       /api/features [post]
func (h *PanelHandler) UpdateFeatures(c echo.Context) error {
	var req featuresRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	list, err := h.panel.ReplaceFeatures(c.Request().Context(), req.Features)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true, "features": list})
}

// GetActivity handles GET /api/activity, newest first, capped at the
// configured dashboard size.
//
// @Summary      Recent activity
// @Tags         activity
// @Produce      json
// @Success      200  {object}  map[string]any
// @Router       /api/activity [get]
func (h *PanelHandler) GetActivity(c echo.Context) error {
	entries, err := h.panel.RecentActivity(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true, "activity": entries})
}

type activityRequest struct {
	Message string `json:"msg" validate:"required"`
}

// PostActivity handles POST /api/activity for manual entries.
//
// @Summary      Record an activity entry
// @Tags         activity
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]any
// @Failure      400  {object}  map[string]any
// @Router       /api/activity [post]
func (h *PanelHandler) PostActivity(c echo.Context) error {
	var req activityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.panel.RecordActivity(c.Request().Context(), req.Message); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true})
}

// GetMetrics handles GET /api/metrics with a live host snapshot.
//
// @Summary      Host metrics snapshot
// @Tags         metrics
// @Produce      json
// @Success      200  {object}  ports.MetricsSnapshot
// @Router       /api/metrics [get]
func (h *PanelHandler) GetMetrics(c echo.Context) error {
	return c.JSON(http.StatusOK, h.panel.Metrics(c.Request().Context()))
}

// GetMonitored handles GET /api/monitoredProcesses.
//
// @Summary      Monitored process names
// @Tags         processes
// @Produce      json
// @Success      200  {object}  map[string]any
// @Router       /api/monitoredProcesses [get]
func (h *PanelHandler) GetMonitored(c echo.Context) error {
	list, err := h.panel.Monitored(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true, "monitored": list})
}

type monitoredRequest struct {
	Monitored []string `json:"monitored"`
}

// UpdateMonitored handles POST /api/monitoredProcesses.
//
// @Summary      Replace monitored process names
// @Tags         processes
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]any
// @Failure      400  {object}  map[string]any
// @Router       /api/monitoredProcesses [post]
func (h *PanelHandler) UpdateMonitored(c echo.Context) error {
	var req monitoredRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	if err := h.panel.ReplaceMonitored(c.Request().Context(), req.Monitored); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true})
}

// GetNotifications handles GET /api/notifications, shaped by role.
//
// @Summary      Dashboard notifications
// @Tags         notifications
// @Produce      json
// @Success      200  {object}  service.Notifications
// @Router       /api/notifications [get]
func (h *PanelHandler) GetNotifications(c echo.Context) error {
	var sess *domain.Session
	if s, ok := middleware.Session(c); ok {
		sess = &s
	}

	payload, err := h.panel.NotificationsFor(c.Request().Context(), sess)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, payload)
}
