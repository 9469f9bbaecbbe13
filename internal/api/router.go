package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/serverpanel/serverpanel/internal/api/handler"
	"github.com/serverpanel/serverpanel/internal/api/middleware"
	"github.com/serverpanel/serverpanel/internal/core/domain"
	"github.com/serverpanel/serverpanel/internal/core/ports"
	"github.com/serverpanel/serverpanel/internal/core/service"
	"github.com/serverpanel/serverpanel/internal/infrastructure/notify"
)

// Deps carries every collaborator the router wires into handlers.
type Deps struct {
	Log       zerolog.Logger
	Auth      ports.AuthService
	Files     ports.FileService
	Audit     ports.AuditService
	Users     ports.UserService
	Panel     *service.PanelService
	Processes *service.ProcessService
	Hub       *notify.Hub
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("serverpanel"))

	authed := middleware.Auth(d.Auth)
	optional := middleware.OptionalAuth(d.Auth)
	adminOnly := middleware.RBAC(domain.RoleAdmin)
	anyRole := middleware.RBAC(domain.RoleAdmin, domain.RoleUser)

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Auth)
	fileHandler := handler.NewFileHandler(d.Files)
	auditHandler := handler.NewAuditHandler(d.Audit)
	userHandler := handler.NewUserHandler(d.Users)
	panelHandler := handler.NewPanelHandler(d.Panel)
	processHandler := handler.NewProcessHandler(d.Processes)
	eventsHandler := handler.NewEventsHandler(d.Hub, d.Log)
	healthHandler := handler.NewHealthHandler()

	// --- Auth ---
	e.POST("/api/login", authHandler.Login)
	e.GET("/api/whoami", authHandler.Whoami, authed)

	// --- Configuration and features ---
	e.GET("/api/config", panelHandler.GetConfig)
	e.POST("/api/config", panelHandler.UpdateConfig, optional)
	e.GET("/api/features", panelHandler.GetFeatures)
	e.POST("/api/features", panelHandler.UpdateFeatures, authed, anyRole)

	// --- File manager ---
	e.GET("/api/files", fileHandler.List)
	e.GET("/api/files/read", fileHandler.Read)
	e.POST("/api/files/write", fileHandler.Write)
	e.POST("/api/files/create", fileHandler.Create)
	e.POST("/api/files/delete", fileHandler.Delete)
	e.POST("/api/files/rename", fileHandler.Rename)
	e.POST("/api/files/upload", fileHandler.Upload)
	e.GET("/api/files/download", fileHandler.Download)

	// --- Audit (admin only) ---
	e.GET("/api/audit", auditHandler.Query, authed, adminOnly)
	e.GET("/api/audit/export", auditHandler.Export, authed, adminOnly)

	// --- Users ---
	e.GET("/api/users", userHandler.List, authed)
	e.POST("/api/users", userHandler.Create, authed, adminOnly)
	e.PUT("/api/users/:username", userHandler.Update, authed, adminOnly)
	e.DELETE("/api/users/:username", userHandler.Delete, authed, adminOnly)

	// --- Dashboard ---
	e.GET("/api/activity", panelHandler.GetActivity)
	e.POST("/api/activity", panelHandler.PostActivity, authed, anyRole)
	e.GET("/api/metrics", panelHandler.GetMetrics)
	e.GET("/api/notifications", panelHandler.GetNotifications, optional)
	e.GET("/api/monitoredProcesses", panelHandler.GetMonitored, authed)
	e.POST("/api/monitoredProcesses", panelHandler.UpdateMonitored, authed, anyRole)

	// --- Process manager ---
	e.GET("/api/processes", processHandler.List, authed)
	e.POST("/api/processes/:action", processHandler.Control, authed, anyRole)

	// --- Realtime ---
	e.GET("/api/events", eventsHandler.Stream, authed)

	// --- Probes ---
	e.GET("/health", healthHandler.Liveness)
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
