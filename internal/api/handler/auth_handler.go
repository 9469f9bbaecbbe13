package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/serverpanel/serverpanel/internal/api/middleware"
	"github.com/serverpanel/serverpanel/internal/core/domain"
	"github.com/serverpanel/serverpanel/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type sessionUser struct {
	Username    string `json:"username"`
	Role        string `json:"role"`
	DisplayName string `json:"displayName"`
}

type loginResponse struct {
	OK    bool        `json:"ok"`
	Token string      `json:"token"`
	User  sessionUser `json:"user"`
}

func toSessionUser(sess domain.Session) sessionUser {
	return sessionUser{
		Username:    sess.Username,
		Role:        sess.Role,
		DisplayName: sess.DisplayName,
	}
}

// Login authenticates a user and returns an opaque session token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  map[string]any
// @Failure      401   {object}  map[string]any
// @Router       /api/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token, sess, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, loginResponse{
		OK:    true,
		Token: token,
		User:  toSessionUser(sess),
	})
}

// Whoami returns the session behind the presented token.
//
// @Summary      Current session
// @Tags         auth
// @Produce      json
// @Success      200  {object}  map[string]any
// @Failure      401  {object}  map[string]any
// @Router       /api/whoami [get]
func (h *AuthHandler) Whoami(c echo.Context) error {
	sess, ok := middleware.Session(c)
	if !ok {
		return domain.ErrUnauthenticated
	}
	return c.JSON(http.StatusOK, map[string]any{
		"ok":   true,
		"user": toSessionUser(sess),
	})
}
