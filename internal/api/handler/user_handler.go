package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/serverpanel/serverpanel/internal/api/middleware"
	"github.com/serverpanel/serverpanel/internal/core/domain"
	"github.com/serverpanel/serverpanel/internal/core/ports"
)

// UserHandler manages panel accounts. Mutations are admin only; the
// password hash never leaves the server.
type UserHandler struct {
	users ports.UserService
}

func NewUserHandler(users ports.UserService) *UserHandler {
	return &UserHandler{users: users}
}

func actor(c echo.Context) string {
	sess, _ := middleware.Session(c)
	return sess.Username
}

func publicUsers(users []domain.User) []sessionUser {
	out := make([]sessionUser, 0, len(users))
	for _, u := range users {
		out = append(out, sessionUser{
			Username:    u.Username,
			Role:        u.Role,
			DisplayName: u.DisplayName,
		})
	}
	return out
}

// List handles GET /api/users.
//
// @Summary      List user accounts
// @Tags         users
// @Produce      json
// @Success      200  {object}  map[string]any
// @Failure      401  {object}  map[string]any
// @Router       /api/users [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.users.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true, "users": publicUsers(users)})
}

type createUserRequest struct {
	Username    string `json:"username" validate:"required"`
	Password    string `json:"password" validate:"required"`
	Role        string `json:"role" validate:"omitempty,oneof=admin user"`
	DisplayName string `json:"displayName"`
}

// Create handles POST /api/users.
//
// @Summary      Create a user account
// @Tags         users
// @Accept       json
// @Produce      json
// @Success      201  {object}  map[string]any
// @Failure      400  {object}  map[string]any
// @Failure      403  {object}  map[string]any
// @Router       /api/users [post]
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.users.Create(c.Request().Context(), actor(c), ports.NewUser{
		Username:    req.Username,
		Password:    req.Password,
		Role:        req.Role,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]any{
		"ok": true,
		"user": sessionUser{
			Username:    user.Username,
			Role:        user.Role,
			DisplayName: user.DisplayName,
		},
	})
}

type updateUserRequest struct {
	Password    string `json:"password"`
	Role        string `json:"role" validate:"omitempty,oneof=admin user"`
	DisplayName string `json:"displayName"`
}

// Update handles PUT /api/users/:username. Empty fields are left alone.
//
// @Summary      Update a user account
// @Tags         users
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]any
// @Failure      400  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Router       /api/users/{username} [put]
func (h *UserHandler) Update(c echo.Context) error {
	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	err := h.users.Update(c.Request().Context(), actor(c), c.Param("username"), ports.UserPatch{
		Password:    req.Password,
		Role:        req.Role,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true})
}

// Delete handles DELETE /api/users/:username.
//
// @Summary      Delete a user account
// @Tags         users
// @Produce      json
// @Success      200  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Router       /api/users/{username} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	if err := h.users.Delete(c.Request().Context(), actor(c), c.Param("username")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true})
}
