package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/serverpanel/serverpanel/internal/core/domain"
	"github.com/serverpanel/serverpanel/internal/core/ports"
)

// sessionKey is the echo context key the session is stored under.
const sessionKey = "session"

// token extracts the opaque session token from the X-Auth-Token header,
// falling back to the token query parameter for browser downloads and
// the event stream, where custom headers cannot be set.
func token(c echo.Context) string {
	if t := c.Request().Header.Get("X-Auth-Token"); t != "" {
		return t
	}
	return c.QueryParam("token")
}

// Auth resolves the request token to a session and injects it into the
// context. Missing or unknown tokens fail the request.
func Auth(auth ports.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess, err := auth.Authenticate(c.Request().Context(), token(c))
			if err != nil {
				return err
			}
			c.Set(sessionKey, sess)
			return next(c)
		}
	}
}

// OptionalAuth injects a session when a valid token is present and lets
// the request through anonymously otherwise.
func OptionalAuth(auth ports.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if t := token(c); t != "" {
				if sess, err := auth.Authenticate(c.Request().Context(), t); err == nil {
					c.Set(sessionKey, sess)
				}
			}
			return next(c)
		}
	}
}

// RBAC allows the request through only when the session role is in the
// allowlist. Must run after Auth.
func RBAC(allowedRoles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess, ok := c.Get(sessionKey).(domain.Session)
			if !ok {
				return domain.ErrUnauthenticated
			}
			if _, ok := allowed[sess.Role]; !ok {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}

// Session returns the session injected by Auth or OptionalAuth.
func Session(c echo.Context) (domain.Session, bool) {
	sess, ok := c.Get(sessionKey).(domain.Session)
	return sess, ok
}
