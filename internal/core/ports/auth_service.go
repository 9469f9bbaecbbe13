package ports

import (
	"context"

	"github.com/serverpanel/serverpanel/internal/core/domain"
)

// AuthService issues and validates panel sessions.
type AuthService interface {
	// Login verifies the credentials and issues a session token. It
	// returns domain.ErrUnauthenticated on any mismatch without leaking
	// which part of the credentials was wrong.
	Login(ctx context.Context, username, password string) (string, domain.Session, error)

	// Authenticate resolves a token carried on a request. Empty or
	// unknown tokens fail with domain.ErrUnauthenticated.
	Authenticate(ctx context.Context, token string) (domain.Session, error)
}
