package ports

import (
	"context"

	"github.com/serverpanel/serverpanel/internal/core/domain"
)

// NewUser carries the fields required to create an account. The password
// arrives in plaintext and is hashed by the service before storage.
type NewUser struct {
	Username    string
	Password    string
	Role        string
	DisplayName string
}

// UserService manages panel accounts. Mutations record both an activity
// line and an audit entry attributed to actor.
type UserService interface {
	List(ctx context.Context) ([]domain.User, error)

	// Create returns the stored user, password already hashed.
	Create(ctx context.Context, actor string, user NewUser) (domain.User, error)
	Update(ctx context.Context, actor, username string, patch UserPatch) error
	Delete(ctx context.Context, actor, username string) error
}
