package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/serverpanel/serverpanel/internal/core/domain"
	"github.com/serverpanel/serverpanel/internal/core/ports"
)

// UserService manages panel accounts. Every mutation produces both an
// activity line and an audit entry attributed to the acting user.
type UserService struct {
	store ports.StateStore
	log   zerolog.Logger
}

func NewUserService(store ports.StateStore, log zerolog.Logger) *UserService {
	return &UserService{store: store, log: log}
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.store.ListUsers(ctx)
}

func (s *UserService) Create(ctx context.Context, actor string, nu ports.NewUser) (domain.User, error) {
	if nu.Username == "" || nu.Password == "" {
		return domain.User{}, fmt.Errorf("username and password are required: %w", domain.ErrInvalidOperation)
	}
	role := nu.Role
	if role == "" {
		role = domain.RoleUser
	}
	if !domain.ValidRole(role) {
		return domain.User{}, fmt.Errorf("unknown role %q: %w", nu.Role, domain.ErrInvalidOperation)
	}
	display := nu.DisplayName
	if display == "" {
		display = nu.Username
	}

	hash, err := HashPassword(nu.Password)
	if err != nil {
		return domain.User{}, err
	}
	user := domain.User{
		Username:    nu.Username,
		Password:    hash,
		Role:        role,
		DisplayName: display,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return domain.User{}, err
	}

	s.trail(ctx, actor, "user.created", nu.Username, "User created: "+nu.Username)
	return user, nil
}

func (s *UserService) Update(ctx context.Context, actor, username string, patch ports.UserPatch) error {
	if patch.Role != "" && !domain.ValidRole(patch.Role) {
		return fmt.Errorf("unknown role %q: %w", patch.Role, domain.ErrInvalidOperation)
	}
	if patch.Password != "" {
		hash, err := HashPassword(patch.Password)
		if err != nil {
			return err
		}
		patch.Password = hash
	}
	if err := s.store.UpdateUser(ctx, username, patch); err != nil {
		return err
	}

	s.trail(ctx, actor, "user.updated", username, "User updated: "+username)
	return nil
}

func (s *UserService) Delete(ctx context.Context, actor, username string) error {
	if err := s.store.DeleteUser(ctx, username); err != nil {
		return err
	}

	s.trail(ctx, actor, "user.deleted", username, "User deleted: "+username)
	return nil
}

func (s *UserService) trail(ctx context.Context, actor, action, subject, activity string) {
	if err := s.store.AppendActivity(ctx, activity); err != nil {
		s.log.Warn().Err(err).Str("action", action).Msg("activity append failed")
	}
	if err := s.store.AppendAudit(ctx, action, actor, subject); err != nil {
		s.log.Warn().Err(err).Str("action", action).Msg("audit append failed")
	}
}
