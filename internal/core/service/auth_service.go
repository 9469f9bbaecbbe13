package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/serverpanel/serverpanel/internal/api/metrics"
	"github.com/serverpanel/serverpanel/internal/core/domain"
	"github.com/serverpanel/serverpanel/internal/core/ports"
)

// bcryptCost is the fixed work factor for password hashing, matching
// the hashes already present in migrated documents.
const bcryptCost = 10

// HashPassword hashes a plaintext password for storage.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// AuthService implements login and token resolution on top of the
// document store's session map.
type AuthService struct {
	store ports.StateStore
	log   zerolog.Logger
}

func NewAuthService(store ports.StateStore, log zerolog.Logger) *AuthService {
	return &AuthService{store: store, log: log}
}

// Login verifies credentials and issues a session. Every failure mode
// collapses to ErrUnauthenticated so responses never reveal whether the
// username or the password was wrong.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, domain.Session, error) {
	if username == "" || password == "" {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return "", domain.Session{}, domain.ErrUnauthenticated
	}

	user, err := s.store.FindUser(ctx, username)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.Session{}, domain.ErrUnauthenticated
		}
		return "", domain.Session{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return "", domain.Session{}, domain.ErrUnauthenticated
	}

	token, err := s.store.IssueSession(ctx, user)
	if err != nil {
		return "", domain.Session{}, fmt.Errorf("issue session: %w", err)
	}
	sess, err := s.store.ResolveSession(ctx, token)
	if err != nil {
		return "", domain.Session{}, fmt.Errorf("resolve issued session: %w", err)
	}

	if err := s.store.AppendActivity(ctx, fmt.Sprintf("User %s logged in", user.Username)); err != nil {
		s.log.Warn().Err(err).Str("username", user.Username).Msg("login activity append failed")
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	s.log.Info().Str("username", user.Username).Str("role", user.Role).Msg("login")
	return token, sess, nil
}

// Authenticate resolves a request token to its session record.
func (s *AuthService) Authenticate(ctx context.Context, token string) (domain.Session, error) {
	if token == "" {
		return domain.Session{}, domain.ErrUnauthenticated
	}
	return s.store.ResolveSession(ctx, token)
}
