package ports

import (
	"context"

	"github.com/serverpanel/serverpanel/internal/core/domain"
)

// UserPatch carries a partial user update. Empty fields are left
// untouched; a non-empty Password is hashed before it reaches the store.
type UserPatch struct {
	Password    string
	Role        string
	DisplayName string
}

// StateStore owns the single persisted document. Every mutation is a
// full load, in-memory edit, full persist cycle serialized behind a
// single-writer lock, so each operation is atomic with respect to the
// document as a whole.
type StateStore interface {
	// Document returns a snapshot of the whole persisted document.
	Document(ctx context.Context) (domain.Document, error)

	// AppendActivity appends {now, message} and truncates the feed to
	// the most recent domain.ActivityCap entries.
	AppendActivity(ctx context.Context, message string) error

	// AppendAudit appends an audit entry, truncates to domain.AuditCap
	// and broadcasts the new entry on the realtime channel. Broadcast
	// failure never rolls back persistence.
	AppendAudit(ctx context.Context, action, actor, details string) error

	Activity(ctx context.Context) ([]domain.ActivityEntry, error)
	Audit(ctx context.Context) ([]domain.AuditEntry, error)

	// IssueSession generates an unguessable token, stores the session
	// record against it and returns the token.
	IssueSession(ctx context.Context, user domain.User) (string, error)

	// ResolveSession returns the session for token or
	// domain.ErrUnauthenticated when the token is unknown.
	ResolveSession(ctx context.Context, token string) (domain.Session, error)

	ListUsers(ctx context.Context) ([]domain.User, error)

	// FindUser returns domain.ErrNotFound when username is absent.
	FindUser(ctx context.Context, username string) (domain.User, error)

	// CreateUser returns domain.ErrAlreadyExists when the username is taken.
	CreateUser(ctx context.Context, user domain.User) error

	// UpdateUser applies patch to an existing user; the password in the
	// patch must already be hashed. Returns domain.ErrNotFound when absent.
	UpdateUser(ctx context.Context, username string, patch UserPatch) error

	// DeleteUser returns domain.ErrNotFound when username is absent.
	DeleteUser(ctx context.Context, username string) error

	ReplaceMonitored(ctx context.Context, list []string) error

	// MigrateLegacyPasswords rehashes every stored password that is not
	// already a bcrypt hash and reports how many users were rewritten.
	// Run once at startup.
	MigrateLegacyPasswords(ctx context.Context, hash func(plain string) (string, error)) (int, error)
}

// ConfigStore owns the separately persisted panel configuration.
type ConfigStore interface {
	// Config returns the current configuration, substituting defaults
	// when the backing file is missing or unparsable.
	Config(ctx context.Context) domain.Config

	// Merge shallow-merges patch over the stored configuration,
	// persists the result and returns it.
	Merge(ctx context.Context, patch map[string]any) (domain.Config, error)
}
