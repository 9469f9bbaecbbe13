// Package store persists the panel's state as plain JSON documents on
// disk: one file for the aggregate document, one for the configuration.
// Every mutation runs a full load, in-memory edit, full persist cycle
// behind a single-writer lock, and persists by writing a temporary file
// and renaming it into place so a crash mid-write never leaves a
// half-written document behind.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/serverpanel/serverpanel/internal/api/metrics"
	"github.com/serverpanel/serverpanel/internal/core/domain"
	"github.com/serverpanel/serverpanel/internal/core/ports"
)

// DocumentStore implements ports.StateStore on a single JSON file.
type DocumentStore struct {
	path     string
	notifier ports.Notifier
	log      zerolog.Logger
	mu       chan struct{} // single-writer token, see lock()
}

// NewDocumentStore creates a store backed by the JSON file at path. The
// file is created on first mutation; a missing or unparsable file reads
// as a fresh default document.
func NewDocumentStore(path string, notifier ports.Notifier, log zerolog.Logger) *DocumentStore {
	if notifier == nil {
		notifier = ports.NopNotifier{}
	}
	mu := make(chan struct{}, 1)
	mu <- struct{}{}
	return &DocumentStore{path: path, notifier: notifier, log: log, mu: mu}
}

// lock acquires the single-writer token, honouring ctx cancellation so a
// request abandoned by its client does not queue a stale mutation.
func (s *DocumentStore) lock(ctx context.Context) error {
	select {
	case <-s.mu:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *DocumentStore) unlock() { s.mu <- struct{}{} }

// load reads and parses the document, substituting defaults on any
// failure. The silent replacement of a corrupt file is deliberate
// observed behavior, not a recovery feature.
func (s *DocumentStore) load() domain.Document {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.log.Warn().Err(err).Str("path", s.path).Msg("document unreadable, using defaults")
		}
		return domain.DefaultDocument()
	}
	var doc domain.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Msg("document unparsable, using defaults")
		return domain.DefaultDocument()
	}
	doc.Normalize()
	return doc
}

func (s *DocumentStore) persist(doc domain.Document) error {
	start := time.Now()
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	metrics.StorePersistDuration.Observe(time.Since(start).Seconds())
	return nil
}

// update runs one serialized load-modify-persist cycle. When fn returns
// an error the document is left untouched on disk.
func (s *DocumentStore) update(ctx context.Context, fn func(doc *domain.Document) error) error {
	if err := s.lock(ctx); err != nil {
		return err
	}
	defer s.unlock()

	doc := s.load()
	if err := fn(&doc); err != nil {
		return err
	}
	return s.persist(doc)
}

// snapshot returns a consistent copy of the document for readers.
func (s *DocumentStore) snapshot(ctx context.Context) (domain.Document, error) {
	if err := s.lock(ctx); err != nil {
		return domain.Document{}, err
	}
	defer s.unlock()
	return s.load(), nil
}

func (s *DocumentStore) Document(ctx context.Context) (domain.Document, error) {
	return s.snapshot(ctx)
}

func (s *DocumentStore) AppendActivity(ctx context.Context, message string) error {
	err := s.update(ctx, func(doc *domain.Document) error {
		doc.Activity = append(doc.Activity, domain.ActivityEntry{
			Timestamp: time.Now().UTC(),
			Message:   message,
		})
		if n := len(doc.Activity); n > domain.ActivityCap {
			doc.Activity = doc.Activity[n-domain.ActivityCap:]
		}
		return nil
	})
	if err == nil {
		metrics.ActivityEntriesTotal.Inc()
	}
	return err
}

func (s *DocumentStore) AppendAudit(ctx context.Context, action, actor, details string) error {
	if actor == "" {
		actor = "system"
	}
	entry := domain.AuditEntry{
		Timestamp: time.Now().UTC(),
		Action:    action,
		Actor:     actor,
		Details:   details,
	}
	err := s.update(ctx, func(doc *domain.Document) error {
		doc.Audit = append(doc.Audit, entry)
		if n := len(doc.Audit); n > domain.AuditCap {
			doc.Audit = doc.Audit[n-domain.AuditCap:]
		}
		return nil
	})
	if err != nil {
		return err
	}
	metrics.AuditEntriesTotal.WithLabelValues(action).Inc()
	// Best effort: a failed broadcast never rolls back persistence.
	s.notifier.Broadcast(ports.EventAudit, entry)
	return nil
}

func (s *DocumentStore) Activity(ctx context.Context) ([]domain.ActivityEntry, error) {
	doc, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Activity, nil
}

func (s *DocumentStore) Audit(ctx context.Context) ([]domain.AuditEntry, error) {
	doc, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Audit, nil
}

// newToken returns an unguessable opaque session token. uuid.NewString
// draws from crypto/rand; the dashes are stripped for compactness.
func newToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func (s *DocumentStore) IssueSession(ctx context.Context, user domain.User) (string, error) {
	var token string
	err := s.update(ctx, func(doc *domain.Document) error {
		token = newToken()
		for _, exists := doc.Tokens[token]; exists; _, exists = doc.Tokens[token] {
			token = newToken()
		}
		doc.Tokens[token] = domain.Session{
			Username:    user.Username,
			Role:        user.Role,
			DisplayName: user.DisplayName,
			IssuedAt:    time.Now().UTC(),
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return token, nil
}

func (s *DocumentStore) ResolveSession(ctx context.Context, token string) (domain.Session, error) {
	doc, err := s.snapshot(ctx)
	if err != nil {
		return domain.Session{}, err
	}
	sess, ok := doc.Tokens[token]
	if !ok {
		return domain.Session{}, domain.ErrUnauthenticated
	}
	return sess, nil
}

func (s *DocumentStore) ListUsers(ctx context.Context) ([]domain.User, error) {
	doc, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Users, nil
}

func (s *DocumentStore) FindUser(ctx context.Context, username string) (domain.User, error) {
	doc, err := s.snapshot(ctx)
	if err != nil {
		return domain.User{}, err
	}
	for _, u := range doc.Users {
		if u.Username == username {
			return u, nil
		}
	}
	return domain.User{}, fmt.Errorf("user %q: %w", username, domain.ErrNotFound)
}

func (s *DocumentStore) CreateUser(ctx context.Context, user domain.User) error {
	return s.update(ctx, func(doc *domain.Document) error {
		for _, u := range doc.Users {
			if u.Username == user.Username {
				return fmt.Errorf("user %q: %w", user.Username, domain.ErrAlreadyExists)
			}
		}
		doc.Users = append(doc.Users, user)
		return nil
	})
}

func (s *DocumentStore) UpdateUser(ctx context.Context, username string, patch ports.UserPatch) error {
	return s.update(ctx, func(doc *domain.Document) error {
		for i, u := range doc.Users {
			if u.Username != username {
				continue
			}
			if patch.Password != "" {
				u.Password = patch.Password
			}
			if patch.Role != "" {
				u.Role = patch.Role
			}
			if patch.DisplayName != "" {
				u.DisplayName = patch.DisplayName
			}
			doc.Users[i] = u
			return nil
		}
		return fmt.Errorf("user %q: %w", username, domain.ErrNotFound)
	})
}

func (s *DocumentStore) DeleteUser(ctx context.Context, username string) error {
	return s.update(ctx, func(doc *domain.Document) error {
		kept := doc.Users[:0]
		for _, u := range doc.Users {
			if u.Username != username {
				kept = append(kept, u)
			}
		}
		if len(kept) == len(doc.Users) {
			return fmt.Errorf("user %q: %w", username, domain.ErrNotFound)
		}
		doc.Users = kept
		return nil
	})
}

func (s *DocumentStore) ReplaceMonitored(ctx context.Context, list []string) error {
	if list == nil {
		list = []string{}
	}
	return s.update(ctx, func(doc *domain.Document) error {
		doc.MonitoredProcesses = list
		return nil
	})
}

// MigrateLegacyPasswords rehashes any stored password that does not look
// like a bcrypt hash ("$2…" prefix). Runs once at startup; rewrites the
// document only when something actually changed.
func (s *DocumentStore) MigrateLegacyPasswords(ctx context.Context, hash func(plain string) (string, error)) (int, error) {
	migrated := 0
	err := s.update(ctx, func(doc *domain.Document) error {
		for i, u := range doc.Users {
			if u.Password == "" || strings.HasPrefix(u.Password, "$2") {
				continue
			}
			hashed, err := hash(u.Password)
			if err != nil {
				return fmt.Errorf("hash password for %q: %w", u.Username, err)
			}
			doc.Users[i].Password = hashed
			migrated++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return migrated, nil
}
