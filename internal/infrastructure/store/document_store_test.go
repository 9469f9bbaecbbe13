package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/serverpanel/serverpanel/internal/core/domain"
	"github.com/serverpanel/serverpanel/internal/core/ports"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) Broadcast(event string, _ any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) count(event string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, e := range n.events {
		if e == event {
			c++
		}
	}
	return c
}

func newTestStore(t *testing.T) (*DocumentStore, *recordingNotifier, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "db.json")
	notifier := &recordingNotifier{}
	return NewDocumentStore(path, notifier, zerolog.Nop()), notifier, path
}

func TestDocumentStore_MissingFileReadsAsDefault(t *testing.T) {
	s, _, _ := newTestStore(t)

	doc, err := s.Document(context.Background())
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	if len(doc.Users) != 0 || len(doc.Activity) != 0 || len(doc.Audit) != 0 {
		t.Fatalf("expected empty default document, got %+v", doc)
	}
	if doc.Tokens == nil {
		t.Fatalf("expected non-nil token map")
	}
}

func TestDocumentStore_CorruptFileReadsAsDefault(t *testing.T) {
	s, _, path := newTestStore(t)

	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	doc, err := s.Document(context.Background())
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	if len(doc.Users) != 0 {
		t.Fatalf("expected defaults for corrupt file, got %+v", doc)
	}
}

func TestDocumentStore_ActivityCap(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()

	total := domain.ActivityCap + 25
	for i := 0; i < total; i++ {
		if err := s.AppendActivity(ctx, fmt.Sprintf("event %d", i)); err != nil {
			t.Fatalf("AppendActivity(%d): %v", i, err)
		}
	}

	activity, err := s.Activity(ctx)
	if err != nil {
		t.Fatalf("Activity: %v", err)
	}
	if len(activity) != domain.ActivityCap {
		t.Fatalf("expected %d entries, got %d", domain.ActivityCap, len(activity))
	}
	if got, want := activity[0].Message, fmt.Sprintf("event %d", total-domain.ActivityCap); got != want {
		t.Fatalf("oldest retained = %q, want %q", got, want)
	}
	if got, want := activity[len(activity)-1].Message, fmt.Sprintf("event %d", total-1); got != want {
		t.Fatalf("newest retained = %q, want %q", got, want)
	}
}

func TestDocumentStore_AuditCapAndBroadcast(t *testing.T) {
	s, notifier, _ := newTestStore(t)
	ctx := context.Background()

	total := domain.AuditCap + 10
	for i := 0; i < total; i++ {
		if err := s.AppendAudit(ctx, "test.action", "alice", fmt.Sprintf("%d", i)); err != nil {
			t.Fatalf("AppendAudit(%d): %v", i, err)
		}
	}

	audit, err := s.Audit(ctx)
	if err != nil {
		t.Fatalf("Audit: %v", err)
	}
	if len(audit) != domain.AuditCap {
		t.Fatalf("expected %d entries, got %d", domain.AuditCap, len(audit))
	}
	if got, want := audit[0].Details, fmt.Sprintf("%d", total-domain.AuditCap); got != want {
		t.Fatalf("oldest retained = %q, want %q", got, want)
	}
	if notifier.count(ports.EventAudit) != total {
		t.Fatalf("expected %d audit broadcasts, got %d", total, notifier.count(ports.EventAudit))
	}
}

func TestDocumentStore_AuditDefaultsActorToSystem(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()

	if err := s.AppendAudit(ctx, "boot", "", ""); err != nil {
		t.Fatalf("AppendAudit: %v", err)
	}
	audit, _ := s.Audit(ctx)
	if len(audit) != 1 || audit[0].Actor != "system" {
		t.Fatalf("expected system actor, got %+v", audit)
	}
}

func TestDocumentStore_SessionLifecycle(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()

	token, err := s.IssueSession(ctx, domain.User{
		Username:    "alice",
		Role:        domain.RoleAdmin,
		DisplayName: "Alice",
	})
	if err != nil {
		t.Fatalf("IssueSession: %v", err)
	}
	if len(token) < 32 || strings.Contains(token, "-") {
		t.Fatalf("unexpected token format %q", token)
	}

	sess, err := s.ResolveSession(ctx, token)
	if err != nil {
		t.Fatalf("ResolveSession: %v", err)
	}
	if sess.Username != "alice" || sess.Role != domain.RoleAdmin || sess.IssuedAt.IsZero() {
		t.Fatalf("unexpected session %+v", sess)
	}

	if _, err := s.ResolveSession(ctx, "bogus"); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestDocumentStore_UserCRUD(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()

	user := domain.User{Username: "bob", Password: "$2a$10$hash", Role: domain.RoleUser, DisplayName: "Bob"}
	if err := s.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if err := s.CreateUser(ctx, user); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("duplicate create: got %v, want ErrAlreadyExists", err)
	}

	if err := s.UpdateUser(ctx, "bob", ports.UserPatch{Role: domain.RoleAdmin}); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	got, err := s.FindUser(ctx, "bob")
	if err != nil {
		t.Fatalf("FindUser: %v", err)
	}
	if got.Role != domain.RoleAdmin || got.DisplayName != "Bob" || got.Password != "$2a$10$hash" {
		t.Fatalf("patch applied wrongly: %+v", got)
	}

	if err := s.UpdateUser(ctx, "ghost", ports.UserPatch{Role: domain.RoleUser}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("update missing: got %v, want ErrNotFound", err)
	}
	if err := s.DeleteUser(ctx, "ghost"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("delete missing: got %v, want ErrNotFound", err)
	}
	if err := s.DeleteUser(ctx, "bob"); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if _, err := s.FindUser(ctx, "bob"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected bob gone, got %v", err)
	}
}

func TestDocumentStore_PersistenceSurvivesReopen(t *testing.T) {
	s, _, path := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateUser(ctx, domain.User{Username: "carol", Role: domain.RoleUser}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	reopened := NewDocumentStore(path, nil, zerolog.Nop())
	if _, err := reopened.FindUser(ctx, "carol"); err != nil {
		t.Fatalf("FindUser after reopen: %v", err)
	}

	// The temp file must never survive a successful persist.
	if _, err := os.Stat(path + ".tmp"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("stale temp file present: %v", err)
	}
}

func TestDocumentStore_MigrateLegacyPasswords(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateUser(ctx, domain.User{Username: "old", Password: "plaintext"}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if err := s.CreateUser(ctx, domain.User{Username: "new", Password: "$2a$10$already"}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	n, err := s.MigrateLegacyPasswords(ctx, func(plain string) (string, error) {
		return "$2a$10$hashed-" + plain, nil
	})
	if err != nil {
		t.Fatalf("MigrateLegacyPasswords: %v", err)
	}
	if n != 1 {
		t.Fatalf("migrated %d users, want 1", n)
	}

	old, _ := s.FindUser(ctx, "old")
	if old.Password != "$2a$10$hashed-plaintext" {
		t.Fatalf("legacy password not rehashed: %q", old.Password)
	}
	unchanged, _ := s.FindUser(ctx, "new")
	if unchanged.Password != "$2a$10$already" {
		t.Fatalf("hashed password must not change: %q", unchanged.Password)
	}
}

func TestDocumentStore_ReplaceMonitored(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()

	if err := s.ReplaceMonitored(ctx, []string{"api", "worker"}); err != nil {
		t.Fatalf("ReplaceMonitored: %v", err)
	}
	doc, _ := s.Document(ctx)
	if len(doc.MonitoredProcesses) != 2 || doc.MonitoredProcesses[0] != "api" {
		t.Fatalf("unexpected monitored list %+v", doc.MonitoredProcesses)
	}

	if err := s.ReplaceMonitored(ctx, nil); err != nil {
		t.Fatalf("ReplaceMonitored(nil): %v", err)
	}
	doc, _ = s.Document(ctx)
	if doc.MonitoredProcesses == nil || len(doc.MonitoredProcesses) != 0 {
		t.Fatalf("nil list should persist as empty, got %+v", doc.MonitoredProcesses)
	}
}

func TestDocumentStore_ConcurrentAppendsLoseNothing(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()

	const writers = 8
	const perWriter = 20
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				if err := s.AppendActivity(ctx, fmt.Sprintf("w%d-%d", w, i)); err != nil {
					t.Errorf("AppendActivity: %v", err)
				}
			}
		}(w)
	}
	wg.Wait()

	activity, err := s.Activity(ctx)
	if err != nil {
		t.Fatalf("Activity: %v", err)
	}
	if len(activity) != writers*perWriter {
		t.Fatalf("lost updates: %d entries, want %d", len(activity), writers*perWriter)
	}
}
