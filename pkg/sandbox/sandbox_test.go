package sandbox

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newSandbox(t *testing.T) (*Sandbox, string) {
	t.Helper()
	root := t.TempDir()
	s, err := New(root)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s, s.Root()
}

func TestResolve_ContainedPaths(t *testing.T) {
	s, root := newSandbox(t)

	for _, rel := range []string{"", ".", "a", "a/b/c.txt", "a/./b", "a/b/../c"} {
		abs, err := s.Resolve(rel)
		if err != nil {
			t.Fatalf("Resolve(%q): %v", rel, err)
		}
		if abs != root && !filepath.IsAbs(abs) {
			t.Fatalf("Resolve(%q) returned non-absolute %q", rel, abs)
		}
		if rel2 := s.Rel(abs); filepath.IsAbs(rel2) {
			t.Fatalf("Rel(%q) = %q, want root-relative", abs, rel2)
		}
	}
}

func TestResolve_RejectsEscapes(t *testing.T) {
	s, _ := newSandbox(t)

	escapes := []string{
		"..",
		"../x",
		"a/../../x",
		"../../../../etc/passwd",
		"/etc/passwd",
		"/",
		"a/b/../../../x",
	}
	for _, rel := range escapes {
		if _, err := s.Resolve(rel); !errors.Is(err, ErrEscapesRoot) {
			t.Fatalf("Resolve(%q): got %v, want ErrEscapesRoot", rel, err)
		}
	}
}

func TestResolve_DotDotWithinRoot(t *testing.T) {
	s, root := newSandbox(t)

	// Parent segments that never leave the root are fine.
	abs, err := s.Resolve("a/b/../b/file.txt")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := filepath.Join(root, "a", "b", "file.txt")
	if abs != want {
		t.Fatalf("Resolve = %q, want %q", abs, want)
	}
}

func TestResolve_SymlinkEscape(t *testing.T) {
	outside := t.TempDir()
	s, root := newSandbox(t)

	link := filepath.Join(root, "leak")
	if err := os.Symlink(outside, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	if _, err := s.Resolve("leak"); !errors.Is(err, ErrEscapesRoot) {
		t.Fatalf("Resolve(leak): got %v, want ErrEscapesRoot", err)
	}
	if _, err := s.Resolve("leak/inner.txt"); !errors.Is(err, ErrEscapesRoot) {
		t.Fatalf("Resolve(leak/inner.txt): got %v, want ErrEscapesRoot", err)
	}
}

func TestResolve_SymlinkWithinRoot(t *testing.T) {
	s, root := newSandbox(t)

	if err := os.MkdirAll(filepath.Join(root, "real"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.Symlink(filepath.Join(root, "real"), filepath.Join(root, "alias")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	if _, err := s.Resolve("alias/file.txt"); err != nil {
		t.Fatalf("Resolve(alias/file.txt): %v", err)
	}
}

func TestNew_DefaultsToWorkingDirectory(t *testing.T) {
	s, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !filepath.IsAbs(s.Root()) {
		t.Fatalf("Root() = %q, want absolute", s.Root())
	}
}
