// Package sandbox resolves relative paths against a fixed root directory
// and rejects every resolution that would escape it, whether through
// parent-directory segments, absolute overrides or symlinks. It knows
// nothing about the rest of the panel; callers translate ErrEscapesRoot
// into their own error taxonomy.
package sandbox

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// ErrEscapesRoot is returned for any path whose resolution would land
// outside the sandbox root.
var ErrEscapesRoot = errors.New("path escapes sandbox root")

// Sandbox validates paths against one root fixed at construction time.
type Sandbox struct {
	root string
}

// New fixes the sandbox root. An absolute path is used as-is, a relative
// one is resolved against the working directory, and the empty string
// means the working directory itself. Symlinks in the root are resolved
// up front so containment checks compare real paths.
func New(root string) (*Sandbox, error) {
	if root == "" {
		root = "."
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("sandbox root %q: %w", root, err)
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		abs = real
	}
	return &Sandbox{root: abs}, nil
}

// Root returns the absolute sandbox root.
func (s *Sandbox) Root() string { return s.root }

// Resolve joins rel onto the root and returns the absolute result. The
// lexical containment check runs before any filesystem access; the
// symlink check then verifies that the deepest existing ancestor of the
// result still lives under the root.
func (s *Sandbox) Resolve(rel string) (string, error) {
	if filepath.IsAbs(rel) {
		return "", fmt.Errorf("resolve %q: %w", rel, ErrEscapesRoot)
	}
	joined := filepath.Join(s.root, rel)
	if !s.contains(joined) {
		return "", fmt.Errorf("resolve %q: %w", rel, ErrEscapesRoot)
	}
	if err := s.checkSymlinks(joined); err != nil {
		return "", fmt.Errorf("resolve %q: %w", rel, err)
	}
	return joined, nil
}

// Rel maps an already resolved absolute path back to its root-relative
// form, for display and activity messages.
func (s *Sandbox) Rel(abs string) string {
	rel, err := filepath.Rel(s.root, abs)
	if err != nil {
		return abs
	}
	return rel
}

func (s *Sandbox) contains(abs string) bool {
	return abs == s.root || strings.HasPrefix(abs, s.root+string(filepath.Separator))
}

// checkSymlinks walks up from target to the deepest existing path
// component and verifies its real path is still contained. Components
// that do not exist yet cannot be symlinks and are skipped.
func (s *Sandbox) checkSymlinks(target string) error {
	dir := target
	for {
		real, err := filepath.EvalSymlinks(dir)
		if err == nil {
			if real != s.root && !strings.HasPrefix(real, s.root+string(filepath.Separator)) {
				return ErrEscapesRoot
			}
			return nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil
		}
		dir = parent
	}
}
