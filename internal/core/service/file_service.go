package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"

	"github.com/serverpanel/serverpanel/internal/api/metrics"
	"github.com/serverpanel/serverpanel/internal/core/domain"
	"github.com/serverpanel/serverpanel/internal/core/ports"
	"github.com/serverpanel/serverpanel/pkg/sandbox"
)

// FileService confines every filesystem operation to a sandbox root and
// records successful mutations in the activity log.
type FileService struct {
	box   *sandbox.Sandbox
	store ports.StateStore
	log   zerolog.Logger
}

func NewFileService(box *sandbox.Sandbox, store ports.StateStore, log zerolog.Logger) *FileService {
	return &FileService{box: box, store: store, log: log}
}

func (s *FileService) resolve(rel string) (string, error) {
	abs, err := s.box.Resolve(rel)
	if err != nil {
		if errors.Is(err, sandbox.ErrEscapesRoot) {
			return "", fmt.Errorf("%q: %w", rel, domain.ErrInvalidPath)
		}
		return "", err
	}
	return abs, nil
}

func (s *FileService) record(ctx context.Context, msg string) {
	if err := s.store.AppendActivity(ctx, msg); err != nil {
		s.log.Warn().Err(err).Str("msg", msg).Msg("activity append failed")
	}
}

func countOp(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.FileOperationsTotal.WithLabelValues(op, result).Inc()
}

// List returns the direct children of a directory, folders first, each
// group sorted by name.
func (s *FileService) List(ctx context.Context, rel string) (entries []ports.FileEntry, err error) {
	defer func() { countOp("list", err) }()

	abs, err := s.resolve(rel)
	if err != nil {
		return nil, err
	}
	dirents, err := os.ReadDir(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%q: %w", rel, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("read dir %q: %w", rel, err)
	}

	entries = make([]ports.FileEntry, 0, len(dirents))
	for _, d := range dirents {
		var size int64
		if !d.IsDir() {
			if info, ierr := d.Info(); ierr == nil {
				size = info.Size()
			}
		}
		entries = append(entries, ports.FileEntry{Name: d.Name(), IsDir: d.IsDir(), Size: size})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].IsDir != entries[j].IsDir {
			return entries[i].IsDir
		}
		return entries[i].Name < entries[j].Name
	})
	return entries, nil
}

// Read returns the full contents of a file.
func (s *FileService) Read(ctx context.Context, rel string) (data []byte, err error) {
	defer func() { countOp("read", err) }()

	abs, err := s.resolve(rel)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%q: %w", rel, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("stat %q: %w", rel, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%q is a directory: %w", rel, domain.ErrInvalidOperation)
	}
	data, err = os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", rel, err)
	}
	return data, nil
}

// Write replaces the contents of a file, creating it if absent.
func (s *FileService) Write(ctx context.Context, rel string, content []byte) (err error) {
	defer func() { countOp("write", err) }()

	abs, err := s.resolve(rel)
	if err != nil {
		return err
	}
	if info, serr := os.Stat(abs); serr == nil && info.IsDir() {
		return fmt.Errorf("%q is a directory: %w", rel, domain.ErrInvalidOperation)
	}
	if err = os.WriteFile(abs, content, 0o644); err != nil {
		return fmt.Errorf("write %q: %w", rel, err)
	}
	s.record(ctx, "Wrote file: "+rel)
	return nil
}

// Create makes a new empty file or folder named name inside rel.
func (s *FileService) Create(ctx context.Context, rel, name, kind string) (created string, err error) {
	defer func() { countOp("create", err) }()

	if kind != ports.KindFile && kind != ports.KindFolder {
		return "", fmt.Errorf("unknown kind %q: %w", kind, domain.ErrInvalidOperation)
	}
	if name == "" || name != filepath.Base(name) {
		return "", fmt.Errorf("invalid name %q: %w", name, domain.ErrInvalidPath)
	}

	abs, err := s.resolve(filepath.Join(rel, name))
	if err != nil {
		return "", err
	}
	if _, serr := os.Lstat(abs); serr == nil {
		return "", fmt.Errorf("%q: %w", name, domain.ErrAlreadyExists)
	}

	if kind == ports.KindFolder {
		err = os.MkdirAll(abs, 0o755)
	} else {
		err = os.WriteFile(abs, nil, 0o644)
	}
	if err != nil {
		return "", fmt.Errorf("create %s %q: %w", kind, name, err)
	}

	created = s.box.Rel(abs)
	s.record(ctx, fmt.Sprintf("Created %s: %s", kind, created))
	return created, nil
}

// Delete removes a file or directory tree.
func (s *FileService) Delete(ctx context.Context, rel string) (err error) {
	defer func() { countOp("delete", err) }()

	abs, err := s.resolve(rel)
	if err != nil {
		return err
	}
	if _, serr := os.Lstat(abs); serr != nil {
		if os.IsNotExist(serr) {
			return fmt.Errorf("%q: %w", rel, domain.ErrNotFound)
		}
		return fmt.Errorf("stat %q: %w", rel, serr)
	}
	if err = os.RemoveAll(abs); err != nil {
		return fmt.Errorf("delete %q: %w", rel, err)
	}
	s.record(ctx, "Deleted: "+rel)
	return nil
}

// Rename moves an entry to a new path inside the sandbox.
func (s *FileService) Rename(ctx context.Context, oldRel, newRel string) (err error) {
	defer func() { countOp("rename", err) }()

	oldAbs, err := s.resolve(oldRel)
	if err != nil {
		return err
	}
	newAbs, err := s.resolve(newRel)
	if err != nil {
		return err
	}
	if _, serr := os.Lstat(oldAbs); serr != nil {
		if os.IsNotExist(serr) {
			return fmt.Errorf("%q: %w", oldRel, domain.ErrNotFound)
		}
		return fmt.Errorf("stat %q: %w", oldRel, serr)
	}
	if err = os.Rename(oldAbs, newAbs); err != nil {
		return fmt.Errorf("rename %q to %q: %w", oldRel, newRel, err)
	}
	s.record(ctx, fmt.Sprintf("Renamed: %s -> %s", oldRel, newRel))
	return nil
}

// Upload stores an incoming stream as a file inside dirRel. Only the
// base name of the client-supplied filename is used.
func (s *FileService) Upload(ctx context.Context, dirRel, filename string, content io.Reader) (err error) {
	defer func() { countOp("upload", err) }()

	base := filepath.Base(filename)
	if base == "" || base == "." || base == string(filepath.Separator) {
		return fmt.Errorf("invalid filename %q: %w", filename, domain.ErrInvalidOperation)
	}

	dirAbs, err := s.resolve(dirRel)
	if err != nil {
		return err
	}
	if err = os.MkdirAll(dirAbs, 0o755); err != nil {
		return fmt.Errorf("prepare upload dir %q: %w", dirRel, err)
	}

	abs, err := s.resolve(filepath.Join(dirRel, base))
	if err != nil {
		return err
	}
	f, err := os.Create(abs)
	if err != nil {
		return fmt.Errorf("create upload %q: %w", base, err)
	}
	if _, err = io.Copy(f, content); err != nil {
		f.Close()
		os.Remove(abs)
		return fmt.Errorf("store upload %q: %w", base, err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("close upload %q: %w", base, err)
	}

	s.record(ctx, "Uploaded: "+s.box.Rel(abs))
	return nil
}

// Download opens a file for streaming to a client. Directories cannot
// be downloaded.
func (s *FileService) Download(ctx context.Context, rel string) (rc io.ReadCloser, entry ports.FileEntry, err error) {
	defer func() { countOp("download", err) }()

	abs, err := s.resolve(rel)
	if err != nil {
		return nil, ports.FileEntry{}, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ports.FileEntry{}, fmt.Errorf("%q: %w", rel, domain.ErrNotFound)
		}
		return nil, ports.FileEntry{}, fmt.Errorf("stat %q: %w", rel, err)
	}
	if info.IsDir() {
		return nil, ports.FileEntry{}, fmt.Errorf("%q is a directory: %w", rel, domain.ErrInvalidOperation)
	}
	f, err := os.Open(abs)
	if err != nil {
		return nil, ports.FileEntry{}, fmt.Errorf("open %q: %w", rel, err)
	}
	return f, ports.FileEntry{Name: info.Name(), IsDir: false, Size: info.Size()}, nil
}
