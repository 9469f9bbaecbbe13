package ports

import (
	"context"
	"io"
)

// File kinds accepted by FileService.Create.
const (
	KindFile   = "file"
	KindFolder = "folder"
)

// FileEntry is a single directory listing row.
type FileEntry struct {
	Name  string `json:"name"`
	IsDir bool   `json:"isDir"`
	Size  int64  `json:"size"`
}

// FileService performs sandboxed file operations under a fixed root.
// Every path is relative to that root; any resolution escaping it fails
// with domain.ErrInvalidPath. Each successful mutation appends exactly
// one activity entry describing the action.
type FileService interface {
	// List returns directory entries ordered directories first, each
	// group alphabetical by name.
	List(ctx context.Context, rel string) ([]FileEntry, error)

	// Read returns file contents; domain.ErrInvalidOperation when rel
	// names a directory.
	Read(ctx context.Context, rel string) ([]byte, error)

	// Write creates or overwrites a file. Parent directories must exist.
	Write(ctx context.Context, rel string, content []byte) error

	// Create makes an empty file or directory named name inside rel and
	// returns the created path relative to the root. Directories are
	// created recursively; files require an existing parent.
	Create(ctx context.Context, rel, name, kind string) (string, error)

	// Delete removes a file, or a directory and its contents.
	Delete(ctx context.Context, rel string) error

	// Rename moves oldRel to newRel. The destination is not checked for
	// collisions; an existing file there is overwritten.
	Rename(ctx context.Context, oldRel, newRel string) error

	// Upload stores content under its original filename inside dirRel,
	// creating the directory when absent.
	Upload(ctx context.Context, dirRel, filename string, content io.Reader) error

	// Download opens a file for streaming. Directories fail with
	// domain.ErrInvalidOperation. The caller closes the reader.
	Download(ctx context.Context, rel string) (io.ReadCloser, FileEntry, error)
}
