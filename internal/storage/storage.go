// Package storage abstracts the filesystem calls the gateway makes so the
// OS directory can be swapped for an in-memory tree in tests.
//
// Names are slash-separated and relative to the storage root. Errors keep
// the io/fs sentinels, so errors.Is(err, fs.ErrNotExist) works for both
// implementations.
package storage

import (
	"context"
	"io/fs"
)

// Storage is the set of filesystem operations the gateway needs.
type Storage interface {
	ReadFile(ctx context.Context, name string) ([]byte, error)
	// WriteFile creates or truncates name. The parent directory must exist.
	WriteFile(ctx context.Context, name string, data []byte) error
	// ReadDir lists the direct children of dir sorted by name.
	ReadDir(ctx context.Context, dir string) ([]Entry, error)
	Remove(ctx context.Context, name string) error
	Rename(ctx context.Context, oldName, newName string) error
}

// Entry is one directory listing result.
type Entry struct {
	Name  string `json:"name"`
	IsDir bool   `json:"is_dir"`
}

// FilePerm is used for every file the gateway creates.
const FilePerm fs.FileMode = 0o644

// Op names a storage operation, used for error injection in Memory.
type Op string

const (
	OpRead    Op = "read"
	OpWrite   Op = "write"
	OpReadDir Op = "readdir"
	OpRemove  Op = "remove"
	OpRename  Op = "rename"
)

func checkContext(ctx context.Context, op Op, name string) error {
	if err := ctx.Err(); err != nil {
		return &fs.PathError{Op: string(op), Path: name, Err: err}
	}
	return nil
}
