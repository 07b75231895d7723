package storage

import (
	"context"
	"os"
	"path/filepath"
)

// Dir is a Storage backed by a directory on the local filesystem.
type Dir struct {
	root string
}

// NewDir returns a Storage rooted at root. A relative root is made
// absolute against the working directory once, here.
func NewDir(root string) *Dir {
	if root == "" {
		root = "."
	}
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	return &Dir{root: root}
}

// Root returns the absolute directory names are resolved against.
func (d *Dir) Root() string {
	return d.root
}

func (d *Dir) resolve(name string) string {
	native := filepath.FromSlash(name)
	if filepath.IsAbs(native) {
		return native
	}
	return filepath.Join(d.root, native)
}

func (d *Dir) ReadFile(ctx context.Context, name string) ([]byte, error) {
	if err := checkContext(ctx, OpRead, name); err != nil {
		return nil, err
	}
	return os.ReadFile(d.resolve(name))
}

func (d *Dir) WriteFile(ctx context.Context, name string, data []byte) error {
	if err := checkContext(ctx, OpWrite, name); err != nil {
		return err
	}
	return os.WriteFile(d.resolve(name), data, FilePerm)
}

func (d *Dir) ReadDir(ctx context.Context, dir string) ([]Entry, error) {
	if err := checkContext(ctx, OpReadDir, dir); err != nil {
		return nil, err
	}
	dirEntries, err := os.ReadDir(d.resolve(dir))
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		entries = append(entries, Entry{Name: de.Name(), IsDir: de.IsDir()})
	}
	return entries, nil
}

func (d *Dir) Remove(ctx context.Context, name string) error {
	if err := checkContext(ctx, OpRemove, name); err != nil {
		return err
	}
	return os.Remove(d.resolve(name))
}

func (d *Dir) Rename(ctx context.Context, oldName, newName string) error {
	if err := checkContext(ctx, OpRename, oldName); err != nil {
		return err
	}
	return os.Rename(d.resolve(oldName), d.resolve(newName))
}
