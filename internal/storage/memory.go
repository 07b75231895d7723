package storage

import (
	"context"
	"errors"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"
)

// Memory is an in-memory Storage. It mirrors the OS semantics the gateway
// relies on: writes need an existing parent, removing or renaming a missing
// name fails with fs.ErrNotExist, and listings are sorted by name.
type Memory struct {
	mu     sync.RWMutex
	files  map[string][]byte
	dirs   map[string]struct{}
	faults map[fault]error
}

type fault struct {
	op   Op
	name string
}

// NewMemory returns an empty tree containing only the root directory.
func NewMemory() *Memory {
	return &Memory{
		files:  make(map[string][]byte),
		dirs:   map[string]struct{}{".": {}},
		faults: make(map[fault]error),
	}
}

func clean(name string) string {
	return path.Clean(strings.TrimPrefix(name, "/"))
}

// MkdirAll creates dir and any missing parents.
func (m *Memory) MkdirAll(dir string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for d := clean(dir); d != "." && d != "/"; d = path.Dir(d) {
		m.dirs[d] = struct{}{}
	}
}

// Put writes a file, creating parent directories. Meant for test setup.
func (m *Memory) Put(name, content string) {
	name = clean(name)
	m.MkdirAll(path.Dir(name))

	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[name] = []byte(content)
}

// Fail makes every future op on name return err until cleared with a nil err.
func (m *Memory) Fail(op Op, name string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := fault{op: op, name: clean(name)}
	if err == nil {
		delete(m.faults, key)
		return
	}
	m.faults[key] = err
}

// Exists reports whether name is a file or directory.
func (m *Memory) Exists(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	name = clean(name)
	_, isFile := m.files[name]
	_, isDir := m.dirs[name]
	return isFile || isDir
}

// injected must be called with m.mu held.
func (m *Memory) injected(op Op, name string) error {
	if err, ok := m.faults[fault{op: op, name: name}]; ok {
		return &fs.PathError{Op: string(op), Path: name, Err: err}
	}
	return nil
}

func notExist(op Op, name string) error {
	return &fs.PathError{Op: string(op), Path: name, Err: fs.ErrNotExist}
}

func (m *Memory) ReadFile(ctx context.Context, name string) ([]byte, error) {
	if err := checkContext(ctx, OpRead, name); err != nil {
		return nil, err
	}
	name = clean(name)

	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.injected(OpRead, name); err != nil {
		return nil, err
	}
	data, ok := m.files[name]
	if !ok {
		if _, isDir := m.dirs[name]; isDir {
			return nil, &fs.PathError{Op: string(OpRead), Path: name, Err: errors.New("is a directory")}
		}
		return nil, notExist(OpRead, name)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (m *Memory) WriteFile(ctx context.Context, name string, data []byte) error {
	if err := checkContext(ctx, OpWrite, name); err != nil {
		return err
	}
	name = clean(name)

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.injected(OpWrite, name); err != nil {
		return err
	}
	if _, ok := m.dirs[path.Dir(name)]; !ok {
		return notExist(OpWrite, name)
	}
	if _, isDir := m.dirs[name]; isDir {
		return &fs.PathError{Op: string(OpWrite), Path: name, Err: errors.New("is a directory")}
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	m.files[name] = buf
	return nil
}

func (m *Memory) ReadDir(ctx context.Context, dir string) ([]Entry, error) {
	if err := checkContext(ctx, OpReadDir, dir); err != nil {
		return nil, err
	}
	dir = clean(dir)

	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.injected(OpReadDir, dir); err != nil {
		return nil, err
	}
	if _, ok := m.dirs[dir]; !ok {
		return nil, notExist(OpReadDir, dir)
	}

	entries := []Entry{}
	for name := range m.files {
		if path.Dir(name) == dir {
			entries = append(entries, Entry{Name: path.Base(name)})
		}
	}
	for name := range m.dirs {
		if name != dir && name != "." && path.Dir(name) == dir {
			entries = append(entries, Entry{Name: path.Base(name), IsDir: true})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

func (m *Memory) Remove(ctx context.Context, name string) error {
	if err := checkContext(ctx, OpRemove, name); err != nil {
		return err
	}
	name = clean(name)

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.injected(OpRemove, name); err != nil {
		return err
	}
	if _, ok := m.files[name]; ok {
		delete(m.files, name)
		return nil
	}
	if _, ok := m.dirs[name]; ok && name != "." {
		if m.hasChildren(name) {
			return &fs.PathError{Op: string(OpRemove), Path: name, Err: errors.New("directory not empty")}
		}
		delete(m.dirs, name)
		return nil
	}
	return notExist(OpRemove, name)
}

func (m *Memory) Rename(ctx context.Context, oldName, newName string) error {
	if err := checkContext(ctx, OpRename, oldName); err != nil {
		return err
	}
	oldName, newName = clean(oldName), clean(newName)

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.injected(OpRename, oldName); err != nil {
		return err
	}
	if _, ok := m.dirs[path.Dir(newName)]; !ok {
		return notExist(OpRename, newName)
	}

	if data, ok := m.files[oldName]; ok {
		delete(m.files, oldName)
		m.files[newName] = data
		return nil
	}

	if _, ok := m.dirs[oldName]; ok && oldName != "." {
		prefix := oldName + "/"
		movedFiles := make(map[string][]byte)
		for name, data := range m.files {
			if strings.HasPrefix(name, prefix) {
				movedFiles[name] = data
			}
		}
		movedDirs := []string{}
		for name := range m.dirs {
			if strings.HasPrefix(name, prefix) {
				movedDirs = append(movedDirs, name)
			}
		}
		for name, data := range movedFiles {
			delete(m.files, name)
			m.files[newName+"/"+strings.TrimPrefix(name, prefix)] = data
		}
		for _, name := range movedDirs {
			delete(m.dirs, name)
			m.dirs[newName+"/"+strings.TrimPrefix(name, prefix)] = struct{}{}
		}
		delete(m.dirs, oldName)
		m.dirs[newName] = struct{}{}
		return nil
	}

	return notExist(OpRename, oldName)
}

// hasChildren must be called with m.mu held.
func (m *Memory) hasChildren(dir string) bool {
	prefix := dir + "/"
	for name := range m.files {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	for name := range m.dirs {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}
