package bulk

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Backend abstracts the destination that bulk-import tables are written to.
// The pipeline runs against DirBackend; tests run the same logic against
// MemBackend.
type Backend interface {
	// Create opens name for writing, truncating any existing content.
	Create(name string) (io.WriteCloser, error)
	// Append opens name for writing at the end, creating it if absent.
	Append(name string) (io.WriteCloser, error)
	// Open opens name for reading.
	Open(name string) (io.ReadCloser, error)
	// Remove deletes name.
	Remove(name string) error
	// Rename moves oldName to newName, replacing any existing file.
	Rename(oldName, newName string) error
}

// DirBackend stores tables as files under a root directory.
type DirBackend struct {
	root string
}

// NewDirBackend creates the root directory if needed and returns a backend
// over it.
func NewDirBackend(root string) (*DirBackend, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory %s: %w", root, err)
	}
	return &DirBackend{root: root}, nil
}

func (d *DirBackend) path(name string) string {
	return filepath.Join(d.root, name)
}

func (d *DirBackend) Create(name string) (io.WriteCloser, error) {
	return os.Create(d.path(name))
}

func (d *DirBackend) Append(name string) (io.WriteCloser, error) {
	return os.OpenFile(d.path(name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
}

func (d *DirBackend) Open(name string) (io.ReadCloser, error) {
	return os.Open(d.path(name))
}

func (d *DirBackend) Remove(name string) error {
	return os.Remove(d.path(name))
}

func (d *DirBackend) Rename(oldName, newName string) error {
	return os.Rename(d.path(oldName), d.path(newName))
}

// MemBackend keeps tables in memory. It exists for tests.
type MemBackend struct {
	mu    sync.Mutex
	files map[string][]byte
}

func NewMemBackend() *MemBackend {
	return &MemBackend{files: make(map[string][]byte)}
}

type memWriter struct {
	backend *MemBackend
	name    string
	buf     bytes.Buffer
	append  bool
}

func (w *memWriter) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

func (w *memWriter) Close() error {
	w.backend.mu.Lock()
	defer w.backend.mu.Unlock()
	if w.append {
		w.backend.files[w.name] = append(w.backend.files[w.name], w.buf.Bytes()...)
	} else {
		w.backend.files[w.name] = w.buf.Bytes()
	}
	return nil
}

func (m *MemBackend) Create(name string) (io.WriteCloser, error) {
	return &memWriter{backend: m, name: name}, nil
}

func (m *MemBackend) Append(name string) (io.WriteCloser, error) {
	return &memWriter{backend: m, name: name, append: true}, nil
}

func (m *MemBackend) Open(name string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	content, ok := m.files[name]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", name, os.ErrNotExist)
	}
	return io.NopCloser(bytes.NewReader(content)), nil
}

func (m *MemBackend) Remove(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[name]; !ok {
		return fmt.Errorf("remove %s: %w", name, os.ErrNotExist)
	}
	delete(m.files, name)
	return nil
}

func (m *MemBackend) Rename(oldName, newName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	content, ok := m.files[oldName]
	if !ok {
		return fmt.Errorf("rename %s: %w", oldName, os.ErrNotExist)
	}
	m.files[newName] = content
	delete(m.files, oldName)
	return nil
}

// Names returns the names currently stored, sorted.
func (m *MemBackend) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.files))
	for name := range m.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
