package filesystem

import (
	"bytes"
	"io"
	"io/fs"
	"path"
	"path/filepath"
	"sync"
	"time"
)

type memoryFileInfo struct {
	name    string
	size    int64
	modTime time.Time
}

func (f *memoryFileInfo) Name() string       { return f.name }
func (f *memoryFileInfo) Size() int64        { return f.size }
func (f *memoryFileInfo) Mode() fs.FileMode  { return 0644 }
func (f *memoryFileInfo) ModTime() time.Time { return f.modTime }
func (f *memoryFileInfo) IsDir() bool        { return false }
func (f *memoryFileInfo) Sys() interface{}   { return nil }

// MemoryFileSystem implements FileSystemProvider for in-memory testing.
// Paths are normalized to forward slashes.
type MemoryFileSystem struct {
	mu    sync.RWMutex
	files map[string][]byte
	mod   map[string]time.Time
}

// NewMemoryFileSystem creates an empty in-memory filesystem.
func NewMemoryFileSystem() *MemoryFileSystem {
	return &MemoryFileSystem{
		files: make(map[string][]byte),
		mod:   make(map[string]time.Time),
	}
}

func normalize(p string) string {
	return path.Clean(filepath.ToSlash(p))
}

// AddFile adds or replaces a file.
func (m *MemoryFileSystem) AddFile(p string, content []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := normalize(p)
	m.files[key] = append([]byte(nil), content...)
	m.mod[key] = time.Now()
}

func (m *MemoryFileSystem) lookup(op, p string) ([]byte, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	key := normalize(p)
	content, ok := m.files[key]
	if !ok {
		return nil, key, &fs.PathError{Op: op, Path: p, Err: fs.ErrNotExist}
	}
	return content, key, nil
}

func (m *MemoryFileSystem) Open(p string) (io.ReadCloser, error) {
	content, _, err := m.lookup("open", p)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(content)), nil
}

func (m *MemoryFileSystem) ReadFile(p string) ([]byte, error) {
	content, _, err := m.lookup("read", p)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), content...), nil
}

func (m *MemoryFileSystem) Stat(p string) (FileInfo, error) {
	content, key, err := m.lookup("stat", p)
	if err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return &memoryFileInfo{name: path.Base(key), size: int64(len(content)), modTime: m.mod[key]}, nil
}
