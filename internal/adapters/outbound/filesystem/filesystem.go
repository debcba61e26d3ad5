package filesystem

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/patchkraft/patchkraft/internal/domain"
)

// FS implements domain.PatchSource and domain.TargetSource on the local disk,
// and writes patched outputs.
type FS struct{}

// New creates a filesystem adapter.
func New() *FS { return &FS{} }

// Open opens a regular file for random access.
func (f *FS) Open(name string) (domain.File, error) {
	fh, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := fh.Stat()
	if err != nil {
		fh.Close()
		return nil, err
	}
	if !info.Mode().IsRegular() {
		fh.Close()
		return nil, fmt.Errorf("%s is not a regular file", name)
	}
	return &file{f: fh, name: name, size: info.Size()}, nil
}

// Load reads a whole target into memory.
func (f *FS) Load(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%s is not a regular file", path)
	}
	return os.ReadFile(path)
}

// Write stores data at path, creating parent directories as needed.
func (f *FS) Write(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

type file struct {
	f    *os.File
	name string
	size int64
}

func (f *file) Len() int64 { return f.size }

func (f *file) ReadAt(p []byte, off int64) (int, error) {
	n, err := f.f.ReadAt(p, off)
	if n < len(p) {
		return n, fmt.Errorf("%w: %s: wanted %d bytes at offset %d, got %d: %v",
			domain.ErrShortRead, f.name, len(p), off, n, err)
	}
	return n, nil
}

func (f *file) Close() error { return f.f.Close() }
