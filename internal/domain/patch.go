package domain

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// File is a readable byte source of known length with random access.
// ReadAt must fail with ErrShortRead rather than return fewer bytes.
type File interface {
	io.ReaderAt
	io.Closer
	Len() int64
}

// Patch is an opened patch file. The caller owns File and closes it.
type Patch struct {
	Name string
	File File
}

// Bytes reads the whole patch.
func (p Patch) Bytes() ([]byte, error) {
	buf := make([]byte, p.File.Len())
	if len(buf) == 0 {
		return buf, nil
	}
	if _, err := p.File.ReadAt(buf, 0); err != nil {
		return nil, fmt.Errorf("reading patch %s: %w", p.Name, err)
	}
	return buf, nil
}

// Target is a file a patch is applied to. Contents is nil until loaded.
type Target struct {
	Path     string
	Contents []byte
}

// OutputPath derives where the patched copy of target goes for patchPath:
// the patch path with its extension replaced by the target's.
func OutputPath(patchPath, targetPath string) string {
	base := strings.TrimSuffix(patchPath, filepath.Ext(patchPath))
	out := base + filepath.Ext(targetPath)
	if out == patchPath || out == targetPath {
		out += ".out"
	}
	return out
}
