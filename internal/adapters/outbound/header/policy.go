package header

import (
	"path/filepath"
	"strings"

	"github.com/patchkraft/patchkraft/internal/domain"
)

// Policy implements domain.HeaderPolicy from the header section of the
// project config.
type Policy struct {
	mode       domain.HeaderMode
	extensions map[string]bool
	size       int
}

// New creates a Policy.
func New(cfg domain.HeaderConfig) *Policy {
	exts := make(map[string]bool, len(cfg.Extensions))
	for _, e := range cfg.Extensions {
		exts[strings.ToLower(e)] = true
	}
	return &Policy{mode: cfg.Mode, extensions: exts, size: cfg.Size}
}

// ShouldStripHeader decides for a loaded target. In auto mode a header is
// assumed when the extension is listed and the size is a header past a
// 1 KiB boundary.
func (p *Policy) ShouldStripHeader(t domain.Target) bool {
	n := len(t.Contents)
	if n <= p.size {
		return false
	}
	switch p.mode {
	case domain.HeaderAlways:
		return true
	case domain.HeaderNever:
		return false
	default:
		return p.extensions[strings.ToLower(filepath.Ext(t.Path))] && n%1024 == p.size
	}
}
