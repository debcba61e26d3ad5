package scanner

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

var skipDirs = map[string]bool{
	".git":         true,
	".patchkraft":  true,
	"node_modules": true,
	"vendor":       true,
}

// FileScanner walks directories looking for candidate targets.
type FileScanner struct{}

func New() *FileScanner {
	return &FileScanner{}
}

// Match decides whether a regular file is the one being looked for.
type Match func(path string, size int64) bool

// Find returns the absolute path of the first regular file under root,
// in lexical order, that match accepts. Subdirectories are only entered when
// recursive is set; well-known tool directories are always skipped. An
// unreadable root is reported as an error, unreadable subdirectories are not.
func (s *FileScanner) Find(ctx context.Context, root string, recursive bool, match Match) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}

	var found string
	err = filepath.WalkDir(absRoot, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if path == absRoot {
				return err
			}
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if d.IsDir() {
			if path == absRoot {
				return nil
			}
			if !recursive || skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		if match(path, info.Size()) {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	if err != nil && !errors.Is(err, fs.SkipAll) {
		return "", err
	}
	return found, nil
}
