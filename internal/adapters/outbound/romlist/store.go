package romlist

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/crc32"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/patchkraft/patchkraft/internal/adapters/outbound/codec"
	"github.com/patchkraft/patchkraft/internal/adapters/outbound/scanner"
	"github.com/patchkraft/patchkraft/internal/domain"
)

// Store is a JSON-file list of known targets. It implements
// domain.TargetMatcher and domain.AssociationRecorder.
type Store struct {
	path       string
	searchDirs []string
	headerSize int
	finder     *scanner.FileScanner
	logger     *slog.Logger
	now        func() time.Time
}

// New creates a store backed by the file at path.
func New(path string, searchDirs []string, headerSize int, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{
		path: path, searchDirs: searchDirs, headerSize: headerSize,
		finder: scanner.New(), logger: logger, now: time.Now,
	}
}

// DefaultPath is the per-user association list.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "patchkraft", "associations.json"), nil
}

// Path returns the backing file.
func (s *Store) Path() string { return s.path }

// Load reads all entries. Returns (nil, nil) if the list does not exist yet.
func (s *Store) Load() ([]domain.Association, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var entries []domain.Association
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.path, err)
	}
	return entries, nil
}

// Save replaces the list on disk, creating directories as needed.
func (s *Store) Save(entries []domain.Association) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Checksum < entries[j].Checksum })
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0644)
}

// Put adds or replaces the entry for e.Checksum.
func (s *Store) Put(e domain.Association) error {
	entries, err := s.Load()
	if err != nil {
		return err
	}
	e.Checksum = strings.ToLower(e.Checksum)
	if e.Updated.IsZero() {
		e.Updated = s.now().UTC()
	}

	replaced := false
	for i := range entries {
		if entries[i].Checksum == e.Checksum {
			entries[i] = e
			replaced = true
			break
		}
	}
	if !replaced {
		entries = append(entries, e)
	}
	return s.Save(entries)
}

// Forget removes the entry for checksum and reports whether it existed.
func (s *Store) Forget(checksum string) (bool, error) {
	entries, err := s.Load()
	if err != nil {
		return false, err
	}
	checksum = strings.ToLower(checksum)
	kept := entries[:0]
	for _, e := range entries {
		if e.Checksum != checksum {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(entries) {
		return false, nil
	}
	return true, s.Save(kept)
}

// Associate remembers targetPath as the target of patch. Patches that do not
// identify their target are ignored.
func (s *Store) Associate(patch domain.Patch, targetPath string) (bool, error) {
	info, err := codec.Identify(patch.File)
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", patch.Name, err)
	}
	if !info.HasSource() {
		return false, nil
	}
	abs, err := filepath.Abs(targetPath)
	if err != nil {
		return false, err
	}
	return true, s.Put(domain.Association{Checksum: info.SourceChecksum(), Size: info.SourceSize, Path: abs})
}

// Record implements domain.AssociationRecorder. Failures are logged only.
func (s *Store) Record(_ context.Context, patch domain.Patch, targetPath string) {
	stored, err := s.Associate(patch, targetPath)
	if err != nil {
		s.logger.Warn("cannot record association", "patch", patch.Name, "target", targetPath, "error", err)
		return
	}
	if stored {
		s.logger.Debug("association recorded", "patch", patch.Name, "target", targetPath)
	}
}

// FindTarget implements domain.TargetMatcher. A recorded path wins if the
// file still exists; otherwise the patch's directory and, recursively, the
// configured search directories are scanned for a file with the right size
// and CRC.
func (s *Store) FindTarget(ctx context.Context, patch domain.Patch) (string, bool) {
	info, err := codec.Identify(patch.File)
	if err != nil || !info.HasSource() {
		return "", false
	}
	checksum := info.SourceChecksum()

	entries, err := s.Load()
	if err != nil {
		s.logger.Warn("cannot load associations", "path", s.path, "error", err)
	}
	for _, e := range entries {
		if e.Checksum == checksum && e.Size == info.SourceSize && isFile(e.Path) {
			return e.Path, true
		}
	}

	if found := s.scan(ctx, patch.Name, info); found != "" {
		if err := s.Put(domain.Association{Checksum: checksum, Size: info.SourceSize, Path: found}); err != nil {
			s.logger.Warn("cannot record association", "target", found, "error", err)
		}
		return found, true
	}
	return "", true
}

func (s *Store) scan(ctx context.Context, patchName string, info codec.Info) string {
	self, _ := filepath.Abs(patchName)
	match := func(path string, size int64) bool {
		return path != self && s.matches(path, uint64(size), info)
	}

	roots := append([]string{filepath.Dir(patchName)}, s.searchDirs...)
	for i, root := range roots {
		// the patch's own directory is not searched recursively
		found, err := s.finder.Find(ctx, root, i > 0, match)
		if err != nil {
			s.logger.Debug("skipping search dir", "dir", root, "error", err)
			continue
		}
		if found != "" {
			return found
		}
	}
	return ""
}

func (s *Store) matches(path string, size uint64, info codec.Info) bool {
	skip := 0
	switch {
	case size == info.SourceSize:
	case s.headerSize > 0 && size == info.SourceSize+uint64(s.headerSize):
		skip = s.headerSize
	default:
		return false
	}
	data, err := os.ReadFile(path)
	if err != nil || len(data) < skip {
		return false
	}
	return crc32.ChecksumIEEE(data[skip:]) == info.SourceCRC
}

func isFile(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}
