package domain

import "context"

// PatchSource opens patch files by name.
type PatchSource interface {
	Open(name string) (File, error)
}

// TargetSource loads a whole target into memory.
type TargetSource interface {
	Load(path string) ([]byte, error)
}

// TargetMatcher proposes a target for a patch. possiblyApplicable is false
// when the patch format carries no way to identify its target at all.
type TargetMatcher interface {
	FindTarget(ctx context.Context, patch Patch) (path string, possiblyApplicable bool)
}

// ProgressFunc is polled by engines during long work. Returning false asks
// the engine to abandon the current application.
type ProgressFunc func(done, total int64) bool

// ApplyRequest is one application handed to a PatchEngine.
type ApplyRequest struct {
	Patch       Patch
	Target      Target
	OutputPath  string
	StripHeader bool
	// Relaxed lets the engine retry with the opposite header decision when
	// the first attempt reports the wrong target.
	Relaxed  bool
	Progress ProgressFunc
}

// PatchEngine applies one patch and writes the output. It reports every
// failure through ApplyResult, never by panicking or returning an error.
type PatchEngine interface {
	Apply(ctx context.Context, req ApplyRequest) ApplyResult
}

// HeaderPolicy decides whether a copier header is stripped before patching.
type HeaderPolicy interface {
	ShouldStripHeader(target Target) bool
}

// AssociationRecorder remembers which target a patch was applied to.
// Failures are the recorder's problem, not the batch's.
type AssociationRecorder interface {
	Record(ctx context.Context, patch Patch, targetPath string)
}

// TargetPicker asks the user for a target. ok is false on cancel.
type TargetPicker interface {
	PickTarget(ctx context.Context, patches []string) (path string, ok bool, err error)
}

// ConfigLoader loads project configuration.
type ConfigLoader interface {
	Load(dir string) (Config, error)
}

// BatchHistory persists finished batches.
type BatchHistory interface {
	Save(dir string, entry HistoryEntry) error
	Load(dir string) ([]HistoryEntry, error)
}

// GitInfo reads repository metadata for history entries.
type GitInfo interface {
	CommitHash(dir string) (string, error)
}
