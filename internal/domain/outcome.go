package domain

import "fmt"

// ApplyStatus is the raw verdict a patch engine reports for one application,
// before any mode-specific classification.
type ApplyStatus int

const (
	StatusOK ApplyStatus = iota
	StatusNotice
	StatusWarning
	StatusWrongTarget
	StatusInvalid
	StatusTargetReadFailed
	StatusWriteFailed
	StatusCancelled
)

var applyStatusNames = [...]string{
	"ok", "notice", "warning", "wrong_target",
	"invalid", "target_read_failed", "write_failed", "cancelled",
}

func (s ApplyStatus) String() string {
	if s < 0 || int(s) >= len(applyStatusNames) {
		return fmt.Sprintf("status(%d)", int(s))
	}
	return applyStatusNames[s]
}

func (s ApplyStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Succeeded reports whether an output was written.
func (s ApplyStatus) Succeeded() bool { return s <= StatusWarning }

// ApplyResult is what a PatchEngine returns for one application.
type ApplyResult struct {
	Status      ApplyStatus `json:"status"`
	Description string      `json:"description"`
}

// Auto classifies the result for an auto-match batch.
func (r ApplyResult) Auto() AutoSeverity {
	switch r.Status {
	case StatusOK:
		return AutoNone
	case StatusNotice:
		return AutoNotice
	case StatusWarning:
		return AutoWarning
	case StatusWrongTarget:
		return AutoNoAutoMatch
	case StatusInvalid:
		return AutoInvalid
	case StatusTargetReadFailed:
		return AutoTargetReadFailed
	default:
		return AutoTargetWriteFailed
	}
}

// Fixed classifies the result for a fixed-target batch.
func (r ApplyResult) Fixed() FixedSeverity {
	switch r.Status {
	case StatusOK:
		return FixedNone
	case StatusNotice:
		return FixedNotice
	case StatusWarning:
		return FixedWarning
	case StatusWrongTarget:
		return FixedInvalidForThisTarget
	case StatusInvalid:
		return FixedInvalidPatch
	case StatusTargetReadFailed:
		return FixedReadFailed
	default:
		return FixedWriteFailed
	}
}

// Level maps a single application straight to a batch level.
func (r ApplyResult) Level() Level {
	switch {
	case r.Status == StatusOK || r.Status == StatusNotice:
		return LevelOk
	case r.Status == StatusWarning:
		return LevelWarning
	default:
		return LevelBroken
	}
}
