package domain

import "fmt"

// Level is the coarse verdict of a batch. Its ordinal doubles as the process
// exit code: Ok is 0 and Broken is the worst.
type Level int

const (
	LevelOk Level = iota
	LevelWarning
	LevelBroken
)

var levelNames = [...]string{"ok", "warning", "broken"}

func (l Level) String() string {
	if l < 0 || int(l) >= len(levelNames) {
		return fmt.Sprintf("level(%d)", int(l))
	}
	return levelNames[l]
}

func (l Level) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

func (l *Level) UnmarshalText(text []byte) error {
	for i, name := range levelNames {
		if name == string(text) {
			*l = Level(i)
			return nil
		}
	}
	return fmt.Errorf("unknown level %q", text)
}

// BatchResult is the only thing a batch hands back to its caller.
type BatchResult struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// AutoSeverity orders per-item outcomes of an auto-match batch, best first.
type AutoSeverity int

const (
	AutoNone AutoSeverity = iota
	AutoNotice
	AutoWarning
	AutoInvalid
	AutoTargetWriteFailed
	AutoTargetReadFailed
	AutoNoAutoMatch
	AutoPatchReadFailed
)

var autoSeverityNames = [...]string{
	"None", "Notice", "Warning", "Invalid",
	"TargetWriteFailed", "TargetReadFailed", "NoAutoMatch", "PatchReadFailed",
}

func (s AutoSeverity) String() string {
	if s < 0 || int(s) >= len(autoSeverityNames) {
		return fmt.Sprintf("AutoSeverity(%d)", int(s))
	}
	return autoSeverityNames[s]
}

// Succeeded reports whether the item actually produced an output.
func (s AutoSeverity) Succeeded() bool { return s < AutoInvalid }

func (s AutoSeverity) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// FixedSeverity orders per-item outcomes of a fixed-target batch, best first.
type FixedSeverity int

const (
	FixedNone FixedSeverity = iota
	FixedNotice
	FixedWarning
	FixedInvalidForThisTarget
	FixedInvalidPatch
	FixedWriteFailed
	FixedReadFailed
	FixedTargetUnreadable
)

var fixedSeverityNames = [...]string{
	"None", "Notice", "Warning", "InvalidForThisTarget",
	"InvalidPatch", "WriteFailed", "ReadFailed", "TargetUnreadable",
}

func (s FixedSeverity) String() string {
	if s < 0 || int(s) >= len(fixedSeverityNames) {
		return fmt.Sprintf("FixedSeverity(%d)", int(s))
	}
	return fixedSeverityNames[s]
}

// Succeeded reports whether the item actually produced an output.
func (s FixedSeverity) Succeeded() bool { return s < FixedInvalidForThisTarget }

func (s FixedSeverity) MarshalText() ([]byte, error) { return []byte(s.String()), nil }
