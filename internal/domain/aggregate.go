package domain

import "fmt"

// Severity is a per-mode total order of item outcomes. The zero value is the
// best outcome and larger values are worse. Auto and fixed severities are
// distinct types so one batch can never mix them.
type Severity interface {
	~int
	fmt.Stringer
	Succeeded() bool
}

// Outcome is the classified result of applying one patch.
type Outcome[S Severity] struct {
	Patch       string `json:"patch"`
	Target      string `json:"target,omitempty"`
	Output      string `json:"output,omitempty"`
	Severity    S      `json:"severity"`
	Description string `json:"description,omitempty"`
	Pass        int    `json:"pass,omitempty"`
}

// Worse returns the more severe of a and b.
func Worse[S Severity](a, b S) S {
	if b > a {
		return b
	}
	return a
}

// Reduce folds a sequence of outcomes into the worst severity seen and
// whether at least one item succeeded. An empty sequence yields (None, false).
func Reduce[S Severity](outcomes []Outcome[S]) (worst S, anySuccess bool) {
	for _, o := range outcomes {
		worst = Worse(worst, o.Severity)
		if o.Severity.Succeeded() {
			anySuccess = true
		}
	}
	return worst, anySuccess
}

// Table maps (anySuccess, worst) to the batch verdict presented to the user.
// Missing cells are unreachable combinations.
type Table[S Severity] struct {
	name  string
	cells [2]map[S]BatchResult
}

// NewTable builds a presentation table from its failed row (no item
// succeeded) and its succeeded row.
func NewTable[S Severity](name string, failed, succeeded map[S]BatchResult) *Table[S] {
	return &Table[S]{name: name, cells: [2]map[S]BatchResult{failed, succeeded}}
}

// Lookup returns the cell for the given aggregate, if the table defines one.
func (t *Table[S]) Lookup(anySuccess bool, worst S) (BatchResult, bool) {
	row := 0
	if anySuccess {
		row = 1
	}
	r, ok := t.cells[row][worst]
	return r, ok
}

// Present is Lookup that turns an undefined cell into ErrUnreachableOutcome.
func (t *Table[S]) Present(anySuccess bool, worst S) (BatchResult, error) {
	r, ok := t.Lookup(anySuccess, worst)
	if !ok {
		return BatchResult{}, fmt.Errorf("%w: %s table has no entry for any_success=%t worst=%s",
			ErrUnreachableOutcome, t.name, anySuccess, worst)
	}
	return r, nil
}

const (
	msgAllApplied      = "All patches applied successfully!"
	msgAllMaybeMangled = "All patches applied, but one or more may be mangled or improperly created..."
	msgSomeApplied     = "Some patches applied, but not all of the given patches are valid..."
)

// AutoTable presents auto-match batches. Only the succeeded row exists: an
// auto batch with no success falls through to the fixed-target flow.
var AutoTable = NewTable("auto", map[AutoSeverity]BatchResult{}, map[AutoSeverity]BatchResult{
	AutoNone:              {LevelOk, msgAllApplied},
	AutoNotice:            {LevelOk, msgAllApplied},
	AutoWarning:           {LevelWarning, msgAllMaybeMangled},
	AutoInvalid:           {LevelWarning, msgSomeApplied},
	AutoTargetWriteFailed: {LevelWarning, "Some patches applied, but not all of the desired targets could be created..."},
	AutoTargetReadFailed:  {LevelWarning, "Some patches applied, but not all of the input targets could be read..."},
	AutoNoAutoMatch:       {LevelWarning, "Some patches applied, but not all of the required input targets could be located..."},
	AutoPatchReadFailed:   {LevelWarning, "Some patches applied, but not all of the given patches could be read..."},
})

// FixedTable presents batches applied against one chosen target.
var FixedTable = NewTable("fixed", map[FixedSeverity]BatchResult{
	FixedNone:                 {LevelOk, "No patches were applied."},
	FixedInvalidForThisTarget: {LevelBroken, "None of these are valid patches for this target!"},
	FixedInvalidPatch:         {LevelBroken, "None of these are valid patches!"},
	FixedWriteFailed:          {LevelBroken, "Couldn't write any targets!"},
	FixedReadFailed:           {LevelBroken, "Couldn't read any patches!"},
	FixedTargetUnreadable:     {LevelBroken, "Couldn't read the input target."},
}, map[FixedSeverity]BatchResult{
	FixedNone:                 {LevelOk, msgAllApplied},
	FixedNotice:               {LevelOk, msgAllApplied},
	FixedWarning:              {LevelWarning, msgAllMaybeMangled},
	FixedInvalidForThisTarget: {LevelWarning, "Some patches applied, but not all of the given patches are valid for this target..."},
	FixedInvalidPatch:         {LevelWarning, msgSomeApplied},
	FixedWriteFailed:          {LevelWarning, "Some patches applied, but not all of the desired targets could be created..."},
	FixedReadFailed:           {LevelWarning, "Some patches applied, but not all of the given patches could be read..."},
})
