package cli

import (
	"fmt"

	"github.com/patchkraft/patchkraft/internal/domain"
)

// ExitError reports a batch that finished with a level other than ok. The
// report has already been printed; the level becomes the exit code.
type ExitError struct {
	Level domain.Level
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("batch finished with level %s", e.Level)
}

// Code is the process exit code: 1 for warning, 2 for broken.
func (e *ExitError) Code() int { return int(e.Level) }
