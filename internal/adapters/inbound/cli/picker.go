package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// promptPicker asks for a target on the terminal. An empty answer or end of
// input cancels.
type promptPicker struct {
	in  *bufio.Reader
	out io.Writer
}

func newPromptPicker(in io.Reader, out io.Writer) *promptPicker {
	return &promptPicker{in: bufio.NewReader(in), out: out}
}

func (p *promptPicker) PickTarget(ctx context.Context, patches []string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	if len(patches) == 1 {
		fmt.Fprintf(p.out, "Target for %s (empty to cancel): ", patches[0])
	} else {
		fmt.Fprintf(p.out, "Target for %d patches (empty to cancel): ", len(patches))
	}

	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", false, fmt.Errorf("reading target: %w", err)
	}
	path := strings.TrimSpace(line)
	if path == "" {
		return "", false, nil
	}
	return path, true, nil
}
