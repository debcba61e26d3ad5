package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptPicker(t *testing.T) {
	var out bytes.Buffer
	p := newPromptPicker(strings.NewReader("  roms/game.sfc \n"), &out)

	path, ok, err := p.PickTarget(context.Background(), []string{"a.ips", "b.ips"})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "roms/game.sfc", path)
	assert.Contains(t, out.String(), "Target for 2 patches")
}

func TestPromptPicker_EOFWithoutNewline(t *testing.T) {
	p := newPromptPicker(strings.NewReader("game.sfc"), &bytes.Buffer{})
	path, ok, err := p.PickTarget(context.Background(), []string{"a.ips"})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "game.sfc", path)
}

func TestPromptPicker_EmptyCancels(t *testing.T) {
	var out bytes.Buffer
	p := newPromptPicker(strings.NewReader(""), &out)
	_, ok, err := p.PickTarget(context.Background(), []string{"a.ips"})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Contains(t, out.String(), "Target for a.ips")
}

func TestPromptPicker_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, ok, err := newPromptPicker(strings.NewReader("x\n"), &bytes.Buffer{}).PickTarget(ctx, []string{"a.ips"})
	assert.False(t, ok)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestApplyFlags_AutoMatch(t *testing.T) {
	assert.True(t, (&applyFlags{}).autoMatch(true))
	assert.False(t, (&applyFlags{}).autoMatch(false))
	assert.True(t, (&applyFlags{auto: true}).autoMatch(false))
	assert.False(t, (&applyFlags{noAuto: true}).autoMatch(true))
}

func TestExitError(t *testing.T) {
	err := &ExitError{Level: 1}
	assert.Equal(t, 1, err.Code())
	assert.Equal(t, "batch finished with level warning", err.Error())
}
