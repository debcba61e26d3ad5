package tui

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/patchkraft/patchkraft/internal/domain"
)

// RunFunc runs a batch, reporting progress through observe.
type RunFunc func(ctx context.Context, observe func(patch string, done, total int64)) (*domain.BatchReport, error)

// --- Messages ---
type progressMsg struct {
	patch       string
	done, total int64
}

type finishedMsg struct {
	report *domain.BatchReport
	err    error
}

// --- Model ---

// ProgressModel shows a spinner with the patch being applied while a batch
// runs. ctrl+c cancels the batch but the model waits for it to wind down.
type ProgressModel struct {
	ctx     context.Context
	cancel  context.CancelFunc
	run     RunFunc
	send    func(tea.Msg)
	spinner spinner.Model

	patch       string
	done, total int64
	cancelling  bool
	finished    bool

	report *domain.BatchReport
	err    error
}

// NewProgressModel creates the model. send delivers progress messages to the
// running program; nil drops them.
func NewProgressModel(ctx context.Context, cancel context.CancelFunc, run RunFunc, send func(tea.Msg)) ProgressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(accent)
	return ProgressModel{ctx: ctx, cancel: cancel, run: run, send: send, spinner: s}
}

func (m ProgressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.runBatch)
}

func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if !m.cancelling {
				m.cancelling = true
				m.cancel()
			}
		}
		return m, nil

	case progressMsg:
		m.patch, m.done, m.total = msg.patch, msg.done, msg.total
		return m, nil

	case finishedMsg:
		m.finished = true
		m.report, m.err = msg.report, msg.err
		return m, tea.Quit

	default:
		var cmd tea.Cmd
		if !m.finished {
			m.spinner, cmd = m.spinner.Update(msg)
		}
		return m, cmd
	}
}

func (m ProgressModel) View() string {
	if m.finished {
		return ""
	}
	if m.cancelling {
		return fmt.Sprintf("%s %s\n", m.spinner.View(), warnStyle.Render("Cancelling..."))
	}
	if m.patch == "" {
		return fmt.Sprintf("%s %s\n", m.spinner.View(), dimStyle.Render("Starting..."))
	}
	pct := 0
	if m.total > 0 {
		pct = int(m.done * 100 / m.total)
	}
	return fmt.Sprintf("%s Applying %s %s\n",
		m.spinner.View(), titleStyle.Render(m.patch), dimStyle.Render(fmt.Sprintf("%3d%%", pct)))
}

// Result returns what the batch produced once the model has finished.
func (m ProgressModel) Result() (*domain.BatchReport, error) {
	return m.report, m.err
}

func (m ProgressModel) runBatch() tea.Msg {
	report, err := m.run(m.ctx, func(patch string, done, total int64) {
		if m.send != nil {
			m.send(progressMsg{patch: patch, done: done, total: total})
		}
	})
	return finishedMsg{report: report, err: err}
}

// RunWithProgress runs a batch behind a spinner drawn on out.
func RunWithProgress(ctx context.Context, run RunFunc, in io.Reader, out io.Writer) (*domain.BatchReport, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var p *tea.Program
	m := NewProgressModel(ctx, cancel, run, func(msg tea.Msg) { p.Send(msg) })
	p = tea.NewProgram(m, tea.WithInput(in), tea.WithOutput(out))

	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("running progress display: %w", err)
	}
	return final.(ProgressModel).Result()
}
