package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/camelcase"

	"github.com/patchkraft/patchkraft/internal/domain"
)

// ── warm palette ──
var (
	accent  = lipgloss.Color("#D97706") // amber
	fg      = lipgloss.Color("#E8E6E3") // warm light gray
	dim     = lipgloss.Color("#6B7280") // muted gray
	faint   = lipgloss.Color("#3F3F46") // very dim
	success = lipgloss.Color("#22C55E") // green
	danger  = lipgloss.Color("#EF4444") // red
	warning = lipgloss.Color("#F59E0B") // amber-yellow
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Align(lipgloss.Center)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 4).
			Align(lipgloss.Center).
			Width(68)

	levelColors = map[domain.Level]lipgloss.Color{
		domain.LevelOk:      success,
		domain.LevelWarning: warning,
		domain.LevelBroken:  danger,
	}

	dimStyle      = lipgloss.NewStyle().Foreground(dim)
	faintStyle    = lipgloss.NewStyle().Foreground(faint)
	passStyle     = lipgloss.NewStyle().Foreground(success)
	failStyle     = lipgloss.NewStyle().Foreground(danger)
	warnStyle     = lipgloss.NewStyle().Foreground(warning)
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(fg)
	fileStyle     = lipgloss.NewStyle().Foreground(dim)
	separatorLine = faintStyle.Render(strings.Repeat("─", 64))
)

// RenderReport renders a finished batch for the terminal.
func RenderReport(r *domain.BatchReport) string {
	var b strings.Builder

	// ── Header ──
	title := headerStyle.Render("patchkraft")
	subtitle := dimStyle.Render(modeTitle(r.Mode))
	verdict := lipgloss.NewStyle().
		Bold(true).
		Foreground(levelColor(r.Result.Level)).
		Render(r.Result.Message)
	b.WriteString(boxStyle.Render(title + "\n" + subtitle + "\n\n" + verdict))
	b.WriteString("\n\n")

	if r.Cancelled {
		b.WriteString("  " + dimStyle.Render("Nothing was applied.") + "\n")
		return b.String()
	}
	if r.Target != "" {
		b.WriteString("  " + titleStyle.Render("Target") + "  " + fileStyle.Render(r.Target) + "\n\n")
	}

	// ── Items ──
	for _, it := range r.Items {
		renderItem(&b, it)
	}
	if len(r.Items) == 0 {
		b.WriteString("  " + dimStyle.Render("No patches were processed.") + "\n")
	}

	b.WriteString("\n")
	b.WriteString("  " + separatorLine)
	b.WriteString("\n")

	// ── Footer ──
	applied := 0
	for _, it := range r.Items {
		if it.Succeeded {
			applied++
		}
	}
	summary := fmt.Sprintf("%d of %d applied", applied, len(r.Items))
	if r.Passes > 1 {
		summary += fmt.Sprintf(" · retried unmatched patches against %s", r.Target)
	}
	b.WriteString("  " + dimStyle.Render(summary) + "\n")
	if r.ID != "" {
		b.WriteString("  " + faintStyle.Render("batch "+r.ID) + "\n")
	}
	return b.String()
}

func renderItem(b *strings.Builder, it domain.ItemReport) {
	mark := passStyle.Render("✓")
	labelStyle := dimStyle
	switch {
	case !it.Succeeded:
		mark = failStyle.Render("✗")
		labelStyle = failStyle
	case isWarning(it.Severity):
		mark = warnStyle.Render("!")
		labelStyle = warnStyle
	}

	line := fmt.Sprintf("  %s %s", mark, titleStyle.Render(it.Patch))
	if it.Target != "" {
		line += dimStyle.Render(" → ") + fileStyle.Render(it.Target)
	}
	line += "  " + labelStyle.Render(severityLabel(it.Severity))
	if it.Pass > 1 {
		line += "  " + faintStyle.Render(fmt.Sprintf("(pass %d)", it.Pass))
	}
	b.WriteString(line + "\n")

	if it.Output != "" {
		b.WriteString("      " + dimStyle.Render("output: ") + fileStyle.Render(it.Output) + "\n")
	}
	if it.Description != "" && (!it.Succeeded || !isClean(it.Severity)) {
		b.WriteString("      " + dimStyle.Render(it.Description) + "\n")
	}
}

// RenderAssociations renders the remembered patch targets.
func RenderAssociations(entries []domain.Association, path string) string {
	var b strings.Builder
	b.WriteString("  " + titleStyle.Render("Associations") + "  " + fileStyle.Render(path) + "\n\n")
	if len(entries) == 0 {
		b.WriteString("  " + dimStyle.Render("No associations recorded yet.") + "\n")
		return b.String()
	}
	for _, e := range entries {
		b.WriteString(fmt.Sprintf("  %s  %s  %s\n",
			warnStyle.Render(e.Checksum),
			dimStyle.Render(fmt.Sprintf("%10d bytes", e.Size)),
			fileStyle.Render(e.Path)))
	}
	return b.String()
}

// RenderHistory renders past batches, newest last.
func RenderHistory(entries []domain.HistoryEntry) string {
	var b strings.Builder
	b.WriteString("  " + titleStyle.Render("History") + "\n\n")
	if len(entries) == 0 {
		b.WriteString("  " + dimStyle.Render("No batches recorded yet.") + "\n")
		return b.String()
	}
	for _, e := range entries {
		level := lipgloss.NewStyle().Foreground(levelColor(e.Level)).Render(fmt.Sprintf("%-7s", e.Level))
		commit := ""
		if len(e.CommitHash) >= 7 {
			commit = " " + faintStyle.Render(e.CommitHash[:7])
		}
		b.WriteString(fmt.Sprintf("  %s  %s  %s  %s%s\n",
			dimStyle.Render(e.Timestamp.Local().Format("2006-01-02 15:04")),
			level,
			dimStyle.Render(fmt.Sprintf("%-6s %d/%d", e.Mode, e.Succeeded, e.Patches)),
			e.Message,
			commit))
	}
	return b.String()
}

// severityLabel turns severity and status names into lower-case words:
// "NoAutoMatch" and "wrong_target" become "no auto match" and "wrong target".
func severityLabel(name string) string {
	if strings.Contains(name, "_") {
		return strings.ReplaceAll(name, "_", " ")
	}
	return strings.ToLower(strings.Join(camelcase.Split(name), " "))
}

func isClean(severity string) bool {
	return severity == domain.AutoNone.String() || severity == domain.StatusOK.String()
}

func isWarning(severity string) bool {
	return strings.EqualFold(severity, "warning")
}

func levelColor(l domain.Level) lipgloss.Color {
	if c, ok := levelColors[l]; ok {
		return c
	}
	return dim
}

func modeTitle(m domain.Mode) string {
	switch m {
	case domain.ModeAuto:
		return "Auto-matched batch"
	case domain.ModeFixed:
		return "Batch against one target"
	default:
		return "Single patch"
	}
}
