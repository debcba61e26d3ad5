package domain_test

import (
	"testing"
	"time"

	"github.com/patchkraft/patchkraft/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestClassification(t *testing.T) {
	tests := []struct {
		status domain.ApplyStatus
		auto   domain.AutoSeverity
		fixed  domain.FixedSeverity
		level  domain.Level
	}{
		{domain.StatusOK, domain.AutoNone, domain.FixedNone, domain.LevelOk},
		{domain.StatusNotice, domain.AutoNotice, domain.FixedNotice, domain.LevelOk},
		{domain.StatusWarning, domain.AutoWarning, domain.FixedWarning, domain.LevelWarning},
		{domain.StatusWrongTarget, domain.AutoNoAutoMatch, domain.FixedInvalidForThisTarget, domain.LevelBroken},
		{domain.StatusInvalid, domain.AutoInvalid, domain.FixedInvalidPatch, domain.LevelBroken},
		{domain.StatusTargetReadFailed, domain.AutoTargetReadFailed, domain.FixedReadFailed, domain.LevelBroken},
		{domain.StatusWriteFailed, domain.AutoTargetWriteFailed, domain.FixedWriteFailed, domain.LevelBroken},
		{domain.StatusCancelled, domain.AutoTargetWriteFailed, domain.FixedWriteFailed, domain.LevelBroken},
	}
	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			r := domain.ApplyResult{Status: tt.status}
			assert.Equal(t, tt.auto, r.Auto())
			assert.Equal(t, tt.fixed, r.Fixed())
			assert.Equal(t, tt.level, r.Level())
			assert.Equal(t, tt.status.Succeeded(), r.Auto().Succeeded())
			assert.Equal(t, tt.status.Succeeded(), r.Fixed().Succeeded())
		})
	}
}

func TestOutputPath(t *testing.T) {
	assert.Equal(t, "hacks/fix.sfc", domain.OutputPath("hacks/fix.bps", "roms/game.sfc"))
	assert.Equal(t, "fix.smc", domain.OutputPath("fix", "game.smc"))
	assert.Equal(t, "fix", domain.OutputPath("fix.ips", "game"))
	assert.Equal(t, "fix.out", domain.OutputPath("fix", "game"))
	assert.Equal(t, "a/x.bin.out", domain.OutputPath("a/x.ips", "a/x.bin"))
}

func TestNewHistoryEntry(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	r := &domain.BatchReport{
		ID:     "b1",
		Mode:   domain.ModeFixed,
		Result: domain.BatchResult{Level: domain.LevelWarning, Message: "m"},
		Items: []domain.ItemReport{
			{Patch: "a", Succeeded: true},
			{Patch: "b"},
		},
	}
	e := domain.NewHistoryEntry(r, "abc", now)
	assert.Equal(t, now, e.Timestamp)
	assert.Equal(t, "abc", e.CommitHash)
	assert.Equal(t, domain.ModeFixed, e.Mode)
	assert.Equal(t, domain.LevelWarning, e.Level)
	assert.Equal(t, 2, e.Patches)
	assert.Equal(t, 1, e.Succeeded)
}

func TestItemsFrom(t *testing.T) {
	items := domain.ItemsFrom([]domain.Outcome[domain.FixedSeverity]{
		{Patch: "a", Severity: domain.FixedWarning, Pass: 1},
		{Patch: "b", Severity: domain.FixedInvalidPatch, Description: "bad"},
	})
	assert.Len(t, items, 2)
	assert.Equal(t, "Warning", items[0].Severity)
	assert.True(t, items[0].Succeeded)
	assert.False(t, items[1].Succeeded)
	assert.Equal(t, "bad", items[1].Description)
}
