// Package bootstrap wires the outbound adapters into a PatchService for the
// inbound adapters (CLI and MCP server).
package bootstrap

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/patchkraft/patchkraft/internal/adapters/outbound/codec"
	"github.com/patchkraft/patchkraft/internal/adapters/outbound/config"
	"github.com/patchkraft/patchkraft/internal/adapters/outbound/filesystem"
	"github.com/patchkraft/patchkraft/internal/adapters/outbound/gitinfo"
	"github.com/patchkraft/patchkraft/internal/adapters/outbound/header"
	"github.com/patchkraft/patchkraft/internal/adapters/outbound/history"
	"github.com/patchkraft/patchkraft/internal/adapters/outbound/romlist"
	"github.com/patchkraft/patchkraft/internal/application"
	"github.com/patchkraft/patchkraft/internal/domain"
)

// Env is a loaded project: its directory, configuration, logger and the
// association list it uses.
type Env struct {
	Dir    string
	Config domain.Config
	Logger *slog.Logger
	Store  *romlist.Store

	history domain.BatchHistory
	git     domain.GitInfo
	now     func() time.Time
}

// Load reads the configuration in dir. A non-empty logLevel overrides the
// configured one. Logs go to logOut.
func Load(dir, logLevel string, logOut io.Writer) (*Env, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg, err := config.New().Load(abs)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	logger, err := NewLogger(logOut, cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	assoc := cfg.AssociationsPath
	if assoc == "" {
		if assoc, err = romlist.DefaultPath(); err != nil {
			return nil, fmt.Errorf("locating associations: %w", err)
		}
	}

	return &Env{
		Dir:     abs,
		Config:  cfg,
		Logger:  logger,
		Store:   romlist.New(assoc, cfg.SearchDirs, cfg.Header.Size, logger),
		history: history.New(),
		git:     gitinfo.New(),
		now:     time.Now,
	}, nil
}

// NewLogger returns a text logger on w filtering below level
// (debug, info, warn or error).
func NewLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

// Service builds a PatchService over the local filesystem.
func (e *Env) Service(picker domain.TargetPicker) *application.PatchService {
	fs := filesystem.New()
	return application.NewPatchService(application.Dependencies{
		Patches:  fs,
		Targets:  fs,
		Matcher:  e.Store,
		Engine:   codec.NewEngine(fs, e.Config.Header.Size, e.Logger),
		Header:   header.New(e.Config.Header),
		Recorder: e.Store,
		Picker:   picker,
	}, e.Logger)
}

// Record appends report to the project history when history is enabled.
// Cancelled batches are not recorded. Failures are logged only.
func (e *Env) Record(report *domain.BatchReport) {
	if !e.Config.History || report == nil || report.Cancelled {
		return
	}
	commit, err := e.git.CommitHash(e.Dir)
	if err != nil {
		commit = ""
	}
	entry := domain.NewHistoryEntry(report, commit, e.now().UTC())
	if err := e.history.Save(e.Dir, entry); err != nil {
		e.Logger.Warn("cannot save history", "dir", e.Dir, "error", err)
	}
}

// History returns the recorded batches of the project.
func (e *Env) History() ([]domain.HistoryEntry, error) {
	return e.history.Load(e.Dir)
}

// NoPicker is used where nobody can be asked for a target.
type NoPicker struct{}

// PickTarget always fails with domain.ErrNoTarget.
func (NoPicker) PickTarget(context.Context, []string) (string, bool, error) {
	return "", false, domain.ErrNoTarget
}
