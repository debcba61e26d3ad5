package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/patchkraft/patchkraft/internal/domain"
)

// Dependencies are the ports a PatchService drives.
type Dependencies struct {
	Patches  domain.PatchSource
	Targets  domain.TargetSource
	Matcher  domain.TargetMatcher
	Engine   domain.PatchEngine
	Header   domain.HeaderPolicy
	Recorder domain.AssociationRecorder
	Picker   domain.TargetPicker
}

// PatchService runs patch batches: a single patch, auto-matched batches with
// one retry pass, and batches against one chosen target.
type PatchService struct {
	patches  domain.PatchSource
	targets  domain.TargetSource
	matcher  domain.TargetMatcher
	engine   domain.PatchEngine
	header   domain.HeaderPolicy
	recorder domain.AssociationRecorder
	picker   domain.TargetPicker
	logger   *slog.Logger
}

// NewPatchService creates a PatchService. A nil logger discards all output.
func NewPatchService(deps Dependencies, logger *slog.Logger) *PatchService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &PatchService{
		patches: deps.Patches, targets: deps.Targets, matcher: deps.Matcher,
		engine: deps.Engine, header: deps.Header, recorder: deps.Recorder,
		picker: deps.Picker, logger: logger,
	}
}

// ProgressObserver receives engine progress for the item being applied.
type ProgressObserver func(patch string, done, total int64)

// ApplyOptions describes one batch.
type ApplyOptions struct {
	Patches []string
	// Target is an explicitly chosen target. When empty the service either
	// auto-matches or asks the picker.
	Target    string
	AutoMatch bool
	// Output overrides the output path. Only honored for a single patch.
	Output  string
	Observe ProgressObserver
}

// Apply runs a batch and returns its report. Per-item failures are part of
// the report; the error is reserved for misuse and unreachable outcomes.
func (s *PatchService) Apply(ctx context.Context, opts ApplyOptions) (*domain.BatchReport, error) {
	if len(opts.Patches) == 0 {
		return nil, domain.ErrNoPatches
	}

	id := uuid.NewString()
	log := s.logger.With("batch_id", id)
	log.Debug("batch started", "patches", len(opts.Patches), "auto_match", opts.AutoMatch)

	var (
		report *domain.BatchReport
		err    error
	)
	if len(opts.Patches) == 1 {
		report, err = s.applySingle(ctx, log, opts)
	} else {
		report, err = s.applyBatch(ctx, log, opts)
	}
	if err != nil {
		return nil, err
	}

	report.ID = id
	log.Info("batch finished", "mode", report.Mode, "level", report.Result.Level, "message", report.Result.Message)
	return report, nil
}

func (s *PatchService) applyBatch(ctx context.Context, log *slog.Logger, opts ApplyOptions) (*domain.BatchReport, error) {
	if opts.AutoMatch && opts.Target == "" {
		report, handled, err := s.applyAutoMatch(ctx, log, opts.Patches, opts.Observe)
		if err != nil || handled {
			return report, err
		}
		log.Info("auto-match applied nothing, asking for a target")
	}

	target, ok, err := s.resolveTarget(ctx, opts)
	if err != nil {
		return nil, err
	}
	if !ok {
		return cancelledReport(domain.ModeFixed), nil
	}
	return s.applyFixedTarget(ctx, log, opts.Patches, target, opts.AutoMatch, opts.Observe)
}

func (s *PatchService) resolveTarget(ctx context.Context, opts ApplyOptions) (string, bool, error) {
	if opts.Target != "" {
		return opts.Target, true, nil
	}
	path, ok, err := s.picker.PickTarget(ctx, opts.Patches)
	if err != nil {
		return "", false, fmt.Errorf("picking target: %w", err)
	}
	if !ok || path == "" {
		return "", false, nil
	}
	return path, true, nil
}

// checkpoint builds the progress callback for one item. It forwards progress
// to the observer and aborts the item once ctx is done.
func checkpoint(ctx context.Context, patch string, observe ProgressObserver) domain.ProgressFunc {
	return func(done, total int64) bool {
		if observe != nil {
			observe(patch, done, total)
		}
		return ctx.Err() == nil
	}
}

func cancelledReport(mode domain.Mode) *domain.BatchReport {
	return &domain.BatchReport{
		Mode:      mode,
		Cancelled: true,
		Result:    domain.BatchResult{Level: domain.LevelOk, Message: "Cancelled: no target selected."},
		Items:     []domain.ItemReport{},
	}
}
