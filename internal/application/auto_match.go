package application

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/patchkraft/patchkraft/internal/domain"
)

// maxAutoPasses bounds the auto-match flow: one normal pass and at most one
// fallback pass.
const maxAutoPasses = 2

// matchState is what the auto-match flow tracks across a batch.
type matchState struct {
	// foundTarget is the first target inferred for any patch.
	foundTarget string
	// consistent stays true while every patch that could identify a target
	// pointed at foundTarget and applied cleanly.
	consistent bool
	// usingFallback is set during the retry pass.
	usingFallback bool
}

func (m *matchState) shouldRetry(worst domain.AutoSeverity, anySuccess bool) bool {
	return anySuccess &&
		worst == domain.AutoNoAutoMatch &&
		m.foundTarget != "" &&
		m.consistent &&
		!m.usingFallback
}

// applyAutoMatch applies every patch to the target the matcher proposes.
// When the only thing wrong is that some patches had no target, and every
// other patch agreed on the same one, it retries those patches against it.
// handled is false when nothing succeeded; the caller then falls back to the
// fixed-target flow.
func (s *PatchService) applyAutoMatch(ctx context.Context, log *slog.Logger, patches []string, observe ProgressObserver) (report *domain.BatchReport, handled bool, err error) {
	state := matchState{consistent: true}
	outcomes := make([]domain.Outcome[domain.AutoSeverity], len(patches))

	var (
		worst      domain.AutoSeverity
		anySuccess bool
		passes     int
	)
	for pass := 1; pass <= maxAutoPasses; pass++ {
		state.usingFallback = pass > 1
		passes = pass
		for i, name := range patches {
			if state.usingFallback && outcomes[i].Target != "" {
				continue
			}
			if outcome, processed := s.autoMatchOne(ctx, log, &state, name, pass, observe); processed {
				outcomes[i] = outcome
			}
		}
		worst, anySuccess = domain.Reduce(outcomes)
		if !state.shouldRetry(worst, anySuccess) {
			break
		}
		log.Info("retrying unmatched patches against the shared target", "target", state.foundTarget)
	}

	if !anySuccess {
		log.Debug("auto-match found nothing to apply", "worst", worst)
		return nil, false, nil
	}

	result, err := domain.AutoTable.Present(anySuccess, worst)
	if err != nil {
		return nil, false, err
	}
	return &domain.BatchReport{
		Mode:   domain.ModeAuto,
		Target: state.foundTarget,
		Passes: passes,
		Worst:  worst.String(),
		Result: result,
		Items:  domain.ItemsFrom(outcomes),
	}, true, nil
}

// autoMatchOne processes one patch in one pass. During the fallback pass it
// is only called for patches that had no target in the first pass, and it
// skips (processed is false) a patch the matcher now places elsewhere.
func (s *PatchService) autoMatchOne(ctx context.Context, log *slog.Logger, state *matchState, name string, pass int, observe ProgressObserver) (outcome domain.Outcome[domain.AutoSeverity], processed bool) {
	outcome = domain.Outcome[domain.AutoSeverity]{Patch: name, Pass: pass}

	file, err := s.patches.Open(name)
	if err != nil {
		log.Warn("cannot open patch", "patch", name, "error", err)
		state.consistent = false
		outcome.Severity = domain.AutoPatchReadFailed
		outcome.Description = err.Error()
		return outcome, true
	}
	defer file.Close()
	patch := domain.Patch{Name: name, File: file}

	target, possiblyApplicable := s.matcher.FindTarget(ctx, patch)
	switch {
	case state.usingFallback:
		if target == "" {
			target = state.foundTarget
		} else if filepath.Clean(target) != filepath.Clean(state.foundTarget) {
			log.Debug("skipping patch matched elsewhere on retry", "patch", name, "target", target)
			return outcome, false
		}
	case target == "":
		if possiblyApplicable {
			state.consistent = false
		}
		outcome.Severity = domain.AutoNoAutoMatch
		outcome.Description = "No matching target found."
		return outcome, true
	}

	if state.foundTarget == "" {
		state.foundTarget = target
	} else if filepath.Clean(state.foundTarget) != filepath.Clean(target) {
		state.consistent = false
	}

	output := domain.OutputPath(name, target)
	res := s.engine.Apply(ctx, domain.ApplyRequest{
		Patch:      patch,
		Target:     domain.Target{Path: target},
		OutputPath: output,
		Relaxed:    true,
		Progress:   checkpoint(ctx, name, observe),
	})
	if !res.Status.Succeeded() {
		state.consistent = false
	}
	log.Debug("patch applied", "patch", name, "target", target, "pass", pass, "status", res.Status)

	outcome.Target = target
	outcome.Severity = res.Auto()
	outcome.Description = res.Description
	if res.Status.Succeeded() {
		outcome.Output = output
	}
	return outcome, true
}
