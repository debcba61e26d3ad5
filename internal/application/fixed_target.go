package application

import (
	"context"
	"log/slog"

	"github.com/patchkraft/patchkraft/internal/domain"
)

// applyFixedTarget applies every patch to one chosen target, loaded once.
// When record is set, the first successful application is remembered so a
// later auto-match can find the target by itself.
func (s *PatchService) applyFixedTarget(ctx context.Context, log *slog.Logger, patches []string, targetPath string, record bool, observe ProgressObserver) (*domain.BatchReport, error) {
	report := &domain.BatchReport{Mode: domain.ModeFixed, Target: targetPath, Passes: 1}

	contents, err := s.targets.Load(targetPath)
	if err != nil {
		log.Warn("cannot read target", "target", targetPath, "error", err)
		result, perr := domain.FixedTable.Present(false, domain.FixedTargetUnreadable)
		if perr != nil {
			return nil, perr
		}
		report.Worst = domain.FixedTargetUnreadable.String()
		report.Result = result
		report.Items = []domain.ItemReport{}
		return report, nil
	}
	target := domain.Target{Path: targetPath, Contents: contents}
	strip := s.header.ShouldStripHeader(target)
	log.Debug("target loaded", "target", targetPath, "bytes", len(contents), "strip_header", strip)

	recorded := !record
	outcomes := make([]domain.Outcome[domain.FixedSeverity], 0, len(patches))
	for _, name := range patches {
		o := s.fixedOne(ctx, log, name, target, strip, observe, func(p domain.Patch) {
			if !recorded {
				s.recorder.Record(ctx, p, targetPath)
				recorded = true
			}
		})
		outcomes = append(outcomes, o)
	}

	worst, anySuccess := domain.Reduce(outcomes)
	result, err := domain.FixedTable.Present(anySuccess, worst)
	if err != nil {
		return nil, err
	}
	report.Worst = worst.String()
	report.Result = result
	report.Items = domain.ItemsFrom(outcomes)
	return report, nil
}

func (s *PatchService) fixedOne(ctx context.Context, log *slog.Logger, name string, target domain.Target, strip bool, observe ProgressObserver, onSuccess func(domain.Patch)) domain.Outcome[domain.FixedSeverity] {
	outcome := domain.Outcome[domain.FixedSeverity]{Patch: name, Target: target.Path, Pass: 1}

	file, err := s.patches.Open(name)
	if err != nil {
		log.Warn("cannot open patch", "patch", name, "error", err)
		outcome.Severity = domain.FixedReadFailed
		outcome.Description = err.Error()
		return outcome
	}
	defer file.Close()
	patch := domain.Patch{Name: name, File: file}

	output := domain.OutputPath(name, target.Path)
	res := s.engine.Apply(ctx, domain.ApplyRequest{
		Patch:       patch,
		Target:      target,
		OutputPath:  output,
		StripHeader: strip,
		Progress:    checkpoint(ctx, name, observe),
	})
	log.Debug("patch applied", "patch", name, "status", res.Status)

	outcome.Severity = res.Fixed()
	outcome.Description = res.Description
	if res.Status.Succeeded() {
		outcome.Output = output
		onSuccess(patch)
	}
	return outcome
}
