package application

import (
	"context"
	"log/slog"

	"github.com/patchkraft/patchkraft/internal/domain"
)

// applySingle handles a batch of exactly one patch. The engine's own
// description is the message and there are no presentation tables.
func (s *PatchService) applySingle(ctx context.Context, log *slog.Logger, opts ApplyOptions) (*domain.BatchReport, error) {
	name := opts.Patches[0]
	report := &domain.BatchReport{Mode: domain.ModeSingle}

	file, err := s.patches.Open(name)
	if err != nil {
		log.Warn("cannot open patch", "patch", name, "error", err)
		report.Result = domain.BatchResult{Level: domain.LevelBroken, Message: "Couldn't read the input patch."}
		report.Items = []domain.ItemReport{{Patch: name, Severity: "patch_read_failed", Description: err.Error()}}
		return report, nil
	}
	defer file.Close()
	patch := domain.Patch{Name: name, File: file}

	targetPath := opts.Target
	if targetPath == "" && opts.AutoMatch {
		targetPath, _ = s.matcher.FindTarget(ctx, patch)
		if targetPath != "" {
			log.Debug("auto-matched target", "patch", name, "target", targetPath)
		}
	}
	inferred := opts.Target == "" && targetPath != ""
	if targetPath == "" {
		path, ok, err := s.resolveTarget(ctx, opts)
		if err != nil {
			return nil, err
		}
		if !ok {
			return cancelledReport(domain.ModeSingle), nil
		}
		targetPath = path
	}
	report.Target = targetPath

	contents, err := s.targets.Load(targetPath)
	if err != nil {
		log.Warn("cannot read target", "target", targetPath, "error", err)
		report.Result = domain.BatchResult{Level: domain.LevelBroken, Message: "Couldn't read the input target."}
		report.Items = []domain.ItemReport{{
			Patch: name, Target: targetPath,
			Severity: domain.StatusTargetReadFailed.String(), Description: err.Error(),
		}}
		return report, nil
	}
	target := domain.Target{Path: targetPath, Contents: contents}

	output := opts.Output
	if output == "" {
		output = domain.OutputPath(name, targetPath)
	}

	res := s.engine.Apply(ctx, domain.ApplyRequest{
		Patch:       patch,
		Target:      target,
		OutputPath:  output,
		StripHeader: s.header.ShouldStripHeader(target),
		Relaxed:     inferred,
		Progress:    checkpoint(ctx, name, opts.Observe),
	})
	log.Debug("patch applied", "patch", name, "status", res.Status)

	if res.Status.Succeeded() && opts.AutoMatch {
		s.recorder.Record(ctx, patch, targetPath)
	}

	item := domain.ItemReport{
		Patch: name, Target: targetPath,
		Severity: res.Status.String(), Succeeded: res.Status.Succeeded(),
		Description: res.Description, Pass: 1,
	}
	if item.Succeeded {
		item.Output = output
	}
	report.Items = []domain.ItemReport{item}
	report.Worst = res.Status.String()
	report.Result = domain.BatchResult{Level: res.Level(), Message: res.Description}
	return report, nil
}
