package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/patchkraft/patchkraft/internal/adapters/outbound/tui"
	"github.com/patchkraft/patchkraft/internal/application"
	"github.com/patchkraft/patchkraft/internal/bootstrap"
	"github.com/patchkraft/patchkraft/internal/domain"
)

type applyFlags struct {
	target     string
	output     string
	auto       bool
	noAuto     bool
	jsonOutput bool
	progress   bool
}

func bindApplyFlags(fs *pflag.FlagSet, f *applyFlags) {
	fs.StringVarP(&f.target, "target", "t", "", "Apply every patch to this file instead of finding targets")
	fs.StringVarP(&f.output, "output", "o", "", "Output file (single patch only)")
	fs.BoolVar(&f.auto, "auto", false, "Find targets for patches that identify them (overrides auto_match)")
	fs.BoolVar(&f.noAuto, "no-auto", false, "Never find targets on its own (overrides auto_match)")
	fs.BoolVar(&f.jsonOutput, "json", false, "Output the batch report as JSON")
	fs.BoolVar(&f.progress, "progress", false, "Show a progress spinner while patching")
}

// autoMatch resolves the effective auto-match setting.
func (f *applyFlags) autoMatch(configured bool) bool {
	switch {
	case f.auto:
		return true
	case f.noAuto:
		return false
	default:
		return configured
	}
}

func newApplyCmd(g *globalFlags) *cobra.Command {
	f := &applyFlags{}

	cmd := &cobra.Command{
		Use:   "apply PATCH...",
		Short: "Apply one or more patches",
		Long: "Apply IPS or BPS patches. Each output is written next to its patch, named after the patch " +
			"with the target's extension. The exit code is 0 when everything applied cleanly, " +
			"1 when some patches failed or look suspicious and 2 when nothing could be applied.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.output != "" && len(args) > 1 {
				return fmt.Errorf("--output needs exactly one patch, got %d", len(args))
			}

			env, err := g.load(cmd)
			if err != nil {
				return err
			}

			var picker domain.TargetPicker = newPromptPicker(cmd.InOrStdin(), cmd.ErrOrStderr())
			if f.progress {
				picker = bootstrap.NoPicker{}
			}
			svc := env.Service(picker)

			opts := application.ApplyOptions{
				Patches:   args,
				Target:    f.target,
				AutoMatch: f.autoMatch(env.Config.AutoMatch),
				Output:    f.output,
			}

			var report *domain.BatchReport
			if f.progress {
				run := func(ctx context.Context, observe func(string, int64, int64)) (*domain.BatchReport, error) {
					opts.Observe = observe
					return svc.Apply(ctx, opts)
				}
				report, err = tui.RunWithProgress(cmd.Context(), run, cmd.InOrStdin(), cmd.ErrOrStderr())
			} else {
				report, err = svc.Apply(cmd.Context(), opts)
			}
			if err != nil {
				return fmt.Errorf("apply failed: %w", err)
			}

			env.Record(report)

			if f.jsonOutput {
				if err := renderJSON(cmd, report); err != nil {
					return err
				}
			} else {
				fmt.Fprint(cmd.OutOrStdout(), tui.RenderReport(report))
			}

			if report.Result.Level != domain.LevelOk {
				return &ExitError{Level: report.Result.Level}
			}
			return nil
		},
	}

	bindApplyFlags(cmd.Flags(), f)
	cmd.MarkFlagsMutuallyExclusive("auto", "no-auto")

	return cmd
}

func renderJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
