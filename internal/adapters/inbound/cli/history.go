package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/patchkraft/patchkraft/internal/adapters/outbound/tui"
	"github.com/patchkraft/patchkraft/internal/domain"
)

func newHistoryCmd(g *globalFlags) *cobra.Command {
	var (
		jsonOutput bool
		last       int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show previous batch results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := g.load(cmd)
			if err != nil {
				return err
			}
			entries, err := env.History()
			if err != nil {
				return fmt.Errorf("loading history: %w", err)
			}
			if last > 0 && len(entries) > last {
				entries = entries[len(entries)-last:]
			}
			if jsonOutput {
				if entries == nil {
					entries = []domain.HistoryEntry{}
				}
				return renderJSON(cmd, entries)
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderHistory(entries))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output history as JSON")
	cmd.Flags().IntVarP(&last, "last", "n", 0, "Only show the last N batches")
	return cmd
}
