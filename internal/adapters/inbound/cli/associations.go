package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/patchkraft/patchkraft/internal/adapters/outbound/filesystem"
	"github.com/patchkraft/patchkraft/internal/adapters/outbound/tui"
	"github.com/patchkraft/patchkraft/internal/domain"
)

func newAssociationsCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "associations",
		Aliases: []string{"assoc"},
		Short:   "Inspect and edit remembered patch targets",
		Long:    "BPS patches name the checksum of their target. patchkraft remembers where each checksum was found so later batches can find targets on their own.",
	}
	cmd.AddCommand(newAssociationsListCmd(g))
	cmd.AddCommand(newAssociationsAddCmd(g))
	cmd.AddCommand(newAssociationsForgetCmd(g))
	return cmd
}

func newAssociationsListCmd(g *globalFlags) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List remembered targets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := g.load(cmd)
			if err != nil {
				return err
			}
			entries, err := env.Store.Load()
			if err != nil {
				return fmt.Errorf("loading associations: %w", err)
			}
			if jsonOutput {
				if entries == nil {
					entries = []domain.Association{}
				}
				return renderJSON(cmd, entries)
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderAssociations(entries, env.Store.Path()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output associations as JSON")
	return cmd
}

func newAssociationsAddCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "add PATCH TARGET",
		Short: "Remember TARGET as the target of PATCH",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := g.load(cmd)
			if err != nil {
				return err
			}

			file, err := filesystem.New().Open(args[0])
			if err != nil {
				return fmt.Errorf("opening patch: %w", err)
			}
			defer file.Close()

			stored, err := env.Store.Associate(domain.Patch{Name: args[0], File: file}, args[1])
			if err != nil {
				return fmt.Errorf("recording association: %w", err)
			}
			if !stored {
				return fmt.Errorf("%s does not identify its target; only BPS patches can be associated", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Associated %s with %s\n", args[0], args[1])
			return nil
		},
	}
}

func newAssociationsForgetCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "forget CHECKSUM",
		Short: "Forget the target remembered for CHECKSUM",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := g.load(cmd)
			if err != nil {
				return err
			}
			removed, err := env.Store.Forget(args[0])
			if err != nil {
				return fmt.Errorf("updating associations: %w", err)
			}
			if !removed {
				return fmt.Errorf("no association for %s", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Forgot %s\n", args[0])
			return nil
		},
	}
}
