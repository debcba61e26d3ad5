package cli

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/patchkraft/patchkraft/internal/bootstrap"
)

var (
	version = "dev"
	commit  = "none"
)

type globalFlags struct {
	dir      string
	logLevel string
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	cmd := &cobra.Command{
		Use:   "patchkraft",
		Short: "Apply ROM patches in batches",
		Long: "patchkraft applies IPS and BPS patches, one at a time or in batches. " +
			"Batches either find each patch's target on their own or apply every patch to one chosen target.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&g.dir, "dir", ".", "Project directory holding .patchkraft.yaml")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides the config")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newApplyCmd(g))
	cmd.AddCommand(newAssociationsCmd(g))
	cmd.AddCommand(newHistoryCmd(g))
	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newMCPCmd())
	return cmd
}

// load reads the project configuration named by the global flags.
func (g *globalFlags) load(cmd *cobra.Command) (*bootstrap.Env, error) {
	return bootstrap.Load(g.dir, g.logLevel, cmd.ErrOrStderr())
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

// Execute runs the CLI. An interrupt cancels the running batch.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return newRootCmd().ExecuteContext(ctx)
}
