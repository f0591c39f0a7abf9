package cli

import (
	"context"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/perivale/flywheel/pkg/buildinfo"
	"github.com/perivale/flywheel/pkg/config"
)

// configFlag holds the --config path shared by all commands.
var configFlag string

// loadConfig reads the configuration selected by --config, falling back
// to defaults when no file is given.
func loadConfig() (config.Config, error) {
	return config.Load(configFlag)
}

// Execute runs the flywheel CLI and returns an error if any command fails.
// This is the main entry point for the CLI application.
//
// The function sets up the root command with all subcommands, configures
// logging based on the --verbose flag, and executes the command tree.
//
// Logging:
//   - Default: info level (logs to stderr)
//   - With --verbose (-v): debug level
//
// The logger is attached to the context and accessible to all commands via
// loggerFromContext.
func Execute(ctx context.Context) error {
	var verbose bool

	root := &cobra.Command{
		Use:          "flywheel",
		Short:        "Flywheel reduces IR graphs to a fixed point",
		Long:         `Flywheel is a graph-rewriting engine for sea-of-nodes intermediate representations. It loads a graph, drives a set of reduction rules to a fixed point, and exports the result for inspection.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&configFlag, "config", "", "path to a TOML config file")

	root.AddCommand(newReduceCmd())
	root.AddCommand(newExportCmd())
	root.AddCommand(newVerifyCmd())
	root.AddCommand(newStatsCmd())
	root.AddCommand(newTraceCmd())
	root.AddCommand(newExploreCmd())
	root.AddCommand(newCacheCmd())
	root.AddCommand(newCompletionCmd())

	return root.ExecuteContext(ctx)
}
