package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/perivale/flywheel/pkg/pipeline"
)

// newExportCmd creates the export command: convert a graph file to other
// formats without reducing it.
func newExportCmd() *cobra.Command {
	var output, formatsStr string
	var detailed bool

	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Export a graph as JSON, DOT, or SVG without reducing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			formats := splitList(formatsStr)
			if formats == nil {
				formats = cfg.Render.Formats
			}

			runner := pipeline.NewRunner(nil, logger)
			defer runner.Close()

			input := args[0]
			g, err := runner.Load(input)
			if err != nil {
				return err
			}
			logger.Debugf("Loaded graph: %d live nodes", len(g.Reachable()))

			artifacts, err := runner.Export(ctx, g, pipeline.Options{
				Formats:  formats,
				Detailed: detailed || cfg.Render.Detailed,
			})
			if err != nil {
				return err
			}

			base := basePath(output, input)
			for _, format := range formats {
				path := fmt.Sprintf("%s.%s", base, format)
				if path == input {
					// Exporting json next to a json input would clobber it.
					path = fmt.Sprintf("%s_export.%s", base, format)
				}
				if err := os.WriteFile(path, artifacts[format], 0644); err != nil {
					return err
				}
				printFile(path)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output base path (defaults next to the input)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): json, dot, svg (comma-separated)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "show node IDs and arities in renderings")

	return cmd
}
