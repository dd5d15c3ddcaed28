package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/revlane/revlane/pkg/pipeline"
)

// exportCommand creates the export command for file output formats.
// It is the same pipeline as graph with file-friendly defaults.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		limit      int
		detailed   bool
		noCache    bool
	)

	cmd := &cobra.Command{
		Use:   "export [path]",
		Short: "Export the commit graph to dot, svg, or json files",
		Long: `Export the commit graph to dot, svg, or json files.

A shortcut for 'graph --format ... --output ...' with svg as the default
format. SVG rendering runs Graphviz in-process; no external binary is
needed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.pipelineOptions(repoArg(args))
			if limit > 0 {
				opts.Limit = limit
			}
			opts.Formats = parseFormats(formatsStr)
			if formatsStr == "" {
				opts.Formats = []string{pipeline.FormatSVG}
			}
			opts.Detailed = detailed
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}

			runner, err := c.newRunner(noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			spinner := newSpinner(cmd.Context(), "Rendering graph...")
			spinner.Start()
			result, err := runner.Execute(cmd.Context(), opts)
			if err != nil {
				spinner.StopWithError("Export failed")
				return err
			}
			spinner.Stop()

			if err := writeArtifacts(result.Artifacts, opts.Formats, output); err != nil {
				return err
			}
			printSuccess("Exported %d commits", result.Stats.CommitCount)
			return nil
		},
	}

	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), dot, json (comma-separated)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum commits to export")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include author info in labels")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}
