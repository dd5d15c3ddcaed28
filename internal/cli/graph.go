package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/revlane/revlane/pkg/pipeline"
)

// graphCommand creates the graph command, the default way to draw history.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		skip       int
		limit      int
		noColor    bool
		noRefs     bool
		noCache    bool
		refresh    bool
		detailed   bool
	)

	cmd := &cobra.Command{
		Use:   "graph [path]",
		Short: "Draw the commit graph of a repository",
		Long: `Draw the commit graph of a repository.

Walks history newest-first from all refs, assigns each branch a lane, and
renders the result. The default output is an ANSI graph on stdout; other
formats (json, dot, svg) can be written to files with --output.

Results are cached keyed by HEAD and the ref tips, so redrawing an
unchanged repository is instant. Use --refresh to bypass the cache.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.pipelineOptions(repoArg(args))
			opts.Skip = skip
			if limit > 0 {
				opts.Limit = limit
			}
			opts.Formats = parseFormats(formatsStr)
			opts.NoRefs = noRefs
			opts.Refresh = refresh
			opts.Detailed = detailed
			opts.Color = !noColor && term.IsTerminal(int(os.Stdout.Fd()))
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			return c.runGraph(withLogger(cmd.Context(), c.Logger), opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): text (default), json, dot, svg (comma-separated)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().IntVar(&skip, "skip", 0, "number of commits to skip")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum commits to draw")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable ANSI colors")
	cmd.Flags().BoolVar(&noRefs, "no-refs", false, "skip branch and tag decorations")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute even if cached")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include author info in dot/svg labels")

	return cmd
}

// runGraph executes the pipeline and writes the artifacts.
func (c *CLI) runGraph(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(loggerFromContext(ctx))
	result, err := runner.Execute(ctx, opts)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Laid out %d commits", result.Stats.CommitCount))

	// Text goes to stdout unless an output file was asked for. Everything
	// else defaults to a file next to the repository.
	if output == "" && len(opts.Formats) == 1 && opts.Formats[0] == pipeline.FormatText {
		os.Stdout.Write(result.Artifacts[pipeline.FormatText])
		printStats(result.Stats.CommitCount, result.Stats.LaneCount, result.CacheInfo.GraphHit)
		if opts.Color {
			printNextStep("Browse interactively", "revlane log")
		}
		return nil
	}

	if err := writeArtifacts(result.Artifacts, opts.Formats, output); err != nil {
		return err
	}
	printStats(result.Stats.CommitCount, result.Stats.LaneCount, result.CacheInfo.GraphHit)
	return nil
}

// writeArtifacts writes rendered outputs to disk. With one format, output
// names the file directly; with several, it is the base path and each
// format appends its extension.
func writeArtifacts(artifacts map[string][]byte, formats []string, output string) error {
	if output == "" {
		output = "graph"
	}
	for _, format := range formats {
		path := output
		if len(formats) > 1 {
			path = fmt.Sprintf("%s.%s", output, format)
		}
		if err := os.WriteFile(path, artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	return nil
}
