package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/hemicycle/pkg/config"
	"github.com/matzehuels/hemicycle/pkg/pipeline"
)

// allocateOpts holds the command-line flags for the allocate command.
type allocateOpts struct {
	format  string // output format: text, json, dot or svg
	output  string // output file path; stdout when empty
	noCache bool   // bypass the assignment cache
	refresh bool   // recompute and overwrite the cached assignment
}

// allocateCommand creates the allocate command for assigning seats to races.
func (c *CLI) allocateCommand() *cobra.Command {
	opts := allocateOpts{format: pipeline.FormatText}

	cmd := &cobra.Command{
		Use:   "allocate [config]",
		Short: "Assign the seats of a chart to its races",
		Long: `Allocate assigns every seat of the configured rows to a race so that the
seats of each race are contiguous. The result is printed as a text chart or
rendered as JSON, Graphviz DOT or SVG. Assignments are cached by layout.`,
		Example: `  hemicycle allocate house.toml
  hemicycle allocate house.toml -f svg -o house.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pipeline.ValidateFormat(opts.format); err != nil {
				return err
			}
			return c.runAllocate(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: text (default), json, dot, svg")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the assignment cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute the assignment even if cached")

	return cmd
}

func (c *CLI) runAllocate(cmd *cobra.Command, path string, opts allocateOpts) error {
	ctx := cmd.Context()
	status := cmd.ErrOrStderr()

	cfg, err := c.loadConfig(path)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Cache.Close()

	spinner := newSpinnerWithContext(ctx, status, fmt.Sprintf("Allocating %d seats...", cfg.Seats()))
	spinner.Start()
	a, stats, err := runner.AllocateWithStats(ctx, cfg, pipeline.Options{Refresh: opts.refresh})
	if err != nil {
		spinner.StopWithError("Allocation failed")
		return err
	}
	spinner.StopWithSuccess(fmt.Sprintf("Allocated %s", title(cfg, path)))
	printStats(status, cfg.Seats(), len(cfg.Entries), stats.AllocateTime, stats.CacheHit)

	data, err := pipeline.Render(ctx, a, opts.format, previousFills(cfg))
	if err != nil {
		return err
	}
	return writeOutput(ctx, cmd, opts.output, data)
}

// previousFills colours every entry with its previous party.
func previousFills(cfg *config.Config) map[string]string {
	p := cfg.Palette()
	fills := make(map[string]string, len(cfg.Entries))
	for _, e := range cfg.ResultEntries() {
		fills[e.ID] = p.Party(e.Previous)
	}
	return fills
}

// writeOutput writes data to path, or to the command's stdout when path is
// empty.
func writeOutput(ctx context.Context, cmd *cobra.Command, path string, data []byte) error {
	if path == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	loggerFromContext(ctx).Debug("wrote output", "path", path, "bytes", len(data))
	printFile(cmd.ErrOrStderr(), path)
	return nil
}

// title names a broadcast for status lines.
func title(cfg *config.Config, path string) string {
	if cfg.Title != "" {
		return cfg.Title
	}
	return path
}
