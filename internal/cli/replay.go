package cli

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/spf13/cobra"

	"github.com/matzehuels/hemicycle/pkg/config"
	"github.com/matzehuels/hemicycle/pkg/feed"
	"github.com/matzehuels/hemicycle/pkg/frame"
	hio "github.com/matzehuels/hemicycle/pkg/io"
	"github.com/matzehuels/hemicycle/pkg/pipeline"
)

// replayOpts holds the command-line flags for the replay command.
type replayOpts struct {
	output  string // frame JSON output path
	svg     string // SVG chart output path
	strict  bool   // stop at the first rejected update
	noCache bool   // bypass the assignment cache
}

// replayCommand creates the replay command for applying a recorded feed.
func (c *CLI) replayCommand() *cobra.Command {
	var opts replayOpts

	cmd := &cobra.Command{
		Use:   "replay [config] [updates.jsonl]",
		Short: "Apply a recorded result feed and show the final frame",
		Long: `Replay applies every update of a JSON Lines result feed to a fresh
broadcast and prints the resulting chart and seat bars. The final frame can be
written as JSON, and the chart as SVG coloured by the final results.`,
		Example: `  hemicycle replay house.toml results.jsonl
  hemicycle replay house.toml results.jsonl -o frame.json --svg chart.svg`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runReplay(cmd, args[0], args[1], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the final frame as JSON")
	cmd.Flags().StringVar(&opts.svg, "svg", "", "write the chart as SVG")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "stop at the first rejected update")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the assignment cache")

	return cmd
}

func (c *CLI) runReplay(cmd *cobra.Command, cfgPath, updatesPath string, opts replayOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	status := cmd.ErrOrStderr()

	cfg, err := c.loadConfig(cfgPath)
	if err != nil {
		return err
	}
	b, err := c.startBroadcast(ctx, cfg, opts.noCache)
	if err != nil {
		return err
	}

	prog := newProgress(logger)
	coord := feed.NewCoordinator(b, feed.WithLogger(logger))
	src := &feed.FileSource{Path: updatesPath, Strict: opts.strict, Logger: logger}
	if err := runFeed(ctx, coord, "file", src); err != nil {
		return err
	}
	f := coord.Frame()
	prog.done(fmt.Sprintf("Replayed %d updates", f.Updates))

	printFrame(cmd.OutOrStdout(), cfg, f)

	if opts.output != "" {
		if err := hio.WriteFrameFile(opts.output, f); err != nil {
			return err
		}
		printFile(status, opts.output)
	}
	if opts.svg != "" {
		data, err := pipeline.Render(ctx, b.Assignment, pipeline.FormatSVG, pipeline.Fills(f))
		if err != nil {
			return err
		}
		if err := writeOutput(ctx, cmd, opts.svg, data); err != nil {
			return err
		}
	}
	printNextStep(status, "Serve live results", fmt.Sprintf("%s serve %s", appName, cfgPath))
	return nil
}

// startBroadcast allocates cfg and starts a broadcast over it.
func (c *CLI) startBroadcast(ctx context.Context, cfg *config.Config, noCache bool) (*pipeline.Broadcast, error) {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return nil, err
	}
	defer runner.Cache.Close()
	return runner.Start(ctx, cfg, pipeline.Options{})
}

// runFeed runs coord until src is exhausted.
func runFeed(ctx context.Context, coord *feed.Coordinator, name string, src feed.Source) error {
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		coord.Run(ctx)
	}()
	err := coord.Feed(ctx, name, src)
	cancel()
	wg.Wait()
	return err
}

// printFrame prints the chart, the bars and the reporting progress of f.
func printFrame(w io.Writer, cfg *config.Config, f frame.Frame) {
	if f.Title != "" {
		fmt.Fprintln(w, StyleTitle.Render(f.Title))
	}
	fmt.Fprint(w, renderDots(f))
	fmt.Fprintln(w, renderBars(f, sideNames(cfg)))
	fmt.Fprintln(w, StyleDim.Render(progressLine(f)))
}
