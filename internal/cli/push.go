package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/hemicycle/pkg/client"
	"github.com/matzehuels/hemicycle/pkg/errors"
	"github.com/matzehuels/hemicycle/pkg/feed"
	hio "github.com/matzehuels/hemicycle/pkg/io"
)

// pushOpts holds the command-line flags for the push command.
type pushOpts struct {
	server   string        // base URL of the server
	interval time.Duration // delay between updates
	strict   bool          // stop at the first rejected update
}

// pushCommand creates the push command sending a feed to a running server.
func (c *CLI) pushCommand() *cobra.Command {
	opts := pushOpts{server: envOr("SERVER", "http://localhost:8080")}

	cmd := &cobra.Command{
		Use:   "push [updates.jsonl]",
		Short: "Send a result feed to a running server",
		Long: `Push submits every update of a JSON Lines result feed to a server started
with "hemicycle serve". Rejected updates are reported and skipped unless
--strict is set.`,
		Example: `  hemicycle push results.jsonl --server http://localhost:8080 --interval 500ms`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := errors.ValidateURL(opts.server, "http", "https"); err != nil {
				return err
			}
			return c.runPush(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.server, "server", opts.server, "server URL")
	cmd.Flags().DurationVar(&opts.interval, "interval", 0, "delay between updates")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "stop at the first rejected update")

	return cmd
}

func (c *CLI) runPush(cmd *cobra.Command, path string, opts pushOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	status := cmd.ErrOrStderr()

	cl := client.New(opts.server)
	info, err := cl.Broadcast(ctx)
	if err != nil {
		return err
	}
	printInfo(status, "Pushing to %s (%s)", info.Title, info.ID)

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Wrap(errors.ErrCodeFileNotFound, err, "updates %s not found", path)
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var sent, rejected int
	prog := newProgress(logger)
	err = hio.ScanUpdates(f, func(u feed.Update) error {
		if sent+rejected > 0 && opts.interval > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(opts.interval):
			}
		}
		resp, err := cl.Submit(ctx, u)
		if err != nil {
			if opts.strict || !isRejection(err) {
				return err
			}
			rejected++
			printWarning(status, "%s: %s", u.Entry, errors.UserMessage(err))
			return nil
		}
		sent++
		logger.Debug("pushed update", "entry", resp.Update.Entry, "seq", resp.Update.Seq, "reporting", resp.Frame.Reporting)
		return nil
	})
	prog.done(fmt.Sprintf("Pushed %d updates", sent))
	if rejected > 0 {
		printDetail(status, "%d updates rejected", rejected)
	}
	return err
}

// isRejection reports whether the server refused the update itself, as
// opposed to failing to process it.
func isRejection(err error) bool {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidUpdate, errors.ErrCodeUnknownEntry, errors.ErrCodeUnknownParty, errors.ErrCodeInvalidInput:
		return true
	}
	return false
}
