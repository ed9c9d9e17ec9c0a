package cli

import (
	"context"
	stderrors "errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/hemicycle/pkg/errors"
)

// Exit codes returned by [ExitCode].
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitConfig      = 2
	ExitInterrupted = 130
)

// Execute runs the hemicycle CLI with args and returns an error if the command
// fails. Command output goes to stdout; logs, spinners and status lines go to
// stderr.
//
// Logging:
//   - Default: info level
//   - With --verbose (-v): debug level
//
// The logger is attached to the command context and accessible to all
// commands via loggerFromContext.
//
// Example:
//
//	func main() {
//	    ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
//	    defer cancel()
//	    if err := cli.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
//	        os.Exit(cli.ExitCode(err))
//	    }
//	}
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var verbose bool

	c := New(stderr, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		level := LogInfo
		if verbose {
			level = LogDebug
		}
		c.SetLogLevel(level)
		cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		return nil
	}

	return root.ExecuteContext(ctx)
}

// ExitCode maps an error returned by [Execute] to a process exit code.
// Interrupts exit with 130; configurations that cannot be built into a
// broadcast exit with 2, since retrying them cannot succeed.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case stderrors.Is(err, context.Canceled):
		return ExitInterrupted
	case errors.IsFatal(err):
		return ExitConfig
	}
	return ExitFailure
}
