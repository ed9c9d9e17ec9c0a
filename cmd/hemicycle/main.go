package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/matzehuels/hemicycle/internal/cli"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cli.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		code := cli.ExitCode(err)
		if code != cli.ExitInterrupted {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(code)
	}
}
