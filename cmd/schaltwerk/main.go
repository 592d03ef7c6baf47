package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/schaltwerk/schaltwerk/cmd/schaltwerk/cli"
)

func main() {
	// Cancel the command context on SIGINT/SIGTERM. Commands open their
	// engine with this context and close it with an explicit Shutdown on the
	// way out, so teardown never depends on finalizer timing.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	code := cli.Execute(ctx)
	stop()
	os.Exit(code)
}
