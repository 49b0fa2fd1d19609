package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dshills/chunkgrep/internal/cmd"
)

func main() {
	// Cancel the run on SIGINT/SIGTERM; workers stop and partial output is flushed
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cmd.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
