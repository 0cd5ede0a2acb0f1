package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	// Both serve and extract stop cleanly on Ctrl+C / SIGTERM.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
