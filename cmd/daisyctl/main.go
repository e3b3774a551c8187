package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"daisy/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCommand(nil, os.Stdout).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "daisyctl:", err)
		os.Exit(1)
	}
}
