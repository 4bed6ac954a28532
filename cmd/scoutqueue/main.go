// Command scoutqueue runs a resumable, rate-limit-aware search crawl
// against a user-supplied command file (spec.md §6).
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/cklxx/scoutqueue/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCommand()
	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
