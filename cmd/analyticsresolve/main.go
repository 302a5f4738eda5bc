// Command analyticsresolve serves account resolution for GA4, Search
// Console and Merchant Center as MCP tools, and resolves or inventories
// accounts from the command line.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(defaultDeps()).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "analyticsresolve:", err)
		os.Exit(1)
	}
}
