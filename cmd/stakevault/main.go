// Command stakevault operates a staking vault kept in a local data
// directory. Token movements and staking go through a chain node's
// JSON-RPC interface.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "stakevault:", err)
		os.Exit(1)
	}
}
