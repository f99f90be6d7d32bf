// Command evalctl runs maintenance operations against the evaluation store.
//
//	evalctl reconcile --evaluation <id> --vendor <id>
//	evalctl progress --evaluation <id> --vendor <id>
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"vendoreval-backend/internal/shared/telemetry"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		telemetry.Error("evalctl.failed", map[string]any{"error": err})
		os.Exit(1)
	}
}
