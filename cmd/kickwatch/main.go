// Command kickwatch follows Kick livestream chats from the terminal.
// It prints chat and stream events, optionally polls the viewer count,
// forwards selected events to notifiers and serves a status page.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const forcedShutdownTimeout = 30 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	context.AfterFunc(ctx, func() {
		time.AfterFunc(forcedShutdownTimeout, func() {
			fmt.Fprintln(os.Stderr, "Graceful shutdown timed out, forcing exit")
			os.Exit(1)
		})
	})

	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
