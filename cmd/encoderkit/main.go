package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCommand().ExecuteContext(ctx)
	stop()
	if err == nil {
		return
	}
	// Ctrl-C exits non-zero without repeating the cancellation.
	if !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "encoderkit: %v\n", err)
	}
	os.Exit(1)
}
