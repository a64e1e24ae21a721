package shutdown

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// WithSignals derives a context cancelled on SIGINT/SIGTERM. A second signal
// kills the process immediately instead of waiting for a hung shutdown.
func WithSignals(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-ch
		cancel()
		<-ch
		os.Exit(1)
	}()

	return ctx, cancel
}
