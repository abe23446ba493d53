package system

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// Executes an operation with context awareness, ensuring proper
// completion or graceful interruption.
//
// The function handles three scenarios:
//   - Normal completion: the operation finishes and its result is returned.
//   - Error during the operation: the error is propagated to the caller.
//   - Context cancellation: the operation is signaled to stop and its
//     final result is still collected, so no goroutine is leaked.
func RunWithContext(ctx context.Context, operation func(context.Context) error) error {
	// Fast feedback if the operation was cancelled before it started.
	if err := ctx.Err(); err != nil {
		return err
	}

	opCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Buffered so the goroutine can exit even when nobody reads the
	// result immediately.
	done := make(chan error, 1)

	go func() {
		done <- operation(opCtx)
		close(done)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		// Signal the operation to stop, then wait for it to finish any
		// critical work.
		cancel()
		return <-done
	}
}

// NotifyContext returns a context cancelled on SIGINT or SIGTERM, along
// with its stop function. Long file operations run under it so an
// interrupted run exits cleanly instead of mid-write.
func NotifyContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
