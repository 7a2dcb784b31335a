package signal

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// interruptSignals are the signals that request a shutdown
var interruptSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

// InterruptListener listens for interrupt signals and returns a channel that
// is closed on the first one. Further signals are logged and ignored.
func InterruptListener() <-chan struct{} {
	c := make(chan struct{})
	interruptChannel := make(chan os.Signal, 1)
	signal.Notify(interruptChannel, interruptSignals...)
	go func() {
		sig := <-interruptChannel
		log.Infof("Received signal (%s). Shutting down...", sig)
		close(c)

		for sig := range interruptChannel {
			log.Infof("Received signal (%s). Already shutting down...", sig)
		}
	}()
	return c
}

// InterruptContext returns a context derived from parent that is canceled
// when an interrupt signal arrives
func InterruptContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	interrupt := InterruptListener()
	go func() {
		select {
		case <-interrupt:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
