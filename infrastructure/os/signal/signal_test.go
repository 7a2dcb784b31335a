package signal

import (
	"context"
	"syscall"
	"testing"
	"time"
)

func TestInterruptContext(t *testing.T) {
	ctx, cancel := InterruptContext(context.Background())
	defer cancel()

	err := syscall.Kill(syscall.Getpid(), syscall.SIGTERM)
	if err != nil {
		t.Fatalf("Kill: %+v", err)
	}

	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		t.Fatalf("the context was not canceled by the signal")
	}
}
