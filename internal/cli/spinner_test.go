package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer is a bytes.Buffer safe for the spinner goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinnerAnimates(t *testing.T) {
	var out syncBuffer
	s := newSpinnerTo(context.Background(), &out, true, "Pushing acme...")
	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.Stop()

	if !strings.Contains(out.String(), "Pushing acme...") {
		t.Errorf("spinner output = %q", out.String())
	}
	if s.Cancelled() {
		t.Error("Stop should not cancel the parent context")
	}
}

func TestSpinnerSilentWithoutTerminal(t *testing.T) {
	var out syncBuffer
	s := newSpinnerTo(context.Background(), &out, false, "Pushing acme...")
	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.Stop()

	if out.String() != "" {
		t.Errorf("non-terminal spinner wrote %q", out.String())
	}
}

func TestSpinnerWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	s := newSpinnerTo(ctx, &syncBuffer{}, true, "Testing with context...")
	s.Start()
	cancel()
	time.Sleep(100 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("Spinner should be cancelled after context cancellation")
	}
	s.Stop()
}

func TestSpinnerWithTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	s := newSpinnerTo(ctx, &syncBuffer{}, true, "Testing with timeout...")
	s.Start()
	time.Sleep(100 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("Spinner should be cancelled after context timeout")
	}
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := newSpinnerTo(context.Background(), &syncBuffer{}, true, "Testing idempotent stop...")
	s.Start()

	s.Stop()
	s.Stop()
	s.Stop()
}

func TestSpinnerStopWithMessage(t *testing.T) {
	s := newSpinnerTo(context.Background(), &syncBuffer{}, false, "Testing...")
	s.Start()
	s.StopWithSuccess("Done!")

	s = newSpinnerTo(context.Background(), &syncBuffer{}, false, "Testing...")
	s.Start()
	s.StopWithError("Failed!")
}
