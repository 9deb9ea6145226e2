package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRun_TicksOnInterval(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	calls := make(chan struct{}, 4)

	r := NewRunner("tick-test", time.Minute, func(ctx context.Context) error {
		calls <- struct{}{}
		return nil
	}, clock, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	if err := clock.BlockUntilContext(ctx, 1); err != nil {
		t.Fatalf("waiting for ticker: %v", err)
	}

	for i := 0; i < 3; i++ {
		clock.Advance(time.Minute)
		select {
		case <-calls:
		case <-time.After(2 * time.Second):
			t.Fatalf("iteration %d never ran", i+1)
		}
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("run: got %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not stop on cancel")
	}
}

func TestRun_FailureDoesNotStopRunner(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	calls := make(chan int, 4)
	n := 0

	r := NewRunner("fail-test", time.Minute, func(ctx context.Context) error {
		n++
		calls <- n
		if n == 1 {
			return errors.New("boom")
		}
		return nil
	}, clock, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = r.Run(ctx) }()

	if err := clock.BlockUntilContext(ctx, 1); err != nil {
		t.Fatalf("waiting for ticker: %v", err)
	}

	for want := 1; want <= 2; want++ {
		clock.Advance(time.Minute)
		select {
		case got := <-calls:
			if got != want {
				t.Fatalf("iteration: got %d, want %d", got, want)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("iteration %d never ran", want)
		}
	}
}

func TestRun_PanicIsRecovered(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	calls := make(chan struct{}, 4)
	first := true

	r := NewRunner("panic-test", time.Minute, func(ctx context.Context) error {
		calls <- struct{}{}
		if first {
			first = false
			panic("unexpected state")
		}
		return nil
	}, clock, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = r.Run(ctx) }()

	if err := clock.BlockUntilContext(ctx, 1); err != nil {
		t.Fatalf("waiting for ticker: %v", err)
	}

	for i := 0; i < 2; i++ {
		clock.Advance(time.Minute)
		select {
		case <-calls:
		case <-time.After(2 * time.Second):
			t.Fatalf("iteration %d never ran", i+1)
		}
	}
}
