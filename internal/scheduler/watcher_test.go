package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewWatcherInvalidSpec(t *testing.T) {
	cases := []string{
		"",
		"not a cron",
		"* * * * * *", // 6 fields, seconds not supported
		"61 * * * *",
	}

	for _, spec := range cases {
		t.Run(spec, func(t *testing.T) {
			_, err := NewWatcher(spec, func(context.Context) error { return nil }, discardLogger())
			assert.Error(t, err)
		})
	}
}

func TestNextRun(t *testing.T) {
	w, err := NewWatcher("*/5 * * * *", func(context.Context) error { return nil }, discardLogger())
	require.NoError(t, err)

	from := time.Date(2026, 8, 29, 10, 2, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 8, 29, 10, 5, 0, 0, time.UTC), w.NextRun(from))

	// On a boundary, the next run is the following slot.
	onBoundary := time.Date(2026, 8, 29, 10, 5, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 8, 29, 10, 10, 0, 0, time.UTC), w.NextRun(onBoundary))
}

func TestStartRunsImmediately(t *testing.T) {
	ran := make(chan struct{}, 1)
	w, err := NewWatcher("0 0 1 1 *", func(context.Context) error {
		ran <- struct{}{}
		return nil
	}, discardLogger())
	require.NoError(t, err)

	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("initial run did not happen")
	}
}

func TestStartTwiceFails(t *testing.T) {
	w, err := NewWatcher("0 0 1 1 *", func(context.Context) error { return nil }, discardLogger())
	require.NoError(t, err)

	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	assert.Error(t, w.Start(context.Background()))
}

func TestStopIsIdempotent(t *testing.T) {
	var runs atomic.Int32
	w, err := NewWatcher("0 0 1 1 *", func(context.Context) error {
		runs.Add(1)
		return nil
	}, discardLogger())
	require.NoError(t, err)

	require.NoError(t, w.Start(context.Background()))
	w.Stop()
	w.Stop() // second call is a no-op

	assert.Equal(t, int32(1), runs.Load())

	// A stopped watcher can be started again.
	require.NoError(t, w.Start(context.Background()))
	w.Stop()
	assert.Equal(t, int32(2), runs.Load())
}

func TestTickFailureKeepsLoopAlive(t *testing.T) {
	w, err := NewWatcher("0 0 1 1 *", func(context.Context) error {
		return errors.New("disk full")
	}, discardLogger())
	require.NoError(t, err)

	require.NoError(t, w.Start(context.Background()))
	// The failing initial tick must not close the loop; Stop still returns.
	done := make(chan struct{})
	go func() {
		w.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop blocked after failed tick")
	}
}
