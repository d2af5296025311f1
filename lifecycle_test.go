package domarch_test

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hupe1980/domarch"
	"github.com/hupe1980/domarch/engine"
	"github.com/hupe1980/domarch/model"
	"github.com/hupe1980/domarch/testutil"
)

// TestNoGoroutineLeaks verifies that the worker pool and stream goroutines are
// stopped when Close() is called, including after a failed stream.
func TestNoGoroutineLeaks(t *testing.T) {
	tests := []struct {
		name     string
		run      func(t *testing.T, eng *domarch.Engine)
		maxLeaks int // Allow small variance (runtime background goroutines)
	}{
		{
			name: "batch",
			run: func(t *testing.T, eng *domarch.Engine) {
				_, err := eng.ResolveBatch(context.Background(), domarch.GroupByQuery(streamHits(50)))
				require.NoError(t, err)
			},
			maxLeaks: 2,
		},
		{
			name: "stream",
			run: func(t *testing.T, eng *domarch.Engine) {
				err := eng.ResolveStream(context.Background(), seqOf(streamHits(50)), func(model.Architecture) error { return nil })
				require.NoError(t, err)
			},
			maxLeaks: 2,
		},
		{
			name: "stream aborted by emit",
			run: func(t *testing.T, eng *domarch.Engine) {
				errStop := errors.New("stop")
				err := eng.ResolveStream(context.Background(), seqOf(streamHits(50)), func(model.Architecture) error { return errStop })
				require.ErrorIs(t, err, errStop)
			},
			maxLeaks: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Force GC to clean up any lingering goroutines from previous tests
			runtime.GC()
			time.Sleep(50 * time.Millisecond)

			initial := runtime.NumGoroutine()

			eng, err := domarch.New(domarch.WithWorkers(4))
			require.NoError(t, err)
			tt.run(t, eng)
			require.NoError(t, eng.Close())

			deadline := time.Now().Add(2 * time.Second)
			var final, leaked int
			for {
				runtime.GC()
				time.Sleep(50 * time.Millisecond)

				final = runtime.NumGoroutine()
				leaked = final - initial
				if leaked <= tt.maxLeaks || time.Now().After(deadline) {
					break
				}
			}

			if leaked > tt.maxLeaks {
				t.Errorf("Goroutine leak detected: started with %d, ended with %d (leaked: %d, max allowed: %d)",
					initial, final, leaked, tt.maxLeaks)

				buf := make([]byte, 1<<20)
				stackSize := runtime.Stack(buf, true)
				t.Logf("Goroutine stacks:\n%s", buf[:stackSize])
			}
		})
	}
}

// TestCloseWithActiveStream verifies Close waits for queued queries.
func TestCloseWithActiveStream(t *testing.T) {
	eng, err := domarch.New(domarch.WithWorkers(2))
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		done <- eng.ResolveStream(context.Background(), seqOf(streamHits(200)), func(model.Architecture) error { return nil })
	}()

	time.Sleep(time.Millisecond)
	require.NoError(t, eng.Close())

	select {
	case err := <-done:
		// The stream either finished first or observed the closed pool.
		if err != nil {
			require.True(t, errors.Is(err, engine.ErrPoolClosed) || errors.Is(err, domarch.ErrClosed), "unexpected error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("stream did not return after Close")
	}
}

func streamHits(queries int) []model.Hit {
	rng := testutil.NewRNG(3)
	var hits []model.Hit
	for q := range queries {
		id := fmt.Sprintf("q%d", q)
		hits = append(hits, rng.Hits(8, testutil.HitOptions{QueryID: id, MaxSegments: 3})...)
	}
	return hits
}
