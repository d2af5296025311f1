package resource

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds resource limits for a resolution run.
type Config struct {
	// MemoryLimitBytes is the hard limit for buffered query hits.
	// If 0, no hard limit is enforced (only tracking).
	MemoryLimitBytes int64

	// MaxInFlightQueries is the maximum number of queries buffered or being resolved at once.
	// If 0, defaults to 1.
	MaxInFlightQueries int64

	// QueriesPerSecond throttles how fast queries are scheduled.
	// If 0, unlimited.
	QueriesPerSecond float64

	// IOLimitBytesPerSec caps the bytes read from inputs plus the bytes
	// written to outputs per second. If 0, unlimited.
	IOLimitBytesPerSec int64
}

// Controller bounds what a run buffers and how fast it moves data.
// A nil *Controller imposes no limits.
type Controller struct {
	cfg Config

	memSem   *semaphore.Weighted // nil if unlimited
	memUsed  atomic.Int64
	querySem *semaphore.Weighted

	queryLimiter *rate.Limiter
	ioLimiter    *rate.Limiter
	ioBytes      atomic.Int64
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxInFlightQueries <= 0 {
		cfg.MaxInFlightQueries = 1
	}

	c := &Controller{
		cfg:      cfg,
		querySem: semaphore.NewWeighted(cfg.MaxInFlightQueries),
	}

	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}

	if cfg.QueriesPerSecond > 0 {
		burst := max(int(cfg.QueriesPerSecond), 1)
		c.queryLimiter = rate.NewLimiter(rate.Limit(cfg.QueriesPerSecond), burst)
	}

	if cfg.IOLimitBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}

	return c
}

// Config returns the controller's limits.
func (c *Controller) Config() Config {
	if c == nil {
		return Config{}
	}
	return c.cfg
}

// clampMemory caps a reservation at the hard limit so a single oversized
// query can still proceed alone.
func (c *Controller) clampMemory(bytes int64) int64 {
	if c.cfg.MemoryLimitBytes > 0 && bytes > c.cfg.MemoryLimitBytes {
		return c.cfg.MemoryLimitBytes
	}
	return bytes
}

// AcquireMemory reserves memory for buffered hits.
// If a hard limit is configured and usage would exceed it,
// this blocks until memory is available or ctx is canceled.
// It returns the number of bytes actually reserved, to be passed to ReleaseMemory.
func (c *Controller) AcquireMemory(ctx context.Context, bytes int64) (int64, error) {
	if c == nil || bytes <= 0 {
		return 0, nil
	}
	bytes = c.clampMemory(bytes)

	if c.memSem != nil {
		if err := c.memSem.Acquire(ctx, bytes); err != nil {
			return 0, err
		}
	}

	c.memUsed.Add(bytes)
	return bytes, nil
}

// ReleaseMemory releases reserved memory.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}

	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
}

// MemoryUsage returns the current memory usage in bytes.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// AcquireQuery reserves an in-flight query slot.
// Blocks if all slots are busy.
func (c *Controller) AcquireQuery(ctx context.Context) error {
	if c == nil {
		return ctx.Err()
	}
	return c.querySem.Acquire(ctx, 1)
}

// ReleaseQuery releases an in-flight query slot.
func (c *Controller) ReleaseQuery() {
	if c == nil {
		return
	}
	c.querySem.Release(1)
}

// WaitQuery waits until the query rate limit allows scheduling another query.
func (c *Controller) WaitQuery(ctx context.Context) error {
	if c == nil || c.queryLimiter == nil {
		return ctx.Err()
	}
	return c.queryLimiter.Wait(ctx)
}

// AcquireIO waits until the IO limit allows the specified number of bytes.
func (c *Controller) AcquireIO(ctx context.Context, bytes int) error {
	if c == nil || c.ioLimiter == nil {
		return nil
	}
	// WaitN rejects requests larger than the burst.
	for bytes > 0 {
		n := min(bytes, c.ioLimiter.Burst())
		if err := c.ioLimiter.WaitN(ctx, n); err != nil {
			return err
		}
		bytes -= n
	}
	return nil
}

// Reservation is the in-flight slot and memory held by one buffered query.
type Reservation struct {
	c        *Controller
	bytes    int64
	released atomic.Bool
}

// ReserveQuery waits for an in-flight query slot and then for bytes of
// memory. The caller must Release the reservation.
func (c *Controller) ReserveQuery(ctx context.Context, bytes int64) (*Reservation, error) {
	if err := c.AcquireQuery(ctx); err != nil {
		return nil, err
	}
	n, err := c.AcquireMemory(ctx, bytes)
	if err != nil {
		c.ReleaseQuery()
		return nil, err
	}
	return &Reservation{c: c, bytes: n}, nil
}

// Bytes returns the memory held, after clamping to the hard limit.
func (r *Reservation) Bytes() int64 {
	return r.bytes
}

// Release returns the slot and memory. Only the first call has an effect.
func (r *Reservation) Release() {
	if r == nil || !r.released.CompareAndSwap(false, true) {
		return
	}
	r.c.ReleaseMemory(r.bytes)
	r.c.ReleaseQuery()
}
