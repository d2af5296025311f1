package resource

import (
	"context"
	"io"
)

// Reader returns r throttled by the IO limit. Bytes are charged after they
// are read, so a read never waits before its data is available.
func (c *Controller) Reader(ctx context.Context, r io.Reader) io.Reader {
	return &throttledReader{ctx: ctx, r: r, c: c}
}

// Writer returns w throttled by the IO limit. Bytes are charged before they
// are written.
func (c *Controller) Writer(ctx context.Context, w io.Writer) io.Writer {
	return &throttledWriter{ctx: ctx, w: w, c: c}
}

// IOBytes returns the bytes moved through the controller's readers and writers.
func (c *Controller) IOBytes() int64 {
	if c == nil {
		return 0
	}
	return c.ioBytes.Load()
}

func (c *Controller) chargeIO(ctx context.Context, n int) error {
	if c == nil {
		return nil
	}
	c.ioBytes.Add(int64(n))
	return c.AcquireIO(ctx, n)
}

type throttledReader struct {
	ctx context.Context
	r   io.Reader
	c   *Controller
}

func (t *throttledReader) Read(p []byte) (int, error) {
	if err := t.ctx.Err(); err != nil {
		return 0, err
	}
	n, err := t.r.Read(p)
	if n > 0 {
		if werr := t.c.chargeIO(t.ctx, n); werr != nil {
			return n, werr
		}
	}
	return n, err
}

type throttledWriter struct {
	ctx context.Context
	w   io.Writer
	c   *Controller
}

func (t *throttledWriter) Write(p []byte) (int, error) {
	if err := t.c.chargeIO(t.ctx, len(p)); err != nil {
		return 0, err
	}
	return t.w.Write(p)
}
