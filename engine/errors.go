package engine

import "errors"

// ErrPoolClosed is returned by Pool.Submit after Close.
var ErrPoolClosed = errors.New("engine: pool closed")
