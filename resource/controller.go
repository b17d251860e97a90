package resource

import (
	"context"
	"errors"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ErrMemoryLimitExceeded is returned when a reservation would exceed MemoryLimitBytes.
var ErrMemoryLimitExceeded = errors.New("resource: memory limit exceeded")

// Config holds resource limits.
type Config struct {
	// MemoryLimitBytes is the hard limit for bytes held by in-memory backing stores.
	// If 0, no hard limit is enforced (only tracking).
	MemoryLimitBytes int64

	// MaxOpenStreams is the maximum number of simultaneously open streams.
	// If 0, unlimited.
	MaxOpenStreams int64

	// IOLimitBytesPerSec is the maximum stream read/write throughput.
	// If 0, unlimited.
	IOLimitBytesPerSec int64
}

// Controller manages resources shared by every stream of a file system.
type Controller struct {
	cfg Config

	// Memory
	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64

	// Streams
	streamSem *semaphore.Weighted // nil if unlimited
	open      atomic.Int64

	// IO
	ioLimiter *rate.Limiter
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	c := &Controller{
		cfg: cfg,
	}

	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}

	if cfg.MaxOpenStreams > 0 {
		c.streamSem = semaphore.NewWeighted(cfg.MaxOpenStreams)
	}

	if cfg.IOLimitBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}

	return c
}

// AcquireMemory reserves memory without blocking.
// Returns ErrMemoryLimitExceeded if the limit would be exceeded.
func (c *Controller) AcquireMemory(bytes int64) error {
	if c == nil || bytes <= 0 {
		return nil
	}

	if c.memSem != nil {
		if !c.memSem.TryAcquire(bytes) {
			return ErrMemoryLimitExceeded
		}
	}

	c.memUsed.Add(bytes)
	return nil
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

// AcquireStream reserves an open-stream slot.
// Blocks if all slots are busy until one is released or ctx is canceled.
func (c *Controller) AcquireStream(ctx context.Context) error {
	if c == nil {
		return nil
	}
	if c.streamSem != nil {
		if err := c.streamSem.Acquire(ctx, 1); err != nil {
			return err
		}
	}
	c.open.Add(1)
	return nil
}

// TryAcquireStream reserves an open-stream slot without blocking.
func (c *Controller) TryAcquireStream() bool {
	if c == nil {
		return true
	}
	if c.streamSem != nil && !c.streamSem.TryAcquire(1) {
		return false
	}
	c.open.Add(1)
	return true
}

// ReleaseStream releases an open-stream slot.
func (c *Controller) ReleaseStream() {
	if c == nil {
		return
	}
	if c.streamSem != nil {
		c.streamSem.Release(1)
	}
	c.open.Add(-1)
}

// OpenStreams returns the number of currently reserved stream slots.
func (c *Controller) OpenStreams() int64 {
	if c == nil {
		return 0
	}
	return c.open.Load()
}

// AcquireIO waits until the IO limit allows the specified number of bytes.
// Requests larger than one second of budget are paced in burst-sized steps.
func (c *Controller) AcquireIO(ctx context.Context, bytes int) error {
	if c == nil || c.ioLimiter == nil {
		return nil
	}
	burst := c.ioLimiter.Burst()
	for bytes > 0 {
		n := min(bytes, burst)
		if err := c.ioLimiter.WaitN(ctx, n); err != nil {
			return err
		}
		bytes -= n
	}
	return nil
}
