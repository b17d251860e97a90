// Package resource implements the Controller for limits shared by the streams
// of one file system.
//
// The Controller manages three resource types:
//
//   - Memory: Track and limit bytes held by in-memory backing stores (non-blocking, fail-fast)
//   - Streams: Limit the number of simultaneously open streams (blocking)
//   - IO: Rate-limit stream reads and writes (token bucket)
//
// # Memory Management
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 1 << 30, // 1GB limit
//	})
//
//	if err := rc.AcquireMemory(4096); err != nil {
//	    // ErrMemoryLimitExceeded - the write fails
//	}
//	defer rc.ReleaseMemory(4096)
//
// # Stream Limits
//
//	rc := resource.NewController(resource.Config{
//	    MaxOpenStreams: 64,
//	})
//
//	if err := rc.AcquireStream(ctx); err != nil {
//	    return err
//	}
//	defer rc.ReleaseStream()
//
// # IO Rate Limiting
//
//	rc := resource.NewController(resource.Config{
//	    IOLimitBytesPerSec: 100 * 1024 * 1024, // 100MB/s
//	})
//
//	if err := rc.AcquireIO(ctx, 4096); err != nil {
//	    return err
//	}
//
// # Nil Safety
//
// All methods handle nil Controller gracefully - they become no-ops.
// This allows optional resource limiting without nil checks everywhere.
package resource
