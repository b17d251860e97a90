// Package vfsio lets a storage engine read and write files through a
// pluggable virtual file system.
//
// A FileSystem maps names to Streams. A Stream is a byte sequence with a
// single movable cursor, the shape most host storage APIs offer. Engines
// think in absolute offsets instead, so PositionedRead and PositionedWrite
// seek, transfer and put the cursor back on every path.
//
// # Quick Start
//
//	ctx := context.Background()
//	fs := store.NewMemoryFS()
//
//	h, _ := fs.Open(ctx, "main.db")           // created if absent
//	vfsio.PositionedWrite(h, []byte("hello"), 0, 5, 0)
//
//	buf := make([]byte, 10)
//	n, _ := vfsio.PositionedRead(h, buf, 0, 10, 3) // n == 2, "lo"
//
// # Access Checks
//
// Access never fails. With AccessNonEmpty it returns 1 only for names that
// exist and hold at least one byte; any other mode only checks existence.
//
// # Engine Files
//
// File layers ReadAt/WriteAt on a stream. OpenJournal coalesces sequential
// writes into a JournalBufferSize buffer; short reads zero-fill the tail and
// return ErrShortRead.
//
// # Backends
//
//   - store.MemoryFS, store.LocalFS
//   - store/billy (go-billy), store/bolt (bbolt)
//   - store/minio, store/s3 (object stores, optional compression)
//
// # Observability
//
// Instrument wraps any FileSystem with slog-based logging, a
// MetricsCollector and a resource.Controller:
//
//	metrics := &vfsio.BasicMetricsCollector{}
//	fs := vfsio.Instrument(store.NewMemoryFS(),
//	    vfsio.WithLogger(vfsio.NewJSONLogger(slog.LevelDebug)),
//	    vfsio.WithMetricsCollector(metrics),
//	)
//
// # Thread Safety
//
// A Stream and a File are not safe for concurrent use; callers serialize
// all access to one handle. Distinct handles may be used concurrently.
package vfsio
