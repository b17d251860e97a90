package vfsio_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/hupe1980/vfsio"
	"github.com/hupe1980/vfsio/resource"
	"github.com/hupe1980/vfsio/store"
	"github.com/hupe1980/vfsio/vfstest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstrument_Conformance(t *testing.T) {
	vfstest.Run(t, func(t *testing.T) vfsio.FileSystem {
		return vfsio.Instrument(store.NewMemoryFS(),
			vfsio.WithMetricsCollector(&vfsio.BasicMetricsCollector{}),
			vfsio.WithResourceController(resource.NewController(resource.Config{MaxOpenStreams: 16})),
		)
	})
}

func TestInstrument_Metrics(t *testing.T) {
	ctx := context.Background()
	metrics := &vfsio.BasicMetricsCollector{}
	fs := vfsio.Instrument(store.NewMemoryFS(), vfsio.WithMetricsCollector(metrics))

	s, err := fs.Open(ctx, "main.db")
	require.NoError(t, err)

	_, err = vfsio.PositionedWrite(s, []byte("hello"), 0, 5, 0)
	require.NoError(t, err)

	buf := make([]byte, 10)
	n, err := vfsio.PositionedRead(s, buf, 0, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	require.NoError(t, s.Flush())
	require.NoError(t, s.Close())

	assert.Equal(t, 1, fs.Access(ctx, "main.db", vfsio.AccessNonEmpty))
	assert.Equal(t, 0, fs.Access(ctx, "missing", vfsio.AccessExists))
	require.NoError(t, fs.Delete(ctx, "main.db"))

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.OpenCount)
	assert.Equal(t, int64(1), stats.WriteCount)
	assert.Equal(t, int64(5), stats.WriteBytes)
	assert.Equal(t, int64(5), stats.ReadBytes)
	assert.Equal(t, int64(0), stats.ReadErrors)
	assert.Equal(t, int64(1), stats.FlushCount)
	assert.Equal(t, int64(2), stats.AccessCount)
	assert.Equal(t, int64(1), stats.AccessHits)
	assert.Equal(t, int64(1), stats.DeleteCount)
}

func TestInstrument_StreamLimit(t *testing.T) {
	ctx := context.Background()
	rc := resource.NewController(resource.Config{MaxOpenStreams: 1})
	fs := vfsio.Instrument(store.NewMemoryFS(), vfsio.WithResourceController(rc))

	s, err := fs.Open(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(1), rc.OpenStreams())

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = fs.Open(canceled, "b")
	assert.ErrorIs(t, err, context.Canceled)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.Equal(t, int64(0), rc.OpenStreams())

	s, err = fs.Open(ctx, "b")
	require.NoError(t, err)
	require.NoError(t, s.Close())
}

// failingFS fails every operation except Access.
type failingFS struct{}

var errBackend = errors.New("backend down")

func (failingFS) Open(context.Context, string) (vfsio.Stream, error) { return nil, errBackend }
func (failingFS) Delete(context.Context, string) error               { return errBackend }
func (failingFS) Stat(context.Context, string) (int64, error)        { return 0, errBackend }
func (failingFS) Access(context.Context, string, vfsio.AccessMode) int {
	return 0
}

func TestInstrument_LogsFailures(t *testing.T) {
	ctx := context.Background()
	var out bytes.Buffer
	logger := vfsio.NewLogger(slog.NewTextHandler(&out, &slog.HandlerOptions{Level: slog.LevelDebug}))
	rc := resource.NewController(resource.Config{MaxOpenStreams: 1})
	fs := vfsio.Instrument(failingFS{}, vfsio.WithLogger(logger), vfsio.WithResourceController(rc))

	_, err := fs.Open(ctx, "main.db")
	assert.ErrorIs(t, err, errBackend)
	// The failed open released its slot.
	assert.Equal(t, int64(0), rc.OpenStreams())

	assert.ErrorIs(t, fs.Delete(ctx, "main.db"), errBackend)
	assert.Equal(t, 0, fs.Access(ctx, "main.db", vfsio.AccessExists))

	logs := out.String()
	assert.Contains(t, logs, "backend down")
	assert.Contains(t, logs, "main.db")
	assert.Contains(t, logs, "access probe failed")
}
