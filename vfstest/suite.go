package vfstest

import (
	"bytes"
	"context"
	"testing"

	"github.com/hupe1980/vfsio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns an empty file system for one subtest.
type Factory func(t *testing.T) vfsio.FileSystem

// Run executes the conformance suite against file systems created by newFS.
func Run(t *testing.T, newFS Factory) {
	t.Helper()

	tests := []struct {
		name string
		fn   func(t *testing.T, fs vfsio.FileSystem)
	}{
		{"OpenCreatesEmpty", testOpenCreatesEmpty},
		{"AccessScenario", testAccessScenario},
		{"CursorInvariance", testCursorInvariance},
		{"RoundTrip", testRoundTrip},
		{"ReadAtOrBeyondEnd", testReadAtOrBeyondEnd},
		{"WritePastEnd", testWritePastEnd},
		{"TruncateBelowCursor", testTruncateBelowCursor},
		{"ReopenSeesData", testReopenSeesData},
		{"Delete", testDelete},
		{"DoubleClose", testDoubleClose},
		{"JournalFile", testJournalFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, newFS(t))
		})
	}
}

func open(t *testing.T, fs vfsio.FileSystem, name string) vfsio.Stream {
	t.Helper()
	s, err := fs.Open(context.Background(), name)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func write(t *testing.T, s vfsio.Stream, data string, position int64) {
	t.Helper()
	n, err := vfsio.PositionedWrite(s, []byte(data), 0, len(data), position)
	require.NoError(t, err)
	require.Equal(t, len(data), n)
}

func position(t *testing.T, s vfsio.Stream) int64 {
	t.Helper()
	pos, err := s.Position()
	require.NoError(t, err)
	return pos
}

func length(t *testing.T, s vfsio.Stream) int64 {
	t.Helper()
	size, err := s.Length()
	require.NoError(t, err)
	return size
}

func testOpenCreatesEmpty(t *testing.T, fs vfsio.FileSystem) {
	ctx := context.Background()

	assert.Equal(t, 0, fs.Access(ctx, "fresh", vfsio.AccessNonEmpty))
	assert.Equal(t, 0, fs.Access(ctx, "fresh", vfsio.AccessExists))

	s := open(t, fs, "fresh")
	assert.Equal(t, int64(0), position(t, s))
	assert.Equal(t, int64(0), length(t, s))

	assert.Equal(t, 1, fs.Access(ctx, "fresh", vfsio.AccessExists))
	assert.Equal(t, 1, fs.Access(ctx, "fresh", vfsio.AccessReadWrite))
	assert.Equal(t, 0, fs.Access(ctx, "fresh", vfsio.AccessNonEmpty))
}

func testAccessScenario(t *testing.T, fs vfsio.FileSystem) {
	ctx := context.Background()
	h := open(t, fs, "a")

	assert.Equal(t, 0, fs.Access(ctx, "a", vfsio.AccessNonEmpty))
	assert.Equal(t, 1, fs.Access(ctx, "a", vfsio.AccessExists))

	n, err := vfsio.PositionedWrite(h, []byte("hello"), 0, 5, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	// Remote and embedded stores publish on flush.
	require.NoError(t, h.Flush())
	assert.Equal(t, 1, fs.Access(ctx, "a", vfsio.AccessNonEmpty))

	buf := make([]byte, 10)
	n, err = vfsio.PositionedRead(h, buf, 0, 5, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "hello", string(buf[:5]))

	n, err = vfsio.PositionedRead(h, buf, 0, 10, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "lo", string(buf[:2]))
}

func testCursorInvariance(t *testing.T, fs vfsio.FileSystem) {
	s := open(t, fs, "cursor")
	write(t, s, "0123456789", 0)
	assert.Equal(t, int64(0), position(t, s))

	require.NoError(t, s.SetPosition(7))

	buf := make([]byte, 3)
	n, err := vfsio.PositionedRead(s, buf, 0, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, "234", string(buf))
	assert.Equal(t, int64(7), position(t, s))

	write(t, s, "ab", 4)
	assert.Equal(t, int64(7), position(t, s))

	// The cursor still drives sequential reads.
	n, err = s.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "789", string(buf[:n]))
}

func testRoundTrip(t *testing.T, fs vfsio.FileSystem) {
	s := open(t, fs, "roundtrip")
	write(t, s, "................", 0)

	cases := []struct {
		data     string
		position int64
	}{
		{"", 0},
		{"x", 0},
		{"abc", 5},
		{"tail", 16},
		{"", 20},
		{"overlapping-write", 10},
	}

	for _, c := range cases {
		write(t, s, c.data, c.position)

		buf := make([]byte, len(c.data)+2)
		n, err := vfsio.PositionedRead(s, buf, 1, len(c.data), c.position)
		require.NoError(t, err)
		assert.Equal(t, len(c.data), n)
		assert.Equal(t, c.data, string(buf[1:1+n]))
	}
}

func testReadAtOrBeyondEnd(t *testing.T, fs vfsio.FileSystem) {
	s := open(t, fs, "short")
	write(t, s, "abc", 0)

	buf := make([]byte, 4)
	for _, pos := range []int64{3, 4, 1 << 20} {
		n, err := vfsio.PositionedRead(s, buf, 0, 4, pos)
		require.NoError(t, err)
		assert.Equal(t, 0, n)
	}

	n, err := vfsio.PositionedRead(s, buf, 0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func testWritePastEnd(t *testing.T, fs vfsio.FileSystem) {
	s := open(t, fs, "gap")
	write(t, s, "ab", 0)
	write(t, s, "cd", 5)

	assert.Equal(t, int64(7), length(t, s))

	buf := make([]byte, 7)
	n, err := vfsio.PositionedRead(s, buf, 0, 7, 0)
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	assert.Equal(t, []byte{'a', 'b', 0, 0, 0, 'c', 'd'}, buf)
}

func testTruncateBelowCursor(t *testing.T, fs vfsio.FileSystem) {
	s := open(t, fs, "truncate")
	write(t, s, "0123456789", 0)
	require.NoError(t, s.SetPosition(8))

	require.NoError(t, s.Truncate(3))
	assert.Equal(t, int64(3), length(t, s))

	buf := make([]byte, 10)
	n, err := vfsio.PositionedRead(s, buf, 0, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, "012", string(buf[:n]))
	assert.Equal(t, int64(8), position(t, s))

	require.NoError(t, s.Truncate(5))
	n, err = vfsio.PositionedRead(s, buf, 0, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, []byte{'0', '1', '2', 0, 0}, buf[:n])
}

func testReopenSeesData(t *testing.T, fs vfsio.FileSystem) {
	ctx := context.Background()

	s, err := fs.Open(ctx, "persist")
	require.NoError(t, err)
	write(t, s, "durable", 0)
	require.NoError(t, s.Close())

	s = open(t, fs, "persist")
	assert.Equal(t, int64(7), length(t, s))
	assert.Equal(t, int64(0), position(t, s))

	buf := make([]byte, 7)
	n, err := vfsio.PositionedRead(s, buf, 0, 7, 0)
	require.NoError(t, err)
	assert.Equal(t, "durable", string(buf[:n]))
}

func testDelete(t *testing.T, fs vfsio.FileSystem) {
	ctx := context.Background()

	require.NoError(t, fs.Delete(ctx, "missing"))

	s, err := fs.Open(ctx, "doomed")
	require.NoError(t, err)
	write(t, s, "bytes", 0)
	require.NoError(t, s.Close())
	require.Equal(t, 1, fs.Access(ctx, "doomed", vfsio.AccessNonEmpty))

	require.NoError(t, fs.Delete(ctx, "doomed"))
	assert.Equal(t, 0, fs.Access(ctx, "doomed", vfsio.AccessExists))
	assert.Equal(t, 0, fs.Access(ctx, "doomed", vfsio.AccessNonEmpty))

	// Deleting again is still fine.
	require.NoError(t, fs.Delete(ctx, "doomed"))

	s = open(t, fs, "doomed")
	assert.Equal(t, int64(0), length(t, s))
}

func testDoubleClose(t *testing.T, fs vfsio.FileSystem) {
	s, err := fs.Open(context.Background(), "closing")
	require.NoError(t, err)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err = s.Read(make([]byte, 1))
	assert.ErrorIs(t, err, vfsio.ErrClosed)
	_, err = s.Write([]byte("x"))
	assert.ErrorIs(t, err, vfsio.ErrClosed)
	_, err = s.Position()
	assert.ErrorIs(t, err, vfsio.ErrClosed)
	assert.ErrorIs(t, s.SetPosition(0), vfsio.ErrClosed)
	_, err = s.Length()
	assert.ErrorIs(t, err, vfsio.ErrClosed)
	assert.ErrorIs(t, s.Truncate(0), vfsio.ErrClosed)
	assert.ErrorIs(t, s.Flush(), vfsio.ErrClosed)

	_, err = vfsio.PositionedRead(s, make([]byte, 1), 0, 1, 0)
	assert.ErrorIs(t, err, vfsio.ErrClosed)
}

func testJournalFile(t *testing.T, fs vfsio.FileSystem) {
	ctx := context.Background()

	f, err := vfsio.OpenFile(ctx, fs, "db-journal", vfsio.OpenJournal)
	require.NoError(t, err)

	page := bytes.Repeat([]byte{0xAB}, 4096)
	for i := int64(0); i < 3; i++ {
		n, err := f.WriteAt(page, i*4096)
		require.NoError(t, err)
		require.Equal(t, len(page), n)
	}

	size, err := f.Size()
	require.NoError(t, err)
	assert.Equal(t, int64(3*4096), size)

	buf := make([]byte, 4096)
	n, err := f.ReadAt(buf, 4096)
	require.NoError(t, err)
	assert.Equal(t, page, buf[:n])

	n, err = f.ReadAt(buf, 3*4096-10)
	assert.ErrorIs(t, err, vfsio.ErrShortRead)
	assert.Equal(t, 10, n)
	assert.Equal(t, make([]byte, 4096-10), buf[10:])

	require.NoError(t, f.Sync())
	require.NoError(t, f.Close())
	require.NoError(t, f.Close())

	assert.Equal(t, 1, fs.Access(ctx, "db-journal", vfsio.AccessNonEmpty))
}
