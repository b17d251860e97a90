package vfstest_test

import (
	"context"
	"errors"
	"testing"

	"github.com/hupe1980/vfsio"
	"github.com/hupe1980/vfsio/store"
	"github.com/hupe1980/vfsio/vfstest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFaultyFS_Conformance(t *testing.T) {
	vfstest.Run(t, func(t *testing.T) vfsio.FileSystem {
		return vfstest.NewFaultyFS(store.NewMemoryFS())
	})
}

func TestFaultyFS_FailAfterBytes(t *testing.T) {
	ctx := context.Background()
	fs := vfstest.NewFaultyFS(store.NewMemoryFS())
	fs.AddRule("-journal", vfstest.Fault{FailAfterBytes: 4})

	s, err := fs.Open(ctx, "db-journal")
	require.NoError(t, err)
	defer s.Close()

	n, err := vfsio.PositionedWrite(s, []byte("abcd"), 0, 4, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	_, err = vfsio.PositionedWrite(s, []byte("e"), 0, 1, 4)
	assert.ErrorIs(t, err, vfstest.ErrInjected)

	pos, err := s.Position()
	require.NoError(t, err)
	assert.Equal(t, int64(0), pos)
	assert.Equal(t, int64(4), fs.Written())

	// Other names are unaffected.
	other, err := fs.Open(ctx, "db")
	require.NoError(t, err)
	defer other.Close()
	_, err = vfsio.PositionedWrite(other, []byte("abcdef"), 0, 6, 0)
	require.NoError(t, err)
}

func TestFaultyFS_LongestRuleWins(t *testing.T) {
	custom := errors.New("custom")
	fs := vfstest.NewFaultyFS(store.NewMemoryFS())
	fs.AddRule("db", vfstest.Fault{FailAfterBytes: -1, FailOnOpen: true})
	fs.AddRule("db-wal", vfstest.Fault{FailAfterBytes: -1, FailOnFlush: true, Err: custom})

	_, err := fs.Open(context.Background(), "main.db")
	assert.ErrorIs(t, err, vfstest.ErrInjected)

	s, err := fs.Open(context.Background(), "main.db-wal")
	require.NoError(t, err)
	assert.ErrorIs(t, s.Flush(), custom)
	require.NoError(t, s.Close())
}

func TestFaultyFS_PropagatesThroughFile(t *testing.T) {
	ctx := context.Background()
	fs := vfstest.NewFaultyFS(store.NewMemoryFS())
	fs.AddRule("data", vfstest.Fault{FailAfterBytes: -1, FailOnSetPosition: true, FailOnClose: true})

	f, err := vfsio.OpenFile(ctx, fs, "data", 0)
	require.NoError(t, err)

	_, err = f.ReadAt(make([]byte, 4), 0)
	assert.ErrorIs(t, err, vfstest.ErrInjected)

	var pathErr *vfsio.PathError
	assert.ErrorAs(t, err, &pathErr)

	assert.ErrorIs(t, f.Close(), vfstest.ErrInjected)
}
