package vfsio_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/hupe1980/vfsio"
	"github.com/hupe1980/vfsio/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeleteAll(t *testing.T) {
	ctx := context.Background()
	fs := store.NewMemoryFS()

	var names []string
	for i := 0; i < 20; i++ {
		name := fmt.Sprintf("segment-%02d", i)
		s, err := fs.Open(ctx, name)
		require.NoError(t, err)
		require.NoError(t, s.Close())
		names = append(names, name)
	}
	names = append(names, "never-created")

	require.NoError(t, vfsio.DeleteAll(ctx, fs, names))

	left, err := fs.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestDeleteAll_FirstErrorWins(t *testing.T) {
	err := vfsio.DeleteAll(context.Background(), failingFS{}, []string{"a", "b", "c"})
	assert.ErrorIs(t, err, errBackend)
}
