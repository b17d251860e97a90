package vfsio

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// deleteConcurrency bounds the number of in-flight deletes of DeleteAll.
const deleteConcurrency = 8

// DeleteAll deletes every name concurrently. Missing names are not errors.
// The first failure cancels the remaining deletes and is returned.
func DeleteAll(ctx context.Context, fs FileSystem, names []string) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(deleteConcurrency)

	for _, name := range names {
		name := name
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fs.Delete(gctx, name)
		})
	}
	return g.Wait()
}
