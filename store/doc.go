// Package store provides the local vfsio.FileSystem backends.
//
// MemoryFS keeps every name in process memory and suits tests and
// temporary databases. LocalFS maps names to files below a root directory.
//
//	fs, err := store.NewLocalFS(dir)
//	if err != nil { ... }
//
//	s, err := fs.Open(ctx, "main.db")
//
// Object-store backends live in the minio and s3 subpackages; bbolt and
// go-billy adapters live in bolt and billy.
package store
