// Package minio stores files as objects in MinIO or any S3-compatible
// service through minio-go.
//
//	client, _ := minio.New(endpoint, &minio.Options{Creds: creds})
//	fs := vfsminio.NewStore(client, "databases", "tenant-1/", vfsminio.WithCompression(compress.ZSTD))
//
// Reads of unchanged files are served with ranged GETs. The first write
// loads the object into memory; Flush and Close upload it.
package minio
