// Package s3 stores files as Amazon S3 objects through aws-sdk-go-v2.
//
// # Usage
//
//	fs, err := s3.NewFromConfig(ctx, "databases", "tenant-1/", s3.WithRegion("eu-central-1"))
//	if err != nil { ... }
//
//	f, err := vfsio.OpenFile(ctx, fs, "main.db", 0)
//
// Reads of unchanged files are served with ranged GETs. The first write loads
// the object into memory; Flush and Close upload it with the transfer
// manager, which switches to multipart uploads above UploadConfig.PartSize.
//
// # Testing
//
// Store accepts any Client, so unit tests can substitute a mock for *s3.Client.
package s3
