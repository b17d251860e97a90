// Package hash provides the CRC32-Castagnoli checksum used for object
// integrity checks.
//
// Go's hash/crc32 switches to hardware instructions (SSE4.2, ARM CRC) when
// the CPU supports them.
package hash
