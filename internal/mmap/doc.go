// Package mmap maps files read-only into memory.
//
//	m, err := mmap.Open("main.db")
//	if err != nil { ... }
//	defer m.Close()
//
//	n, err := m.ReadAt(buf, off)
//
// Unix systems use mmap(2) and madvise(2). Windows uses
// CreateFileMapping/MapViewOfFile; Advise is a no-op there.
//
// Close is idempotent. Callers must not touch Bytes() after Close returns.
package mmap
