// Package vfstest provides a conformance suite for vfsio.FileSystem
// implementations.
//
// Backends run it from their own tests:
//
//	func TestMemoryFS_Conformance(t *testing.T) {
//	    vfstest.Run(t, func(t *testing.T) vfsio.FileSystem {
//	        return store.NewMemoryFS()
//	    })
//	}
//
// FaultyFS wraps any FileSystem and injects write, flush, seek, open and
// close failures into selected names.
package vfstest
