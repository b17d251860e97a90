package vfsio

import (
	"fmt"
	"io"
)

// Seek moves the cursor of s relative to whence (io.SeekStart, io.SeekCurrent
// or io.SeekEnd) and returns the new position.
func Seek(s Stream, offset int64, whence int) (int64, error) {
	var base int64
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		pos, err := s.Position()
		if err != nil {
			return 0, err
		}
		base = pos
	case io.SeekEnd:
		size, err := s.Length()
		if err != nil {
			return 0, err
		}
		base = size
	default:
		return 0, fmt.Errorf("%w: %d", ErrInvalidWhence, whence)
	}

	target := base + offset
	if target < 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidPosition, target)
	}
	if err := s.SetPosition(target); err != nil {
		return 0, err
	}
	return s.Position()
}
