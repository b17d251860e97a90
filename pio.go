package vfsio

import (
	"errors"
	"fmt"
	"io"
)

// PositionedRead reads up to count bytes at the absolute position into
// buf[bufOffset:bufOffset+count] and returns the number of bytes read.
//
// The stream is read repeatedly until count bytes arrive or a read returns
// no data. A short count is not an error: it means the data ended. The
// stream cursor is restored before returning, on every path.
func PositionedRead(s Stream, buf []byte, bufOffset, count int, position int64) (n int, err error) {
	if err := checkRegion(buf, bufOffset, count, position); err != nil {
		return 0, err
	}

	restore, err := seekTemporarily(s, position)
	if err != nil {
		return 0, err
	}
	defer func() { err = restore(err) }()

	dst := buf[bufOffset : bufOffset+count]
	for n < count {
		m, rerr := s.Read(dst[n:])
		if m > 0 {
			n += m
		}
		if rerr != nil {
			if errors.Is(rerr, io.EOF) {
				return n, nil
			}
			return n, rerr
		}
		if m <= 0 {
			break
		}
	}

	return n, nil
}

// PositionedWrite writes buf[bufOffset:bufOffset+count] at the absolute
// position with a single stream write and returns count.
//
// Partial writes are not modeled: a stream that accepts fewer bytes without
// reporting an error yields io.ErrShortWrite. The stream cursor is restored
// before returning, on every path.
func PositionedWrite(s Stream, buf []byte, bufOffset, count int, position int64) (n int, err error) {
	if err := checkRegion(buf, bufOffset, count, position); err != nil {
		return 0, err
	}

	restore, err := seekTemporarily(s, position)
	if err != nil {
		return 0, err
	}
	defer func() { err = restore(err) }()

	if count == 0 {
		return 0, nil
	}

	m, werr := s.Write(buf[bufOffset : bufOffset+count])
	if werr != nil {
		return 0, werr
	}
	if m != count {
		return 0, io.ErrShortWrite
	}

	return count, nil
}

// seekTemporarily saves the cursor, moves it to position and returns the
// function that moves it back. The returned function folds a restore
// failure into the operation error.
func seekTemporarily(s Stream, position int64) (func(error) error, error) {
	saved, err := s.Position()
	if err != nil {
		return nil, err
	}

	restore := func(opErr error) error {
		if rerr := s.SetPosition(saved); rerr != nil {
			return errors.Join(opErr, fmt.Errorf("restore position %d: %w", saved, rerr))
		}
		return opErr
	}

	if err := s.SetPosition(position); err != nil {
		// A failed seek may still have moved the cursor.
		return nil, restore(err)
	}

	return restore, nil
}

func checkRegion(buf []byte, bufOffset, count int, position int64) error {
	if bufOffset < 0 || count < 0 || bufOffset > len(buf) || count > len(buf)-bufOffset {
		return fmt.Errorf("%w: offset %d count %d len %d", ErrInvalidRegion, bufOffset, count, len(buf))
	}
	if position < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPosition, position)
	}
	return nil
}
