package vfsio

import (
	"errors"
	"io"
)

var errInjected = errors.New("injected")

// fakeStream is an in-memory Stream with fault injection.
type fakeStream struct {
	data   []byte
	pos    int64
	closed bool

	// maxRead caps the bytes returned per Read.
	maxRead int
	// eofWithData returns io.EOF together with the final bytes.
	eofWithData bool
	// zeroRead makes Read return (0, nil) without advancing.
	zeroRead bool

	readErr     error
	writeErr    error
	shortWrite  bool
	positionErr error
	// setPosErrAfter fails SetPosition once this many calls succeeded; <0 disables.
	setPosErrAfter int
	setPosCalls    int
}

func newFakeStream(data string) *fakeStream {
	return &fakeStream{data: []byte(data), setPosErrAfter: -1}
}

func (s *fakeStream) Read(p []byte) (int, error) {
	if s.closed {
		return 0, ErrClosed
	}
	if s.readErr != nil {
		return 0, s.readErr
	}
	if s.zeroRead {
		return 0, nil
	}
	if s.pos >= int64(len(s.data)) {
		return 0, io.EOF
	}
	if s.maxRead > 0 && len(p) > s.maxRead {
		p = p[:s.maxRead]
	}
	n := copy(p, s.data[s.pos:])
	s.pos += int64(n)
	if s.eofWithData && s.pos >= int64(len(s.data)) {
		return n, io.EOF
	}
	return n, nil
}

func (s *fakeStream) Write(p []byte) (int, error) {
	if s.closed {
		return 0, ErrClosed
	}
	if s.writeErr != nil {
		return 0, s.writeErr
	}
	if s.shortWrite && len(p) > 0 {
		p = p[:len(p)-1]
	}
	end := s.pos + int64(len(p))
	if end > int64(len(s.data)) {
		s.data = append(s.data, make([]byte, end-int64(len(s.data)))...)
	}
	copy(s.data[s.pos:], p)
	s.pos = end
	return len(p), nil
}

func (s *fakeStream) Flush() error {
	if s.closed {
		return ErrClosed
	}
	return nil
}

func (s *fakeStream) Close() error {
	s.closed = true
	return nil
}

func (s *fakeStream) Position() (int64, error) {
	if s.closed {
		return 0, ErrClosed
	}
	if s.positionErr != nil {
		return 0, s.positionErr
	}
	return s.pos, nil
}

func (s *fakeStream) SetPosition(pos int64) error {
	if s.closed {
		return ErrClosed
	}
	if s.setPosErrAfter >= 0 && s.setPosCalls >= s.setPosErrAfter {
		return errInjected
	}
	s.setPosCalls++
	if pos < 0 {
		return ErrInvalidPosition
	}
	s.pos = pos
	return nil
}

func (s *fakeStream) Length() (int64, error) {
	if s.closed {
		return 0, ErrClosed
	}
	return int64(len(s.data)), nil
}

func (s *fakeStream) Truncate(size int64) error {
	if s.closed {
		return ErrClosed
	}
	if size < int64(len(s.data)) {
		s.data = s.data[:size]
	} else {
		s.data = append(s.data, make([]byte, size-int64(len(s.data)))...)
	}
	return nil
}
