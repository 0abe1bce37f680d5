// Package fmap provides bounds-checked random access to an image.
package fmap

import (
	"errors"
	"fmt"
	"io"
)

var ErrOutOfBounds = errors.New("fmap: access out of bounds")

// Map exposes a fixed-length region of bytes. When the region is held in
// memory, Need returns slices of it directly; otherwise reads go through
// the underlying io.ReaderAt and Need reuses an internal buffer.
type Map struct {
	r    io.ReaderAt
	data []byte
	size uint64
	buf  []byte
}

// New maps the first size bytes of r.
func New(r io.ReaderAt, size uint64) *Map {
	return &Map{r: r, size: size}
}

// FromBytes maps an in-memory buffer, such as a memory mapped file.
func FromBytes(b []byte) *Map {
	return &Map{data: b, size: uint64(len(b))}
}

func (m *Map) Len() uint64 {
	return m.size
}

func (m *Map) check(off, n uint64) error {
	if off > m.size || n > m.size-off {
		return fmt.Errorf("%w: offset %d length %d size %d", ErrOutOfBounds, off, n, m.size)
	}
	return nil
}

// Need returns a view of n bytes at off. The view must not be modified
// and is only valid until the next call to Need.
func (m *Map) Need(off, n uint64) ([]byte, error) {
	if err := m.check(off, n); err != nil {
		return nil, err
	}
	if m.data != nil {
		return m.data[off : off+n : off+n], nil
	}

	if uint64(cap(m.buf)) < n {
		m.buf = make([]byte, n)
	}
	buf := m.buf[:n]
	if err := m.readFull(buf, off); err != nil {
		return nil, err
	}
	return buf, nil
}

// ReadN returns a copy of n bytes at off.
func (m *Map) ReadN(off, n uint64) ([]byte, error) {
	if err := m.check(off, n); err != nil {
		return nil, err
	}
	b := make([]byte, n)
	if m.data != nil {
		copy(b, m.data[off:])
		return b, nil
	}
	if err := m.readFull(b, off); err != nil {
		return nil, err
	}
	return b, nil
}

// ReadAt implements io.ReaderAt over the mapped region.
func (m *Map) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, ErrOutOfBounds
	}
	if uint64(off) >= m.size {
		return 0, io.EOF
	}

	n := min(uint64(len(p)), m.size-uint64(off))
	if m.data != nil {
		copy(p, m.data[off:uint64(off)+n])
	} else if err := m.readFull(p[:n], uint64(off)); err != nil {
		return 0, err
	}

	if n < uint64(len(p)) {
		return int(n), io.EOF
	}
	return int(n), nil
}

func (m *Map) readFull(p []byte, off uint64) error {
	n, err := m.r.ReadAt(p, int64(off))
	if n == len(p) {
		return nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return fmt.Errorf("failed to read %d bytes at offset %d: %w", len(p), off, err)
}
