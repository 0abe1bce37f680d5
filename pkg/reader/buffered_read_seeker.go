// Copyright (c) 2025 Stefano Scafiti
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.
package reader

import (
	"errors"
	"fmt"
	"io"
)

// BufferedReadSeeker adds buffering, peeking and cheap short seeks to an
// io.ReadSeeker.
type BufferedReadSeeker struct {
	src     io.ReadSeeker
	buf     []byte
	currPos int64 // source offset of buf[0]
	off     int   // read offset in buffer
	size    int   // number of valid bytes in buffer
	eof     bool
}

func NewBufferedReadSeeker(src io.ReadSeeker, bufSize int) *BufferedReadSeeker {
	return &BufferedReadSeeker{
		src: src,
		buf: make([]byte, bufSize),
	}
}

// fill slides unread data to the start of the buffer and reads from the
// source until the buffer is full or the source is exhausted.
func (b *BufferedReadSeeker) fill() error {
	copied := copy(b.buf, b.buf[b.off:b.size])
	b.currPos += int64(b.off)
	b.off = 0
	b.size = copied

	for b.size < len(b.buf) && !b.eof {
		n, err := b.src.Read(b.buf[b.size:])
		b.size += n
		if errors.Is(err, io.EOF) {
			b.eof = true
			break
		}
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrNoProgress
		}
	}
	return nil
}

func (b *BufferedReadSeeker) Read(p []byte) (int, error) {
	readBytes := 0
	for readBytes < len(p) {
		if b.off >= b.size {
			if err := b.fill(); err != nil {
				return readBytes, err
			}
			if b.size == 0 {
				return readBytes, io.EOF
			}
		}
		n := copy(p[readBytes:], b.buf[b.off:b.size])
		b.off += n
		readBytes += n
	}
	return readBytes, nil
}

// Pos returns the offset of the next byte to be read.
func (b *BufferedReadSeeker) Pos() int64 {
	return b.currPos + int64(b.off)
}

func (b *BufferedReadSeeker) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart, io.SeekEnd:
	case io.SeekCurrent:
		offset += b.Pos()
		whence = io.SeekStart
	default:
		return -1, fmt.Errorf("BufferedReadSeeker.Seek(): invalid whence: %d", whence)
	}

	if offset < 0 && whence == io.SeekStart {
		return -1, fmt.Errorf("BufferedReadSeeker.Seek: negative position")
	}

	// Seeks within the buffered data only move the read offset.
	if whence == io.SeekStart && offset >= b.currPos && offset <= b.currPos+int64(b.size) {
		b.off = int(offset - b.currPos)
		return offset, nil
	}

	newOffset, err := b.src.Seek(offset, whence)
	if err != nil {
		return 0, err
	}

	b.off = 0
	b.size = 0
	b.eof = false
	b.currPos = newOffset
	return newOffset, nil
}

// Peek returns the next n bytes without advancing the reader. Fewer bytes
// are returned, together with io.EOF, only at the end of the source.
func (b *BufferedReadSeeker) Peek(n int) ([]byte, error) {
	if n > len(b.buf) {
		return nil, errors.New("peek size exceeds buffer capacity")
	}

	if b.off+n > b.size {
		if err := b.fill(); err != nil {
			return nil, err
		}
	}

	available := b.size - b.off
	if n > available {
		return b.buf[b.off:b.size], io.EOF
	}
	return b.buf[b.off : b.off+n], nil
}

// Discard skips the next n bytes.
func (b *BufferedReadSeeker) Discard(n int) (int, error) {
	if n <= b.size-b.off {
		b.off += n
		return n, nil
	}
	if _, err := b.Seek(int64(n), io.SeekCurrent); err != nil {
		return 0, err
	}
	return n, nil
}

func (b *BufferedReadSeeker) Reset(r io.ReadSeeker) {
	b.src = r
	b.off = 0
	b.size = 0
	b.currPos = 0
	b.eof = false
}

func (b *BufferedReadSeeker) BufferSize() int {
	return len(b.buf)
}
