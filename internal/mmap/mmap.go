//go:build unix

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
package mmap

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// File is a read-only mapping of a whole image file.
type File struct {
	Data []byte
	file *os.File
}

// Open maps the file at path into memory. Empty files and files whose
// size cannot be determined through Stat (such as some block devices)
// cannot be mapped.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %q: %w", path, err)
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to get file info for %q: %w", path, err)
	}

	size := fi.Size()
	if size <= 0 {
		f.Close()
		return nil, fmt.Errorf("%w: %q has no mappable size", ErrUnsupported, path)
	}
	if int64(int(size)) != size {
		f.Close()
		return nil, fmt.Errorf("%w: %q is too large to map", ErrUnsupported, path)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to mmap file %q with length %d: %w", path, size, err)
	}

	return &File{Data: data, file: f}, nil
}

func (m *File) Len() uint64 {
	return uint64(len(m.Data))
}

// Close unmaps the memory region and closes the underlying file.
func (m *File) Close() error {
	var err error
	if m.Data != nil {
		if uerr := unix.Munmap(m.Data); uerr != nil {
			err = fmt.Errorf("failed to munmap: %w", uerr)
		}
		m.Data = nil
	}
	if m.file != nil {
		if cerr := m.file.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("failed to close file: %w", cerr))
		}
		m.file = nil
	}
	return err
}
