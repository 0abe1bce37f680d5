//go:build windows
// +build windows

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
package fs

import (
	"fmt"
	"io"
	"os"
	"syscall"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
)

type WindowsDiskFile struct {
	name   string
	handle windows.Handle
	offset int64 // used for io.Reader
	// align is the unit raw device reads must be aligned to.
	align int64
}

type diskFileInfo struct {
	name    string
	size    int64
	mode    os.FileMode
	modTime time.Time
	sys     any
}

func (fi *diskFileInfo) Name() string       { return fi.name }
func (fi *diskFileInfo) Size() int64        { return fi.size }
func (fi *diskFileInfo) Mode() os.FileMode  { return fi.mode }
func (fi *diskFileInfo) ModTime() time.Time { return fi.modTime }
func (fi *diskFileInfo) IsDir() bool        { return fi.mode.IsDir() }
func (fi *diskFileInfo) Sys() any           { return fi.sys }

// Open opens a disk, volume or image file for raw reading.
func Open(path string) (File, error) {
	handle, err := windows.CreateFile(
		windows.StringToUTF16Ptr(path),
		windows.GENERIC_READ,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE,
		nil,
		windows.OPEN_EXISTING,
		0,
		0,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open %q: %w", path, err)
	}

	d := &WindowsDiskFile{name: path, handle: handle, align: 512}
	if bps := d.bytesPerSector(); bps > 0 {
		d.align = int64(bps)
	}
	return d, nil
}

type diskGeometry struct {
	Cylinders         int64
	MediaType         uint32
	TracksPerCylinder uint32
	SectorsPerTrack   uint32
	BytesPerSector    uint32
}

const ioctlDiskGetDriveGeometry = 0x70000

// bytesPerSector returns the logical sector size of a device, or zero for
// regular files.
func (d *WindowsDiskFile) bytesPerSector() uint32 {
	var geometry diskGeometry
	var bytesReturned uint32

	err := windows.DeviceIoControl(
		d.handle,
		ioctlDiskGetDriveGeometry,
		nil,
		0,
		(*byte)(unsafe.Pointer(&geometry)),
		uint32(unsafe.Sizeof(geometry)),
		&bytesReturned,
		nil,
	)
	if err != nil {
		return 0
	}
	return geometry.BytesPerSector
}

// Read reads from the current offset (for io.Reader)
func (d *WindowsDiskFile) Read(p []byte) (int, error) {
	n, err := d.ReadAt(p, d.offset)
	d.offset += int64(n)
	return n, err
}

// ReadAt reads len(p) bytes at off. Raw devices only accept sector
// aligned transfers, so the read is widened to whole sectors.
func (d *WindowsDiskFile) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("negative offset %d", off)
	}

	alignedOffset := off / d.align * d.align
	alignmentDiff := off - alignedOffset
	alignedSize := (int64(len(p)) + alignmentDiff + d.align - 1) / d.align * d.align

	buf := make([]byte, alignedSize)

	var bytesRead uint32
	ov := new(windows.Overlapped)
	ov.Offset = uint32(alignedOffset)
	ov.OffsetHigh = uint32(alignedOffset >> 32)

	err := windows.ReadFile(d.handle, buf, &bytesRead, ov)
	if err == syscall.ERROR_IO_PENDING {
		err = windows.GetOverlappedResult(d.handle, ov, &bytesRead, true)
	}
	if err == windows.ERROR_HANDLE_EOF {
		err = nil
	}
	if err != nil {
		return 0, fmt.Errorf("aligned read at %d failed: %w", alignedOffset, err)
	}

	if int64(bytesRead) <= alignmentDiff {
		return 0, io.EOF
	}

	n := copy(p, buf[alignmentDiff:bytesRead])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// diskLengthInfo mirrors GET_LENGTH_INFORMATION.
type diskLengthInfo struct {
	Length int64
}

const ioctlDiskGetLengthInfo = 0x7405c

// Stat reports the exact byte length of the disk or volume, which drive
// geometry cannot give when the last cylinder is partial.
func (d *WindowsDiskFile) Stat() (os.FileInfo, error) {
	var info diskLengthInfo
	var bytesReturned uint32

	err := windows.DeviceIoControl(
		d.handle,
		ioctlDiskGetLengthInfo,
		nil,
		0,
		(*byte)(unsafe.Pointer(&info)),
		uint32(unsafe.Sizeof(info)),
		&bytesReturned,
		nil,
	)
	if err != nil {
		return d.statRegular()
	}

	return &diskFileInfo{
		name: d.name,
		size: info.Length,
		mode: os.ModeDevice,
		sys:  info,
	}, nil
}

// statRegular handles image files opened through the same path.
func (d *WindowsDiskFile) statRegular() (os.FileInfo, error) {
	var fi windows.ByHandleFileInformation
	if err := windows.GetFileInformationByHandle(d.handle, &fi); err != nil {
		return nil, fmt.Errorf("failed to stat %q: %w", d.name, err)
	}
	return &diskFileInfo{
		name:    d.name,
		size:    int64(fi.FileSizeHigh)<<32 | int64(fi.FileSizeLow),
		modTime: time.Unix(0, fi.LastWriteTime.Nanoseconds()),
		sys:     fi,
	}, nil
}

// Close closes the underlying handle
func (d *WindowsDiskFile) Close() error {
	return windows.CloseHandle(d.handle)
}
