package fs

import (
	"fmt"
	"io"
	"os"
)

type File interface {
	io.ReadCloser
	io.ReaderAt
	Stat() (os.FileInfo, error)
}

// Size returns the length in bytes of an opened image or device.
func Size(f File) (uint64, error) {
	fi, err := f.Stat()
	if err != nil {
		return 0, fmt.Errorf("failed to stat image: %w", err)
	}
	if fi.Size() < 0 {
		return 0, fmt.Errorf("invalid image size %d", fi.Size())
	}

	// Block devices report a zero size through stat.
	if fi.Size() == 0 && fi.Mode()&os.ModeDevice != 0 {
		if fd, ok := f.(interface{ Fd() uintptr }); ok {
			return deviceSize(fd.Fd())
		}
	}
	return uint64(fi.Size()), nil
}
