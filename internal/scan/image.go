package scan

import (
	"fmt"
	"io"

	"github.com/ostafen/gptscan/internal/fmap"
	"github.com/ostafen/gptscan/internal/fs"
	"github.com/ostafen/gptscan/internal/mmap"
)

// Image is an opened disk image or device, readable as a gpt.Source and
// as an io.ReaderAt.
type Image struct {
	*fmap.Map

	Path string
	// Mapped reports whether the image is memory mapped rather than read
	// through the file.
	Mapped bool

	closer io.Closer
}

// OpenImage maps the image at path into memory, falling back to plain
// reads for devices and platforms where mapping is not possible.
func OpenImage(path string) (*Image, error) {
	if m, err := mmap.Open(path); err == nil {
		return &Image{
			Map:    fmap.FromBytes(m.Data),
			Path:   path,
			Mapped: true,
			closer: m,
		}, nil
	}

	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file %q: %w", path, err)
	}

	size, err := fs.Size(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to get size of %q: %w", path, err)
	}

	return &Image{
		Map:    fmap.New(f, size),
		Path:   path,
		closer: f,
	}, nil
}

func (img *Image) AccessMode() string {
	if img.Mapped {
		return "mmap"
	}
	return "read"
}

func (img *Image) Close() error {
	return img.closer.Close()
}
