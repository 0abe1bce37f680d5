//go:build !windows
// +build !windows

package fs

import "os"

// Open opens an image file or a raw device for reading.
func Open(path string) (File, error) {
	return os.Open(path)
}
