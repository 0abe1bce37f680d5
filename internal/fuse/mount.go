//go:build !linux
// +build !linux

package fuse

import (
	"fmt"
	"io"

	"github.com/ostafen/gptscan/internal/gpt"
)

func Mount(mountpoint string, r io.ReaderAt, parts []gpt.Partition) error {
	return fmt.Errorf("FUSE mount is only supported on Linux")
}
