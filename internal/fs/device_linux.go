package fs

import (
	"fmt"

	"golang.org/x/sys/unix"
)

func deviceSize(fd uintptr) (uint64, error) {
	size, err := unix.IoctlGetInt(int(fd), unix.BLKGETSIZE64)
	if err != nil {
		return 0, fmt.Errorf("BLKGETSIZE64 failed: %w", err)
	}
	return uint64(size), nil
}
