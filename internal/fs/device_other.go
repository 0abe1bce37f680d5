//go:build !linux

package fs

import "errors"

func deviceSize(fd uintptr) (uint64, error) {
	return 0, errors.New("unable to determine device size on this platform")
}
