//go:build linux || darwin || freebsd

package sysinfo

import "golang.org/x/sys/unix"

// kernelRelease returns the running kernel release as reported by uname(2).
func kernelRelease() string {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return ""
	}
	return unix.ByteSliceToString(uts.Release[:])
}
