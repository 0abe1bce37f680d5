//go:build !linux && !darwin && !freebsd

package sysinfo

func kernelRelease() string { return "" }
