package mmap

import "errors"

// ErrUnsupported is returned when a file cannot be memory mapped and
// must be read through regular I/O instead.
var ErrUnsupported = errors.New("mmap: unsupported")
