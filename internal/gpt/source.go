package gpt

import "fmt"

// Source gives bounds-checked access to the image being scanned.
// Implementations must fail instead of returning fewer bytes than requested.
type Source interface {
	// Len returns the total length of the image in bytes.
	Len() uint64
	// ReadN returns a private copy of exactly n bytes starting at off.
	ReadN(off, n uint64) ([]byte, error)
	// Need returns a view of n bytes starting at off. The view is only
	// valid until the next call on the same Source and must not be modified.
	Need(off, n uint64) ([]byte, error)
}

func readN(src Source, off, n uint64) ([]byte, error) {
	b, err := src.ReadN(off, n)
	if err != nil {
		return nil, &FormatError{
			Check:  CheckShortRead,
			Detail: shortReadDetail(off, n, src.Len()),
			Err:    err,
		}
	}
	if uint64(len(b)) != n {
		return nil, formatErr(CheckShortRead, "%s", shortReadDetail(off, n, src.Len()))
	}
	return b, nil
}

func shortReadDetail(off, n, size uint64) string {
	return fmt.Sprintf("offset %d length %d image size %d", off, n, size)
}
