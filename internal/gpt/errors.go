// Copyright (c) 2025 Stefano Scafiti
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.
package gpt

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned when a required input is missing.
	ErrInvalidArgument = errors.New("gpt: invalid argument")

	// ErrFormat matches every *FormatError through errors.Is.
	ErrFormat = errors.New("gpt: format error")
)

// Check identifies the structural check that rejected an image or header.
type Check int

const (
	CheckShortRead Check = iota
	CheckSectorSize
	CheckImageSize
	CheckHeaderCRC
	CheckSignature
	CheckHeaderSize
	CheckReserved
	CheckHeaderLocation
	CheckUsableOrder
	CheckUsableRange
	CheckTableLocation
	CheckEntrySize
	CheckTableBounds
	CheckTableCRC
	CheckDiskUnusable
	CheckTableRead
)

var checkNames = [...]string{
	CheckShortRead:      "short read",
	CheckSectorSize:     "unknown sector size",
	CheckImageSize:      "image size is not a multiple of the sector size",
	CheckHeaderCRC:      "header checksum mismatch",
	CheckSignature:      "invalid signature",
	CheckHeaderSize:     "unexpected header size",
	CheckReserved:       "reserved field is not zero",
	CheckHeaderLocation: "header LBAs are not in a valid configuration",
	CheckUsableOrder:    "first usable LBA is after last usable LBA",
	CheckUsableRange:    "usable LBAs intersect a header sector",
	CheckTableLocation:  "partition table intersects usable LBAs or a header sector",
	CheckEntrySize:      "unsupported partition entry size",
	CheckTableBounds:    "partition table extends past the end of the image",
	CheckTableCRC:       "partition table checksum mismatch",
	CheckDiskUnusable:   "both headers are invalid, disk is unusable",
	CheckTableRead:      "partition entry could not be read",
}

func (c Check) String() string {
	if c < 0 || int(c) >= len(checkNames) {
		return fmt.Sprintf("check(%d)", int(c))
	}
	return checkNames[c]
}

// FormatError reports a structural, checksum or bounds failure.
type FormatError struct {
	Check  Check
	Detail string
	Err    error
}

func (e *FormatError) Error() string {
	msg := "gpt: " + e.Check.String()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FormatError) Unwrap() error { return e.Err }

func (e *FormatError) Is(target error) bool { return target == ErrFormat }

func formatErr(c Check, format string, args ...any) *FormatError {
	return &FormatError{Check: c, Detail: fmt.Sprintf(format, args...)}
}

// CheckOf returns the failed check carried by err, if any.
func CheckOf(err error) (Check, bool) {
	var fe *FormatError
	if errors.As(err, &fe) {
		return fe.Check, true
	}
	return 0, false
}
