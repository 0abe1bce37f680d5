package gpt

import (
	"errors"

	"github.com/google/uuid"
	"github.com/ostafen/gptscan/internal/disk"
)

// Table names the copy of the partition table an entry was read from.
type Table int

const (
	PrimaryTable Table = iota
	SecondaryTable
)

func (t Table) String() string {
	if t == SecondaryTable {
		return "secondary"
	}
	return "primary"
}

// Partition is a valid table entry resolved to a byte range of the image.
type Partition struct {
	disk.Partition

	Table      Table
	FirstLBA   uint64
	LastLBA    uint64
	TypeGUID   uuid.UUID
	UniqueGUID uuid.UUID
	Attributes uint64
	Name       string
}

type DetectionKind int

const (
	ContentDetection DetectionKind = iota
	HeuristicDetection
)

func (k DetectionKind) String() string {
	if k == HeuristicDetection {
		return "heuristic"
	}
	return "content"
}

// Detection is a finding raised while scanning an image. Entries holds
// the indices of the table entries involved; for an intersection the
// earlier entry comes first.
type Detection struct {
	Name    string
	Kind    DetectionKind
	Table   Table
	Entries []int
	Offset  uint64
	Length  uint64
}

// Result collects what a scan found.
type Result struct {
	SectorSize uint64
	State      State
	DiskGUID   uuid.UUID
	// Partitions lists the partitions submitted to the content scanner.
	Partitions []Partition
	Detections []Detection
}

func (r *Result) Detected() bool {
	return r != nil && len(r.Detections) > 0
}

// Code is the overall outcome of a scan.
type Code int

const (
	CodeClean Code = iota
	CodeDetection
	CodeFormatError
	CodeInvalidArgument
	CodeError
)

func (c Code) String() string {
	switch c {
	case CodeClean:
		return "clean"
	case CodeDetection:
		return "detected"
	case CodeFormatError:
		return "format error"
	case CodeInvalidArgument:
		return "invalid argument"
	default:
		return "error"
	}
}

// Classify maps the return values of Scan to a single outcome.
func Classify(res *Result, err error) Code {
	switch {
	case err == nil && res.Detected():
		return CodeDetection
	case err == nil:
		return CodeClean
	case errors.Is(err, ErrInvalidArgument):
		return CodeInvalidArgument
	case errors.Is(err, ErrFormat):
		return CodeFormatError
	default:
		return CodeError
	}
}
