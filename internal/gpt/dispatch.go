package gpt

import (
	"fmt"

	"github.com/ostafen/gptscan/internal/disk"
)

// TypeHint tells the content scanner what kind of data a range holds.
type TypeHint int

const (
	// TypePartAny marks a partition of unknown filesystem type.
	TypePartAny TypeHint = iota + 1
)

// Verdict is the outcome of scanning one byte range.
type Verdict struct {
	Detected bool
	Name     string
}

// Clean is the verdict for a range where nothing was found.
var Clean = Verdict{}

// Detected returns a verdict carrying the given detection name.
func Detected(name string) Verdict {
	return Verdict{Detected: true, Name: name}
}

// ContentScanner inspects a byte range of the image being scanned.
type ContentScanner interface {
	ScanRange(off, length uint64, hint TypeHint) (Verdict, error)
}

// ContentScannerFunc adapts a function to the ContentScanner interface.
type ContentScannerFunc func(off, length uint64, hint TypeHint) (Verdict, error)

func (f ContentScannerFunc) ScanRange(off, length uint64, hint TypeHint) (Verdict, error) {
	return f(off, length, hint)
}

// dispatchPartitions hands every valid partition of hdr's table to the
// content scanner.
func (r *run) dispatchPartitions(hdr *Header) (stop bool, err error) {
	table := hdr.Table

	err = walkTable(r.src, hdr, r.sectorSize, r.opts.MaxPartitions, r.logger, func(idx int, e *Entry) (bool, error) {
		p := newPartition(table, idx, e, r.sectorSize)
		r.logEntry(p)
		r.res.Partitions = append(r.res.Partitions, p)

		v, err := r.content.ScanRange(p.Offset, p.Size, TypePartAny)
		if err != nil {
			return true, fmt.Errorf("failed to scan partition %d of %s table: %w", idx, table, err)
		}
		if !v.Detected {
			return false, nil
		}

		stop = r.detect(Detection{
			Name:    v.Name,
			Kind:    ContentDetection,
			Table:   table,
			Entries: []int{idx},
			Offset:  p.Offset,
			Length:  p.Size,
		})
		return stop, nil
	})
	return stop, err
}

func newPartition(table Table, idx int, e *Entry, sectorSize uint64) Partition {
	off, length := e.ByteRange(sectorSize)
	return Partition{
		Partition: disk.Partition{
			Num:       idx,
			Offset:    off,
			Size:      length,
			BlockSize: uint32(sectorSize),
		},
		Table:      table,
		FirstLBA:   e.FirstLBA,
		LastLBA:    e.LastLBA,
		TypeGUID:   e.TypeUUID(),
		UniqueGUID: e.UniqueUUID(),
		Attributes: e.Attributes,
		Name:       e.NameString(),
	}
}

func (r *run) logEntry(p Partition) {
	r.logger.Debug("partition entry",
		"table", p.Table.String(),
		"index", p.Num,
		"name", p.Name,
		"type_guid", p.TypeGUID.String(),
		"unique_guid", p.UniqueGUID.String(),
		"attributes", fmt.Sprintf("%#x", p.Attributes),
		"first_lba", p.FirstLBA,
		"last_lba", p.LastLBA,
		"offset", p.Offset,
		"size", p.Size,
	)
}
