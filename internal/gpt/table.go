package gpt

import (
	"fmt"
	"log/slog"
)

// DefaultMaxPartitions bounds the number of entries examined per table
// when no explicit limit is configured.
const DefaultMaxPartitions = 50

// entryFunc is called for every valid entry of a table. Returning true
// stops the walk without error.
type entryFunc func(idx int, e *Entry) (stop bool, err error)

// walkTable decodes the partition table described by hdr, entry by entry.
// Entries are read at the stride given by the header, not at the width of
// the known record, and at most limit of them are examined. A read failure
// aborts the whole walk; entries that are unused or out of bounds are
// skipped silently.
func walkTable(src Source, hdr *Header, sectorSize uint64, limit uint32, logger *slog.Logger, fn entryFunc) error {
	base, ok := mul64(hdr.TableStartLBA, sectorSize)
	if !ok {
		return formatErr(CheckTableRead, "table offset overflows")
	}

	imageLen := src.Len()
	n := min(hdr.TableNumEntries, limit)

	for i := uint32(0); i < n; i++ {
		rel, ok := mul64(uint64(i), uint64(hdr.TableEntrySize))
		if !ok {
			return formatErr(CheckTableRead, "entry %d offset overflows", i)
		}
		pos, ok := add64(base, rel)
		if !ok {
			return formatErr(CheckTableRead, "entry %d offset overflows", i)
		}

		e, err := DecodeEntry(src, pos)
		if err != nil {
			return &FormatError{Check: CheckTableRead, Detail: fmt.Sprintf("entry %d", i), Err: err}
		}

		switch status := e.Classify(hdr, sectorSize, imageLen); status {
		case EntryValid:
			stop, err := fn(int(i), e)
			if err != nil || stop {
				return err
			}
		case EntryUnused:
		default:
			logger.Debug("skipping partition entry",
				"index", i,
				"reason", status.String(),
				"first_lba", e.FirstLBA,
				"last_lba", e.LastLBA,
				"first_usable_lba", hdr.FirstUsableLBA,
				"last_usable_lba", hdr.LastUsableLBA,
			)
		}
	}

	if hdr.TableNumEntries > limit {
		logger.Debug("max partitions reached", "limit", limit, "entries", hdr.TableNumEntries)
	}
	return nil
}
