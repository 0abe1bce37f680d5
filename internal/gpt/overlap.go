package gpt

// IntersectionDetection is reported when two entries of the same table
// claim intersecting block ranges.
const IntersectionDetection = "Heuristics.PartitionIntersection"

// IntervalTracker remembers the block ranges seen so far in one table.
type IntervalTracker interface {
	// CheckAndInsert records [start, start+length) under id and reports the
	// id of a previously recorded range that intersects it, if any.
	CheckAndInsert(id int, start, length uint64) (prior int, conflict bool)
	// Release drops every recorded range.
	Release()
}

// checkOverlaps feeds every valid entry of hdr's table to a fresh tracker.
func (r *run) checkOverlaps(hdr *Header) (stop bool, err error) {
	tracker := r.opts.NewTracker()
	defer tracker.Release()

	table := hdr.Table

	err = walkTable(r.src, hdr, r.sectorSize, r.opts.MaxPartitions, r.logger, func(idx int, e *Entry) (bool, error) {
		prior, conflict := tracker.CheckAndInsert(idx, e.FirstLBA, e.Blocks())
		if !conflict {
			return false, nil
		}

		r.logger.Info("detected intersection between partitions",
			"table", table.String(),
			"first", prior,
			"second", idx,
		)

		off, length := e.ByteRange(r.sectorSize)
		stop = r.detect(Detection{
			Name:    IntersectionDetection,
			Kind:    HeuristicDetection,
			Table:   table,
			Entries: []int{prior, idx},
			Offset:  off,
			Length:  length,
		})
		return stop, nil
	})
	return stop, err
}
