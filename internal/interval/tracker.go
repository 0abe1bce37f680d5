// Package interval tracks half-open ranges and reports intersections
// between them.
package interval

type span struct {
	id    int
	start uint64
	end   uint64 // exclusive, saturated at MaxUint64
}

// Tracker stores ranges in insertion order. Lookups are linear, which is
// fine for the few dozen entries of a partition table.
type Tracker struct {
	spans []span
}

func New() *Tracker {
	return &Tracker{}
}

// CheckAndInsert records [start, start+length) under id. If a previously
// recorded range intersects it, the id of the earliest such range is
// returned with conflict set. The range is recorded either way.
func (t *Tracker) CheckAndInsert(id int, start, length uint64) (prior int, conflict bool) {
	end := start + length
	if end < start {
		end = ^uint64(0)
	}

	prior = -1
	if length > 0 {
		for _, s := range t.spans {
			if s.start < end && start < s.end {
				prior, conflict = s.id, true
				break
			}
		}
	}

	t.spans = append(t.spans, span{id: id, start: start, end: end})
	return prior, conflict
}

func (t *Tracker) Release() {
	t.spans = nil
}
