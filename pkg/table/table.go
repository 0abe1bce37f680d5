// Package table implements a prefix lookup table for short byte keys.
package table

// TableSize is the number of slots of the marker array, one per value of
// the 16-bit rolling hash.
const TableSize = 1 << 16

const (
	none = iota
	// presentMarker flags a hash reached by a proper prefix of some key.
	presentMarker
	// elemMarker flags a hash reached by a complete key.
	elemMarker
)

// PrefixTable maps byte keys to values and finds, for a given input, every
// stored key that is a prefix of it.
//
// Each prefix of a stored key marks the slot of its rolling hash, so a walk
// over the input can stop at the first byte whose prefix hash was never
// marked. Hash collisions only cost an extra map lookup: a walk never
// reports a key that is not actually a prefix of the input.
type PrefixTable[T any] struct {
	table  [TableSize]byte
	elems  map[string]T
	maxLen int
}

func New[T any]() *PrefixTable[T] {
	return &PrefixTable[T]{
		elems: make(map[string]T),
	}
}

func hashStep(h uint16, b byte) uint16 {
	return (h << 2) + uint16(b)
}

// Insert stores v under key, replacing any previous value.
// Empty keys are ignored.
func (t *PrefixTable[T]) Insert(key []byte, v T) {
	if len(key) == 0 {
		return
	}

	var h uint16
	for _, b := range key {
		h = hashStep(h, b)
		t.table[h] = max(t.table[h], presentMarker)
	}
	t.table[h] = elemMarker
	t.elems[string(key)] = v
	t.maxLen = max(t.maxLen, len(key))
}

func (t *PrefixTable[T]) Get(key []byte) (T, bool) {
	v, found := t.elems[string(key)]
	return v, found
}

// Walk calls onMatch, shortest first, for every stored key that is a prefix
// of data. It stops as soon as onMatch returns true.
func (t *PrefixTable[T]) Walk(data []byte, onMatch func(T) bool) {
	if len(data) > t.maxLen {
		data = data[:t.maxLen]
	}

	var h uint16
	for i, b := range data {
		h = hashStep(h, b)

		switch t.table[h] {
		case none:
			return
		case elemMarker:
			if v, ok := t.elems[string(data[:i+1])]; ok && onMatch(v) {
				return
			}
		}
	}
}

// Range calls fn for every stored key until fn returns false.
// The iteration order is unspecified.
func (t *PrefixTable[T]) Range(fn func(key []byte, v T) bool) {
	for k, v := range t.elems {
		if !fn([]byte(k), v) {
			return
		}
	}
}

// MaxKeyLen returns the length of the longest stored key.
func (t *PrefixTable[T]) MaxKeyLen() int {
	return t.maxLen
}

// Size returns the number of stored keys.
func (t *PrefixTable[T]) Size() int {
	return len(t.elems)
}
