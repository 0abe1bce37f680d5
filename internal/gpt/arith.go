package gpt

import "math/bits"

// Every size derived from header fields goes through these helpers;
// the bool result is false when the value does not fit in 64 bits.

func mul64(a, b uint64) (uint64, bool) {
	hi, lo := bits.Mul64(a, b)
	return lo, hi == 0
}

func add64(a, b uint64) (uint64, bool) {
	sum, carry := bits.Add64(a, b, 0)
	return sum, carry == 0
}

// lbaEnd returns the byte offset just past the given sector.
func lbaEnd(lba, sectorSize uint64) (uint64, bool) {
	next, ok := add64(lba, 1)
	if !ok {
		return 0, false
	}
	return mul64(next, sectorSize)
}

func ceilDiv(a, b uint64) uint64 {
	q := a / b
	if a%b != 0 {
		q++
	}
	return q
}
