package disk

// Partition is a byte range of a disk holding a single volume.
type Partition struct {
	Num       int
	Offset    uint64 // Offset in bytes from the start of the disk
	Size      uint64 // Size in bytes of the partition
	BlockSize uint32 // Block size in bytes
}

// End returns the offset just past the last byte of the partition.
func (p *Partition) End() uint64 {
	return p.Offset + p.Size
}
