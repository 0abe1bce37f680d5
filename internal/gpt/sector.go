package gpt

import (
	"bytes"
	"slices"
)

// SectorSizes lists the candidate sector sizes in probing order.
var SectorSizes = []uint64{512, 1024, 2048, 4096}

// ValidSectorSize reports whether size is one of SectorSizes.
func ValidSectorSize(size uint64) bool {
	return slices.Contains(SectorSizes, size)
}

// DetectSectorSize looks for the header signature at the start of LBA 1
// for every candidate sector size and returns the first match.
func DetectSectorSize(src Source) (uint64, error) {
	for _, size := range SectorSizes {
		b, err := src.Need(size, uint64(len(SignatureString)))
		if err != nil {
			continue
		}
		if bytes.Equal(b, []byte(SignatureString)) {
			return size, nil
		}
	}
	return 0, formatErr(CheckSectorSize, "no signature found at any of %v", SectorSizes)
}
