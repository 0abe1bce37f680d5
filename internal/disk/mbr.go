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
package disk

import (
	"encoding/binary"
	"fmt"

	"github.com/ostafen/gptscan/pkg/util/format"
)

const (
	MBRSize         = 512
	mbrEntriesOff   = 0x1BE
	mbrSignatureOff = 0x1FE
	mbrSignature    = 0xAA55
)

// MBRPartitionEntry represents a single 16-byte entry in the MBR's partition table.
// All multi-byte fields are stored as byte arrays to explicitly handle little-endian
// conversion when reading from the raw MBR byte slice.
type MBRPartitionEntry struct {
	BootIndicator uint8        // 0x00: 0x80 for bootable, 0x00 for inactive
	StartCHS      [3]byte      // 0x01: Starting Cylinder-Head-Sector address
	PartitionType MBRPartition // 0x04: Partition type ID (e.g., 0x0B for FAT32, 0x83 for Linux)
	EndCHS        [3]byte      // 0x05: Ending Cylinder-Head-Sector address
	StartLBA      [4]byte      // 0x08: Starting Logical Block Address (LBA) - uint32, Little-Endian
	TotalSectors  [4]byte      // 0x0C: Total sectors in partition - uint32, Little-Endian
}

// ReadStartLBA returns the starting LBA of the partition.
func (p *MBRPartitionEntry) ReadStartLBA() uint32 {
	return binary.LittleEndian.Uint32(p.StartLBA[:])
}

// ReadTotalSectors returns the total number of sectors in the partition.
func (p *MBRPartitionEntry) ReadTotalSectors() uint32 {
	return binary.LittleEndian.Uint32(p.TotalSectors[:])
}

func (p *MBRPartitionEntry) String() string {
	size := uint64(p.ReadTotalSectors()) * MBRSize
	return fmt.Sprintf("type=0x%02X (%s) bootable=%t start=%d sectors=%d size=%s",
		uint8(p.PartitionType), p.PartitionType,
		p.BootIndicator == 0x80,
		p.ReadStartLBA(),
		p.ReadTotalSectors(),
		format.FormatBytes(int64(size)))
}

// MBR represents the Master Boot Record structure.
type MBR struct {
	DiskSignature    [4]byte              // 0x1B8-0x1BB: Optional 32-bit disk signature
	PartitionEntries [4]MBRPartitionEntry // 0x1BE-0x1FD: Four 16-byte partition entries
	Signature        [2]byte              // 0x1FE-0x1FF: MBR signature (0x55AA)
}

// ReadDiskSignature returns the disk signature as a uint32.
func (m *MBR) ReadDiskSignature() uint32 {
	return binary.LittleEndian.Uint32(m.DiskSignature[:])
}

// ReadSignature returns the MBR signature (should be 0xAA55).
func (m *MBR) ReadSignature() uint16 {
	return binary.LittleEndian.Uint16(m.Signature[:])
}

// Protective returns the entry marking the disk as GPT partitioned, if any.
func (m *MBR) Protective() (*MBRPartitionEntry, bool) {
	for i := range m.PartitionEntries {
		if m.PartitionEntries[i].PartitionType == PartitionTypeGPT {
			return &m.PartitionEntries[i], true
		}
	}
	return nil, false
}

// ParseMBR decodes the first sector of a disk. Only the first 512 bytes
// of data are looked at.
func ParseMBR(data []byte) (*MBR, error) {
	if len(data) < MBRSize {
		return nil, fmt.Errorf("short MBR: expected %d bytes, got %d bytes", MBRSize, len(data))
	}

	var mbr MBR
	copy(mbr.DiskSignature[:], data[0x1B8:0x1BC])

	for i := range mbr.PartitionEntries {
		b := data[mbrEntriesOff+i*16 : mbrEntriesOff+(i+1)*16]

		e := &mbr.PartitionEntries[i]
		e.BootIndicator = b[0x00]
		copy(e.StartCHS[:], b[0x01:0x04])
		e.PartitionType = MBRPartition(b[0x04])
		copy(e.EndCHS[:], b[0x05:0x08])
		copy(e.StartLBA[:], b[0x08:0x0C])
		copy(e.TotalSectors[:], b[0x0C:0x10])
	}

	copy(mbr.Signature[:], data[mbrSignatureOff:mbrSignatureOff+2])
	if mbr.ReadSignature() != mbrSignature {
		return nil, fmt.Errorf("invalid MBR signature: expected 0xAA55, got 0x%04X", mbr.ReadSignature())
	}
	return &mbr, nil
}

type MBRPartition uint8

const (
	PartitionTypeEmpty                MBRPartition = 0x00
	PartitionTypeFAT12                MBRPartition = 0x01
	PartitionTypeFAT16LessThan32MB    MBRPartition = 0x04
	PartitionTypeExtendedCHS          MBRPartition = 0x05
	PartitionTypeFAT16GreaterThan32MB MBRPartition = 0x06
	PartitionTypeNTFSHPFSexFATQNX     MBRPartition = 0x07
	PartitionTypeFAT32CHS             MBRPartition = 0x0B
	PartitionTypeFAT32LBA             MBRPartition = 0x0C
	PartitionTypeFAT16LBA             MBRPartition = 0x0E
	PartitionTypeExtendedLBA          MBRPartition = 0x0F
	PartitionTypeLinuxSwap            MBRPartition = 0x82
	PartitionTypeLinuxFilesystem      MBRPartition = 0x83
	PartitionTypeGPT                  MBRPartition = 0xEE
	PartitionTypeEFISystemPartition   MBRPartition = 0xEF
)

func (id MBRPartition) String() string {
	switch id {
	case PartitionTypeEmpty:
		return "Empty"
	case PartitionTypeFAT12:
		return "FAT12"
	case PartitionTypeFAT16LessThan32MB:
		return "FAT16 (<32MB)"
	case PartitionTypeExtendedCHS:
		return "Extended (CHS)"
	case PartitionTypeFAT16GreaterThan32MB:
		return "FAT16 (>32MB)"
	case PartitionTypeNTFSHPFSexFATQNX:
		return "NTFS/HPFS/exFAT/QNX"
	case PartitionTypeFAT32CHS:
		return "FAT32 (CHS)"
	case PartitionTypeFAT32LBA:
		return "FAT32 (LBA)"
	case PartitionTypeFAT16LBA:
		return "FAT16 (LBA)"
	case PartitionTypeExtendedLBA:
		return "Extended (LBA)"
	case PartitionTypeLinuxSwap:
		return "Linux swap"
	case PartitionTypeLinuxFilesystem:
		return "Linux filesystem"
	case PartitionTypeGPT:
		return "GPT Protective MBR"
	case PartitionTypeEFISystemPartition:
		return "EFI System Partition"
	default:
		return "Unknown"
	}
}
