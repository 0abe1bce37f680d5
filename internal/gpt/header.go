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
package gpt

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"

	"github.com/google/uuid"
)

const (
	// SignatureString is the on-disk header magic.
	SignatureString = "EFI PART"
	// Signature is SignatureString read as a big-endian 64-bit integer.
	Signature uint64 = 0x4546492050415254

	// HeaderSize is the width of the header record.
	HeaderSize = 92
	// EntrySize is the width of a partition entry record.
	EntrySize = 128

	// PrimaryHeaderLBA is the sector holding the primary header.
	PrimaryHeaderLBA = 1

	reservedValue = 0
)

// Header field offsets.
const (
	offSignature      = 0x00
	offRevision       = 0x08
	offHeaderSize     = 0x0C
	offHeaderCRC32    = 0x10
	offReserved       = 0x14
	offCurrentLBA     = 0x18
	offBackupLBA      = 0x20
	offFirstUsableLBA = 0x28
	offLastUsableLBA  = 0x30
	offDiskGUID       = 0x38
	offTableStartLBA  = 0x48
	offTableEntries   = 0x50
	offTableEntrySize = 0x54
	offTableCRC32     = 0x58
)

// Header is a decoded GPT header. All integer fields are in host order.
type Header struct {
	Signature       uint64
	Revision        uint32
	HeaderSize      uint32
	HeaderCRC32     uint32
	Reserved        uint32
	CurrentLBA      uint64
	BackupLBA       uint64
	FirstUsableLBA  uint64
	LastUsableLBA   uint64
	DiskGUID        [16]byte
	TableStartLBA   uint64
	TableNumEntries uint32
	TableEntrySize  uint32
	TableCRC32      uint32

	// Offset is the absolute byte offset the header was read from.
	Offset uint64
	// Table is the slot the header was loaded from. CurrentLBA is not
	// used for this since a valid header may claim either location.
	Table Table

	raw [HeaderSize]byte
}

// DecodeHeader reads the header record located at off.
// It normalizes the fields but performs no validation.
func DecodeHeader(src Source, off uint64) (*Header, error) {
	b, err := readN(src, off, HeaderSize)
	if err != nil {
		return nil, err
	}

	hdr := parseHeader(b)
	hdr.Offset = off
	return hdr, nil
}

func parseHeader(b []byte) *Header {
	hdr := &Header{}
	copy(hdr.raw[:], b[:HeaderSize])

	hdr.Signature = binary.BigEndian.Uint64(b[offSignature : offSignature+8])
	hdr.Revision = binary.LittleEndian.Uint32(b[offRevision : offRevision+4])
	hdr.HeaderSize = binary.LittleEndian.Uint32(b[offHeaderSize : offHeaderSize+4])
	hdr.HeaderCRC32 = binary.LittleEndian.Uint32(b[offHeaderCRC32 : offHeaderCRC32+4])
	hdr.Reserved = binary.LittleEndian.Uint32(b[offReserved : offReserved+4])
	hdr.CurrentLBA = binary.LittleEndian.Uint64(b[offCurrentLBA : offCurrentLBA+8])
	hdr.BackupLBA = binary.LittleEndian.Uint64(b[offBackupLBA : offBackupLBA+8])
	hdr.FirstUsableLBA = binary.LittleEndian.Uint64(b[offFirstUsableLBA : offFirstUsableLBA+8])
	hdr.LastUsableLBA = binary.LittleEndian.Uint64(b[offLastUsableLBA : offLastUsableLBA+8])
	copy(hdr.DiskGUID[:], b[offDiskGUID:offDiskGUID+16])
	hdr.TableStartLBA = binary.LittleEndian.Uint64(b[offTableStartLBA : offTableStartLBA+8])
	hdr.TableNumEntries = binary.LittleEndian.Uint32(b[offTableEntries : offTableEntries+4])
	hdr.TableEntrySize = binary.LittleEndian.Uint32(b[offTableEntrySize : offTableEntrySize+4])
	hdr.TableCRC32 = binary.LittleEndian.Uint32(b[offTableCRC32 : offTableCRC32+4])
	return hdr
}

// ComputeCRC32 recomputes the header checksum over the on-disk bytes
// with the checksum field zeroed.
func (h *Header) ComputeCRC32() uint32 {
	buf := h.raw
	clear(buf[offHeaderCRC32 : offHeaderCRC32+4])
	return crc32.ChecksumIEEE(buf[:])
}

// DiskUUID returns the disk GUID in RFC 4122 byte order.
func (h *Header) DiskUUID() uuid.UUID {
	return guidToUUID(h.DiskGUID)
}

func (h *Header) String() string {
	return fmt.Sprintf("signature=%#x revision=%#x size=%d crc=%#08x current=%d backup=%d usable=[%d,%d] disk=%s table=%d entries=%d entry_size=%d table_crc=%#08x",
		h.Signature,
		h.Revision,
		h.HeaderSize,
		h.HeaderCRC32,
		h.CurrentLBA,
		h.BackupLBA,
		h.FirstUsableLBA,
		h.LastUsableLBA,
		h.DiskUUID(),
		h.TableStartLBA,
		h.TableNumEntries,
		h.TableEntrySize,
		h.TableCRC32,
	)
}

// guidToUUID converts the mixed-endian on-disk GUID layout: the first three
// groups are little-endian, the last two are stored as-is.
func guidToUUID(g [16]byte) uuid.UUID {
	var u uuid.UUID
	u[0], u[1], u[2], u[3] = g[3], g[2], g[1], g[0]
	u[4], u[5] = g[5], g[4]
	u[6], u[7] = g[7], g[6]
	copy(u[8:], g[8:])
	return u
}
