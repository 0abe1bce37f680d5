package gpt

import (
	"encoding/binary"
	"hash/crc32"
	"testing"
	"unicode/utf16"

	"github.com/ostafen/gptscan/internal/fmap"
	"github.com/stretchr/testify/require"
)

// linuxFilesystemGUID is 0FC63DAF-8483-4772-8E79-3D69D8477DE4 in on-disk order.
var linuxFilesystemGUID = [16]byte{
	0xAF, 0x3D, 0xC6, 0x0F, 0x83, 0x84, 0x72, 0x47,
	0x8E, 0x79, 0x3D, 0x69, 0xD8, 0x47, 0x7D, 0xE4,
}

var testDiskGUID = [16]byte{
	0x33, 0x22, 0x11, 0x00, 0x55, 0x44, 0x77, 0x66,
	0x88, 0x99, 0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF,
}

type testEntry struct {
	first, last uint64
	name        string
}

type imageBuilder struct {
	sectorSize uint64
	sectors    uint64
	numEntries uint32
	entries    map[int]testEntry
}

func newImageBuilder() *imageBuilder {
	return &imageBuilder{
		sectorSize: 512,
		sectors:    128,
		numEntries: 4,
		entries:    map[int]testEntry{},
	}
}

func (b *imageBuilder) withSectorSize(size uint64) *imageBuilder {
	b.sectorSize = size
	return b
}

func (b *imageBuilder) withSectors(n uint64) *imageBuilder {
	b.sectors = n
	return b
}

func (b *imageBuilder) withEntries(n uint32) *imageBuilder {
	b.numEntries = n
	return b
}

func (b *imageBuilder) entry(idx int, first, last uint64, name string) *imageBuilder {
	b.entries[idx] = testEntry{first: first, last: last, name: name}
	return b
}

// testImage is a well formed GPT image with a protective MBR, primary and
// secondary headers, and identical tables.
type testImage struct {
	data         []byte
	sectorSize   uint64
	numEntries   uint32
	tableSectors uint64
}

func (b *imageBuilder) build(t *testing.T) *testImage {
	t.Helper()

	ss := b.sectorSize
	tableLen := uint64(b.numEntries) * EntrySize
	tableSectors := max(ceilDiv(tableLen, ss), 1)
	last := b.sectors - 1

	require.Greater(t, b.sectors, 2*tableSectors+4, "image too small")

	img := &testImage{
		data:         make([]byte, b.sectors*ss),
		sectorSize:   ss,
		numEntries:   b.numEntries,
		tableSectors: tableSectors,
	}

	// protective MBR
	img.data[446+4] = 0xEE
	binary.LittleEndian.PutUint32(img.data[446+8:], 1)
	binary.LittleEndian.PutUint32(img.data[446+12:], uint32(min(last, 0xFFFFFFFF)))
	img.data[510], img.data[511] = 0x55, 0xAA

	for idx, e := range b.entries {
		img.putEntry(img.primaryTableLBA(), idx, e)
		img.putEntry(img.secondaryTableLBA(), idx, e)
	}

	img.putHeader(PrimaryHeaderLBA, last, img.primaryTableLBA())
	img.putHeader(last, PrimaryHeaderLBA, img.secondaryTableLBA())
	return img
}

func (img *testImage) lastLBA() uint64 {
	return uint64(len(img.data))/img.sectorSize - 1
}

func (img *testImage) firstUsable() uint64 { return 2 + img.tableSectors }

func (img *testImage) lastUsable() uint64 { return img.lastLBA() - img.tableSectors - 1 }

func (img *testImage) primaryTableLBA() uint64 { return 2 }

func (img *testImage) secondaryTableLBA() uint64 { return img.lastLBA() - img.tableSectors }

func (img *testImage) primaryOff() uint64 { return PrimaryHeaderLBA * img.sectorSize }

func (img *testImage) secondaryOff() uint64 { return img.lastLBA() * img.sectorSize }

func (img *testImage) source() *fmap.Map {
	return fmap.FromBytes(img.data)
}

func (img *testImage) putEntry(tableLBA uint64, idx int, e testEntry) {
	off := tableLBA*img.sectorSize + uint64(idx)*EntrySize
	b := img.data[off : off+EntrySize]

	copy(b[offTypeGUID:], linuxFilesystemGUID[:])
	b[offUniqueGUID] = byte(idx + 1)
	b[offUniqueGUID+15] = 0xA5
	binary.LittleEndian.PutUint64(b[offFirstLBA:], e.first)
	binary.LittleEndian.PutUint64(b[offLastLBA:], e.last)
	for j, u := range utf16.Encode([]rune(e.name)) {
		if j == NameLen {
			break
		}
		binary.LittleEndian.PutUint16(b[offName+2*j:], u)
	}
}

func (img *testImage) putHeader(current, backup, tableLBA uint64) {
	off := current * img.sectorSize
	b := img.data[off : off+HeaderSize]

	copy(b[offSignature:], SignatureString)
	binary.LittleEndian.PutUint32(b[offRevision:], 0x00010000)
	binary.LittleEndian.PutUint32(b[offHeaderSize:], HeaderSize)
	binary.LittleEndian.PutUint64(b[offCurrentLBA:], current)
	binary.LittleEndian.PutUint64(b[offBackupLBA:], backup)
	binary.LittleEndian.PutUint64(b[offFirstUsableLBA:], img.firstUsable())
	binary.LittleEndian.PutUint64(b[offLastUsableLBA:], img.lastUsable())
	copy(b[offDiskGUID:], testDiskGUID[:])
	binary.LittleEndian.PutUint64(b[offTableStartLBA:], tableLBA)
	binary.LittleEndian.PutUint32(b[offTableEntries:], img.numEntries)
	binary.LittleEndian.PutUint32(b[offTableEntrySize:], EntrySize)

	img.resealTable(off)
}

func (img *testImage) header(off uint64) []byte {
	return img.data[off : off+HeaderSize]
}

func (img *testImage) setU32(hdrOff uint64, field int, v uint32) {
	binary.LittleEndian.PutUint32(img.header(hdrOff)[field:], v)
	img.resealHeader(hdrOff)
}

func (img *testImage) setU64(hdrOff uint64, field int, v uint64) {
	binary.LittleEndian.PutUint64(img.header(hdrOff)[field:], v)
	img.resealHeader(hdrOff)
}

// resealHeader recomputes the header checksum after a field edit.
func (img *testImage) resealHeader(hdrOff uint64) {
	b := img.header(hdrOff)
	clear(b[offHeaderCRC32 : offHeaderCRC32+4])
	binary.LittleEndian.PutUint32(b[offHeaderCRC32:], crc32.ChecksumIEEE(b))
}

// resealTable recomputes the table checksum of the header at hdrOff,
// then the header checksum.
func (img *testImage) resealTable(hdrOff uint64) {
	b := img.header(hdrOff)
	tableLBA := binary.LittleEndian.Uint64(b[offTableStartLBA:])
	n := binary.LittleEndian.Uint32(b[offTableEntries:])

	start := tableLBA * img.sectorSize
	table := img.data[start : start+uint64(n)*EntrySize]
	binary.LittleEndian.PutUint32(b[offTableCRC32:], crc32.ChecksumIEEE(table))
	img.resealHeader(hdrOff)
}

// setEntry overwrites entry idx in one table and reseals its header.
func (img *testImage) setEntry(hdrOff, tableLBA uint64, idx int, e testEntry) {
	img.putEntry(tableLBA, idx, e)
	img.resealTable(hdrOff)
}

// corruptPrimary breaks the primary header checksum.
func (img *testImage) corruptPrimary() {
	img.data[img.primaryOff()+offHeaderCRC32] ^= 0xFF
}

func (img *testImage) corruptSecondary() {
	img.data[img.secondaryOff()+offHeaderCRC32] ^= 0xFF
}

// stubScanner records the ranges it is asked to scan and reports a
// detection for every range listed in infected.
type stubScanner struct {
	calls    []scanCall
	infected map[uint64]string
	err      error
}

type scanCall struct {
	off, length uint64
	hint        TypeHint
}

func (s *stubScanner) ScanRange(off, length uint64, hint TypeHint) (Verdict, error) {
	s.calls = append(s.calls, scanCall{off: off, length: length, hint: hint})
	if s.err != nil {
		return Clean, s.err
	}
	if name, ok := s.infected[off]; ok {
		return Detected(name), nil
	}
	return Clean, nil
}

func requireCheck(t *testing.T, err error, want Check) {
	t.Helper()

	require.ErrorIs(t, err, ErrFormat)
	got, ok := CheckOf(err)
	require.True(t, ok)
	require.Equal(t, want, got, "error: %v", err)
}
