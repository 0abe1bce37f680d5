package gpt

import (
	"bytes"
	"encoding/binary"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/unicode"
)

// NameLen is the number of UTF-16 code units in a partition name.
const NameLen = 36

const (
	offTypeGUID   = 0x00
	offUniqueGUID = 0x10
	offFirstLBA   = 0x20
	offLastLBA    = 0x28
	offAttributes = 0x30
	offName       = 0x38
)

// Entry is a decoded partition entry.
type Entry struct {
	TypeGUID   [16]byte
	UniqueGUID [16]byte
	FirstLBA   uint64
	LastLBA    uint64
	Attributes uint64
	Name       [NameLen]uint16
}

// DecodeEntry reads the partition entry record located at off.
func DecodeEntry(src Source, off uint64) (*Entry, error) {
	b, err := readN(src, off, EntrySize)
	if err != nil {
		return nil, err
	}
	return parseEntry(b), nil
}

func parseEntry(b []byte) *Entry {
	e := &Entry{}
	copy(e.TypeGUID[:], b[offTypeGUID:offTypeGUID+16])
	copy(e.UniqueGUID[:], b[offUniqueGUID:offUniqueGUID+16])
	e.FirstLBA = binary.LittleEndian.Uint64(b[offFirstLBA : offFirstLBA+8])
	e.LastLBA = binary.LittleEndian.Uint64(b[offLastLBA : offLastLBA+8])
	e.Attributes = binary.LittleEndian.Uint64(b[offAttributes : offAttributes+8])
	for j := range e.Name {
		off := offName + 2*j
		e.Name[j] = binary.LittleEndian.Uint16(b[off : off+2])
	}
	return e
}

// TypeUUID returns the partition type GUID in RFC 4122 byte order.
func (e *Entry) TypeUUID() uuid.UUID { return guidToUUID(e.TypeGUID) }

// UniqueUUID returns the unique partition GUID in RFC 4122 byte order.
func (e *Entry) UniqueUUID() uuid.UUID { return guidToUUID(e.UniqueGUID) }

// NameString decodes the partition name, stopping at the first NUL.
func (e *Entry) NameString() string {
	var raw [NameLen * 2]byte
	for j, u := range e.Name {
		binary.LittleEndian.PutUint16(raw[2*j:], u)
	}

	dec := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	name, err := dec.Bytes(raw[:])
	if err != nil {
		return ""
	}
	if i := bytes.IndexByte(name, 0); i >= 0 {
		name = name[:i]
	}
	return string(name)
}

// EntryStatus classifies a decoded entry against its header and the image.
type EntryStatus int

const (
	EntryValid EntryStatus = iota
	EntryUnused
	EntryMalformed
	EntryOutOfUsable
	EntryOutOfImage
)

func (s EntryStatus) String() string {
	switch s {
	case EntryValid:
		return "valid"
	case EntryUnused:
		return "unused"
	case EntryMalformed:
		return "first LBA is after last LBA"
	case EntryOutOfUsable:
		return "outside the usable LBAs"
	case EntryOutOfImage:
		return "outside the image"
	default:
		return "unknown"
	}
}

// Classify decides whether an entry describes a partition that can be
// handed to deeper scanning. Unused slots carry no other guarantee, so
// nothing else is looked at when FirstLBA is zero.
func (e *Entry) Classify(hdr *Header, sectorSize, imageLen uint64) EntryStatus {
	if e.FirstLBA == 0 {
		return EntryUnused
	}
	if e.FirstLBA > e.LastLBA {
		return EntryMalformed
	}
	if e.FirstLBA < hdr.FirstUsableLBA || e.LastLBA > hdr.LastUsableLBA {
		return EntryOutOfUsable
	}

	end, ok := lbaEnd(e.LastLBA, sectorSize)
	if !ok || end > imageLen {
		return EntryOutOfImage
	}
	return EntryValid
}

// ByteRange returns the byte offset and length covered by a valid entry.
func (e *Entry) ByteRange(sectorSize uint64) (off, length uint64) {
	return e.FirstLBA * sectorSize, (e.LastLBA - e.FirstLBA + 1) * sectorSize
}

// Blocks returns the number of sectors covered by a valid entry.
func (e *Entry) Blocks() uint64 {
	return e.LastLBA - e.FirstLBA + 1
}
