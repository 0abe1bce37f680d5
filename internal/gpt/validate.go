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
	"hash/crc32"
)

// DeviceLastLBA returns the index of the last whole sector of the image.
func DeviceLastLBA(imageLen, sectorSize uint64) (uint64, bool) {
	if sectorSize == 0 || imageLen/sectorSize == 0 {
		return 0, false
	}
	return imageLen/sectorSize - 1, true
}

// ValidateHeader runs every structural and checksum check on hdr.
// The first failing check is returned; a header either passes all of
// them or is rejected as a whole.
func ValidateHeader(src Source, hdr *Header, sectorSize uint64) error {
	if src == nil || hdr == nil || sectorSize == 0 {
		return ErrInvalidArgument
	}
	imageLen := src.Len()

	if crc := hdr.ComputeCRC32(); crc != hdr.HeaderCRC32 {
		return formatErr(CheckHeaderCRC, "computed %#08x, stored %#08x", crc, hdr.HeaderCRC32)
	}

	if hdr.Signature != Signature {
		return formatErr(CheckSignature, "%#016x", hdr.Signature)
	}

	if hdr.HeaderSize != HeaderSize {
		return formatErr(CheckHeaderSize, "%d != %d", hdr.HeaderSize, HeaderSize)
	}

	if hdr.Reserved != reservedValue {
		return formatErr(CheckReserved, "%#x", hdr.Reserved)
	}

	lastLBA, ok := DeviceLastLBA(imageLen, sectorSize)
	if !ok {
		return formatErr(CheckHeaderLocation, "image of %d bytes holds no sector of %d bytes", imageLen, sectorSize)
	}

	primary := hdr.CurrentLBA == PrimaryHeaderLBA && hdr.BackupLBA == lastLBA
	secondary := hdr.CurrentLBA == lastLBA && hdr.BackupLBA == PrimaryHeaderLBA
	if !primary && !secondary {
		return formatErr(CheckHeaderLocation, "current=%d backup=%d last=%d", hdr.CurrentLBA, hdr.BackupLBA, lastLBA)
	}

	if hdr.FirstUsableLBA > hdr.LastUsableLBA {
		return formatErr(CheckUsableOrder, "%d > %d", hdr.FirstUsableLBA, hdr.LastUsableLBA)
	}

	if hdr.FirstUsableLBA <= PrimaryHeaderLBA || hdr.LastUsableLBA >= lastLBA {
		return formatErr(CheckUsableRange, "usable=[%d,%d] last=%d", hdr.FirstUsableLBA, hdr.LastUsableLBA, lastLBA)
	}

	tableLen, ok := mul64(uint64(hdr.TableNumEntries), uint64(hdr.TableEntrySize))
	if !ok {
		return formatErr(CheckTableLocation, "table length overflows")
	}

	tableFirst, tableLast, ok := tableSpan(hdr.TableStartLBA, tableLen, sectorSize)
	if !ok {
		return formatErr(CheckTableLocation, "table span overflows")
	}
	if tableFirst <= hdr.LastUsableLBA && tableLast >= hdr.FirstUsableLBA {
		return formatErr(CheckTableLocation, "table=[%d,%d] usable=[%d,%d]", tableFirst, tableLast, hdr.FirstUsableLBA, hdr.LastUsableLBA)
	}
	if tableFirst <= PrimaryHeaderLBA || tableLast >= lastLBA {
		return formatErr(CheckTableLocation, "table=[%d,%d] last=%d", tableFirst, tableLast, lastLBA)
	}

	if hdr.TableEntrySize != EntrySize {
		return formatErr(CheckEntrySize, "%d", hdr.TableEntrySize)
	}

	tableOff, ok := mul64(hdr.TableStartLBA, sectorSize)
	if !ok {
		return formatErr(CheckTableBounds, "table offset overflows")
	}
	tableEnd, ok := add64(tableOff, tableLen)
	if !ok || tableEnd > imageLen {
		return formatErr(CheckTableBounds, "table ends at %d, image size %d", tableEnd, imageLen)
	}

	table, err := src.Need(tableOff, tableLen)
	if err != nil {
		return &FormatError{Check: CheckTableBounds, Err: err}
	}
	if crc := crc32.ChecksumIEEE(table); crc != hdr.TableCRC32 {
		return formatErr(CheckTableCRC, "computed %#08x, stored %#08x", crc, hdr.TableCRC32)
	}
	return nil
}

// tableSpan returns the first and last sector occupied by a table of
// tableLen bytes. An empty table still claims its start sector.
func tableSpan(startLBA, tableLen, sectorSize uint64) (uint64, uint64, bool) {
	sectors := max(ceilDiv(tableLen, sectorSize), 1)
	end, ok := add64(startLBA, sectors)
	if !ok {
		return 0, 0, false
	}
	return startLBA, end - 1, true
}
