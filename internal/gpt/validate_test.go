package gpt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func validate(t *testing.T, img *testImage, off uint64) error {
	t.Helper()

	hdr, err := DecodeHeader(img.source(), off)
	require.NoError(t, err)
	return ValidateHeader(img.source(), hdr, img.sectorSize)
}

func TestValidateHeader(t *testing.T) {
	for _, ss := range SectorSizes {
		img := newImageBuilder().withSectorSize(ss).withEntries(128).entry(0, 40, 60, "data").build(t)

		require.NoError(t, validate(t, img, img.primaryOff()), "sector size %d", ss)
		require.NoError(t, validate(t, img, img.secondaryOff()), "sector size %d", ss)
	}
}

func TestValidateHeaderChecks(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(img *testImage, off uint64)
		want   Check
	}{
		{
			name:   "header crc",
			mutate: func(img *testImage, off uint64) { img.data[off+offHeaderCRC32] ^= 1 },
			want:   CheckHeaderCRC,
		},
		{
			name: "signature",
			mutate: func(img *testImage, off uint64) {
				img.data[off] = 'X'
				img.resealHeader(off)
			},
			want: CheckSignature,
		},
		{
			name:   "header size",
			mutate: func(img *testImage, off uint64) { img.setU32(off, offHeaderSize, HeaderSize+1) },
			want:   CheckHeaderSize,
		},
		{
			name:   "reserved",
			mutate: func(img *testImage, off uint64) { img.setU32(off, offReserved, 1) },
			want:   CheckReserved,
		},
		{
			name:   "backup lba",
			mutate: func(img *testImage, off uint64) { img.setU64(off, offBackupLBA, 5) },
			want:   CheckHeaderLocation,
		},
		{
			name:   "current lba",
			mutate: func(img *testImage, off uint64) { img.setU64(off, offCurrentLBA, 2) },
			want:   CheckHeaderLocation,
		},
		{
			name: "usable order",
			mutate: func(img *testImage, off uint64) {
				img.setU64(off, offFirstUsableLBA, img.lastUsable()+1)
			},
			want: CheckUsableOrder,
		},
		{
			name:   "usable covers primary header",
			mutate: func(img *testImage, off uint64) { img.setU64(off, offFirstUsableLBA, 1) },
			want:   CheckUsableRange,
		},
		{
			name: "usable covers secondary header",
			mutate: func(img *testImage, off uint64) {
				img.setU64(off, offLastUsableLBA, img.lastLBA())
			},
			want: CheckUsableRange,
		},
		{
			name:   "table inside usable range",
			mutate: func(img *testImage, off uint64) { img.setU64(off, offTableStartLBA, 10) },
			want:   CheckTableLocation,
		},
		{
			name:   "table on primary header",
			mutate: func(img *testImage, off uint64) { img.setU64(off, offTableStartLBA, 1) },
			want:   CheckTableLocation,
		},
		{
			name: "table on secondary header",
			mutate: func(img *testImage, off uint64) {
				img.setU64(off, offTableStartLBA, img.lastLBA())
			},
			want: CheckTableLocation,
		},
		{
			name:   "table start overflows",
			mutate: func(img *testImage, off uint64) { img.setU64(off, offTableStartLBA, ^uint64(0)) },
			want:   CheckTableLocation,
		},
		{
			name:   "huge entry count",
			mutate: func(img *testImage, off uint64) { img.setU32(off, offTableEntries, ^uint32(0)) },
			want:   CheckTableLocation,
		},
		{
			name:   "entry size",
			mutate: func(img *testImage, off uint64) { img.setU32(off, offTableEntrySize, 64) },
			want:   CheckEntrySize,
		},
		{
			name: "table crc",
			mutate: func(img *testImage, off uint64) {
				img.data[img.primaryTableLBA()*img.sectorSize+offFirstLBA] ^= 0xFF
			},
			want: CheckTableCRC,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := newImageBuilder().entry(0, 10, 20, "a").build(t)
			off := img.primaryOff()

			tt.mutate(img, off)
			requireCheck(t, validate(t, img, off), tt.want)
		})
	}
}

func TestValidateHeaderSingleByteMutation(t *testing.T) {
	pristine := newImageBuilder().entry(0, 10, 20, "a").build(t)

	for i := uint64(0); i < HeaderSize; i++ {
		if i >= offHeaderCRC32 && i < offHeaderCRC32+4 {
			continue
		}

		img := &testImage{
			data:         append([]byte(nil), pristine.data...),
			sectorSize:   pristine.sectorSize,
			numEntries:   pristine.numEntries,
			tableSectors: pristine.tableSectors,
		}
		img.data[img.primaryOff()+i] ^= 0x01

		requireCheck(t, validate(t, img, img.primaryOff()), CheckHeaderCRC)
	}
}

func TestValidateHeaderInvalidArgument(t *testing.T) {
	img := newImageBuilder().build(t)
	hdr, err := DecodeHeader(img.source(), img.primaryOff())
	require.NoError(t, err)

	require.ErrorIs(t, ValidateHeader(nil, hdr, 512), ErrInvalidArgument)
	require.ErrorIs(t, ValidateHeader(img.source(), nil, 512), ErrInvalidArgument)
	require.ErrorIs(t, ValidateHeader(img.source(), hdr, 0), ErrInvalidArgument)
}

func TestDeviceLastLBA(t *testing.T) {
	last, ok := DeviceLastLBA(128*512, 512)
	require.True(t, ok)
	require.Equal(t, uint64(127), last)

	last, ok = DeviceLastLBA(128*512+100, 512)
	require.True(t, ok)
	require.Equal(t, uint64(127), last)

	_, ok = DeviceLastLBA(100, 512)
	require.False(t, ok)

	_, ok = DeviceLastLBA(100, 0)
	require.False(t, ok)
}

func TestTableSpan(t *testing.T) {
	tests := []struct {
		start, length, ss uint64
		first, last       uint64
	}{
		{start: 2, length: 128 * 128, ss: 512, first: 2, last: 33},
		{start: 2, length: 4 * 128, ss: 512, first: 2, last: 2},
		{start: 2, length: 5 * 128, ss: 512, first: 2, last: 3},
		{start: 2, length: 0, ss: 512, first: 2, last: 2},
		{start: 2, length: 128 * 128, ss: 4096, first: 2, last: 5},
	}

	for _, tt := range tests {
		first, last, ok := tableSpan(tt.start, tt.length, tt.ss)
		require.True(t, ok)
		require.Equal(t, tt.first, first)
		require.Equal(t, tt.last, last)
	}

	_, _, ok := tableSpan(^uint64(0), 512, 512)
	require.False(t, ok)
}
