package disk

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func protectiveMBR(sectors uint32) []byte {
	b := make([]byte, MBRSize)
	e := b[mbrEntriesOff:]
	e[4] = byte(PartitionTypeGPT)
	binary.LittleEndian.PutUint32(e[8:], 1)
	binary.LittleEndian.PutUint32(e[12:], sectors)
	b[510], b[511] = 0x55, 0xAA
	return b
}

func TestParseMBR(t *testing.T) {
	mbr, err := ParseMBR(protectiveMBR(2047))
	require.NoError(t, err)
	require.Equal(t, uint16(0xAA55), mbr.ReadSignature())

	e, ok := mbr.Protective()
	require.True(t, ok)
	require.Equal(t, uint32(1), e.ReadStartLBA())
	require.Equal(t, uint32(2047), e.ReadTotalSectors())
	require.Contains(t, e.String(), "GPT Protective MBR")
}

func TestParseMBRNotProtective(t *testing.T) {
	b := protectiveMBR(10)
	b[mbrEntriesOff+4] = byte(PartitionTypeLinuxFilesystem)

	mbr, err := ParseMBR(b)
	require.NoError(t, err)

	_, ok := mbr.Protective()
	require.False(t, ok)
	require.Equal(t, "Linux filesystem", mbr.PartitionEntries[0].PartitionType.String())
}

func TestParseMBRErrors(t *testing.T) {
	_, err := ParseMBR(make([]byte, 100))
	require.Error(t, err)

	_, err = ParseMBR(make([]byte, MBRSize))
	require.ErrorContains(t, err, "invalid MBR signature")
}
