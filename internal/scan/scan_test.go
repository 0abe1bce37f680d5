package scan

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ostafen/gptscan/internal/gpt"
	"github.com/ostafen/gptscan/internal/sigscan"
	"github.com/stretchr/testify/require"
)

const (
	testSectors    = 128
	testSectorSize = 512
)

// writeTestImage writes a 512-byte sector GPT image with a four entry
// table. Each part is a [first, last] LBA pair.
func writeTestImage(t *testing.T, parts [][2]uint64, payload map[uint64][]byte) string {
	t.Helper()

	data := make([]byte, testSectors*testSectorSize)
	last := uint64(testSectors - 1)

	data[446+4] = 0xEE
	binary.LittleEndian.PutUint32(data[446+8:], 1)
	binary.LittleEndian.PutUint32(data[446+12:], uint32(last))
	data[510], data[511] = 0x55, 0xAA

	table := make([]byte, 4*gpt.EntrySize)
	for i, p := range parts {
		e := table[i*gpt.EntrySize:]
		e[0] = 0xAF // any non zero type GUID
		e[16] = byte(i + 1)
		binary.LittleEndian.PutUint64(e[32:], p[0])
		binary.LittleEndian.PutUint64(e[40:], p[1])
		binary.LittleEndian.PutUint16(e[56:], 'p')
	}
	copy(data[2*testSectorSize:], table)
	copy(data[(last-1)*testSectorSize:], table)

	putHeader := func(current, backup, tableLBA uint64) {
		h := data[current*testSectorSize : current*testSectorSize+gpt.HeaderSize]
		copy(h, gpt.SignatureString)
		binary.LittleEndian.PutUint32(h[8:], 0x00010000)
		binary.LittleEndian.PutUint32(h[12:], gpt.HeaderSize)
		binary.LittleEndian.PutUint64(h[24:], current)
		binary.LittleEndian.PutUint64(h[32:], backup)
		binary.LittleEndian.PutUint64(h[40:], 3)
		binary.LittleEndian.PutUint64(h[48:], last-2)
		h[56] = 0x42
		binary.LittleEndian.PutUint64(h[72:], tableLBA)
		binary.LittleEndian.PutUint32(h[80:], 4)
		binary.LittleEndian.PutUint32(h[84:], gpt.EntrySize)
		binary.LittleEndian.PutUint32(h[88:], crc32.ChecksumIEEE(table))
		binary.LittleEndian.PutUint32(h[16:], crc32.ChecksumIEEE(h))
	}
	putHeader(1, last, 2)
	putHeader(last, 1, last-1)

	for lba, b := range payload {
		copy(data[lba*testSectorSize:], b)
	}

	path := filepath.Join(t.TempDir(), "disk.img")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func testOptions(t *testing.T, out *bytes.Buffer) Options {
	dir := t.TempDir()
	return Options{
		ReportFile: filepath.Join(dir, "report.xml"),
		LogFile:    filepath.Join(dir, "scan.log"),
		Out:        out,
	}
}

func TestScanClean(t *testing.T) {
	path := writeTestImage(t, [][2]uint64{{10, 20}, {30, 40}}, nil)

	var out bytes.Buffer
	opts := testOptions(t, &out)

	code, err := Scan(path, opts)
	require.NoError(t, err)
	require.Equal(t, gpt.CodeClean, code)

	require.Contains(t, out.String(), "[INFO] Partitions scanned: \t2")
	require.Contains(t, out.String(), "[INFO] Partition table: \tprimary")

	report, err := os.ReadFile(opts.ReportFile)
	require.NoError(t, err)
	require.Equal(t, 2, bytes.Count(report, []byte("<volume ")))
	require.NotContains(t, string(report), "<detection")
}

func TestScanDetection(t *testing.T) {
	path := writeTestImage(t,
		[][2]uint64{{10, 20}, {30, 40}},
		map[uint64][]byte{35: sigscan.EICAR.Pattern},
	)

	var out bytes.Buffer
	opts := testOptions(t, &out)
	opts.NoProgress = true

	code, err := Scan(path, opts)
	require.NoError(t, err)
	require.Equal(t, gpt.CodeDetection, code)
	require.Contains(t, out.String(), "[DETECTED] Eicar-Test-Signature")

	report, err := os.ReadFile(opts.ReportFile)
	require.NoError(t, err)
	require.Contains(t, string(report), `name="Eicar-Test-Signature"`)
}

func TestScanIntersection(t *testing.T) {
	path := writeTestImage(t, [][2]uint64{{10, 20}, {15, 25}}, nil)

	var out bytes.Buffer
	opts := testOptions(t, &out)
	opts.Engine.DetectIntersections = true

	code, err := Scan(path, opts)
	require.NoError(t, err)
	require.Equal(t, gpt.CodeDetection, code)
	require.Contains(t, out.String(), gpt.IntersectionDetection)
}

func TestScanFormatError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blank.img")
	require.NoError(t, os.WriteFile(path, make([]byte, 64*1024), 0644))

	var out bytes.Buffer
	opts := testOptions(t, &out)

	code, err := Scan(path, opts)
	require.ErrorIs(t, err, gpt.ErrFormat)
	require.Equal(t, gpt.CodeFormatError, code)

	_, err = os.Stat(opts.ReportFile)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestScanMissingImage(t *testing.T) {
	var out bytes.Buffer
	code, err := Scan(filepath.Join(t.TempDir(), "missing.img"), testOptions(t, &out))
	require.Error(t, err)
	require.Equal(t, gpt.CodeError, code)
}

func TestListImage(t *testing.T) {
	path := writeTestImage(t, [][2]uint64{{10, 20}, {0, 0}, {30, 40}}, nil)

	layout, err := List(path, gpt.Options{})
	require.NoError(t, err)
	require.Len(t, layout.Partitions, 2)
	require.Equal(t, 2, layout.Partitions[1].Num)

	var out bytes.Buffer
	require.NoError(t, PrintLayout(&out, layout))
	require.Contains(t, out.String(), "Disk GUID")
	require.Contains(t, out.String(), "TABLE")
}

func TestOpenImage(t *testing.T) {
	path := writeTestImage(t, nil, nil)

	img, err := OpenImage(path)
	require.NoError(t, err)
	defer img.Close()

	require.Equal(t, uint64(testSectors*testSectorSize), img.Len())
	require.Equal(t, describeMBR(img)[:9], "type=0xEE")
}

func TestLoadSignatures(t *testing.T) {
	sigFile := filepath.Join(t.TempDir(), "sigs.txt")
	require.NoError(t, os.WriteFile(sigFile, []byte("Test.Marker:deadbeef\n"), 0644))

	set, err := LoadSignatures(sigFile, nil)
	require.NoError(t, err)
	require.Equal(t, 2, set.Len())

	_, err = LoadSignatures("", []string{filepath.Join(t.TempDir(), "missing")})
	require.Error(t, err)
}

func TestFormatDurationHMS(t *testing.T) {
	require.Equal(t, "0.50s", FormatDurationHMS(500*time.Millisecond))
	require.Equal(t, "01:01:01", FormatDurationHMS(time.Hour+time.Minute+time.Second))
	require.Equal(t, "25:00:00", FormatDurationHMS(25*time.Hour))
}
