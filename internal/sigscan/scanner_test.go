package sigscan

import (
	"bytes"
	"errors"
	"testing"

	"github.com/ostafen/gptscan/internal/gpt"
	"github.com/stretchr/testify/require"
)

func image(size int, at map[int][]byte) []byte {
	data := make([]byte, size)
	for off, b := range at {
		copy(data[off:], b)
	}
	return data
}

func TestScanRangeDetectsEICAR(t *testing.T) {
	data := image(64*1024, map[int][]byte{40000: EICAR.Pattern})

	var progress uint64
	sc := New(bytes.NewReader(data), NewSet(DefaultSignatures...), Options{
		BufferSize: 4096,
		OnProgress: func(n uint64) { progress += n },
	})

	v, err := sc.ScanRange(0, uint64(len(data)), gpt.TypePartAny)
	require.NoError(t, err)
	require.True(t, v.Detected)
	require.Equal(t, EICAR.Name, v.Name)
	require.Equal(t, uint64(40000), progress)

	v, err = sc.ScanRange(0, 40000, gpt.TypePartAny)
	require.NoError(t, err)
	require.False(t, v.Detected)

	// A match must lie entirely inside the range.
	v, err = sc.ScanRange(0, 40000+uint64(len(EICAR.Pattern))-1, gpt.TypePartAny)
	require.NoError(t, err)
	require.False(t, v.Detected)

	v, err = sc.ScanRange(40001, 10000, gpt.TypePartAny)
	require.NoError(t, err)
	require.False(t, v.Detected)
}

func TestFindAcrossBufferBoundary(t *testing.T) {
	sig := Signature{Name: "Test.Boundary", Pattern: []byte("0123456789abcdef")}
	set := NewSet(sig)

	for _, at := range []int{0, 100, 120, 127, 128, 129, 1000 - 16} {
		data := image(1000, map[int][]byte{at: sig.Pattern})
		sc := New(bytes.NewReader(data), set, Options{BufferSize: 128})

		m, found, err := sc.Find(0, uint64(len(data)))
		require.NoError(t, err)
		require.True(t, found, "signature at %d", at)
		require.Equal(t, uint64(at), m.Offset)
	}
}

func TestFindRelativeToRange(t *testing.T) {
	sig := Signature{Name: "Test.Offset", Pattern: []byte{0xde, 0xad, 0xbe, 0xef}}
	data := image(8192, map[int][]byte{5000: sig.Pattern})

	sc := New(bytes.NewReader(data), NewSet(sig), Options{})
	m, found, err := sc.Find(4096, 4096)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, uint64(5000), m.Offset)
	require.Equal(t, sig.Name, m.Signature.Name)
}

func TestFindEmpty(t *testing.T) {
	sc := New(bytes.NewReader(nil), NewSet(), Options{})
	_, found, err := sc.Find(0, 100)
	require.NoError(t, err)
	require.False(t, found)

	sc = New(bytes.NewReader(nil), NewSet(DefaultSignatures...), Options{})
	_, found, err = sc.Find(0, 0)
	require.NoError(t, err)
	require.False(t, found)
}

type errReaderAt struct{ err error }

func (r errReaderAt) ReadAt(p []byte, off int64) (int, error) { return 0, r.err }

func TestScanRangeReadError(t *testing.T) {
	readErr := errors.New("device error")
	sc := New(errReaderAt{readErr}, NewSet(DefaultSignatures...), Options{})

	_, err := sc.ScanRange(0, 4096, gpt.TypePartAny)
	require.ErrorIs(t, err, readErr)
}
