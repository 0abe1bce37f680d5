//go:build unix

package mmap_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ostafen/gptscan/internal/mmap"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.bin")
	data := []byte("some image content")
	require.NoError(t, os.WriteFile(path, data, 0644))

	m, err := mmap.Open(path)
	require.NoError(t, err)
	require.Equal(t, data, m.Data)
	require.Equal(t, uint64(len(data)), m.Len())
	require.NoError(t, m.Close())
	require.Nil(t, m.Data)
}

func TestOpenEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.bin")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	_, err := mmap.Open(path)
	require.ErrorIs(t, err, mmap.ErrUnsupported)
}
