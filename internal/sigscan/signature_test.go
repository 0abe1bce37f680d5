package sigscan

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSignatures(t *testing.T) {
	input := `
# test signatures
Test.Deadbeef:deadbeef
Test.Text : 68656c6c6f
`
	sigs, err := ParseSignatures(strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, []Signature{
		{Name: "Test.Deadbeef", Pattern: []byte{0xde, 0xad, 0xbe, 0xef}},
		{Name: "Test.Text", Pattern: []byte("hello")},
	}, sigs)
}

func TestParseSignaturesErrors(t *testing.T) {
	for _, input := range []string{
		"no-separator",
		":deadbeef",
		"Name:zz",
		"Name:",
	} {
		_, err := ParseSignatures(strings.NewReader(input))
		require.Error(t, err, input)
		require.Contains(t, err.Error(), "line 1")
	}
}

func TestLoadSignatureFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sigs.txt")
	require.NoError(t, os.WriteFile(path, []byte("A:41\n"), 0644))

	sigs, err := LoadSignatureFile(path)
	require.NoError(t, err)
	require.Len(t, sigs, 1)

	_, err = LoadSignatureFile(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}

func TestSet(t *testing.T) {
	set := NewSet(
		Signature{Name: "B", Pattern: []byte("abc")},
		Signature{Name: "A", Pattern: []byte("ab")},
		Signature{Name: "C", Pattern: []byte("abc")},
		Signature{Name: "Empty"},
	)

	require.Equal(t, 2, set.Len())
	require.Equal(t, 3, set.MaxLen())

	sig, ok := set.Match([]byte("abcd"))
	require.True(t, ok)
	require.Equal(t, "A", sig.Name)

	_, ok = set.Match([]byte("xabc"))
	require.False(t, ok)

	names := []string{}
	for _, s := range set.All() {
		names = append(names, s.Name)
	}
	require.Equal(t, []string{"A", "B", "C"}, names)
}

func TestListPlugins(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "nested")
	require.NoError(t, os.MkdirAll(sub, 0755))

	for _, name := range []string{"a.so", "notes.txt", filepath.Join("nested", "b.so")} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
	}

	paths, err := ListPlugins([]string{dir})
	require.NoError(t, err)
	require.ElementsMatch(t, []string{
		filepath.Join(dir, "a.so"),
		filepath.Join(sub, "b.so"),
	}, paths)

	_, err = ListPlugins([]string{filepath.Join(dir, "notes.txt")})
	require.Error(t, err)
}
