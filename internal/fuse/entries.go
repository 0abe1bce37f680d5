package fuse

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ostafen/gptscan/internal/gpt"
)

// FileEntry is a partition exposed as a file of the mounted directory.
type FileEntry struct {
	Name   string
	Offset uint64
	Size   uint64
}

// EntryName names the file of a partition after its table, index and
// label, e.g. "primary-p2-root".
func EntryName(p gpt.Partition) string {
	name := fmt.Sprintf("%s-p%d", p.Table, p.Num)

	label := strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\' || r < ' ':
			return '_'
		case r == ' ':
			return '_'
		}
		return r
	}, strings.TrimSpace(p.Name))

	if label != "" {
		name += "-" + label
	}
	return name
}

// BuildEntries maps every partition to a uniquely named file entry.
// A name already taken gets a numeric suffix so that no partition is
// hidden from the mounted directory.
func BuildEntries(parts []gpt.Partition) map[string]FileEntry {
	entries := make(map[string]FileEntry, len(parts))
	for _, p := range parts {
		base := EntryName(p)
		name := base
		for i := 1; ; i++ {
			if _, taken := entries[name]; !taken {
				break
			}
			name = fmt.Sprintf("%s.%d", base, i)
		}
		entries[name] = FileEntry{
			Name:   name,
			Offset: p.Offset,
			Size:   p.Size,
		}
	}
	return entries
}

func sortedNames(entries map[string]FileEntry) []string {
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
