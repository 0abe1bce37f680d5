package fuse

import (
	"testing"

	"github.com/ostafen/gptscan/internal/disk"
	"github.com/ostafen/gptscan/internal/gpt"
	"github.com/stretchr/testify/require"
)

func TestEntryName(t *testing.T) {
	p := gpt.Partition{
		Partition: disk.Partition{Num: 2},
		Table:     gpt.PrimaryTable,
		Name:      "EFI system/boot",
	}
	require.Equal(t, "primary-p2-EFI_system_boot", EntryName(p))

	p.Name = "  "
	p.Table = gpt.SecondaryTable
	require.Equal(t, "secondary-p2", EntryName(p))
}

func TestBuildEntries(t *testing.T) {
	parts := []gpt.Partition{
		{Partition: disk.Partition{Num: 0, Offset: 5120, Size: 1024}, Table: gpt.PrimaryTable, Name: "boot"},
		{Partition: disk.Partition{Num: 0, Offset: 5120, Size: 1024}, Table: gpt.SecondaryTable, Name: "boot"},
	}

	entries := BuildEntries(parts)
	require.Len(t, entries, 2)
	require.Equal(t, []string{"primary-p0-boot", "secondary-p0-boot"}, sortedNames(entries))
	require.Equal(t, FileEntry{Name: "primary-p0-boot", Offset: 5120, Size: 1024}, entries["primary-p0-boot"])
}

func TestBuildEntriesDuplicateNames(t *testing.T) {
	parts := []gpt.Partition{
		{Partition: disk.Partition{Num: 0, Offset: 5120, Size: 1024}, Table: gpt.PrimaryTable},
		{Partition: disk.Partition{Num: 0, Offset: 5120, Size: 1024}, Table: gpt.PrimaryTable},
		{Partition: disk.Partition{Num: 0, Offset: 9216, Size: 2048}, Table: gpt.PrimaryTable},
	}

	entries := BuildEntries(parts)
	require.Len(t, entries, 3)
	require.Equal(t, []string{"primary-p0", "primary-p0.1", "primary-p0.2"}, sortedNames(entries))
	require.Equal(t, FileEntry{Name: "primary-p0.2", Offset: 9216, Size: 2048}, entries["primary-p0.2"])
}
