package disk

import (
	"runtime"
	"strings"
	"unicode"
)

const windowsDevicePrefix = `\\.\`

// NormalizeVolumePath turns drive letters ("C:") and physical drive names
// ("PhysicalDrive0") into raw device paths when running on Windows.
// Other paths, and every path on other systems, are returned unchanged.
func NormalizeVolumePath(path string) string {
	if runtime.GOOS != "windows" {
		return path
	}
	return normalizeWindowsPath(path)
}

func normalizeWindowsPath(path string) string {
	path = strings.ReplaceAll(strings.TrimSpace(path), "/", `\`)
	upper := strings.ToUpper(path)

	switch {
	case strings.HasPrefix(upper, windowsDevicePrefix):
		return upper
	case strings.HasPrefix(upper, "PHYSICALDRIVE"):
		return windowsDevicePrefix + upper
	case isDriveLetter(upper):
		return windowsDevicePrefix + upper[:2]
	}
	return path
}

// isDriveLetter matches "C:" and "C:\" but not paths below a drive.
func isDriveLetter(path string) bool {
	if len(path) < 2 || path[1] != ':' || !unicode.IsLetter(rune(path[0])) {
		return false
	}
	return len(path) == 2 || path[2:] == `\`
}
