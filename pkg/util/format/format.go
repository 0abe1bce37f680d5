package format

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	_  = iota
	KB = 1 << (10 * iota)
	MB
	GB
	TB
)

// FormatBytes renders b in human-readable units, avoiding .00 for whole numbers.
func FormatBytes(b int64) string {
	val := float64(b)
	var unit string

	switch {
	case b >= TB:
		val /= float64(TB)
		unit = "TB"
	case b >= GB:
		val /= float64(GB)
		unit = "GB"
	case b >= MB:
		val /= float64(MB)
		unit = "MB"
	case b >= KB:
		val /= float64(KB)
		unit = "KB"
	default:
		return fmt.Sprintf("%dB", b)
	}

	if val == float64(int(val)) {
		return fmt.Sprintf("%.0f%s", val, unit)
	}
	return fmt.Sprintf("%.2f%s", val, unit)
}

var units = []struct {
	suffix string
	mul    uint64
}{
	{"TB", TB},
	{"GB", GB},
	{"MB", MB},
	{"KB", KB},
	{"T", TB},
	{"G", GB},
	{"M", MB},
	{"K", KB},
	{"B", 1},
}

// ParseBytes parses sizes such as "512", "4KB" or "1.5MB". Units are
// powers of 1024 and case insensitive.
func ParseBytes(s string) (uint64, error) {
	str := strings.ToUpper(strings.TrimSpace(s))
	if str == "" {
		return 0, fmt.Errorf("invalid size %q", s)
	}

	mul := uint64(1)
	for _, u := range units {
		if strings.HasSuffix(str, u.suffix) {
			str = strings.TrimSpace(strings.TrimSuffix(str, u.suffix))
			mul = u.mul
			break
		}
	}

	if n, err := strconv.ParseUint(str, 10, 64); err == nil {
		if n > ^uint64(0)/mul {
			return 0, fmt.Errorf("size %q overflows", s)
		}
		return n * mul, nil
	}

	f, err := strconv.ParseFloat(str, 64)
	if err != nil || f < 0 {
		return 0, fmt.Errorf("invalid size %q", s)
	}
	v := f * float64(mul)
	if v >= float64(^uint64(0)) {
		return 0, fmt.Errorf("size %q overflows", s)
	}
	return uint64(v), nil
}
