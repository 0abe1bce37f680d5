// Copyright (c) 2025 Stefano Scafiti
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.
package sysinfo

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// SysUnknown describes a host whose release could not be determined.
var SysUnknown = SysInfo{
	Name:    runtime.GOOS,
	Release: "unknown",
	Version: "unknown",
}

// SysInfo holds the basic operating system details.
type SysInfo struct {
	Name    string // runtime.GOOS
	Release string // distribution or product name, e.g. "Ubuntu" or "macOS"
	Version string // kernel release on unix, product version elsewhere
}

// Stat describes the host operating system. Fields that cannot be
// determined are reported as "unknown".
func Stat() (*SysInfo, error) {
	info := SysUnknown

	switch runtime.GOOS {
	case "linux":
		if f, err := os.Open("/etc/os-release"); err == nil {
			info.Release, info.Version = parseOSRelease(f)
			f.Close()
		}
	case "darwin":
		if out, err := exec.Command("sw_vers").Output(); err == nil {
			info.Release, info.Version = parseSwVers(bytes.NewReader(out))
		}
	case "windows":
		if out, err := exec.Command("cmd", "/c", "ver").Output(); err == nil {
			info.Release, info.Version = "Windows", strings.TrimSpace(string(out))
		}
	}

	if kernel := kernelRelease(); kernel != "" {
		info.Version = kernel
	}
	if info.Release == "" {
		info.Release = SysUnknown.Release
	}
	if info.Version == "" {
		info.Version = SysUnknown.Version
	}
	return &info, nil
}

// parseOSRelease extracts NAME and VERSION from an os-release file.
func parseOSRelease(r io.Reader) (name, version string) {
	kv := parseKeyValues(r, "=")
	return kv["NAME"], kv["VERSION"]
}

// parseSwVers extracts the product name and version printed by sw_vers.
func parseSwVers(r io.Reader) (name, version string) {
	kv := parseKeyValues(r, ":")
	return kv["ProductName"], kv["ProductVersion"]
}

func parseKeyValues(r io.Reader, sep string) map[string]string {
	kv := make(map[string]string)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), sep)
		if !ok {
			continue
		}
		kv[strings.TrimSpace(key)] = strings.Trim(strings.TrimSpace(value), `"`)
	}
	return kv
}
