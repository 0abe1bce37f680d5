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
package sigscan

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"plugin"
	"strings"
)

// PluginSymbol is the function every signature plugin must export.
const PluginSymbol = "GetSignatures"

// ListPlugins expands plugin paths: files are taken as they are, while
// directories are searched recursively for .so files.
func ListPlugins(paths []string) ([]string, error) {
	var pluginPaths []string

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			if !strings.HasSuffix(info.Name(), ".so") {
				return nil, fmt.Errorf("plugin file %s does not have .so extension", info.Name())
			}
			pluginPaths = append(pluginPaths, p)
			continue
		}

		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.HasSuffix(d.Name(), ".so") {
				pluginPaths = append(pluginPaths, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return pluginPaths, nil
}

// LoadPlugins opens every plugin and collects the signatures it exports.
func LoadPlugins(paths ...string) ([]Signature, error) {
	var sigs []Signature
	for _, path := range paths {
		p, err := plugin.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open plugin %q: %w", path, err)
		}

		sym, err := p.Lookup(PluginSymbol)
		if err != nil {
			return nil, fmt.Errorf("plugin %q does not export %s: %w", path, PluginSymbol, err)
		}

		get, ok := sym.(func() ([]Signature, error))
		if !ok {
			return nil, fmt.Errorf("plugin %q: %s has type %T", path, PluginSymbol, sym)
		}

		pluginSigs, err := get()
		if err != nil {
			return nil, fmt.Errorf("plugin %q: %w", path, err)
		}
		sigs = append(sigs, pluginSigs...)
	}
	return sigs, nil
}
