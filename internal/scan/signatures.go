package scan

import (
	"fmt"

	"github.com/ostafen/gptscan/internal/sigscan"
)

// LoadSignatures builds the signature set used for content scanning: the
// built-in signatures, those listed in sigFile, and those exported by the
// given plugin files or directories.
func LoadSignatures(sigFile string, plugins []string) (*sigscan.Set, error) {
	set := sigscan.NewSet(sigscan.DefaultSignatures...)

	if sigFile != "" {
		sigs, err := sigscan.LoadSignatureFile(sigFile)
		if err != nil {
			return nil, err
		}
		for _, sig := range sigs {
			set.Add(sig)
		}
	}

	if len(plugins) == 0 {
		return set, nil
	}

	pluginPaths, err := sigscan.ListPlugins(plugins)
	if err != nil {
		return nil, fmt.Errorf("failed to list plugins: %w", err)
	}

	sigs, err := sigscan.LoadPlugins(pluginPaths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load plugins: %w", err)
	}
	for _, sig := range sigs {
		set.Add(sig)
	}
	return set, nil
}
