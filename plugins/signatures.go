//go:build ignore

// Example signature plugin. Build it with:
//
//	go build -buildmode=plugin -o signatures.so plugins/signatures.go
package main

import (
	"github.com/ostafen/gptscan/internal/sigscan"
)

// GetSignatures is looked up by sigscan.LoadPlugins.
func GetSignatures() ([]sigscan.Signature, error) {
	return []sigscan.Signature{
		{
			Name:    "Example.Deadbeef",
			Pattern: []byte{0xDE, 0xAD, 0xBE, 0xEF, 0xCA, 0xFE, 0xBA, 0xBE},
		},
	}, nil
}
