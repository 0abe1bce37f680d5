package sigscan

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/ostafen/gptscan/pkg/table"
)

// Signature is a named byte pattern matched anywhere inside a partition.
type Signature struct {
	Name    string
	Pattern []byte
}

// EICAR is the standard anti-malware test file.
var EICAR = Signature{
	Name:    "Eicar-Test-Signature",
	Pattern: []byte(`X5O!P%@AP[4\PZX54(P^)7CC)7}$EICAR-STANDARD-ANTIVIRUS-TEST-FILE!$H+H*`),
}

var DefaultSignatures = []Signature{EICAR}

// Set indexes signatures by pattern.
type Set struct {
	table *table.PrefixTable[[]Signature]
}

func NewSet(sigs ...Signature) *Set {
	s := &Set{table: table.New[[]Signature]()}
	for _, sig := range sigs {
		s.Add(sig)
	}
	return s
}

// Add registers sig. Signatures sharing a pattern are all kept.
func (s *Set) Add(sig Signature) {
	if len(sig.Pattern) == 0 {
		return
	}
	prev, _ := s.table.Get(sig.Pattern)
	s.table.Insert(sig.Pattern, append(prev, sig))
}

// Len returns the number of distinct patterns.
func (s *Set) Len() int {
	return s.table.Size()
}

// MaxLen returns the length of the longest pattern.
func (s *Set) MaxLen() int {
	return s.table.MaxKeyLen()
}

// Match returns the first signature whose pattern is a prefix of data.
func (s *Set) Match(data []byte) (Signature, bool) {
	var (
		found Signature
		ok    bool
	)
	s.table.Walk(data, func(sigs []Signature) bool {
		found, ok = sigs[0], true
		return true
	})
	return found, ok
}

// All returns every signature sorted by name.
func (s *Set) All() []Signature {
	var all []Signature
	s.table.Range(func(_ []byte, sigs []Signature) bool {
		all = append(all, sigs...)
		return true
	})
	sort.Slice(all, func(i, j int) bool {
		return all[i].Name < all[j].Name
	})
	return all
}

// ParseSignatures reads one "Name:hexpattern" signature per line.
// Blank lines and lines starting with '#' are skipped.
func ParseSignatures(r io.Reader) ([]Signature, error) {
	var sigs []Signature

	sc := bufio.NewScanner(r)
	for lineNo := 1; sc.Scan(); lineNo++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		name, pattern, ok := strings.Cut(line, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("line %d: expected Name:hexpattern", lineNo)
		}

		b, err := hex.DecodeString(strings.TrimSpace(pattern))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid pattern for %q: %w", lineNo, name, err)
		}
		if len(b) == 0 {
			return nil, fmt.Errorf("line %d: empty pattern for %q", lineNo, name)
		}
		sigs = append(sigs, Signature{Name: name, Pattern: b})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return sigs, nil
}

func LoadSignatureFile(path string) ([]Signature, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open signature file %q: %w", path, err)
	}
	defer f.Close()

	sigs, err := ParseSignatures(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sigs, nil
}
