// Package matcher finds the lines of a chunk that contain a literal pattern.
//
// Case-insensitive matching uses Unicode full case folding
// (golang.org/x/text/cases.Fold) applied to both the pattern and each line,
// so "STRASSE" matches "straße" and the Kelvin sign matches "k". When both
// the pattern and a line are pure ASCII, an ASCII-only fold is used instead;
// for ASCII input the two are identical.
//
// A Matcher holds a case folder, which is not safe for concurrent use: give
// each worker its own Matcher.
package matcher

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/dshills/chunkgrep/pkg/types"
)

// Matcher tests lines against one pattern
type Matcher struct {
	pattern    string
	ignoreCase bool

	folder       cases.Caser
	folded       string // pattern after case folding
	asciiFolded  string // pattern lowered byte-wise, valid when patternASCII
	patternASCII bool
}

// New creates a Matcher for pattern. The empty pattern is rejected by
// configuration validation and is never passed here.
func New(pattern string, ignoreCase bool) *Matcher {
	m := &Matcher{
		pattern:    pattern,
		ignoreCase: ignoreCase,
	}
	if ignoreCase {
		m.folder = cases.Fold()
		m.folded = m.folder.String(pattern)
		m.patternASCII = isASCII(pattern)
		if m.patternASCII {
			m.asciiFolded = lowerASCII(pattern)
		}
	}
	return m
}

// Pattern returns the pattern as given
func (m *Matcher) Pattern() string {
	return m.pattern
}

// MatchLine reports whether line contains the pattern
func (m *Matcher) MatchLine(line string) bool {
	if !m.ignoreCase {
		return strings.Contains(line, m.pattern)
	}
	if m.patternASCII && isASCII(line) {
		return containsFoldASCII(line, m.asciiFolded)
	}
	return strings.Contains(m.folder.String(line), m.folded)
}

// Match returns the matching lines of chunk, in line order, with absolute
// line numbers. It performs no I/O.
func (m *Matcher) Match(chunk *types.Chunk) []types.MatchRecord {
	var records []types.MatchRecord
	for i, line := range chunk.Lines {
		if !m.MatchLine(line) {
			continue
		}
		records = append(records, types.MatchRecord{
			Path:       chunk.File.Path,
			LineNumber: chunk.StartLine + i,
			Line:       line,
		})
	}
	return records
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// containsFoldASCII reports whether s contains lowered, comparing s
// case-insensitively. lowered must already be lower case ASCII.
func containsFoldASCII(s, lowered string) bool {
	n := len(lowered)
	if n == 0 {
		return true
	}
	first := lowered[0]
	for i := 0; i+n <= len(s); i++ {
		if toLowerASCII(s[i]) != first {
			continue
		}
		j := 1
		for j < n && toLowerASCII(s[i+j]) == lowered[j] {
			j++
		}
		if j == n {
			return true
		}
	}
	return false
}

func toLowerASCII(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}
