package blob

import (
	"iter"
	"slices"
	"strings"
)

// DefaultMinRun is the shortest readable run reported by Extract.
const DefaultMinRun = 3

func isPrintableASCII(c byte) bool {
	return c >= 0x20 && c <= 0x7e
}

// Extract yields the maximal runs of printable ASCII (0x20-0x7E) in b with
// surrounding whitespace trimmed. Runs shorter than minRun after trimming
// are skipped; minRun <= 0 selects DefaultMinRun.
func Extract(b []byte, minRun int) iter.Seq[string] {
	if minRun <= 0 {
		minRun = DefaultMinRun
	}
	return func(yield func(string) bool) {
		start := -1
		for i := 0; i <= len(b); i++ {
			if i < len(b) && isPrintableASCII(b[i]) {
				if start < 0 {
					start = i
				}
				continue
			}
			if start < 0 {
				continue
			}
			run := strings.TrimSpace(string(b[start:i]))
			start = -1
			if len(run) < minRun {
				continue
			}
			if !yield(run) {
				return
			}
		}
	}
}

// Strings collects Extract into a slice.
func Strings(b []byte, minRun int) []string {
	return slices.Collect(Extract(b, minRun))
}
