// Package blob decodes the opaque key and value blobs stored in a Firefox
// extension's IndexedDB object_data table.
//
// The structured clone format the browser writes is undocumented, so nothing
// here parses it. The decoders locate a readable key behind a short metadata
// prefix, find a JSON payload behind a binary prefix, and, when no JSON is
// present, slice the decoded text at known field names to rebuild records.
// Every function is pure and returns an absence instead of an error.
package blob

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Input is a raw column value as read from storage: []byte, string, int64,
// float64, bool, time.Time or nil.
type Input = any

// lossyString decodes b as UTF-8, dropping invalid sequences.
func lossyString(b []byte) string {
	return strings.ToValidUTF8(string(b), "")
}

// printableRunes keeps only printable runes (space included).
func printableRunes(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if unicode.IsPrint(r) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func allPrintable(s string) bool {
	for _, r := range s {
		if !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r)
}

// truncateRunes cuts s to at most n runes. n <= 0 disables the limit.
func truncateRunes(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// HexPrefix returns up to n leading bytes of a []byte input as hex.
// Any other input yields "".
func HexPrefix(in Input, n int) string {
	b, ok := in.([]byte)
	if !ok {
		return ""
	}
	if len(b) > n {
		b = b[:n]
	}
	return hex.EncodeToString(b)
}

// stringify renders a non-blob scalar the way a storage row shows it.
func stringify(in Input) string {
	switch v := in.(type) {
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return v.Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(v)
	}
}

// Text renders any input as searchable text: lossy UTF-8 for blobs, the
// stringified scalar otherwise, "" for nil.
func Text(in Input) string {
	switch v := in.(type) {
	case nil:
		return ""
	case []byte:
		return lossyString(v)
	default:
		return stringify(v)
	}
}
