package blob

import (
	"strings"
	"unicode/utf8"
)

// DefaultKeyWindow is how many leading metadata bytes key decoding will try
// to skip.
const DefaultKeyWindow = 20

// minKeyRunes is the shortest key accepted from a blob.
const minKeyRunes = 2

type keyStrategy func(b []byte) (string, bool)

// DecodeKey recovers a readable key from a raw key column value using the
// default offset window.
func DecodeKey(in Input) (string, bool) {
	return decodeKey(in, DefaultKeyWindow)
}

func decodeKey(in Input, window int) (string, bool) {
	switch v := in.(type) {
	case nil:
		return "", false
	case []byte:
		if len(v) == 0 {
			return "", false
		}
		for _, strategy := range keyStrategies(window) {
			if key, ok := strategy(v); ok {
				return key, true
			}
		}
		return "", false
	default:
		s := stringify(v)
		return s, s != ""
	}
}

func keyStrategies(window int) []keyStrategy {
	if window <= 0 {
		window = DefaultKeyWindow
	}
	return []keyStrategy{
		wholeBlobKey,
		offsetKey(window),
	}
}

// wholeBlobKey accepts the blob when, once trailing NULs and surrounding
// whitespace are gone, nothing unprintable is left.
func wholeBlobKey(b []byte) (string, bool) {
	s := strings.TrimSpace(strings.TrimRight(lossyString(b), "\x00"))
	if utf8.RuneCountInString(s) < minKeyRunes || !allPrintable(s) {
		return "", false
	}
	return s, true
}

// offsetKey skips 0..window-1 prefix bytes and keeps the printable runes of
// the rest. The first offset that leaves a usable key wins.
func offsetKey(window int) keyStrategy {
	return func(b []byte) (string, bool) {
		for off := 0; off < min(window, len(b)); off++ {
			s := printableRunes(lossyString(b[off:]))
			if utf8.RuneCountInString(s) >= minKeyRunes {
				return s, true
			}
		}
		return "", false
	}
}
