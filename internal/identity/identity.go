package identity

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

const (
	// idLength is the number of characters in the hyphen-less body of a
	// synthesized identifier (8+4+4+4+12).
	idLength = 32

	// padChar fills candidates shorter than idLength.
	padChar = '0'

	// fallbackSeed replaces candidates that are empty after cleaning.
	fallbackSeed = "id"

	// maxPrefixLen caps human-readable prefixes embedded for debuggability.
	maxPrefixLen = 10
)

// FormatID derives a deterministic 36-character identifier from a legacy
// key string.
//
// A candidate that is already a canonical UUID (version 1-5, RFC 4122
// variant, case-insensitive) is returned unchanged. Anything else is
// NFC-normalized, stripped to alphanumerics, padded with '0' to 32
// characters (or truncated), and regrouped as 8-4-4-4-12. The grouped
// string is UUID-shaped but need not be valid hex.
//
// FormatID is pure: no randomness, no time component.
func FormatID(candidate string) string {
	if IsUUID(candidate) {
		return candidate
	}
	return group(pad(clean(candidate)))
}

// FormatIDWithPrefix is FormatID with a sanitized human-readable prefix
// embedded at the front of the synthesized body. Used for entity classes
// that need human-traceable identifiers (pillars, groups). Candidates that
// are already canonical UUIDs still pass through unchanged.
func FormatIDWithPrefix(prefix, candidate string) string {
	if IsUUID(candidate) {
		return candidate
	}
	return group(pad(SanitizePrefix(prefix) + clean(candidate)))
}

// SanitizePrefix strips a prefix to alphanumerics and caps it at 10
// characters.
func SanitizePrefix(prefix string) string {
	cleaned := clean(prefix)
	if len(cleaned) > maxPrefixLen {
		cleaned = cleaned[:maxPrefixLen]
	}
	return cleaned
}

// IsUUID reports whether s is a canonical hyphenated UUID: lowercase or
// uppercase hex in 8-4-4-4-12 grouping with version nibble 1-5 and RFC
// 4122 variant nibble (8, 9, a, b).
func IsUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	for i := 0; i < len(s); i++ {
		switch i {
		case 8, 13, 18, 23:
			if s[i] != '-' {
				return false
			}
		default:
			if !isHex(s[i]) {
				return false
			}
		}
	}
	if s[14] < '1' || s[14] > '5' {
		return false
	}
	switch s[19] {
	case '8', '9', 'a', 'b', 'A', 'B':
		return true
	}
	return false
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// clean NFC-normalizes the candidate and keeps only ASCII alphanumerics.
// Normalizing first keeps synthesis stable across Unicode representations
// of the same text.
func clean(s string) string {
	s = norm.NFC.String(s)
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// pad right-pads with '0' to exactly idLength characters, truncating
// longer inputs. Empty inputs start from the fallback seed.
func pad(s string) string {
	if s == "" {
		s = fallbackSeed
	}
	if len(s) > idLength {
		return s[:idLength]
	}
	return s + strings.Repeat(string(padChar), idLength-len(s))
}

// group slices a 32-character body at the 8-4-4-4-12 boundaries.
func group(body string) string {
	return body[0:8] + "-" + body[8:12] + "-" + body[12:16] + "-" + body[16:20] + "-" + body[20:32]
}
