package report

import (
	"math/big"
	"strings"
	"unicode"

	"github.com/dustin/go-humanize"
)

// NoValue is printed in place of a rate that could not be read.
const NoValue = "N/A"

// FormatWithCommas converts a digit string such as "58000" to "58,000".
//
// A nil or empty input yields ("", false). Input that does not parse as a
// base-10 integer is returned unchanged. Integers of any size are accepted,
// in any script's decimal digits, with single underscores between digits.
func FormatWithCommas(raw *string) (string, bool) {
	if raw == nil || *raw == "" {
		return "", false
	}

	digits, ok := normalizeInteger(*raw)
	if !ok {
		return *raw, true
	}
	n, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return *raw, true
	}
	return humanize.BigComma(n), true
}

// normalizeInteger rewrites an integer literal to an optional sign followed
// by ASCII digits. It rejects anything else, including leading, trailing or
// doubled underscores.
func normalizeInteger(s string) (string, bool) {
	s = strings.TrimSpace(s)

	var b strings.Builder
	if s != "" && (s[0] == '+' || s[0] == '-') {
		b.WriteByte(s[0])
		s = s[1:]
	}

	prevDigit := false
	for _, r := range s {
		if r == '_' {
			if !prevDigit {
				return "", false
			}
			prevDigit = false
			continue
		}
		d, ok := digitValue(r)
		if !ok {
			return "", false
		}
		b.WriteByte('0' + d)
		prevDigit = true
	}
	if !prevDigit {
		return "", false
	}
	return b.String(), true
}

// digitValue returns the value of a Unicode decimal digit (category Nd).
// Nd characters come in contiguous runs of whole 0-9 sequences, so the value
// is the offset from the start of the run, modulo 10.
func digitValue(r rune) (byte, bool) {
	if r >= '0' && r <= '9' {
		return byte(r - '0'), true
	}
	if !unicode.Is(unicode.Nd, r) {
		return 0, false
	}
	start := r
	for unicode.Is(unicode.Nd, start-1) {
		start--
	}
	return byte((r - start) % 10), true
}

// displayValue is FormatWithCommas with the absent case rendered as NoValue.
func displayValue(raw *string) (string, bool) {
	s, ok := FormatWithCommas(raw)
	if !ok {
		return NoValue, false
	}
	return s, true
}
