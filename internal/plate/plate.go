// Package plate turns raw, noisy OCR output into a registration number.
package plate

import (
	"regexp"
	"strings"
)

// canonicalRE matches the Indian plate format: state code, RTO district,
// series letters, serial number. Groups may be separated by whitespace
// in the cleaned source.
var canonicalRE = regexp.MustCompile(`([A-Z]{2})\s*(\d{1,2})\s*([A-Z]{1,3})\s*(\d{1,4})`)

var spaceRE = regexp.MustCompile(`\s+`)

// Clean strips every character that is not an ASCII letter, digit or
// space, collapses whitespace runs and uppercases the result.
func Clean(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '\t', r == '\n', r == '\r':
			b.WriteByte(' ')
		}
	}
	cleaned := spaceRE.ReplaceAllString(b.String(), " ")
	return strings.ToUpper(strings.TrimSpace(cleaned))
}

// Normalize cleans raw text and reformats it as "XX 00 XX 0000" when the
// canonical pattern is present. When it is not, the cleaned text is
// returned verbatim so the operator can correct it by hand.
func Normalize(raw string) string {
	cleaned := Clean(raw)
	m := canonicalRE.FindStringSubmatch(cleaned)
	if m == nil {
		return cleaned
	}
	return strings.Join([]string{m[1], m[2], m[3], m[4]}, " ")
}

// Compact reduces a plate to its registry key form: uppercase with all
// whitespace and hyphens removed.
func Compact(raw string) string {
	normalized := strings.TrimSpace(raw)
	normalized = strings.ReplaceAll(normalized, " ", "")
	normalized = strings.ReplaceAll(normalized, "-", "")
	return strings.ToUpper(normalized)
}
