package places

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var dStroke = strings.NewReplacer("đ", "d", "Đ", "D")

// StripDiacritics keeps case but drops accents, so "Huế" becomes "Hue".
func StripDiacritics(s string) string {
	s = dStroke.Replace(s)
	// transform chains keep state, so each call builds its own.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// NormalizeName lower-cases, strips diacritics and collapses whitespace so
// "Đà Lạt", "da lat" and "DA  LAT" compare equal.
func NormalizeName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(StripDiacritics(s))), " ")
}

// Related reports whether one normalized name contains the other.
func Related(a, b string) bool {
	a, b = NormalizeName(a), NormalizeName(b)
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}
