package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

	// Letters that carry no combining mark and so survive NFD unchanged.
	standalone = strings.NewReplacer("ı", "i", "ł", "l", "ø", "o", "ß", "ss", "đ", "d")
)

// Generate creates a URL-friendly slug from the given name. Diacritics are
// stripped, so "Růženínové srdce" becomes "ruzeninove-srdce".
func Generate(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = standalone.Replace(s)

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(t, s); err == nil {
		s = folded
	}

	s = nonAlnum.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
