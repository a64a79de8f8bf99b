// Package slug builds URL-safe identifiers from display names.
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

	// Ligatures do not decompose under NFD.
	ligatures = strings.NewReplacer("œ", "oe", "æ", "ae", "ß", "ss")
)

// Generate lowercases name, strips accents and joins the remaining
// alphanumeric runs with single hyphens.
//
//	"Fruits & Légumes" -> "fruits-legumes"
//	"Œufs frais"       -> "oeufs-frais"
func Generate(name string) string {
	s := ligatures.Replace(strings.ToLower(strings.TrimSpace(name)))

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if out, _, err := transform.String(t, s); err == nil {
		s = out
	}

	s = nonAlnum.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
