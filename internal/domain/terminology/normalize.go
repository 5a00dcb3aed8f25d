package terminology

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeTerm lowercases a search term and strips combining marks so
// transliterated Sanskrit matches its plain-ASCII spelling (Jvara
// matches Jvarā, amlapitta matches Amlapittā). Sanskrit romanization
// writes the same consonant as v or w (jvara/jwara), so w folds to v
// as the canonical form.
func NormalizeTerm(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	out = strings.ToLower(strings.TrimSpace(out))
	return strings.ReplaceAll(out, "w", "v")
}
