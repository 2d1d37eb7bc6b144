package filter

import (
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// folder strips combining marks after canonical decomposition, turning
// "paraná" into "parana". Built once; transform chains are stateless here.
var folder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold removes diacritics from s. Matching folded haystacks against folded
// terms makes the gazetteer accent-insensitive regardless of which spelling
// either side uses. On a transform error the input is returned unchanged.
func Fold(s string) string {
	out, _, err := transform.String(folder, s)
	if err != nil {
		return s
	}
	return out
}
