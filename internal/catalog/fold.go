package catalog

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stopwords = map[string]struct{}{
	"de": {}, "da": {}, "do": {}, "das": {}, "dos": {},
	"of": {}, "the": {}, "a": {}, "o": {},
}

// Fold lowercases s and strips diacritics ("Ração" -> "racao").
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}

// Slug folds s and joins its alphanumeric runs with underscores.
func Slug(s string) string {
	return strings.Join(words(Fold(s)), "_")
}

// Tokens returns the significant words of s, folded, singularized and sorted.
func Tokens(s string) []string {
	var out []string
	for _, w := range words(Fold(s)) {
		if _, skip := stopwords[w]; skip {
			continue
		}
		out = append(out, singular(w))
	}
	sort.Strings(out)
	return out
}

func words(folded string) []string {
	return strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func singular(w string) string {
	switch {
	case len(w) > 4 && strings.HasSuffix(w, "oes"):
		return strings.TrimSuffix(w, "oes") + "ao"
	case len(w) > 3 && strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss"):
		return strings.TrimSuffix(w, "s")
	}
	return w
}
