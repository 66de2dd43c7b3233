package workers

import (
	"strings"
	"unicode"

	"github.com/angelmondragon/farmledger/internal/catalog"
)

// Tier reports how an author was matched to a profile.
type Tier int

const (
	TierNone Tier = iota
	TierAccountID
	TierExactName
	TierFuzzy
)

func (t Tier) String() string {
	switch t {
	case TierAccountID:
		return "account-id"
	case TierExactName:
		return "exact-name"
	case TierFuzzy:
		return "fuzzy"
	}
	return "none"
}

const (
	minSignificantWordLen = 3
	minSharedWords        = 2
	minContainmentLen     = 3
)

// Match resolves a log author to a profile. Tiers are tried in order: linked account id,
// case-insensitive exact name, then fuzzy (two shared words longer than two letters, or one
// normalized name containing the other). Within the fuzzy tier the profile sharing the most
// words wins; ties keep profile order.
func Match(author, accountID string, profiles []Profile) (Profile, Tier, bool) {
	accountID = strings.TrimSpace(accountID)
	if accountID != "" {
		for _, p := range profiles {
			if p.LinkedAccountID != "" && p.LinkedAccountID == accountID {
				return p, TierAccountID, true
			}
		}
	}

	author = strings.TrimSpace(author)
	if author == "" {
		return Profile{}, TierNone, false
	}
	for _, p := range profiles {
		if strings.EqualFold(strings.TrimSpace(p.Name), author) {
			return p, TierExactName, true
		}
	}

	authorWords := significantWords(author)
	authorFlat := flatten(author)
	best, bestScore := -1, 0
	for i, p := range profiles {
		score := sharedWords(authorWords, significantWords(p.Name))
		if score < minSharedWords {
			score = 0
			if contains(authorFlat, flatten(p.Name)) {
				score = 1
			}
		}
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 {
		return Profile{}, TierNone, false
	}
	return profiles[best], TierFuzzy, true
}

func significantWords(name string) []string {
	var out []string
	for _, w := range strings.FieldsFunc(catalog.Fold(name), notAlnum) {
		if len([]rune(w)) >= minSignificantWordLen {
			out = append(out, w)
		}
	}
	return out
}

func sharedWords(a, b []string) int {
	seen := make(map[string]struct{}, len(a))
	for _, w := range a {
		seen[w] = struct{}{}
	}
	n := 0
	for _, w := range b {
		if _, ok := seen[w]; ok {
			n++
			delete(seen, w)
		}
	}
	return n
}

func flatten(name string) string {
	return strings.Join(strings.FieldsFunc(catalog.Fold(name), notAlnum), "")
}

func contains(a, b string) bool {
	if len(a) < minContainmentLen || len(b) < minContainmentLen {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func notAlnum(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
