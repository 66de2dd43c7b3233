package parser

import (
	"regexp"
	"strings"

	"github.com/angelmondragon/farmledger/internal/catalog"
	"github.com/angelmondragon/farmledger/pkg/enums"
)

type kindPattern struct {
	kind enums.ActivityKind
	re   *regexp.Regexp
}

// Financial labels are tried first: "retirada de dinheiro" must not read as an item removal.
var kindVocabulary = []kindPattern{
	{enums.ActivityKindWithdrawal, regexp.MustCompile(`\b(saque|sacou|sacar|sacado|withdraw|withdrawal|withdrawn|withdrew|retirada de dinheiro|dinheiro retirado)\b`)},
	{enums.ActivityKindDeposit, regexp.MustCompile(`\b(deposit\w*|dinheiro depositado)\b`)},
	{enums.ActivityKindItemRemove, regexp.MustCompile(`\b(remov\w*|retir\w*|take|took|taken)\b`)},
	{enums.ActivityKindItemAdd, regexp.MustCompile(`\b(add|added|adicion\w*|insert\w*|inseri\w*|guard\w*|colocou|put)\b`)},
}

// matchKind returns the first action label found in text.
func matchKind(text string) (enums.ActivityKind, bool) {
	folded := catalog.Fold(text)
	for _, p := range kindVocabulary {
		if p.re.MatchString(folded) {
			return p.kind, true
		}
	}
	return "", false
}

func isActionWord(word string) bool {
	_, ok := matchKind(word)
	return ok
}

// stripActionWords drops every action label from s, keeping the remaining words in order.
func stripActionWords(s string) string {
	var kept []string
	for _, w := range strings.Fields(s) {
		if isActionWord(w) {
			continue
		}
		kept = append(kept, w)
	}
	return strings.Join(kept, " ")
}

type fieldRole int

const (
	fieldUnknown fieldRole = iota
	fieldItem
	fieldAmount
	fieldBalance
	fieldAuthor
)

// classifyField maps an embed field label onto the fact it carries.
func classifyField(name string) fieldRole {
	n := catalog.Fold(name)
	switch {
	case strings.Contains(n, "saldo") || strings.Contains(n, "balance"):
		return fieldBalance
	case strings.Contains(n, "item"):
		return fieldItem
	case strings.Contains(n, "valor") || strings.Contains(n, "amount") ||
		strings.Contains(n, "quantia") || strings.Contains(n, "dinheiro"):
		return fieldAmount
	case strings.Contains(n, "autor") || strings.Contains(n, "author") ||
		strings.Contains(n, "usuario") || strings.Contains(n, "user") ||
		strings.Contains(n, "jogador") || strings.Contains(n, "player"):
		return fieldAuthor
	}
	return fieldUnknown
}
