// Package parser extracts activity candidates from chat-log records. Embedded field lists are
// preferred; plain message text is scanned with looser patterns when no fields are attached.
package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/angelmondragon/farmledger/pkg/enums"
	"github.com/angelmondragon/farmledger/pkg/money"
)

var (
	reAccount   = regexp.MustCompile(`(?i)^\s*(.*?)\s*\|\s*ACCOUNT\s*:\s*(\d+)\s*$`)
	reAccountID = regexp.MustCompile(`(?i)\bACCOUNT\s*:\s*(\d+)`)
	reAmount    = regexp.MustCompile(`\$\s*(\d[\d.,]*)`)
	reBalance   = regexp.MustCompile(`(?i)(saldo|balance)[^$\n]*\$\s*(\d[\d.,]*)`)
	reParens    = regexp.MustCompile(`\([^)]*\)`)

	// "Trigo x50" inside a fenced block.
	reNameQty = regexp.MustCompile(`(?i)^\s*(\p{L}[\p{L}\p{N} _'.-]*?)\s*x\s*(\d(?:[\d.,]*\d)?)\s*$`)

	// Free-text forms.
	reQtyItem  = regexp.MustCompile(`(?i)\b(\d(?:[\d.,]*\d)?)\s*x\s+(\p{L}[\p{L}\p{N} _'-]*)`)
	reXQtyItem = regexp.MustCompile(`(?i)^(.*?)\bx(\d(?:[\d.,]*\d)?)\s+(\p{L}[\p{L}\p{N} _'-]*)`)
	reItemXQty = regexp.MustCompile(`(?i)(\p{L}[\p{L}\p{N} _'-]*?)\s*\bx\s?(\d(?:[\d.,]*\d)?)\b`)

	// 1.000 or 1,000 with a single separator style.
	reGroupedQty = regexp.MustCompile(`^\d{1,3}(?:\.\d{3})+$|^\d{1,3}(?:,\d{3})+$`)
	reFenceStrip = strings.NewReplacer("```", "\n", "`", "")
)

// Parse turns a record into an activity candidate. ok is false when the record does not
// describe a recognized action; the caller counts those.
func Parse(record RawLogRecord) (Candidate, bool) {
	for _, embed := range record.Embeds {
		if c, ok := parseEmbed(record, embed); ok {
			return c, true
		}
	}
	return parseText(record, record.Content, "")
}

func parseEmbed(record RawLogRecord, embed Embed) (Candidate, bool) {
	kind, ok := matchKind(embed.Title)
	if !ok {
		kind, ok = matchKind(embed.Description)
	}
	if !ok {
		return Candidate{}, false
	}

	c := Candidate{
		SourceID:   record.ID,
		Kind:       kind,
		Timestamp:  record.Timestamp,
		Structured: true,
	}
	c.RawActor, c.ActorAccountID = splitAccount(record.Author)

	for _, field := range embed.Fields {
		switch classifyField(field.Name) {
		case fieldItem:
			if item, qty, found := fencedItem(field.Value); found {
				c.RawItem, c.RawQuantity = item, qty
			}
		case fieldAmount:
			if m := reAmount.FindStringSubmatch(field.Value); m != nil {
				c.RawAmount = m[1]
			}
		case fieldBalance:
			if m := reAmount.FindStringSubmatch(field.Value); m != nil {
				c.RawBalanceAfter = m[1]
			}
		case fieldAuthor:
			if name, account := splitAccount(field.Value); name != "" || account != "" {
				if name != "" {
					c.RawActor = name
				}
				if account != "" {
					c.ActorAccountID = account
				}
			}
		}
	}

	if c.complete() {
		return c, true
	}
	if embed.Description != "" {
		return parseText(record, embed.Description, kind)
	}
	return Candidate{}, false
}

func parseText(record RawLogRecord, text string, kind enums.ActivityKind) (Candidate, bool) {
	if strings.TrimSpace(text) == "" {
		return Candidate{}, false
	}
	if kind == "" {
		k, ok := matchKind(text)
		if !ok {
			return Candidate{}, false
		}
		kind = k
	}

	c := Candidate{SourceID: record.ID, Kind: kind, Timestamp: record.Timestamp}
	c.RawActor, c.ActorAccountID = splitAccount(record.Author)
	if m := reAccountID.FindStringSubmatch(text); m != nil {
		c.ActorAccountID = m[1]
	}

	if kind.Category() == enums.ActivityCategoryFinancial {
		rest := text
		if m := reBalance.FindStringSubmatchIndex(text); m != nil {
			c.RawBalanceAfter = text[m[4]:m[5]]
			rest = text[:m[0]] + text[m[1]:]
		}
		if m := reAmount.FindStringSubmatch(rest); m != nil {
			c.RawAmount = m[1]
		}
	} else {
		body := reParens.ReplaceAllString(text, " ")
		body = reAccountID.ReplaceAllString(body, " ")
		c.RawItem, c.RawQuantity = freeTextItem(body, &c)
	}

	if !c.complete() {
		return Candidate{}, false
	}
	return c, true
}

// freeTextItem tries "<qty>x <item>", "x<qty> <item>" and "<item> x<qty>" in that order.
// A name leading "x<qty>" replaces the record author as the actor.
func freeTextItem(body string, c *Candidate) (string, string) {
	if m := reQtyItem.FindStringSubmatch(body); m != nil {
		return cleanItem(m[2]), m[1]
	}
	if m := reXQtyItem.FindStringSubmatch(body); m != nil {
		if lead := strings.TrimSpace(stripActionWords(m[1])); lead != "" {
			c.RawActor = lead
			c.ActorAccountID = ""
		}
		return cleanItem(m[3]), m[2]
	}
	if m := reItemXQty.FindStringSubmatch(body); m != nil {
		lead, item := splitAtAction(m[1])
		if lead != "" {
			c.RawActor = lead
			c.ActorAccountID = ""
		}
		return item, m[2]
	}
	return "", ""
}

// splitAtAction splits "<name> <action> <item>" at the last action word. Text without an
// action word, or with nothing after it, is all item.
func splitAtAction(s string) (string, string) {
	words := strings.Fields(s)
	last := -1
	for i, w := range words {
		if isActionWord(w) {
			last = i
		}
	}
	if last < 0 || last == len(words)-1 {
		return "", cleanItem(s)
	}
	lead := strings.TrimSpace(stripActionWords(strings.Join(words[:last], " ")))
	return lead, strings.Join(words[last+1:], " ")
}

func fencedItem(value string) (string, string, bool) {
	for _, line := range strings.Split(reFenceStrip.Replace(value), "\n") {
		if m := reNameQty.FindStringSubmatch(line); m != nil {
			return strings.TrimSpace(m[1]), m[2], true
		}
	}
	return "", "", false
}

func cleanItem(raw string) string {
	return strings.TrimSpace(stripActionWords(strings.TrimSpace(raw)))
}

func splitAccount(author string) (string, string) {
	author = strings.TrimSpace(author)
	if m := reAccount.FindStringSubmatch(author); m != nil {
		return strings.TrimSpace(m[1]), m[2]
	}
	return author, ""
}

// complete reports whether the candidate carries the facts its kind needs.
func (c Candidate) complete() bool {
	switch c.Kind.Category() {
	case enums.ActivityCategoryInventory:
		qty, err := ParseQuantity(c.RawQuantity)
		return c.RawItem != "" && err == nil && qty > 0
	case enums.ActivityCategoryFinancial:
		_, ok := money.Parse(c.RawAmount)
		return ok
	}
	return false
}

// ParseQuantity reads a whole, non-negative item count. Thousands separators are accepted
// ("1.000", "1,000"); fractions are not.
func ParseQuantity(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if strings.ContainsAny(raw, ".,") {
		if !reGroupedQty.MatchString(raw) {
			return 0, fmt.Errorf("quantity %q is not a whole number", raw)
		}
		raw = strings.NewReplacer(".", "", ",", "").Replace(raw)
	}
	qty, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("quantity %q: %w", raw, err)
	}
	if qty < 0 {
		return 0, fmt.Errorf("quantity %q is negative", raw)
	}
	return qty, nil
}
