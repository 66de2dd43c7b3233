// Package catalog resolves free-form item text to canonical item ids and answers the
// display-name and item-class questions the pay and abuse rules ask.
package catalog

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ItemClass drives pricing and abuse classification.
type ItemClass string

const (
	ClassMainCrop      ItemClass = "main-crop"
	ClassSpecialtyCrop ItemClass = "specialty-crop"
	ClassSeed          ItemClass = "seed"
	ClassAnimal        ItemClass = "animal"
	ClassFeed          ItemClass = "feed"
	ClassAllowance     ItemClass = "allowance"
	ClassTool          ItemClass = "tool"
	ClassBox           ItemClass = "box"
	ClassUnknown       ItemClass = "unknown"
)

// IsPlant reports whether the class is a harvested plant (never a seed).
func (c ItemClass) IsPlant() bool {
	return c == ClassMainCrop || c == ClassSpecialtyCrop
}

// IsService reports whether the class belongs to a paid service cycle.
func (c ItemClass) IsService() bool {
	return c.IsPlant() || c == ClassSeed || c == ClassAnimal || c == ClassFeed || c == ClassBox
}

// Item is one catalog entry.
type Item struct {
	ID              string
	Name            string
	Class           ItemClass
	Aliases         []string
	ReplacementCost decimal.Decimal
}

// Canonicalizer maps raw item text to a canonical item id.
type Canonicalizer interface {
	Canonical(raw string) string
}

// Lookup is the read surface the classifier, payroll and abuse packages depend on.
type Lookup interface {
	Canonicalizer
	DisplayName(id string) string
	Class(id string) ItemClass
	ToolCost(id string) (decimal.Decimal, bool)
}

// Catalog is the default in-memory Lookup.
type Catalog struct {
	items   map[string]Item
	aliases map[string]string
	tokens  map[string]string
}

var _ Lookup = (*Catalog)(nil)

// New indexes items by id, alias slug and token set.
func New(items []Item) *Catalog {
	c := &Catalog{
		items:   make(map[string]Item, len(items)),
		aliases: make(map[string]string),
		tokens:  make(map[string]string),
	}
	for _, item := range items {
		c.Add(item)
	}
	return c
}

// Add registers or replaces an item.
func (c *Catalog) Add(item Item) {
	item.ID = Slug(item.ID)
	if item.ID == "" {
		return
	}
	if item.Class == "" {
		item.Class = ClassUnknown
	}
	c.items[item.ID] = item
	for _, name := range append([]string{item.ID, item.Name}, item.Aliases...) {
		if slug := Slug(name); slug != "" {
			c.aliases[slug] = item.ID
		}
		if key := tokenKey(name); key != "" {
			if _, taken := c.tokens[key]; !taken {
				c.tokens[key] = item.ID
			}
		}
	}
}

// Canonical resolves raw text by exact id, alias, then token-set match
// ("semente de trigo" = "seed wheat" = "wheat_seed"). Unknown text comes back slugged.
func (c *Catalog) Canonical(raw string) string {
	slug := Slug(raw)
	if slug == "" {
		return ""
	}
	if _, ok := c.items[slug]; ok {
		return slug
	}
	if id, ok := c.aliases[slug]; ok {
		return id
	}
	if id, ok := c.tokens[tokenKey(raw)]; ok {
		return id
	}
	return slug
}

// DisplayName returns the localized name, or the id when unknown.
func (c *Catalog) DisplayName(id string) string {
	if item, ok := c.items[id]; ok && item.Name != "" {
		return item.Name
	}
	return id
}

// Class returns the item class, ClassUnknown for unlisted ids.
func (c *Catalog) Class(id string) ItemClass {
	if item, ok := c.items[id]; ok {
		return item.Class
	}
	return ClassUnknown
}

// ToolCost returns the replacement cost of a returnable tool.
func (c *Catalog) ToolCost(id string) (decimal.Decimal, bool) {
	item, ok := c.items[id]
	if !ok || item.Class != ClassTool || item.ReplacementCost.IsZero() {
		return decimal.Zero, false
	}
	return item.ReplacementCost, true
}

// Items lists every registered item.
func (c *Catalog) Items() []Item {
	out := make([]Item, 0, len(c.items))
	for _, item := range c.items {
		out = append(out, item)
	}
	return out
}

func tokenKey(s string) string {
	return strings.Join(Tokens(s), "_")
}
