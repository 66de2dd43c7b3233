package ledger

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/angelmondragon/farmledger/pkg/enums"
)

// Document is the canonical ledger document.
type Document struct {
	Activities  []Activity `json:"activities"`
	Summary     Summary    `json:"summary"`
	LastUpdated time.Time  `json:"lastUpdated"`
}

// Summary holds the counters recomputed on every mutation.
type Summary struct {
	Total  int                        `json:"total"`
	ByKind map[enums.ActivityKind]int `json:"byKind"`
	Actors []string                   `json:"actors"`
	Unpaid int                        `json:"unpaid"`
}

// LegacyDocument is the three-array on-disk form older deployments wrote.
type LegacyDocument struct {
	FarmActivities        []Activity `json:"farm_activities"`
	FinancialTransactions []Activity `json:"financial_transactions"`
	InventoryChanges      []Activity `json:"inventory_changes"`
	LastUpdated           time.Time  `json:"lastUpdated"`
}

// ToLegacy projects the canonical document onto the three-array form. farm_activities
// carries everything; the other two split by category.
func ToLegacy(doc Document) LegacyDocument {
	out := LegacyDocument{
		FarmActivities:        make([]Activity, 0, len(doc.Activities)),
		FinancialTransactions: []Activity{},
		InventoryChanges:      []Activity{},
		LastUpdated:           doc.LastUpdated,
	}
	for _, a := range doc.Activities {
		out.FarmActivities = append(out.FarmActivities, a)
		switch a.Kind.Category() {
		case enums.ActivityCategoryFinancial:
			out.FinancialTransactions = append(out.FinancialTransactions, a)
		case enums.ActivityCategoryInventory:
			out.InventoryChanges = append(out.InventoryChanges, a)
		}
	}
	return out
}

// FromLegacy merges the three arrays into one timestamp-descending list, keeping the first
// copy of each id.
func FromLegacy(legacy LegacyDocument) Document {
	seen := map[string]struct{}{}
	var merged []Activity
	for _, group := range [][]Activity{legacy.FarmActivities, legacy.FinancialTransactions, legacy.InventoryChanges} {
		for _, a := range group {
			if _, dup := seen[a.ID]; dup {
				continue
			}
			seen[a.ID] = struct{}{}
			if a.Category == "" {
				a.Category = a.Kind.Category()
			}
			merged = append(merged, a)
		}
	}
	sortNewestFirst(merged)
	doc := Document{Activities: merged, LastUpdated: legacy.LastUpdated}
	doc.Summary = summarize(merged)
	return doc
}

// UnmarshalJSON accepts the canonical shape and the legacy three-array shape.
func (d *Document) UnmarshalJSON(body []byte) error {
	var probe struct {
		Activities  *[]Activity `json:"activities"`
		LastUpdated time.Time   `json:"lastUpdated"`
		LegacyDocument
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return err
	}
	if probe.Activities == nil {
		legacy := probe.LegacyDocument
		legacy.LastUpdated = probe.LastUpdated
		*d = FromLegacy(legacy)
		return nil
	}
	activities := *probe.Activities
	sortNewestFirst(activities)
	*d = Document{Activities: activities, LastUpdated: probe.LastUpdated}
	d.Summary = summarize(activities)
	return nil
}

func sortNewestFirst(activities []Activity) {
	sort.SliceStable(activities, func(i, j int) bool {
		return activities[i].Timestamp.After(activities[j].Timestamp)
	})
}

func summarize(activities []Activity) Summary {
	s := Summary{ByKind: map[enums.ActivityKind]int{}, Actors: []string{}}
	actors := map[string]struct{}{}
	for _, a := range activities {
		s.Total++
		s.ByKind[a.Kind]++
		if !a.Paid {
			s.Unpaid++
		}
		if a.Actor != "" {
			actors[a.Actor] = struct{}{}
		}
	}
	for actor := range actors {
		s.Actors = append(s.Actors, actor)
	}
	sort.Strings(s.Actors)
	return s
}
