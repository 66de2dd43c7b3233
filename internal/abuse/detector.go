// Package abuse derives inventory abuse and theft charges from a worker's activity history.
// Findings are recomputed on every request; only the accept/ignore decisions are stored.
package abuse

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/farmledger/internal/catalog"
	"github.com/angelmondragon/farmledger/internal/ledger"
	"github.com/angelmondragon/farmledger/pkg/config"
	"github.com/angelmondragon/farmledger/pkg/enums"
	"github.com/angelmondragon/farmledger/pkg/money"
)

// Finding is one charge raised against a worker.
type Finding struct {
	Category   enums.AbuseCategory `json:"category"`
	WorkerID   string              `json:"workerId"`
	Item       string              `json:"item"`
	Name       string              `json:"name"`
	Quantity   int                 `json:"quantity"`
	UnitCharge decimal.Decimal     `json:"unitCharge"`
	Charge     decimal.Decimal     `json:"charge"`
	Theft      bool                `json:"theft,omitempty"`
	Ignored    bool                `json:"ignored,omitempty"`
}

// Detection is the pure result over an activity set, before decisions and earnings apply.
type Detection struct {
	Findings        []Finding `json:"findings"`
	Violations      []string  `json:"violations"`
	Deliveries      int       `json:"deliveries"`
	AnimalsExpected int       `json:"animalsExpected"`
	AnimalsTaken    int       `json:"animalsTaken"`
	FeedExpected    int       `json:"feedExpected"`
	FeedTaken       int       `json:"feedTaken"`
}

type netCount struct {
	removed, returned int
}

func (n netCount) net() int { return n.removed - n.returned }

// Detect classifies every item the worker moved and computes the charges.
func Detect(workerID string, activities []ledger.Activity, items catalog.Lookup, rules config.AbuseConfig, rates config.RatesConfig) Detection {
	perItem := map[string]*netCount{}
	var animals, feed netCount
	depositSeconds := map[int64]struct{}{}

	for _, a := range activities {
		switch a.Kind {
		case enums.ActivityKindDeposit:
			depositSeconds[a.Timestamp.Truncate(time.Second).Unix()] = struct{}{}
			continue
		case enums.ActivityKindItemRemove, enums.ActivityKindItemAdd:
		default:
			continue
		}
		n, ok := perItem[a.Item]
		if !ok {
			n = &netCount{}
			perItem[a.Item] = n
		}
		var bucket *netCount
		switch items.Class(a.Item) {
		case catalog.ClassAnimal:
			bucket = &animals
		case catalog.ClassFeed:
			bucket = &feed
		}
		if a.Kind == enums.ActivityKindItemRemove {
			n.removed += a.Qty()
			if bucket != nil {
				bucket.removed += a.Qty()
			}
		} else {
			n.returned += a.Qty()
			if bucket != nil {
				bucket.returned += a.Qty()
			}
		}
	}

	ids := make([]string, 0, len(perItem))
	for id := range perItem {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	det := Detection{Findings: []Finding{}, Violations: []string{}}
	for _, id := range ids {
		net := perItem[id].net()
		if net <= 0 {
			continue
		}
		switch items.Class(id) {
		case catalog.ClassUnknown:
			det.Findings = append(det.Findings, finding(workerID, enums.AbuseCategorySuspiciousItem, id, items, net, rules.SuspiciousItemCharge, false))
		case catalog.ClassTool:
			cost, ok := items.ToolCost(id)
			if !ok {
				cost = rules.DefaultToolCost
			}
			det.Findings = append(det.Findings, finding(workerID, enums.AbuseCategoryUnreturnedTool, id, items, net, cost, false))
		}
	}

	det.Deliveries = len(depositSeconds)
	det.AnimalsExpected = det.Deliveries * rates.AnimalsPerDelivery
	det.FeedExpected = det.Deliveries * rates.FeedPerDelivery
	det.AnimalsTaken = animals.net()
	det.FeedTaken = feed.net()

	if short := det.AnimalsTaken - det.AnimalsExpected; short > 0 {
		f := finding(workerID, enums.AbuseCategoryUndeliveredAnimal, "animals", nil, short, rules.AnimalTheftRate, true)
		det.Findings = append(det.Findings, f)
		det.Violations = append(det.Violations, fmt.Sprintf(
			"theft: %d animals taken, %d expected from %d deliveries; %d undelivered charged %s",
			det.AnimalsTaken, det.AnimalsExpected, det.Deliveries, short, money.Format(f.Charge)))
	}

	if short := det.FeedTaken - det.FeedExpected; short > 0 {
		f := finding(workerID, enums.AbuseCategoryExcessConsumption, "animal_feed", items, short, rules.FeedTheftRate, true)
		det.Findings = append(det.Findings, f)
		det.Violations = append(det.Violations, fmt.Sprintf(
			"theft: %d feed taken, %d expected from %d deliveries; %d undelivered charged %s",
			det.FeedTaken, det.FeedExpected, det.Deliveries, short, money.Format(f.Charge)))
		// Consumption past the reasonable cap also draws the excess charge.
		if over := short - rules.FeedTolerance; over > 0 {
			det.Findings = append(det.Findings, finding(workerID, enums.AbuseCategoryExcessConsumption, "animal_feed", items, over, rules.ExcessFeedRate, false))
		}
	}
	return det
}

func finding(workerID string, category enums.AbuseCategory, item string, items catalog.Lookup, qty int, unit decimal.Decimal, theft bool) Finding {
	name := item
	if items != nil {
		name = items.DisplayName(item)
	}
	return Finding{
		Category:   category,
		WorkerID:   workerID,
		Item:       item,
		Name:       name,
		Quantity:   qty,
		UnitCharge: unit,
		Charge:     money.Round(unit.Mul(decimal.NewFromInt(int64(qty)))),
		Theft:      theft,
	}
}
