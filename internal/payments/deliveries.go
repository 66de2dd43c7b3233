package payments

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

// NoteOrphanWithdrawal marks animals taken out with no deposit to show for them.
const NoteOrphanWithdrawal = "suspicious: delivery without withdrawal/deposit"

const (
	animalWeight = 0.7
	feedWeight   = 0.3
)

// Delivery is one deposit treated as the close of an animal-selling cycle, annotated with
// the animal and feed movements found in its window.
type Delivery struct {
	ActivityID      string               `json:"activityId,omitempty"`
	Timestamp       time.Time            `json:"timestamp"`
	Deposit         decimal.Decimal      `json:"deposit"`
	Payment         decimal.Decimal      `json:"payment"`
	Status          enums.DeliveryStatus `json:"status"`
	Note            string               `json:"note,omitempty"`
	AnimalsRemoved  int                  `json:"animalsRemoved"`
	AnimalsReturned int                  `json:"animalsReturned"`
	FeedRemoved     int                  `json:"feedRemoved"`
	FeedReturned    int                  `json:"feedReturned"`
	HonestyScore    int                  `json:"honestyScore"`
	MovementIDs     []string             `json:"movementIds,omitempty"`
	DuplicateIDs    []string             `json:"duplicateIds,omitempty"`
}

// NetAnimals is animals removed minus returned.
func (d Delivery) NetAnimals() int { return d.AnimalsRemoved - d.AnimalsReturned }

// NetFeed is feed removed minus returned.
func (d Delivery) NetFeed() int { return d.FeedRemoved - d.FeedReturned }

// DeliverySummary is what a worker is owed for unpaid deliveries.
type DeliverySummary struct {
	Deliveries  []Delivery      `json:"deliveries"`
	ActivityIDs []string        `json:"activityIds"`
	Suspicious  int             `json:"suspicious"`
	Total       decimal.Decimal `json:"total"`
}

// AnimalDeliveries evaluates a worker's deposits. Every deposit counts as a delivery; a
// deposit in the same second as an earlier one is a duplicate. Paid deposits still bound
// the movement windows but are not reported.
func AnimalDeliveries(activities []ledger.Activity, items catalog.Lookup, rates config.RatesConfig) DeliverySummary {
	var deposits, movements []ledger.Activity
	for _, a := range activities {
		switch {
		case a.Kind == enums.ActivityKindDeposit:
			deposits = append(deposits, a)
		case a.Kind.Category() == enums.ActivityCategoryInventory:
			class := items.Class(a.Item)
			if class == catalog.ClassAnimal || class == catalog.ClassFeed {
				movements = append(movements, a)
			}
		}
	}
	sortOldestFirst(deposits)
	sortOldestFirst(movements)

	var deliveries []Delivery
	var paid []bool
	for _, dep := range deposits {
		sec := dep.Timestamp.Truncate(time.Second)
		if n := len(deliveries); n > 0 && deliveries[n-1].Timestamp.Truncate(time.Second).Equal(sec) {
			if !dep.Paid {
				deliveries[n-1].DuplicateIDs = append(deliveries[n-1].DuplicateIDs, dep.ID)
			}
			continue
		}
		deliveries = append(deliveries, Delivery{ActivityID: dep.ID, Timestamp: dep.Timestamp, Deposit: dep.Value()})
		paid = append(paid, dep.Paid)
	}

	used := make([]bool, len(movements))
	for i := range deliveries {
		d := &deliveries[i]
		start := d.Timestamp.Add(-rates.DeliveryLookback)
		if i > 0 {
			start = deliveries[i-1].Timestamp
		}
		end := d.Timestamp.Add(rates.DeliveryLookahead)
		for j, m := range movements {
			if used[j] || !m.Timestamp.After(start) || m.Timestamp.After(end) {
				continue
			}
			used[j] = true
			d.MovementIDs = append(d.MovementIDs, m.ID)
			tally(d, m, items)
		}
		settle(d, rates)
	}

	var summary DeliverySummary
	total := decimal.Zero
	for i, d := range deliveries {
		if paid[i] {
			continue
		}
		summary.Deliveries = append(summary.Deliveries, d)
		summary.ActivityIDs = append(summary.ActivityIDs, d.ActivityID)
		summary.ActivityIDs = append(summary.ActivityIDs, d.DuplicateIDs...)
		total = total.Add(d.Payment)
	}

	if orphan, ok := orphanDelivery(movements, used, items); ok {
		summary.Deliveries = append(summary.Deliveries, orphan)
		summary.ActivityIDs = append(summary.ActivityIDs, orphan.MovementIDs...)
		summary.Suspicious++
	}
	summary.Total = money.Round(total)
	return summary
}

// DeliveryPayment scales the standard payment by how much of the expected deposit arrived.
func DeliveryPayment(deposit decimal.Decimal, rates config.RatesConfig) decimal.Decimal {
	expected := rates.AnimalDeliveryValue
	if !expected.IsPositive() || deposit.GreaterThanOrEqual(expected) {
		return rates.AnimalDeliveryPayment
	}
	return money.Round(deposit.Div(expected).Mul(rates.AnimalDeliveryPayment))
}

func settle(d *Delivery, rates config.RatesConfig) {
	d.Payment = DeliveryPayment(d.Deposit, rates)
	d.Status = enums.DeliveryStatusComplete
	if d.Deposit.LessThan(rates.AnimalDeliveryValue) {
		d.Status = enums.DeliveryStatusIncomplete
		d.Note = fmt.Sprintf("incomplete delivery: deposit %s of %s expected",
			money.Format(d.Deposit), money.Format(rates.AnimalDeliveryValue))
	}
	d.HonestyScore = honesty(*d, rates)
}

// honesty weighs how much of the net animals and feed taken the deposit accounts for.
func honesty(d Delivery, rates config.RatesConfig) int {
	share := decimal.NewFromInt(1)
	if rates.AnimalDeliveryValue.IsPositive() {
		share = d.Deposit.Div(rates.AnimalDeliveryValue)
	}
	animal := coverage(share.Mul(decimal.NewFromInt(int64(rates.AnimalsPerDelivery))), d.NetAnimals())
	feed := coverage(share.Mul(decimal.NewFromInt(int64(rates.FeedPerDelivery))), d.NetFeed())
	score := animal.Mul(decimal.NewFromFloat(animalWeight)).Add(feed.Mul(decimal.NewFromFloat(feedWeight)))
	return int(score.Mul(decimal.NewFromInt(100)).Round(0).IntPart())
}

func coverage(accounted decimal.Decimal, net int) decimal.Decimal {
	if net <= 0 {
		return decimal.NewFromInt(1)
	}
	ratio := accounted.Div(decimal.NewFromInt(int64(net)))
	if ratio.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.NewFromInt(1)
	}
	return ratio
}

func tally(d *Delivery, m ledger.Activity, items catalog.Lookup) {
	removed := m.Kind == enums.ActivityKindItemRemove
	switch items.Class(m.Item) {
	case catalog.ClassAnimal:
		if removed {
			d.AnimalsRemoved += m.Qty()
		} else {
			d.AnimalsReturned += m.Qty()
		}
	case catalog.ClassFeed:
		if removed {
			d.FeedRemoved += m.Qty()
		} else {
			d.FeedReturned += m.Qty()
		}
	}
}

// orphanDelivery gathers unpaid movements outside every delivery window. Animals left out
// with nothing deposited become one suspicious pseudo-delivery.
func orphanDelivery(movements []ledger.Activity, used []bool, items catalog.Lookup) (Delivery, bool) {
	var d Delivery
	for j, m := range movements {
		if used[j] || m.Paid {
			continue
		}
		tally(&d, m, items)
		d.MovementIDs = append(d.MovementIDs, m.ID)
		if m.Timestamp.After(d.Timestamp) {
			d.Timestamp = m.Timestamp
		}
	}
	if d.NetAnimals() <= 0 {
		return Delivery{}, false
	}
	d.Deposit = decimal.Zero
	d.Payment = decimal.Zero
	d.Status = enums.DeliveryStatusSuspicious
	d.Note = NoteOrphanWithdrawal
	d.HonestyScore = 0
	return d, true
}

func sortOldestFirst(activities []ledger.Activity) {
	sort.SliceStable(activities, func(i, j int) bool {
		return activities[i].Timestamp.Before(activities[j].Timestamp)
	})
}
