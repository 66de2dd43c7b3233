package managers

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/farmledger/internal/catalog"
	"github.com/angelmondragon/farmledger/internal/ledger"
	"github.com/angelmondragon/farmledger/pkg/config"
	"github.com/angelmondragon/farmledger/pkg/enums"
)

// Expectation is a time-boxed obligation created when a manager takes resources out.
// Seeds must come back as plants; animals and boxes as deposits.
type Expectation struct {
	ID                 string                  `json:"id"`
	ManagerID          string                  `json:"managerId"`
	Kind               enums.ExpectationKind   `json:"kind"`
	SourceActivityID   string                  `json:"sourceActivityId"`
	Item               string                  `json:"item"`
	Quantity           int                     `json:"quantity"`
	ExpectedQuantity   int                     `json:"expectedQuantity,omitempty"`
	ExpectedAmount     decimal.Decimal         `json:"expectedAmount"`
	FulfilledQuantity  int                     `json:"fulfilledQuantity"`
	FulfilledAmount    decimal.Decimal         `json:"fulfilledAmount"`
	MatchedActivityIDs []string                `json:"matchedActivityIds,omitempty"`
	CreatedAt          time.Time               `json:"createdAt"`
	Deadline           time.Time               `json:"deadline"`
	Status             enums.ExpectationStatus `json:"status"`
	ResolvedAt         *time.Time              `json:"resolvedAt,omitempty"`
}

// NewExpectation builds the obligation a manager removal creates, false when the item
// creates none.
func NewExpectation(managerID string, a ledger.Activity, items catalog.Lookup, rates config.RatesConfig, window time.Duration) (Expectation, bool) {
	if a.Kind != enums.ActivityKindItemRemove || a.Qty() <= 0 {
		return Expectation{}, false
	}
	exp := Expectation{
		ID:               "exp_" + a.ID,
		ManagerID:        managerID,
		SourceActivityID: a.ID,
		Item:             a.Item,
		Quantity:         a.Qty(),
		ExpectedAmount:   decimal.Zero,
		FulfilledAmount:  decimal.Zero,
		CreatedAt:        a.Timestamp,
		Deadline:         a.Timestamp.Add(window),
		Status:           enums.ExpectationStatusOpen,
	}
	qty := decimal.NewFromInt(int64(a.Qty()))
	switch items.Class(a.Item) {
	case catalog.ClassSeed:
		exp.Kind = enums.ExpectationKindSeeds
		exp.ExpectedQuantity = a.Qty() * rates.PlantsPerSeed
	case catalog.ClassAnimal:
		if rates.AnimalsPerDelivery <= 0 {
			return Expectation{}, false
		}
		exp.Kind = enums.ExpectationKindAnimals
		exp.ExpectedAmount = qty.Mul(rates.AnimalDeliveryValue).Div(decimal.NewFromInt(int64(rates.AnimalsPerDelivery))).Round(2)
	case catalog.ClassBox:
		if rates.BoxesPerDelivery <= 0 {
			return Expectation{}, false
		}
		exp.Kind = enums.ExpectationKindBoxes
		exp.ExpectedAmount = qty.Mul(rates.BoxDeliveryValue).Div(decimal.NewFromInt(int64(rates.BoxesPerDelivery))).Round(2)
	default:
		return Expectation{}, false
	}
	return exp, true
}

type resource struct {
	activity  ledger.Activity
	remaining decimal.Decimal
}

// Reconcile allocates the manager's plant returns and deposits to their expectations,
// oldest obligation first, and settles statuses. Fulfilled and expired statuses are final.
// An expired obligation is only recorded; it never touches the credit balance.
func Reconcile(expectations []Expectation, activities []ledger.Activity, items catalog.Lookup, now time.Time) (fulfilled, expired int) {
	sort.SliceStable(expectations, func(i, j int) bool { return expectations[i].CreatedAt.Before(expectations[j].CreatedAt) })

	var plants, deposits []*resource
	ordered := append([]ledger.Activity(nil), activities...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Timestamp.Before(ordered[j].Timestamp) })
	for _, a := range ordered {
		switch {
		case a.Kind == enums.ActivityKindItemAdd && items.Class(a.Item).IsPlant():
			plants = append(plants, &resource{activity: a, remaining: decimal.NewFromInt(int64(a.Qty()))})
		case a.Kind == enums.ActivityKindDeposit:
			deposits = append(deposits, &resource{activity: a, remaining: a.Value()})
		}
	}

	for i := range expectations {
		exp := &expectations[i]
		exp.FulfilledQuantity = 0
		exp.FulfilledAmount = decimal.Zero
		exp.MatchedActivityIDs = nil

		if exp.Kind == enums.ExpectationKindSeeds {
			crop := strings.TrimSuffix(exp.Item, "_seed")
			matchCrop := crop != exp.Item && items.Class(crop).IsPlant()
			need := decimal.NewFromInt(int64(exp.ExpectedQuantity))
			got := allocate(exp, plants, need, func(a ledger.Activity) bool {
				return !matchCrop || a.Item == crop
			})
			exp.FulfilledQuantity = int(got.IntPart())
		} else {
			exp.FulfilledAmount = allocate(exp, deposits, exp.ExpectedAmount, nil)
		}

		if exp.Status != enums.ExpectationStatusOpen {
			continue
		}
		switch {
		case exp.met():
			exp.Status = enums.ExpectationStatusFulfilled
			resolved := now
			exp.ResolvedAt = &resolved
			fulfilled++
		case now.After(exp.Deadline):
			exp.Status = enums.ExpectationStatusExpired
			resolved := now
			exp.ResolvedAt = &resolved
			expired++
		}
	}
	return fulfilled, expired
}

func (e Expectation) met() bool {
	if e.Kind == enums.ExpectationKindSeeds {
		return e.FulfilledQuantity >= e.ExpectedQuantity
	}
	return e.FulfilledAmount.GreaterThanOrEqual(e.ExpectedAmount)
}

// allocate consumes resources inside the expectation window until need is covered.
func allocate(exp *Expectation, pool []*resource, need decimal.Decimal, accept func(ledger.Activity) bool) decimal.Decimal {
	got := decimal.Zero
	for _, r := range pool {
		if !got.LessThan(need) {
			break
		}
		at := r.activity.Timestamp
		if !at.After(exp.CreatedAt) || at.After(exp.Deadline) || !r.remaining.IsPositive() {
			continue
		}
		if accept != nil && !accept(r.activity) {
			continue
		}
		take := decimal.Min(r.remaining, need.Sub(got))
		r.remaining = r.remaining.Sub(take)
		got = got.Add(take)
		exp.MatchedActivityIDs = append(exp.MatchedActivityIDs, r.activity.ID)
	}
	return got
}
