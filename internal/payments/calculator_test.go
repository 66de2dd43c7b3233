package payments

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/farmledger/internal/catalog"
	"github.com/angelmondragon/farmledger/internal/ledger"
	"github.com/angelmondragon/farmledger/pkg/config"
	"github.com/angelmondragon/farmledger/pkg/enums"
)

var (
	t0    = time.Date(2026, 6, 10, 14, 0, 0, 0, time.UTC)
	items = catalog.Default()
)

func rates() config.RatesConfig {
	return config.Defaults().Rates
}

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func inv(id string, kind enums.ActivityKind, item string, qty int, at time.Time) ledger.Activity {
	return ledger.Activity{ID: id, Kind: kind, Category: enums.ActivityCategoryInventory, Actor: "w1", Item: item, Quantity: &qty, Timestamp: at}
}

func dep(id, amount string, at time.Time) ledger.Activity {
	d := dec(amount)
	return ledger.Activity{ID: id, Kind: enums.ActivityKindDeposit, Category: enums.ActivityCategoryFinancial, Actor: "w1", Amount: &d, Timestamp: at}
}

func TestPlantationWheatScenario(t *testing.T) {
	summary := Plantation([]ledger.Activity{inv("a1", enums.ActivityKindItemAdd, "wheat", 50, t0)}, items, rates())
	assert.True(t, summary.Total.Equal(dec("7.50")), summary.Total.String())
	require.Len(t, summary.Lines, 1)
	assert.Equal(t, "Trigo", summary.Lines[0].Name)
	assert.True(t, summary.Lines[0].UnitPrice.Equal(dec("0.15")))
	assert.Equal(t, []string{"a1"}, summary.ActivityIDs)
}

func TestPlantationTiersAndExclusions(t *testing.T) {
	paid := inv("p", enums.ActivityKindItemAdd, "wheat", 100, t0)
	paid.Paid = true
	activities := []ledger.Activity{
		inv("a", enums.ActivityKindItemAdd, "wheat", 10, t0),
		inv("b", enums.ActivityKindItemAdd, "tomato", 10, t0.Add(time.Minute)),
		inv("c", enums.ActivityKindItemAdd, "wheat", 5, t0.Add(2*time.Minute)),
		inv("seed", enums.ActivityKindItemAdd, "wheat_seed", 100, t0),
		inv("rm", enums.ActivityKindItemRemove, "wheat", 3, t0),
		inv("odd", enums.ActivityKindItemAdd, "diamante", 3, t0),
		paid,
	}
	summary := Plantation(activities, items, rates())
	require.Len(t, summary.Lines, 2)
	assert.Equal(t, "tomato", summary.Lines[0].Item)
	assert.Equal(t, 15, summary.Lines[1].Quantity)
	// 15 × 0.15 + 10 × 0.20
	assert.True(t, summary.Total.Equal(dec("4.25")), summary.Total.String())
	assert.ElementsMatch(t, []string{"a", "b", "c"}, summary.ActivityIDs)
	assert.Equal(t, 25, summary.TotalQuantity)
}

func TestDeliveryFullDeposit(t *testing.T) {
	summary := AnimalDeliveries([]ledger.Activity{dep("d1", "160", t0)}, items, rates())
	require.Len(t, summary.Deliveries, 1)
	d := summary.Deliveries[0]
	assert.True(t, d.Payment.Equal(dec("60")))
	assert.Equal(t, enums.DeliveryStatusComplete, d.Status)
	assert.Empty(t, d.Note)
	assert.Equal(t, 100, d.HonestyScore)
	assert.True(t, summary.Total.Equal(dec("60")))
}

func TestDeliveryHalfDeposit(t *testing.T) {
	summary := AnimalDeliveries([]ledger.Activity{dep("d1", "80", t0)}, items, rates())
	require.Len(t, summary.Deliveries, 1)
	d := summary.Deliveries[0]
	assert.True(t, d.Payment.Equal(dec("30")), d.Payment.String())
	assert.Equal(t, enums.DeliveryStatusIncomplete, d.Status)
	assert.Contains(t, d.Note, "incomplete delivery")
}

func TestDeliveryOverDepositPaysStandard(t *testing.T) {
	assert.True(t, DeliveryPayment(dec("400"), rates()).Equal(dec("60")))
	assert.True(t, DeliveryPayment(dec("40"), rates()).Equal(dec("15")))
}

func TestDeliveryOrphanWithdrawalIsSuspicious(t *testing.T) {
	summary := AnimalDeliveries([]ledger.Activity{
		inv("rm", enums.ActivityKindItemRemove, "chicken", 4, t0),
	}, items, rates())
	require.Len(t, summary.Deliveries, 1)
	d := summary.Deliveries[0]
	assert.Equal(t, enums.DeliveryStatusSuspicious, d.Status)
	assert.Equal(t, NoteOrphanWithdrawal, d.Note)
	assert.Equal(t, 0, d.HonestyScore)
	assert.True(t, d.Payment.IsZero())
	assert.Equal(t, 4, d.NetAnimals())
	assert.Equal(t, 1, summary.Suspicious)
	assert.True(t, summary.Total.IsZero())
}

func TestDeliveryReturnedAnimalsAreNotOrphans(t *testing.T) {
	summary := AnimalDeliveries([]ledger.Activity{
		inv("rm", enums.ActivityKindItemRemove, "chicken", 4, t0),
		inv("back", enums.ActivityKindItemAdd, "chicken", 4, t0.Add(time.Minute)),
	}, items, rates())
	assert.Empty(t, summary.Deliveries)
}

func TestDeliveryWindowsAndHonesty(t *testing.T) {
	r := rates()
	activities := []ledger.Activity{
		inv("an1", enums.ActivityKindItemRemove, "chicken", 4, t0.Add(-time.Hour)),
		inv("fd1", enums.ActivityKindItemRemove, "animal_feed", 8, t0.Add(-time.Hour)),
		dep("d1", "160", t0),
		// second cycle: took 8 animals but deposited for 4
		inv("an2", enums.ActivityKindItemRemove, "cow", 8, t0.Add(time.Hour)),
		dep("d2", "160", t0.Add(2*time.Hour)),
		// lookahead return after d2
		inv("fd2", enums.ActivityKindItemAdd, "animal_feed", 2, t0.Add(2*time.Hour+5*time.Minute)),
		// too old for d1's lookback
		inv("old", enums.ActivityKindItemRemove, "animal_feed", 1, t0.Add(-5*time.Hour)),
	}
	summary := AnimalDeliveries(activities, items, r)
	require.Len(t, summary.Deliveries, 2)

	first := summary.Deliveries[0]
	assert.Equal(t, 4, first.AnimalsRemoved)
	assert.Equal(t, 8, first.FeedRemoved)
	assert.Equal(t, 100, first.HonestyScore)

	second := summary.Deliveries[1]
	assert.Equal(t, 8, second.AnimalsRemoved)
	assert.Equal(t, 2, second.FeedReturned)
	// animals 4/8 covered, feed fully covered: 0.7×0.5 + 0.3
	assert.Equal(t, 65, second.HonestyScore)
	assert.ElementsMatch(t, []string{"an2", "fd2"}, second.MovementIDs)

	assert.True(t, summary.Total.Equal(dec("120")))
	assert.Equal(t, []string{"d1", "d2"}, summary.ActivityIDs)
}

func TestDeliverySameSecondDuplicatesCollapse(t *testing.T) {
	summary := AnimalDeliveries([]ledger.Activity{
		dep("d1", "160", t0),
		dep("d2", "160", t0.Add(300*time.Millisecond)),
		dep("d3", "160", t0.Add(time.Minute)),
	}, items, rates())
	require.Len(t, summary.Deliveries, 2)
	assert.Equal(t, []string{"d2"}, summary.Deliveries[0].DuplicateIDs)
	assert.True(t, summary.Total.Equal(dec("120")))
	assert.ElementsMatch(t, []string{"d1", "d2", "d3"}, summary.ActivityIDs)
}

func TestDeliveryPaidDepositsBoundWindowsButAreNotReported(t *testing.T) {
	paid := dep("d1", "160", t0)
	paid.Paid = true
	summary := AnimalDeliveries([]ledger.Activity{
		paid,
		inv("an", enums.ActivityKindItemRemove, "pig", 4, t0.Add(30*time.Minute)),
		dep("d2", "160", t0.Add(3*time.Hour)),
	}, items, rates())
	require.Len(t, summary.Deliveries, 1)
	assert.Equal(t, "d2", summary.Deliveries[0].ActivityID)
	assert.Equal(t, 4, summary.Deliveries[0].AnimalsRemoved)
}
