package payments

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/farmledger/internal/catalog"
	"github.com/angelmondragon/farmledger/internal/ledger"
	"github.com/angelmondragon/farmledger/pkg/config"
	"github.com/angelmondragon/farmledger/pkg/enums"
	"github.com/angelmondragon/farmledger/pkg/money"
)

// PlantationLine is one item of a plantation settlement.
type PlantationLine struct {
	Item      string            `json:"item"`
	Name      string            `json:"name"`
	Class     catalog.ItemClass `json:"class"`
	Quantity  int               `json:"quantity"`
	UnitPrice decimal.Decimal   `json:"unitPrice"`
	Total     decimal.Decimal   `json:"total"`
}

// PlantationSummary is what a worker is owed for returned plants.
type PlantationSummary struct {
	Lines         []PlantationLine `json:"lines"`
	ActivityIDs   []string         `json:"activityIds"`
	TotalQuantity int              `json:"totalQuantity"`
	Total         decimal.Decimal  `json:"total"`
}

// UnitPrice returns the tier price of a plant class, false for anything that is not a plant.
func UnitPrice(class catalog.ItemClass, rates config.RatesConfig) (decimal.Decimal, bool) {
	switch class {
	case catalog.ClassMainCrop:
		return rates.MainCropPrice, true
	case catalog.ClassSpecialtyCrop:
		return rates.SpecialtyCropPrice, true
	}
	return decimal.Zero, false
}

// Plantation prices every unpaid plant return (seeds excluded) and groups it by item.
func Plantation(activities []ledger.Activity, items catalog.Lookup, rates config.RatesConfig) PlantationSummary {
	byItem := map[string]*PlantationLine{}
	var summary PlantationSummary
	for _, a := range activities {
		if a.Kind != enums.ActivityKindItemAdd || a.Paid || a.Qty() <= 0 {
			continue
		}
		class := items.Class(a.Item)
		price, ok := UnitPrice(class, rates)
		if !ok {
			continue
		}
		line, exists := byItem[a.Item]
		if !exists {
			line = &PlantationLine{Item: a.Item, Name: items.DisplayName(a.Item), Class: class, UnitPrice: price}
			byItem[a.Item] = line
		}
		line.Quantity += a.Qty()
		summary.TotalQuantity += a.Qty()
		summary.ActivityIDs = append(summary.ActivityIDs, a.ID)
	}

	for _, line := range byItem {
		line.Total = money.Round(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
		summary.Lines = append(summary.Lines, *line)
	}
	sort.Slice(summary.Lines, func(i, j int) bool { return summary.Lines[i].Item < summary.Lines[j].Item })

	total := decimal.Zero
	for _, line := range summary.Lines {
		total = total.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	summary.Total = money.Round(total)
	return summary
}
