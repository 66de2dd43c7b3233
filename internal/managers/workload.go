package managers

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/farmledger/internal/catalog"
	"github.com/angelmondragon/farmledger/internal/ledger"
	"github.com/angelmondragon/farmledger/pkg/config"
	"github.com/angelmondragon/farmledger/pkg/enums"
	"github.com/angelmondragon/farmledger/pkg/money"
)

// Snapshot is a manager's point tally since their last payment.
type Snapshot struct {
	ManagerID        string          `json:"managerId"`
	ManagerName      string          `json:"managerName"`
	PlantUnits       int             `json:"plantUnits"`
	AnimalDeliveries int             `json:"animalDeliveries"`
	BoxDeliveries    int             `json:"boxDeliveries"`
	RestockUnits     int             `json:"restockUnits"`
	Plantation       decimal.Decimal `json:"plantation"`
	AnimalDelivery   decimal.Decimal `json:"animalDelivery"`
	BoxDelivery      decimal.Decimal `json:"boxDelivery"`
	Restock          decimal.Decimal `json:"restock"`
	Points           decimal.Decimal `json:"points"`
	Since            *time.Time      `json:"since,omitempty"`
}

// PointsFor returns the bucket total of one service.
func (s Snapshot) PointsFor(service enums.WorkloadService) decimal.Decimal {
	switch service {
	case enums.WorkloadServicePlantation:
		return s.Plantation
	case enums.WorkloadServiceAnimalDelivery:
		return s.AnimalDelivery
	case enums.WorkloadServiceBoxDelivery:
		return s.BoxDelivery
	case enums.WorkloadServiceRestock:
		return s.Restock
	}
	return decimal.Zero
}

// Tally counts workload points over activities strictly after since. Plant returns,
// exact-value animal and box deliveries, and every other item added count.
func Tally(activities []ledger.Activity, since *time.Time, items catalog.Lookup, weights config.ManagerConfig, rates config.RatesConfig) Snapshot {
	snap := Snapshot{Since: since}
	for _, a := range activities {
		if since != nil && !a.Timestamp.After(*since) {
			continue
		}
		switch a.Kind {
		case enums.ActivityKindItemAdd:
			if items.Class(a.Item).IsPlant() {
				snap.PlantUnits += a.Qty()
			} else {
				snap.RestockUnits += a.Qty()
			}
		case enums.ActivityKindDeposit:
			switch {
			case a.Value().Equal(rates.AnimalDeliveryValue):
				snap.AnimalDeliveries++
			case a.Value().Equal(rates.BoxDeliveryValue):
				snap.BoxDeliveries++
			}
		}
	}
	snap.Plantation = weights.PlantUnitPoints.Mul(decimal.NewFromInt(int64(snap.PlantUnits)))
	snap.AnimalDelivery = weights.AnimalDeliveryPoints.Mul(decimal.NewFromInt(int64(snap.AnimalDeliveries)))
	snap.BoxDelivery = weights.BoxDeliveryPoints.Mul(decimal.NewFromInt(int64(snap.BoxDeliveries)))
	snap.Restock = weights.RestockUnitPoints.Mul(decimal.NewFromInt(int64(snap.RestockUnits)))
	snap.Points = snap.Plantation.Add(snap.AnimalDelivery).Add(snap.BoxDelivery).Add(snap.Restock)
	return snap
}

// Share is one manager's candidate payment. It is never applied without an explicit Pay.
type Share struct {
	ManagerID   string          `json:"managerId"`
	ManagerName string          `json:"managerName"`
	Points      decimal.Decimal `json:"points"`
	Fraction    decimal.Decimal `json:"fraction"`
	Amount      decimal.Decimal `json:"amount"`
}

// Distribution splits the payroll pool by point share.
type Distribution struct {
	Balance      decimal.Decimal `json:"balance"`
	BalanceKnown bool            `json:"balanceKnown"`
	Reserve      decimal.Decimal `json:"reserve"`
	Pool         decimal.Decimal `json:"pool"`
	TotalPoints  decimal.Decimal `json:"totalPoints"`
	Shares       []Share         `json:"shares"`
}

// Pool returns max(0, balance - reserve).
func Pool(balance, reserve decimal.Decimal) decimal.Decimal {
	pool := balance.Sub(reserve)
	if pool.IsNegative() {
		return decimal.Zero
	}
	return pool
}

// Distribute proportions the pool across snapshots with points.
func Distribute(snapshots []Snapshot, balance, reserve decimal.Decimal) Distribution {
	dist := Distribution{
		Balance:     balance,
		Reserve:     reserve,
		Pool:        Pool(balance, reserve),
		TotalPoints: decimal.Zero,
		Shares:      []Share{},
	}
	for _, s := range snapshots {
		if s.Points.IsPositive() {
			dist.TotalPoints = dist.TotalPoints.Add(s.Points)
		}
	}
	if !dist.TotalPoints.IsPositive() {
		return dist
	}
	for _, s := range snapshots {
		if !s.Points.IsPositive() {
			continue
		}
		fraction := s.Points.Div(dist.TotalPoints)
		dist.Shares = append(dist.Shares, Share{
			ManagerID:   s.ManagerID,
			ManagerName: s.ManagerName,
			Points:      s.Points,
			Fraction:    fraction.Round(4),
			Amount:      money.Round(dist.Pool.Mul(fraction)),
		})
	}
	sort.SliceStable(dist.Shares, func(i, j int) bool { return dist.Shares[i].Points.GreaterThan(dist.Shares[j].Points) })
	return dist
}
