package ledger

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/farmledger/pkg/enums"
)

// Activity is one canonical fact extracted from a chat-log record.
type Activity struct {
	ID       string                 `json:"id"`
	SourceID string                 `json:"sourceId,omitempty"`
	Kind     enums.ActivityKind     `json:"kind"`
	Category enums.ActivityCategory `json:"category"`
	// Actor is the resolved profile id, else the account id, else the raw display name.
	Actor        string           `json:"actor"`
	ActorName    string           `json:"actorName,omitempty"`
	AccountID    string           `json:"accountId,omitempty"`
	Item         string           `json:"item,omitempty"`
	Quantity     *int             `json:"quantity,omitempty"`
	Amount       *decimal.Decimal `json:"amount,omitempty"`
	BalanceAfter *decimal.Decimal `json:"balanceAfter,omitempty"`
	Timestamp    time.Time        `json:"timestamp"`
	Paid         bool             `json:"paid"`
	PaidAt       *time.Time       `json:"paidAt,omitempty"`
}

// Qty returns the quantity or zero for financial activities.
func (a Activity) Qty() int {
	if a.Quantity == nil {
		return 0
	}
	return *a.Quantity
}

// Value returns the amount or zero for inventory activities.
func (a Activity) Value() decimal.Decimal {
	if a.Amount == nil {
		return decimal.Zero
	}
	return *a.Amount
}

// DedupKey identifies an activity by (kind, item, quantity, amount, actor, timestamp).
func (a Activity) DedupKey() string {
	amount := ""
	if a.Amount != nil {
		amount = a.Amount.String()
	}
	qty := ""
	if a.Quantity != nil {
		qty = decimal.NewFromInt(int64(*a.Quantity)).String()
	}
	return strings.Join([]string{
		string(a.Kind),
		a.Item,
		qty,
		amount,
		strings.ToLower(a.Actor),
		a.Timestamp.UTC().Format(time.RFC3339Nano),
	}, "|")
}

// Filter selects activities. Zero fields match everything.
type Filter struct {
	Kinds []enums.ActivityKind
	// Actors match case-insensitively against Actor, ActorName and AccountID.
	Actors     []string
	Item       string
	UnpaidOnly bool
	Since      time.Time
	Until      time.Time
}

// Match reports whether a satisfies every set criterion. Since is exclusive, Until inclusive.
func (f Filter) Match(a Activity) bool {
	if len(f.Kinds) > 0 {
		found := false
		for _, k := range f.Kinds {
			if a.Kind == k {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(f.Actors) > 0 && !actorIn(a, f.Actors) {
		return false
	}
	if f.Item != "" && a.Item != f.Item {
		return false
	}
	if f.UnpaidOnly && a.Paid {
		return false
	}
	if !f.Since.IsZero() && !a.Timestamp.After(f.Since) {
		return false
	}
	if !f.Until.IsZero() && a.Timestamp.After(f.Until) {
		return false
	}
	return true
}

func actorIn(a Activity, actors []string) bool {
	for _, actor := range actors {
		actor = strings.TrimSpace(actor)
		if actor == "" {
			continue
		}
		if strings.EqualFold(a.Actor, actor) || strings.EqualFold(a.ActorName, actor) ||
			(a.AccountID != "" && a.AccountID == actor) {
			return true
		}
	}
	return false
}
