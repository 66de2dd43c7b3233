// Package classifier turns parser candidates into ledger activities: it assigns the category,
// canonicalizes the item and attributes the actor to a worker profile.
package classifier

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/farmledger/internal/catalog"
	"github.com/angelmondragon/farmledger/internal/ledger"
	"github.com/angelmondragon/farmledger/internal/parser"
	"github.com/angelmondragon/farmledger/internal/workers"
	"github.com/angelmondragon/farmledger/pkg/enums"
	pkgerrors "github.com/angelmondragon/farmledger/pkg/errors"
	"github.com/angelmondragon/farmledger/pkg/money"
)

// IDPrefix prefixes activity ids derived from source record ids.
const IDPrefix = "act_"

// Classifier resolves candidates against a fixed profile snapshot.
type Classifier struct {
	items    catalog.Canonicalizer
	profiles []workers.Profile
}

// New builds a classifier. profiles may be empty; every actor then stays unattributed.
func New(items catalog.Canonicalizer, profiles []workers.Profile) (*Classifier, error) {
	if items == nil {
		return nil, fmt.Errorf("item canonicalizer required")
	}
	return &Classifier{items: items, profiles: profiles}, nil
}

// Classify maps a candidate onto an Activity. The returned tier is TierNone when the author
// matched no profile; the activity is still usable and keeps the raw name for audit.
func (c *Classifier) Classify(candidate parser.Candidate) (ledger.Activity, workers.Tier, error) {
	if !candidate.Kind.IsValid() {
		return ledger.Activity{}, workers.TierNone, pkgerrors.Newf(pkgerrors.CodeParseFailure, "unknown action %q", candidate.Kind)
	}

	activity := ledger.Activity{
		ID:        activityID(candidate.SourceID),
		SourceID:  candidate.SourceID,
		Kind:      candidate.Kind,
		Category:  candidate.Kind.Category(),
		ActorName: strings.TrimSpace(candidate.RawActor),
		AccountID: candidate.ActorAccountID,
		Timestamp: candidate.Timestamp.UTC(),
	}

	switch activity.Category {
	case enums.ActivityCategoryInventory:
		qty, err := parser.ParseQuantity(candidate.RawQuantity)
		if err != nil || qty < 0 {
			return ledger.Activity{}, workers.TierNone, pkgerrors.Newf(pkgerrors.CodeParseFailure, "invalid quantity %q", candidate.RawQuantity)
		}
		item := c.items.Canonical(candidate.RawItem)
		if item == "" {
			return ledger.Activity{}, workers.TierNone, pkgerrors.New(pkgerrors.CodeParseFailure, "missing item")
		}
		activity.Item = item
		activity.Quantity = &qty
	case enums.ActivityCategoryFinancial:
		amount, ok := money.Parse(candidate.RawAmount)
		if !ok {
			return ledger.Activity{}, workers.TierNone, pkgerrors.Newf(pkgerrors.CodeParseFailure, "invalid amount %q", candidate.RawAmount)
		}
		activity.Amount = &amount
		if candidate.RawBalanceAfter != "" {
			if balance, ok := money.Parse(candidate.RawBalanceAfter); ok {
				activity.BalanceAfter = &balance
			}
		}
	}

	profile, tier, ok := workers.Match(candidate.RawActor, candidate.ActorAccountID, c.profiles)
	switch {
	case ok:
		activity.Actor = profile.ID
	case candidate.ActorAccountID != "":
		activity.Actor = candidate.ActorAccountID
	default:
		activity.Actor = activity.ActorName
	}
	return activity, tier, nil
}

func activityID(sourceID string) string {
	sourceID = strings.TrimSpace(sourceID)
	if sourceID == "" {
		return IDPrefix + uuid.NewString()
	}
	return IDPrefix + sourceID
}
