// Package ledger stores the deduplicated, append-only activity history and the counters
// derived from it.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/farmledger/pkg/enums"
	pkgerrors "github.com/angelmondragon/farmledger/pkg/errors"
	"github.com/angelmondragon/farmledger/pkg/pagination"
)

// DefaultMaxActivities caps the retained history when no limit is configured.
const DefaultMaxActivities = 5000

// Service defines the ledger operations. Callers hold the single-writer discipline; the
// service does no locking of its own.
type Service interface {
	Append(ctx context.Context, activity Activity) (bool, error)
	AppendBatch(ctx context.Context, activities []Activity) (AppendResult, error)
	Get(ctx context.Context, id string) (*Activity, error)
	Query(ctx context.Context, filter Filter, page pagination.Params) (*QueryResult, error)
	ForActor(ctx context.Context, actors ...string) ([]Activity, error)
	MarkPaid(ctx context.Context, ids []string) (int, error)
	MarkUnpaid(ctx context.Context, ids []string) (int, error)
	Remove(ctx context.Context, ids []string) (int, error)
	Summary(ctx context.Context) (Summary, error)
	CurrentBalance(ctx context.Context) (decimal.Decimal, bool, error)
	Legacy(ctx context.Context) (LegacyDocument, error)
}

// ServiceParams configure the ledger service.
type ServiceParams struct {
	Repository    Repository
	MaxActivities int
}

// AppendResult counts what a batch append did. Stored and StoredIDs cover only activities
// still retained after pruning; new activities that fell outside the cap are in PrunedIDs.
type AppendResult struct {
	Stored     int      `json:"stored"`
	Duplicates int      `json:"duplicates"`
	StoredIDs  []string `json:"storedIds"`
	Pruned     int      `json:"pruned"`
	PrunedIDs  []string `json:"prunedIds,omitempty"`
}

// QueryResult is one timestamp-descending page.
type QueryResult struct {
	Activities []Activity      `json:"activities"`
	Page       pagination.Page `json:"page"`
}

type service struct {
	repo          Repository
	maxActivities int
	now           func() time.Time
}

// NewService wires a ledger service with the provided repository.
func NewService(params ServiceParams) (Service, error) {
	if params.Repository == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	limit := params.MaxActivities
	if limit <= 0 {
		limit = DefaultMaxActivities
	}
	return &service{repo: params.Repository, maxActivities: limit, now: time.Now}, nil
}

func (s *service) Append(ctx context.Context, activity Activity) (bool, error) {
	res, err := s.AppendBatch(ctx, []Activity{activity})
	if err != nil {
		return false, err
	}
	return res.Stored == 1, nil
}

// AppendBatch stores every non-duplicate activity with one load and one save.
func (s *service) AppendBatch(ctx context.Context, activities []Activity) (AppendResult, error) {
	var res AppendResult
	for _, a := range activities {
		if err := validateActivity(a); err != nil {
			return res, err
		}
	}

	doc, err := s.repo.Load(ctx)
	if err != nil {
		return res, err
	}
	ids := make(map[string]struct{}, len(doc.Activities))
	keys := make(map[string]struct{}, len(doc.Activities))
	for _, a := range doc.Activities {
		ids[a.ID] = struct{}{}
		keys[a.DedupKey()] = struct{}{}
	}

	for _, a := range activities {
		key := a.DedupKey()
		_, dupID := ids[a.ID]
		_, dupKey := keys[key]
		if dupID || dupKey {
			res.Duplicates++
			continue
		}
		a.Category = a.Kind.Category()
		a.Paid = false
		a.PaidAt = nil
		ids[a.ID] = struct{}{}
		keys[key] = struct{}{}
		doc.Activities = append(doc.Activities, a)
		res.Stored++
		res.StoredIDs = append(res.StoredIDs, a.ID)
	}
	if res.Stored == 0 {
		return res, nil
	}

	sortNewestFirst(doc.Activities)
	if len(doc.Activities) > s.maxActivities {
		res.Pruned = len(doc.Activities) - s.maxActivities
		dropped := make(map[string]struct{}, res.Pruned)
		for _, a := range doc.Activities[s.maxActivities:] {
			dropped[a.ID] = struct{}{}
		}
		doc.Activities = doc.Activities[:s.maxActivities]

		kept := res.StoredIDs[:0]
		for _, id := range res.StoredIDs {
			if _, gone := dropped[id]; gone {
				res.PrunedIDs = append(res.PrunedIDs, id)
				continue
			}
			kept = append(kept, id)
		}
		res.StoredIDs = kept
		res.Stored = len(kept)
	}
	if err := s.save(ctx, doc); err != nil {
		return res, err
	}
	return res, nil
}

func (s *service) Get(ctx context.Context, id string) (*Activity, error) {
	doc, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range doc.Activities {
		if doc.Activities[i].ID == id {
			a := doc.Activities[i]
			return &a, nil
		}
	}
	return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "activity %q not found", id)
}

func (s *service) Query(ctx context.Context, filter Filter, page pagination.Params) (*QueryResult, error) {
	doc, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	var matched []Activity
	for _, a := range doc.Activities {
		if filter.Match(a) {
			matched = append(matched, a)
		}
	}
	start, end, info := page.Window(len(matched))
	return &QueryResult{Activities: append([]Activity{}, matched[start:end]...), Page: info}, nil
}

// ForActor returns every activity attributed to any of the given identities, newest first.
func (s *service) ForActor(ctx context.Context, actors ...string) ([]Activity, error) {
	doc, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	filter := Filter{Actors: actors}
	var out []Activity
	for _, a := range doc.Activities {
		if filter.Match(a) {
			out = append(out, a)
		}
	}
	return out, nil
}

// MarkPaid flags the given activities paid. Already-paid activities keep their paidAt.
func (s *service) MarkPaid(ctx context.Context, ids []string) (int, error) {
	now := s.now().UTC()
	return s.mutate(ctx, ids, func(a *Activity) bool {
		if a.Paid {
			return false
		}
		a.Paid = true
		a.PaidAt = &now
		return true
	})
}

func (s *service) MarkUnpaid(ctx context.Context, ids []string) (int, error) {
	return s.mutate(ctx, ids, func(a *Activity) bool {
		if !a.Paid {
			return false
		}
		a.Paid = false
		a.PaidAt = nil
		return true
	})
}

// Remove deletes activities administratively; the summary is rebuilt from what remains.
func (s *service) Remove(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	doc, err := s.repo.Load(ctx)
	if err != nil {
		return 0, err
	}
	drop := toSet(ids)
	kept := doc.Activities[:0]
	removed := 0
	for _, a := range doc.Activities {
		if _, ok := drop[a.ID]; ok {
			removed++
			continue
		}
		kept = append(kept, a)
	}
	if removed == 0 {
		return 0, nil
	}
	doc.Activities = kept
	return removed, s.save(ctx, doc)
}

func (s *service) Summary(ctx context.Context) (Summary, error) {
	doc, err := s.repo.Load(ctx)
	if err != nil {
		return Summary{}, err
	}
	return summarize(doc.Activities), nil
}

// CurrentBalance returns the balanceAfter of the newest financial record carrying one.
func (s *service) CurrentBalance(ctx context.Context) (decimal.Decimal, bool, error) {
	doc, err := s.repo.Load(ctx)
	if err != nil {
		return decimal.Zero, false, err
	}
	for _, a := range doc.Activities {
		if a.BalanceAfter != nil {
			return *a.BalanceAfter, true, nil
		}
	}
	return decimal.Zero, false, nil
}

func (s *service) Legacy(ctx context.Context) (LegacyDocument, error) {
	doc, err := s.repo.Load(ctx)
	if err != nil {
		return LegacyDocument{}, err
	}
	return ToLegacy(*doc), nil
}

func (s *service) mutate(ctx context.Context, ids []string, fn func(*Activity) bool) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	doc, err := s.repo.Load(ctx)
	if err != nil {
		return 0, err
	}
	want := toSet(ids)
	changed := 0
	for i := range doc.Activities {
		if _, ok := want[doc.Activities[i].ID]; ok && fn(&doc.Activities[i]) {
			changed++
		}
	}
	if changed == 0 {
		return 0, nil
	}
	return changed, s.save(ctx, doc)
}

func (s *service) save(ctx context.Context, doc *Document) error {
	doc.Summary = summarize(doc.Activities)
	doc.LastUpdated = s.now().UTC()
	return s.repo.Save(ctx, doc)
}

func validateActivity(a Activity) error {
	if a.ID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "activity id is required")
	}
	if !a.Kind.IsValid() {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "invalid activity kind %q", a.Kind)
	}
	if a.Timestamp.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "activity timestamp is required")
	}
	switch a.Kind.Category() {
	case enums.ActivityCategoryInventory:
		if a.Item == "" || a.Quantity == nil || *a.Quantity < 0 {
			return pkgerrors.Newf(pkgerrors.CodeValidation, "inventory activity %s needs item and quantity", a.ID)
		}
	case enums.ActivityCategoryFinancial:
		if a.Amount == nil || a.Amount.IsNegative() {
			return pkgerrors.Newf(pkgerrors.CodeValidation, "financial activity %s needs a non-negative amount", a.ID)
		}
	}
	return nil
}

func toSet(ids []string) map[string]struct{} {
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}
