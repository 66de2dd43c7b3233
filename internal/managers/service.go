package managers

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/farmledger/internal/catalog"
	"github.com/angelmondragon/farmledger/internal/ledger"
	"github.com/angelmondragon/farmledger/internal/workers"
	"github.com/angelmondragon/farmledger/pkg/config"
	"github.com/angelmondragon/farmledger/pkg/enums"
	pkgerrors "github.com/angelmondragon/farmledger/pkg/errors"
	"github.com/angelmondragon/farmledger/pkg/logger"
	"github.com/angelmondragon/farmledger/pkg/money"
	"github.com/angelmondragon/farmledger/pkg/validators"
)

// PayInput pays one manager. A zero amount pays the manager's computed share.
type PayInput struct {
	ManagerID string          `json:"managerId" validate:"required"`
	Amount    decimal.Decimal `json:"amount"`
	Note      string          `json:"note" validate:"max=500"`
}

// AdjustCreditInput is an administrative credit change. Amount may be negative.
type AdjustCreditInput struct {
	ManagerID string          `json:"managerId" validate:"required"`
	Amount    decimal.Decimal `json:"amount"`
	Reason    string          `json:"reason" validate:"required,max=200"`
}

// SyncResult summarizes one expectation pass.
type SyncResult struct {
	Created   int `json:"created"`
	Fulfilled int `json:"fulfilled"`
	Expired   int `json:"expired"`
	Open      int `json:"open"`
}

// Correction is one negative balance reset to zero.
type Correction struct {
	ManagerID string          `json:"managerId"`
	Previous  decimal.Decimal `json:"previous"`
	Entry     CreditEntry     `json:"entry"`
}

// Service tracks manager workload, payroll and accountability.
type Service interface {
	Workload(ctx context.Context) ([]Snapshot, error)
	Distribution(ctx context.Context) (*Distribution, error)
	Pay(ctx context.Context, input PayInput) (*PaymentRecord, error)
	Payments(ctx context.Context, managerID string) ([]PaymentRecord, error)
	Sync(ctx context.Context) (*SyncResult, error)
	Expectations(ctx context.Context, managerID string, status enums.ExpectationStatus) ([]Expectation, error)
	ResetNegativeCredits(ctx context.Context) ([]Correction, error)
	AdjustCredit(ctx context.Context, input AdjustCreditInput) (*CreditEntry, error)
	Credits(ctx context.Context) (map[string]CreditAccount, error)
}

type profileLister interface {
	List(ctx context.Context) ([]workers.Profile, error)
}

// ServiceParams configure the manager service.
type ServiceParams struct {
	Repository Repository
	Ledger     ledger.Service
	Workers    profileLister
	Catalog    catalog.Lookup
	Manager    config.ManagerConfig
	Rates      config.RatesConfig
	Logger     *logger.Logger
}

type service struct {
	repo    Repository
	ledger  ledger.Service
	workers profileLister
	items   catalog.Lookup
	weights config.ManagerConfig
	rates   config.RatesConfig
	logg    *logger.Logger
	now     func() time.Time
}

// NewService wires the manager service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repository == nil {
		return nil, fmt.Errorf("manager repository required")
	}
	if params.Ledger == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	if params.Workers == nil {
		return nil, fmt.Errorf("worker registry required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("item catalog required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:    params.Repository,
		ledger:  params.Ledger,
		workers: params.Workers,
		items:   params.Catalog,
		weights: params.Manager,
		rates:   params.Rates,
		logg:    params.Logger,
		now:     time.Now,
	}, nil
}

func (s *service) managers(ctx context.Context) ([]workers.Profile, error) {
	profiles, err := s.workers.List(ctx)
	if err != nil {
		return nil, err
	}
	return workers.ByRole(profiles, enums.WorkerRoleManager, true), nil
}

func (s *service) activitiesOf(ctx context.Context, p workers.Profile) ([]ledger.Activity, error) {
	return s.ledger.ForActor(ctx, p.ID, p.LinkedAccountID, p.Name)
}

// Workload tallies every active manager's points since their last payment.
func (s *service) Workload(ctx context.Context) ([]Snapshot, error) {
	managers, err := s.managers(ctx)
	if err != nil {
		return nil, err
	}
	payDoc, err := s.repo.LoadPayments(ctx)
	if err != nil {
		return nil, err
	}
	lastPaid := payDoc.lastPaid()

	out := make([]Snapshot, 0, len(managers))
	for _, m := range managers {
		activities, err := s.activitiesOf(ctx, m)
		if err != nil {
			return nil, err
		}
		var since *time.Time
		if at, ok := lastPaid[m.ID]; ok {
			since = &at
		}
		snap := Tally(activities, since, s.items, s.weights, s.rates)
		snap.ManagerID = m.ID
		snap.ManagerName = m.Name
		out = append(out, snap)
	}
	return out, nil
}

// Distribution proposes the pool split. Nothing is paid until Pay is called.
func (s *service) Distribution(ctx context.Context) (*Distribution, error) {
	snapshots, err := s.Workload(ctx)
	if err != nil {
		return nil, err
	}
	balance, known, err := s.ledger.CurrentBalance(ctx)
	if err != nil {
		return nil, err
	}
	if !known {
		balance = decimal.Zero
	}
	dist := Distribute(snapshots, balance, s.weights.MinimumReserve)
	dist.BalanceKnown = known
	return &dist, nil
}

func (s *service) Pay(ctx context.Context, input PayInput) (*PaymentRecord, error) {
	if err := validators.Struct(input); err != nil {
		return nil, err
	}
	if input.Amount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must not be negative")
	}
	dist, err := s.Distribution(ctx)
	if err != nil {
		return nil, err
	}
	profile, err := s.manager(ctx, input.ManagerID)
	if err != nil {
		return nil, err
	}

	var share *Share
	for i := range dist.Shares {
		if dist.Shares[i].ManagerID == profile.ID {
			share = &dist.Shares[i]
			break
		}
	}
	amount := input.Amount
	if amount.IsZero() {
		if share == nil {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "%s has no workload points to pay", profile.Name)
		}
		amount = share.Amount
	}
	amount = money.Round(amount)
	if !amount.IsPositive() {
		return nil, pkgerrors.Newf(pkgerrors.CodeInsufficientFunds, "payroll pool is empty (balance %s, reserve %s)",
			money.Format(dist.Balance), money.Format(dist.Reserve))
	}
	if amount.GreaterThan(dist.Pool) {
		return nil, pkgerrors.Newf(pkgerrors.CodeInsufficientFunds, "payment %s exceeds payroll pool %s",
			money.Format(amount), money.Format(dist.Pool)).
			WithDetails(map[string]any{"pool": dist.Pool, "reserve": dist.Reserve})
	}

	doc, err := s.repo.LoadPayments(ctx)
	if err != nil {
		return nil, err
	}
	record := PaymentRecord{
		ID:          "mpay_" + uuid.NewString(),
		ManagerID:   profile.ID,
		ManagerName: profile.Name,
		Amount:      amount,
		Points:      decimal.Zero,
		Pool:        dist.Pool,
		Note:        input.Note,
		Timestamp:   s.now().UTC(),
	}
	if share != nil {
		record.Points = share.Points
	}
	doc.Payments = append(doc.Payments, record)
	doc.LastUpdated = record.Timestamp
	if err := s.repo.SavePayments(ctx, doc); err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithFields(s.logg.WithManagerID(ctx, profile.ID), map[string]any{
		"payment_id": record.ID,
		"amount":     record.Amount.String(),
	}), "manager paid")
	return &record, nil
}

// Payments lists manager payments, newest first. An empty id lists all.
func (s *service) Payments(ctx context.Context, managerID string) ([]PaymentRecord, error) {
	doc, err := s.repo.LoadPayments(ctx)
	if err != nil {
		return nil, err
	}
	out := []PaymentRecord{}
	for _, p := range doc.Payments {
		if managerID == "" || p.ManagerID == managerID {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

// Sync creates expectations for new manager removals and settles open ones.
func (s *service) Sync(ctx context.Context) (*SyncResult, error) {
	managers, err := s.managers(ctx)
	if err != nil {
		return nil, err
	}
	doc, err := s.repo.LoadCredits(ctx)
	if err != nil {
		return nil, err
	}

	known := make(map[string]struct{}, len(doc.Expectations))
	byManager := map[string][]Expectation{}
	for _, e := range doc.Expectations {
		known[e.SourceActivityID] = struct{}{}
		byManager[e.ManagerID] = append(byManager[e.ManagerID], e)
	}

	now := s.now().UTC()
	result := &SyncResult{}
	var merged []Expectation
	for _, m := range managers {
		activities, err := s.activitiesOf(ctx, m)
		if err != nil {
			return nil, err
		}
		exps := byManager[m.ID]
		delete(byManager, m.ID)
		for _, a := range activities {
			if _, seen := known[a.ID]; seen {
				continue
			}
			exp, ok := NewExpectation(m.ID, a, s.items, s.rates, s.weights.ExpectationWindow)
			if !ok {
				continue
			}
			known[a.ID] = struct{}{}
			exps = append(exps, exp)
			result.Created++
		}
		fulfilled, expired := Reconcile(exps, activities, s.items, now)
		result.Fulfilled += fulfilled
		result.Expired += expired
		if expired > 0 {
			s.logg.Warn(s.logg.WithFields(s.logg.WithManagerID(ctx, m.ID), map[string]any{
				"expired": expired,
			}), "manager expectations expired")
		}
		merged = append(merged, exps...)
	}
	// Inactive managers keep their history untouched.
	for _, rest := range byManager {
		merged = append(merged, rest...)
	}
	for _, e := range merged {
		if e.Status == enums.ExpectationStatusOpen {
			result.Open++
		}
	}
	sort.SliceStable(merged, func(i, j int) bool { return merged[i].CreatedAt.After(merged[j].CreatedAt) })

	doc.Expectations = merged
	doc.LastUpdated = now
	if err := s.repo.SaveCredits(ctx, doc); err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"created":   result.Created,
		"fulfilled": result.Fulfilled,
		"expired":   result.Expired,
		"open":      result.Open,
	}), "manager expectations synced")
	return result, nil
}

// Expectations lists stored expectations, newest first. Empty filters match all.
func (s *service) Expectations(ctx context.Context, managerID string, status enums.ExpectationStatus) ([]Expectation, error) {
	doc, err := s.repo.LoadCredits(ctx)
	if err != nil {
		return nil, err
	}
	out := []Expectation{}
	for _, e := range doc.Expectations {
		if managerID != "" && e.ManagerID != managerID {
			continue
		}
		if status != "" && e.Status != status {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// ResetNegativeCredits zeroes every negative balance with a correcting entry.
func (s *service) ResetNegativeCredits(ctx context.Context) ([]Correction, error) {
	doc, err := s.repo.LoadCredits(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	var corrections []Correction
	ids := make([]string, 0, len(doc.Credits))
	for id := range doc.Credits {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		account := doc.Credits[id]
		if !account.Balance.IsNegative() {
			continue
		}
		entry := CreditEntry{
			ID:        uuid.NewString(),
			Amount:    account.Balance.Neg(),
			Reason:    "negative balance reset",
			Timestamp: now,
		}
		corrections = append(corrections, Correction{ManagerID: id, Previous: account.Balance, Entry: entry})
		account.Entries = append(account.Entries, entry)
		account.Balance = decimal.Zero
		doc.Credits[id] = account
		s.logg.Warn(s.logg.WithFields(s.logg.WithManagerID(ctx, id), map[string]any{
			"previous_balance": corrections[len(corrections)-1].Previous.String(),
		}), "negative manager credit reset")
	}
	if len(corrections) == 0 {
		return nil, nil
	}
	doc.LastUpdated = now
	if err := s.repo.SaveCredits(ctx, doc); err != nil {
		return nil, err
	}
	return corrections, nil
}

func (s *service) AdjustCredit(ctx context.Context, input AdjustCreditInput) (*CreditEntry, error) {
	if err := validators.Struct(input); err != nil {
		return nil, err
	}
	if input.Amount.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must not be zero")
	}
	if _, err := s.manager(ctx, input.ManagerID); err != nil {
		return nil, err
	}
	doc, err := s.repo.LoadCredits(ctx)
	if err != nil {
		return nil, err
	}
	entry := CreditEntry{
		ID:        uuid.NewString(),
		Amount:    money.Round(input.Amount),
		Reason:    input.Reason,
		Timestamp: s.now().UTC(),
	}
	account := doc.Credits[input.ManagerID]
	account.Balance = account.Balance.Add(entry.Amount)
	account.Entries = append(account.Entries, entry)
	doc.Credits[input.ManagerID] = account
	doc.LastUpdated = entry.Timestamp
	if err := s.repo.SaveCredits(ctx, doc); err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithFields(s.logg.WithManagerID(ctx, input.ManagerID), map[string]any{
		"amount": entry.Amount.String(),
		"reason": entry.Reason,
	}), "manager credit adjusted")
	return &entry, nil
}

func (s *service) Credits(ctx context.Context) (map[string]CreditAccount, error) {
	doc, err := s.repo.LoadCredits(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Credits, nil
}

func (s *service) manager(ctx context.Context, id string) (*workers.Profile, error) {
	profiles, err := s.workers.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range profiles {
		if p.ID != id {
			continue
		}
		if p.Role != enums.WorkerRoleManager {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "%s has role %s, not manager", p.Name, p.Role)
		}
		return &p, nil
	}
	return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "manager %q not found", id)
}
