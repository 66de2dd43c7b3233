package abuse

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/farmledger/internal/catalog"
	"github.com/angelmondragon/farmledger/internal/ledger"
	"github.com/angelmondragon/farmledger/internal/payments"
	"github.com/angelmondragon/farmledger/internal/workers"
	"github.com/angelmondragon/farmledger/pkg/config"
	"github.com/angelmondragon/farmledger/pkg/docstore"
	"github.com/angelmondragon/farmledger/pkg/enums"
	"github.com/angelmondragon/farmledger/pkg/logger"
	"github.com/angelmondragon/farmledger/pkg/money"
	"github.com/angelmondragon/farmledger/pkg/validators"
)

// Report is the abuse view of one worker.
type Report struct {
	WorkerID   string `json:"workerId"`
	WorkerName string `json:"workerName"`
	Detection
	TotalCharges  decimal.Decimal `json:"totalCharges"`
	GrossEarnings decimal.Decimal `json:"grossEarnings"`
	NetPayment    decimal.Decimal `json:"netPayment"`
	Clamped       bool            `json:"clamped,omitempty"`
	GeneratedAt   time.Time       `json:"generatedAt"`
}

// Action is an administrator's decision on a category of findings.
type Action struct {
	ID        string              `json:"id"`
	WorkerID  string              `json:"workerId"`
	Category  enums.AbuseCategory `json:"category"`
	Decision  enums.AbuseDecision `json:"decision"`
	Note      string              `json:"note,omitempty"`
	Timestamp time.Time           `json:"timestamp"`
}

// DecisionInput records an accept or ignore.
type DecisionInput struct {
	WorkerID string              `json:"workerId" validate:"required"`
	Category enums.AbuseCategory `json:"category" validate:"required,oneof=suspicious-item unreturned-tool excess-consumption undelivered-animal"`
	Decision enums.AbuseDecision `json:"decision" validate:"required,oneof=accept ignore"`
	Note     string              `json:"note" validate:"max=500"`
}

type actionsDocument struct {
	Actions     []Action  `json:"actions"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// Service reports findings and records decisions.
type Service interface {
	Report(ctx context.Context, workerID string) (*Report, error)
	RecordDecision(ctx context.Context, input DecisionInput) (*Action, error)
	Actions(ctx context.Context, workerID string) ([]Action, error)
}

type workerGetter interface {
	Get(ctx context.Context, id string) (*workers.Profile, error)
}

// ServiceParams configure the abuse service.
type ServiceParams struct {
	Ledger  ledger.Service
	Workers workerGetter
	Catalog catalog.Lookup
	Store   docstore.Store
	Rules   config.AbuseConfig
	Rates   config.RatesConfig
	Logger  *logger.Logger
}

type service struct {
	ledger  ledger.Service
	workers workerGetter
	items   catalog.Lookup
	store   docstore.Store
	rules   config.AbuseConfig
	rates   config.RatesConfig
	logg    *logger.Logger
	now     func() time.Time
}

// NewService wires the abuse service.
func NewService(params ServiceParams) (Service, error) {
	if params.Ledger == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	if params.Workers == nil {
		return nil, fmt.Errorf("worker registry required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("item catalog required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("document store required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		ledger:  params.Ledger,
		workers: params.Workers,
		items:   params.Catalog,
		store:   params.Store,
		rules:   params.Rules,
		rates:   params.Rates,
		logg:    params.Logger,
		now:     time.Now,
	}, nil
}

// Report runs detection over the worker's full history. Gross earnings are the unpaid
// service earnings; ignored categories are listed but left out of the total charge.
func (s *service) Report(ctx context.Context, workerID string) (*Report, error) {
	profile, err := s.workers.Get(ctx, workerID)
	if err != nil {
		return nil, err
	}
	activities, err := s.ledger.ForActor(ctx, profile.ID, profile.LinkedAccountID, profile.Name)
	if err != nil {
		return nil, err
	}
	decisions, err := s.latestDecisions(ctx, profile.ID)
	if err != nil {
		return nil, err
	}

	report := &Report{
		WorkerID:      profile.ID,
		WorkerName:    profile.Name,
		Detection:     Detect(profile.ID, activities, s.items, s.rules, s.rates),
		TotalCharges:  decimal.Zero,
		GrossEarnings: decimal.Zero,
		GeneratedAt:   s.now().UTC(),
	}
	for i := range report.Findings {
		f := &report.Findings[i]
		if decisions[f.Category] == enums.AbuseDecisionIgnore {
			f.Ignored = true
			continue
		}
		report.TotalCharges = report.TotalCharges.Add(f.Charge)
	}
	if profile.Role == enums.WorkerRoleWorker {
		gross := payments.Plantation(activities, s.items, s.rates).Total.
			Add(payments.AnimalDeliveries(activities, s.items, s.rates).Total)
		report.GrossEarnings = money.Round(gross)
	}
	report.NetPayment = report.GrossEarnings.Sub(report.TotalCharges)

	if report.NetPayment.IsNegative() && s.rules.ClampNegativeNet {
		report.NetPayment = decimal.Zero
		report.Clamped = true
		s.logg.Warn(s.logg.WithWorkerID(ctx, profile.ID), "negative net payment clamped to zero")
	}
	return report, nil
}

func (s *service) RecordDecision(ctx context.Context, input DecisionInput) (*Action, error) {
	if err := validators.Struct(input); err != nil {
		return nil, err
	}
	if _, err := s.workers.Get(ctx, input.WorkerID); err != nil {
		return nil, err
	}
	doc, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	action := Action{
		ID:        uuid.NewString(),
		WorkerID:  input.WorkerID,
		Category:  input.Category,
		Decision:  input.Decision,
		Note:      input.Note,
		Timestamp: s.now().UTC(),
	}
	doc.Actions = append(doc.Actions, action)
	doc.LastUpdated = action.Timestamp
	if err := docstore.SaveJSON(ctx, s.store, docstore.KeyAbuseActions, doc); err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithFields(s.logg.WithWorkerID(ctx, input.WorkerID), map[string]any{
		"category": input.Category,
		"decision": input.Decision,
	}), "abuse decision recorded")
	return &action, nil
}

// Actions lists a worker's decisions, newest first. An empty id lists all.
func (s *service) Actions(ctx context.Context, workerID string) ([]Action, error) {
	doc, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	var out []Action
	for _, a := range doc.Actions {
		if workerID == "" || a.WorkerID == workerID {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

func (s *service) latestDecisions(ctx context.Context, workerID string) (map[enums.AbuseCategory]enums.AbuseDecision, error) {
	doc, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	out := map[enums.AbuseCategory]enums.AbuseDecision{}
	latest := map[enums.AbuseCategory]time.Time{}
	for _, a := range doc.Actions {
		if a.WorkerID != workerID {
			continue
		}
		if at, seen := latest[a.Category]; seen && at.After(a.Timestamp) {
			continue
		}
		latest[a.Category] = a.Timestamp
		out[a.Category] = a.Decision
	}
	return out, nil
}

func (s *service) load(ctx context.Context) (*actionsDocument, error) {
	doc := &actionsDocument{}
	if _, err := docstore.LoadJSON(ctx, s.store, docstore.KeyAbuseActions, doc); err != nil {
		return nil, err
	}
	return doc, nil
}
