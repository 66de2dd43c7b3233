// Package payments computes what workers are owed for plantation and animal-delivery work,
// records payroll actions and renders their receipts.
package payments

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/angelmondragon/farmledger/internal/catalog"
	"github.com/angelmondragon/farmledger/internal/ledger"
	"github.com/angelmondragon/farmledger/internal/workers"
	"github.com/angelmondragon/farmledger/pkg/config"
	"github.com/angelmondragon/farmledger/pkg/enums"
	pkgerrors "github.com/angelmondragon/farmledger/pkg/errors"
	"github.com/angelmondragon/farmledger/pkg/logger"
	"github.com/angelmondragon/farmledger/pkg/money"
	"github.com/angelmondragon/farmledger/pkg/pagination"
)

// Statement is what a worker is currently owed, per service.
type Statement struct {
	Worker     workers.Profile   `json:"worker"`
	Plantation PlantationSummary `json:"plantation"`
	Deliveries DeliverySummary   `json:"deliveries"`
	Total      decimal.Decimal   `json:"total"`
}

// ListResult is one page of payment records, newest first.
type ListResult struct {
	Payments  []PaymentRecord `json:"payments"`
	TotalPaid decimal.Decimal `json:"totalPaid"`
	Page      pagination.Page `json:"page"`
}

// Service is the payroll surface.
type Service interface {
	Statement(ctx context.Context, workerID string) (*Statement, error)
	PayAll(ctx context.Context, workerID string) (*PaymentRecord, error)
	PayService(ctx context.Context, workerID string, service enums.ServiceType) (*PaymentRecord, error)
	PayTransaction(ctx context.Context, workerID, activityID string) (*PaymentRecord, error)
	DeletePayment(ctx context.Context, paymentID string) (*PaymentRecord, error)
	ReopenPayment(ctx context.Context, paymentID string) (int, error)
	List(ctx context.Context, workerID string, page pagination.Params) (*ListResult, error)
	Get(ctx context.Context, paymentID string) (*PaymentRecord, error)
}

type workerGetter interface {
	Get(ctx context.Context, id string) (*workers.Profile, error)
}

// ServiceParams configure the payroll service.
type ServiceParams struct {
	Ledger     ledger.Service
	Workers    workerGetter
	Catalog    catalog.Lookup
	Repository Repository
	Rates      config.RatesConfig
	Logger     *logger.Logger
}

type service struct {
	ledger  ledger.Service
	workers workerGetter
	items   catalog.Lookup
	repo    Repository
	rates   config.RatesConfig
	logg    *logger.Logger
	now     func() time.Time
}

// NewService wires the payroll service.
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
	if params.Repository == nil {
		return nil, fmt.Errorf("payments repository required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		ledger:  params.Ledger,
		workers: params.Workers,
		items:   params.Catalog,
		repo:    params.Repository,
		rates:   params.Rates,
		logg:    params.Logger,
		now:     time.Now,
	}, nil
}

// payable loads a worker and rejects managers and supervisors.
func (s *service) payable(ctx context.Context, workerID string) (*workers.Profile, []ledger.Activity, error) {
	profile, err := s.workers.Get(ctx, workerID)
	if err != nil {
		return nil, nil, err
	}
	if profile.Role != enums.WorkerRoleWorker {
		return nil, nil, pkgerrors.Newf(pkgerrors.CodeValidation, "%s has role %s; only workers receive service pay", profile.Name, profile.Role)
	}
	activities, err := s.ledger.ForActor(ctx, profile.ID, profile.LinkedAccountID, profile.Name)
	if err != nil {
		return nil, nil, err
	}
	return profile, activities, nil
}

func (s *service) Statement(ctx context.Context, workerID string) (*Statement, error) {
	profile, activities, err := s.payable(ctx, workerID)
	if err != nil {
		return nil, err
	}
	st := &Statement{
		Worker:     *profile,
		Plantation: Plantation(activities, s.items, s.rates),
		Deliveries: AnimalDeliveries(activities, s.items, s.rates),
	}
	st.Total = money.Round(st.Plantation.Total.Add(st.Deliveries.Total))
	return st, nil
}

func (s *service) PayAll(ctx context.Context, workerID string) (*PaymentRecord, error) {
	st, err := s.Statement(ctx, workerID)
	if err != nil {
		return nil, err
	}
	ids := append(append([]string{}, st.Plantation.ActivityIDs...), st.Deliveries.ActivityIDs...)
	return s.settle(ctx, settlement{
		worker:     st.Worker,
		service:    enums.ServiceTypeCombined,
		amount:     st.Total,
		ids:        ids,
		plantation: &st.Plantation,
		deliveries: st.Deliveries.Deliveries,
	})
}

func (s *service) PayService(ctx context.Context, workerID string, svc enums.ServiceType) (*PaymentRecord, error) {
	switch svc {
	case enums.ServiceTypeCombined:
		return s.PayAll(ctx, workerID)
	case enums.ServiceTypePlantation, enums.ServiceTypeAnimalDelivery:
	default:
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid service type %q", svc)
	}

	st, err := s.Statement(ctx, workerID)
	if err != nil {
		return nil, err
	}
	if svc == enums.ServiceTypePlantation {
		return s.settle(ctx, settlement{
			worker:     st.Worker,
			service:    svc,
			amount:     st.Plantation.Total,
			ids:        st.Plantation.ActivityIDs,
			plantation: &st.Plantation,
		})
	}
	return s.settle(ctx, settlement{
		worker:     st.Worker,
		service:    svc,
		amount:     st.Deliveries.Total,
		ids:        st.Deliveries.ActivityIDs,
		deliveries: st.Deliveries.Deliveries,
	})
}

// PayTransaction settles a single plant return or delivery deposit.
func (s *service) PayTransaction(ctx context.Context, workerID, activityID string) (*PaymentRecord, error) {
	profile, activities, err := s.payable(ctx, workerID)
	if err != nil {
		return nil, err
	}
	var target *ledger.Activity
	for i := range activities {
		if activities[i].ID == activityID {
			target = &activities[i]
			break
		}
	}
	if target == nil {
		return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "transaction %q not found for worker %s", activityID, profile.ID)
	}
	if target.Paid {
		return nil, pkgerrors.Newf(pkgerrors.CodeConflict, "transaction %q is already paid", activityID)
	}

	switch {
	case target.Kind == enums.ActivityKindItemAdd:
		plantation := Plantation([]ledger.Activity{*target}, s.items, s.rates)
		if len(plantation.ActivityIDs) == 0 {
			break
		}
		return s.settle(ctx, settlement{
			worker:     *profile,
			service:    enums.ServiceTypePlantation,
			amount:     plantation.Total,
			ids:        plantation.ActivityIDs,
			plantation: &plantation,
		})
	case target.Kind == enums.ActivityKindDeposit:
		summary := AnimalDeliveries(activities, s.items, s.rates)
		for _, d := range summary.Deliveries {
			if d.ActivityID != target.ID {
				continue
			}
			return s.settle(ctx, settlement{
				worker:     *profile,
				service:    enums.ServiceTypeAnimalDelivery,
				amount:     d.Payment,
				ids:        append([]string{d.ActivityID}, d.DuplicateIDs...),
				deliveries: []Delivery{d},
			})
		}
		return nil, pkgerrors.Newf(pkgerrors.CodeConflict, "transaction %q duplicates an earlier deposit", activityID)
	}
	return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "transaction %q is not a payable service activity", activityID)
}

type settlement struct {
	worker     workers.Profile
	service    enums.ServiceType
	amount     decimal.Decimal
	ids        []string
	plantation *PlantationSummary
	deliveries []Delivery
}

// settle records the payment, then marks its activities paid. When marking fails the
// record is withdrawn again so the two documents do not disagree.
func (s *service) settle(ctx context.Context, in settlement) (*PaymentRecord, error) {
	if len(in.ids) == 0 {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "nothing to pay for %s", in.worker.Name)
	}
	if err := s.checkFunds(ctx, in.amount); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	record := PaymentRecord{
		ID:          "pay_" + uuid.NewString(),
		WorkerID:    in.worker.ID,
		WorkerName:  in.worker.Name,
		ServiceType: in.service,
		Amount:      money.Round(in.amount),
		ActivityIDs: in.ids,
		Timestamp:   now,
	}
	record.Receipt = Render(Receipt{
		PaymentID:   record.ID,
		WorkerName:  record.WorkerName,
		ServiceType: record.ServiceType,
		Timestamp:   now,
		Plantation:  in.plantation,
		Deliveries:  in.deliveries,
		Total:       record.Amount,
	})

	doc, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	doc.Payments = append(doc.Payments, record)
	if err := s.saveDoc(ctx, doc); err != nil {
		return nil, err
	}

	logCtx := s.logg.WithFields(s.logg.WithWorkerID(ctx, record.WorkerID), map[string]any{
		"payment_id": record.ID,
		"service":    record.ServiceType,
		"amount":     record.Amount.String(),
	})
	if _, err := s.ledger.MarkPaid(ctx, record.ActivityIDs); err != nil {
		if _, rollbackErr := s.remove(ctx, record.ID); rollbackErr != nil {
			err = multierr.Append(err, rollbackErr)
		}
		s.logg.Error(logCtx, "mark paid failed after payment was recorded", err)
		return nil, err
	}
	s.logg.Info(logCtx, "payment recorded")
	return &record, nil
}

func (s *service) checkFunds(ctx context.Context, amount decimal.Decimal) error {
	balance, known, err := s.ledger.CurrentBalance(ctx)
	if err != nil {
		return err
	}
	if known && amount.GreaterThan(balance) {
		return pkgerrors.Newf(pkgerrors.CodeInsufficientFunds, "payment %s exceeds farm balance %s",
			money.Format(amount), money.Format(balance)).
			WithDetails(map[string]string{"requested": amount.StringFixed(2), "available": balance.StringFixed(2)})
	}
	return nil
}

// DeletePayment voids a receipt. The settled activities stay paid.
func (s *service) DeletePayment(ctx context.Context, paymentID string) (*PaymentRecord, error) {
	record, err := s.remove(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"payment_id": paymentID}), "payment voided")
	return record, nil
}

// ReopenPayment voids a receipt and returns its activities to unpaid.
func (s *service) ReopenPayment(ctx context.Context, paymentID string) (int, error) {
	record, err := s.remove(ctx, paymentID)
	if err != nil {
		return 0, err
	}
	n, err := s.ledger.MarkUnpaid(ctx, record.ActivityIDs)
	if err != nil {
		return 0, err
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"payment_id": paymentID, "reopened": n}), "payment reopened")
	return n, nil
}

func (s *service) remove(ctx context.Context, paymentID string) (*PaymentRecord, error) {
	doc, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	for i, p := range doc.Payments {
		if p.ID != paymentID {
			continue
		}
		voidedAt := s.now().UTC()
		p.VoidedAt = &voidedAt
		doc.Payments = append(doc.Payments[:i], doc.Payments[i+1:]...)
		doc.Voided = append(doc.Voided, p)
		if err := s.saveDoc(ctx, doc); err != nil {
			return nil, err
		}
		return &p, nil
	}
	return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "payment %q not found", paymentID)
}

func (s *service) List(ctx context.Context, workerID string, page pagination.Params) (*ListResult, error) {
	doc, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	var matched []PaymentRecord
	for _, p := range doc.Payments {
		if workerID == "" || p.WorkerID == workerID {
			matched = append(matched, p)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].Timestamp.After(matched[j].Timestamp) })
	start, end, info := page.Window(len(matched))
	return &ListResult{Payments: append([]PaymentRecord{}, matched[start:end]...), TotalPaid: doc.TotalPaid, Page: info}, nil
}

func (s *service) Get(ctx context.Context, paymentID string) (*PaymentRecord, error) {
	doc, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range doc.Payments {
		if p.ID == paymentID {
			return &p, nil
		}
	}
	return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "payment %q not found", paymentID)
}

func (s *service) saveDoc(ctx context.Context, doc *Document) error {
	doc.recomputeTotal()
	doc.LastUpdated = s.now().UTC()
	return s.repo.Save(ctx, doc)
}
