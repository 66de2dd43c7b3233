package payments

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/farmledger/pkg/docstore"
	"github.com/angelmondragon/farmledger/pkg/enums"
)

// PaymentRecord is created once per payroll action and never edited afterwards.
type PaymentRecord struct {
	ID          string            `json:"id"`
	WorkerID    string            `json:"workerId"`
	WorkerName  string            `json:"workerName"`
	ServiceType enums.ServiceType `json:"serviceType"`
	Amount      decimal.Decimal   `json:"amount"`
	ActivityIDs []string          `json:"activityIds"`
	Timestamp   time.Time         `json:"timestamp"`
	Receipt     string            `json:"receipt"`
	VoidedAt    *time.Time        `json:"voidedAt,omitempty"`
}

// Document is the payments document. Voided records move out of Payments for audit.
type Document struct {
	Payments    []PaymentRecord `json:"payments"`
	Voided      []PaymentRecord `json:"voided,omitempty"`
	TotalPaid   decimal.Decimal `json:"totalPaid"`
	LastUpdated time.Time       `json:"lastUpdated"`
}

func (d *Document) recomputeTotal() {
	total := decimal.Zero
	for _, p := range d.Payments {
		total = total.Add(p.Amount)
	}
	d.TotalPaid = total
}

// Repository loads and saves the payments document.
type Repository interface {
	Load(ctx context.Context) (*Document, error)
	Save(ctx context.Context, doc *Document) error
}

type repository struct {
	store docstore.Store
}

// NewRepository returns a payments repository bound to the document store.
func NewRepository(store docstore.Store) (Repository, error) {
	if store == nil {
		return nil, fmt.Errorf("document store required")
	}
	return &repository{store: store}, nil
}

func (r *repository) Load(ctx context.Context) (*Document, error) {
	doc := &Document{}
	if _, err := docstore.LoadJSON(ctx, r.store, docstore.KeyPayments, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (r *repository) Save(ctx context.Context, doc *Document) error {
	return docstore.SaveJSON(ctx, r.store, docstore.KeyPayments, doc)
}
