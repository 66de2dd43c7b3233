package managers

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/farmledger/pkg/docstore"
)

// PaymentRecord is one manager payroll action.
type PaymentRecord struct {
	ID          string          `json:"id"`
	ManagerID   string          `json:"managerId"`
	ManagerName string          `json:"managerName"`
	Amount      decimal.Decimal `json:"amount"`
	Points      decimal.Decimal `json:"points"`
	Pool        decimal.Decimal `json:"pool"`
	Note        string          `json:"note,omitempty"`
	Timestamp   time.Time       `json:"timestamp"`
}

// PaymentsDocument is the manager_payments document.
type PaymentsDocument struct {
	Payments    []PaymentRecord `json:"payments"`
	LastUpdated time.Time       `json:"lastUpdated"`
}

// lastPaid returns the newest payment time per manager.
func (d *PaymentsDocument) lastPaid() map[string]time.Time {
	out := make(map[string]time.Time, len(d.Payments))
	for _, p := range d.Payments {
		if at, ok := out[p.ManagerID]; !ok || p.Timestamp.After(at) {
			out[p.ManagerID] = p.Timestamp
		}
	}
	return out
}

// CreditEntry is one change to a manager's credit balance.
type CreditEntry struct {
	ID        string          `json:"id"`
	Amount    decimal.Decimal `json:"amount"`
	Reason    string          `json:"reason"`
	Timestamp time.Time       `json:"timestamp"`
}

// CreditAccount is a manager's running credit.
type CreditAccount struct {
	Balance decimal.Decimal `json:"balance"`
	Entries []CreditEntry   `json:"entries,omitempty"`
}

// CreditsDocument is the manager_credits document.
type CreditsDocument struct {
	Credits      map[string]CreditAccount `json:"credits"`
	Expectations []Expectation            `json:"expectations"`
	LastUpdated  time.Time                `json:"lastUpdated"`
}

// Repository loads and saves the two manager documents.
type Repository interface {
	LoadPayments(ctx context.Context) (*PaymentsDocument, error)
	SavePayments(ctx context.Context, doc *PaymentsDocument) error
	LoadCredits(ctx context.Context) (*CreditsDocument, error)
	SaveCredits(ctx context.Context, doc *CreditsDocument) error
}

type repository struct {
	store docstore.Store
}

// NewRepository returns a manager repository bound to the document store.
func NewRepository(store docstore.Store) (Repository, error) {
	if store == nil {
		return nil, fmt.Errorf("document store required")
	}
	return &repository{store: store}, nil
}

func (r *repository) LoadPayments(ctx context.Context) (*PaymentsDocument, error) {
	doc := &PaymentsDocument{}
	if _, err := docstore.LoadJSON(ctx, r.store, docstore.KeyManagerPayments, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (r *repository) SavePayments(ctx context.Context, doc *PaymentsDocument) error {
	return docstore.SaveJSON(ctx, r.store, docstore.KeyManagerPayments, doc)
}

func (r *repository) LoadCredits(ctx context.Context) (*CreditsDocument, error) {
	doc := &CreditsDocument{}
	if _, err := docstore.LoadJSON(ctx, r.store, docstore.KeyManagerCredits, doc); err != nil {
		return nil, err
	}
	if doc.Credits == nil {
		doc.Credits = map[string]CreditAccount{}
	}
	return doc, nil
}

func (r *repository) SaveCredits(ctx context.Context, doc *CreditsDocument) error {
	return docstore.SaveJSON(ctx, r.store, docstore.KeyManagerCredits, doc)
}
