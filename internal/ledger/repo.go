package ledger

import (
	"context"
	"fmt"

	"github.com/angelmondragon/farmledger/pkg/docstore"
)

// Repository loads and saves the whole ledger document.
type Repository interface {
	Load(ctx context.Context) (*Document, error)
	Save(ctx context.Context, doc *Document) error
}

type repository struct {
	store docstore.Store
}

// NewRepository returns a ledger repository bound to the document store.
func NewRepository(store docstore.Store) (Repository, error) {
	if store == nil {
		return nil, fmt.Errorf("document store required")
	}
	return &repository{store: store}, nil
}

func (r *repository) Load(ctx context.Context) (*Document, error) {
	doc := &Document{}
	if _, err := docstore.LoadJSON(ctx, r.store, docstore.KeyLedger, doc); err != nil {
		return nil, err
	}
	if doc.Summary.ByKind == nil {
		doc.Summary = summarize(doc.Activities)
	}
	return doc, nil
}

func (r *repository) Save(ctx context.Context, doc *Document) error {
	return docstore.SaveJSON(ctx, r.store, docstore.KeyLedger, doc)
}
