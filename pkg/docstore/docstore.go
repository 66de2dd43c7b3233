// Package docstore persists whole JSON documents by logical key. Every mutation in the
// ledger core loads a full document, changes it in memory and writes the full document back;
// there is no partial update and no multi-document transaction.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	pkgerrors "github.com/angelmondragon/farmledger/pkg/errors"
)

// Document keys used by the ledger core.
const (
	KeyLedger          = "ledger"
	KeyPayments        = "payments"
	KeyManagerPayments = "manager_payments"
	KeyManagerCredits  = "manager_credits"
	KeyAbuseActions    = "abuse_actions"
	KeyWorkers         = "workers"
)

// ErrNotFound is returned by Load when no document exists for the key.
var ErrNotFound = errors.New("document not found")

// Store is the read-whole/write-whole persistence collaborator.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, body []byte) error
}

// LoadJSON decodes the document at key into dest. It reports false when the document
// does not exist yet, leaving dest untouched.
func LoadJSON(ctx context.Context, store Store, key string, dest any) (bool, error) {
	body, err := store.Load(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, pkgerrors.Wrap(pkgerrors.CodePersistence, err, fmt.Sprintf("load %s document", key))
	}
	if len(body) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodePersistence, err, fmt.Sprintf("decode %s document", key))
	}
	return true, nil
}

// SaveJSON encodes value and writes it as the whole document at key.
func SaveJSON(ctx context.Context, store Store, key string, value any) error {
	body, err := json.Marshal(value)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("encode %s document", key))
	}
	if err := store.Save(ctx, key, body); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, fmt.Sprintf("save %s document", key))
	}
	return nil
}
