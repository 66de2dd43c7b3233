package idempotency

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/farmledger/pkg/redis"
)

// Manager remembers processed source record ids per consumer using Redis SETNX with a TTL.
// Keys follow the `fl:idempotency:record:<consumer>:<record_id>` pattern.
type Manager struct {
	store redis.IdempotencyStore
	ttl   time.Duration
}

// NewManager builds a guard that marks records as processed for the given TTL.
func NewManager(store redis.IdempotencyStore, ttl time.Duration) (*Manager, error) {
	if store == nil {
		return nil, errors.New("idempotency store is required")
	}
	if ttl < 0 {
		return nil, errors.New("ttl must be non-negative")
	}
	return &Manager{store: store, ttl: ttl}, nil
}

// CheckAndMark returns true when the record was already processed, otherwise marks it.
func (m *Manager) CheckAndMark(ctx context.Context, consumer, recordID string) (bool, error) {
	key, err := m.key(consumer, recordID)
	if err != nil {
		return false, err
	}
	set, err := m.store.SetNX(ctx, key, "1", m.ttl)
	if err != nil {
		return false, err
	}
	return !set, nil
}

// Forget clears the marker so the record can be processed again; used when the
// downstream write failed after marking.
func (m *Manager) Forget(ctx context.Context, consumer, recordID string) error {
	key, err := m.key(consumer, recordID)
	if err != nil {
		return err
	}
	return m.store.Del(ctx, key)
}

func (m *Manager) key(consumer, recordID string) (string, error) {
	if consumer == "" {
		return "", errors.New("consumer name is required")
	}
	if strings.TrimSpace(recordID) == "" {
		return "", errors.New("record id is required")
	}
	return m.store.IdempotencyKey(fmt.Sprintf("record:%s", consumer), recordID), nil
}
