package idempotency

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	keys map[string]time.Duration
}

func (f *fakeStore) SetNX(_ context.Context, key string, _ any, ttl time.Duration) (bool, error) {
	if _, ok := f.keys[key]; ok {
		return false, nil
	}
	f.keys[key] = ttl
	return true, nil
}

func (f *fakeStore) IdempotencyKey(scope, id string) string {
	return "fl:idempotency:" + scope + ":" + id
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.keys, k)
	}
	return nil
}

func TestCheckAndMark(t *testing.T) {
	store := &fakeStore{keys: map[string]time.Duration{}}
	m, err := NewManager(store, time.Hour)
	require.NoError(t, err)
	ctx := context.Background()

	seen, err := m.CheckAndMark(ctx, "ingest", "msg-1")
	require.NoError(t, err)
	assert.False(t, seen)
	assert.Equal(t, time.Hour, store.keys["fl:idempotency:record:ingest:msg-1"])

	seen, err = m.CheckAndMark(ctx, "ingest", "msg-1")
	require.NoError(t, err)
	assert.True(t, seen)

	require.NoError(t, m.Forget(ctx, "ingest", "msg-1"))
	seen, err = m.CheckAndMark(ctx, "ingest", "msg-1")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestValidation(t *testing.T) {
	_, err := NewManager(nil, time.Hour)
	assert.Error(t, err)
	_, err = NewManager(&fakeStore{}, -time.Second)
	assert.Error(t, err)

	m, err := NewManager(&fakeStore{keys: map[string]time.Duration{}}, 0)
	require.NoError(t, err)
	_, err = m.CheckAndMark(context.Background(), "", "id")
	assert.Error(t, err)
	_, err = m.CheckAndMark(context.Background(), "ingest", " ")
	assert.Error(t, err)
}
