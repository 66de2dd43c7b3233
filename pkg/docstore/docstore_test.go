package docstore

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/angelmondragon/farmledger/pkg/db/models"
	pkgerrors "github.com/angelmondragon/farmledger/pkg/errors"
	"github.com/angelmondragon/farmledger/pkg/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type sample struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	var got sample
	found, err := LoadJSON(ctx, store, "sample", &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, SaveJSON(ctx, store, "sample", sample{Name: "wheat", Count: 3}))
	found, err = LoadJSON(ctx, store, "sample", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, sample{Name: "wheat", Count: 3}, got)

	require.NoError(t, SaveJSON(ctx, store, "sample", sample{Name: "corn", Count: 4}))
	found, err = LoadJSON(ctx, store, "sample", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "corn", got.Name)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestMemoryStoreSaveFailureIsPersistenceError(t *testing.T) {
	store := NewMemory()
	store.FailSave = errors.New("disk full")
	err := SaveJSON(context.Background(), store, KeyLedger, sample{})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodePersistence))
}

func TestLoadJSONCorruptDocument(t *testing.T) {
	store := NewMemory()
	require.NoError(t, store.Save(context.Background(), "broken", []byte("{not json")))
	var got sample
	_, err := LoadJSON(context.Background(), store, "broken", &got)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodePersistence))
}

type fakeRedis struct {
	data   map[string]string
	getErr error
}

func (f *fakeRedis) Get(_ context.Context, key string) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	v, ok := f.data[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (f *fakeRedis) Set(_ context.Context, key string, value any, _ time.Duration) error {
	f.data[key] = fmt.Sprint(value)
	return nil
}

func (f *fakeRedis) DocumentKey(prefix, name string) string {
	return "fl:doc:" + prefix + ":" + name
}

func TestRedisStore(t *testing.T) {
	fake := &fakeRedis{data: map[string]string{}}
	store, err := NewRedis(fake, "farm")
	require.NoError(t, err)
	exerciseStore(t, store)
	assert.Contains(t, fake.data, "fl:doc:farm:sample")
}

func TestRedisStoreSurfacesBackendErrors(t *testing.T) {
	fake := &fakeRedis{data: map[string]string{}, getErr: errors.New("connection reset")}
	store, err := NewRedis(fake, "farm")
	require.NoError(t, err)
	var got sample
	_, err = LoadJSON(context.Background(), store, "sample", &got)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodePersistence))
}

func TestSQLStore(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file:docstore_test?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.Document{}))

	store, err := NewSQL(conn)
	require.NoError(t, err)
	exerciseStore(t, store)
}
