package workers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/farmledger/pkg/docstore"
	"github.com/angelmondragon/farmledger/pkg/enums"
	pkgerrors "github.com/angelmondragon/farmledger/pkg/errors"
)

var roster = []Profile{
	{ID: "w1", Name: "Maria Silva", Role: enums.WorkerRoleWorker, Active: true, LinkedAccountID: "4412"},
	{ID: "w2", Name: "João Pedro Santos", Role: enums.WorkerRoleWorker, Active: true},
	{ID: "m1", Name: "Carlos", Role: enums.WorkerRoleManager, Active: true},
}

func TestMatchTiers(t *testing.T) {
	p, tier, ok := Match("Someone Else", "4412", roster)
	require.True(t, ok)
	assert.Equal(t, "w1", p.ID)
	assert.Equal(t, TierAccountID, tier)

	p, tier, ok = Match("maria silva", "", roster)
	require.True(t, ok)
	assert.Equal(t, "w1", p.ID)
	assert.Equal(t, TierExactName, tier)

	p, tier, ok = Match("Joao Santos [Farm]", "", roster)
	require.True(t, ok)
	assert.Equal(t, "w2", p.ID)
	assert.Equal(t, TierFuzzy, tier)

	p, tier, ok = Match("carlos_gerente", "", roster)
	require.True(t, ok)
	assert.Equal(t, "m1", p.ID)
	assert.Equal(t, TierFuzzy, tier)
}

func TestMatchAccountIDBeatsName(t *testing.T) {
	p, _, ok := Match("Carlos", "4412", roster)
	require.True(t, ok)
	assert.Equal(t, "w1", p.ID)
}

func TestMatchNoMatch(t *testing.T) {
	_, tier, ok := Match("Zé", "999", roster)
	assert.False(t, ok)
	assert.Equal(t, TierNone, tier)

	_, _, ok = Match("Ana Silva", "", roster)
	assert.False(t, ok, "one shared word is not enough")

	_, _, ok = Match("", "", roster)
	assert.False(t, ok)
}

func TestRegistryLifecycle(t *testing.T) {
	ctx := context.Background()
	reg, err := NewRegistry(docstore.NewMemory())
	require.NoError(t, err)

	_, err = reg.Upsert(ctx, Profile{ID: "w1", Name: "Maria", Role: enums.WorkerRoleWorker, Active: true})
	require.NoError(t, err)
	_, err = reg.Upsert(ctx, Profile{ID: "m1", Name: "Carlos", Role: enums.WorkerRoleManager, Active: true})
	require.NoError(t, err)
	_, err = reg.Upsert(ctx, Profile{ID: "w1", Name: "Maria Silva", Role: enums.WorkerRoleWorker, Active: true})
	require.NoError(t, err)

	list, err := reg.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Carlos", list[0].Name)
	assert.Equal(t, "Maria Silva", list[1].Name)

	require.NoError(t, reg.Deactivate(ctx, "w1"))
	got, err := reg.Get(ctx, "w1")
	require.NoError(t, err)
	assert.False(t, got.Active)

	assert.Len(t, ByRole(list, enums.WorkerRoleManager, true), 1)
}

func TestRegistryErrors(t *testing.T) {
	ctx := context.Background()
	reg, err := NewRegistry(docstore.NewMemory())
	require.NoError(t, err)

	_, err = reg.Get(ctx, "ghost")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	assert.True(t, pkgerrors.IsCode(reg.Deactivate(ctx, "ghost"), pkgerrors.CodeNotFound))

	_, err = reg.Upsert(ctx, Profile{ID: "w9", Name: "Bad", Role: "boss"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	failing := docstore.NewMemory()
	failing.FailSave = errors.New("disk full")
	reg, err = NewRegistry(failing)
	require.NoError(t, err)
	_, err = reg.Upsert(ctx, Profile{ID: "w1", Name: "Maria", Role: enums.WorkerRoleWorker})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodePersistence))

	_, err = NewRegistry(nil)
	assert.Error(t, err)
}
