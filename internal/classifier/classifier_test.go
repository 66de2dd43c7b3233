package classifier

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/farmledger/internal/catalog"
	"github.com/angelmondragon/farmledger/internal/parser"
	"github.com/angelmondragon/farmledger/internal/workers"
	"github.com/angelmondragon/farmledger/pkg/enums"
	pkgerrors "github.com/angelmondragon/farmledger/pkg/errors"
)

var (
	ts      = time.Date(2026, 3, 14, 18, 30, 0, 0, time.UTC)
	profile = workers.Profile{ID: "w-maria", Name: "Maria", Role: enums.WorkerRoleWorker, Active: true, LinkedAccountID: "4412"}
)

func newClassifier(t *testing.T) *Classifier {
	t.Helper()
	c, err := New(catalog.Default(), []workers.Profile{profile})
	require.NoError(t, err)
	return c
}

func TestClassifyInventoryScenario(t *testing.T) {
	candidate, ok := parser.Parse(parser.RawLogRecord{ID: "m1", Author: "FarmBot", Content: "Maria x50 trigo (add)", Timestamp: ts})
	require.True(t, ok)

	activity, tier, err := newClassifier(t).Classify(candidate)
	require.NoError(t, err)
	assert.Equal(t, "act_m1", activity.ID)
	assert.Equal(t, enums.ActivityKindItemAdd, activity.Kind)
	assert.Equal(t, enums.ActivityCategoryInventory, activity.Category)
	assert.Equal(t, "wheat", activity.Item)
	assert.Equal(t, 50, activity.Qty())
	assert.Nil(t, activity.Amount)
	assert.Equal(t, "w-maria", activity.Actor)
	assert.Equal(t, "Maria", activity.ActorName)
	assert.Equal(t, workers.TierExactName, tier)
}

func TestClassifyFinancialWithBalance(t *testing.T) {
	candidate := parser.Candidate{
		SourceID:        "d1",
		Kind:            enums.ActivityKindDeposit,
		RawAmount:       "1.234,50",
		RawBalanceAfter: "9,000.00",
		RawActor:        "Desconhecido",
		ActorAccountID:  "4412",
		Timestamp:       ts,
	}
	activity, tier, err := newClassifier(t).Classify(candidate)
	require.NoError(t, err)
	assert.Equal(t, enums.ActivityCategoryFinancial, activity.Category)
	assert.True(t, activity.Value().Equal(decimal.RequireFromString("1234.5")))
	require.NotNil(t, activity.BalanceAfter)
	assert.True(t, activity.BalanceAfter.Equal(decimal.NewFromInt(9000)))
	assert.Equal(t, "w-maria", activity.Actor)
	assert.Equal(t, workers.TierAccountID, tier)
	assert.Empty(t, activity.Item)
}

func TestClassifyUnattributedKeepsRawIdentity(t *testing.T) {
	c := newClassifier(t)
	activity, tier, err := c.Classify(parser.Candidate{
		SourceID: "r1", Kind: enums.ActivityKindItemRemove, RawItem: "Enxada", RawQuantity: "1",
		RawActor: "Forasteiro", Timestamp: ts,
	})
	require.NoError(t, err)
	assert.Equal(t, workers.TierNone, tier)
	assert.Equal(t, "Forasteiro", activity.Actor)
	assert.Equal(t, "hoe", activity.Item)

	activity, _, err = c.Classify(parser.Candidate{
		SourceID: "r2", Kind: enums.ActivityKindWithdrawal, RawAmount: "50",
		RawActor: "Forasteiro", ActorAccountID: "9001", Timestamp: ts,
	})
	require.NoError(t, err)
	assert.Equal(t, "9001", activity.Actor)
}

func TestClassifyFailures(t *testing.T) {
	c := newClassifier(t)
	cases := []parser.Candidate{
		{SourceID: "a", Kind: "gift"},
		{SourceID: "b", Kind: enums.ActivityKindItemAdd, RawItem: "trigo", RawQuantity: "lots"},
		{SourceID: "c", Kind: enums.ActivityKindItemAdd, RawItem: "  ", RawQuantity: "1"},
		{SourceID: "d", Kind: enums.ActivityKindDeposit, RawAmount: "abc"},
	}
	for _, candidate := range cases {
		_, _, err := c.Classify(candidate)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeParseFailure), candidate.SourceID)
	}
}

func TestClassifyGeneratesIDWithoutSource(t *testing.T) {
	activity, _, err := newClassifier(t).Classify(parser.Candidate{Kind: enums.ActivityKindDeposit, RawAmount: "10", Timestamp: ts})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(activity.ID, IDPrefix))
	assert.Greater(t, len(activity.ID), len(IDPrefix))
}

func TestNewRequiresCanonicalizer(t *testing.T) {
	_, err := New(nil, nil)
	assert.Error(t, err)
}
