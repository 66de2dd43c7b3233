package app

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/farmledger/internal/managers"
	"github.com/angelmondragon/farmledger/internal/parser"
	"github.com/angelmondragon/farmledger/internal/workers"
	"github.com/angelmondragon/farmledger/pkg/config"
	"github.com/angelmondragon/farmledger/pkg/docstore"
	"github.com/angelmondragon/farmledger/pkg/enums"
	"github.com/angelmondragon/farmledger/pkg/logger"
)

func newApp(t *testing.T) *App {
	t.Helper()
	cfg := config.Defaults()
	a, err := New(context.Background(), Params{
		Config:     &cfg,
		Logger:     logger.Nop(),
		Store:      docstore.NewMemory(),
		Registerer: prometheus.NewRegistry(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestNewRequiresConfigAndLogger(t *testing.T) {
	_, err := New(context.Background(), Params{})
	require.Error(t, err)
}

func TestIngestThenPay(t *testing.T) {
	ctx := context.Background()
	a := newApp(t)
	_, err := a.Workers.Upsert(ctx, workers.Profile{ID: "w1", Name: "Maria", Role: enums.WorkerRoleWorker, Active: true})
	require.NoError(t, err)

	at := time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)
	result, err := a.Ingest.Ingest(ctx, []parser.RawLogRecord{
		{ID: "100", Timestamp: at, Author: "FarmBot", Content: "Maria x50 trigo (add)"},
		{ID: "101", Timestamp: at.Add(time.Minute), Content: "nothing to see here"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Stored)
	assert.Equal(t, 1, result.Unparseable)

	statement, err := a.Payments.Statement(ctx, "w1")
	require.NoError(t, err)
	assert.True(t, statement.Total.Equal(decimal.RequireFromString("7.50")), statement.Total.String())

	record, err := a.Payments.PayAll(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, []string{"act_100"}, record.ActivityIDs)
}

func TestStartupResetsNegativeCredits(t *testing.T) {
	ctx := context.Background()
	a := newApp(t)
	require.NoError(t, docstore.SaveJSON(ctx, a.Store, docstore.KeyManagerCredits, &managers.CreditsDocument{
		Credits: map[string]managers.CreditAccount{"m1": {Balance: decimal.RequireFromString("-12")}},
	}))
	require.NoError(t, a.Startup(ctx))

	credits, err := a.Managers.Credits(ctx)
	require.NoError(t, err)
	assert.True(t, credits["m1"].Balance.IsZero())
}
