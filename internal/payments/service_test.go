package payments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/farmledger/internal/ledger"
	"github.com/angelmondragon/farmledger/internal/workers"
	"github.com/angelmondragon/farmledger/pkg/docstore"
	"github.com/angelmondragon/farmledger/pkg/enums"
	pkgerrors "github.com/angelmondragon/farmledger/pkg/errors"
	"github.com/angelmondragon/farmledger/pkg/logger"
	"github.com/angelmondragon/farmledger/pkg/pagination"
)

type fixture struct {
	store   *docstore.Memory
	ledger  ledger.Service
	svc     Service
	workers workers.Registry
}

func newFixture(t *testing.T, activities ...ledger.Activity) *fixture {
	t.Helper()
	ctx := context.Background()
	store := docstore.NewMemory()

	ledgerRepo, err := ledger.NewRepository(store)
	require.NoError(t, err)
	led, err := ledger.NewService(ledger.ServiceParams{Repository: ledgerRepo})
	require.NoError(t, err)
	if len(activities) > 0 {
		_, err = led.AppendBatch(ctx, activities)
		require.NoError(t, err)
	}

	reg, err := workers.NewRegistry(store)
	require.NoError(t, err)
	for _, p := range []workers.Profile{
		{ID: "w1", Name: "Maria", Role: enums.WorkerRoleWorker, Active: true},
		{ID: "m1", Name: "Carlos", Role: enums.WorkerRoleManager, Active: true},
	} {
		_, err = reg.Upsert(ctx, p)
		require.NoError(t, err)
	}

	repo, err := NewRepository(store)
	require.NoError(t, err)
	svc, err := NewService(ServiceParams{
		Ledger:     led,
		Workers:    reg,
		Catalog:    items,
		Repository: repo,
		Rates:      rates(),
		Logger:     logger.Nop(),
	})
	require.NoError(t, err)
	return &fixture{store: store, ledger: led, svc: svc, workers: reg}
}

func workload() []ledger.Activity {
	return []ledger.Activity{
		inv("a1", enums.ActivityKindItemAdd, "wheat", 50, t0),
		inv("a2", enums.ActivityKindItemAdd, "strawberry", 30, t0.Add(time.Minute)),
		dep("d1", "160", t0.Add(time.Hour)),
	}
}

func paidFlags(t *testing.T, led ledger.Service, ids ...string) []bool {
	t.Helper()
	var out []bool
	for _, id := range ids {
		a, err := led.Get(context.Background(), id)
		require.NoError(t, err)
		out = append(out, a.Paid)
	}
	return out
}

func TestPayAllSettlesEveryService(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, workload()...)

	record, err := f.svc.PayAll(ctx, "w1")
	require.NoError(t, err)
	// 50 × 0.15 + 30 × 0.20 + 60
	assert.True(t, record.Amount.Equal(dec("73.50")), record.Amount.String())
	assert.Equal(t, enums.ServiceTypeCombined, record.ServiceType)
	assert.ElementsMatch(t, []string{"a1", "a2", "d1"}, record.ActivityIDs)
	assert.Contains(t, record.Receipt, "RECIBO DE PAGAMENTO")
	assert.Equal(t, []bool{true, true, true}, paidFlags(t, f.ledger, "a1", "a2", "d1"))

	_, err = f.svc.PayAll(ctx, "w1")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "nothing left to pay")

	list, err := f.svc.List(ctx, "w1", pagination.Params{})
	require.NoError(t, err)
	require.Len(t, list.Payments, 1)
	assert.True(t, list.TotalPaid.Equal(dec("73.50")))
}

func TestPlantationPaymentMatchesPricedQuantities(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, workload()...)

	record, err := f.svc.PayService(ctx, "w1", enums.ServiceTypePlantation)
	require.NoError(t, err)

	expected := decimal.Zero
	for _, id := range record.ActivityIDs {
		a, err := f.ledger.Get(ctx, id)
		require.NoError(t, err)
		require.True(t, a.Paid)
		price, ok := UnitPrice(items.Class(a.Item), rates())
		require.True(t, ok)
		expected = expected.Add(price.Mul(decimal.NewFromInt(int64(a.Qty()))))
	}
	assert.True(t, record.Amount.Equal(expected.Round(2)))
	assert.Equal(t, []bool{false}, paidFlags(t, f.ledger, "d1"))

	record, err = f.svc.PayService(ctx, "w1", enums.ServiceTypeAnimalDelivery)
	require.NoError(t, err)
	assert.True(t, record.Amount.Equal(dec("60")))
}

func TestPayTransaction(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, workload()...)

	record, err := f.svc.PayTransaction(ctx, "w1", "d1")
	require.NoError(t, err)
	assert.Equal(t, enums.ServiceTypeAnimalDelivery, record.ServiceType)
	assert.Equal(t, []string{"d1"}, record.ActivityIDs)
	assert.Equal(t, []bool{false, false}, paidFlags(t, f.ledger, "a1", "a2"))

	_, err = f.svc.PayTransaction(ctx, "w1", "d1")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	record, err = f.svc.PayTransaction(ctx, "w1", "a1")
	require.NoError(t, err)
	assert.True(t, record.Amount.Equal(dec("7.50")))

	_, err = f.svc.PayTransaction(ctx, "w1", "nope")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestDeletePaymentKeepsActivitiesPaid(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, workload()...)
	record, err := f.svc.PayAll(ctx, "w1")
	require.NoError(t, err)

	voided, err := f.svc.DeletePayment(ctx, record.ID)
	require.NoError(t, err)
	require.NotNil(t, voided.VoidedAt)
	assert.Equal(t, []bool{true, true, true}, paidFlags(t, f.ledger, "a1", "a2", "d1"))

	_, err = f.svc.Get(ctx, record.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	list, err := f.svc.List(ctx, "", pagination.Params{})
	require.NoError(t, err)
	assert.Empty(t, list.Payments)
	assert.True(t, list.TotalPaid.IsZero())

	_, err = f.svc.DeletePayment(ctx, record.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestReopenPaymentRestoresUnpaid(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, workload()...)
	record, err := f.svc.PayAll(ctx, "w1")
	require.NoError(t, err)

	n, err := f.svc.ReopenPayment(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []bool{false, false, false}, paidFlags(t, f.ledger, "a1", "a2", "d1"))

	again, err := f.svc.PayAll(ctx, "w1")
	require.NoError(t, err)
	assert.True(t, again.Amount.Equal(record.Amount))
}

func TestPayRejectsNonWorkersAndUnknownIDs(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, workload()...)

	_, err := f.svc.PayAll(ctx, "m1")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	_, err = f.svc.PayAll(ctx, "ghost")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	_, err = f.svc.PayService(ctx, "w1", "fishing")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestPayRejectsAmountAboveBalance(t *testing.T) {
	ctx := context.Background()
	withdrawal := dep("bal", "10", t0.Add(2*time.Hour))
	withdrawal.Kind = enums.ActivityKindWithdrawal
	withdrawal.Actor = "someone"
	balance := dec("20")
	withdrawal.BalanceAfter = &balance
	f := newFixture(t, append(workload(), withdrawal)...)

	_, err := f.svc.PayAll(ctx, "w1")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInsufficientFunds))
	assert.Equal(t, []bool{false}, paidFlags(t, f.ledger, "a1"))

	record, err := f.svc.PayTransaction(ctx, "w1", "a1")
	require.NoError(t, err)
	assert.True(t, record.Amount.Equal(dec("7.50")))
}

func TestPaySurfacesPersistenceFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, workload()...)
	f.store.FailSave = errors.New("disk full")

	_, err := f.svc.PayAll(ctx, "w1")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodePersistence))
	f.store.FailSave = nil
	assert.Equal(t, []bool{false}, paidFlags(t, f.ledger, "a1"))
}
