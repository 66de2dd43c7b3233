// Package app wires the ledger services from configuration for the binaries.
package app

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/angelmondragon/farmledger/internal/abuse"
	"github.com/angelmondragon/farmledger/internal/catalog"
	"github.com/angelmondragon/farmledger/internal/ingest"
	"github.com/angelmondragon/farmledger/internal/ledger"
	"github.com/angelmondragon/farmledger/internal/managers"
	"github.com/angelmondragon/farmledger/internal/payments"
	"github.com/angelmondragon/farmledger/internal/workers"
	"github.com/angelmondragon/farmledger/pkg/config"
	"github.com/angelmondragon/farmledger/pkg/docstore"
	"github.com/angelmondragon/farmledger/pkg/idempotency"
	"github.com/angelmondragon/farmledger/pkg/logger"
	"github.com/angelmondragon/farmledger/pkg/metrics"
	"github.com/angelmondragon/farmledger/pkg/redis"
)

// App holds every service built over one document store.
type App struct {
	Config   *config.Config
	Logger   *logger.Logger
	Store    docstore.Store
	Redis    *redis.Client
	Catalog  *catalog.Catalog
	Ledger   ledger.Service
	Workers  workers.Registry
	Ingest   *ingest.Service
	Payments payments.Service
	Abuse    abuse.Service
	Managers managers.Service

	closers []func() error
}

// Params configure New. Store overrides the configured backend; Registerer may be nil.
type Params struct {
	Config     *config.Config
	Logger     *logger.Logger
	Store      docstore.Store
	Registerer prometheus.Registerer
}

// New builds the services. Redis, when configured, backs ingest idempotency.
func New(ctx context.Context, params Params) (*App, error) {
	if params.Config == nil {
		return nil, fmt.Errorf("config required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	cfg, logg := params.Config, params.Logger
	a := &App{Config: cfg, Logger: logg, Catalog: catalog.Default(), Store: params.Store}

	if a.Store == nil {
		store, closeStore, err := docstore.Open(ctx, cfg, logg)
		if err != nil {
			return nil, err
		}
		a.Store = store
		a.closers = append(a.closers, closeStore)
	}

	var guard *idempotency.Manager
	if cfg.Redis.Enabled() {
		client, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return nil, multierr.Append(fmt.Errorf("bootstrap redis: %w", err), a.Close())
		}
		a.Redis = client
		a.closers = append(a.closers, client.Close)
		guard, err = idempotency.NewManager(client, cfg.Ledger.IdempotencyTTL)
		if err != nil {
			return nil, multierr.Append(err, a.Close())
		}
	}

	if err := a.build(cfg, logg, guard, params.Registerer); err != nil {
		return nil, multierr.Append(err, a.Close())
	}
	return a, nil
}

func (a *App) build(cfg *config.Config, logg *logger.Logger, guard *idempotency.Manager, reg prometheus.Registerer) error {
	ledgerRepo, err := ledger.NewRepository(a.Store)
	if err != nil {
		return err
	}
	if a.Ledger, err = ledger.NewService(ledger.ServiceParams{
		Repository:    ledgerRepo,
		MaxActivities: cfg.Ledger.MaxActivities,
	}); err != nil {
		return err
	}
	if a.Workers, err = workers.NewRegistry(a.Store); err != nil {
		return err
	}

	ingestParams := ingest.ServiceParams{
		Ledger:  a.Ledger,
		Catalog: a.Catalog,
		Workers: a.Workers,
		Metrics: metrics.NewIngestMetrics(reg),
		Logger:  logg,
	}
	if guard != nil {
		ingestParams.Idempotency = guard
	}
	if a.Ingest, err = ingest.NewService(ingestParams); err != nil {
		return err
	}

	paymentsRepo, err := payments.NewRepository(a.Store)
	if err != nil {
		return err
	}
	if a.Payments, err = payments.NewService(payments.ServiceParams{
		Ledger:     a.Ledger,
		Workers:    a.Workers,
		Catalog:    a.Catalog,
		Repository: paymentsRepo,
		Rates:      cfg.Rates,
		Logger:     logg,
	}); err != nil {
		return err
	}

	if a.Abuse, err = abuse.NewService(abuse.ServiceParams{
		Ledger:  a.Ledger,
		Workers: a.Workers,
		Catalog: a.Catalog,
		Store:   a.Store,
		Rules:   cfg.Abuse,
		Rates:   cfg.Rates,
		Logger:  logg,
	}); err != nil {
		return err
	}

	managersRepo, err := managers.NewRepository(a.Store)
	if err != nil {
		return err
	}
	a.Managers, err = managers.NewService(managers.ServiceParams{
		Repository: managersRepo,
		Ledger:     a.Ledger,
		Workers:    a.Workers,
		Catalog:    a.Catalog,
		Manager:    cfg.Manager,
		Rates:      cfg.Rates,
		Logger:     logg,
	})
	return err
}

// Startup runs the corrective passes every process performs before serving.
func (a *App) Startup(ctx context.Context) error {
	corrections, err := a.Managers.ResetNegativeCredits(ctx)
	if err != nil {
		return fmt.Errorf("reset negative credits: %w", err)
	}
	if len(corrections) > 0 {
		a.Logger.Info(a.Logger.WithField(ctx, "corrected", len(corrections)), "startup credit correction applied")
	}
	return nil
}

// Close releases every connection New opened.
func (a *App) Close() error {
	var errs error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = multierr.Append(errs, a.closers[i]())
	}
	a.closers = nil
	return errs
}
