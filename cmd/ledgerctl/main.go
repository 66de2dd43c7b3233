package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/farmledger/internal/app"
	"github.com/angelmondragon/farmledger/pkg/config"
	pkgerrors "github.com/angelmondragon/farmledger/pkg/errors"
	"github.com/angelmondragon/farmledger/pkg/logger"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "ledgerctl", Output: os.Stderr})

	_ = godotenv.Load()
	if err := persistentStoreDefaults(os.LookupEnv, os.Setenv); err != nil {
		requireResource(context.Background(), logg, "store defaults", err)
	}

	var opts options
	flag.StringVar(&opts.cmd, "cmd", "summary", "command: "+commandList)
	flag.StringVar(&opts.input, "input", "-", "JSON lines file of raw log records for -cmd=ingest (- for stdin)")
	flag.StringVar(&opts.worker, "worker", "", "worker id")
	flag.StringVar(&opts.manager, "manager", "", "manager id")
	flag.StringVar(&opts.service, "service", "", "service type for -cmd=pay: plantation|animal-delivery")
	flag.StringVar(&opts.activity, "activity", "", "activity id for -cmd=pay of a single transaction")
	flag.StringVar(&opts.payment, "payment", "", "payment id for -cmd=void")
	flag.BoolVar(&opts.reopen, "reopen", false, "with -cmd=void, also mark the covered activities unpaid")
	flag.StringVar(&opts.amount, "amount", "", "amount for manager pay or credit adjustments")
	flag.StringVar(&opts.reason, "reason", "", "reason for -cmd=credit, note for payments and decisions")
	flag.StringVar(&opts.category, "category", "", "abuse category for a decision")
	flag.StringVar(&opts.decision, "decision", "", "abuse decision: accept|ignore")
	flag.StringVar(&opts.name, "name", "", "worker name for -cmd=workers")
	flag.StringVar(&opts.role, "role", "", "worker role for -cmd=workers: worker|manager|supervisor")
	flag.StringVar(&opts.account, "account", "", "linked game account id for -cmd=workers")
	flag.BoolVar(&opts.deactivate, "deactivate", false, "with -cmd=workers -worker, deactivate the profile")
	flag.BoolVar(&opts.pay, "pay", false, "with -cmd=workload -manager, pay the manager")
	flag.IntVar(&opts.limit, "limit", 0, "page size")
	flag.IntVar(&opts.offset, "offset", 0, "page offset")
	flag.Parse()

	cfg, err := config.Load()
	requireResource(context.Background(), logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "ledgerctl",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Output:      os.Stderr,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":     cfg.App.Env,
		"cmd":     opts.cmd,
		"backend": cfg.Store.Backend,
	})

	if cfg.Store.Backend == config.StoreBackendMemory {
		logg.Warn(ctx, "memory store backend: nothing is kept after this command exits")
	}

	application, err := app.New(ctx, app.Params{Config: cfg, Logger: logg, Registerer: prometheus.DefaultRegisterer})
	requireResource(ctx, logg, "application", err)
	defer func() {
		if err := application.Close(); err != nil {
			logg.Error(ctx, "error closing connections", err)
		}
	}()

	if err := application.Startup(ctx); err != nil {
		logg.Error(ctx, "startup correction failed", err)
	}

	if err := run(ctx, application, opts, os.Stdin, os.Stdout); err != nil {
		logg.Debug(logg.WithField(ctx, "error_dump", pkgerrors.Dump(err)), "command failed")
		if typed := pkgerrors.As(err); typed != nil {
			fmt.Fprintf(os.Stderr, "%s: %s\n", typed.Code(), typed.Message())
		} else {
			fmt.Fprintf(os.Stderr, "%s failed: %v\n", opts.cmd, err)
		}
		stop()
		os.Exit(1)
	}
}

// persistentStoreDefaults points the CLI at the sqlite-backed sql store, migrated on open,
// unless a backend was chosen explicitly.
func persistentStoreDefaults(lookup func(string) (string, bool), set func(string, string) error) error {
	if v, ok := lookup(config.EnvStoreBackend); ok && strings.TrimSpace(v) != "" {
		return nil
	}
	if err := set(config.EnvStoreBackend, config.StoreBackendSQL); err != nil {
		return err
	}
	if _, ok := lookup(config.EnvAutoMigrate); !ok {
		return set(config.EnvAutoMigrate, "true")
	}
	return nil
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
