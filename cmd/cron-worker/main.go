package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/farmledger/internal/app"
	"github.com/angelmondragon/farmledger/internal/cron"
	"github.com/angelmondragon/farmledger/pkg/config"
	"github.com/angelmondragon/farmledger/pkg/instance"
	"github.com/angelmondragon/farmledger/pkg/logger"
	"github.com/angelmondragon/farmledger/pkg/metrics"
)

const lockName = "cron-worker:%s"

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	once := flag.Bool("once", false, "run the jobs a single time and exit")
	jobs := flag.String("jobs", "", "comma separated job names for -once (default all)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"backend":  cfg.Store.Backend,
		"instance": instance.GetID(),
	})

	application, err := app.New(ctx, app.Params{Config: cfg, Logger: logg, Registerer: prometheus.DefaultRegisterer})
	if err != nil {
		logg.Error(ctx, "failed to bootstrap application", err)
		os.Exit(1)
	}
	defer func() {
		if err := application.Close(); err != nil {
			logg.Error(context.Background(), "error closing connections", err)
		}
	}()

	if err := application.Startup(ctx); err != nil {
		logg.Error(ctx, "startup correction failed", err)
	}

	var lock cron.Lock = &cron.LocalLock{}
	if application.Redis != nil {
		redisLock, err := cron.NewRedisLock(application.Redis, application.Redis.LockKey(lockKey(cfg.App.Env)), 0)
		if err != nil {
			logg.Error(ctx, "failed to create cron lock", err)
			os.Exit(1)
		}
		lock = redisLock
	}

	expectationsJob, err := cron.NewExpectationsJob(cron.ExpectationsJobParams{Logger: logg, Managers: application.Managers})
	if err != nil {
		logg.Error(ctx, "failed to create expectations job", err)
		os.Exit(1)
	}
	creditJob, err := cron.NewCreditCorrectionJob(cron.CreditCorrectionJobParams{Logger: logg, Managers: application.Managers})
	if err != nil {
		logg.Error(ctx, "failed to create credit correction job", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(expectationsJob, creditJob),
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(ctx, "failed to create cron service", err)
		os.Exit(1)
	}

	if *once {
		var names []string
		if *jobs != "" {
			names = strings.Split(*jobs, ",")
		}
		if err := service.RunOnce(ctx, names...); err != nil {
			logg.Error(ctx, "cron jobs failed", err)
			stop()
			os.Exit(1)
		}
		return
	}

	logg.Info(ctx, "starting cron worker")
	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockName, env)
}
