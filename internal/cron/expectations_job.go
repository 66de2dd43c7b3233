package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/farmledger/internal/managers"
	"github.com/angelmondragon/farmledger/pkg/logger"
)

type expectationSyncer interface {
	Sync(ctx context.Context) (*managers.SyncResult, error)
}

type ExpectationsJobParams struct {
	Logger   *logger.Logger
	Managers expectationSyncer
}

// NewExpectationsJob creates new manager obligations and settles open ones.
func NewExpectationsJob(params ExpectationsJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Managers == nil {
		return nil, fmt.Errorf("manager service required")
	}
	return &expectationsJob{
		logg:     params.Logger,
		managers: params.Managers,
		now:      time.Now,
	}, nil
}

type expectationsJob struct {
	logg     *logger.Logger
	managers expectationSyncer
	now      func() time.Time
}

func (j *expectationsJob) Name() string { return "expectations" }

func (j *expectationsJob) Run(ctx context.Context) error {
	started := j.now().UTC()
	result, err := j.managers.Sync(ctx)
	if err != nil {
		return fmt.Errorf("sync expectations: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"started_at": started,
		"created":    result.Created,
		"fulfilled":  result.Fulfilled,
		"expired":    result.Expired,
		"open":       result.Open,
	})
	j.logg.Info(logCtx, "manager expectations reconciled")
	return nil
}
