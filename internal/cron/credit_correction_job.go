package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/farmledger/internal/managers"
	"github.com/angelmondragon/farmledger/pkg/logger"
)

type creditResetter interface {
	ResetNegativeCredits(ctx context.Context) ([]managers.Correction, error)
}

type CreditCorrectionJobParams struct {
	Logger   *logger.Logger
	Managers creditResetter
}

// NewCreditCorrectionJob zeroes negative manager credit balances.
func NewCreditCorrectionJob(params CreditCorrectionJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Managers == nil {
		return nil, fmt.Errorf("manager service required")
	}
	return &creditCorrectionJob{
		logg:     params.Logger,
		managers: params.Managers,
		now:      time.Now,
	}, nil
}

type creditCorrectionJob struct {
	logg     *logger.Logger
	managers creditResetter
	now      func() time.Time
}

func (j *creditCorrectionJob) Name() string { return "credit-correction" }

func (j *creditCorrectionJob) Run(ctx context.Context) error {
	corrections, err := j.managers.ResetNegativeCredits(ctx)
	if err != nil {
		return fmt.Errorf("reset negative credits: %w", err)
	}
	if len(corrections) == 0 {
		j.logg.Debug(ctx, "no negative manager credits")
		return nil
	}
	ids := make([]string, 0, len(corrections))
	for _, c := range corrections {
		ids = append(ids, c.ManagerID)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"checked_at":  j.now().UTC(),
		"corrected":   len(corrections),
		"manager_ids": ids,
	})
	j.logg.Warn(logCtx, "negative manager credits corrected")
	return nil
}
