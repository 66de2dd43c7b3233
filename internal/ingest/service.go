// Package ingest runs raw chat-log records through parsing, classification and the ledger.
package ingest

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"github.com/angelmondragon/farmledger/internal/catalog"
	"github.com/angelmondragon/farmledger/internal/classifier"
	"github.com/angelmondragon/farmledger/internal/ledger"
	"github.com/angelmondragon/farmledger/internal/parser"
	"github.com/angelmondragon/farmledger/internal/workers"
	pkgerrors "github.com/angelmondragon/farmledger/pkg/errors"
	"github.com/angelmondragon/farmledger/pkg/logger"
	"github.com/angelmondragon/farmledger/pkg/metrics"
)

const consumerName = "ingest"

type profileLister interface {
	List(ctx context.Context) ([]workers.Profile, error)
}

type idempotencyChecker interface {
	CheckAndMark(ctx context.Context, consumer, recordID string) (bool, error)
	Forget(ctx context.Context, consumer, recordID string) error
}

// ServiceParams configure the ingest service. Idempotency and Metrics are optional.
type ServiceParams struct {
	Ledger      ledger.Service
	Catalog     catalog.Canonicalizer
	Workers     profileLister
	Idempotency idempotencyChecker
	Metrics     *metrics.IngestMetrics
	Logger      *logger.Logger
}

// Result counts what happened to each received record.
type Result struct {
	Received     int      `json:"received"`
	Stored       int      `json:"stored"`
	Duplicates   int      `json:"duplicates"`
	Unparseable  int      `json:"unparseable"`
	Unattributed int      `json:"unattributed"`
	Pruned       int      `json:"pruned"`
	StoredIDs    []string `json:"storedIds,omitempty"`
}

// Service ingests batches of records.
type Service struct {
	ledger  ledger.Service
	items   catalog.Canonicalizer
	workers profileLister
	guard   idempotencyChecker
	metrics *metrics.IngestMetrics
	logg    *logger.Logger
}

// NewService validates dependencies and builds the ingest service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Ledger == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("item catalog required")
	}
	if params.Workers == nil {
		return nil, fmt.Errorf("worker registry required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Service{
		ledger:  params.Ledger,
		items:   params.Catalog,
		workers: params.Workers,
		guard:   params.Idempotency,
		metrics: params.Metrics,
		logg:    params.Logger,
	}, nil
}

// Ingest processes one batch. Unparseable records are counted, never returned as errors;
// a failed ledger write is returned and releases the idempotency marks of the batch.
func (s *Service) Ingest(ctx context.Context, records []parser.RawLogRecord) (*Result, error) {
	res := &Result{Received: len(records)}
	profiles, err := s.workers.List(ctx)
	if err != nil {
		return res, err
	}
	cls, err := classifier.New(s.items, profiles)
	if err != nil {
		return res, err
	}

	var (
		skipped    error
		marked     []string
		activities []ledger.Activity
	)
	for _, record := range records {
		recordCtx := s.logg.WithRecordID(ctx, record.ID)

		if s.guard != nil && record.ID != "" {
			seen, err := s.guard.CheckAndMark(ctx, consumerName, record.ID)
			if err != nil {
				// the ledger's own dedup still applies
				skipped = multierr.Append(skipped, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "idempotency check"))
			} else if seen {
				res.Duplicates++
				continue
			} else {
				marked = append(marked, record.ID)
			}
		}

		candidate, ok := parser.Parse(record)
		if !ok {
			res.Unparseable++
			s.logg.Debug(recordCtx, "record not recognized")
			continue
		}
		activity, tier, err := cls.Classify(candidate)
		if err != nil {
			res.Unparseable++
			skipped = multierr.Append(skipped, fmt.Errorf("record %s: %w", record.ID, err))
			continue
		}
		if tier == workers.TierNone {
			res.Unattributed++
		}
		activities = append(activities, activity)
	}

	appended, err := s.ledger.AppendBatch(ctx, activities)
	if err != nil {
		for _, id := range marked {
			err = multierr.Append(err, s.guard.Forget(ctx, consumerName, id))
		}
		s.logg.Error(ctx, "ledger append failed", err)
		return res, err
	}
	res.Stored = appended.Stored
	res.Duplicates += appended.Duplicates
	res.Pruned = appended.Pruned
	res.StoredIDs = appended.StoredIDs

	if skipped != nil {
		s.logg.Warn(s.logg.WithField(ctx, "skipped", len(multierr.Errors(skipped))), skipped.Error())
	}
	s.metrics.Add(metrics.OutcomeStored, res.Stored)
	s.metrics.Add(metrics.OutcomeDuplicate, res.Duplicates)
	s.metrics.Add(metrics.OutcomeUnparseable, res.Unparseable)
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"received":     res.Received,
		"stored":       res.Stored,
		"duplicates":   res.Duplicates,
		"unparseable":  res.Unparseable,
		"unattributed": res.Unattributed,
	}), "ingest batch processed")
	return res, nil
}
