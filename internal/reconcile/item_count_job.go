package reconcile

import (
	"context"
	"fmt"

	"github.com/eyewantit/eyewantit-backend/internal/collections"
	"github.com/eyewantit/eyewantit-backend/pkg/logger"
	"github.com/eyewantit/eyewantit-backend/pkg/metrics"
	"github.com/google/uuid"
	"go.uber.org/multierr"
)

const defaultDriftBatchSize = 500

// driftStore exposes the collection queries the count job needs.
type driftStore interface {
	ListCountDrift(ctx context.Context, limit int) ([]collections.CountDrift, error)
	SetItemCount(ctx context.Context, collectionID uuid.UUID, count int64) error
}

// ItemCountJobParams configures the cached-count repair job.
type ItemCountJobParams struct {
	Logger    *logger.Logger
	Store     driftStore
	Metrics   *metrics.JobMetrics
	BatchSize int
}

// NewItemCountJob builds the job that repairs stale cached item counts.
// Cached counts drift when a secondary recompute fails after a membership
// write; the job rewrites them from the live membership arrays.
func NewItemCountJob(params ItemCountJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("collection store required")
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = defaultDriftBatchSize
	}
	return &itemCountJob{
		logg:    params.Logger,
		store:   params.Store,
		metrics: params.Metrics,
		batch:   batch,
	}, nil
}

type itemCountJob struct {
	logg    *logger.Logger
	store   driftStore
	metrics *metrics.JobMetrics
	batch   int
}

func (j *itemCountJob) Name() string { return "item-count-reconcile" }

func (j *itemCountJob) Run(ctx context.Context) error {
	drifted, err := j.store.ListCountDrift(ctx, j.batch)
	if err != nil {
		return fmt.Errorf("list count drift: %w", err)
	}

	var errs error
	corrected := 0
	for i := range drifted {
		row := drifted[i]
		rowCtx := j.logg.WithFields(ctx, map[string]any{
			"collection_id": row.CollectionID,
			"cached":        row.Cached,
			"actual":        row.Actual,
		})
		if err := j.store.SetItemCount(rowCtx, row.CollectionID, row.Actual); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("repair count for %s: %w", row.CollectionID, err))
			continue
		}
		j.logg.Info(rowCtx, "cached item count repaired")
		corrected++
	}
	j.metrics.AddCorrected(j.Name(), corrected)

	reportCtx := j.logg.WithFields(ctx, map[string]any{
		"drifted":   len(drifted),
		"corrected": corrected,
	})
	j.logg.Info(reportCtx, "item count reconcile loop complete")
	return errs
}
