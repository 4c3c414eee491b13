package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/yourorg/jobboard/internal/domain"
	"github.com/yourorg/jobboard/internal/featureflags"
	"github.com/yourorg/jobboard/internal/observability/metrics"
	"github.com/yourorg/jobboard/internal/reliability/retry"
)

// BlobSweeper reconciles the blob store against the application store.
// A blob with no referencing application is an orphan left behind by a
// partial submission failure; the sweeper removes it once it is older
// than the grace window.
type BlobSweeper struct {
	blobs    domain.BlobStore
	appRepo  domain.ApplicationRepository
	logger   *slog.Logger
	interval time.Duration
	grace    time.Duration
	retryCfg *retry.Config
}

// NewBlobSweeper creates a new sweeper
func NewBlobSweeper(
	blobs domain.BlobStore,
	appRepo domain.ApplicationRepository,
	logger *slog.Logger,
	interval time.Duration,
	grace time.Duration,
) *BlobSweeper {
	return &BlobSweeper{
		blobs:    blobs,
		appRepo:  appRepo,
		logger:   logger,
		interval: interval,
		grace:    grace,
		retryCfg: retry.DefaultConfig(),
	}
}

// Start begins the sweep loop; it runs until the context is cancelled.
func (w *BlobSweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("blob sweeper started",
		slog.Duration("interval", w.interval),
		slog.Duration("grace", w.grace),
	)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("blob sweeper stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

// sweep performs one reconciliation pass
func (w *BlobSweeper) sweep(ctx context.Context) {
	blobs, err := w.blobs.List(ctx)
	if err != nil {
		w.logger.Error("failed to list blobs", slog.String("error", err.Error()))
		metrics.ObserveSweep("list_error")
		return
	}

	refs, err := w.appRepo.ReferencedResumeIDs(ctx)
	if err != nil {
		w.logger.Error("failed to list referenced resumes", slog.String("error", err.Error()))
		metrics.ObserveSweep("list_error")
		return
	}

	dryRun := featureflags.Enabled("sweep_dry_run")
	cutoff := time.Now().Add(-w.grace)
	orphans := 0
	for _, blob := range blobs {
		if _, referenced := refs[blob.ID]; referenced {
			continue
		}
		orphans++

		// Recent orphans may belong to a submission still in flight.
		if blob.CreatedAt.After(cutoff) {
			continue
		}

		if dryRun {
			w.logger.Info("orphaned blob (dry run)",
				slog.String("blob_id", blob.ID),
				slog.Time("created_at", blob.CreatedAt),
			)
			continue
		}

		w.removeOrphan(ctx, blob.ID)
	}

	metrics.SetOrphanedBlobs(orphans)
	if orphans > 0 {
		w.logger.Info("sweep pass completed",
			slog.Int("blobs", len(blobs)),
			slog.Int("orphans", orphans),
		)
	}
}

// removeOrphan deletes one orphaned blob with retry and backoff
func (w *BlobSweeper) removeOrphan(ctx context.Context, blobID string) {
	_, err := retry.Do(ctx, w.retryCfg, w.logger, "remove orphaned blob",
		func(ctx context.Context) (struct{}, error) {
			return struct{}{}, w.blobs.Remove(ctx, blobID)
		})
	if err != nil {
		w.logger.Error("failed to remove orphaned blob",
			slog.String("blob_id", blobID),
			slog.String("error", err.Error()),
		)
		metrics.ObserveSweep("error")
		return
	}

	w.logger.Info("orphaned blob removed", slog.String("blob_id", blobID))
	metrics.ObserveSweep("removed")
}
