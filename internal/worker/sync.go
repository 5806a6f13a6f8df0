package worker

import (
	"context"

	"github.com/timmy/docmill/internal/domain"
	"github.com/timmy/docmill/internal/logger"
)

// Sync scans all registered sources, selects those whose stored sync
// frequency equals frequency, and re-runs remote ingestion in sync mode for
// each using the record's stored configuration. Every source is isolated: one
// failed re-sync is counted and the scan continues. Non-matching sources are
// never touched.
func (w *Worker) Sync(ctx context.Context, frequency, directory string) (domain.SyncStats, error) {
	var stats domain.SyncStats

	sources, err := w.sources.List(ctx)
	if err != nil {
		return stats, err
	}

	for _, src := range sources {
		if src.SyncFrequency != frequency {
			continue
		}

		stats.TotalSyncCount++
		if err := w.syncSource(ctx, src, frequency, directory); err != nil {
			stats.SyncFailure++
		} else {
			stats.SyncSuccess++
		}
	}

	w.log.WithFields(logger.Fields{
		"frequency": frequency,
		"total":     stats.TotalSyncCount,
		"success":   stats.SyncSuccess,
		"failure":   stats.SyncFailure,
	}).Info("Sync batch completed")

	return stats, nil
}

// syncSource wraps one source's re-sync, converting any failure into an error
// value the scheduler can count without stopping the batch.
func (w *Worker) syncSource(ctx context.Context, src domain.Source, frequency, directory string) error {
	_, err := w.RemoteIngest(ctx, RemoteParams{
		Config:        src.RemoteConfig,
		JobName:       src.Name,
		User:          src.User,
		Loader:        src.Kind,
		Directory:     directory,
		Retriever:     src.Retriever,
		SyncFrequency: frequency,
		Mode:          ModeSync,
		DocID:         src.ID,
	}, nil)
	if err != nil {
		w.log.WithFields(logger.Fields{
			logger.FieldSource: src.ID,
			logger.FieldUser:   src.User,
		}).WithError(err).Error("Error during sync")
		return err
	}
	return nil
}
