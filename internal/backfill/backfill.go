// Package backfill repairs historical recording rows that predate uuid
// tracking by asking Zoom for each meeting's recordings.
package backfill

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/batchlms/backend/internal/zoom"
)

// Store is the persistence surface of the backfill job.
type Store interface {
	ProviderIDsMissingUUID(ctx context.Context) ([]string, error)
	BackfillUUID(ctx context.Context, rawID, normalizedID, meetingUUID string) error
}

// RecordingsAPI is the slice of the Zoom client the job uses.
type RecordingsAPI interface {
	GetRecordings(ctx context.Context, meetingID string) (*zoom.MeetingRecordings, error)
}

// Job is the one-shot uuid backfill pass.
type Job struct {
	store  Store
	zoom   RecordingsAPI
	logger *zap.Logger
}

// NewJob creates a backfill job.
func NewJob(store Store, zoomAPI RecordingsAPI, logger *zap.Logger) *Job {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Job{store: store, zoom: zoomAPI, logger: logger}
}

// Run walks every provider meeting id missing a uuid and stamps the uuid
// Zoom reports onto the matching meeting and recording rows. Per-item
// failures are logged and skipped; only a failure to enumerate the ids
// aborts the job.
func (j *Job) Run(ctx context.Context) error {
	ids, err := j.store.ProviderIDsMissingUUID(ctx)
	if err != nil {
		return fmt.Errorf("list provider ids: %w", err)
	}

	for _, rawID := range ids {
		meetingID := zoom.NormalizeMeetingID(rawID)
		if meetingID == "" {
			continue
		}
		j.logger.Info("looking up zoom meeting recordings", zap.String("meeting_id", meetingID))

		recs, err := j.zoom.GetRecordings(ctx, meetingID)
		if err != nil {
			j.logger.Error("zoom lookup failed", zap.Error(err), zap.String("meeting_id", meetingID))
			continue
		}
		meetingUUID := recs.ResolvedUUID()
		if meetingUUID == "" {
			j.logger.Warn("no uuid returned for meeting", zap.String("meeting_id", meetingID))
			continue
		}

		// Historical rows may hold either the raw or the normalized id.
		if err := j.store.BackfillUUID(ctx, rawID, meetingID, meetingUUID); err != nil {
			j.logger.Error("backfill update failed", zap.Error(err), zap.String("meeting_id", meetingID))
			continue
		}
		j.logger.Info("meeting uuid backfilled", zap.String("meeting_id", meetingID), zap.String("uuid", meetingUUID))
	}

	j.logger.Info("backfill complete", zap.Int("candidates", len(ids)))
	return nil
}
