package batches

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/batchlms/backend/internal/models"
	"github.com/batchlms/backend/internal/vimeo"
)

// ErrBatchNotFound is returned when the batch does not exist locally.
var ErrBatchNotFound = errors.New("batch not found")

// BatchStore is the persistence surface of the deletion orchestrator.
type BatchStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Batch, error)
	DeleteCascade(ctx context.Context, batchID uuid.UUID) (int64, error)
}

// VideoCatalog is the slice of the Vimeo client the orchestrator uses.
type VideoCatalog interface {
	ListVideos(ctx context.Context) ([]vimeo.Video, error)
	DeleteVideo(ctx context.Context, videoID string) error
}

// VideoFailure records one video that could not be deleted.
type VideoFailure struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

// DeleteReport is the per-item outcome of a batch deletion.
type DeleteReport struct {
	Deleted      int64          `json:"deleted"`
	VimeoDeleted []string       `json:"vimeoDeleted"`
	VimeoFailed  []VideoFailure `json:"vimeoFailed"`
}

// Deleter is the batch deletion cascade: remote catalog videos first
// (best-effort, per-item), then the transactional local delete of meetings
// and the batch. Recording rows are deliberately untouched.
type Deleter struct {
	store  BatchStore
	videos VideoCatalog
	logger *zap.Logger
}

// NewDeleter creates a batch deletion orchestrator.
func NewDeleter(store BatchStore, videos VideoCatalog, logger *zap.Logger) *Deleter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Deleter{store: store, videos: videos, logger: logger}
}

// Delete runs the cascade. A failed catalog fetch or per-video deletion
// never blocks the local delete; a failure in the local transaction rolls
// everything local back and is returned, with whatever remote deletions
// already happened reflected in the report.
func (d *Deleter) Delete(ctx context.Context, batchID uuid.UUID) (*DeleteReport, error) {
	batch, err := d.store.GetByID(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, ErrBatchNotFound
	}

	report := &DeleteReport{
		VimeoDeleted: []string{},
		VimeoFailed:  []VideoFailure{},
	}

	videos, err := d.videos.ListVideos(ctx)
	if err != nil {
		d.logger.Error("fetch vimeo videos for batch deletion failed", zap.Error(err), zap.String("batch_id", batchID.String()))
	} else {
		tokens := []string{batch.Name, batch.Code}
		for _, v := range videos {
			if !vimeo.MatchesTokens(v, tokens) {
				continue
			}
			vid := v.VideoID()
			if err := d.videos.DeleteVideo(ctx, vid); err != nil {
				d.logger.Error("delete vimeo video for batch failed",
					zap.Error(err), zap.String("batch_id", batchID.String()), zap.String("video_id", vid))
				report.VimeoFailed = append(report.VimeoFailed, VideoFailure{ID: vid, Error: err.Error()})
				continue
			}
			report.VimeoDeleted = append(report.VimeoDeleted, vid)
		}
	}

	deleted, err := d.store.DeleteCascade(ctx, batchID)
	if err != nil {
		return report, err
	}
	report.Deleted = deleted

	d.logger.Info("batch deleted",
		zap.String("batch_id", batchID.String()),
		zap.Int("vimeo_deleted", len(report.VimeoDeleted)),
		zap.Int("vimeo_failed", len(report.VimeoFailed)),
	)
	return report, nil
}
