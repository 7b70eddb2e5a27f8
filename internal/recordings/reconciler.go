package recordings

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/batchlms/backend/internal/models"
	"github.com/batchlms/backend/internal/zoom"
)

// Store is the persistence surface the reconciler needs. Implemented by
// Repository; tests supply in-memory fakes.
type Store interface {
	FindMeetingByProviderRef(ctx context.Context, rawID, normalizedID, meetingUUID string) (*models.Meeting, error)
	CreateOrphanMeeting(ctx context.Context, m *models.Meeting) error
	InsertRecording(ctx context.Context, rec *models.Recording) error
	UpdateMeetingRecordingState(ctx context.Context, meetingID uuid.UUID, fileID, fileUUID, status, meetingUUID string) error
}

// Reconciler correlates verified webhook recording events with local
// meetings and appends recording rows.
type Reconciler struct {
	store  Store
	logger *zap.Logger
}

// NewReconciler creates a reconciler.
func NewReconciler(store Store, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{store: store, logger: logger}
}

// ProcessEvent handles one recording event. Each file in the payload is
// processed independently: a failure on one file is logged and does not stop
// its siblings. Non-recording events and events without files are ignored.
func (r *Reconciler) ProcessEvent(ctx context.Context, ev *zoom.WebhookEvent) {
	if !ev.IsRecordingEvent() {
		return
	}
	meetingRef := ev.Payload.MeetingID()
	meetingUUID := ev.Payload.MeetingUUID()
	files := ev.Payload.Object.RecordingFiles
	if meetingRef == "" || len(files) == 0 {
		return
	}

	normalized := zoom.NormalizeMeetingID(meetingRef)
	r.logger.Info("reconciling recording event",
		zap.String("event", ev.Event),
		zap.String("meeting_id", meetingRef),
		zap.Int("files", len(files)),
	)

	for i := range files {
		if err := r.processFile(ctx, ev.Event, meetingRef, normalized, meetingUUID, &files[i]); err != nil {
			r.logger.Error("reconcile recording file failed",
				zap.Error(err),
				zap.String("meeting_id", meetingRef),
				zap.String("file_id", files[i].ResolvedID()),
			)
		}
	}
}

func (r *Reconciler) processFile(ctx context.Context, event, rawID, normalizedID, meetingUUID string, file *zoom.RecordingFile) error {
	fileID := file.ResolvedID()
	if fileID == "" {
		// No usable identifier under any alias; nothing to correlate.
		return nil
	}
	fileUUID := file.ResolvedUUID()

	meeting, err := r.store.FindMeetingByProviderRef(ctx, rawID, normalizedID, meetingUUID)
	if err != nil {
		return err
	}

	if meeting == nil {
		// Orphan adoption: the event arrived before (or without) a locally
		// scheduled meeting. Create a minimal row so the recording has an owner.
		meeting = &models.Meeting{
			ProviderMeetingID:   rawID,
			ProviderMeetingUUID: meetingUUID,
			RecordingFileID:     fileID,
			RecordingFileUUID:   fileUUID,
			RecordingStatus:     event,
		}
		if err := r.store.CreateOrphanMeeting(ctx, meeting); err != nil {
			return err
		}
	} else {
		if err := r.store.UpdateMeetingRecordingState(ctx, meeting.ID, fileID, fileUUID, event, meetingUUID); err != nil {
			return err
		}
	}

	meetingID := meeting.ID
	rec := &models.Recording{
		MeetingID:           &meetingID,
		ProviderMeetingID:   rawID,
		ProviderMeetingUUID: meetingUUID,
		RecordingFileID:     fileID,
		RecordingFileUUID:   fileUUID,
		Status:              event,
	}
	return r.store.InsertRecording(ctx, rec)
}
