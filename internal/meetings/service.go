package meetings

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/batchlms/backend/internal/models"
	"github.com/batchlms/backend/internal/zoom"
)

// Sentinel errors mapped to 404 by handlers.
var (
	ErrBatchNotFound   = errors.New("batch not found")
	ErrMeetingNotFound = errors.New("meeting not found")
)

// ZoomAPI is the slice of the Zoom client the lifecycle service uses.
// DeleteMeeting and DeleteRecordings already treat remote 404/400 as success.
type ZoomAPI interface {
	CreateMeeting(ctx context.Context, topic, startTime string) (*zoom.Meeting, error)
	GetRecordings(ctx context.Context, meetingID string) (*zoom.MeetingRecordings, error)
	DeleteRecordings(ctx context.Context, meetingID string) error
	DeleteMeeting(ctx context.Context, meetingID string) error
}

// BatchGetter looks up the owning batch before any remote call is made.
type BatchGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Batch, error)
}

// MeetingStore is the meeting persistence surface of the lifecycle service.
type MeetingStore interface {
	Create(ctx context.Context, m *models.Meeting) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Meeting, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ClearRecordingState(ctx context.Context, providerMeetingID string) error
}

// RecordingStore is the recording-row cleanup surface of the lifecycle service.
type RecordingStore interface {
	DeleteByProviderMeetingID(ctx context.Context, providerMeetingID string) error
}

// CreateResult is returned from meeting creation.
type CreateResult struct {
	ID                  uuid.UUID `json:"id"`
	ProviderMeetingID   string    `json:"zoomMeetingId"`
	ProviderMeetingUUID string    `json:"zoomMeetingUUID,omitempty"`
	JoinURL             string    `json:"joinUrl"`
}

// Service orchestrates meeting creation and deletion across Zoom and local
// storage.
type Service struct {
	batches    BatchGetter
	meetings   MeetingStore
	recordings RecordingStore
	zoom       ZoomAPI
	logger     *zap.Logger
	now        func() time.Time
}

// NewService creates a meeting lifecycle service.
func NewService(batches BatchGetter, meetings MeetingStore, recordings RecordingStore, zoomAPI ZoomAPI, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		batches:    batches,
		meetings:   meetings,
		recordings: recordings,
		zoom:       zoomAPI,
		logger:     logger,
		now:        time.Now,
	}
}

// Create schedules a Zoom meeting for a batch and persists the local row.
// date ("2006-01-02") and clock ("15:04") are optional; when either is
// missing the meeting starts now. The batch must exist locally before any
// remote call, so a bad batch id cannot leave an orphaned Zoom meeting.
func (s *Service) Create(ctx context.Context, batchID uuid.UUID, day, session int, date, clock string) (*CreateResult, error) {
	batch, err := s.batches.GetByID(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("lookup batch: %w", err)
	}
	if batch == nil {
		return nil, ErrBatchNotFound
	}

	topic := fmt.Sprintf("%s - Day %d - Session %d", batch.Name, day, session)

	startTime := s.now().UTC().Format(time.RFC3339)
	if date != "" && clock != "" {
		t, err := time.Parse("2006-01-02T15:04", date+"T"+clock)
		if err != nil {
			return nil, fmt.Errorf("invalid date/time: %w", err)
		}
		startTime = t.UTC().Format(time.RFC3339)
	}

	meeting, err := s.zoom.CreateMeeting(ctx, topic, startTime)
	if err != nil {
		return nil, err
	}

	m := &models.Meeting{
		BatchID: &batchID,
		Day:     day,
		Session: session,
		// Stored as text so the id survives numeric round-trips intact.
		ProviderMeetingID:   strconv.FormatInt(meeting.ID, 10),
		ProviderMeetingUUID: meeting.UUID,
		JoinURL:             meeting.JoinURL,
	}
	if err := s.meetings.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("persist meeting: %w", err)
	}

	s.logger.Info("meeting created",
		zap.String("meeting_id", m.ID.String()),
		zap.String("provider_meeting_id", m.ProviderMeetingID),
		zap.String("topic", topic),
	)
	return &CreateResult{
		ID:                  m.ID,
		ProviderMeetingID:   m.ProviderMeetingID,
		ProviderMeetingUUID: m.ProviderMeetingUUID,
		JoinURL:             m.JoinURL,
	}, nil
}

// Delete removes the meeting on Zoom first, then locally. The Zoom client
// treats an already-gone meeting as success; any other remote failure aborts
// before the local row is touched, keeping the two sides consistent.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	m, err := s.meetings.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("lookup meeting: %w", err)
	}
	if m == nil {
		return ErrMeetingNotFound
	}

	if err := s.zoom.DeleteMeeting(ctx, zoom.NormalizeMeetingID(m.ProviderMeetingID)); err != nil {
		return err
	}
	if err := s.meetings.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete local meeting: %w", err)
	}
	s.logger.Info("meeting deleted", zap.String("meeting_id", id.String()))
	return nil
}

// DeleteRecordings deletes all cloud recordings for a provider meeting id,
// then cleans up local state best-effort. The remote deletion is the
// authoritative step; local cleanup failures are logged, not propagated.
func (s *Service) DeleteRecordings(ctx context.Context, providerMeetingID string) error {
	mid := zoom.NormalizeMeetingID(providerMeetingID)
	if mid == "" {
		return fmt.Errorf("meeting id missing")
	}

	if err := s.zoom.DeleteRecordings(ctx, mid); err != nil {
		return err
	}

	if err := s.recordings.DeleteByProviderMeetingID(ctx, mid); err != nil {
		s.logger.Error("delete local recordings failed", zap.Error(err), zap.String("provider_meeting_id", mid))
	}
	if err := s.meetings.ClearRecordingState(ctx, mid); err != nil {
		s.logger.Error("clear meeting recording fields failed", zap.Error(err), zap.String("provider_meeting_id", mid))
	}
	return nil
}

// ListProviderRecordings proxies the Zoom recordings listing for a meeting.
func (s *Service) ListProviderRecordings(ctx context.Context, providerMeetingID string) (*zoom.MeetingRecordings, error) {
	return s.zoom.GetRecordings(ctx, zoom.NormalizeMeetingID(providerMeetingID))
}
