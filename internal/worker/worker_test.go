package worker

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/batchlms/backend/internal/models"
	"github.com/batchlms/backend/internal/recordings"
	"github.com/batchlms/backend/pkg/queue"
)

type memStore struct {
	meetings   []*models.Meeting
	recordings []*models.Recording
}

func (s *memStore) FindMeetingByProviderRef(_ context.Context, rawID, normalizedID, meetingUUID string) (*models.Meeting, error) {
	for _, m := range s.meetings {
		if m.ProviderMeetingID == rawID || m.ProviderMeetingID == normalizedID {
			return m, nil
		}
		if meetingUUID != "" && m.ProviderMeetingUUID == meetingUUID {
			return m, nil
		}
	}
	return nil, nil
}

func (s *memStore) CreateOrphanMeeting(_ context.Context, m *models.Meeting) error {
	m.ID = uuid.New()
	s.meetings = append(s.meetings, m)
	return nil
}

func (s *memStore) InsertRecording(_ context.Context, rec *models.Recording) error {
	s.recordings = append(s.recordings, rec)
	return nil
}

func (s *memStore) UpdateMeetingRecordingState(_ context.Context, _ uuid.UUID, _, _, _, _ string) error {
	return nil
}

func reconcileJob(t *testing.T, event string) *queue.Job {
	t.Helper()
	// Built by hand rather than via json.Marshal: Marshal validates
	// json.RawMessage, which would reject the deliberately malformed
	// events before they ever reach Process.
	payload := json.RawMessage(`{"event":` + event + `}`)
	return &queue.Job{ID: uuid.New().String(), Type: queue.JobTypeReconcile, Payload: payload}
}

func TestProcessReconcileJob(t *testing.T) {
	store := &memStore{}
	p := NewReconcileProcessor(recordings.NewReconciler(store, nil), nil, nil)

	job := reconcileJob(t, `{
		"event": "recording.completed",
		"payload": {
			"uuid": "meet-uuid==",
			"object": {
				"id": 85746201234,
				"recording_files": [{"id": "file-1", "uuid": "file-uuid-1"}]
			}
		}
	}`)

	require.NoError(t, p.Process(context.Background(), job))
	require.Len(t, store.recordings, 1)
	assert.Equal(t, "85746201234", store.recordings[0].ProviderMeetingID)
	assert.Equal(t, "file-1", store.recordings[0].RecordingFileID)
}

func TestProcessRejectsUnknownJobType(t *testing.T) {
	p := NewReconcileProcessor(recordings.NewReconciler(&memStore{}, nil), nil, nil)
	err := p.Process(context.Background(), &queue.Job{Type: "send_email"})
	assert.Error(t, err)
}

func TestProcessRejectsMalformedEvent(t *testing.T) {
	store := &memStore{}
	p := NewReconcileProcessor(recordings.NewReconciler(store, nil), nil, nil)

	err := p.Process(context.Background(), reconcileJob(t, `{not json`))
	assert.Error(t, err)
	assert.Empty(t, store.recordings)
}
