package meetings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/batchlms/backend/internal/models"
	"github.com/batchlms/backend/internal/zoom"
)

type fakeZoomAPI struct {
	created       []struct{ topic, startTime string }
	createErr     error
	deletedIDs    []string
	deleteErr     error
	recDeletedIDs []string
	recDeleteErr  error
}

func (z *fakeZoomAPI) CreateMeeting(_ context.Context, topic, startTime string) (*zoom.Meeting, error) {
	if z.createErr != nil {
		return nil, z.createErr
	}
	z.created = append(z.created, struct{ topic, startTime string }{topic, startTime})
	return &zoom.Meeting{ID: 85746201234, UUID: "zm-uuid==", JoinURL: "https://zoom.example/j/85746201234"}, nil
}

func (z *fakeZoomAPI) GetRecordings(_ context.Context, meetingID string) (*zoom.MeetingRecordings, error) {
	return &zoom.MeetingRecordings{ID: zoom.FlexID(meetingID)}, nil
}

func (z *fakeZoomAPI) DeleteRecordings(_ context.Context, meetingID string) error {
	if z.recDeleteErr != nil {
		return z.recDeleteErr
	}
	z.recDeletedIDs = append(z.recDeletedIDs, meetingID)
	return nil
}

func (z *fakeZoomAPI) DeleteMeeting(_ context.Context, meetingID string) error {
	if z.deleteErr != nil {
		return z.deleteErr
	}
	z.deletedIDs = append(z.deletedIDs, meetingID)
	return nil
}

type fakeBatchGetter struct {
	batch *models.Batch
	err   error
}

func (g *fakeBatchGetter) GetByID(_ context.Context, _ uuid.UUID) (*models.Batch, error) {
	return g.batch, g.err
}

type fakeMeetingStore struct {
	meetings  map[uuid.UUID]*models.Meeting
	createErr error
	deleted   []uuid.UUID
	cleared   []string
}

func newFakeMeetingStore() *fakeMeetingStore {
	return &fakeMeetingStore{meetings: map[uuid.UUID]*models.Meeting{}}
}

func (s *fakeMeetingStore) Create(_ context.Context, m *models.Meeting) error {
	if s.createErr != nil {
		return s.createErr
	}
	m.ID = uuid.New()
	s.meetings[m.ID] = m
	return nil
}

func (s *fakeMeetingStore) GetByID(_ context.Context, id uuid.UUID) (*models.Meeting, error) {
	return s.meetings[id], nil
}

func (s *fakeMeetingStore) Delete(_ context.Context, id uuid.UUID) error {
	delete(s.meetings, id)
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *fakeMeetingStore) ClearRecordingState(_ context.Context, providerMeetingID string) error {
	s.cleared = append(s.cleared, providerMeetingID)
	return nil
}

type fakeRecordingStore struct {
	deleted []string
	err     error
}

func (s *fakeRecordingStore) DeleteByProviderMeetingID(_ context.Context, providerMeetingID string) error {
	if s.err != nil {
		return s.err
	}
	s.deleted = append(s.deleted, providerMeetingID)
	return nil
}

func newTestService(batch *models.Batch, zoomAPI *fakeZoomAPI) (*Service, *fakeMeetingStore, *fakeRecordingStore) {
	meetingStore := newFakeMeetingStore()
	recStore := &fakeRecordingStore{}
	svc := NewService(&fakeBatchGetter{batch: batch}, meetingStore, recStore, zoomAPI, nil)
	return svc, meetingStore, recStore
}

func TestCreateMeeting(t *testing.T) {
	batch := &models.Batch{ID: uuid.New(), Name: "Go Cohort", Code: "GO-7"}
	zoomAPI := &fakeZoomAPI{}
	svc, store, _ := newTestService(batch, zoomAPI)

	res, err := svc.Create(context.Background(), batch.ID, 3, 2, "2026-09-01", "18:30")
	require.NoError(t, err)

	require.Len(t, zoomAPI.created, 1)
	assert.Equal(t, "Go Cohort - Day 3 - Session 2", zoomAPI.created[0].topic)
	assert.Equal(t, "2026-09-01T18:30:00Z", zoomAPI.created[0].startTime)

	assert.Equal(t, "85746201234", res.ProviderMeetingID)
	assert.Equal(t, "zm-uuid==", res.ProviderMeetingUUID)
	assert.Equal(t, "https://zoom.example/j/85746201234", res.JoinURL)

	m := store.meetings[res.ID]
	require.NotNil(t, m)
	require.NotNil(t, m.BatchID)
	assert.Equal(t, batch.ID, *m.BatchID)
	assert.Equal(t, 3, m.Day)
	assert.Equal(t, 2, m.Session)
}

func TestCreateMeetingDefaultsStartToNow(t *testing.T) {
	batch := &models.Batch{ID: uuid.New(), Name: "Go Cohort"}
	zoomAPI := &fakeZoomAPI{}
	svc, _, _ := newTestService(batch, zoomAPI)
	fixed := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	_, err := svc.Create(context.Background(), batch.ID, 1, 1, "", "")
	require.NoError(t, err)
	require.Len(t, zoomAPI.created, 1)
	assert.Equal(t, "2026-08-30T10:00:00Z", zoomAPI.created[0].startTime)
}

func TestCreateMeetingUnknownBatchSkipsRemoteCall(t *testing.T) {
	zoomAPI := &fakeZoomAPI{}
	svc, _, _ := newTestService(nil, zoomAPI)

	_, err := svc.Create(context.Background(), uuid.New(), 1, 1, "", "")
	assert.ErrorIs(t, err, ErrBatchNotFound)
	assert.Empty(t, zoomAPI.created, "no Zoom meeting may be created for a missing batch")
}

func TestCreateMeetingInvalidDate(t *testing.T) {
	batch := &models.Batch{ID: uuid.New(), Name: "Go Cohort"}
	zoomAPI := &fakeZoomAPI{}
	svc, _, _ := newTestService(batch, zoomAPI)

	_, err := svc.Create(context.Background(), batch.ID, 1, 1, "not-a-date", "18:30")
	assert.Error(t, err)
	assert.Empty(t, zoomAPI.created)
}

func TestDeleteMeetingRemoteFirst(t *testing.T) {
	batch := &models.Batch{ID: uuid.New(), Name: "Go Cohort"}
	zoomAPI := &fakeZoomAPI{}
	svc, store, _ := newTestService(batch, zoomAPI)

	res, err := svc.Create(context.Background(), batch.ID, 1, 1, "", "")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), res.ID))
	assert.Equal(t, []string{"85746201234"}, zoomAPI.deletedIDs)
	assert.Nil(t, store.meetings[res.ID])
}

func TestDeleteMeetingAbortsOnRemoteFailure(t *testing.T) {
	batch := &models.Batch{ID: uuid.New(), Name: "Go Cohort"}
	zoomAPI := &fakeZoomAPI{}
	svc, store, _ := newTestService(batch, zoomAPI)

	res, err := svc.Create(context.Background(), batch.ID, 1, 1, "", "")
	require.NoError(t, err)

	zoomAPI.deleteErr = errors.New("zoom api: unexpected status 409")
	err = svc.Delete(context.Background(), res.ID)
	assert.Error(t, err)
	assert.NotNil(t, store.meetings[res.ID], "local row survives a remote failure")
}

func TestDeleteMeetingNotFound(t *testing.T) {
	svc, _, _ := newTestService(nil, &fakeZoomAPI{})
	err := svc.Delete(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrMeetingNotFound)
}

func TestDeleteRecordingsNormalizesAndCleansUp(t *testing.T) {
	zoomAPI := &fakeZoomAPI{}
	svc, store, recStore := newTestService(nil, zoomAPI)

	require.NoError(t, svc.DeleteRecordings(context.Background(), "85746201234.0"))
	assert.Equal(t, []string{"85746201234"}, zoomAPI.recDeletedIDs)
	assert.Equal(t, []string{"85746201234"}, recStore.deleted)
	assert.Equal(t, []string{"85746201234"}, store.cleared)
}

func TestDeleteRecordingsLocalCleanupBestEffort(t *testing.T) {
	zoomAPI := &fakeZoomAPI{}
	svc, store, recStore := newTestService(nil, zoomAPI)
	recStore.err = errors.New("db down")

	// Remote deletion succeeded, so the call succeeds; cleanup failure is
	// only logged.
	require.NoError(t, svc.DeleteRecordings(context.Background(), "123"))
	assert.Equal(t, []string{"123"}, zoomAPI.recDeletedIDs)
	assert.Equal(t, []string{"123"}, store.cleared)
}

func TestDeleteRecordingsRemoteFailureAborts(t *testing.T) {
	zoomAPI := &fakeZoomAPI{recDeleteErr: errors.New("zoom api: unexpected status 409")}
	svc, store, recStore := newTestService(nil, zoomAPI)

	err := svc.DeleteRecordings(context.Background(), "123")
	assert.Error(t, err)
	assert.Empty(t, recStore.deleted)
	assert.Empty(t, store.cleared)
}

func TestDeleteRecordingsEmptyID(t *testing.T) {
	svc, _, _ := newTestService(nil, &fakeZoomAPI{})
	assert.Error(t, svc.DeleteRecordings(context.Background(), ""))
}
