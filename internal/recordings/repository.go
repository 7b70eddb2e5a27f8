package recordings

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/batchlms/backend/internal/models"
)

// Repository handles recording persistence plus the meeting-side lookups and
// updates the reconciler needs. It is the production Store implementation.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a recordings repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// FindMeetingByProviderRef returns the meeting whose provider id matches the
// raw or normalized form, or whose stored uuid matches. Historical rows may
// hold any of the three representations, hence the three-way OR. Returns
// (nil, nil) when no row matches.
func (r *Repository) FindMeetingByProviderRef(ctx context.Context, rawID, normalizedID, meetingUUID string) (*models.Meeting, error) {
	const q = `SELECT id, batch_id, COALESCE(provider_meeting_id,''), COALESCE(provider_meeting_uuid,'')
		FROM meetings
		WHERE provider_meeting_id = $1
		   OR provider_meeting_id = $2
		   OR (provider_meeting_uuid <> '' AND provider_meeting_uuid = $3)
		LIMIT 1`
	var m models.Meeting
	err := r.pool.QueryRow(ctx, q, rawID, normalizedID, meetingUUID).
		Scan(&m.ID, &m.BatchID, &m.ProviderMeetingID, &m.ProviderMeetingUUID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// CreateOrphanMeeting inserts a minimal meeting row for a webhook event that
// matched no local meeting. No batch association.
func (r *Repository) CreateOrphanMeeting(ctx context.Context, m *models.Meeting) error {
	const q = `INSERT INTO meetings (id, provider_meeting_id, provider_meeting_uuid, recording_file_id, recording_file_uuid, recording_status)
		VALUES (gen_random_uuid(), $1, NULLIF($2,''), NULLIF($3,''), NULLIF($4,''), NULLIF($5,''))
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, m.ProviderMeetingID, m.ProviderMeetingUUID, m.RecordingFileID, m.RecordingFileUUID, m.RecordingStatus).
		Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
}

// InsertRecording appends one recording row. Rows are never updated; repeated
// deliveries for the same file insert one row per event.
func (r *Repository) InsertRecording(ctx context.Context, rec *models.Recording) error {
	const q = `INSERT INTO recordings (id, meeting_id, provider_meeting_id, provider_meeting_uuid, recording_file_id, recording_file_uuid, status)
		VALUES (gen_random_uuid(), $1, $2, NULLIF($3,''), $4, NULLIF($5,''), $6)
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q, rec.MeetingID, rec.ProviderMeetingID, rec.ProviderMeetingUUID, rec.RecordingFileID, rec.RecordingFileUUID, rec.Status).
		Scan(&rec.ID, &rec.CreatedAt)
}

// UpdateMeetingRecordingState sets the meeting's denormalized recording
// fields to the latest reconciled event. A non-empty meetingUUID also sets
// the meeting uuid; an empty one leaves any stored uuid alone.
func (r *Repository) UpdateMeetingRecordingState(ctx context.Context, meetingID uuid.UUID, fileID, fileUUID, status, meetingUUID string) error {
	const q = `UPDATE meetings
		SET recording_file_id = $1,
		    recording_file_uuid = $2,
		    recording_status = $3,
		    provider_meeting_uuid = COALESCE(NULLIF($4,''), provider_meeting_uuid),
		    updated_at = NOW()
		WHERE id = $5`
	_, err := r.pool.Exec(ctx, q, fileID, fileUUID, status, meetingUUID, meetingID)
	return err
}

// ListByMeeting returns recordings owned by a meeting or sharing its
// provider meeting id (older rows predate local ownership resolution).
func (r *Repository) ListByMeeting(ctx context.Context, meetingID uuid.UUID, providerMeetingID string) ([]models.Recording, error) {
	const q = `SELECT id, meeting_id, COALESCE(provider_meeting_id,''), COALESCE(provider_meeting_uuid,''), COALESCE(recording_file_id,''), COALESCE(recording_file_uuid,''), COALESCE(status,''), created_at
		FROM recordings
		WHERE meeting_id = $1 OR (provider_meeting_id <> '' AND provider_meeting_id = $2)
		ORDER BY created_at`
	rows, err := r.pool.Query(ctx, q, meetingID, providerMeetingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Recording
	for rows.Next() {
		var rec models.Recording
		if err := rows.Scan(&rec.ID, &rec.MeetingID, &rec.ProviderMeetingID, &rec.ProviderMeetingUUID, &rec.RecordingFileID, &rec.RecordingFileUUID, &rec.Status, &rec.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, rec)
	}
	return list, rows.Err()
}

// DeleteByProviderMeetingID removes all recording rows for a provider
// meeting id. Used after the remote recordings were deleted.
func (r *Repository) DeleteByProviderMeetingID(ctx context.Context, providerMeetingID string) error {
	const q = `DELETE FROM recordings WHERE provider_meeting_id = $1`
	_, err := r.pool.Exec(ctx, q, providerMeetingID)
	return err
}

// ProviderIDsMissingUUID returns the distinct provider meeting ids of
// recording rows that never learned a meeting uuid.
func (r *Repository) ProviderIDsMissingUUID(ctx context.Context) ([]string, error) {
	const q = `SELECT DISTINCT provider_meeting_id FROM recordings
		WHERE (provider_meeting_uuid IS NULL OR provider_meeting_uuid = '')
		  AND provider_meeting_id IS NOT NULL AND provider_meeting_id <> ''`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// BackfillUUID stamps the discovered meeting uuid onto every meeting and
// recording row stored under either the raw or normalized provider id.
func (r *Repository) BackfillUUID(ctx context.Context, rawID, normalizedID, meetingUUID string) error {
	const qm = `UPDATE meetings SET provider_meeting_uuid = $1, updated_at = NOW()
		WHERE provider_meeting_id = $2 OR provider_meeting_id = $3`
	if _, err := r.pool.Exec(ctx, qm, meetingUUID, rawID, normalizedID); err != nil {
		return err
	}
	const qr = `UPDATE recordings SET provider_meeting_uuid = $1
		WHERE provider_meeting_id = $2 OR provider_meeting_id = $3`
	_, err := r.pool.Exec(ctx, qr, meetingUUID, rawID, normalizedID)
	return err
}
