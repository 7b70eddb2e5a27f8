package meetings

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/batchlms/backend/internal/models"
)

// Repository handles meeting persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a meetings repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a scheduled meeting for a batch.
func (r *Repository) Create(ctx context.Context, m *models.Meeting) error {
	const q = `INSERT INTO meetings (id, batch_id, day, session, provider_meeting_id, provider_meeting_uuid, join_url)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, NULLIF($5,''), $6)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, m.BatchID, m.Day, m.Session, m.ProviderMeetingID, m.ProviderMeetingUUID, m.JoinURL).
		Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
}

// GetByID returns a meeting by local id, or (nil, nil) when absent.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Meeting, error) {
	const q = `SELECT id, batch_id, day, session, COALESCE(provider_meeting_id,''), COALESCE(provider_meeting_uuid,''), COALESCE(join_url,''),
			COALESCE(recording_file_id,''), COALESCE(recording_file_uuid,''), COALESCE(recording_status,''), created_at, updated_at
		FROM meetings WHERE id = $1`
	var m models.Meeting
	err := r.pool.QueryRow(ctx, q, id).Scan(&m.ID, &m.BatchID, &m.Day, &m.Session, &m.ProviderMeetingID, &m.ProviderMeetingUUID, &m.JoinURL,
		&m.RecordingFileID, &m.RecordingFileUUID, &m.RecordingStatus, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// ListByBatch returns all meetings owned by a batch.
func (r *Repository) ListByBatch(ctx context.Context, batchID uuid.UUID) ([]models.Meeting, error) {
	const q = `SELECT id, batch_id, day, session, COALESCE(provider_meeting_id,''), COALESCE(provider_meeting_uuid,''), COALESCE(join_url,''),
			COALESCE(recording_file_id,''), COALESCE(recording_file_uuid,''), COALESCE(recording_status,''), created_at, updated_at
		FROM meetings WHERE batch_id = $1 ORDER BY day, session, created_at`
	rows, err := r.pool.Query(ctx, q, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Meeting
	for rows.Next() {
		var m models.Meeting
		if err := rows.Scan(&m.ID, &m.BatchID, &m.Day, &m.Session, &m.ProviderMeetingID, &m.ProviderMeetingUUID, &m.JoinURL,
			&m.RecordingFileID, &m.RecordingFileUUID, &m.RecordingStatus, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// Delete removes a meeting by local id.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM meetings WHERE id = $1`
	_, err := r.pool.Exec(ctx, q, id)
	return err
}

// ClearRecordingState nulls the denormalized recording pointer on every
// meeting stored under a provider meeting id, after the remote recordings
// were deleted.
func (r *Repository) ClearRecordingState(ctx context.Context, providerMeetingID string) error {
	const q = `UPDATE meetings SET recording_file_id = NULL, recording_status = NULL, updated_at = NOW()
		WHERE provider_meeting_id = $1`
	_, err := r.pool.Exec(ctx, q, providerMeetingID)
	return err
}
