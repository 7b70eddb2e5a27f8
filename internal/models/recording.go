package models

import (
	"time"

	"github.com/google/uuid"
)

// Recording is one recording file reported by a webhook event. Rows are
// append-only: every delivery inserts a new row, so the same file id can
// appear once per event (started, completed, stopped). Status holds the raw
// event type, e.g. "recording.completed".
type Recording struct {
	ID                  uuid.UUID  `json:"id"`
	MeetingID           *uuid.UUID `json:"meetingLocalId,omitempty"`
	ProviderMeetingID   string     `json:"zoomMeetingId,omitempty"`
	ProviderMeetingUUID string     `json:"zoomMeetingUUID,omitempty"`
	RecordingFileID     string     `json:"recording_file_id,omitempty"`
	RecordingFileUUID   string     `json:"recording_file_uuid,omitempty"`
	Status              string     `json:"status,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
