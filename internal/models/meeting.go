package models

import (
	"time"

	"github.com/google/uuid"
)

// Meeting is one scheduled Zoom session for a batch. BatchID is nil for
// meetings adopted from webhook events that matched no local row.
//
// ProviderMeetingID is stored as TEXT: the numeric Zoom id exceeds float
// precision and historical rows may carry a trailing ".0" artifact, so
// lookups always match raw and normalized forms. ProviderMeetingUUID is only
// learned once recording activity starts.
type Meeting struct {
	ID                  uuid.UUID  `json:"id"`
	BatchID             *uuid.UUID `json:"batchId,omitempty"`
	Day                 int        `json:"day"`
	Session             int        `json:"session"`
	ProviderMeetingID   string     `json:"zoomMeetingId,omitempty"`
	ProviderMeetingUUID string     `json:"zoomMeetingUUID,omitempty"`
	JoinURL             string     `json:"joinUrl,omitempty"`

	// Denormalized pointer to the most recently reconciled recording event.
	RecordingFileID   string `json:"recording_file_id,omitempty"`
	RecordingFileUUID string `json:"recording_file_uuid,omitempty"`
	RecordingStatus   string `json:"recording_status,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Recordings is populated by the batch meetings listing only.
	Recordings []Recording `json:"recordings,omitempty"`
}
