package zoom

import (
	"encoding/json"
	"strings"
)

// EventURLValidation is Zoom's endpoint URL validation handshake event.
const EventURLValidation = "endpoint.url_validation"

// FlexID decodes a JSON field that Zoom sends either as a number or a
// string. The literal is preserved as text (no float round-trip), so large
// meeting ids keep their exact digits.
type FlexID string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = FlexID(n.String())
	return nil
}

// WebhookEvent is the body of a Zoom webhook delivery.
type WebhookEvent struct {
	Event   string         `json:"event"`
	Payload WebhookPayload `json:"payload"`
}

// WebhookPayload is the payload portion of a webhook event.
type WebhookPayload struct {
	PlainToken string        `json:"plainToken,omitempty"`
	UUID       string        `json:"uuid,omitempty"`
	Object     WebhookObject `json:"object"`
}

// WebhookObject describes the meeting the event refers to. Zoom is not
// consistent about which identifier field it populates, so accessors below
// check a prioritized alias list.
type WebhookObject struct {
	ID             FlexID          `json:"id"`
	MeetingID      FlexID          `json:"meeting_id"`
	UUID           string          `json:"uuid"`
	MeetingUUID    string          `json:"meeting_uuid"`
	Topic          string          `json:"topic,omitempty"`
	RecordingFiles []RecordingFile `json:"recording_files"`
}

// RecordingFile is one cloud recording file in an event payload. Identifier
// aliases vary by event type.
type RecordingFile struct {
	ID            string `json:"id"`
	UUID          string `json:"uuid"`
	FileID        string `json:"file_id"`
	RecordingID   string `json:"recording_id"`
	RecordingUUID string `json:"recording_uuid"`
	FileType      string `json:"file_type,omitempty"`
	Status        string `json:"status,omitempty"`
}

// IsRecordingEvent reports whether the event is recording-related.
func (e *WebhookEvent) IsRecordingEvent() bool {
	return strings.HasPrefix(e.Event, "recording.")
}

// MeetingID returns the remote meeting identifier, checking the object id,
// then meeting_id, then the uuid.
func (p *WebhookPayload) MeetingID() string {
	if p.Object.ID != "" {
		return string(p.Object.ID)
	}
	if p.Object.MeetingID != "" {
		return string(p.Object.MeetingID)
	}
	return p.Object.UUID
}

// MeetingUUID returns the stable meeting uuid, checking the payload uuid,
// then the object uuid, then meeting_uuid. Empty when the event carries none.
func (p *WebhookPayload) MeetingUUID() string {
	if p.UUID != "" {
		return p.UUID
	}
	if p.Object.UUID != "" {
		return p.Object.UUID
	}
	return p.Object.MeetingUUID
}

// ResolvedID returns the recording file identifier, or "" when no alias is set.
func (f *RecordingFile) ResolvedID() string {
	switch {
	case f.ID != "":
		return f.ID
	case f.FileID != "":
		return f.FileID
	default:
		return f.RecordingID
	}
}

// ResolvedUUID returns the recording file uuid, falling back through every
// alias down to the plain file id.
func (f *RecordingFile) ResolvedUUID() string {
	for _, v := range []string{f.UUID, f.RecordingUUID, f.RecordingID, f.FileID, f.ID} {
		if v != "" {
			return v
		}
	}
	return ""
}
