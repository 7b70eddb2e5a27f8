package models

import (
	"time"

	"github.com/google/uuid"
)

// Batch is a training cohort. All descriptive fields are free text entered by
// the admin; name and code double as the tokens used to match Vimeo videos.
type Batch struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Code     string    `json:"code"`
	Client   string    `json:"client,omitempty"`
	Mode     string    `json:"mode,omitempty"`
	Trainer  string    `json:"trainer,omitempty"`
	Admin    string    `json:"admin,omitempty"`
	Location string    `json:"location,omitempty"`
	Timing   string    `json:"timing,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
