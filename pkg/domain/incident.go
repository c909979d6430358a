package domain

import (
	"time"

	"github.com/google/uuid"
)

// Incident is the server-side record of a failure caught during flow
// execution, bound to the device it originated from. The incident service
// resolves it to exactly one Message variant for presentation.
type Incident struct {
	ID         string    `json:"id"`
	DeviceID   string    `json:"device_id"`
	Failure    error     `json:"-"`
	Summary    string    `json:"summary"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewIncident builds an incident from a caught failure and its device context.
func NewIncident(failure error, deviceID string) Incident {
	summary := ""
	if failure != nil {
		summary = failure.Error()
	}
	return Incident{
		ID:         uuid.NewString(),
		DeviceID:   deviceID,
		Failure:    failure,
		Summary:    summary,
		OccurredAt: time.Now().UTC(),
	}
}

// ErrorEvent is published on the process-wide event bus once per handled
// failure, after presentation.
type ErrorEvent struct {
	ApplicationID string `json:"application_id"`
	DeviceID      string `json:"device_id"`
	Failure       error  `json:"-"`
}
