package domain

import "time"

// StatusUnknown is the payload of the sentinel report returned for a source
// that has never reported.
const StatusUnknown = "UNKNOWN"

// StatusReport is the latest health/state payload for a given source.
// Only the most recent report per source is retained.
type StatusReport struct {
	SourceID   string    `json:"source_id"`
	Payload    string    `json:"payload"`
	ReportedAt time.Time `json:"reported_at"`
}

// UnknownStatus returns the fixed sentinel report for a source that has no
// cached status yet. Callers always receive a report, never an error.
func UnknownStatus(sourceID string) StatusReport {
	return StatusReport{SourceID: sourceID, Payload: StatusUnknown}
}

// Unknown reports whether r is the never-reported sentinel.
func (r StatusReport) Unknown() bool {
	return r.Payload == StatusUnknown && r.ReportedAt.IsZero()
}
