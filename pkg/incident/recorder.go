package incident

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tillgrid/tillgrid/pkg/domain"
)

// Recorder is the default incident collaborator: it records each incident in
// memory and renders it as an error toast carrying the incident id, never the
// raw failure text. Deployments with a real incident backend plug their own
// ports.IncidentService instead.
type Recorder struct {
	mu        sync.Mutex
	incidents []domain.Incident
	logger    *slog.Logger
}

// NewRecorder creates an in-memory incident recorder.
func NewRecorder(logger *slog.Logger) *Recorder {
	return &Recorder{logger: logger}
}

// CreateIncident implements ports.IncidentService.
func (r *Recorder) CreateIncident(ctx context.Context, failure error, deviceID string) (domain.Message, error) {
	inc := domain.NewIncident(failure, deviceID)

	r.mu.Lock()
	r.incidents = append(r.incidents, inc)
	r.mu.Unlock()

	r.logger.Error("incident recorded",
		"incident", inc.ID, "device", deviceID, "error", failure)

	return &domain.Toast{
		DeviceID: deviceID,
		Text:     fmt.Sprintf("Something went wrong (incident %s).", inc.ID),
		Severity: domain.ToastError,
	}, nil
}

// Incidents returns a copy of all recorded incidents, oldest first.
func (r *Recorder) Incidents() []domain.Incident {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Incident, len(r.incidents))
	copy(out, r.incidents)
	return out
}
