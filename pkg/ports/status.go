package ports

import (
	"context"

	"github.com/tillgrid/tillgrid/pkg/domain"
)

// LiveChannel is a live push channel registered per device for status
// updates. Push must not block the caller; slow consumers drop.
type LiveChannel interface {
	Push(report domain.StatusReport)
}

// StatusStore persists the latest report per source so a restarted process
// can answer status queries before sources report again. Load signals an
// unknown source through the ok flag, not an error: never having reported
// is not a failure.
type StatusStore interface {
	Save(ctx context.Context, report domain.StatusReport) error
	Load(ctx context.Context, sourceID string) (domain.StatusReport, bool, error)
}
