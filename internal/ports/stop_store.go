package ports

import (
	"context"

	"vrp-planner/internal/domain"
)

// StopStore is the boundary for retrieving the current stop set of a
// project. Read-only to the core; the core reads a snapshot at the start of
// optimization and at the start of materialization and does not re-read
// mid-operation (spec §5).
type StopStore interface {
	CurrentStops(ctx context.Context, projectID string) (domain.StopSet, error)
}

// MatrixStore is the boundary for retrieving the project's time/distance
// matrix pair. Matrix acquisition itself is out of scope (spec §2 item 1);
// the core only consumes an already-produced matrix pair.
type MatrixStore interface {
	CurrentMatrix(ctx context.Context, projectID string) (domain.MatrixPair, error)
}
