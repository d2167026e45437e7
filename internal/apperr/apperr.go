// Package apperr defines the error taxonomy surfaced to callers (spec §6,
// §7): input errors, degraded-outcome markers, and the one transport-level
// wrapper for per-vehicle partial failure.
package apperr

import (
	"errors"
	"fmt"
)

// Sentinel errors, checked with errors.Is. Wrap with fmt.Errorf("op: %w", ...)
// to add context without losing the sentinel, matching the teacher's
// "op: sub-step: %w" chaining style.
var (
	ErrInfeasible          = errors.New("infeasible")
	ErrNoSolution          = errors.New("no solution")
	ErrBadInput            = errors.New("bad input")
	ErrStaleMatrix         = errors.New("stale matrix")
	ErrStaleReference      = errors.New("stale reference")
	ErrProviderUnavailable = errors.New("provider unavailable")
	ErrNotFound            = errors.New("not found")
)

// PartialMaterializationError is returned by a materialization operation
// when some vehicles succeeded and others failed; it carries the failed
// vehicle ids so the caller does not have to re-parse the artifact to find
// them.
type PartialMaterializationError struct {
	FailedVehicleIDs []string
}

func (e *PartialMaterializationError) Error() string {
	return fmt.Sprintf("partial materialization: %d vehicle(s) failed: %v", len(e.FailedVehicleIDs), e.FailedVehicleIDs)
}

func NewPartialMaterialization(failedVehicleIDs []string) *PartialMaterializationError {
	return &PartialMaterializationError{FailedVehicleIDs: failedVehicleIDs}
}
