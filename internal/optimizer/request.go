// Package optimizer implements the constrained routing search of spec §4.1:
// a capacitated, single-depot, multi-vehicle construct-then-improve search
// over a time/distance matrix pair, with a primary objective, up to two
// tie-breakers, and weighted additional terms.
package optimizer

import (
	"context"
	"time"

	"vrp-planner/internal/domain"
)

// Request is everything the optimizer needs to produce an ordered plan.
type Request struct {
	// Ctx bounds the improvement search: improve.go's loop checks it between
	// sweeps so a caller's cancellation or deadline stops the search early,
	// same as TimeBudget but driven by the caller rather than a wall clock.
	// A nil Ctx behaves as context.Background() (never cancels).
	Ctx          context.Context
	Stops        domain.StopSet
	Matrix       domain.MatrixPair
	VehicleCount int
	Capacity     int
	Mode         domain.RouteMode
	Objective    domain.ObjectiveSpec
	// TimeBudget bounds the local-search phase; construction always runs to
	// completion. Defaults to 60s per spec §4.1 if zero.
	TimeBudget time.Duration
}

func (r Request) ctx() context.Context {
	if r.Ctx == nil {
		return context.Background()
	}
	return r.Ctx
}

func (r Request) timeBudget() time.Duration {
	if r.TimeBudget <= 0 {
		return 60 * time.Second
	}
	return r.TimeBudget
}
