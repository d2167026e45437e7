package optimizer

import (
	"fmt"

	"vrp-planner/internal/apperr"
	"vrp-planner/internal/domain"
)

// validate checks matrix shape and input sanity before any solve attempt,
// grounded on the prototype's validate_matrix_for_ortools /
// validate_vrp_data pre-solve guard (vrp_solver.py).
func validate(req Request) error {
	n := len(req.Stops.Stops)

	if req.VehicleCount < 1 {
		return fmt.Errorf("optimizer: validate: %w: vehicle_count must be >= 1", apperr.ErrBadInput)
	}
	if req.Capacity < 1 {
		return fmt.Errorf("optimizer: validate: %w: capacity must be >= 1", apperr.ErrBadInput)
	}
	if _, ok := req.Stops.Depot(); !ok {
		return fmt.Errorf("optimizer: validate: %w: stop set has no depot", apperr.ErrBadInput)
	}

	if req.Matrix.Size() != n {
		return fmt.Errorf("optimizer: validate: %w: matrix dimension %d does not match stop count %d", apperr.ErrBadInput, req.Matrix.Size(), n)
	}
	if len(req.Matrix.Distance) != n {
		return fmt.Errorf("optimizer: validate: %w: distance matrix dimension %d does not match stop count %d", apperr.ErrBadInput, len(req.Matrix.Distance), n)
	}

	for i, row := range req.Matrix.Time {
		if len(row) != n {
			return fmt.Errorf("optimizer: validate: %w: time matrix row %d has length %d, want %d", apperr.ErrBadInput, i, len(row), n)
		}
	}
	for i, row := range req.Matrix.Distance {
		if len(row) != n {
			return fmt.Errorf("optimizer: validate: %w: distance matrix row %d has length %d, want %d", apperr.ErrBadInput, i, len(row), n)
		}
	}

	for i := 0; i < n; i++ {
		if req.Matrix.Time[i][i] != 0 {
			return fmt.Errorf("optimizer: validate: %w: time matrix diagonal [%d][%d] must be 0", apperr.ErrBadInput, i, i)
		}
		if req.Matrix.Distance[i][i] != 0 {
			return fmt.Errorf("optimizer: validate: %w: distance matrix diagonal [%d][%d] must be 0", apperr.ErrBadInput, i, i)
		}
		for j := 0; j < n; j++ {
			if req.Matrix.Time[i][j] < 0 || req.Matrix.Distance[i][j] < 0 {
				return fmt.Errorf("optimizer: validate: %w: matrix has negative value at [%d][%d]", apperr.ErrBadInput, i, j)
			}
		}
	}

	switch req.Objective.Primary {
	case domain.ObjectiveDistance, domain.ObjectiveTime, domain.ObjectiveVehicles, domain.ObjectiveCost, domain.ObjectiveMakespan:
	default:
		return fmt.Errorf("optimizer: validate: %w: unknown primary objective %q", apperr.ErrBadInput, req.Objective.Primary)
	}

	for _, tb := range []domain.Objective{req.Objective.TieBreaker1, req.Objective.TieBreaker2} {
		if tb == "" || tb == domain.ObjectiveNone {
			continue
		}
		switch tb {
		case domain.ObjectiveDistance, domain.ObjectiveTime, domain.ObjectiveVehicles, domain.ObjectiveCost, domain.ObjectiveMakespan:
		default:
			return fmt.Errorf("optimizer: validate: %w: unknown tie-breaker objective %q", apperr.ErrBadInput, tb)
		}
	}

	for _, term := range req.Objective.AdditionalTerms {
		switch term {
		case domain.TermWorkloadBalance, domain.TermFixedCost, domain.TermUtilization:
		case domain.TermTimeWindow, domain.TermWaitTime, domain.TermOvertime, domain.TermCO2Proxy:
			return fmt.Errorf("optimizer: validate: %w: additional term %q needs per-stop data (time windows, overtime rules, emission factors) this request does not carry; the prototype never implemented it either (vrp_solver.py leaves it as a TODO)", apperr.ErrBadInput, term)
		default:
			return fmt.Errorf("optimizer: validate: %w: unknown additional term %q", apperr.ErrBadInput, term)
		}
	}

	return nil
}

// checkFeasibility applies the §4.1 capacity feasibility contract before
// any solve attempt: total demand must not exceed fleet capacity, and no
// single stop's demand may exceed a vehicle's capacity.
func checkFeasibility(req Request) error {
	total := 0
	maxDemand := 0
	for _, st := range req.Stops.Stops {
		if st.IsDepot {
			continue
		}
		total += st.Demand
		if st.Demand > maxDemand {
			maxDemand = st.Demand
		}
	}

	if maxDemand > req.Capacity {
		return fmt.Errorf("optimizer: %w: a single stop's demand (%d) exceeds vehicle capacity (%d)", apperr.ErrInfeasible, maxDemand, req.Capacity)
	}
	if total > req.VehicleCount*req.Capacity {
		return fmt.Errorf("optimizer: %w: total demand (%d) exceeds fleet capacity (%d vehicles x %d)", apperr.ErrInfeasible, total, req.VehicleCount, req.Capacity)
	}
	return nil
}
