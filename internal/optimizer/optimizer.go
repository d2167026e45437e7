package optimizer

import (
	"fmt"

	"vrp-planner/internal/apperr"
	"vrp-planner/internal/domain"
)

// Solve runs validation, feasibility checking, construction and
// time-bounded improvement, and returns an OrderedPlan whose per-vehicle
// stop sequences respect capacity and single-visit invariants (§3, §4.1).
//
// An unsupported additional term or an unknown objective is rejected by
// validate as BadInput before any search runs. If the search under a
// non-distance primary objective leaves stops unplaced (NoSolution), Solve
// retries once against ObjectiveDistance and reports
// FallbackUsed/ObjectiveUsed so the caller can surface the degradation
// instead of treating it as a hard error, mirroring the prototype's
// fallback-to-distance behavior when a requested RoutingModel dimension
// cannot be registered (vrp_solver.py).
func Solve(req Request) (domain.OrderedPlan, error) {
	if err := validate(req); err != nil {
		return domain.OrderedPlan{}, err
	}
	if err := checkFeasibility(req); err != nil {
		return domain.OrderedPlan{}, err
	}
	if err := req.ctx().Err(); err != nil {
		return domain.OrderedPlan{}, fmt.Errorf("optimizer: %w", err)
	}

	stops, _ := buildIndex(req.Stops)

	plan, err := solveWithObjective(req, stops, req.Objective.Primary)
	if err == nil {
		return plan, nil
	}
	if req.Objective.Primary == domain.ObjectiveDistance {
		return domain.OrderedPlan{}, err
	}

	fallbackReq := req
	fallbackReq.Objective = domain.ObjectiveSpec{Primary: domain.ObjectiveDistance}
	plan, fallbackErr := solveWithObjective(fallbackReq, stops, domain.ObjectiveDistance)
	if fallbackErr != nil {
		return domain.OrderedPlan{}, err
	}
	plan.FallbackUsed = true
	plan.ObjectiveUsed = domain.ObjectiveDistance
	return plan, nil
}

func solveWithObjective(req Request, stops []domain.Stop, objective domain.Objective) (domain.OrderedPlan, error) {
	sol := construct(req, stops)
	if len(sol.unplaced) > 0 {
		unplacedStops := make([]domain.Stop, 0, len(sol.unplaced))
		for _, idx := range sol.unplaced {
			unplacedStops = append(unplacedStops, stops[idx])
		}
		return domain.OrderedPlan{}, fmt.Errorf("optimizer: %w: %s", apperr.ErrNoSolution, diagnoseNoSolution(req, unplacedStops))
	}

	sol = improve(req, stops, sol, req.timeBudget())

	runs := make([]domain.VehicleRun, 0, req.VehicleCount)
	for v := 0; v < req.VehicleCount; v++ {
		route := sol.routes[v]
		if len(route) <= 1 {
			continue // unused vehicle: depot-only route, omit from the plan
		}
		run := domain.VehicleRun{
			VehicleID:      fmt.Sprintf("vehicle-%d", v+1),
			StopIDs:        make([]string, 0, len(route)-1),
			CumulativeLoad: make([]int, 0, len(route)-1),
		}
		load := 0
		for _, idx := range route[1:] {
			st := stops[idx]
			load += st.Demand
			run.StopIDs = append(run.StopIDs, st.StopID)
			run.CumulativeLoad = append(run.CumulativeLoad, load)
		}
		run.RouteLoad = load
		runs = append(runs, run)
	}

	return domain.OrderedPlan{
		Mode:          req.Mode,
		Runs:          runs,
		ObjectiveUsed: objective,
	}, nil
}
