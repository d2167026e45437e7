package optimizer

import (
	"errors"
	"testing"

	"vrp-planner/internal/apperr"
	"vrp-planner/internal/domain"
)

// squareMatrix builds a symmetric time/distance matrix pair from a flat
// distance table in meters, with time in seconds derived at a fixed 10m/s
// pace, so the two matrices differ in magnitude but rank arcs identically.
func squareMatrix(meters [][]float64) domain.MatrixPair {
	n := len(meters)
	secs := make([][]float64, n)
	for i := range meters {
		secs[i] = make([]float64, n)
		for j, m := range meters[i] {
			secs[i][j] = m / 10
		}
	}
	return domain.MatrixPair{Distance: meters, Time: secs, Hash: "test"}
}

func twoStopRequest() Request {
	stops := domain.StopSet{Stops: []domain.Stop{
		{StopID: "depot", IsDepot: true},
		{StopID: "a", Name: "A", Demand: 3},
		{StopID: "b", Name: "B", Demand: 3},
	}}
	matrix := squareMatrix([][]float64{
		{0, 100, 200},
		{100, 0, 150},
		{200, 150, 0},
	})
	return Request{
		Stops:        stops,
		Matrix:       matrix,
		VehicleCount: 1,
		Capacity:     10,
		Mode:         domain.ClosedTour,
		Objective:    domain.ObjectiveSpec{Primary: domain.ObjectiveDistance},
	}
}

func TestSolveTwoStopSingleVehicle(t *testing.T) {
	plan, err := Solve(twoStopRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plan.Runs) != 1 {
		t.Fatalf("expected 1 used vehicle, got %d", len(plan.Runs))
	}
	run := plan.Runs[0]
	if len(run.StopIDs) != 2 {
		t.Fatalf("expected 2 stops on the route, got %v", run.StopIDs)
	}
	if run.RouteLoad != 6 {
		t.Errorf("route load = %d, want 6", run.RouteLoad)
	}
	seen := map[string]bool{}
	for _, id := range run.StopIDs {
		seen[id] = true
	}
	if !seen["a"] || !seen["b"] {
		t.Errorf("expected both stops visited, got %v", run.StopIDs)
	}
}

func TestSolveCapacitySplitsAcrossVehicles(t *testing.T) {
	stops := domain.StopSet{Stops: []domain.Stop{
		{StopID: "depot", IsDepot: true},
		{StopID: "a", Demand: 4},
		{StopID: "b", Demand: 4},
		{StopID: "c", Demand: 4},
	}}
	matrix := squareMatrix([][]float64{
		{0, 10, 20, 30},
		{10, 0, 15, 25},
		{20, 15, 0, 10},
		{30, 25, 10, 0},
	})
	req := Request{
		Stops:        stops,
		Matrix:       matrix,
		VehicleCount: 2,
		Capacity:     10,
		Mode:         domain.ClosedTour,
		Objective:    domain.ObjectiveSpec{Primary: domain.ObjectiveDistance},
	}

	plan, err := Solve(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	totalStops := 0
	loads := map[string]int{}
	for _, run := range plan.Runs {
		totalStops += len(run.StopIDs)
		if run.RouteLoad > req.Capacity {
			t.Errorf("vehicle %s load %d exceeds capacity %d", run.VehicleID, run.RouteLoad, req.Capacity)
		}
		for _, id := range run.StopIDs {
			loads[id]++
		}
	}
	if totalStops != 3 {
		t.Fatalf("expected 3 stops placed total, got %d", totalStops)
	}
	for _, id := range []string{"a", "b", "c"} {
		if loads[id] != 1 {
			t.Errorf("stop %s visited %d times, want exactly 1", id, loads[id])
		}
	}
	if len(plan.Runs) < 2 {
		t.Fatalf("expected capacity (10) to force a split of three 4-unit stops across 2 vehicles, got %d used", len(plan.Runs))
	}
}

func TestSolveInfeasibleSingleStopExceedsCapacity(t *testing.T) {
	req := twoStopRequest()
	req.Capacity = 2 // stop "a" and "b" both demand 3, exceeding this

	_, err := Solve(req)
	if !errors.Is(err, apperr.ErrInfeasible) {
		t.Fatalf("expected ErrInfeasible, got %v", err)
	}
}

func TestSolveInfeasibleTotalDemandExceedsFleet(t *testing.T) {
	req := twoStopRequest()
	req.VehicleCount = 1
	req.Capacity = 3 // total demand 6 > fleet capacity 3

	_, err := Solve(req)
	if !errors.Is(err, apperr.ErrInfeasible) {
		t.Fatalf("expected ErrInfeasible, got %v", err)
	}
}

func TestSolveRejectsBadInputMatrixDimensionMismatch(t *testing.T) {
	req := twoStopRequest()
	req.Matrix.Time = req.Matrix.Time[:2] // now 2x3 instead of 3x3

	_, err := Solve(req)
	if !errors.Is(err, apperr.ErrBadInput) {
		t.Fatalf("expected ErrBadInput, got %v", err)
	}
}

func TestSolveRejectsMissingDepot(t *testing.T) {
	req := twoStopRequest()
	req.Stops.Stops[0].IsDepot = false

	_, err := Solve(req)
	if !errors.Is(err, apperr.ErrBadInput) {
		t.Fatalf("expected ErrBadInput, got %v", err)
	}
}

func TestSolveOpenEndModePlacesSameStopsAsClosedTour(t *testing.T) {
	closed := twoStopRequest()
	closed.Mode = domain.ClosedTour
	open := twoStopRequest()
	open.Mode = domain.OpenEnd

	closedPlan, err := Solve(closed)
	if err != nil {
		t.Fatalf("unexpected error (closed): %v", err)
	}
	openPlan, err := Solve(open)
	if err != nil {
		t.Fatalf("unexpected error (open): %v", err)
	}

	// Both modes place the same stops; the distinction is in materialization
	// and in the cost used to order them, not in which stops are visited.
	if len(closedPlan.Runs[0].StopIDs) != len(openPlan.Runs[0].StopIDs) {
		t.Fatalf("expected same stop count regardless of mode")
	}
}

func TestSolveUnknownObjectiveIsBadInput(t *testing.T) {
	req := twoStopRequest()
	req.Objective = domain.ObjectiveSpec{Primary: domain.Objective("bogus")}

	_, err := Solve(req)
	if !errors.Is(err, apperr.ErrBadInput) {
		t.Fatalf("expected ErrBadInput, got %v", err)
	}
}

func TestSolveSingleVehicleRouteDoesNotRevisitDepot(t *testing.T) {
	plan, err := Solve(twoStopRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, id := range plan.Runs[0].StopIDs {
		if id == "depot" {
			t.Fatalf("depot must not appear in the visited stop sequence, got %v", plan.Runs[0].StopIDs)
		}
	}
}

// totalRouteDistance sums a plan's raw distance, return legs included, for
// comparing solutions produced under different objectives.
func totalRouteDistance(matrix domain.MatrixPair, plan domain.OrderedPlan, stops domain.StopSet) float64 {
	_, idByID := buildIndex(stops)
	total := 0.0
	for _, run := range plan.Runs {
		prev := idByID["depot"]
		for _, id := range run.StopIDs {
			cur := idByID[id]
			total += matrix.Distance[prev][cur]
			prev = cur
		}
		total += matrix.Distance[prev][idByID["depot"]]
	}
	return total
}

// A cost function that ignores vehicle count would score this case
// identically under ObjectiveVehicles and ObjectiveDistance, so it could
// never produce the split this test asserts.
func TestSolveMinimizeVehiclesForcesWorseDistanceSplitThanPlainDistance(t *testing.T) {
	stops := domain.StopSet{Stops: []domain.Stop{
		{StopID: "depot", IsDepot: true},
		{StopID: "a", Demand: 1},
		{StopID: "b", Demand: 1},
	}}
	// a and b are each cheap to reach from the depot but expensive to reach
	// from each other, so plain distance minimization keeps them on separate
	// one-stop routes (20+20=40) rather than paying the 100 to visit both
	// from one vehicle (10+100+10=120).
	matrix := squareMatrix([][]float64{
		{0, 10, 10},
		{10, 0, 100},
		{10, 100, 0},
	})
	base := Request{
		Stops:        stops,
		Matrix:       matrix,
		VehicleCount: 2,
		Capacity:     10,
		Mode:         domain.ClosedTour,
	}

	distanceReq := base
	distanceReq.Objective = domain.ObjectiveSpec{Primary: domain.ObjectiveDistance}
	distancePlan, err := Solve(distanceReq)
	if err != nil {
		t.Fatalf("unexpected error (distance): %v", err)
	}
	if len(distancePlan.Runs) != 2 {
		t.Fatalf("expected plain distance minimization to split across both vehicles, got %d used", len(distancePlan.Runs))
	}

	vehiclesReq := base
	vehiclesReq.Objective = domain.ObjectiveSpec{Primary: domain.ObjectiveVehicles}
	vehiclesPlan, err := Solve(vehiclesReq)
	if err != nil {
		t.Fatalf("unexpected error (vehicles): %v", err)
	}
	if len(vehiclesPlan.Runs) != 1 {
		t.Fatalf("expected minimizing vehicle count to force both stops onto one vehicle, got %d used", len(vehiclesPlan.Runs))
	}

	distanceTotal := totalRouteDistance(matrix, distancePlan, stops)
	vehiclesTotal := totalRouteDistance(matrix, vehiclesPlan, stops)
	if vehiclesTotal <= distanceTotal {
		t.Fatalf("expected the vehicles-minimizing plan (%v) to cost more raw distance than the distance-minimizing plan (%v)", vehiclesTotal, distanceTotal)
	}
}

func TestValidateRejectsUnsupportedAdditionalTerm(t *testing.T) {
	for _, term := range []domain.AdditionalTerm{domain.TermTimeWindow, domain.TermWaitTime, domain.TermOvertime, domain.TermCO2Proxy} {
		req := twoStopRequest()
		req.Objective.AdditionalTerms = []domain.AdditionalTerm{term}
		if err := validate(req); !errors.Is(err, apperr.ErrBadInput) {
			t.Errorf("term %q: expected ErrBadInput, got %v", term, err)
		}
	}
}

func TestValidateAcceptsEvaluableAdditionalTerms(t *testing.T) {
	req := twoStopRequest()
	req.Objective.AdditionalTerms = []domain.AdditionalTerm{domain.TermWorkloadBalance, domain.TermFixedCost, domain.TermUtilization}
	if err := validate(req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejectsUnknownTieBreaker(t *testing.T) {
	req := twoStopRequest()
	req.Objective.TieBreaker1 = domain.Objective("bogus")
	if err := validate(req); !errors.Is(err, apperr.ErrBadInput) {
		t.Fatalf("expected ErrBadInput, got %v", err)
	}
}

func TestValidateAllowsEmptyTieBreakers(t *testing.T) {
	req := twoStopRequest()
	req.Objective.TieBreaker1 = domain.ObjectiveNone
	if err := validate(req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestIsBetterConsultsTieBreakerOnPrimaryTie(t *testing.T) {
	sol := &solution{loads: []int{0, 0}}
	spans := []float64{0, 0}
	req := Request{Objective: domain.ObjectiveSpec{Primary: domain.ObjectiveDistance, TieBreaker1: domain.ObjectiveTime}}

	// Both candidates add the same distance, so the primary ties and the
	// time tie-breaker should decide.
	faster := []routeChange{{vehicle: 0, deltaDistance: 10, deltaTime: 5}}
	slower := []routeChange{{vehicle: 0, deltaDistance: 10, deltaTime: 20}}

	if !isBetter(req, sol, spans, faster, slower) {
		t.Errorf("expected the tie-breaker to prefer the faster candidate when distance ties")
	}
	if isBetter(req, sol, spans, slower, faster) {
		t.Errorf("expected the tie-breaker to reject the slower candidate when distance ties")
	}
}

func TestObjectiveValueDeltaMakespanBalancesLoadOverRawTimeSum(t *testing.T) {
	// vehicle 0 already has a 10-unit span, vehicle 1 is empty.
	spans := []float64{10, 0}

	// cheaper in raw time, but widens the already-longer route.
	unbalanced := []routeChange{{vehicle: 0, deltaTime: 3}}
	// more expensive in raw time, but lands on the idle vehicle.
	balanced := []routeChange{{vehicle: 1, deltaTime: 5}}

	timeUnbalanced := objectiveValueDelta(spans, domain.ObjectiveTime, unbalanced)
	timeBalanced := objectiveValueDelta(spans, domain.ObjectiveTime, balanced)
	if timeUnbalanced >= timeBalanced {
		t.Fatalf("expected plain time minimization to prefer the cheaper move (%v) over the costlier one (%v)", timeUnbalanced, timeBalanced)
	}

	makespanUnbalanced := objectiveValueDelta(spans, domain.ObjectiveMakespan, unbalanced)
	makespanBalanced := objectiveValueDelta(spans, domain.ObjectiveMakespan, balanced)
	if makespanBalanced >= makespanUnbalanced {
		t.Fatalf("expected makespan to prefer balancing the fleet (%v) over the raw-time-cheaper move that widens the longest route (%v)", makespanBalanced, makespanUnbalanced)
	}
}

func TestAdditionalTermsDeltaWorkloadBalancePenalizesWideningSpread(t *testing.T) {
	req := Request{Objective: domain.ObjectiveSpec{AdditionalTerms: []domain.AdditionalTerm{domain.TermWorkloadBalance}}}
	sol := &solution{loads: []int{0, 0}}
	spans := []float64{10, 10}

	widen := []routeChange{{vehicle: 0, deltaTime: 20}} // spread 0 -> 20
	narrow := []routeChange{{vehicle: 0, deltaTime: 1}}  // spread stays near 0

	widenDelta := additionalTermsDelta(req, sol, spans, widen)
	narrowDelta := additionalTermsDelta(req, sol, spans, narrow)
	if widenDelta <= narrowDelta {
		t.Fatalf("expected workload_balance to penalize widening the spread (%v) more than keeping it narrow (%v)", widenDelta, narrowDelta)
	}
}

func TestAdditionalTermsDeltaFixedCostPenalizesOpeningAVehicle(t *testing.T) {
	req := Request{Objective: domain.ObjectiveSpec{AdditionalTerms: []domain.AdditionalTerm{domain.TermFixedCost}}}
	sol := &solution{loads: []int{0, 0}}
	spans := []float64{0, 0}

	opensVehicle := []routeChange{{vehicle: 1, opens: true}}
	staysOnExisting := []routeChange{{vehicle: 0}}

	if additionalTermsDelta(req, sol, spans, opensVehicle) <= additionalTermsDelta(req, sol, spans, staysOnExisting) {
		t.Fatalf("expected fixed_cost to penalize opening a new vehicle over reusing an existing one")
	}
}
