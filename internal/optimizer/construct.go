package optimizer

import (
	"vrp-planner/internal/domain"
)

// solution is the mutable working state of the construct/improve phases: a
// fixed-size fleet of routes, each a sequence of indices into buildIndex's
// ordering beginning at the depot index 0. The return leg to the depot is
// not stored; it is priced through edgeMeasure's isClosing flag.
type solution struct {
	routes   [][]int
	loads    []int
	unplaced []int
}

func newSolution(vehicleCount int) *solution {
	s := &solution{
		routes: make([][]int, vehicleCount),
		loads:  make([]int, vehicleCount),
	}
	for v := range s.routes {
		s.routes[v] = []int{0} // depot index 0, by construction in buildIndex
	}
	return s
}

// buildIndex orders req.Stops so the depot is index 0, returning the index
// slice alongside a reverse lookup by StopID.
func buildIndex(stops domain.StopSet) (ordered []domain.Stop, idByID map[string]int) {
	depot, _ := stops.Depot()
	ordered = make([]domain.Stop, 0, len(stops.Stops))
	ordered = append(ordered, depot)
	for _, st := range stops.Stops {
		if !st.IsDepot {
			ordered = append(ordered, st)
		}
	}
	idByID = make(map[string]int, len(ordered))
	for i, st := range ordered {
		idByID[st.StopID] = i
	}
	return ordered, idByID
}

// construct builds an initial feasible-effort solution via cheapest
// insertion: each unplaced stop is inserted at the position, in the route,
// that scores best under the active objective (see isBetter), subject to
// the route's remaining capacity. Ties are broken by scan order for
// determinism, grounded on the prototype's arc-cost callback shape
// (vrp_solver.py create_data_model) and the teacher's deterministic
// nearest_neighbor.go tie-break discipline.
func construct(req Request, stops []domain.Stop) *solution {
	n := len(stops)
	sol := newSolution(req.VehicleCount)

	remaining := make([]int, 0, n-1)
	for i := 1; i < n; i++ {
		remaining = append(remaining, i)
	}

	for len(remaining) > 0 {
		spans := spanSlice(req, sol)

		var best routeChange
		haveBest := false
		bestStop, bestPos, bestRemIdx := -1, -1, -1

		for ri, stopIdx := range remaining {
			demand := stops[stopIdx].Demand
			for v := 0; v < req.VehicleCount; v++ {
				if sol.loads[v]+demand > req.Capacity {
					continue
				}
				route := sol.routes[v]
				opens := len(route) == 1
				for pos := 1; pos <= len(route); pos++ {
					prev := route[pos-1]
					isEnd := pos == len(route)
					var next int
					if !isEnd {
						next = route[pos]
					}
					cand := routeChange{
						vehicle:       v,
						deltaDistance: insertionDelta(req, domain.ObjectiveDistance, prev, stopIdx, next, isEnd),
						deltaTime:     insertionDelta(req, domain.ObjectiveTime, prev, stopIdx, next, isEnd),
						loadDelta:     demand,
						opens:         opens,
					}
					if !haveBest || isBetter(req, sol, spans, []routeChange{cand}, []routeChange{best}) {
						haveBest = true
						best = cand
						bestStop = stopIdx
						bestPos = pos
						bestRemIdx = ri
					}
				}
			}
		}

		if bestStop == -1 {
			// Nothing fits anywhere; stop constructing, leave the rest unplaced
			// for the caller to diagnose.
			sol.unplaced = append(sol.unplaced, remaining...)
			break
		}

		route := sol.routes[best.vehicle]
		newRoute := make([]int, 0, len(route)+1)
		newRoute = append(newRoute, route[:bestPos]...)
		newRoute = append(newRoute, bestStop)
		newRoute = append(newRoute, route[bestPos:]...)
		sol.routes[best.vehicle] = newRoute
		sol.loads[best.vehicle] += stops[bestStop].Demand

		remaining = append(remaining[:bestRemIdx], remaining[bestRemIdx+1:]...)
	}

	return sol
}

// arcMeasure is the raw matrix lookup behind an objective: distance/vehicles/
// cost read the distance matrix, time/makespan read the time matrix. This is
// the one place that ties a domain.Objective to a concrete matrix, so both
// the primary objective and any tie-breaker can have their deltas recomputed
// under a different measure than whatever the primary picked.
func arcMeasure(objective domain.Objective, matrix domain.MatrixPair, a, b int) float64 {
	if objective == domain.ObjectiveTime || objective == domain.ObjectiveMakespan {
		return matrix.Time[a][b]
	}
	return matrix.Distance[a][b]
}

// edgeMeasure is arcMeasure(a, b) except when isClosing marks b as the
// implicit return-to-depot leg at the end of a route: under OpenEnd mode a
// vehicle never drives that leg, so it costs nothing. b is the depot index
// (0) by convention when isClosing is true.
func edgeMeasure(req Request, objective domain.Objective, a, b int, isClosing bool) float64 {
	if isClosing && req.Mode == domain.OpenEnd {
		return 0
	}
	return arcMeasure(objective, req.Matrix, a, b)
}

// insertionDelta is the raw measure added to a route by inserting cur
// between prev and next (isEnd marks next as the implicit depot leg).
// Removing a stop already placed between prev and next costs the negation
// of this same formula, so relocate reuses it for both directions.
func insertionDelta(req Request, objective domain.Objective, prev, cur, next int, isEnd bool) float64 {
	return arcMeasure(objective, req.Matrix, prev, cur) + edgeMeasure(req, objective, cur, next, isEnd) - edgeMeasure(req, objective, prev, next, isEnd)
}

// routeCostUnder computes a route's total arc cost under objective's
// measure, including the return-to-depot leg when the route mode requires
// one. Used to build per-route spans under whatever measure a
// makespan-flavored objective needs, regardless of the request's primary
// objective.
func routeCostUnder(req Request, objective domain.Objective, route []int) float64 {
	total := 0.0
	for i := 0; i+1 < len(route); i++ {
		total += arcMeasure(objective, req.Matrix, route[i], route[i+1])
	}
	if len(route) > 1 {
		total += edgeMeasure(req, objective, route[len(route)-1], 0, true)
	}
	return total
}

// spanSlice returns each vehicle's current route span under the time
// matrix, the one measure makespan and workload-balance scoring consult
// (§4.1: makespan minimizes the longest single-route span, and the
// prototype's WorkloadBalance dimension is built over the same cumulative
// transit cost). It is recomputed once per outer construct/improve
// iteration rather than per candidate, since it depends only on the
// solution's current state.
func spanSlice(req Request, sol *solution) []float64 {
	spans := make([]float64, len(sol.routes))
	for v, route := range sol.routes {
		spans[v] = routeCostUnder(req, domain.ObjectiveMakespan, route)
	}
	return spans
}

// routeChange describes one candidate move's raw effect on a single route:
// how its distance and time totals change, how its load changes, and
// whether the move opens a previously-unused vehicle or closes one down to
// empty. A move touching two routes (a cross-vehicle relocate) is two
// routeChanges, one per vehicle.
type routeChange struct {
	vehicle       int
	deltaDistance float64
	deltaTime     float64
	loadDelta     int
	opens         bool
	closes        bool
}

// perVehicleFixedCost is the fixed cost charged per vehicle used, grounded
// on vrp_solver.py's SetFixedCostOfVehicle calls: 10000 for a pure
// minimize-vehicles objective, 100 when cost blends fixed cost with
// distance. Every other objective leaves this at zero.
func perVehicleFixedCost(objective domain.Objective) float64 {
	switch objective {
	case domain.ObjectiveVehicles:
		return 10000
	case domain.ObjectiveCost:
		return 100
	default:
		return 0
	}
}

// additionalTermWeight is the fixed internal weight for an additional
// penalty term this package can actually evaluate. 100 mirrors
// vrp_solver.py's SetGlobalSpanCostCoefficient(100) on its WorkloadBalance
// dimension; fixed_cost and utilization reuse the same order of magnitude
// so no one term dominates the primary objective's own delta by default.
func additionalTermWeight(term domain.AdditionalTerm) float64 {
	switch term {
	case domain.TermWorkloadBalance, domain.TermFixedCost, domain.TermUtilization:
		return 100
	default:
		return 0
	}
}

// measureDelta picks deltaTime or deltaDistance off a routeChange according
// to which matrix objective reads.
func measureDelta(objective domain.Objective, c routeChange) float64 {
	if objective == domain.ObjectiveTime || objective == domain.ObjectiveMakespan {
		return c.deltaTime
	}
	return c.deltaDistance
}

// maxOf returns the largest value in vals, or 0 for an empty slice (an
// empty fleet has no span).
func maxOf(vals []float64) float64 {
	m := 0.0
	for _, v := range vals {
		if v > m {
			m = v
		}
	}
	return m
}

// spanRange is the spread (max - min) across a fleet's route spans, the
// quantity workload_balance penalizes.
func spanRange(spans []float64) float64 {
	if len(spans) == 0 {
		return 0
	}
	min, max := spans[0], spans[0]
	for _, s := range spans[1:] {
		if s < min {
			min = s
		}
		if s > max {
			max = s
		}
	}
	return max - min
}

// objectiveValueDelta is the change in objective's value that changes would
// cause to the current solution (whose per-vehicle time spans are spans).
// It is used both for the request's primary objective and, independently,
// for each tie-breaker, which is why it takes objective as a parameter
// rather than reading req.Objective.Primary itself.
func objectiveValueDelta(spans []float64, objective domain.Objective, changes []routeChange) float64 {
	switch objective {
	case domain.ObjectiveVehicles, domain.ObjectiveCost:
		fc := perVehicleFixedCost(objective)
		total := 0.0
		for _, c := range changes {
			total += measureDelta(objective, c)
			if c.opens {
				total += fc
			}
			if c.closes {
				total -= fc
			}
		}
		return total
	case domain.ObjectiveMakespan:
		before := maxOf(spans)
		after := append([]float64(nil), spans...)
		for _, c := range changes {
			after[c.vehicle] += measureDelta(objective, c)
		}
		return maxOf(after) - before
	case domain.ObjectiveNone, "":
		return 0
	default: // distance, time
		total := 0.0
		for _, c := range changes {
			total += measureDelta(objective, c)
		}
		return total
	}
}

// additionalTermsDelta folds in the weighted delta of every additional term
// this package can evaluate from data the request actually carries:
// fixed_cost (vehicles opened/closed), workload_balance (spread of route
// spans) and utilization (capacity slack used). time_window, wait_time,
// overtime and co2_proxy are rejected at validate() time instead, since
// nothing in the domain model carries the data they would need.
func additionalTermsDelta(req Request, sol *solution, spans []float64, changes []routeChange) float64 {
	total := 0.0
	for _, term := range req.Objective.AdditionalTerms {
		switch term {
		case domain.TermFixedCost:
			w := additionalTermWeight(term)
			for _, c := range changes {
				if c.opens {
					total += w
				}
				if c.closes {
					total -= w
				}
			}
		case domain.TermWorkloadBalance:
			total += additionalTermWeight(term) * workloadBalanceDelta(spans, changes)
		case domain.TermUtilization:
			total += additionalTermWeight(term) * utilizationDelta(req, sol, changes)
		}
	}
	return total
}

func workloadBalanceDelta(spans []float64, changes []routeChange) float64 {
	before := spanRange(spans)
	after := append([]float64(nil), spans...)
	for _, c := range changes {
		after[c.vehicle] += c.deltaTime
	}
	return spanRange(after) - before
}

// utilizationDelta penalizes unused capacity: a route running closer to
// capacity scores lower (better) than one with slack, so moves that pack
// vehicles fuller are preferred when utilization is requested.
func utilizationDelta(req Request, sol *solution, changes []routeChange) float64 {
	before, after := 0.0, 0.0
	for _, c := range changes {
		oldLoad := sol.loads[c.vehicle]
		newLoad := oldLoad + c.loadDelta
		if oldLoad > 0 {
			before += 1 - float64(oldLoad)/float64(req.Capacity)
		}
		if newLoad > 0 {
			after += 1 - float64(newLoad)/float64(req.Capacity)
		}
	}
	return after - before
}

// isBetter reports whether candidate scores strictly better than best under
// the request's active objective: the primary objective's delta plus every
// evaluable additional term, with up to two ordered tie-breakers consulted
// only when that combined score ties within tolerance (§4.1). A nil/empty
// changes list scores as a no-op (delta 0), so callers can pass nil for
// best to ask "does candidate improve on doing nothing at all".
func isBetter(req Request, sol *solution, spans []float64, candidate, best []routeChange) bool {
	cScore := objectiveValueDelta(spans, req.Objective.Primary, candidate) + additionalTermsDelta(req, sol, spans, candidate)
	bScore := objectiveValueDelta(spans, req.Objective.Primary, best) + additionalTermsDelta(req, sol, spans, best)

	if cScore < bScore-1e-9 {
		return true
	}
	if cScore > bScore+1e-9 {
		return false
	}

	for _, tb := range []domain.Objective{req.Objective.TieBreaker1, req.Objective.TieBreaker2} {
		if tb == "" || tb == domain.ObjectiveNone {
			continue
		}
		cd := objectiveValueDelta(spans, tb, candidate)
		bd := objectiveValueDelta(spans, tb, best)
		if cd < bd-1e-9 {
			return true
		}
		if cd > bd+1e-9 {
			return false
		}
	}

	return false
}
