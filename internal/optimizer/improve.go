package optimizer

import (
	"time"

	"vrp-planner/internal/domain"
)

// improve runs a time-budget-bounded local search over sol, alternating
// within-route 2-opt moves and cross-route relocation moves, stopping as
// soon as a full pass finds no improving move or the budget is exhausted.
// This stands in for the prototype's GUIDED_LOCAL_SEARCH metaheuristic
// (vrp_solver.py): no Go OR-Tools binding exists, so the shape is
// reproduced directly rather than bound to a library.
func improve(req Request, stops []domain.Stop, sol *solution, budget time.Duration) *solution {
	deadline := time.Now().Add(budget)
	ctx := req.ctx()

	for time.Now().Before(deadline) {
		if ctx.Err() != nil {
			break
		}
		improved := false
		if twoOptPass(req, sol, deadline) {
			improved = true
		}
		if relocatePass(req, stops, sol, deadline) {
			improved = true
		}
		if !improved {
			break
		}
	}
	return sol
}

// twoOptPass tries within-route edge-reversal moves, applying every
// improving move found in a sweep and repeating per route until a full
// sweep finds none. Routes store no trailing depot, so a reversed segment
// always ends before the route's last stop: that stop is never moved by
// this pass, and a route needs at least 3 stops for any reversal. spans is recomputed once per sweep, so a reversal's
// effect on makespan/workload_balance scoring is exact at the start of the
// sweep and only approximate for moves accepted later in the same sweep —
// the next sweep's recompute corrects it.
func twoOptPass(req Request, sol *solution, deadline time.Time) bool {
	anyImproved := false
	ctx := req.ctx()
	for v, route := range sol.routes {
		if len(route) < 4 {
			continue // need at least 2 stops before the last one to reverse
		}
		for {
			if time.Now().After(deadline) || ctx.Err() != nil {
				return anyImproved
			}
			spans := spanSlice(req, sol)
			improvedHere := false
			for i := 1; i < len(route)-2; i++ {
				for j := i + 1; j < len(route)-1; j++ {
					change := []routeChange{{
						vehicle:       v,
						deltaDistance: reversalDelta(req, domain.ObjectiveDistance, route, i, j),
						deltaTime:     reversalDelta(req, domain.ObjectiveTime, route, i, j),
					}}
					if isBetter(req, sol, spans, change, nil) {
						reverse(route, i, j)
						improvedHere = true
						anyImproved = true
					}
				}
			}
			sol.routes[v] = route
			if !improvedHere {
				break
			}
		}
	}
	return anyImproved
}

// reversalDelta is the change in objective's raw measure from reversing
// route[i..j] in place: the two edges that leave the reversed segment
// change, every edge inside it stays the same length in the other
// direction.
func reversalDelta(req Request, objective domain.Objective, route []int, i, j int) float64 {
	before := arcMeasure(objective, req.Matrix, route[i-1], route[i]) + arcMeasure(objective, req.Matrix, route[j], route[j+1])
	after := arcMeasure(objective, req.Matrix, route[i-1], route[j]) + arcMeasure(objective, req.Matrix, route[i], route[j+1])
	return after - before
}

func reverse(route []int, i, j int) {
	for i < j {
		route[i], route[j] = route[j], route[i]
		i++
		j--
	}
}

// relocatePass tries moving each non-depot stop to the best-scoring
// feasible position in any route (including its own), applying the first
// improving move found and repeating until a full sweep finds none.
func relocatePass(req Request, stops []domain.Stop, sol *solution, deadline time.Time) bool {
	anyImproved := false
	ctx := req.ctx()
	for {
		if time.Now().After(deadline) || ctx.Err() != nil {
			return anyImproved
		}
		improvedHere := false
		spans := spanSlice(req, sol)

		for srcV := range sol.routes {
			srcRoute := sol.routes[srcV]
			for srcPos := 1; srcPos < len(srcRoute); srcPos++ {
				stopIdx := srcRoute[srcPos]
				demand := stops[stopIdx].Demand
				prev := srcRoute[srcPos-1]
				isLast := srcPos == len(srcRoute)-1
				next := 0
				if !isLast {
					next = srcRoute[srcPos+1]
				}

				srcRemoval := routeChange{
					vehicle:       srcV,
					deltaDistance: -insertionDelta(req, domain.ObjectiveDistance, prev, stopIdx, next, isLast),
					deltaTime:     -insertionDelta(req, domain.ObjectiveTime, prev, stopIdx, next, isLast),
					loadDelta:     -demand,
					closes:        len(srcRoute) == 2,
				}

				var best []routeChange
				bestV, bestPos := -1, -1

				for dstV := range sol.routes {
					if dstV != srcV && sol.loads[dstV]+demand > req.Capacity {
						continue
					}
					route := sol.routes[dstV]
					if dstV == srcV {
						route = srcRoute
					}
					for pos := 1; pos <= len(route); pos++ {
						if dstV == srcV && (pos == srcPos || pos == srcPos+1) {
							continue
						}
						a := route[pos-1]
						isEnd := pos == len(route)
						var b int
						if !isEnd {
							b = route[pos]
						}
						dstInsertion := routeChange{
							vehicle:       dstV,
							deltaDistance: insertionDelta(req, domain.ObjectiveDistance, a, stopIdx, b, isEnd),
							deltaTime:     insertionDelta(req, domain.ObjectiveTime, a, stopIdx, b, isEnd),
							loadDelta:     demand,
							opens:         dstV != srcV && len(route) == 1,
						}

						var candidate []routeChange
						if dstV == srcV {
							// Same route: the removal and the insertion both land
							// on vehicle srcV, so fold them into one net change.
							candidate = []routeChange{{
								vehicle:       srcV,
								deltaDistance: srcRemoval.deltaDistance + dstInsertion.deltaDistance,
								deltaTime:     srcRemoval.deltaTime + dstInsertion.deltaTime,
							}}
						} else {
							candidate = []routeChange{srcRemoval, dstInsertion}
						}

						if best == nil || isBetter(req, sol, spans, candidate, best) {
							best = candidate
							bestV, bestPos = dstV, pos
						}
					}
				}

				if bestV == -1 || !isBetter(req, sol, spans, best, nil) {
					continue
				}

				applyRelocate(sol, srcV, srcPos, bestV, bestPos, stopIdx, demand)
				improvedHere = true
				anyImproved = true
				break
			}
			if improvedHere {
				break
			}
		}

		if !improvedHere {
			break
		}
	}
	return anyImproved
}

func applyRelocate(sol *solution, srcV, srcPos, dstV, dstPos, stopIdx, demand int) {
	src := sol.routes[srcV]
	src = append(src[:srcPos], src[srcPos+1:]...)
	sol.routes[srcV] = src
	sol.loads[srcV] -= demand

	dst := sol.routes[dstV]
	if dstV == srcV {
		dst = src
		if dstPos > srcPos {
			dstPos--
		}
	}
	newDst := make([]int, 0, len(dst)+1)
	newDst = append(newDst, dst[:dstPos]...)
	newDst = append(newDst, stopIdx)
	newDst = append(newDst, dst[dstPos:]...)
	sol.routes[dstV] = newDst
	sol.loads[dstV] += demand
}
