package optimizer

import (
	"fmt"

	"vrp-planner/internal/domain"
)

// maxMatrixEntryThreshold mirrors vrp_solver.py's 500000 cutoff on the
// largest single cost-matrix entry ("500km or a very large time value"
// in the original's own comment) above which a location is considered
// practically unreachable rather than merely distant.
const maxMatrixEntryThreshold = 500000

// oversizedInstanceThreshold mirrors vrp_solver.py's num_locations > 100
// cutoff, past which this package's cheapest-insertion search is unlikely
// to converge within the time budget at all.
const oversizedInstanceThreshold = 100

// diagnoseNoSolution inspects why a construction attempt could not place
// every stop and returns a specific cause, grounded on the prototype's
// diagnose_optimization_failure (vrp_solver.py): capacity utilization,
// unreachable-cost entries, oversized instance, too few vehicles for the
// instance size. Individual demand overage is caught earlier by
// checkFeasibility, so it never reaches construction and has no branch
// here.
func diagnoseNoSolution(req Request, unplaced []domain.Stop) string {
	total := 0
	for _, st := range req.Stops.Stops {
		if !st.IsDepot {
			total += st.Demand
		}
	}
	totalCapacity := req.VehicleCount * req.Capacity

	if float64(total) > float64(totalCapacity)*0.95 {
		return fmt.Sprintf("capacity near limit: total demand %d vs fleet capacity %d across %d vehicle(s); add vehicles or capacity", total, totalCapacity, req.VehicleCount)
	}

	if maxCost := maxMatrixEntry(req.Matrix.Distance); maxCost > maxMatrixEntryThreshold {
		return fmt.Sprintf("unreachable locations: largest matrix entry is %.1f, over the %.0f threshold; regenerate the distance matrix", maxCost, float64(maxMatrixEntryThreshold))
	}

	numLocations := len(req.Stops.Stops)
	if numLocations > oversizedInstanceThreshold {
		return fmt.Sprintf("problem size too large: %d locations exceeds the %d this search is expected to converge on; reduce the location count or extend the time budget", numLocations, oversizedInstanceThreshold)
	}

	nonDepot := 0
	for _, st := range req.Stops.Stops {
		if !st.IsDepot {
			nonDepot++
		}
	}
	if req.VehicleCount == 1 && nonDepot > 20 {
		return fmt.Sprintf("too few vehicles: %d stops assigned to a single vehicle is unlikely to converge within the time budget", nonDepot)
	}

	names := make([]string, 0, len(unplaced))
	for _, st := range unplaced {
		names = append(names, st.Name)
	}
	return fmt.Sprintf("no feasible insertion found for stop(s): %v within the time budget", names)
}

// maxMatrixEntry returns the largest value anywhere in matrix, or 0 for
// an empty one.
func maxMatrixEntry(matrix [][]float64) float64 {
	max := 0.0
	for _, row := range matrix {
		for _, v := range row {
			if v > max {
				max = v
			}
		}
	}
	return max
}
