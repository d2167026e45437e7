package domain

import "sort"

// EditPlanRow is one row of a scenario's tabular edit plan (§3): the
// user-intended vehicle assignment and stop order, independent of any
// materialized geometry.
type EditPlanRow struct {
	VehicleID string
	StopOrder int
	StopID    string
}

// EditPlan is the full tabular edit plan for one scenario, naturally grouped
// by vehicle when read in StopOrder within a vehicle.
type EditPlan struct {
	Rows []EditPlanRow
}

// ByVehicle groups rows by vehicle id, each group sorted by StopOrder.
func (p EditPlan) ByVehicle() map[string][]EditPlanRow {
	out := make(map[string][]EditPlanRow)
	for _, r := range p.Rows {
		out[r.VehicleID] = append(out[r.VehicleID], r)
	}
	for v, rows := range out {
		sort.Slice(rows, func(i, j int) bool { return rows[i].StopOrder < rows[j].StopOrder })
		out[v] = rows
	}
	return out
}

// BaselineScenarioID is the implicit scenario id denoting the baseline plan,
// never deletable and never present as an explicit row in the scenarios
// table (§4.3).
const BaselineScenarioID = ""

// Scenario is a named variant of the baseline plan: its tabular edit plan
// plus its own cached materialized artifact.
type Scenario struct {
	ProjectID  string
	ScenarioID string
	EditPlan   EditPlan
	Artifact   PlanArtifact
}

func (s Scenario) IsBaseline() bool {
	return s.ScenarioID == BaselineScenarioID
}
