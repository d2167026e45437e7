package services

import (
	"context"
	"errors"
	"testing"

	"vrp-planner/internal/apperr"
	"vrp-planner/internal/domain"
	"vrp-planner/internal/ports"
)

// fakeStopStore and fakePlanStore are hand-written in-memory fakes, matching
// the teacher's style of plain struct fakes (distance.NewMockDistanceProvider)
// over a mocking library.

type fakeStopStore struct {
	stops domain.StopSet
}

func (f *fakeStopStore) CurrentStops(ctx context.Context, projectID string) (domain.StopSet, error) {
	return f.stops, nil
}

type fakePlanStore struct {
	editPlans map[string]domain.EditPlan
	artifacts map[string]domain.PlanArtifact
	outputs   map[string]domain.OrderedPlan
	overrides map[string]map[string]domain.Coordinates
}

func newFakePlanStore() *fakePlanStore {
	return &fakePlanStore{
		editPlans: make(map[string]domain.EditPlan),
		artifacts: make(map[string]domain.PlanArtifact),
		outputs:   make(map[string]domain.OrderedPlan),
		overrides: make(map[string]map[string]domain.Coordinates),
	}
}

func key(projectID, scenarioID string) string { return projectID + "|" + scenarioID }

func (f *fakePlanStore) SaveOptimizationOutput(ctx context.Context, projectID string, plan domain.OrderedPlan) error {
	f.outputs[projectID] = plan
	return nil
}
func (f *fakePlanStore) LoadOptimizationOutput(ctx context.Context, projectID string) (domain.OrderedPlan, error) {
	p, ok := f.outputs[projectID]
	if !ok {
		return domain.OrderedPlan{}, apperr.ErrNotFound
	}
	return p, nil
}
func (f *fakePlanStore) SaveArtifact(ctx context.Context, projectID, scenarioID string, artifact domain.PlanArtifact) error {
	f.artifacts[key(projectID, scenarioID)] = artifact
	return nil
}
func (f *fakePlanStore) LoadArtifact(ctx context.Context, projectID, scenarioID string) (domain.PlanArtifact, error) {
	a, ok := f.artifacts[key(projectID, scenarioID)]
	if !ok {
		return domain.PlanArtifact{}, apperr.ErrNotFound
	}
	return a, nil
}
func (f *fakePlanStore) ListScenarios(ctx context.Context, projectID string) ([]string, error) {
	return nil, nil
}
func (f *fakePlanStore) CreateScenario(ctx context.Context, projectID, scenarioID, sourceScenarioID string) error {
	return nil
}
func (f *fakePlanStore) DeleteScenario(ctx context.Context, projectID, scenarioID string) error {
	return nil
}
func (f *fakePlanStore) SaveEditPlan(ctx context.Context, projectID, scenarioID string, plan domain.EditPlan) error {
	f.editPlans[key(projectID, scenarioID)] = plan
	return nil
}
func (f *fakePlanStore) LoadEditPlan(ctx context.Context, projectID, scenarioID string) (domain.EditPlan, error) {
	return f.editPlans[key(projectID, scenarioID)], nil
}
func (f *fakePlanStore) InvalidateMaterializations(ctx context.Context, projectID string) error {
	return nil
}
func (f *fakePlanStore) SetStopOverride(ctx context.Context, projectID, scenarioID, stopID string, coord domain.Coordinates) error {
	if f.overrides[key(projectID, scenarioID)] == nil {
		f.overrides[key(projectID, scenarioID)] = make(map[string]domain.Coordinates)
	}
	f.overrides[key(projectID, scenarioID)][stopID] = coord
	return nil
}
func (f *fakePlanStore) ScenarioStopOverrides(ctx context.Context, projectID, scenarioID string) (map[string]domain.Coordinates, error) {
	return f.overrides[key(projectID, scenarioID)], nil
}

var _ ports.StopStore = (*fakeStopStore)(nil)
var _ ports.PlanStore = (*fakePlanStore)(nil)

func sampleStopSet() domain.StopSet {
	return domain.StopSet{Stops: []domain.Stop{
		{StopID: "depot", IsDepot: true, Coordinates: domain.Coordinates{Lon: 0, Lat: 0}},
		{StopID: "a", Name: "A", Demand: 1, Coordinates: domain.Coordinates{Lon: 1, Lat: 0}},
		{StopID: "b", Name: "B", Demand: 1, Coordinates: domain.Coordinates{Lon: 2, Lat: 0}},
	}}
}

func fixedRoute(vehicleID string, geometry [][2]float64) domain.VehicleRoute {
	return domain.VehicleRoute{
		VehicleID:     vehicleID,
		RouteGeometry: geometry,
		Status:        domain.StatusOK,
	}
}

func TestEditDeltaReloadReusesUnchangedVehicleAndMaterializesChanged(t *testing.T) {
	stops := sampleStopSet()
	planStore := newFakePlanStore()
	projectID, scenarioID := "proj-1", "scenario-1"

	planStore.outputs[projectID] = domain.OrderedPlan{Mode: domain.ClosedTour}
	planStore.editPlans[key(projectID, scenarioID)] = domain.EditPlan{Rows: []domain.EditPlanRow{
		{VehicleID: "v1", StopOrder: 0, StopID: "a"},
		{VehicleID: "v2", StopOrder: 0, StopID: "b"},
	}}

	params := domain.MaterializationParams{}
	depot, _ := stops.Depot()

	cachedV1 := fixedRoute("v1", [][2]float64{{0, 0}, {1, 0}, {0, 0}})
	cachedV1.Waypoints = []domain.Waypoint{
		{StopID: "depot", Coordinates: depot.Coordinates},
		{StopID: "a", Coordinates: domain.Coordinates{Lon: 1, Lat: 0}},
		{StopID: "depot", Coordinates: depot.Coordinates},
	}
	// v2 cached with a stale coordinate for b, so its fingerprint differs and it must regenerate.
	cachedV2 := fixedRoute("v2", [][2]float64{{0, 0}, {9, 9}, {0, 0}})
	cachedV2.Waypoints = []domain.Waypoint{
		{StopID: "depot", Coordinates: depot.Coordinates},
		{StopID: "b", Coordinates: domain.Coordinates{Lon: 9, Lat: 9}}, // stale coordinate
		{StopID: "depot", Coordinates: depot.Coordinates},
	}
	planStore.artifacts[key(projectID, scenarioID)] = domain.PlanArtifact{
		Params:   params,
		Vehicles: map[string]domain.VehicleRoute{"v1": cachedV1, "v2": cachedV2},
	}

	provider := &fakeProvider{byStartStop: map[string]ports.RouteResult{
		"b": {
			Geometry:           [][2]float64{{0, 0}, {2, 0}, {0, 0}},
			CumulativeTime:     []float64{0, 100, 200},
			CumulativeDistance: []float64{0, 1000, 2000},
		},
	}}

	engine := &EditDeltaEngine{
		Stops:     &fakeStopStore{stops: stops},
		PlanStore: planStore,
		Provider:  provider,
	}

	stats, err := engine.Reload(context.Background(), projectID, scenarioID, params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Reused != 1 {
		t.Errorf("reused = %d, want 1", stats.Reused)
	}
	if stats.Regenerated != 1 {
		t.Errorf("regenerated = %d, want 1", stats.Regenerated)
	}

	saved := planStore.artifacts[key(projectID, scenarioID)]
	if saved.Vehicles["v1"].Status != domain.StatusOK {
		t.Errorf("v1 should have been reused with status ok")
	}
	if saved.Vehicles["v2"].Status != domain.StatusOK {
		t.Errorf("v2 should have been regenerated with status ok")
	}
}

func TestEditDeltaReloadDetectsDeletions(t *testing.T) {
	stops := sampleStopSet()
	planStore := newFakePlanStore()
	projectID, scenarioID := "proj-1", "scenario-1"

	planStore.outputs[projectID] = domain.OrderedPlan{Mode: domain.ClosedTour}
	planStore.editPlans[key(projectID, scenarioID)] = domain.EditPlan{Rows: []domain.EditPlanRow{
		{VehicleID: "v1", StopOrder: 0, StopID: "a"},
	}}
	planStore.artifacts[key(projectID, scenarioID)] = domain.PlanArtifact{
		Vehicles: map[string]domain.VehicleRoute{
			"v1": fixedRoute("v1", nil),
			"v2": fixedRoute("v2", nil), // no longer in the edit plan
		},
	}

	provider := &fakeProvider{byStartStop: map[string]ports.RouteResult{
		"a": {Geometry: [][2]float64{{0, 0}, {1, 0}, {0, 0}}, CumulativeTime: []float64{0, 50, 100}, CumulativeDistance: []float64{0, 500, 1000}},
	}}

	engine := &EditDeltaEngine{
		Stops:     &fakeStopStore{stops: stops},
		PlanStore: planStore,
		Provider:  provider,
	}

	stats, err := engine.Reload(context.Background(), projectID, scenarioID, domain.MaterializationParams{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Deleted != 1 {
		t.Errorf("deleted = %d, want 1", stats.Deleted)
	}

	saved := planStore.artifacts[key(projectID, scenarioID)]
	if _, ok := saved.Vehicles["v2"]; ok {
		t.Errorf("v2 should have been dropped from the saved artifact")
	}
}

func TestEditDeltaReloadFailsOnStaleStopReference(t *testing.T) {
	stops := sampleStopSet()
	planStore := newFakePlanStore()
	projectID, scenarioID := "proj-1", "scenario-1"

	planStore.outputs[projectID] = domain.OrderedPlan{Mode: domain.ClosedTour}
	planStore.editPlans[key(projectID, scenarioID)] = domain.EditPlan{Rows: []domain.EditPlanRow{
		{VehicleID: "v1", StopOrder: 0, StopID: "does-not-exist"},
	}}

	engine := &EditDeltaEngine{
		Stops:     &fakeStopStore{stops: stops},
		PlanStore: planStore,
		Provider:  &fakeProvider{},
	}

	_, err := engine.Reload(context.Background(), projectID, scenarioID, domain.MaterializationParams{})
	if !errors.Is(err, apperr.ErrStaleReference) {
		t.Fatalf("expected ErrStaleReference, got %v", err)
	}
}

// fakeProvider mirrors internal/materializer's test fake; duplicated here
// because the services package cannot import materializer's test file.
type fakeProvider struct {
	byStartStop map[string]ports.RouteResult
}

func (p *fakeProvider) GetRoute(ctx context.Context, req ports.RouteRequest) (ports.RouteResult, error) {
	startStop := req.Start.StopID
	if len(req.Vias) > 0 {
		startStop = req.Vias[0].StopID
	}
	return p.byStartStop[startStop], nil
}
