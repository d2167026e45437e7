package services

import (
	"context"
	"errors"
	"testing"

	"vrp-planner/internal/apperr"
	"vrp-planner/internal/domain"
)

func TestScenarioEditorReorderTimelineRejectsBaseline(t *testing.T) {
	editor := &ScenarioEditor{PlanStore: newFakePlanStore()}

	err := editor.ReorderTimeline(context.Background(), "proj-1", domain.BaselineScenarioID, domain.EditPlan{})
	if !errors.Is(err, apperr.ErrBadInput) {
		t.Fatalf("expected ErrBadInput, got %v", err)
	}
}

func TestScenarioEditorReorderTimelineSavesPlan(t *testing.T) {
	store := newFakePlanStore()
	editor := &ScenarioEditor{PlanStore: store}

	plan := domain.EditPlan{Rows: []domain.EditPlanRow{{VehicleID: "v1", StopOrder: 0, StopID: "a"}}}
	if err := editor.ReorderTimeline(context.Background(), "proj-1", "scenario-1", plan); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	saved := store.editPlans[key("proj-1", "scenario-1")]
	if len(saved.Rows) != 1 || saved.Rows[0].StopID != "a" {
		t.Errorf("edit plan not persisted as given: %+v", saved)
	}
}

func TestScenarioEditorUpdateStopLocationRejectsBaseline(t *testing.T) {
	editor := &ScenarioEditor{PlanStore: newFakePlanStore()}

	err := editor.UpdateStopLocation(context.Background(), "proj-1", domain.BaselineScenarioID, "a", domain.Coordinates{Lon: 1, Lat: 2})
	if !errors.Is(err, apperr.ErrBadInput) {
		t.Fatalf("expected ErrBadInput, got %v", err)
	}
}

func TestScenarioEditorUpdateStopLocationScopesOverrideToScenario(t *testing.T) {
	store := newFakePlanStore()
	editor := &ScenarioEditor{PlanStore: store}

	coord := domain.Coordinates{Lon: 1, Lat: 2}
	if err := editor.UpdateStopLocation(context.Background(), "proj-1", "scenario-1", "a", coord); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	overrides := store.overrides[key("proj-1", "scenario-1")]
	if overrides["a"] != coord {
		t.Errorf("override not recorded for scenario-1: %+v", overrides)
	}
	if _, ok := store.overrides[key("proj-1", "scenario-2")]; ok {
		t.Errorf("override leaked into a different scenario")
	}
}
