package directions

import (
	"encoding/json"
	"testing"
)

func TestParseRouteResponseFlattensAndDedupes(t *testing.T) {
	raw := `{
		"features": [
			{
				"geometry": {"type": "LineString", "coordinates": [[0,0],[0.5,0],[1,0]]},
				"properties": {"time": 100, "distance": 1000}
			},
			{
				"geometry": {"type": "LineString", "coordinates": [[1,0],[1.5,0],[2,0]]},
				"properties": {"time": 100, "distance": 1000}
			}
		]
	}`

	var resp wireRouteResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		t.Fatalf("unmarshal fixture: %v", err)
	}

	result := parseRouteResponse(resp)

	if len(result.Geometry) != 5 { // 3 + 3, minus the shared [1,0] duplicate
		t.Fatalf("expected 5 de-duplicated vertices, got %d: %v", len(result.Geometry), result.Geometry)
	}
	if result.TotalTime != 200 {
		t.Errorf("total time = %v, want 200", result.TotalTime)
	}
	if result.TotalDistance != 2000 {
		t.Errorf("total distance = %v, want 2000", result.TotalDistance)
	}

	for i := 1; i < len(result.CumulativeTime); i++ {
		if result.CumulativeTime[i] < result.CumulativeTime[i-1] {
			t.Errorf("cumulative time decreased at index %d", i)
		}
		if result.CumulativeDistance[i] < result.CumulativeDistance[i-1] {
			t.Errorf("cumulative distance decreased at index %d", i)
		}
	}

	last := len(result.CumulativeTime) - 1
	if result.CumulativeTime[last] != 200 {
		t.Errorf("final cumulative time = %v, want 200", result.CumulativeTime[last])
	}
}

func TestParseRouteResponseIgnoresPointFeatures(t *testing.T) {
	raw := `{
		"features": [
			{"geometry": {"type": "Point", "coordinates": [0,0]}, "properties": {}},
			{
				"geometry": {"type": "LineString", "coordinates": [[0,0],[1,0]]},
				"properties": {"time": 50, "distance": 500}
			}
		]
	}`

	var resp wireRouteResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		t.Fatalf("unmarshal fixture: %v", err)
	}

	result := parseRouteResponse(resp)
	if len(result.Geometry) != 2 {
		t.Fatalf("expected only the LineString's 2 vertices, got %d", len(result.Geometry))
	}
}

func TestParseRouteResponsePointFeatureOverridesInterpolatedCumulative(t *testing.T) {
	raw := `{
		"features": [
			{
				"geometry": {"type": "LineString", "coordinates": [[0,0],[1,0],[2,0]]},
				"properties": {"time": 100, "distance": 1000}
			},
			{
				"geometry": {"type": "Point", "coordinates": [2,0]},
				"properties": {"cumulativeTime": 80, "cumulativeDistance": 900}
			},
			{
				"geometry": {"type": "LineString", "coordinates": [[2,0],[3,0]]},
				"properties": {"time": 50, "distance": 500}
			}
		]
	}`

	var resp wireRouteResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		t.Fatalf("unmarshal fixture: %v", err)
	}

	result := parseRouteResponse(resp)
	if len(result.Geometry) != 4 {
		t.Fatalf("expected 4 vertices (point feature reuses the shared [2,0] vertex), got %d: %v", len(result.Geometry), result.Geometry)
	}

	overridden := result.CumulativeTime[2]
	if overridden != 80 {
		t.Errorf("cumulative time at the overridden vertex = %v, want 80 (the provider's own value, not the interpolated 100)", overridden)
	}
	if result.CumulativeDistance[2] != 900 {
		t.Errorf("cumulative distance at the overridden vertex = %v, want 900", result.CumulativeDistance[2])
	}

	// The leg after the override must continue accumulating from the
	// overridden baseline, not the stale interpolated one.
	last := len(result.CumulativeTime) - 1
	if result.CumulativeTime[last] != 130 {
		t.Errorf("final cumulative time = %v, want 130 (80 override + 50 for the next leg)", result.CumulativeTime[last])
	}
}
