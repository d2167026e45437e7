package directions

import (
	"context"
	"math"

	"vrp-planner/internal/ports"
)

// MockProvider synthesizes a straight-line route between start, each via in
// order, and end, at a fixed speed. It never calls the network; it exists
// for tests and local development, grounded on the teacher's
// MockDistanceProvider (mock_distance_provider.go).
type MockProvider struct {
	// MetersPerSecond is the synthetic travel speed. Defaults to 10 (36 km/h)
	// if zero.
	MetersPerSecond float64
}

func (m *MockProvider) GetRoute(ctx context.Context, req ports.RouteRequest) (ports.RouteResult, error) {
	speed := m.MetersPerSecond
	if speed <= 0 {
		speed = 10
	}

	points := make([]ports.RoutePoint, 0, len(req.Vias)+2)
	points = append(points, req.Start)
	points = append(points, req.Vias...)
	points = append(points, req.End)

	var geometry [][2]float64
	var cumTime, cumDist []float64
	cT, cD := 0.0, 0.0

	for i, p := range points {
		c := [2]float64{p.Coordinates.Lon, p.Coordinates.Lat}
		if i > 0 {
			prev := points[i-1].Coordinates
			d := haversineMeters(prev.Lat, prev.Lon, p.Coordinates.Lat, p.Coordinates.Lon)
			cD += d
			cT += d / speed
		}
		geometry = append(geometry, c)
		cumTime = append(cumTime, cT)
		cumDist = append(cumDist, cD)
	}

	return ports.RouteResult{
		Geometry:           geometry,
		CumulativeTime:     cumTime,
		CumulativeDistance: cumDist,
		TotalTime:          cT,
		TotalDistance:      cD,
	}, nil
}

func haversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusM = 6371000.0
	toRad := func(d float64) float64 { return d * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusM * c
}
