package directions

import "encoding/json"

// wireViaPoint mirrors the provider's viaPoints entry shape, grounded on
// TmapRoute.create_route_request (tmap_route.py).
type wireViaPoint struct {
	ViaPointID   string `json:"viaPointId"`
	ViaPointName string `json:"viaPointName"`
	ViaX         string `json:"viaX"`
	ViaY         string `json:"viaY"`
	ViaTime      string `json:"viaTime,omitempty"`
}

// wireRouteRequest is the bit-exact request body documented by spec §6:
// searchOption/carType integer codes, totalValue dwell seconds per via,
// reqCoordType/resCoordType fixed to WGS84GEO, startTime as YYYYMMDDHHMM.
type wireRouteRequest struct {
	ReqCoordType string         `json:"reqCoordType"`
	ResCoordType string         `json:"resCoordType"`
	StartName    string         `json:"startName"`
	StartX       string         `json:"startX"`
	StartY       string         `json:"startY"`
	StartTime    string         `json:"startTime"`
	EndName      string         `json:"endName"`
	EndX         string         `json:"endX"`
	EndY         string         `json:"endY"`
	SearchOption string         `json:"searchOption"`
	CarType      string         `json:"carType"`
	ViaPoints    []wireViaPoint `json:"viaPoints"`
	TotalValue   string         `json:"totalValue"`
}

// wireGeometry holds raw coordinates because a LineString feature's
// coordinates are an array of [lon, lat] pairs while a Point feature's
// coordinates are a single [lon, lat] pair; the two shapes cannot share one
// static Go type.
type wireGeometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// lineString decodes Coordinates as a LineString's vertex list, or returns
// nil if Type is not "LineString".
func (g wireGeometry) lineString() [][2]float64 {
	if g.Type != "LineString" {
		return nil
	}
	var coords [][2]float64
	_ = json.Unmarshal(g.Coordinates, &coords)
	return coords
}

// point decodes Coordinates as a single Point, or ok=false if Type is not
// "Point".
func (g wireGeometry) point() (coord [2]float64, ok bool) {
	if g.Type != "Point" {
		return coord, false
	}
	if err := json.Unmarshal(g.Coordinates, &coord); err != nil {
		return coord, false
	}
	return coord, true
}

// wireFeature is one entry of the response's feature collection: either a
// LineString leg (carries time/distance in Properties) or a Point waypoint
// annotation.
type wireFeature struct {
	Geometry   wireGeometry `json:"geometry"`
	Properties struct {
		Time     float64 `json:"time"`
		Distance float64 `json:"distance"`
		// CumulativeTime/CumulativeDistance are set only on Point features
		// that annotate a waypoint with its own running total rather than a
		// per-leg delta, grounded on tmap_route.py's wp['cumulative_time']/
		// wp['cumulative_distance'] annotations. Pointers distinguish "field
		// absent" from a legitimate zero at the route's first waypoint.
		CumulativeTime     *float64 `json:"cumulativeTime,omitempty"`
		CumulativeDistance *float64 `json:"cumulativeDistance,omitempty"`
	} `json:"properties"`
}

// wireRouteResponse is the top-level feature collection. Its own Properties
// (distinct from each feature's) carries the provider's own reported route
// total, grounded on tmap_route.py's top_props = data.get('properties')
// fallback chain (totalTime/totalDistance, else time/distance).
type wireRouteResponse struct {
	Features   []wireFeature `json:"features"`
	Properties struct {
		TotalTime     float64 `json:"totalTime"`
		TotalDistance float64 `json:"totalDistance"`
		Time          float64 `json:"time"`
		Distance      float64 `json:"distance"`
	} `json:"properties"`
}
