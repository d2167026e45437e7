// Package directions implements the DirectionsProvider port against the
// externally documented routeSequential100-style directions API described
// by spec §6, grounded on TmapRoute (tmap_route.py) for request shape and
// the teacher's ORSDistanceProvider (ors_distance_provider.go) for HTTP
// session handling, retry, and error wrapping.
package directions

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"vrp-planner/internal/ports"
)

// TmapProvider calls a single POST endpoint accepting a start, end, and an
// ordered via list in one request, matching the provider's
// routeSequential100 contract (at most 100 waypoints per call).
type TmapProvider struct {
	session *http.Client
	apiKey  string
	baseURL string
}

// NewTmapProvider builds a provider whose HTTP client times out after
// timeout (spec §5's directions-call default of 15s if timeout <= 0). The
// client timeout is a backstop behind whatever context deadline the caller
// (materializer.MaterializeVehicle) already wraps each call in.
func NewTmapProvider(apiKey, baseURL string, timeout time.Duration) (*TmapProvider, error) {
	if apiKey == "" {
		return nil, errors.New("directions provider api key is empty")
	}
	if baseURL == "" {
		baseURL = "https://apis.openapi.sk.com/tmap/routes/routeSequential100"
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &TmapProvider{
		session: &http.Client{Timeout: timeout},
		apiKey:  apiKey,
		baseURL: baseURL,
	}, nil
}

func (p *TmapProvider) GetRoute(ctx context.Context, req ports.RouteRequest) (ports.RouteResult, error) {
	if len(req.Vias) > 98 {
		return ports.RouteResult{}, fmt.Errorf("directions: %d via points exceeds the provider's 100-waypoint limit", len(req.Vias))
	}

	searchCode, ok := req.Params.SearchOption.Code()
	if !ok {
		searchCode = 0 // recommended
	}
	carCode, ok := req.Params.VehicleClass.Code()
	if !ok {
		carCode = 3 // large-van, matching the teacher's default profile choice
	}

	startTime := req.Params.DepartAt
	if startTime.IsZero() {
		startTime = time.Now()
	}

	body := wireRouteRequest{
		ReqCoordType: "WGS84GEO",
		ResCoordType: "WGS84GEO",
		StartName:    req.Start.Name,
		StartX:       formatCoord(req.Start.Coordinates.Lon),
		StartY:       formatCoord(req.Start.Coordinates.Lat),
		StartTime:    startTime.Format("200601021504"),
		EndName:      req.End.Name,
		EndX:         formatCoord(req.End.Coordinates.Lon),
		EndY:         formatCoord(req.End.Coordinates.Lat),
		SearchOption: strconv.Itoa(searchCode),
		CarType:      strconv.Itoa(carCode),
		TotalValue:   strconv.Itoa(req.Params.ViaDwellSeconds),
	}
	for _, v := range req.Vias {
		body.ViaPoints = append(body.ViaPoints, wireViaPoint{
			ViaPointID:   v.StopID,
			ViaPointName: v.Name,
			ViaX:         formatCoord(v.Coordinates.Lon),
			ViaY:         formatCoord(v.Coordinates.Lat),
		})
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return ports.RouteResult{}, fmt.Errorf("directions: marshal request: %w", err)
	}

	endpoint := p.baseURL + "?version=1"
	resp, err := p.doWithRetry(ctx, func() (*http.Request, error) {
		return p.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	})
	if err != nil {
		return ports.RouteResult{}, fmt.Errorf("directions: request failed: %w", err)
	}
	defer resp.Body.Close()

	var wireResp wireRouteResponse
	if err := json.NewDecoder(resp.Body).Decode(&wireResp); err != nil {
		return ports.RouteResult{}, fmt.Errorf("directions: decode response: %w", err)
	}

	return parseRouteResponse(wireResp), nil
}

func formatCoord(v float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.7f", v), "0"), ".")
}
