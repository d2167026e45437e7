package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// FingerprintWaypoint is one component of a vehicle fingerprint: the stop
// identifier and its coordinates at full stored precision (§4.4).
type FingerprintWaypoint struct {
	StopID string
	Lon    float64
	Lat    float64
}

// Fingerprint is the cache key of the edit-delta engine: the ordered
// waypoint tuple for a vehicle plus the scenario's materialization
// parameters. Two fingerprints are equal only if every component matches
// exactly.
type Fingerprint struct {
	Waypoints []FingerprintWaypoint
	Params    MaterializationParams
}

// Canonical renders the fingerprint as a stable string for equality
// comparison, persistence, and cache-key hashing. Coordinates are encoded
// at full float64 precision so no two distinct stored coordinates collide.
func (f Fingerprint) Canonical() string {
	var b strings.Builder
	for _, wp := range f.Waypoints {
		b.WriteString(wp.StopID)
		b.WriteByte('|')
		b.WriteString(strconv.FormatFloat(wp.Lon, 'g', -1, 64))
		b.WriteByte('|')
		b.WriteString(strconv.FormatFloat(wp.Lat, 'g', -1, 64))
		b.WriteByte(';')
	}
	fmt.Fprintf(&b, "so=%s|vc=%s|da=%d|dw=%d",
		f.Params.SearchOption, f.Params.VehicleClass,
		f.Params.DepartAt.Unix(), f.Params.ViaDwellSeconds)
	return b.String()
}

func (f Fingerprint) Equal(other Fingerprint) bool {
	return f.Canonical() == other.Canonical()
}
