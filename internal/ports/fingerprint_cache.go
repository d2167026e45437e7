package ports

import (
	"context"

	"vrp-planner/internal/domain"
)

// FingerprintCache is the cross-project, cross-scenario cache of
// materialized vehicle routes keyed by fingerprint. It sits in front of the
// DirectionsProvider: a cache hit means two vehicles — in the same or
// different scenarios, even different projects — produced an identical
// ordered waypoint sequence under identical materialization parameters, so
// the provider does not need to be called again.
//
// This is an optimization, not a correctness boundary: a cache miss must
// always fall through to the provider, never to an error.
type FingerprintCache interface {
	Get(ctx context.Context, fp domain.Fingerprint) (domain.VehicleRoute, bool, error)
	Put(ctx context.Context, fp domain.Fingerprint, route domain.VehicleRoute) error
}
