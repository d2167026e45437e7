// Package fingerprintcache implements the cross-project, cross-scenario
// FingerprintCache port against Redis, grounded on the teacher's
// SQL-backed cache adapters (sql_distance_cache.go) for structure and
// error style, generalized from a SQL table to a key-value store since the
// fingerprint cache's access pattern is pure point lookups, not range
// queries.
package fingerprintcache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/redis/go-redis/v9"

	"vrp-planner/internal/domain"
	"vrp-planner/internal/platform/obs"
)

// RedisFingerprintCache is a Redis-backed cache for materialized vehicle
// routes keyed by fingerprint (spec §4.4).
type RedisFingerprintCache struct {
	Client *redis.Client
	// TTL bounds how long a fingerprint's materialized route stays cached.
	// NewRedisFingerprintCache sets it to 24h when given zero or less.
	TTL time.Duration
}

func NewRedisFingerprintCache(client *redis.Client, ttl time.Duration) *RedisFingerprintCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisFingerprintCache{Client: client, TTL: ttl}
}

func cacheKey(fp domain.Fingerprint) string {
	sum := xxhash.Sum64String(fp.Canonical())
	return fmt.Sprintf("vrp:fingerprint:%x", sum)
}

func (c *RedisFingerprintCache) Get(ctx context.Context, fp domain.Fingerprint) (_ domain.VehicleRoute, _ bool, err error) {
	defer obs.Time(ctx, "fingerprintcache.Get")(&err)

	raw, err := c.Client.Get(ctx, cacheKey(fp)).Bytes()
	if err == redis.Nil {
		return domain.VehicleRoute{}, false, nil
	}
	if err != nil {
		return domain.VehicleRoute{}, false, fmt.Errorf("fingerprint cache: get: %w", err)
	}

	var entry cachedEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return domain.VehicleRoute{}, false, fmt.Errorf("fingerprint cache: decode entry: %w", err)
	}

	// A hash collision or a key reused across incompatible fingerprints
	// must never surface a wrong route; treat it as a miss.
	if entry.Canonical != fp.Canonical() {
		return domain.VehicleRoute{}, false, nil
	}

	return entry.Route, true, nil
}

func (c *RedisFingerprintCache) Put(ctx context.Context, fp domain.Fingerprint, route domain.VehicleRoute) (err error) {
	defer obs.Time(ctx, "fingerprintcache.Put")(&err)

	entry := cachedEntry{Canonical: fp.Canonical(), Route: route}
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("fingerprint cache: encode entry: %w", err)
	}

	if err := c.Client.Set(ctx, cacheKey(fp), raw, c.TTL).Err(); err != nil {
		return fmt.Errorf("fingerprint cache: set: %w", err)
	}
	return nil
}

// cachedEntry stores the fingerprint's canonical form alongside the route so
// Get can detect a hash collision instead of trusting the 64-bit digest
// alone.
type cachedEntry struct {
	Canonical string              `json:"canonical"`
	Route     domain.VehicleRoute `json:"route"`
}
