// Package sequence associates aftershocks to candidate mainshocks.
package sequence

import (
	"math"
	"sort"

	"omori-lab/internal/domain"
)

const earthRadiusKm = 6371.0

// GreatCircleKm returns the great-circle surface distance in km between two
// epicenters (haversine). Depth is not part of the distance.
func GreatCircleKm(lat1, lon1, lat2, lon2 float64) float64 {
	const deg = math.Pi / 180
	phi1 := lat1 * deg
	phi2 := lat2 * deg
	dPhi := (lat2 - lat1) * deg
	dLambda := (lon2 - lon1) * deg

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// Associated reports whether e belongs to mainshock's aftershock sequence
// under the configured spatiotemporal window and magnitude thresholds.
func Associated(e, mainshock *domain.Event, cfg domain.AnalysisConfig) bool {
	if e.ID == mainshock.ID {
		return false
	}

	delayMs := e.Time - mainshock.Time
	minDelayMs := int64(cfg.MinDelayMinutes * 60 * 1000)
	maxDelayMs := int64(cfg.TemporalWindowDays * 24 * 3600 * 1000)
	if delayMs < minDelayMs || delayMs > maxDelayMs {
		return false
	}

	if e.Magnitude < cfg.DetectionThreshold || e.Magnitude >= mainshock.Magnitude {
		return false
	}

	dist := GreatCircleKm(e.Latitude, e.Longitude, mainshock.Latitude, mainshock.Longitude)
	return dist <= cfg.SpatialRadiusKm
}

// Build extracts the aftershock sequence for a mainshock from the candidate
// events. Returns nil when fewer than cfg.MinAftershocks events satisfy the
// association predicate; callers must treat nil as "insufficient data", not
// as an error. Pure function over its inputs.
func Build(mainshock domain.Event, candidates []domain.Event, cfg domain.AnalysisConfig) *domain.AftershockSequence {
	var members []domain.Event
	seen := make(map[string]struct{}, len(candidates))

	for _, e := range candidates {
		if !Associated(&e, &mainshock, cfg) {
			continue
		}
		// Duplicates by identity are forbidden in a sequence.
		if _, dup := seen[e.ID]; dup {
			continue
		}
		seen[e.ID] = struct{}{}
		members = append(members, e)
	}

	if len(members) < cfg.MinAftershocks {
		return nil
	}

	sort.Slice(members, func(i, j int) bool {
		if members[i].Time != members[j].Time {
			return members[i].Time < members[j].Time
		}
		return members[i].ID < members[j].ID
	})

	return &domain.AftershockSequence{
		Mainshock:   mainshock,
		Aftershocks: members,
	}
}

// SelectMainshocks filters events down to candidate mainshocks
// (magnitude >= cfg.MinMainshockMagnitude) in time-ascending order, ties
// broken by ID, so downstream processing is deterministic.
func SelectMainshocks(events []domain.Event, cfg domain.AnalysisConfig) []domain.Event {
	var out []domain.Event
	for _, e := range events {
		if e.Magnitude >= cfg.MinMainshockMagnitude {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Time != out[j].Time {
			return out[i].Time < out[j].Time
		}
		return out[i].ID < out[j].ID
	})
	return out
}
