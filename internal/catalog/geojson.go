package catalog

import (
	"encoding/json"
	"fmt"

	"omori-lab/internal/domain"
)

// featureCollection mirrors the subset of the USGS GeoJSON response the
// pipeline consumes.
type featureCollection struct {
	Features []feature `json:"features"`
}

type feature struct {
	ID         string `json:"id"`
	Properties struct {
		Time    int64    `json:"time"` // ms
		Mag     *float64 `json:"mag"`  // null for some records
		MagType string   `json:"magType"`
		Place   string   `json:"place"`
		Type    string   `json:"type"`
	} `json:"properties"`
	Geometry struct {
		Coordinates []float64 `json:"coordinates"` // [lon, lat, depth]
	} `json:"geometry"`
}

// ParseGeoJSON converts a USGS GeoJSON event query response into events.
// Records without a magnitude and records whose type is not "earthquake"
// (quarry blasts, explosions) are dropped, matching the catalog's own
// magnitude-consistency guarantees downstream components assume.
func ParseGeoJSON(data []byte) ([]domain.Event, error) {
	var fc featureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("unmarshal geojson: %w", err)
	}

	events := make([]domain.Event, 0, len(fc.Features))
	for _, f := range fc.Features {
		if f.ID == "" || f.Properties.Mag == nil {
			continue
		}
		if f.Properties.Type != "" && f.Properties.Type != "earthquake" {
			continue
		}
		if len(f.Geometry.Coordinates) < 3 {
			continue
		}

		events = append(events, domain.Event{
			ID:        f.ID,
			Time:      f.Properties.Time,
			Longitude: f.Geometry.Coordinates[0],
			Latitude:  f.Geometry.Coordinates[1],
			DepthKm:   f.Geometry.Coordinates[2],
			Magnitude: *f.Properties.Mag,
			MagType:   f.Properties.MagType,
			Place:     f.Properties.Place,
		})
	}
	return events, nil
}
