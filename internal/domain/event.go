package domain

import "time"

// Event represents one earthquake catalog record.
// Corresponds to events table in PostgreSQL and the ClickHouse archive.
// Never mutated after ingestion.
type Event struct {
	ID        string  `json:"id"`         // USGS event identifier, e.g. "us7000abcd"
	Time      int64   `json:"time"`       // origin time, Unix timestamp in milliseconds
	Latitude  float64 `json:"latitude"`   // epicenter latitude, degrees
	Longitude float64 `json:"longitude"`  // epicenter longitude, degrees
	DepthKm   float64 `json:"depth_km"`   // hypocenter depth, km
	Magnitude float64 `json:"magnitude"`  // reported magnitude
	MagType   string  `json:"mag_type"`   // magnitude scale, e.g. "mww"
	Place     string  `json:"place"`      // human-readable location
	CreatedAt int64   `json:"created_at"` // record creation timestamp (ms)
}

// TimeUTC returns the origin time as a UTC time.Time.
func (e *Event) TimeUTC() time.Time {
	return time.UnixMilli(e.Time).UTC()
}

// HoursAfter returns the elapsed time in hours since the reference event.
// Negative when e precedes ref.
func (e *Event) HoursAfter(ref *Event) float64 {
	return float64(e.Time-ref.Time) / (1000 * 3600)
}
