// Package stub provides an in-memory catalog client for tests.
package stub

import (
	"context"
	"sort"

	"omori-lab/internal/catalog"
	"omori-lab/internal/domain"
	"omori-lab/internal/sequence"
)

// Client implements catalog.Client over a fixed event set, applying the
// same query filters the real service would.
type Client struct {
	Events []domain.Event

	// Err, when set, is returned by every call.
	Err error

	// Calls counts FetchEvents invocations.
	Calls int
}

// NewClient creates a stub catalog client.
func NewClient(events ...domain.Event) *Client {
	return &Client{Events: events}
}

// Compile-time interface check.
var _ catalog.Client = (*Client)(nil)

// FetchEvents filters the fixed event set by the query.
func (c *Client) FetchEvents(_ context.Context, q catalog.Query) ([]domain.Event, error) {
	c.Calls++
	if c.Err != nil {
		return nil, c.Err
	}

	start := q.Start.UnixMilli()
	end := q.End.UnixMilli()

	var out []domain.Event
	for _, e := range c.Events {
		if e.Time < start || e.Time > end {
			continue
		}
		if q.MinMagnitude > 0 && e.Magnitude < q.MinMagnitude {
			continue
		}
		if q.Circle != nil {
			if sequence.GreatCircleKm(e.Latitude, e.Longitude, q.Circle.Latitude, q.Circle.Longitude) > q.Circle.RadiusKm {
				continue
			}
		}
		out = append(out, e)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Time != out[j].Time {
			return out[i].Time < out[j].Time
		}
		return out[i].ID < out[j].ID
	})

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}
