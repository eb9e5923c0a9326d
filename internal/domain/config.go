package domain

import "fmt"

// Bounds is a closed parameter interval for the bounded fit.
type Bounds struct {
	Lo float64
	Hi float64
}

// Contains reports whether v lies within the bounds.
func (b Bounds) Contains(v float64) bool {
	return v >= b.Lo && v <= b.Hi
}

// AnalysisConfig holds every tunable of the sequence-extraction and fitting
// pipeline. All components take it explicitly; nothing reads ambient state.
type AnalysisConfig struct {
	// Mainshock selection
	MinMainshockMagnitude float64 // candidate threshold, default 6.0

	// Association predicate
	DetectionThreshold float64 // minimum aftershock magnitude, default 2.0
	SpatialRadiusKm    float64 // great-circle search radius, default 100
	TemporalWindowDays float64 // aftershock window length, default 30
	MinDelayMinutes    float64 // lower temporal bound, default 1; excludes the mainshock and coincident reports

	// Sequence filtering
	MinAftershocks int // minimum member count, default 10

	// Binning
	NumBins int // maximum number of logarithmic bins, default 20; capped at count/3

	// Fitting
	FitSuccessThreshold float64 // R² gate for success, default 0.5
	MaxIterations       int     // optimizer iteration cap, default 2000
	BoundsK             Bounds  // default [0.01, 1e6]
	BoundsC             Bounds  // hours, default [0.001, 10]
	BoundsP             Bounds  // default [0.1, 3.0]
}

// DefaultConfig returns the documented default configuration.
func DefaultConfig() AnalysisConfig {
	return AnalysisConfig{
		MinMainshockMagnitude: 6.0,
		DetectionThreshold:    2.0,
		SpatialRadiusKm:       100,
		TemporalWindowDays:    30,
		MinDelayMinutes:       1,
		MinAftershocks:        10,
		NumBins:               20,
		FitSuccessThreshold:   0.5,
		MaxIterations:         2000,
		BoundsK:               Bounds{Lo: 0.01, Hi: 1e6},
		BoundsC:               Bounds{Lo: 0.001, Hi: 10},
		BoundsP:               Bounds{Lo: 0.1, Hi: 3.0},
	}
}

// Validate checks the configuration for contradictions. A misconfigured run
// must abort at pipeline start rather than silently fall back to defaults.
func (c AnalysisConfig) Validate() error {
	if c.MinMainshockMagnitude <= c.DetectionThreshold {
		return fmt.Errorf("min mainshock magnitude %.2f must exceed detection threshold %.2f",
			c.MinMainshockMagnitude, c.DetectionThreshold)
	}
	if c.SpatialRadiusKm <= 0 {
		return fmt.Errorf("spatial radius must be positive, got %.2f", c.SpatialRadiusKm)
	}
	if c.TemporalWindowDays <= 0 {
		return fmt.Errorf("temporal window must be positive, got %.2f days", c.TemporalWindowDays)
	}
	if c.MinDelayMinutes < 0 {
		return fmt.Errorf("minimum delay must be non-negative, got %.2f minutes", c.MinDelayMinutes)
	}
	if c.MinDelayMinutes/60 >= c.TemporalWindowDays*24 {
		return fmt.Errorf("minimum delay %.2f min is not inside the %.2f day window",
			c.MinDelayMinutes, c.TemporalWindowDays)
	}
	if c.MinAftershocks < 1 {
		return fmt.Errorf("minimum aftershock count must be at least 1, got %d", c.MinAftershocks)
	}
	if c.NumBins < 1 {
		return fmt.Errorf("bin count must be at least 1, got %d", c.NumBins)
	}
	if c.FitSuccessThreshold < 0 || c.FitSuccessThreshold >= 1 {
		return fmt.Errorf("fit success threshold must be in [0, 1), got %.3f", c.FitSuccessThreshold)
	}
	if c.MaxIterations < 1 {
		return fmt.Errorf("optimizer iteration cap must be at least 1, got %d", c.MaxIterations)
	}
	for _, b := range []struct {
		name   string
		bounds Bounds
	}{
		{"K", c.BoundsK},
		{"c", c.BoundsC},
		{"p", c.BoundsP},
	} {
		if b.bounds.Lo <= 0 {
			return fmt.Errorf("%s lower bound must be positive, got %g", b.name, b.bounds.Lo)
		}
		if b.bounds.Lo >= b.bounds.Hi {
			return fmt.Errorf("%s bounds invalid: lower %g >= upper %g", b.name, b.bounds.Lo, b.bounds.Hi)
		}
	}
	if !c.BoundsP.Contains(1.0) {
		return fmt.Errorf("p bounds [%g, %g] must contain 1.0 for the classical-law comparison",
			c.BoundsP.Lo, c.BoundsP.Hi)
	}
	return nil
}
