package domain

// RateBin is one non-empty bin of a binned aftershock rate series.
type RateBin struct {
	CenterHours float64 // bin midpoint, hours after mainshock
	WidthHours  float64 // bin duration, hours
	Count       int     // events observed in the bin, always > 0
	Rate        float64 // events per hour: Count / WidthHours
}

// RateSeries is an ordered sequence of non-empty rate bins with strictly
// increasing centers. Built once from an AftershockSequence and consumed by
// the fitter.
type RateSeries []RateBin

// Times returns the bin centers in hours.
func (s RateSeries) Times() []float64 {
	out := make([]float64, len(s))
	for i := range s {
		out[i] = s[i].CenterHours
	}
	return out
}

// Rates returns the observed rates in events per hour.
func (s RateSeries) Rates() []float64 {
	out := make([]float64, len(s))
	for i := range s {
		out[i] = s[i].Rate
	}
	return out
}

// PeakRate returns the largest observed rate and its bin center time.
// Returns (0, 0) for an empty series.
func (s RateSeries) PeakRate() (rate, atHours float64) {
	for i := range s {
		if s[i].Rate > rate {
			rate = s[i].Rate
			atHours = s[i].CenterHours
		}
	}
	return rate, atHours
}
