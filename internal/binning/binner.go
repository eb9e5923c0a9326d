// Package binning converts aftershock sequences into time-binned rate series.
package binning

import (
	"math"
	"sort"

	"omori-lab/internal/domain"
)

// minStartHours floors the first bin edge so the logarithmic grid never
// starts at t=0, where the spacing degenerates.
const minStartHours = 0.1

// Bin partitions the elapsed-time domain of a sequence into at most nBins
// logarithmically spaced intervals (equal ratio, not equal width) and returns
// the per-bin event rates. Omori decay is fastest near t=0; equal-width bins
// would starve the early-time regime of resolution.
//
// Bins with zero observed count are dropped, not floored: log(0) is
// undefined and a synthetic floor would bias p downward. The effective bin
// count is capped at count/3 so sparse sequences keep a few events per bin.
// The returned series may hold fewer than 3 bins; the fitter treats that as
// an automatic failure.
func Bin(seq *domain.AftershockSequence, nBins int) domain.RateSeries {
	if seq == nil || len(seq.Aftershocks) == 0 || nBins < 1 {
		return nil
	}

	elapsed := seq.ElapsedHours()
	sort.Float64s(elapsed)

	tMin := math.Max(minStartHours, elapsed[0])
	tMax := elapsed[len(elapsed)-1]
	if tMax <= tMin {
		return nil
	}

	n := nBins
	if maxBins := len(elapsed) / 3; maxBins < n {
		n = maxBins
	}
	if n < 1 {
		n = 1
	}

	edges := logspace(tMin, tMax, n+1)

	series := make(domain.RateSeries, 0, n)
	for i := 0; i < n; i++ {
		lo, hi := edges[i], edges[i+1]
		count := 0
		for _, t := range elapsed {
			if t >= lo && (t < hi || (i == n-1 && t == hi)) {
				count++
			}
		}
		if count == 0 {
			continue
		}
		width := hi - lo
		series = append(series, domain.RateBin{
			CenterHours: (lo + hi) / 2,
			WidthHours:  width,
			Count:       count,
			Rate:        float64(count) / width,
		})
	}

	return series
}

// logspace returns n points spaced with equal ratio between lo and hi,
// inclusive on both ends.
func logspace(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	logLo := math.Log10(lo)
	logHi := math.Log10(hi)
	step := (logHi - logLo) / float64(n-1)
	for i := range out {
		out[i] = math.Pow(10, logLo+float64(i)*step)
	}
	// Pin the endpoints against rounding drift.
	out[0] = lo
	out[n-1] = hi
	return out
}
