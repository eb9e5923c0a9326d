package domain

import "math"

// Fit failure reasons. Empty reason means the fit succeeded.
const (
	FitFailInsufficientBins = "insufficient_bins" // fewer than 3 non-empty bins
	FitFailNoConvergence    = "no_convergence"    // optimizer hit its iteration cap or stalled
	FitFailNonFinite        = "non_finite"        // NaN/Inf parameters or residuals
	FitFailPoorFit          = "poor_fit"          // converged but R² below threshold
)

// OmoriFit is the result of fitting the Omori-Utsu law n(t) = K/(c+t)^p to a
// rate series. When PFixed is true, p was held at 1 (classical Omori law).
// Immutable once produced.
type OmoriFit struct {
	K      float64 `json:"k"`
	C      float64 `json:"c"`
	P      float64 `json:"p"`
	PFixed bool    `json:"p_fixed"`

	RSquared float64 `json:"r_squared"` // computed in log-rate space
	RMSE     float64 `json:"rmse"`      // computed in linear rate space

	Success       bool   `json:"success"`
	FailureReason string `json:"failure_reason,omitempty"`
}

// UnfitOmori returns the sentinel "unfit" result for the given failure
// reason: NaN parameters, zero R², Success=false.
func UnfitOmori(reason string, pFixed bool) OmoriFit {
	nan := math.NaN()
	return OmoriFit{
		K:             nan,
		C:             nan,
		P:             nan,
		PFixed:        pFixed,
		RMSE:          nan,
		Success:       false,
		FailureReason: reason,
	}
}

// Fitted reports whether the fit produced usable parameters, regardless of
// whether it cleared the success threshold.
func (f *OmoriFit) Fitted() bool {
	return !math.IsNaN(f.K) && !math.IsNaN(f.C) && !math.IsNaN(f.P)
}
