package omori

import (
	"math"

	"gonum.org/v1/gonum/optimize"

	"omori-lab/internal/domain"
)

// MinFitBins is the smallest number of non-empty bins that still leaves
// degrees of freedom for the three free parameters. Series below this are an
// automatic fit failure, not an error.
const MinFitBins = 3

// penalty is returned by the objective outside the feasible region, matching
// the bounded search without letting NaN/Inf reach the optimizer.
const penalty = 1e10

// Fitter performs bounded non-linear least squares of the Omori-Utsu law in
// log10-rate space. Log-space fitting equalizes residual weight across the
// orders of magnitude between early and late aftershock rates.
//
// Numerical failures never escape Fit: they are downgraded to a result with
// Success=false and a typed reason. Fitting the same series twice yields
// identical results.
type Fitter struct {
	cfg domain.AnalysisConfig
}

// NewFitter creates a Fitter with the given configuration. The configuration
// is assumed validated by the caller.
func NewFitter(cfg domain.AnalysisConfig) *Fitter {
	return &Fitter{cfg: cfg}
}

// FitModified fits n(t) = K/(c+t)^p with all three parameters free.
func (f *Fitter) FitModified(series domain.RateSeries) domain.OmoriFit {
	return f.fit(series, false)
}

// FitClassical fits the classical Omori law with p held at 1.
func (f *Fitter) FitClassical(series domain.RateSeries) domain.OmoriFit {
	return f.fit(series, true)
}

func (f *Fitter) fit(series domain.RateSeries, fixP bool) domain.OmoriFit {
	if len(series) < MinFitBins {
		return domain.UnfitOmori(domain.FitFailInsufficientBins, fixP)
	}

	times := series.Times()
	rates := series.Rates()

	logObs := make([]float64, len(rates))
	for i, r := range rates {
		logObs[i] = math.Log10(r)
	}

	bounds := []domain.Bounds{f.cfg.BoundsK, f.cfg.BoundsC}
	if !fixP {
		bounds = append(bounds, f.cfg.BoundsP)
	}

	objective := func(x []float64) float64 {
		k := fromUnbounded(x[0], f.cfg.BoundsK)
		c := fromUnbounded(x[1], f.cfg.BoundsC)
		p := 1.0
		if !fixP {
			p = fromUnbounded(x[2], f.cfg.BoundsP)
		}

		sse := 0.0
		for i, t := range times {
			pred := Rate(t, k, c, p)
			if pred <= 0 || math.IsNaN(pred) || math.IsInf(pred, 0) {
				return penalty
			}
			d := math.Log10(pred) - logObs[i]
			sse += d * d
		}
		if math.IsNaN(sse) || math.IsInf(sse, 0) {
			return penalty
		}
		return sse
	}

	// Seeds come from the data: poor seeding is the dominant cause of
	// non-convergence for this objective.
	seeds := f.seed(series, bounds, fixP)
	x0 := make([]float64, len(seeds))
	for i, s := range seeds {
		x0[i] = toUnbounded(s, bounds[i])
	}

	settings := &optimize.Settings{
		MajorIterations: f.cfg.MaxIterations,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-12,
			Iterations: 50,
		},
	}

	result, err := optimize.Minimize(optimize.Problem{Func: objective}, x0, settings, &optimize.NelderMead{})
	if err != nil || result == nil {
		return domain.UnfitOmori(domain.FitFailNoConvergence, fixP)
	}
	// The iteration cap substitutes for a timeout and counts as a failure.
	if result.Status == optimize.IterationLimit {
		return domain.UnfitOmori(domain.FitFailNoConvergence, fixP)
	}
	for _, v := range result.X {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return domain.UnfitOmori(domain.FitFailNonFinite, fixP)
		}
	}

	k := fromUnbounded(result.X[0], f.cfg.BoundsK)
	c := fromUnbounded(result.X[1], f.cfg.BoundsC)
	p := 1.0
	if !fixP {
		p = fromUnbounded(result.X[2], f.cfg.BoundsP)
	}

	fit := domain.OmoriFit{K: k, C: c, P: p, PFixed: fixP}
	if !f.score(&fit, times, rates, logObs) {
		return domain.UnfitOmori(domain.FitFailNonFinite, fixP)
	}

	// The optimizer converging is not enough: a converged fit below the R²
	// threshold is still unsuccessful.
	if fit.RSquared > f.cfg.FitSuccessThreshold {
		fit.Success = true
	} else {
		fit.FailureReason = domain.FitFailPoorFit
	}
	return fit
}

// score fills in R² (log space) and RMSE (linear rate space). Returns false
// when the fitted curve produces non-finite values over the series.
func (f *Fitter) score(fit *domain.OmoriFit, times, rates, logObs []float64) bool {
	n := len(times)
	obsMean := 0.0
	for _, lo := range logObs {
		obsMean += lo
	}
	obsMean /= float64(n)

	ssRes, ssTot, sqErr := 0.0, 0.0, 0.0
	for i, t := range times {
		pred := Rate(t, fit.K, fit.C, fit.P)
		if pred <= 0 || math.IsNaN(pred) || math.IsInf(pred, 0) {
			return false
		}
		dLog := logObs[i] - math.Log10(pred)
		ssRes += dLog * dLog
		dTot := logObs[i] - obsMean
		ssTot += dTot * dTot
		dLin := rates[i] - pred
		sqErr += dLin * dLin
	}

	if ssTot > 0 {
		fit.RSquared = 1 - ssRes/ssTot
	}
	// RMSE is reported in original rate space: log-space RMSE would be
	// uninterpretable to a domain reader.
	fit.RMSE = math.Sqrt(sqErr / float64(n))
	return !math.IsNaN(fit.RSquared) && !math.IsNaN(fit.RMSE)
}

// seed derives initial parameter guesses from the series: K from the peak
// observed rate, c from the smallest binned elapsed time, p = 1.
func (f *Fitter) seed(series domain.RateSeries, bounds []domain.Bounds, fixP bool) []float64 {
	peakRate, tPeak := series.PeakRate()
	tFirst := series[0].CenterHours

	k0 := clamp(peakRate*tPeak, bounds[0])
	c0 := clamp(tFirst, bounds[1])

	seeds := []float64{k0, c0}
	if !fixP {
		seeds = append(seeds, clamp(1.0, bounds[2]))
	}
	return seeds
}

// toUnbounded maps v in (lo, hi) to the real line via the logit transform,
// so the optimizer searches an unconstrained space while every candidate
// stays inside the bounds.
func toUnbounded(v float64, b domain.Bounds) float64 {
	// Keep the seed strictly interior or the transform saturates.
	span := b.Hi - b.Lo
	v = math.Min(math.Max(v, b.Lo+1e-6*span), b.Hi-1e-6*span)
	frac := (v - b.Lo) / span
	return math.Log(frac / (1 - frac))
}

// fromUnbounded is the inverse of toUnbounded (a scaled sigmoid).
func fromUnbounded(x float64, b domain.Bounds) float64 {
	return b.Lo + (b.Hi-b.Lo)/(1+math.Exp(-x))
}

func clamp(v float64, b domain.Bounds) float64 {
	return math.Min(math.Max(v, b.Lo), b.Hi)
}
