package omori

import (
	"math"
	"testing"

	"omori-lab/internal/domain"
)

// synthSeries builds a rate series lying exactly on the Omori-Utsu curve,
// with log-spaced bin centers between tMin and tMax hours.
func synthSeries(k, c, p float64, n int, tMin, tMax float64) domain.RateSeries {
	series := make(domain.RateSeries, n)
	step := (math.Log10(tMax) - math.Log10(tMin)) / float64(n-1)
	for i := 0; i < n; i++ {
		t := math.Pow(10, math.Log10(tMin)+float64(i)*step)
		series[i] = domain.RateBin{
			CenterHours: t,
			WidthHours:  t * 0.5,
			Count:       1,
			Rate:        Rate(t, k, c, p),
		}
	}
	return series
}

func relErr(got, want float64) float64 {
	return math.Abs(got-want) / math.Abs(want)
}

func TestRate(t *testing.T) {
	// n(1) = 100/(1+1)^1 = 50
	if got := Rate(1, 100, 1, 1); math.Abs(got-50) > 1e-12 {
		t.Errorf("Rate(1,100,1,1) = %f, want 50", got)
	}
	// p=2 doubles the decay exponent: 100/4 = 25
	if got := Rate(1, 100, 1, 2); math.Abs(got-25) > 1e-12 {
		t.Errorf("Rate(1,100,1,2) = %f, want 25", got)
	}
}

func TestFitModified_RecoversExactParameters(t *testing.T) {
	cfg := domain.DefaultConfig()
	f := NewFitter(cfg)

	k, c, p := 150.0, 0.08, 1.15
	fit := f.FitModified(synthSeries(k, c, p, 15, 0.1, 700))

	if !fit.Success {
		t.Fatalf("exact data must fit successfully, got failure %q", fit.FailureReason)
	}
	if relErr(fit.K, k) > 0.02 {
		t.Errorf("K = %f, want within 2%% of %f", fit.K, k)
	}
	if relErr(fit.C, c) > 0.05 {
		t.Errorf("c = %f, want within 5%% of %f", fit.C, c)
	}
	if relErr(fit.P, p) > 0.02 {
		t.Errorf("p = %f, want within 2%% of %f", fit.P, p)
	}
	if fit.RSquared < 0.999 {
		t.Errorf("R² on exact data = %f, want > 0.999", fit.RSquared)
	}
	if fit.PFixed {
		t.Error("modified fit must not report PFixed")
	}
}

func TestFitClassical_HoldsPAtOne(t *testing.T) {
	cfg := domain.DefaultConfig()
	f := NewFitter(cfg)

	fit := f.FitClassical(synthSeries(80, 0.2, 1.0, 12, 0.1, 500))

	if !fit.Success {
		t.Fatalf("exact p=1 data must fit successfully, got %q", fit.FailureReason)
	}
	if fit.P != 1.0 {
		t.Errorf("classical fit p = %f, must be exactly 1", fit.P)
	}
	if !fit.PFixed {
		t.Error("classical fit must report PFixed")
	}
	if relErr(fit.K, 80) > 0.05 {
		t.Errorf("K = %f, want within 5%% of 80", fit.K)
	}
}

func TestFit_Idempotent(t *testing.T) {
	cfg := domain.DefaultConfig()
	f := NewFitter(cfg)
	series := synthSeries(200, 0.5, 1.3, 14, 0.1, 720)

	a := f.FitModified(series)
	b := f.FitModified(series)

	if a.K != b.K || a.C != b.C || a.P != b.P || a.RSquared != b.RSquared || a.RMSE != b.RMSE {
		t.Errorf("repeated fits differ: %+v vs %+v", a, b)
	}
}

func TestFit_InsufficientBins(t *testing.T) {
	cfg := domain.DefaultConfig()
	f := NewFitter(cfg)

	for _, n := range []int{0, 1, 2} {
		series := synthSeries(100, 0.1, 1.1, 15, 0.1, 700)[:n]
		fit := f.FitModified(series)
		if fit.Success {
			t.Errorf("%d bins: fit must fail", n)
		}
		if fit.FailureReason != domain.FitFailInsufficientBins {
			t.Errorf("%d bins: expected %q, got %q", n, domain.FitFailInsufficientBins, fit.FailureReason)
		}
		if fit.Fitted() {
			t.Errorf("%d bins: parameters must be NaN", n)
		}
	}
}

func TestFit_FlatSeriesIsPoorFit(t *testing.T) {
	cfg := domain.DefaultConfig()
	f := NewFitter(cfg)

	// Constant rate carries no decay signal: log-space variance is zero, so
	// R² is 0 and the fit must be rejected rather than reported as success.
	series := make(domain.RateSeries, 6)
	for i := range series {
		t0 := math.Pow(10, float64(i)*0.4) * 0.1
		series[i] = domain.RateBin{CenterHours: t0, WidthHours: t0, Count: 1, Rate: 5.0}
	}

	fit := f.FitModified(series)
	if fit.Success {
		t.Fatal("flat series must not produce a successful fit")
	}
	if fit.FailureReason != domain.FitFailPoorFit {
		t.Errorf("expected %q, got %q", domain.FitFailPoorFit, fit.FailureReason)
	}
}

func TestFit_ModifiedBeatsClassicalAwayFromPOne(t *testing.T) {
	cfg := domain.DefaultConfig()
	f := NewFitter(cfg)
	series := synthSeries(300, 0.3, 1.4, 15, 0.1, 700)

	modified := f.FitModified(series)
	classical := f.FitClassical(series)

	if !modified.Success {
		t.Fatalf("modified fit failed: %q", modified.FailureReason)
	}
	if !classical.Fitted() {
		t.Fatalf("classical fit produced no parameters: %q", classical.FailureReason)
	}
	if modified.RSquared < classical.RSquared {
		t.Errorf("free p must fit at least as well: modified R²=%f < classical R²=%f",
			modified.RSquared, classical.RSquared)
	}
}

func TestFit_NoisyDataStillRecoversP(t *testing.T) {
	cfg := domain.DefaultConfig()
	f := NewFitter(cfg)

	series := synthSeries(150, 0.1, 1.2, 16, 0.1, 720)
	// Deterministic multiplicative noise, roughly ±12%.
	factors := []float64{1.08, 0.92, 1.11, 0.95, 1.02, 0.89, 1.05, 0.97,
		1.1, 0.93, 1.04, 0.96, 1.07, 0.91, 1.03, 0.98}
	for i := range series {
		series[i].Rate *= factors[i]
	}

	fit := f.FitModified(series)
	if !fit.Success {
		t.Fatalf("mildly noisy data must still fit, got %q", fit.FailureReason)
	}
	if fit.P < 1.0 || fit.P > 1.4 {
		t.Errorf("p = %f, want in [1.0, 1.4] for true p=1.2", fit.P)
	}
	if fit.RSquared <= cfg.FitSuccessThreshold {
		t.Errorf("R² = %f, must clear the %f threshold", fit.RSquared, cfg.FitSuccessThreshold)
	}
}

func TestFit_ParametersRespectBounds(t *testing.T) {
	cfg := domain.DefaultConfig()
	f := NewFitter(cfg)

	// Steeper decay than the p upper bound allows: the estimate must stay
	// inside the configured box rather than chase the data outside it.
	series := synthSeries(100, 0.05, 2.0, 15, 0.1, 700)
	cfg2 := cfg
	cfg2.BoundsP = domain.Bounds{Lo: 0.1, Hi: 1.5}
	fit := NewFitter(cfg2).FitModified(series)

	if fit.Fitted() {
		if !cfg2.BoundsP.Contains(fit.P) {
			t.Errorf("p = %f escapes bounds [%g, %g]", fit.P, cfg2.BoundsP.Lo, cfg2.BoundsP.Hi)
		}
		if !cfg2.BoundsK.Contains(fit.K) || !cfg2.BoundsC.Contains(fit.C) {
			t.Errorf("K=%f or c=%f escapes bounds", fit.K, fit.C)
		}
	}

	// On well-posed data the default bounds must also hold.
	fit = f.FitModified(series)
	if !fit.Fitted() {
		t.Fatalf("fit produced no parameters: %q", fit.FailureReason)
	}
	if !cfg.BoundsK.Contains(fit.K) || !cfg.BoundsC.Contains(fit.C) || !cfg.BoundsP.Contains(fit.P) {
		t.Errorf("parameters K=%f c=%f p=%f escape the default bounds", fit.K, fit.C, fit.P)
	}
}

func TestToFromUnbounded_RoundTrip(t *testing.T) {
	b := domain.Bounds{Lo: 0.001, Hi: 10}
	for _, v := range []float64{0.002, 0.05, 1, 5, 9.9} {
		got := fromUnbounded(toUnbounded(v, b), b)
		if relErr(got, v) > 1e-6 {
			t.Errorf("round trip of %f gave %f", v, got)
		}
	}
	// Out-of-bounds seeds saturate to the interval instead of escaping it.
	if got := fromUnbounded(toUnbounded(100, b), b); got > b.Hi {
		t.Errorf("saturated value %f exceeds upper bound", got)
	}
}
