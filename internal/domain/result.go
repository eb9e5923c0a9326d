package domain

// SequenceResult records the analysis outcome for one candidate mainshock.
// One result exists per candidate, including those with insufficient data, so
// no mainshock is ever silently dropped from the record.
// Corresponds to sequence_results table in PostgreSQL.
type SequenceResult struct {
	Mainshock       Event `json:"mainshock"`
	AftershockCount int   `json:"aftershock_count"`

	// Sufficient is false when the builder found fewer aftershocks than the
	// configured minimum; the fits below are then in the unfit state.
	Sufficient    bool    `json:"sufficient"`
	DurationHours float64 `json:"duration_hours"`

	Modified  OmoriFit `json:"modified"`  // p free
	Classical OmoriFit `json:"classical"` // p fixed at 1
}

// SequenceSummary aggregates the successfully fit subset of a result set.
// Derived on demand; holds no state of its own.
type SequenceSummary struct {
	TotalCandidates int `json:"total_candidates"`
	Sufficient      int `json:"sufficient"`
	SuccessfulFits  int `json:"successful_fits"`

	PMean   float64 `json:"p_mean"`
	PStdDev float64 `json:"p_stddev"`
	PMin    float64 `json:"p_min"`
	PMax    float64 `json:"p_max"`

	R2Mean   float64 `json:"r2_mean"`
	R2StdDev float64 `json:"r2_stddev"`
	R2Min    float64 `json:"r2_min"`
	R2Max    float64 `json:"r2_max"`

	// ClassicalR2Mean is the mean R² of the fixed-p=1 fits over the same
	// successful subset, for the classical-vs-modified comparison.
	ClassicalR2Mean float64 `json:"classical_r2_mean"`
}
