package types

// QualityReport is the structured outcome of validating a generated result
// against its source profile. It is immutable once returned by the validator;
// the auto-corrector and metrics tracker only read it.
type QualityReport struct {
	Passed          bool           `json:"passed"`
	Errors          []string       `json:"errors"`
	Warnings        []string       `json:"warnings"`
	Metrics         map[string]any `json:"metrics"`
	Recommendations []string       `json:"recommendations"`
}

// NewQualityReport returns an empty passing report
func NewQualityReport() *QualityReport {
	return &QualityReport{
		Passed:          true,
		Errors:          []string{},
		Warnings:        []string{},
		Metrics:         map[string]any{},
		Recommendations: []string{},
	}
}

// AddError records a structural error; any error marks the report failed
func (r *QualityReport) AddError(message string) {
	r.Errors = append(r.Errors, message)
	r.Passed = false
}

// AddWarning records a non-fatal finding; warnings never affect Passed
func (r *QualityReport) AddWarning(message string) {
	r.Warnings = append(r.Warnings, message)
}

// AddMetric records a named measurement
func (r *QualityReport) AddMetric(name string, value any) {
	r.Metrics[name] = value
}

// AddRecommendation records an advisory note
func (r *QualityReport) AddRecommendation(message string) {
	r.Recommendations = append(r.Recommendations, message)
}

// MetricFloat returns a numeric metric as float64, with false when the metric
// is absent or not numeric
func (r *QualityReport) MetricFloat(name string) (float64, bool) {
	v, ok := r.Metrics[name]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}
