package meristem

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Severity indicates how bad an assessed metric is.
type Severity int

const (
	SeverityNone Severity = iota
	SeverityMild
	SeverityModerate
	SeveritySevere
)

func (s Severity) String() string {
	switch s {
	case SeverityNone:
		return "no issue"
	case SeverityMild:
		return "mild"
	case SeverityModerate:
		return "moderate"
	case SeveritySevere:
		return "severe"
	}

	return "unknown"
}

// Bands defines severity thresholds for an assessed metric. Direction is
// implicit: if Mild < Severe, higher values are worse (ascending, e.g. cent
// deviation). If Mild > Severe, lower values are worse (descending, e.g.
// reciprocal rank).
type Bands struct {
	Mild     float64
	Moderate float64
	Severe   float64
}

// Match returns the severity for a value.
// Returns (SeverityNone, false) when the value is below detection (the Mild threshold).
func (b Bands) Match(value float64) (Severity, bool) {
	if b.Mild <= b.Severe {
		// Ascending: higher = worse.
		if value >= b.Severe {
			return SeveritySevere, true
		}

		if value >= b.Moderate {
			return SeverityModerate, true
		}

		if value >= b.Mild {
			return SeverityMild, true
		}
	} else {
		// Descending: lower = worse.
		if value <= b.Severe {
			return SeveritySevere, true
		}

		if value <= b.Moderate {
			return SeverityModerate, true
		}

		if value <= b.Mild {
			return SeverityMild, true
		}
	}

	return SeverityNone, false
}

// MetricSummary aggregates one per-frame score sequence.
type MetricSummary struct {
	Count  int
	Mean   float64
	Median float64
	P90    float64
	StdDev float64
}

// Summary holds per-metric aggregates for one excerpt. It is a caller-side
// reduction over the per-frame sequences and does not affect the engine
// contract.
type Summary struct {
	Deviation      MetricSummary
	ReciprocalRank MetricSummary
	Salience1      MetricSummary
	Salience3      MetricSummary

	Frames        int
	UnvoicedSkips int
	PeaklessSkips int
	ScoredFrames  int
}

// Summarize computes per-metric aggregates over the result sequences.
func (r *Result) Summarize() *Summary {
	return &Summary{
		Deviation:      summarizeMetric(r.Deviation),
		ReciprocalRank: summarizeMetric(r.ReciprocalRank),
		Salience1:      summarizeMetric(r.Salience1),
		Salience3:      summarizeMetric(r.Salience3),
		Frames:         r.Frames,
		UnvoicedSkips:  r.UnvoicedSkips,
		PeaklessSkips:  r.PeaklessSkips,
		ScoredFrames:   r.ScoredFrames,
	}
}

func summarizeMetric(values []float64) MetricSummary {
	if len(values) == 0 {
		return MetricSummary{}
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	return MetricSummary{
		Count:  len(values),
		Mean:   stat.Mean(sorted, nil),
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		P90:    stat.Quantile(0.9, stat.Empirical, sorted, nil),
		StdDev: stat.StdDev(sorted, nil),
	}
}

// Finding is one assessed metric for an excerpt.
type Finding struct {
	Metric   string
	Detected bool
	Severity Severity
	Summary  string
}

// AssessOptions holds severity bands for the assessed aggregates.
type AssessOptions struct {
	// Deviation bands apply to the mean deviation in cents (ascending).
	Deviation Bands
	// ReciprocalRank bands apply to the mean reciprocal rank (descending).
	ReciprocalRank Bands
	// Salience1 bands apply to the mean s1 ratio (descending).
	Salience1 Bands
}

// DefaultAssessOptions returns bands tuned for comparing salience extractors:
// half a semitone of mean deviation is already notable, a full semitone is
// moderate.
func DefaultAssessOptions() AssessOptions {
	return AssessOptions{
		Deviation:      Bands{Mild: 50, Moderate: 100, Severe: 200},
		ReciprocalRank: Bands{Mild: 0.8, Moderate: 0.5, Severe: 0.25},
		Salience1:      Bands{Mild: 0.9, Moderate: 0.7, Severe: 0.5},
	}
}

// Assess maps a summary to per-metric findings using the given bands.
func Assess(summary *Summary, opts AssessOptions) []Finding {
	zeroBands := Bands{}
	defaults := DefaultAssessOptions()

	if opts.Deviation == zeroBands {
		opts.Deviation = defaults.Deviation
	}

	if opts.ReciprocalRank == zeroBands {
		opts.ReciprocalRank = defaults.ReciprocalRank
	}

	if opts.Salience1 == zeroBands {
		opts.Salience1 = defaults.Salience1
	}

	if summary.ScoredFrames == 0 {
		return []Finding{{
			Metric:   "coverage",
			Detected: true,
			Severity: SeveritySevere,
			Summary: fmt.Sprintf(
				"no qualifying frames (%d unvoiced, %d without peaks)",
				summary.UnvoicedSkips,
				summary.PeaklessSkips,
			),
		}}
	}

	findings := make([]Finding, 0, 3)

	severity, detected := opts.Deviation.Match(summary.Deviation.Mean)
	findings = append(findings, Finding{
		Metric:   "deviation",
		Detected: detected,
		Severity: severity,
		Summary: fmt.Sprintf("mean deviation %.1f cents (median %.1f)",
			summary.Deviation.Mean, summary.Deviation.Median),
	})

	severity, detected = opts.ReciprocalRank.Match(summary.ReciprocalRank.Mean)
	findings = append(findings, Finding{
		Metric:   "reciprocal-rank",
		Detected: detected,
		Severity: severity,
		Summary:  fmt.Sprintf("mean reciprocal rank %.3f", summary.ReciprocalRank.Mean),
	})

	severity, detected = opts.Salience1.Match(summary.Salience1.Mean)
	findings = append(findings, Finding{
		Metric:   "salience-ratio",
		Detected: detected,
		Severity: severity,
		Summary: fmt.Sprintf("mean s1 %.3f, mean s3 %.3f",
			summary.Salience1.Mean, summary.Salience3.Mean),
	})

	return findings
}
