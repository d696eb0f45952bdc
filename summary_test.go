package meristem_test

import (
	"math"
	"testing"

	"github.com/farcloser/meristem"
)

func TestSummarize(t *testing.T) {
	result := &meristem.Result{
		Deviation:      []float64{10, 30, 20},
		ReciprocalRank: []float64{1, 0.5, 1},
		Salience1:      []float64{1, 0.8, 0.9},
		Salience3:      []float64{1.1, 0.7, 0.9},
		Frames:         5,
		UnvoicedSkips:  1,
		PeaklessSkips:  1,
		ScoredFrames:   3,
	}

	summary := result.Summarize()

	if summary.Deviation.Count != 3 {
		t.Errorf("deviation count = %d, want 3", summary.Deviation.Count)
	}

	if math.Abs(summary.Deviation.Mean-20) > 1e-9 {
		t.Errorf("deviation mean = %v, want 20", summary.Deviation.Mean)
	}

	if summary.Deviation.Median != 20 {
		t.Errorf("deviation median = %v, want 20", summary.Deviation.Median)
	}

	if summary.Deviation.P90 != 30 {
		t.Errorf("deviation p90 = %v, want 30", summary.Deviation.P90)
	}

	if summary.ScoredFrames != 3 || summary.Frames != 5 {
		t.Errorf("frame counts not carried over: %+v", summary)
	}
}

func TestSummarizeEmptyResult(t *testing.T) {
	summary := (&meristem.Result{Frames: 2, UnvoicedSkips: 2}).Summarize()

	if summary.Deviation.Count != 0 || summary.Deviation.Mean != 0 {
		t.Errorf("empty sequence summary = %+v, want zero value", summary.Deviation)
	}
}

func TestAssessDirections(t *testing.T) {
	summary := &meristem.Summary{
		Deviation:      meristem.MetricSummary{Count: 10, Mean: 120},
		ReciprocalRank: meristem.MetricSummary{Count: 10, Mean: 0.4},
		Salience1:      meristem.MetricSummary{Count: 10, Mean: 0.95},
		ScoredFrames:   10,
		Frames:         10,
	}

	findings := meristem.Assess(summary, meristem.AssessOptions{})

	bySeverity := map[string]meristem.Severity{}
	for _, finding := range findings {
		bySeverity[finding.Metric] = finding.Severity
	}

	// 120 cents mean deviation crosses the moderate band (ascending).
	if bySeverity["deviation"] != meristem.SeverityModerate {
		t.Errorf("deviation severity = %s, want moderate", bySeverity["deviation"])
	}

	// Mean rr 0.4 crosses the moderate band (descending).
	if bySeverity["reciprocal-rank"] != meristem.SeverityModerate {
		t.Errorf("reciprocal-rank severity = %s, want moderate", bySeverity["reciprocal-rank"])
	}

	// Mean s1 0.95 is above the mild threshold: clean.
	if bySeverity["salience-ratio"] != meristem.SeverityNone {
		t.Errorf("salience-ratio severity = %s, want none", bySeverity["salience-ratio"])
	}
}

func TestAssessNoQualifyingFrames(t *testing.T) {
	summary := &meristem.Summary{Frames: 4, UnvoicedSkips: 3, PeaklessSkips: 1}

	findings := meristem.Assess(summary, meristem.AssessOptions{})

	if len(findings) != 1 {
		t.Fatalf("got %d findings, want 1", len(findings))
	}

	if findings[0].Metric != "coverage" || findings[0].Severity != meristem.SeveritySevere {
		t.Errorf("finding = %+v, want severe coverage", findings[0])
	}
}

func TestBandsMatch(t *testing.T) {
	ascending := meristem.Bands{Mild: 50, Moderate: 100, Severe: 200}

	if sev, detected := ascending.Match(10); detected || sev != meristem.SeverityNone {
		t.Errorf("Match(10) = %s, %v", sev, detected)
	}

	if sev, _ := ascending.Match(250); sev != meristem.SeveritySevere {
		t.Errorf("Match(250) = %s, want severe", sev)
	}

	descending := meristem.Bands{Mild: 0.8, Moderate: 0.5, Severe: 0.25}

	if sev, _ := descending.Match(0.1); sev != meristem.SeveritySevere {
		t.Errorf("Match(0.1) = %s, want severe", sev)
	}

	if sev, detected := descending.Match(0.9); detected || sev != meristem.SeverityNone {
		t.Errorf("Match(0.9) = %s, %v", sev, detected)
	}
}
