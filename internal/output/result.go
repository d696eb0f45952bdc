// Package output provides shared result serialization for meristem JSON output.
package output

import (
	"github.com/farcloser/meristem"
)

// SummaryToMap converts an excerpt summary and its findings into the
// canonical map structure used for JSON and JSONL serialization.
func SummaryToMap(summary *meristem.Summary, findings []meristem.Finding) map[string]any {
	meta := map[string]any{
		"frames": map[string]any{
			"total":    summary.Frames,
			"unvoiced": summary.UnvoicedSkips,
			"peakless": summary.PeaklessSkips,
			"scored":   summary.ScoredFrames,
		},
		"deviation_cents": MetricToMap(summary.Deviation),
		"reciprocal_rank": MetricToMap(summary.ReciprocalRank),
		"salience_1":      MetricToMap(summary.Salience1),
		"salience_3":      MetricToMap(summary.Salience3),
	}

	entries := make([]any, 0, len(findings))
	for _, finding := range findings {
		entries = append(entries, map[string]any{
			"metric":   finding.Metric,
			"detected": finding.Detected,
			"severity": finding.Severity.String(),
			"summary":  finding.Summary,
		})
	}

	meta["findings"] = entries

	return meta
}

// MetricToMap converts one aggregated metric to a map.
func MetricToMap(metric meristem.MetricSummary) map[string]any {
	return map[string]any{
		"count":  metric.Count,
		"mean":   metric.Mean,
		"median": metric.Median,
		"p90":    metric.P90,
		"stddev": metric.StdDev,
	}
}

// ResultToMap converts the raw per-frame sequences to a map, for debug output.
func ResultToMap(result *meristem.Result) map[string]any {
	return map[string]any{
		"deviation_cents": result.Deviation,
		"reciprocal_rank": result.ReciprocalRank,
		"salience_1":      result.Salience1,
		"salience_3":      result.Salience3,
	}
}
