//nolint:tagliatelle
package main

// Record is a single line in the JSONL report file.
type Record struct {
	File       string         `json:"file,omitempty"`
	Evaluation map[string]any `json:"evaluation,omitempty"`
	Error      string         `json:"error,omitempty"`
	ElapsedMs  float64        `json:"elapsed_ms,omitempty"`
}

// digestRecord holds the typed fields needed by the digest command.
type digestRecord struct {
	File       string            `json:"file,omitempty"`
	Evaluation *digestEvaluation `json:"evaluation,omitempty"`
	Error      string            `json:"error,omitempty"`
}

type digestEvaluation struct {
	Frames         digestFrames    `json:"frames"`
	Deviation      digestMetric    `json:"deviation_cents"`
	ReciprocalRank digestMetric    `json:"reciprocal_rank"`
	Salience1      digestMetric    `json:"salience_1"`
	Salience3      digestMetric    `json:"salience_3"`
	Findings       []digestFinding `json:"findings"`
}

type digestFrames struct {
	Total    int `json:"total"`
	Unvoiced int `json:"unvoiced"`
	Peakless int `json:"peakless"`
	Scored   int `json:"scored"`
}

type digestMetric struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	P90    float64 `json:"p90"`
	StdDev float64 `json:"stddev"`
}

type digestFinding struct {
	Metric   string `json:"metric"`
	Detected bool   `json:"detected"`
	Severity string `json:"severity"`
	Summary  string `json:"summary"`
}

// metricBreakdown tracks per-metric severity counts for the digest.
type metricBreakdown struct {
	Metric   string
	Total    int
	Severe   int
	Moderate int
	Mild     int
}
