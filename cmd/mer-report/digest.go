package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/urfave/cli/v3"
)

func digestCommand() *cli.Command {
	return &cli.Command{
		Name:      "digest",
		Usage:     "Produce a summary digest from a meristem JSONL report",
		ArgsUsage: "<report.jsonl>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "metric",
				Usage: "Rank excerpts by a specific metric (deviation, reciprocal-rank, salience-1, salience-3)",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return errors.New("expected exactly one argument: path to report.jsonl")
			}

			return runDigest(cmd.Args().First(), cmd.String("metric"))
		},
	}
}

func runDigest(reportPath, metricFilter string) error {
	records, err := readRecords(reportPath)
	if err != nil {
		return err
	}

	printDigest(records)

	if metricFilter != "" {
		return printMetricRanking(records, metricFilter)
	}

	return nil
}

func readRecords(path string) ([]digestRecord, error) {
	file, err := os.Open(path) //nolint:gosec // CLI tool opens user-specified report files
	if err != nil {
		return nil, fmt.Errorf("opening report: %w", err)
	}
	defer file.Close()

	var records []digestRecord

	scanner := bufio.NewScanner(file)

	const maxLineSize = 1024 * 1024 // 1MB
	scanner.Buffer(make([]byte, 0, maxLineSize), maxLineSize)

	for scanner.Scan() {
		var rec digestRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			records = append(records, digestRecord{Error: "parse error"})

			continue
		}

		records = append(records, rec)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}

	return records, nil
}

func printDigest(records []digestRecord) {
	total := len(records)
	failed := 0
	metricStats := map[string]*metricBreakdown{}

	var (
		sumDeviation, sumRank, sumS1, sumS3 float64
		evaluated                           int
	)

	for _, rec := range records {
		if rec.Error != "" || rec.Evaluation == nil {
			failed++

			continue
		}

		evaluated++
		sumDeviation += rec.Evaluation.Deviation.Mean
		sumRank += rec.Evaluation.ReciprocalRank.Mean
		sumS1 += rec.Evaluation.Salience1.Mean
		sumS3 += rec.Evaluation.Salience3.Mean

		for _, finding := range rec.Evaluation.Findings {
			if !finding.Detected {
				continue
			}

			breakdown, ok := metricStats[finding.Metric]
			if !ok {
				breakdown = &metricBreakdown{Metric: finding.Metric}
				metricStats[finding.Metric] = breakdown
			}

			breakdown.Total++

			switch finding.Severity {
			case "severe":
				breakdown.Severe++
			case "moderate":
				breakdown.Moderate++
			case "mild":
				breakdown.Mild++
			}
		}
	}

	fmt.Println("=== Meristem Report Digest ===")
	fmt.Println()
	fmt.Printf("Total excerpts:  %d\n", total)
	fmt.Printf("Failed:          %d\n", failed)
	fmt.Printf("Evaluated:       %d\n", evaluated)
	fmt.Println()

	if evaluated > 0 {
		divisor := float64(evaluated)

		fmt.Println("--- Corpus Means (of per-excerpt means) ---")
		fmt.Printf("  deviation:        %.1f cents\n", sumDeviation/divisor)
		fmt.Printf("  reciprocal rank:  %.3f\n", sumRank/divisor)
		fmt.Printf("  s1:               %.3f\n", sumS1/divisor)
		fmt.Printf("  s3:               %.3f\n", sumS3/divisor)
		fmt.Println()
	}

	fmt.Println("--- Findings By Metric ---")

	breakdowns := make([]*metricBreakdown, 0, len(metricStats))
	for _, bd := range metricStats {
		breakdowns = append(breakdowns, bd)
	}

	slices.SortFunc(breakdowns, func(a, b *metricBreakdown) int {
		return b.Total - a.Total
	})

	for _, bd := range breakdowns {
		fmt.Printf("  %s\n", bd.Metric)
		fmt.Printf("    total: %d  severe: %d  moderate: %d  mild: %d\n", bd.Total, bd.Severe, bd.Moderate, bd.Mild)
	}
}

var errUnknownMetric = errors.New("unknown metric (valid: deviation, reciprocal-rank, salience-1, salience-3)")

// printMetricRanking lists excerpts worst-first by the chosen metric's
// per-excerpt mean. For deviation, higher is worse; for the others, lower is.
func printMetricRanking(records []digestRecord, metric string) error {
	type ranked struct {
		file  string
		value float64
	}

	var entries []ranked

	for _, rec := range records {
		if rec.Error != "" || rec.Evaluation == nil {
			continue
		}

		var value float64

		switch metric {
		case "deviation":
			value = rec.Evaluation.Deviation.Mean
		case "reciprocal-rank":
			value = rec.Evaluation.ReciprocalRank.Mean
		case "salience-1":
			value = rec.Evaluation.Salience1.Mean
		case "salience-3":
			value = rec.Evaluation.Salience3.Mean
		default:
			return fmt.Errorf("%w: %q", errUnknownMetric, metric)
		}

		entries = append(entries, ranked{file: rec.File, value: value})
	}

	slices.SortFunc(entries, func(a, b ranked) int {
		switch {
		case a.value < b.value:
			return -1
		case a.value > b.value:
			return 1
		default:
			return 0
		}
	})

	if metric == "deviation" {
		slices.Reverse(entries) // highest deviation is worst
	}

	fmt.Println()
	fmt.Printf("--- Excerpts By %s (worst first) ---\n", metric)

	for _, entry := range entries {
		fmt.Printf("  %10.3f  %s\n", entry.value, entry.file)
	}

	return nil
}
