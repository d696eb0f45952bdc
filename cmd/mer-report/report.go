//nolint:wrapcheck
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/farcloser/meristem"
	"github.com/farcloser/meristem/internal/output"
)

const outputFile = "meristem-report.jsonl"

var (
	errNotDirectory = errors.New("not a directory")
	errNoExcerpts   = errors.New("no salience/truth file pairs found")
)

func reportCommand() *cli.Command {
	return &cli.Command{
		Name:      "report",
		Usage:     "Evaluate a folder of excerpts and write a meristem JSONL report",
		ArgsUsage: "<folder>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "salience-suffix",
				Usage: "Suffix identifying salience matrix files",
				Value: ".salience.csv",
			},
			&cli.StringFlag{
				Name:  "truth-suffix",
				Usage: "Suffix of the ground-truth file paired with each salience file",
				Value: ".melody.tsv",
			},
			&cli.StringFlag{
				Name:    "dialect",
				Aliases: []string{"d"},
				Usage:   "Salience file dialect: csv (comma) or ssv (whitespace)",
				Value:   "csv",
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"j"},
				Usage:   "Number of concurrent workers",
				Value:   runtime.NumCPU(),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return errors.New("expected exactly one argument: folder path")
			}

			dialect, err := meristem.ParseDialect(cmd.String("dialect"))
			if err != nil {
				return err
			}

			opts := meristem.DefaultOptions()
			opts.Dialect = dialect

			workers := max(cmd.Int("workers"), 1)

			return runReport(
				ctx,
				cmd.Args().First(),
				cmd.String("salience-suffix"),
				cmd.String("truth-suffix"),
				opts,
				workers,
			)
		},
	}
}

// excerpt is one salience/truth file pair discovered in the scanned folder.
type excerpt struct {
	name         string
	saliencePath string
	truthPath    string
}

func runReport(
	_ context.Context,
	folder, salienceSuffix, truthSuffix string,
	opts meristem.Options,
	workers int,
) error {
	info, err := os.Stat(folder)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%q: %w", folder, errNotDirectory)
	}

	excerpts, err := collectExcerpts(folder, salienceSuffix, truthSuffix)
	if err != nil {
		return fmt.Errorf("scanning folder: %w", err)
	}

	if len(excerpts) == 0 {
		return fmt.Errorf("%q: %w", folder, errNoExcerpts)
	}

	fmt.Fprintf(os.Stderr, "Found %d excerpts to evaluate (%d workers)\n", len(excerpts), workers)

	// Evaluate concurrently; results land at their input index so the report
	// preserves discovery order regardless of completion order.
	results := make([]Record, len(excerpts))

	var progress atomic.Int64

	sem := make(chan struct{}, workers)

	var waitGroup sync.WaitGroup

	for idx, item := range excerpts {
		waitGroup.Add(1)

		go func(idx int, item excerpt) {
			defer waitGroup.Done()

			sem <- struct{}{}

			defer func() { <-sem }()

			results[idx] = evaluateExcerpt(item, opts)

			done := progress.Add(1)
			fmt.Fprintf(os.Stderr, "[%d/%d] %s\n", done, len(excerpts), item.name)
		}(idx, item)
	}

	waitGroup.Wait()

	out, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer out.Close()

	enc := json.NewEncoder(out)
	failed := 0

	for idx := range results {
		record := &results[idx]

		if record.Error != "" {
			failed++
		}

		if err := enc.Encode(record); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
	}

	fmt.Fprintf(os.Stderr, "Wrote %s: %d excerpts, %d failed\n", outputFile, len(results), failed)

	return nil
}

func collectExcerpts(folder, salienceSuffix, truthSuffix string) ([]excerpt, error) {
	var excerpts []excerpt

	err := filepath.WalkDir(folder, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if entry.IsDir() || !strings.HasSuffix(path, salienceSuffix) {
			return nil
		}

		base := strings.TrimSuffix(path, salienceSuffix)

		excerpts = append(excerpts, excerpt{
			name:         filepath.Base(base),
			saliencePath: path,
			truthPath:    base + truthSuffix,
		})

		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(excerpts, func(i, j int) bool { return excerpts[i].saliencePath < excerpts[j].saliencePath })

	return excerpts, nil
}

func evaluateExcerpt(item excerpt, opts meristem.Options) Record {
	start := time.Now()

	record := Record{File: item.name}

	result, err := meristem.EvaluateFile(item.saliencePath, item.truthPath, opts)
	if err != nil {
		record.Error = err.Error()
		record.ElapsedMs = float64(time.Since(start).Microseconds()) / 1000

		return record
	}

	summary := result.Summarize()
	findings := meristem.Assess(summary, meristem.AssessOptions{})

	record.Evaluation = output.SummaryToMap(summary, findings)
	record.ElapsedMs = float64(time.Since(start).Microseconds()) / 1000

	return record
}
