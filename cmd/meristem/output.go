//nolint:wrapcheck
package main

import (
	"fmt"
	"os"

	"github.com/farcloser/primordium/format"

	"github.com/farcloser/meristem"
	"github.com/farcloser/meristem/internal/output"
)

func outputResult(filePath string, result *meristem.Result, formatName string, debug bool) error {
	formatter, err := format.GetFormatter(formatName)
	if err != nil {
		return err
	}

	summary := result.Summarize()
	findings := meristem.Assess(summary, meristem.AssessOptions{})

	meta := output.SummaryToMap(summary, findings)
	meta["summary"] = buildHeadline(summary, findings)

	if debug {
		meta["frames_raw"] = output.ResultToMap(result)
	}

	data := &format.Data{
		Object: filePath,
		Meta:   meta,
	}

	return formatter.PrintAll([]*format.Data{data}, os.Stdout)
}

func buildHeadline(summary *meristem.Summary, findings []meristem.Finding) string {
	worst := meristem.SeverityNone
	detected := 0

	for _, finding := range findings {
		if finding.Detected {
			detected++
		}

		if finding.Severity > worst {
			worst = finding.Severity
		}
	}

	return fmt.Sprintf("%d/%d frames scored, %d findings (worst: %s)",
		summary.ScoredFrames, summary.Frames, detected, worst)
}
