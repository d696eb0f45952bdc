package tests_test

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/containerd/nerdctl/mod/tigron/test"
	"github.com/containerd/nerdctl/mod/tigron/tig"
)

// expectContains returns a comparator verifying the output contains a substring.
func expectContains(substr string) test.Comparator {
	return func(stdout string, testing tig.T) {
		testing.Helper()

		if !strings.Contains(stdout, substr) {
			testing.Log(fmt.Sprintf("expected substring %q not found in output:\n%s", substr, stdout))
			testing.Fail()
		}
	}
}

// expectFinding returns a comparator verifying that the given metric was
// assessed with the given severity. It looks for a finding block containing:
// metric: <metric>, severity: <severity>.
func expectFinding(metric, severity string) test.Comparator {
	return func(stdout string, testing tig.T) {
		testing.Helper()

		metricLine := fmt.Sprintf("metric: %s", metric)
		severityLine := fmt.Sprintf("severity: %s", severity)

		if strings.Contains(stdout, metricLine) && strings.Contains(stdout, severityLine) {
			return
		}

		testing.Log(
			fmt.Sprintf("expected finding %q with severity %q not found in output:\n%s", metric, severity, stdout),
		)
		testing.Fail()
	}
}

// writeExcerpt writes a synthetic salience/truth pair under a fresh temp
// directory and returns the two paths. The salience matrix carries a clean
// Gaussian ridge at the given frequency across every frame; truthFreq <= 0
// produces a fully unvoiced annotation.
func writeExcerpt(delimiter string, ridgeFreq, truthFreq float64) (saliencePath, truthPath string) {
	dir, err := os.MkdirTemp("", "meristem-test-")
	if err != nil {
		panic(err)
	}

	const (
		bins   = 480
		frames = 10
	)

	ridgeBin := 120 * math.Log2(ridgeFreq/55)

	var salience, truth strings.Builder

	for n := range frames {
		timestamp := float64(n) * 0.01
		salience.WriteString(strconv.FormatFloat(timestamp, 'f', 3, 64))

		for b := range bins {
			x := float64(b) - ridgeBin
			salience.WriteString(delimiter)
			salience.WriteString(strconv.FormatFloat(math.Exp(-x*x/32), 'f', 8, 64))
		}

		salience.WriteString("\n")

		truth.WriteString(strconv.FormatFloat(timestamp, 'f', 3, 64))
		truth.WriteString("\t")
		truth.WriteString(strconv.FormatFloat(truthFreq, 'f', 3, 64))
		truth.WriteString("\n")
	}

	saliencePath = filepath.Join(dir, "excerpt.salience.csv")
	truthPath = filepath.Join(dir, "excerpt.melody.tsv")

	if err := os.WriteFile(saliencePath, []byte(salience.String()), 0o600); err != nil {
		panic(err)
	}

	if err := os.WriteFile(truthPath, []byte(truth.String()), 0o600); err != nil {
		panic(err)
	}

	return saliencePath, truthPath
}
