package tests_test

import (
	"testing"

	"github.com/containerd/nerdctl/mod/tigron/expect"
	"github.com/containerd/nerdctl/mod/tigron/test"

	"github.com/farcloser/meristem/tests/testutils"
)

func TestEvaluateCLI(t *testing.T) {
	testCase := testutils.Setup()

	testCase.SubTests = []*test.Case{
		{
			Description: "evaluate without arguments fails",
			Command:     test.Command("evaluate"),
			Expected:    test.Expects(expect.ExitCodeGenericFail, nil, nil),
		},
		{
			Description: "evaluate nonexistent files fails",
			Command:     test.Command("evaluate", "/nonexistent/a.csv", "/nonexistent/b.tsv"),
			Expected:    test.Expects(expect.ExitCodeGenericFail, nil, nil),
		},
		{
			Description: "evaluate rejects an unknown dialect",
			Command:     test.Command("evaluate", "--dialect", "psv", "/tmp/a.csv", "/tmp/b.tsv"),
			Expected:    test.Expects(expect.ExitCodeGenericFail, nil, nil),
		},
		{
			Description: "clean ridge matching ground truth scores as clean",
			Setup: func(data test.Data, _ test.Helpers) {
				saliencePath, truthPath := writeExcerpt(",", 220, 220)
				data.Labels().Set("salience", saliencePath)
				data.Labels().Set("truth", truthPath)
			},
			Command: func(data test.Data, helpers test.Helpers) test.TestableCommand {
				return helpers.Command("evaluate", data.Labels().Get("salience"), data.Labels().Get("truth"))
			},
			Expected: func(_ test.Data, _ test.Helpers) *test.Expected {
				return &test.Expected{
					ExitCode: expect.ExitCodeSuccess,
					Output: expect.All(
						expectContains("deviation"),
						expectFinding("reciprocal-rank", "no issue"),
					),
				}
			},
		},
		{
			Description: "whitespace dialect parses with --dialect ssv",
			Setup: func(data test.Data, _ test.Helpers) {
				saliencePath, truthPath := writeExcerpt(" ", 220, 220)
				data.Labels().Set("salience", saliencePath)
				data.Labels().Set("truth", truthPath)
			},
			Command: func(data test.Data, helpers test.Helpers) test.TestableCommand {
				return helpers.Command(
					"evaluate",
					"--dialect",
					"ssv",
					data.Labels().Get("salience"),
					data.Labels().Get("truth"),
				)
			},
			Expected: func(_ test.Data, _ test.Helpers) *test.Expected {
				return &test.Expected{
					ExitCode: expect.ExitCodeSuccess,
					Output:   expectContains("frames"),
				}
			},
		},
		{
			Description: "comma salience parsed with the wrong dialect fails",
			Setup: func(data test.Data, _ test.Helpers) {
				saliencePath, truthPath := writeExcerpt(",", 220, 220)
				data.Labels().Set("salience", saliencePath)
				data.Labels().Set("truth", truthPath)
			},
			Command: func(data test.Data, helpers test.Helpers) test.TestableCommand {
				return helpers.Command(
					"evaluate",
					"--dialect",
					"ssv",
					data.Labels().Get("salience"),
					data.Labels().Get("truth"),
				)
			},
			Expected: test.Expects(expect.ExitCodeGenericFail, nil, nil),
		},
		{
			Description: "fully unvoiced ground truth reports a coverage finding",
			Setup: func(data test.Data, _ test.Helpers) {
				saliencePath, truthPath := writeExcerpt(",", 220, 0)
				data.Labels().Set("salience", saliencePath)
				data.Labels().Set("truth", truthPath)
			},
			Command: func(data test.Data, helpers test.Helpers) test.TestableCommand {
				return helpers.Command("evaluate", data.Labels().Get("salience"), data.Labels().Get("truth"))
			},
			Expected: func(_ test.Data, _ test.Helpers) *test.Expected {
				return &test.Expected{
					ExitCode: expect.ExitCodeSuccess,
					Output:   expectFinding("coverage", "severe"),
				}
			},
		},
		{
			Description: "json format emits the metric aggregates",
			Setup: func(data test.Data, _ test.Helpers) {
				saliencePath, truthPath := writeExcerpt(",", 220, 220)
				data.Labels().Set("salience", saliencePath)
				data.Labels().Set("truth", truthPath)
			},
			Command: func(data test.Data, helpers test.Helpers) test.TestableCommand {
				return helpers.Command(
					"evaluate",
					"--format",
					"json",
					data.Labels().Get("salience"),
					data.Labels().Get("truth"),
				)
			},
			Expected: func(_ test.Data, _ test.Helpers) *test.Expected {
				return &test.Expected{
					ExitCode: expect.ExitCodeSuccess,
					Output: expect.All(
						expectContains("deviation_cents"),
						expectContains("reciprocal_rank"),
					),
				}
			},
		},
	}

	testCase.Run(t)
}
