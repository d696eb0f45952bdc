//nolint:wrapcheck
package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/farcloser/meristem"
)

var errEvaluateArgs = errors.New("expected exactly two arguments: salience file and ground-truth file")

func evaluateCommand() *cli.Command {
	return &cli.Command{
		Name:      "evaluate",
		Usage:     "Score a salience matrix against a ground-truth melody annotation",
		ArgsUsage: "<salience-file> <truth-file>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dialect",
				Aliases: []string{"d"},
				Usage:   "Salience file dialect: csv (comma) or ssv (whitespace)",
				Value:   "csv",
			},
			&cli.IntFlag{
				Name:  "width-min",
				Usage: "Smallest candidate peak width in bins",
				Value: 3,
			},
			&cli.IntFlag{
				Name:  "width-max",
				Usage: "Largest candidate peak width in bins",
				Value: 9,
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: console, json, markdown",
				Value:   "console",
			},
			&cli.BoolFlag{
				Name:    "debug",
				Aliases: []string{"D"},
				Usage:   "Include the raw per-frame score sequences in output",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 2 {
				return fmt.Errorf("%w: got %d", errEvaluateArgs, cmd.NArg())
			}

			opts, err := parseOptions(cmd)
			if err != nil {
				return err
			}

			saliencePath := cmd.Args().Get(0)
			truthPath := cmd.Args().Get(1)

			result, err := meristem.EvaluateFile(saliencePath, truthPath, opts)
			if err != nil {
				return fmt.Errorf("evaluation failed: %w", err)
			}

			return outputResult(saliencePath, result, cmd.String("format"), cmd.Bool("debug"))
		},
	}
}

var errInvalidWidths = errors.New("peak widths must satisfy 0 < width-min <= width-max")

func parseOptions(cmd *cli.Command) (meristem.Options, error) {
	dialect, err := meristem.ParseDialect(cmd.String("dialect"))
	if err != nil {
		return meristem.Options{}, err
	}

	widthMin := cmd.Int("width-min")
	widthMax := cmd.Int("width-max")

	if widthMin < 1 || widthMax < widthMin {
		return meristem.Options{}, fmt.Errorf("%w: got %d..%d", errInvalidWidths, widthMin, widthMax)
	}

	opts := meristem.DefaultOptions()
	opts.Dialect = dialect
	opts.WidthMin = widthMin
	opts.WidthMax = widthMax

	return opts, nil
}
