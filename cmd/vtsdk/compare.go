package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/geomichelon/vtsdk/internal/vision"
)

// errComparisonFailed is returned with --fail-on-mismatch when the verdict is Failed.
var errComparisonFailed = errors.New("comparison failed")

type compareOptions struct {
	baseline       string
	input          string
	minSimilarity  int
	noiseFilter    int
	exclude        string
	meta           string
	failOnMismatch bool
}

func newCompareCmd(global *globalOptions) *cobra.Command {
	opts := &compareOptions{}

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare an input image against a baseline",
		Long: `Compare scores the input image against the baseline on a 256x256 grayscale
grid and prints the result as JSON. Without --min-similarity no verdict is
given. Images that cannot be decoded are compared byte by byte.`,
		Example: `  vtsdk compare --baseline base.png --input new.png --min-similarity 95 \
    --exclude '[{"topLeftX":0,"topLeftY":0,"bottomRightX":320,"bottomRightY":40}]'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := opts.request(cmd)
			if err != nil {
				return err
			}

			e, err := global.newEngine()
			if err != nil {
				return err
			}

			res := e.Compare(req)
			if err := printJSON(cmd.OutOrStdout(), res); err != nil {
				return err
			}
			if opts.failOnMismatch && res.Status == vision.StatusFailed {
				return fmt.Errorf("%w: similarity %.2f below %d", errComparisonFailed, res.ObtainedSimilarity, *req.MinSimilarity)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.baseline, "baseline", "", "Baseline image path")
	f.StringVar(&opts.input, "input", "", "Input image path")
	f.IntVar(&opts.minSimilarity, "min-similarity", 0, "Pass threshold in [0,100]; no verdict when unset")
	f.IntVar(&opts.noiseFilter, "noise-filter", vision.DefaultNoiseFilter, "Noise filter in [0,100]")
	f.StringVar(&opts.exclude, "exclude", "", "JSON array of rectangles excluded from scoring")
	f.StringVar(&opts.meta, "meta", "", "JSON test metadata passed through unchanged")
	f.BoolVar(&opts.failOnMismatch, "fail-on-mismatch", false, "Exit non-zero when the verdict is Failed")
	cmd.MarkFlagRequired("baseline")
	cmd.MarkFlagRequired("input")

	return cmd
}

// request builds the compare request. Optional integers are set only when
// their flag was given on the command line.
func (o *compareOptions) request(cmd *cobra.Command) (vision.CompareRequest, error) {
	rects, err := parseRects(o.exclude)
	if err != nil {
		return vision.CompareRequest{}, err
	}
	meta, err := parseMeta(o.meta)
	if err != nil {
		return vision.CompareRequest{}, err
	}

	req := vision.CompareRequest{
		BaselineImage: o.baseline,
		InputImage:    o.input,
		ExcludedAreas: rects,
		Meta:          meta,
	}
	if cmd.Flags().Changed("min-similarity") {
		v := o.minSimilarity
		req.MinSimilarity = &v
	}
	if cmd.Flags().Changed("noise-filter") {
		v := o.noiseFilter
		req.NoiseFilter = &v
	}
	return req, nil
}
