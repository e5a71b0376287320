package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math"
	"time"

	"fortio.org/fortio/log"
	"github.com/google/subcommands"
	"github.com/uluyol/heyp-ewm/go/cmd/flagtypes"
	"github.com/uluyol/heyp-ewm/go/config"
	"github.com/uluyol/heyp-ewm/go/printsum"
	"github.com/uluyol/heyp-ewm/go/series"
	"github.com/uluyol/heyp-ewm/go/stats"
)

type meanCmd struct {
	defaults config.Defaults

	inPath    string
	column    string
	outPath   string
	format    outputFormat
	keepInput bool
	f32       bool

	alpha, com, span, halfLife flagtypes.OptionalFloat

	adjust     bool
	minPeriods int
	ignoreNA   bool
}

func (c *meanCmd) Name() string     { return "mean" }
func (c *meanCmd) Synopsis() string { return "compute the exponentially weighted mean of a column" }
func (c *meanCmd) Usage() string {
	return "mean -col NAME [-alpha A | -com C | -span S | -half-life H] [-i in.csv] [-o out.csv]\n"
}

func (c *meanCmd) SetFlags(fs *flag.FlagSet) {
	c.format = "csv"
	fs.StringVar(&c.inPath, "i", "-", "input csv with a header row, - for stdin")
	fs.StringVar(&c.column, "col", "", "column to average")
	fs.StringVar(&c.outPath, "o", "-", "output path, - for stdout")
	fs.Var(&c.format, "format", "output format: csv or json")
	fs.BoolVar(&c.keepInput, "keep-input", false, "also write the input column")
	fs.BoolVar(&c.f32, "f32", false, "compute in single precision")
	fs.Var(&c.alpha, "alpha", "decay parameter in (0, 1]")
	fs.Var(&c.com, "com", "decay as center of mass (>= 0)")
	fs.Var(&c.span, "span", "decay as span (>= 1)")
	fs.Var(&c.halfLife, "half-life", "decay as half life (> 0)")
	fs.BoolVar(&c.adjust, "adjust", c.defaults.Adjust, "normalize by the sum of historical weights")
	fs.IntVar(&c.minPeriods, "min-periods", c.defaults.MinPeriods, "present values needed before emitting a mean")
	fs.BoolVar(&c.ignoreNA, "ignore-na", c.defaults.IgnoreNA, "do not let absent values advance the decay")
}

func (c *meanCmd) options() (stats.Options[float64], error) {
	run := config.Run{
		Name: "mean",
		Decay: stats.Decay{
			Alpha:    c.alpha.Ptr(),
			Com:      c.com.Ptr(),
			Span:     c.span.Ptr(),
			HalfLife: c.halfLife.Ptr(),
		},
		Adjust:     &c.adjust,
		MinPeriods: &c.minPeriods,
		IgnoreNA:   &c.ignoreNA,
	}
	return run.Options(c.defaults)
}

func (c *meanCmd) Execute(ctx context.Context, fs *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if c.column == "" || fs.NArg() != 0 {
		fs.Usage()
		return subcommands.ExitUsageError
	}
	opts, err := c.options()
	if err != nil {
		log.Errf("bad options: %v", err)
		if errors.Is(err, stats.ErrInvalidArgument) {
			return subcommands.ExitUsageError
		}
		return subcommands.ExitFailure
	}

	xs, err := readColumn(c.inPath, c.column)
	if err != nil {
		log.Errf("%v", err)
		return subcommands.ExitFailure
	}
	log.Infof("read %d values (%d absent) from %s", xs.Len(), xs.NullCount(), c.inPath)

	if c.f32 {
		err = runMean(series.Convert[float32](xs), narrowOptions(opts), c.column, c.outPath, c.format, c.keepInput)
	} else {
		err = runMean(xs, opts, c.column, c.outPath, c.format, c.keepInput)
	}
	if err != nil {
		log.Errf("%v", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

var _ subcommands.Command = new(meanCmd)

func narrowOptions(o stats.Options[float64]) stats.Options[float32] {
	return stats.Options[float32]{
		Alpha:      float32(o.Alpha),
		Adjust:     o.Adjust,
		MinPeriods: o.MinPeriods,
		IgnoreNA:   o.IgnoreNA,
	}
}

func runMean[T stats.Float](xs *series.Series[T], opts stats.Options[T], col, outPath string, format outputFormat, keepInput bool) error {
	start := time.Now()
	ewm, err := stats.EWMMean[T](xs, opts)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	sum := stats.Summarize(ewm)
	printsum.Log(fmt.Sprintf("ewm of %s:", col), "", []printsum.KV{
		{Key: "alpha", Verb: "%g", Val: opts.Alpha},
		{Key: "adjust", Verb: "%t", Val: opts.Adjust},
		{Key: "minPeriods", Verb: "%d", Val: opts.MinPeriods},
		{Key: "ignoreNA", Verb: "%t", Val: opts.IgnoreNA},
		{Key: "present", Verb: "%d", Val: sum.Count},
		{Key: "absent", Verb: "%d", Val: sum.Nulls},
		{Key: "mean", Verb: "%g", Val: sum.Mean},
		{Key: "elapsed", Verb: "%v", Val: elapsed},
	})
	if log.LogDebug() {
		n := ewm.Len()
		if n > 80 {
			n = 80
		}
		log.Debugf("validity  %s", printsum.ValidityString(ewm.Validity(), n))
		log.Debugf("sparkline %s", printsum.Sparkline(sparkValues(ewm, n)))
	}

	header := []string{col + "_ewm"}
	cols := []*series.Series[T]{ewm}
	if keepInput {
		header = []string{col, col + "_ewm"}
		cols = []*series.Series[T]{xs, ewm}
	}
	return writeColumns(outPath, format, header, cols)
}

// sparkValues returns the first n values as float64 with NaN for
// absent positions.
func sparkValues[T stats.Float](s *series.Series[T], n int) []float64 {
	vals := make([]float64, n)
	for i := range vals {
		v, ok := s.At(i)
		if ok {
			vals[i] = float64(v)
		} else {
			vals[i] = math.NaN()
		}
	}
	return vals
}
