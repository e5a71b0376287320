package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"fortio.org/fortio/log"
	fstats "fortio.org/fortio/stats"
	"github.com/google/subcommands"
	"github.com/uluyol/heyp-ewm/go/cmd/flagtypes"
	"github.com/uluyol/heyp-ewm/go/config"
	"github.com/uluyol/heyp-ewm/go/printsum"
	"github.com/uluyol/heyp-ewm/go/series"
	"github.com/uluyol/heyp-ewm/go/stats"
	"github.com/uluyol/heyp-ewm/go/synth"
)

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

type benchCmd struct {
	defaults config.Defaults

	alphas   flagtypes.FloatList
	num      int
	runs     int
	nullProb float64
	f32      bool
	recPath  string
}

func (*benchCmd) Name() string     { return "bench" }
func (*benchCmd) Synopsis() string { return "time the kernel over synthetic input" }
func (*benchCmd) Usage() string    { return "bench [-alphas 0.1,0.5,1] [-n N] [-runs R] [-rec steps.jsonl]\n" }

func (c *benchCmd) SetFlags(fs *flag.FlagSet) {
	c.alphas = flagtypes.FloatList{Sep: ",", Vals: []float64{c.defaults.Alpha, 1}}
	fs.Var(&c.alphas, "alphas", "comma-separated alphas to time")
	fs.IntVar(&c.num, "n", 1_000_000, "observations per run")
	fs.IntVar(&c.runs, "runs", 20, "runs per alpha")
	fs.Float64Var(&c.nullProb, "null-prob", 0.1, "probability that an observation is absent")
	fs.BoolVar(&c.f32, "f32", false, "time single precision")
	fs.StringVar(&c.recPath, "rec", "", "write per-alpha step records (json lines) here, - for stdout")
}

type benchResult struct {
	alpha     float64
	nsPerElem *fstats.HistogramData
}

func timeRuns[T stats.Float](xs *series.Series[T], opts stats.Options[T], runs int, rec *stats.Recorder, kind string) (*fstats.HistogramData, error) {
	h := fstats.NewHistogram(0, 0.01)
	for i := 0; i < runs; i++ {
		start := time.Now()
		if _, err := stats.EWMMean[T](xs, opts); err != nil {
			return nil, err
		}
		elapsed := time.Since(start)
		rec.RecordRun(xs.Len(), kind, elapsed)
		if xs.Len() > 0 {
			h.Record(float64(elapsed.Nanoseconds()) / float64(xs.Len()))
		}
	}
	return h.Export(), nil
}

func (c *benchCmd) Execute(ctx context.Context, fs *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if c.num < 0 || c.runs <= 0 {
		log.Errf("need n >= 0 and runs > 0")
		return subcommands.ExitUsageError
	}
	opts := c.defaults.Options()
	for _, a := range c.alphas.Vals {
		opts.Alpha = a
		if err := opts.Validate(); err != nil {
			log.Errf("%v", err)
			return subcommands.ExitUsageError
		}
	}

	var out io.WriteCloser = nopCloser{io.Discard}
	switch c.recPath {
	case "":
	case "-":
		out = nopCloser{os.Stdout}
	default:
		f, err := os.Create(c.recPath)
		if err != nil {
			log.Errf("failed to create step record file: %v", err)
			return subcommands.ExitFailure
		}
		out = f
	}
	rec := stats.NewRecorder(out)

	xs := synth.Generate(synth.NewRand("bench"), synth.Config{
		Values:   synth.ConfigValueGen{Gen: synth.RandomWalkGen{Start: 100, StepStd: 1}},
		Num:      c.num,
		NullProb: c.nullProb,
	})
	xs32 := series.Convert[float32](xs)
	log.Infof("timing %d runs over %d observations (%d absent)", c.runs, xs.Len(), xs.NullCount())

	rec.StartRecording()
	results := make([]benchResult, 0, len(c.alphas.Vals))
	for _, a := range c.alphas.Vals {
		if ctx.Err() != nil {
			break
		}
		opts.Alpha = a
		kind := fmt.Sprintf("alpha=%g", a)
		var d *fstats.HistogramData
		var err error
		if c.f32 {
			d, err = timeRuns(xs32, narrowOptions(opts), c.runs, rec, kind)
		} else {
			d, err = timeRuns(xs, opts, c.runs, rec, kind)
		}
		if err != nil {
			log.Errf("%v", err)
			rec.Close()
			return subcommands.ExitFailure
		}
		rec.DoneStep(kind)
		results = append(results, benchResult{alpha: a, nsPerElem: d})
	}
	if err := rec.Close(); err != nil {
		log.Errf("failed to write step records: %v", err)
		return subcommands.ExitFailure
	}

	for _, r := range results {
		err := printsum.Fprint(os.Stderr, fmt.Sprintf("alpha = %g:", r.alpha), "", []printsum.KV{
			{Key: "runs", Verb: "%d", Val: r.nsPerElem.Count},
			{Key: "ns/elem avg", Verb: "%.3f", Val: r.nsPerElem.Avg},
			{Key: "ns/elem std", Verb: "%.3f", Val: r.nsPerElem.StdDev},
			{Key: "ns/elem min", Verb: "%.3f", Val: r.nsPerElem.Min},
			{Key: "ns/elem max", Verb: "%.3f", Val: r.nsPerElem.Max},
		})
		if err != nil {
			return subcommands.ExitFailure
		}
	}
	return subcommands.ExitSuccess
}

var _ subcommands.Command = new(benchCmd)
