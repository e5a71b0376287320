package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"fortio.org/fortio/log"
	"github.com/google/subcommands"
	"github.com/google/uuid"
	"github.com/uluyol/heyp-ewm/go/cmd/flagtypes"
	"github.com/uluyol/heyp-ewm/go/config"
	"github.com/uluyol/heyp-ewm/go/series"
	"github.com/uluyol/heyp-ewm/go/stats"
	"golang.org/x/sync/errgroup"
)

type runReport struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Output     string        `json:"output"`
	Alpha      float64       `json:"alpha"`
	Adjust     bool          `json:"adjust"`
	MinPeriods int           `json:"minPeriods"`
	IgnoreNA   bool          `json:"ignoreNA"`
	Elapsed    time.Duration `json:"elapsedNs"`
	Summary    stats.Summary `json:"summary"`
}

type sweepReport struct {
	Input  string        `json:"input"`
	Column string        `json:"column"`
	Source stats.Summary `json:"source"`
	Runs   []runReport   `json:"runs"`
}

// RunSweep computes every run in s and writes one csv per run and a
// report.json into s.OutDir.
func RunSweep(ctx context.Context, s *config.Sweep, d config.Defaults) (*sweepReport, error) {
	xs, err := readColumn(s.Input, s.Column)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(s.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}

	report := &sweepReport{
		Input:  s.Input,
		Column: s.Column,
		Source: stats.Summarize(xs),
		Runs:   make([]runReport, len(s.Runs)),
	}

	var xs32 *series.Series[float32]
	if s.Float32 {
		xs32 = series.Convert[float32](xs)
	}

	eg, ctx := errgroup.WithContext(ctx)
	limit := s.Parallelism
	if limit == 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	eg.SetLimit(limit)
	for i := range s.Runs {
		i := i
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r := s.Runs[i]
			opts, err := r.Options(d)
			if err != nil {
				return fmt.Errorf("run %s: %w", r.Name, err)
			}
			out := filepath.Join(s.OutDir, r.Name+".csv")
			header := []string{s.Column + "_ewm"}

			start := time.Now()
			var sum stats.Summary
			var werr error
			if s.Float32 {
				ewm, err := stats.EWMMean[float32](xs32, narrowOptions(opts))
				if err != nil {
					return fmt.Errorf("run %s: %w", r.Name, err)
				}
				sum = stats.Summarize(ewm)
				werr = writeColumns(out, "csv", header, []*series.Series[float32]{ewm})
			} else {
				ewm, err := stats.EWMMean[float64](xs, opts)
				if err != nil {
					return fmt.Errorf("run %s: %w", r.Name, err)
				}
				sum = stats.Summarize(ewm)
				werr = writeColumns(out, "csv", header, []*series.Series[float64]{ewm})
			}
			if werr != nil {
				return fmt.Errorf("run %s: %w", r.Name, werr)
			}

			report.Runs[i] = runReport{
				ID:         uuid.New().String(),
				Name:       r.Name,
				Output:     out,
				Alpha:      opts.Alpha,
				Adjust:     opts.Adjust,
				MinPeriods: opts.MinPeriods,
				IgnoreNA:   opts.IgnoreNA,
				Elapsed:    time.Since(start),
				Summary:    sum,
			}
			log.Debugf("run %s done: %d present of %d", r.Name, sum.Count, xs.Len())
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	err = writeAtomic(filepath.Join(s.OutDir, "report.json"), func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

type sweepCmd struct {
	defaults   config.Defaults
	configPath string
	outDir     string
	only       flagtypes.StringList
}

func (*sweepCmd) Name() string     { return "sweep" }
func (*sweepCmd) Synopsis() string { return "compute several exponentially weighted means of one column" }
func (*sweepCmd) Usage() string    { return "sweep -c sweep.yaml [-o outdir]\n" }

func (c *sweepCmd) SetFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.configPath, "c", "sweep.yaml", "path to sweep config")
	fs.StringVar(&c.outDir, "o", "", "output directory (overrides outDir in config)")
	c.only.Sep = ","
	fs.Var(&c.only, "only", "comma-separated run names to compute (default all)")
}

// selectRuns keeps the runs named in names, in config order.
func selectRuns(runs []config.Run, names []string) ([]config.Run, error) {
	if len(names) == 0 {
		return runs, nil
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	var out []config.Run
	for _, r := range runs {
		if want[r.Name] {
			out = append(out, r)
			delete(want, r.Name)
		}
	}
	if len(want) > 0 {
		missing := make([]string, 0, len(want))
		for n := range want {
			missing = append(missing, n)
		}
		sort.Strings(missing)
		return nil, fmt.Errorf("unknown runs [%s]", strings.Join(missing, " "))
	}
	return out, nil
}

func (c *sweepCmd) Execute(ctx context.Context, fs *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	data, err := os.ReadFile(c.configPath)
	if err != nil {
		log.Errf("failed to read sweep config: %v", err)
		return subcommands.ExitFailure
	}
	s, err := config.ParseSweep(data)
	if err != nil {
		log.Errf("%v", err)
		return subcommands.ExitFailure
	}
	if c.outDir != "" {
		s.OutDir = c.outDir
	}
	if s.OutDir == "" {
		s.OutDir = "."
	}
	if err := s.Validate(c.defaults); err != nil {
		log.Errf("invalid sweep config: %v", err)
		return subcommands.ExitUsageError
	}
	if s.Runs, err = selectRuns(s.Runs, c.only.Vals); err != nil {
		log.Errf("%v", err)
		return subcommands.ExitUsageError
	}

	start := time.Now()
	report, err := RunSweep(ctx, s, c.defaults)
	if err != nil {
		log.Errf("%v", err)
		return subcommands.ExitFailure
	}
	log.Infof("finished %d runs over %d values in %v", len(report.Runs), report.Source.Count+report.Source.Nulls, time.Since(start))
	return subcommands.ExitSuccess
}

var _ subcommands.Command = new(sweepCmd)
