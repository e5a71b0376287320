package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"fortio.org/fortio/log"
	"github.com/ghodss/yaml"
	"github.com/google/subcommands"
	"github.com/uluyol/heyp-ewm/go/series"
	"github.com/uluyol/heyp-ewm/go/synth"
)

type genCmd struct {
	configPath string
	seedName   string
	outPath    string
	column     string

	kind         string
	num          int
	nullProb     float64
	leadingNulls int
}

func (*genCmd) Name() string     { return "gen" }
func (*genCmd) Synopsis() string { return "generate a synthetic column with absent values" }
func (*genCmd) Usage() string    { return "gen [-c gen.yaml | -kind uniform|walk|exp -n N] [-o out.csv]\n" }

func (c *genCmd) SetFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.configPath, "c", "", "generator config (yaml), overrides -kind/-n/-null-prob/-leading-nulls")
	fs.StringVar(&c.seedName, "seed", "ewm", "name to derive the random seed from")
	fs.StringVar(&c.outPath, "o", "-", "output path, - for stdout")
	fs.StringVar(&c.column, "col", "x", "column name")
	fs.StringVar(&c.kind, "kind", "walk", "value distribution: uniform, walk or exp")
	fs.IntVar(&c.num, "n", 100, "number of rows")
	fs.Float64Var(&c.nullProb, "null-prob", 0.1, "probability that a row is absent")
	fs.IntVar(&c.leadingNulls, "leading-nulls", 0, "number of leading absent rows")
}

func (c *genCmd) genConfig() (synth.Config, error) {
	if c.configPath != "" {
		data, err := os.ReadFile(c.configPath)
		if err != nil {
			return synth.Config{}, fmt.Errorf("failed to read gen config: %w", err)
		}
		var cfg synth.Config
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return synth.Config{}, fmt.Errorf("failed to decode gen config: %w", err)
		}
		if cfg.Values.Gen == nil {
			return synth.Config{}, fmt.Errorf("gen config %s has no values generator", c.configPath)
		}
		return cfg, nil
	}

	cfg := synth.Config{
		Num:          c.num,
		NullProb:     c.nullProb,
		LeadingNulls: c.leadingNulls,
	}
	switch c.kind {
	case "uniform":
		cfg.Values.Gen = synth.UniformGen{Low: 0, High: 100}
	case "walk":
		cfg.Values.Gen = synth.RandomWalkGen{Start: 100, StepStd: 1}
	case "exp":
		cfg.Values.Gen = synth.ExponentialGen{Mean: 10, Max: 1000}
	default:
		return synth.Config{}, fmt.Errorf("invalid kind %q, must be one of 'uniform' 'walk' or 'exp'", c.kind)
	}
	return cfg, nil
}

func (c *genCmd) Execute(ctx context.Context, fs *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	cfg, err := c.genConfig()
	if err != nil {
		log.Errf("%v", err)
		return subcommands.ExitUsageError
	}
	if cfg.Num < 0 || cfg.NullProb < 0 || cfg.NullProb > 1 {
		log.Errf("need n >= 0 and null-prob in [0, 1], got %d and %g", cfg.Num, cfg.NullProb)
		return subcommands.ExitUsageError
	}

	s := synth.Generate(synth.NewRand(c.seedName), cfg)
	log.Infof("generated %d rows (%d absent) with seed %q", s.Len(), s.NullCount(), c.seedName)

	err = writeAtomic(c.outPath, func(w io.Writer) error {
		return series.WriteCSV(w, []string{c.column}, []*series.Series[float64]{s})
	})
	if err != nil {
		log.Errf("%v", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

var _ subcommands.Command = new(genCmd)
