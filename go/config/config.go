// Package config loads run settings for the ewm tool.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/ghodss/yaml"
	"github.com/uluyol/heyp-ewm/go/stats"
)

// Defaults are read from the environment and used when a flag or
// sweep entry does not say otherwise.
type Defaults struct {
	Alpha      float64 `env:"EWM_ALPHA"       envDefault:"0.5"`
	Adjust     bool    `env:"EWM_ADJUST"      envDefault:"true"`
	MinPeriods int     `env:"EWM_MIN_PERIODS" envDefault:"1"`
	IgnoreNA   bool    `env:"EWM_IGNORE_NA"   envDefault:"true"`
	LogLevel   string  `env:"EWM_LOG_LEVEL"   envDefault:"info"`
}

func LoadDefaults() (Defaults, error) {
	var d Defaults
	if err := env.Parse(&d); err != nil {
		return Defaults{}, fmt.Errorf("parse env: %w", err)
	}
	return d, nil
}

func (d Defaults) Options() stats.Options[float64] {
	return stats.Options[float64]{
		Alpha:      d.Alpha,
		Adjust:     d.Adjust,
		MinPeriods: d.MinPeriods,
		IgnoreNA:   d.IgnoreNA,
	}
}

// Run is one option set in a sweep. Unset fields take the defaults.
type Run struct {
	Name string `json:"name"`
	stats.Decay
	Adjust     *bool `json:"adjust,omitempty"`
	MinPeriods *int  `json:"minPeriods,omitempty"`
	IgnoreNA   *bool `json:"ignoreNA,omitempty"`
}

func (r Run) Options(d Defaults) (stats.Options[float64], error) {
	opts := d.Options()
	if !r.Decay.IsZero() {
		alpha, err := r.Decay.GetAlpha()
		if err != nil {
			return opts, err
		}
		opts.Alpha = alpha
	}
	if r.Adjust != nil {
		opts.Adjust = *r.Adjust
	}
	if r.MinPeriods != nil {
		opts.MinPeriods = *r.MinPeriods
	}
	if r.IgnoreNA != nil {
		opts.IgnoreNA = *r.IgnoreNA
	}
	return opts, opts.Validate()
}

// Sweep runs several option sets over one input column.
type Sweep struct {
	Input       string `json:"input"`
	Column      string `json:"column"`
	OutDir      string `json:"outDir"`
	Parallelism int    `json:"parallelism"`
	Float32     bool   `json:"float32"`
	Runs        []Run  `json:"runs"`
}

func ParseSweep(data []byte) (*Sweep, error) {
	var s Sweep
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode sweep config: %w", err)
	}
	return &s, nil
}

func (s *Sweep) Validate(d Defaults) error {
	var errs []string
	if s.Input == "" {
		errs = append(errs, "input is required")
	}
	if s.Column == "" {
		errs = append(errs, "column is required")
	}
	if s.Parallelism < 0 {
		errs = append(errs, fmt.Sprintf("parallelism must be non-negative (found %d)", s.Parallelism))
	}
	if len(s.Runs) == 0 {
		errs = append(errs, "need at least one run")
	}
	names := make(map[string]bool, len(s.Runs))
	for i, r := range s.Runs {
		if r.Name == "" {
			errs = append(errs, fmt.Sprintf("runs[%d] has no name", i))
		} else if names[r.Name] {
			errs = append(errs, fmt.Sprintf("runs[%d]: duplicate name %q", i, r.Name))
		} else if strings.ContainsAny(r.Name, `/\`) {
			errs = append(errs, fmt.Sprintf("runs[%d]: name %q contains a path separator", i, r.Name))
		}
		names[r.Name] = true
		if _, err := r.Options(d); err != nil {
			errs = append(errs, fmt.Sprintf("runs[%d]: %v", i, err))
		}
	}
	if len(errs) > 0 {
		return errors.New("multiple errors:\n\t" + strings.Join(errs, "\n\t"))
	}
	return nil
}
