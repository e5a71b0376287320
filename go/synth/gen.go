// Package synth generates synthetic observation series.
package synth

import (
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/uluyol/heyp-ewm/go/series"
	"golang.org/x/exp/rand"
)

type ValueGen interface {
	GenValues(rng *rand.Rand, n int) []float64
}

type UniformGen struct {
	_    struct{}
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

func (g UniformGen) GenValues(rng *rand.Rand, n int) []float64 {
	d := make([]float64, n)
	urange := g.High - g.Low
	for i := range d {
		d[i] = g.Low + rng.Float64()*urange
	}
	return d
}

// RandomWalkGen starts at Start and moves by a normal step with
// standard deviation StepStd.
type RandomWalkGen struct {
	_       struct{}
	Start   float64 `json:"start"`
	StepStd float64 `json:"stepStd"`
}

func (g RandomWalkGen) GenValues(rng *rand.Rand, n int) []float64 {
	d := make([]float64, n)
	v := g.Start
	for i := range d {
		d[i] = v
		v += rng.NormFloat64() * g.StepStd
	}
	return d
}

type ExponentialGen struct {
	_    struct{}
	Mean float64 `json:"mean"`
	Max  float64 `json:"max"`
}

func (g ExponentialGen) GenValues(rng *rand.Rand, n int) []float64 {
	d := make([]float64, n)
	for i := range d {
		d[i] = math.Min(g.Max, rng.ExpFloat64()*g.Mean)
	}
	return d
}

// Config describes a series to generate.
type Config struct {
	Values ConfigValueGen `json:"values"`
	Num    int            `json:"num"`

	// NullProb is the probability that a position is absent.
	NullProb float64 `json:"nullProb"`

	// LeadingNulls positions at the start are always absent.
	LeadingNulls int `json:"leadingNulls"`
}

func Generate(rng *rand.Rand, c Config) *series.Series[float64] {
	vals := c.Values.Gen.GenValues(rng, c.Num)
	b := series.NewBuilder[float64](c.Num)
	for i, v := range vals {
		if i < c.LeadingNulls || (c.NullProb > 0 && rng.Float64() < c.NullProb) {
			b.AppendNull()
		} else {
			b.Append(v, true)
		}
	}
	return b.Build()
}

// SeedFor derives a stable seed from name.
func SeedFor(name string) uint64 { return xxhash.Sum64String(name) }

func NewRand(name string) *rand.Rand {
	return rand.New(rand.NewSource(SeedFor(name)))
}
