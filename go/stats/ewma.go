package stats

import (
	"errors"
	"fmt"

	"github.com/uluyol/heyp-ewm/go/series"
)

// ErrInvalidArgument is wrapped by errors for out-of-domain options.
var ErrInvalidArgument = errors.New("invalid argument")

type Float = series.Float

// Options configures an exponentially weighted mean.
type Options[T Float] struct {
	// Alpha is the weight of the newest observation, in (0, 1].
	Alpha T

	// Adjust normalizes by the sum of historical weights instead of
	// using mean = alpha*x + (1-alpha)*mean.
	Adjust bool

	// MinPeriods is the number of present observations required
	// before a mean is emitted.
	MinPeriods int

	// IgnoreNA makes absent observations not advance the decay of
	// later weights.
	IgnoreNA bool
}

// Validate reports an ErrInvalidArgument error if Alpha or MinPeriods is out of range.
func (o Options[T]) Validate() error {
	// written so that NaN fails
	if !(o.Alpha > 0 && o.Alpha <= 1) {
		return fmt.Errorf("%w: alpha must be in (0, 1], found %v", ErrInvalidArgument, o.Alpha)
	}
	if o.MinPeriods < 0 {
		return fmt.Errorf("%w: min periods must be non-negative, found %d", ErrInvalidArgument, o.MinPeriods)
	}
	return nil
}

// Observations is a sequence of optional values of known length.
// *series.Series implements it.
type Observations[T Float] interface {
	Len() int
	At(i int) (T, bool)
}

// EWMState is the recurrence state of an exponentially weighted mean.
// Feed observations in order with Step.
type EWMState[T Float] struct {
	alpha       T
	oneSubAlpha T
	minPeriods  int
	ignoreNA    bool
	alphaIsOne  bool

	mean    T
	hasMean bool
	nonNull int

	// weight and complement for the next present observation
	wgt       T
	oneSubWgt T
	wgtSum    T
}

func NewEWMState[T Float](opts Options[T]) (*EWMState[T], error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return newEWMState(opts), nil
}

func newEWMState[T Float](opts Options[T]) *EWMState[T] {
	s := &EWMState[T]{
		alpha:       opts.Alpha,
		oneSubAlpha: 1 - opts.Alpha,
		minPeriods:  opts.MinPeriods,
		ignoreNA:    opts.IgnoreNA,
		alphaIsOne:  opts.Alpha == 1,
		wgt:         opts.Alpha,
		oneSubWgt:   1 - opts.Alpha,
		wgtSum:      1,
	}
	if opts.Adjust {
		s.wgtSum = 0
	}
	return s
}

// Step consumes one observation and returns the mean to emit for it.
//
// With alpha == 1 the observation itself is returned (subject to
// MinPeriods), so absent inputs stay absent. Otherwise the last mean is
// held across absent inputs.
func (s *EWMState[T]) Step(v T, ok bool) (T, bool) {
	if s.alphaIsOne {
		if ok {
			s.mean, s.hasMean = v, true
		}
		return stepAlphaOne(&s.nonNull, s.minPeriods, v, ok)
	}

	if ok {
		s.nonNull++

		prev := v
		if s.hasMean {
			prev = s.mean
		}
		s.wgtSum = s.oneSubWgt*s.wgtSum + s.wgt
		s.mean = prev + (v-prev)*s.wgt/s.wgtSum
		s.hasMean = true

		// absent run is over, weights go back to baseline
		s.wgt = s.alpha
		s.oneSubWgt = s.oneSubAlpha
	} else if !s.ignoreNA {
		s.wgt *= s.alpha
		s.oneSubWgt = 1 - s.wgt
	}

	if s.nonNull < s.minPeriods || !s.hasMean {
		var zero T
		return zero, false
	}
	return s.mean, true
}

// Mean returns the current mean, ignoring MinPeriods. With alpha == 1
// this is the last present observation.
func (s *EWMState[T]) Mean() (T, bool) { return s.mean, s.hasMean }

// NonNullCount returns the number of present observations seen.
func (s *EWMState[T]) NonNullCount() int { return s.nonNull }

func stepAlphaOne[T Float](nonNull *int, minPeriods int, v T, ok bool) (T, bool) {
	if ok {
		*nonNull++
	}
	if *nonNull < minPeriods || !ok {
		var zero T
		return zero, false
	}
	return v, true
}

// EWMMean computes the exponentially weighted mean of xs in one pass.
// The result has the same length as xs. It returns an error wrapping
// ErrInvalidArgument if opts is out of range.
func EWMMean[T Float](xs Observations[T], opts Options[T]) (*series.Series[T], error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	n := xs.Len()
	b := series.NewBuilder[T](n)
	if opts.Alpha == 1 {
		// the weight sum always equals the newest weight, so skip the arithmetic
		var nonNull int
		for i := 0; i < n; i++ {
			v, ok := xs.At(i)
			b.Append(stepAlphaOne(&nonNull, opts.MinPeriods, v, ok))
		}
		return b.Build(), nil
	}

	s := newEWMState(opts)
	for i := 0; i < n; i++ {
		b.Append(s.Step(xs.At(i)))
	}
	return b.Build(), nil
}
