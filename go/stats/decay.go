package stats

import (
	"fmt"
	"math"
	"strings"
)

// AlphaFromCom returns alpha for a center of mass com >= 0.
func AlphaFromCom(com float64) (float64, error) {
	if !(com >= 0) || math.IsInf(com, 1) {
		return 0, fmt.Errorf("%w: com must be finite and >= 0, found %v", ErrInvalidArgument, com)
	}
	return 1 / (1 + com), nil
}

// AlphaFromSpan returns alpha for a span >= 1.
func AlphaFromSpan(span float64) (float64, error) {
	if !(span >= 1) {
		return 0, fmt.Errorf("%w: span must be >= 1, found %v", ErrInvalidArgument, span)
	}
	return 2 / (span + 1), nil
}

// AlphaFromHalfLife returns alpha such that weights halve every
// halfLife observations.
func AlphaFromHalfLife(halfLife float64) (float64, error) {
	if !(halfLife > 0) || math.IsInf(halfLife, 1) {
		return 0, fmt.Errorf("%w: half life must be > 0, found %v", ErrInvalidArgument, halfLife)
	}
	return 1 - math.Exp(-math.Ln2/halfLife), nil
}

// Decay describes the decay parameter in one of four ways.
// Exactly one field must be set.
type Decay struct {
	Com      *float64 `json:"com,omitempty"`
	Span     *float64 `json:"span,omitempty"`
	HalfLife *float64 `json:"halfLife,omitempty"`
	Alpha    *float64 `json:"alpha,omitempty"`
}

func (d Decay) IsZero() bool {
	return d.Com == nil && d.Span == nil && d.HalfLife == nil && d.Alpha == nil
}

func (d Decay) GetAlpha() (float64, error) {
	found := make([]string, 0, 4)
	var alpha float64
	var err error
	if d.Com != nil {
		found = append(found, "com")
		alpha, err = AlphaFromCom(*d.Com)
	}
	if d.Span != nil {
		found = append(found, "span")
		alpha, err = AlphaFromSpan(*d.Span)
	}
	if d.HalfLife != nil {
		found = append(found, "halfLife")
		alpha, err = AlphaFromHalfLife(*d.HalfLife)
	}
	if d.Alpha != nil {
		found = append(found, "alpha")
		alpha = *d.Alpha
		if !(alpha > 0 && alpha <= 1) {
			err = fmt.Errorf("%w: alpha must be in (0, 1], found %v", ErrInvalidArgument, alpha)
		}
	}
	switch {
	case len(found) == 0:
		return 0, fmt.Errorf("%w: one of com, span, halfLife, alpha is required", ErrInvalidArgument)
	case len(found) > 1:
		return 0, fmt.Errorf("%w: expected one decay parameter, found multiple [%s]",
			ErrInvalidArgument, strings.Join(found, " "))
	}
	return alpha, err
}
