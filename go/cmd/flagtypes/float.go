package flagtypes

import (
	"flag"
	"strconv"
)

// OptionalFloat records whether the flag was given.
type OptionalFloat struct {
	V  float64
	OK bool
}

func (f *OptionalFloat) String() string {
	if !f.OK {
		return ""
	}
	return strconv.FormatFloat(f.V, 'g', -1, 64)
}

func (f *OptionalFloat) Set(s string) error {
	var err error
	f.V, err = strconv.ParseFloat(s, 64)
	f.OK = err == nil
	return err
}

// Ptr returns nil if the flag was not given.
func (f *OptionalFloat) Ptr() *float64 {
	if !f.OK {
		return nil
	}
	v := f.V
	return &v
}

var _ flag.Value = new(OptionalFloat)
