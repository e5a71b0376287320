package flagtypes

import (
	"flag"
	"fmt"
	"strconv"
	"strings"
)

type StringList struct {
	Sep  string
	Vals []string
}

func (f *StringList) String() string { return strings.Join(f.Vals, f.Sep) }
func (f *StringList) Set(s string) error {
	f.Vals = strings.Split(s, f.Sep)
	return nil
}

var _ flag.Value = new(StringList)

type FloatList struct {
	Sep  string
	Vals []float64
}

func (f *FloatList) String() string {
	ss := make([]string, len(f.Vals))
	for i, v := range f.Vals {
		ss[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(ss, f.Sep)
}

func (f *FloatList) Set(s string) error {
	parts := strings.Split(s, f.Sep)
	vals := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return fmt.Errorf("bad float %q in list", p)
		}
		vals[i] = v
	}
	f.Vals = vals
	return nil
}

var _ flag.Value = new(FloatList)
