package series

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// MarshalJSON encodes s as an array with null for absent values.
func (s *Series[T]) MarshalJSON() ([]byte, error) {
	bits := bitSize[T]()
	var buf bytes.Buffer
	buf.Grow(8 * len(s.vals))
	buf.WriteByte('[')
	for i := range s.vals {
		if i > 0 {
			buf.WriteByte(',')
		}
		v, ok := s.At(i)
		if !ok {
			buf.WriteString("null")
			continue
		}
		if f := float64(v); math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("series: cannot encode %v at %d as json", f, i)
		}
		buf.WriteString(strconv.FormatFloat(float64(v), 'g', -1, bits))
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func (s *Series[T]) UnmarshalJSON(data []byte) error {
	var raw []*T
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = *FromPtrs(raw)
	return nil
}

var _ json.Marshaler = new(Series[float64])
var _ json.Unmarshaler = new(Series[float32])
