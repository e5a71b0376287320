// Package series holds columns of optional floating-point values.
//
// A Series stores its values densely and tracks which positions are
// present in a roaring bitmap. A nil bitmap means every value is present.
package series

import (
	"fmt"
	"unsafe"

	"github.com/RoaringBitmap/roaring"
)

type Float interface {
	~float32 | ~float64
}

// Opt is a single optional value.
type Opt[T Float] struct {
	V     T
	Valid bool
}

func Some[T Float](v T) Opt[T] { return Opt[T]{V: v, Valid: true} }
func None[T Float]() Opt[T]    { return Opt[T]{} }

// MaxLen is the longest Series supported. Validity bits are indexed by
// uint32.
const MaxLen uint64 = 1 << 32

func checkLen(n uint64) {
	if n > MaxLen {
		panic(fmt.Sprintf("series: length %d exceeds %d", n, MaxLen))
	}
}

type Series[T Float] struct {
	vals  []T
	valid *roaring.Bitmap
}

// New wraps vals. If valid is nil, all values are present.
// The Series takes ownership of both arguments.
// It panics if len(vals) exceeds MaxLen.
func New[T Float](vals []T, valid *roaring.Bitmap) *Series[T] {
	checkLen(uint64(len(vals)))
	if valid != nil && valid.GetCardinality() == uint64(len(vals)) {
		valid = nil
	}
	return &Series[T]{vals: vals, valid: valid}
}

func FromOpts[T Float](xs []Opt[T]) *Series[T] {
	b := NewBuilder[T](len(xs))
	for _, x := range xs {
		b.Append(x.V, x.Valid)
	}
	return b.Build()
}

func FromPtrs[T Float](xs []*T) *Series[T] {
	b := NewBuilder[T](len(xs))
	for _, x := range xs {
		if x == nil {
			b.AppendNull()
		} else {
			b.Append(*x, true)
		}
	}
	return b.Build()
}

func (s *Series[T]) Len() int { return len(s.vals) }

// At returns the value at i and whether it is present.
// Absent positions return the zero value.
func (s *Series[T]) At(i int) (T, bool) {
	if !s.IsValid(i) {
		var zero T
		return zero, false
	}
	return s.vals[i], true
}

func (s *Series[T]) IsValid(i int) bool {
	if i < 0 || i >= len(s.vals) {
		panic(fmt.Sprintf("series: index %d out of range [0, %d)", i, len(s.vals)))
	}
	return s.valid == nil || s.valid.Contains(uint32(i))
}

func (s *Series[T]) NullCount() int {
	if s.valid == nil {
		return 0
	}
	return len(s.vals) - int(s.valid.GetCardinality())
}

// Values returns the backing values. Absent slots hold zero.
func (s *Series[T]) Values() []T { return s.vals }

// Validity returns a copy of the validity mask, or nil if all values
// are present.
func (s *Series[T]) Validity() *roaring.Bitmap {
	if s.valid == nil {
		return nil
	}
	return s.valid.Clone()
}

func (s *Series[T]) Opts() []Opt[T] {
	out := make([]Opt[T], len(s.vals))
	for i := range out {
		out[i].V, out[i].Valid = s.At(i)
	}
	return out
}

// Present returns the present values in order.
func (s *Series[T]) Present() []T {
	out := make([]T, 0, len(s.vals)-s.NullCount())
	for i := range s.vals {
		if v, ok := s.At(i); ok {
			out = append(out, v)
		}
	}
	return out
}

// Convert changes the float width of s.
func Convert[U, T Float](s *Series[T]) *Series[U] {
	vals := make([]U, len(s.vals))
	for i, v := range s.vals {
		vals[i] = U(v)
	}
	return &Series[U]{vals: vals, valid: s.Validity()}
}

func bitSize[T Float]() int {
	var zero T
	return int(unsafe.Sizeof(zero)) * 8
}
