package series

import "github.com/RoaringBitmap/roaring"

// Builder appends values to a Series of a known size.
// The value slice is allocated once, up front.
type Builder[T Float] struct {
	vals  []T
	valid *roaring.Bitmap
	nulls int
}

// NewBuilder returns a Builder with room for n values.
// It panics if n exceeds MaxLen.
func NewBuilder[T Float](n int) *Builder[T] {
	checkLen(uint64(n))
	return &Builder[T]{vals: make([]T, 0, n)}
}

func (b *Builder[T]) Append(v T, ok bool) {
	checkLen(uint64(len(b.vals)) + 1)
	if !ok {
		b.AppendNull()
		return
	}
	if b.valid != nil {
		b.valid.Add(uint32(len(b.vals)))
	}
	b.vals = append(b.vals, v)
}

func (b *Builder[T]) AppendNull() {
	checkLen(uint64(len(b.vals)) + 1)
	if b.valid == nil {
		// first absent value: everything before it was present
		b.valid = roaring.New()
		b.valid.AddRange(0, uint64(len(b.vals)))
	}
	var zero T
	b.vals = append(b.vals, zero)
	b.nulls++
}

func (b *Builder[T]) Len() int { return len(b.vals) }

// Build returns the Series. The Builder must not be used afterwards.
func (b *Builder[T]) Build() *Series[T] {
	s := &Series[T]{vals: b.vals, valid: b.valid}
	if b.nulls == 0 {
		s.valid = nil
	}
	b.vals, b.valid = nil, nil
	return s
}
