// Package domain reorients gridded fields into canonical [time, depth, lat, lon]
// order and decomposes vector fields. It performs no I/O and no logging.
package domain

import (
	"fmt"

	"github.com/ctessum/sparse"
)

// RawField is an N-dimensional array of values as stored in the source file.
// Missing values are NaN. The meaning of each axis is known only through the
// variable's dimension names.
type RawField struct {
	data *sparse.DenseArray
}

// NewRawField copies values into a new raw field of the given shape.
// Values are in row-major order (last axis varies fastest).
func NewRawField(shape []int, values []float64) (*RawField, error) {
	data, err := newDense(shape, values)
	if err != nil {
		return nil, err
	}
	return &RawField{data: data}, nil
}

// Shape returns a copy of the axis extents.
func (f *RawField) Shape() []int {
	return append([]int(nil), f.data.Shape...)
}

// Rank is the number of axes.
func (f *RawField) Rank() int {
	return len(f.data.Shape)
}

// Len is the total number of elements.
func (f *RawField) Len() int {
	return len(f.data.Elements)
}

// At returns the element at the given multi-index.
func (f *RawField) At(index ...int) float64 {
	return f.data.Get(index...)
}

// Values returns a copy of the elements in row-major order.
func (f *RawField) Values() []float64 {
	return append([]float64(nil), f.data.Elements...)
}

// CanonicalField is a 4-axis array ordered [time, depth, lat, lon]. Axes for
// absent roles have extent 1.
type CanonicalField struct {
	data *sparse.DenseArray
}

// NewCanonicalField copies values into a canonical field of the given shape.
func NewCanonicalField(shape [4]int, values []float64) (*CanonicalField, error) {
	data, err := newDense(shape[:], values)
	if err != nil {
		return nil, err
	}
	return &CanonicalField{data: data}, nil
}

// Shape returns the extents of the time, depth, lat and lon axes.
func (f *CanonicalField) Shape() [4]int {
	var s [4]int
	copy(s[:], f.data.Shape)
	return s
}

// At returns the element at (t, d, lat, lon).
func (f *CanonicalField) At(t, d, lat, lon int) float64 {
	return f.data.Get(t, d, lat, lon)
}

// Values returns a copy of the elements in canonical row-major order.
func (f *CanonicalField) Values() []float64 {
	return append([]float64(nil), f.data.Elements...)
}

// VectorTriple is a vector field decomposed into latitude and longitude
// components plus its magnitude. All three share one shape.
type VectorTriple struct {
	LatComponent *CanonicalField
	LonComponent *CanonicalField
	Magnitude    *CanonicalField
}

func newDense(shape []int, values []float64) (*sparse.DenseArray, error) {
	if len(shape) == 0 {
		return nil, fmt.Errorf("%w: scalar values have no axes", ErrShapeMismatch)
	}
	n := 1
	for i, s := range shape {
		if s < 0 {
			return nil, fmt.Errorf("%w: negative extent %d on axis %d", ErrShapeMismatch, s, i)
		}
		n *= s
	}
	if len(values) != n {
		return nil, fmt.Errorf("%w: shape %v holds %d values, got %d", ErrShapeMismatch, shape, n, len(values))
	}
	out := sparse.ZerosDense(shape...)
	copy(out.Elements, values)
	return out, nil
}

// strides returns row-major strides for shape.
func strides(shape []int) []int {
	st := make([]int, len(shape))
	acc := 1
	for i := len(shape) - 1; i >= 0; i-- {
		st[i] = acc
		acc *= shape[i]
	}
	return st
}

// insertUnitAxis returns a copy of a with an extent-1 axis inserted at
// position k. Row-major element order is unchanged by a unit axis.
func insertUnitAxis(a *sparse.DenseArray, k int) *sparse.DenseArray {
	shape := make([]int, 0, len(a.Shape)+1)
	shape = append(shape, a.Shape[:k]...)
	shape = append(shape, 1)
	shape = append(shape, a.Shape[k:]...)
	out := sparse.ZerosDense(shape...)
	copy(out.Elements, a.Elements)
	return out
}

// permute returns a new array whose axis i is axis perm[i] of a.
// perm must be a permutation of 0..rank-1.
func permute(a *sparse.DenseArray, perm []int) *sparse.DenseArray {
	rank := len(a.Shape)
	shape := make([]int, rank)
	for i, p := range perm {
		shape[i] = a.Shape[p]
	}
	out := sparse.ZerosDense(shape...)
	if len(out.Elements) == 0 {
		return out
	}

	// Source stride for each output axis.
	in := strides(a.Shape)
	step := make([]int, rank)
	for i, p := range perm {
		step[i] = in[p]
	}

	idx := make([]int, rank)
	src := 0
	for dst := range out.Elements {
		out.Elements[dst] = a.Elements[src]
		// Advance the output multi-index, tracking the source offset.
		for ax := rank - 1; ax >= 0; ax-- {
			idx[ax]++
			src += step[ax]
			if idx[ax] < shape[ax] {
				break
			}
			src -= step[ax] * shape[ax]
			idx[ax] = 0
		}
	}
	return out
}
