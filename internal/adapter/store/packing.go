package store

import "math"

// Packing holds the CF attributes that map stored numbers to physical values.
type Packing struct {
	FillValue    *float64
	MissingValue *float64
	ScaleFactor  float64
	AddOffset    float64
}

// NewPacking returns a packing with identity scaling and no fill values.
func NewPacking() Packing {
	return Packing{ScaleFactor: 1}
}

// Apply replaces fill and missing values with NaN and unpacks the rest in place.
func (p Packing) Apply(values []float64) {
	for i, v := range values {
		if (p.FillValue != nil && v == *p.FillValue) || (p.MissingValue != nil && v == *p.MissingValue) {
			values[i] = math.NaN()
			continue
		}
		values[i] = v*p.ScaleFactor + p.AddOffset
	}
}
