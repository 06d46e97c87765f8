package domain

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// SelectSlice returns the lat×lon plane of field at the given time and depth
// indices. Rows are latitudes and columns longitudes. Index 0 is always valid
// on a synthetic unit axis.
func SelectSlice(field *CanonicalField, timeIndex, depthIndex int) (*mat.Dense, error) {
	shape := field.Shape()
	if timeIndex < 0 || timeIndex >= shape[0] {
		return nil, fmt.Errorf("%w: time index %d, axis has %d steps", ErrIndexOutOfRange, timeIndex, shape[0])
	}
	if depthIndex < 0 || depthIndex >= shape[1] {
		return nil, fmt.Errorf("%w: depth index %d, axis has %d levels", ErrIndexOutOfRange, depthIndex, shape[1])
	}
	nLat, nLon := shape[2], shape[3]
	if nLat == 0 || nLon == 0 {
		return nil, fmt.Errorf("%w: empty %dx%d lat/lon grid", ErrShapeMismatch, nLat, nLon)
	}

	plane := nLat * nLon
	start := (timeIndex*shape[1] + depthIndex) * plane
	values := make([]float64, plane)
	copy(values, field.data.Elements[start:start+plane])
	return mat.NewDense(nLat, nLon, values), nil
}
