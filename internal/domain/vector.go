package domain

import (
	"fmt"
	"math"

	"github.com/ctessum/sparse"
)

// DecomposeCartesian combines two normalized orthogonal components into a
// vector triple. The magnitude is the element-wise Euclidean norm.
func DecomposeCartesian(lat, lon *CanonicalField) (*VectorTriple, error) {
	if err := sameShape(lat, lon); err != nil {
		return nil, err
	}

	latC := lat.data.Copy()
	lonC := lon.data.Copy()
	mag := sparse.ZerosDense(lat.data.Shape...)
	for i, a := range latC.Elements {
		b := lonC.Elements[i]
		mag.Elements[i] = math.Sqrt(a*a + b*b)
	}

	return &VectorTriple{
		LatComponent: &CanonicalField{data: latC},
		LonComponent: &CanonicalField{data: lonC},
		Magnitude:    &CanonicalField{data: mag},
	}, nil
}

// DecomposePolar projects a magnitude and an angle in degrees onto the lat and
// lon axes:
//
//	lat = m * cos(θ + π/2)
//	lon = m * sin(θ + π/2)
//
// The π/2 offset converts the dataset angle convention to the lat/lon axis
// convention and must not be dropped. The returned magnitude is a copy of the
// input, not a recomputation.
func DecomposePolar(magnitude, angleDeg *CanonicalField) (*VectorTriple, error) {
	if err := sameShape(magnitude, angleDeg); err != nil {
		return nil, err
	}

	latC := sparse.ZerosDense(magnitude.data.Shape...)
	lonC := sparse.ZerosDense(magnitude.data.Shape...)
	for i, m := range magnitude.data.Elements {
		theta := angleDeg.data.Elements[i]*math.Pi/180 + math.Pi/2
		latC.Elements[i] = m * math.Cos(theta)
		lonC.Elements[i] = m * math.Sin(theta)
	}

	return &VectorTriple{
		LatComponent: &CanonicalField{data: latC},
		LonComponent: &CanonicalField{data: lonC},
		Magnitude:    &CanonicalField{data: magnitude.data.Copy()},
	}, nil
}

func sameShape(a, b *CanonicalField) error {
	if sa, sb := a.Shape(), b.Shape(); sa != sb {
		return fmt.Errorf("%w: component shapes %v and %v differ", ErrShapeMismatch, sa, sb)
	}
	return nil
}
