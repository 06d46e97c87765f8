package grid

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestBilinear_CenterPoint(t *testing.T) {
	cell := Cell{
		X0: 0.0, X1: 2.0,
		Y0: 0.0, Y1: 2.0,
		V00: 1.0, V10: 3.0,
		V01: 5.0, V11: 7.0,
	}

	// t = u = 0.5: 0.25 * (1 + 3 + 5 + 7) = 4
	result, err := Bilinear(cell, 1.0, 1.0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if math.Abs(result-4.0) > 1e-9 {
		t.Errorf("Center point: expected 4, got %.10f", result)
	}
}

func TestBilinear_CornerPoints(t *testing.T) {
	cell := Cell{
		X0: 0.0, X1: 10.0,
		Y0: 0.0, Y1: 10.0,
		V00: 1.0, V10: 2.0,
		V01: 3.0, V11: 4.0,
	}

	tests := []struct {
		x, y     float64
		expected float64
		name     string
	}{
		{0.0, 0.0, 1.0, "bottom-left"},
		{10.0, 0.0, 2.0, "bottom-right"},
		{0.0, 10.0, 3.0, "top-left"},
		{10.0, 10.0, 4.0, "top-right"},
	}

	for _, tt := range tests {
		result, err := Bilinear(cell, tt.x, tt.y)
		if err != nil {
			t.Fatalf("Unexpected error for %s: %v", tt.name, err)
		}
		if math.Abs(result-tt.expected) > 1e-9 {
			t.Errorf("%s corner: expected %.10f, got %.10f", tt.name, tt.expected, result)
		}
	}
}

func TestBilinear_NaNCorner(t *testing.T) {
	cell := Cell{
		X0: 0.0, X1: 1.0,
		Y0: 0.0, Y1: 1.0,
		V00: 1.0, V10: 2.0,
		V01: 3.0, V11: math.NaN(),
	}

	// On the bottom edge the NaN corner has zero weight.
	result, err := Bilinear(cell, 0.5, 0.0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if math.Abs(result-1.5) > 1e-9 {
		t.Errorf("bottom edge: expected 1.5, got %v", result)
	}

	result, err = Bilinear(cell, 0.5, 0.5)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !math.IsNaN(result) {
		t.Errorf("interior next to land: expected NaN, got %v", result)
	}
}

func TestBilinear_OutOfBounds(t *testing.T) {
	cell := Cell{
		X0: 0.0, X1: 10.0,
		Y0: 0.0, Y1: 10.0,
		V00: 1.0, V10: 2.0,
		V01: 3.0, V11: 4.0,
	}

	tests := []struct {
		x, y float64
		name string
	}{
		{-1.0, 5.0, "x too small"},
		{11.0, 5.0, "x too large"},
		{5.0, -1.0, "y too small"},
		{5.0, 11.0, "y too large"},
	}

	for _, tt := range tests {
		if _, err := Bilinear(cell, tt.x, tt.y); err == nil {
			t.Errorf("%s: expected error for point (%.1f, %.1f), got nil", tt.name, tt.x, tt.y)
		}
	}
}

func newTestGrid() *Grid2D {
	return &Grid2D{
		Lon: []float64{0.0, 1.0, 2.0},
		Lat: []float64{0.0, 1.0, 2.0},
		Values: mat.NewDense(3, 3, []float64{
			1.0, 2.0, 3.0, // lat=0
			4.0, 5.0, 6.0, // lat=1
			7.0, 8.0, 9.0, // lat=2
		}),
	}
}

func TestGrid2D_InterpolateAt(t *testing.T) {
	grid := newTestGrid()

	tests := []struct {
		x, y     float64
		expected float64
	}{
		{0.0, 0.0, 1.0},
		{1.0, 0.0, 2.0},
		{2.0, 0.0, 3.0},
		{0.0, 1.0, 4.0},
		{1.0, 1.0, 5.0},
		{2.0, 2.0, 9.0},
		{0.5, 0.5, 3.0},
	}

	for _, tt := range tests {
		result, err := grid.InterpolateAt(tt.x, tt.y)
		if err != nil {
			t.Fatalf("Unexpected error at (%.1f, %.1f): %v", tt.x, tt.y, err)
		}
		if math.Abs(result-tt.expected) > 1e-9 {
			t.Errorf("At (%.1f, %.1f): expected %.10f, got %.10f", tt.x, tt.y, tt.expected, result)
		}
	}

	if _, err := grid.InterpolateAt(2.5, 1.0); err == nil {
		t.Errorf("expected error outside the grid")
	}
}

func TestGrid2D_InterpolateAtDescendingLatitude(t *testing.T) {
	// Same surface as newTestGrid but stored north to south.
	grid := &Grid2D{
		Lon: []float64{0.0, 1.0, 2.0},
		Lat: []float64{2.0, 1.0, 0.0},
		Values: mat.NewDense(3, 3, []float64{
			7.0, 8.0, 9.0,
			4.0, 5.0, 6.0,
			1.0, 2.0, 3.0,
		}),
	}

	for _, tt := range []struct{ x, y, expected float64 }{
		{0.0, 0.0, 1.0},
		{2.0, 2.0, 9.0},
		{0.5, 0.5, 3.0},
		{1.5, 1.5, 7.0},
	} {
		result, err := grid.InterpolateAt(tt.x, tt.y)
		if err != nil {
			t.Fatalf("Unexpected error at (%.1f, %.1f): %v", tt.x, tt.y, err)
		}
		if math.Abs(result-tt.expected) > 1e-9 {
			t.Errorf("At (%.1f, %.1f): expected %.10f, got %.10f", tt.x, tt.y, tt.expected, result)
		}
	}
}

func TestGrid2D_BoundsCenterAscending(t *testing.T) {
	grid := &Grid2D{
		Lon:    []float64{145.0, 140.0, 135.0},
		Lat:    []float64{30.0, 40.0},
		Values: mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6}),
	}

	minLon, maxLon, minLat, maxLat := grid.Bounds()
	if minLon != 135 || maxLon != 145 || minLat != 30 || maxLat != 40 {
		t.Errorf("Bounds: got %v %v %v %v", minLon, maxLon, minLat, maxLat)
	}

	lon, lat := grid.Center()
	if lon != 140 || lat != 35 {
		t.Errorf("Center: expected (140, 35), got (%v, %v)", lon, lat)
	}

	asc := grid.Ascending()
	if asc.Lon[0] != 135 || asc.Lon[2] != 145 {
		t.Fatalf("Ascending lon: got %v", asc.Lon)
	}
	if got := asc.Values.At(0, 0); got != 3 {
		t.Errorf("Ascending value at (lat 30, lon 135): expected 3, got %v", got)
	}
	if got := asc.Values.At(1, 2); got != 4 {
		t.Errorf("Ascending value at (lat 40, lon 145): expected 4, got %v", got)
	}
	if grid.Lon[0] != 145 {
		t.Errorf("Ascending modified the original grid")
	}
}

func TestGrid2D_GridXYZ(t *testing.T) {
	grid := newTestGrid()
	c, r := grid.Dims()
	if c != 3 || r != 3 {
		t.Fatalf("Dims: got %d, %d", c, r)
	}
	if got := grid.Z(2, 1); got != 6 {
		t.Errorf("Z(2, 1): expected 6, got %v", got)
	}
	if grid.X(1) != 1.0 || grid.Y(2) != 2.0 {
		t.Errorf("X/Y: got %v, %v", grid.X(1), grid.Y(2))
	}
}

func TestGrid2D_Validate(t *testing.T) {
	tests := []struct {
		name    string
		grid    *Grid2D
		wantErr bool
	}{
		{
			name: "valid grid",
			grid: &Grid2D{
				Lon:    []float64{0.0, 1.0, 2.0},
				Lat:    []float64{0.0, 1.0},
				Values: mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6}),
			},
			wantErr: false,
		},
		{
			name: "decreasing latitude",
			grid: &Grid2D{
				Lon:    []float64{0.0, 1.0, 2.0},
				Lat:    []float64{1.0, 0.0},
				Values: mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6}),
			},
			wantErr: false,
		},
		{
			name: "too few longitudes",
			grid: &Grid2D{
				Lon:    []float64{0.0},
				Lat:    []float64{0.0, 1.0},
				Values: mat.NewDense(2, 1, []float64{1, 2}),
			},
			wantErr: true,
		},
		{
			name: "mismatched row count",
			grid: &Grid2D{
				Lon:    []float64{0.0, 1.0},
				Lat:    []float64{0.0, 1.0},
				Values: mat.NewDense(1, 2, []float64{1, 2}),
			},
			wantErr: true,
		},
		{
			name: "non-monotone longitude",
			grid: &Grid2D{
				Lon:    []float64{0.0, 2.0, 1.0},
				Lat:    []float64{0.0, 1.0},
				Values: mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6}),
			},
			wantErr: true,
		},
		{
			name:    "no values",
			grid:    &Grid2D{Lon: []float64{0, 1}, Lat: []float64{0, 1}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.grid.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
