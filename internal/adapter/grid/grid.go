// Package grid holds the lat/lon base of a map: the coordinate axes of a
// selected slice plus the slice values, with bounds and bilinear probing.
package grid

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Cell is one rectangle of a grid with its four corner values.
type Cell struct {
	X0, X1 float64 // longitude boundaries
	Y0, Y1 float64 // latitude boundaries

	// V00 at (X0, Y0), V10 at (X1, Y0), V01 at (X0, Y1), V11 at (X1, Y1).
	V00, V10, V01, V11 float64
}

// Bilinear interpolates within a cell:
//
//	f(x,y) ≈ (1-t)(1-u)f(x0,y0) + t(1-u)f(x1,y0) + (1-t)u*f(x0,y1) + tu*f(x1,y1)
//
// where t = (x - x0) / (x1 - x0) and u = (y - y0) / (y1 - y0).
// A NaN corner with non-zero weight yields NaN.
func Bilinear(cell Cell, x, y float64) (float64, error) {
	if cell.X1 <= cell.X0 {
		return 0, fmt.Errorf("invalid grid cell: X1 must be > X0")
	}
	if cell.Y1 <= cell.Y0 {
		return 0, fmt.Errorf("invalid grid cell: Y1 must be > Y0")
	}

	const epsilon = 1e-9
	if x < cell.X0-epsilon || x > cell.X1+epsilon {
		return 0, fmt.Errorf("x coordinate %.6f is outside grid cell [%.6f, %.6f]", x, cell.X0, cell.X1)
	}
	if y < cell.Y0-epsilon || y > cell.Y1+epsilon {
		return 0, fmt.Errorf("y coordinate %.6f is outside grid cell [%.6f, %.6f]", y, cell.Y0, cell.Y1)
	}

	t := math.Max(0, math.Min(1, (x-cell.X0)/(cell.X1-cell.X0)))
	u := math.Max(0, math.Min(1, (y-cell.Y0)/(cell.Y1-cell.Y0)))

	weights := [4]float64{(1 - t) * (1 - u), t * (1 - u), (1 - t) * u, t * u}
	values := [4]float64{cell.V00, cell.V10, cell.V01, cell.V11}
	var result float64
	for i, w := range weights {
		if w == 0 {
			continue
		}
		result += w * values[i]
	}
	return result, nil
}

// Grid2D is a rectilinear lat/lon grid. Values has one row per latitude and
// one column per longitude. Axes may be increasing or decreasing.
type Grid2D struct {
	Lon    []float64
	Lat    []float64
	Values *mat.Dense
}

// New builds a grid and validates it.
func New(lon, lat []float64, values *mat.Dense) (*Grid2D, error) {
	g := &Grid2D{Lon: lon, Lat: lat, Values: values}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// Validate checks axis lengths and monotonicity.
func (g *Grid2D) Validate() error {
	if len(g.Lon) < 2 {
		return fmt.Errorf("grid must have at least 2 longitudes")
	}
	if len(g.Lat) < 2 {
		return fmt.Errorf("grid must have at least 2 latitudes")
	}
	if g.Values == nil {
		return fmt.Errorf("grid has no values")
	}
	rows, cols := g.Values.Dims()
	if rows != len(g.Lat) || cols != len(g.Lon) {
		return fmt.Errorf("values are %dx%d, expected %dx%d (lat x lon)", rows, cols, len(g.Lat), len(g.Lon))
	}
	if !monotone(g.Lon) {
		return fmt.Errorf("longitudes must be strictly monotone")
	}
	if !monotone(g.Lat) {
		return fmt.Errorf("latitudes must be strictly monotone")
	}
	return nil
}

func monotone(axis []float64) bool {
	inc, dec := true, true
	for i := 1; i < len(axis); i++ {
		if !(axis[i] > axis[i-1]) {
			inc = false
		}
		if !(axis[i] < axis[i-1]) {
			dec = false
		}
	}
	return inc || dec
}

// Bounds returns the lon/lat extent of the grid.
func (g *Grid2D) Bounds() (minLon, maxLon, minLat, maxLat float64) {
	return floats.Min(g.Lon), floats.Max(g.Lon), floats.Min(g.Lat), floats.Max(g.Lat)
}

// Center returns the mean longitude and latitude, used to center map views.
func (g *Grid2D) Center() (lon, lat float64) {
	return stat.Mean(g.Lon, nil), stat.Mean(g.Lat, nil)
}

// Ascending returns a copy whose axes both increase.
func (g *Grid2D) Ascending() *Grid2D {
	rows, cols := g.Values.Dims()
	xs := append([]float64(nil), g.Lon...)
	ys := append([]float64(nil), g.Lat...)
	flipX := len(xs) > 1 && xs[0] > xs[len(xs)-1]
	flipY := len(ys) > 1 && ys[0] > ys[len(ys)-1]
	if flipX {
		floats.Reverse(xs)
	}
	if flipY {
		floats.Reverse(ys)
	}

	out := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		si := i
		if flipY {
			si = rows - 1 - i
		}
		for j := 0; j < cols; j++ {
			sj := j
			if flipX {
				sj = cols - 1 - j
			}
			out.Set(i, j, g.Values.At(si, sj))
		}
	}
	return &Grid2D{Lon: xs, Lat: ys, Values: out}
}

// InterpolateAt performs bilinear interpolation at (lon, lat).
func (g *Grid2D) InterpolateAt(lon, lat float64) (float64, error) {
	if err := g.Validate(); err != nil {
		return 0, fmt.Errorf("invalid grid: %w", err)
	}
	a := g
	if g.Lon[0] > g.Lon[len(g.Lon)-1] || g.Lat[0] > g.Lat[len(g.Lat)-1] {
		a = g.Ascending()
	}

	xIdx := cellIndex(a.Lon, lon)
	if xIdx < 0 {
		return 0, fmt.Errorf("longitude %.6f is outside grid range [%.6f, %.6f]", lon, a.Lon[0], a.Lon[len(a.Lon)-1])
	}
	yIdx := cellIndex(a.Lat, lat)
	if yIdx < 0 {
		return 0, fmt.Errorf("latitude %.6f is outside grid range [%.6f, %.6f]", lat, a.Lat[0], a.Lat[len(a.Lat)-1])
	}

	cell := Cell{
		X0:  a.Lon[xIdx],
		X1:  a.Lon[xIdx+1],
		Y0:  a.Lat[yIdx],
		Y1:  a.Lat[yIdx+1],
		V00: a.Values.At(yIdx, xIdx),
		V10: a.Values.At(yIdx, xIdx+1),
		V01: a.Values.At(yIdx+1, xIdx),
		V11: a.Values.At(yIdx+1, xIdx+1),
	}
	return Bilinear(cell, lon, lat)
}

// cellIndex finds i with axis[i] <= v <= axis[i+1] on an increasing axis, or -1.
func cellIndex(axis []float64, v float64) int {
	n := len(axis)
	if v < axis[0] || v > axis[n-1] {
		return -1
	}
	i := sort.SearchFloat64s(axis, v)
	if i == 0 {
		return 0
	}
	if i >= n {
		return n - 2
	}
	return i - 1
}

// Dims, Z, X and Y implement plotter.GridXYZ so a grid can back a heat map.

// Dims returns the number of columns (longitudes) and rows (latitudes).
func (g *Grid2D) Dims() (c, r int) {
	return len(g.Lon), len(g.Lat)
}

// Z returns the value at column c, row r.
func (g *Grid2D) Z(c, r int) float64 {
	return g.Values.At(r, c)
}

// X returns the longitude of column c.
func (g *Grid2D) X(c int) float64 {
	return g.Lon[c]
}

// Y returns the latitude of row r.
func (g *Grid2D) Y(r int) float64 {
	return g.Lat[r]
}
