package render

import (
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"go.ngs.io/fieldmap/internal/adapter/grid"
)

// Quiver draws arrows with horizontal component U and vertical component V
// at every Spacing-th grid point. U and V share axes.
type Quiver struct {
	U, V    *grid.Grid2D
	Spacing int

	// MaxLength is the canvas length of the largest arrow.
	MaxLength vg.Length

	draw.LineStyle
}

// Plot implements plot.Plotter.
func (q *Quiver) Plot(c draw.Canvas, p *plot.Plot) {
	trX, trY := p.Transforms(&c)
	step := q.Spacing
	if step <= 0 {
		step = 1
	}
	maxLen := q.MaxLength
	if maxLen <= 0 {
		maxLen = 0.3 * vg.Inch
	}

	peak := q.peak(step)
	if peak == 0 {
		return
	}

	cols, rows := q.U.Dims()
	for r := 0; r < rows; r += step {
		for col := 0; col < cols; col += step {
			u, v := q.U.Z(col, r), q.V.Z(col, r)
			if math.IsNaN(u) || math.IsNaN(v) {
				continue
			}
			x0, y0 := trX(q.U.X(col)), trY(q.U.Y(r))
			dx := vg.Length(u/peak) * maxLen
			dy := vg.Length(v/peak) * maxLen
			q.arrow(c, x0, y0, dx, dy)
		}
	}
}

// peak is the largest arrow magnitude among the drawn points.
func (q *Quiver) peak(step int) float64 {
	var peak float64
	cols, rows := q.U.Dims()
	for r := 0; r < rows; r += step {
		for col := 0; col < cols; col += step {
			m := math.Hypot(q.U.Z(col, r), q.V.Z(col, r))
			if !math.IsNaN(m) && m > peak {
				peak = m
			}
		}
	}
	return peak
}

func (q *Quiver) arrow(c draw.Canvas, x0, y0, dx, dy vg.Length) {
	x1, y1 := x0+dx, y0+dy
	c.StrokeLine2(q.LineStyle, x0, y0, x1, y1)

	length := math.Hypot(float64(dx), float64(dy))
	if length == 0 {
		return
	}
	head := 0.3 * length
	angle := math.Atan2(float64(dy), float64(dx))
	for _, side := range []float64{-1, 1} {
		a := angle + math.Pi - side*math.Pi/7
		hx := x1 + vg.Length(head*math.Cos(a))
		hy := y1 + vg.Length(head*math.Sin(a))
		c.StrokeLine2(q.LineStyle, x1, y1, hx, hy)
	}
}

// DataRange implements plot.DataRanger.
func (q *Quiver) DataRange() (xmin, xmax, ymin, ymax float64) {
	return q.U.Bounds()
}
