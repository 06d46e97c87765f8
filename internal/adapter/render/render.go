// Package render draws map and graph figures from selected slices with gonum/plot.
package render

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"go.ngs.io/fieldmap/internal/adapter/grid"
)

// Default figure settings.
const (
	DefaultWidth         = 8 * vg.Inch
	DefaultHeight        = 6 * vg.Inch
	DefaultQuiverSpacing = 15
	DefaultQuiverColor   = "b"
	DefaultFormat        = "png"
)

// Formats lists the output formats Encode accepts.
var Formats = []string{"png", "jpg", "jpeg", "svg", "pdf", "eps", "tif", "tiff"}

// Options controls the look and size of a figure.
type Options struct {
	Title         string
	XLabel        string
	YLabel        string
	Width         vg.Length
	Height        vg.Length
	QuiverSpacing int
	QuiverColor   string
	Colors        int // palette size for heat maps
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.QuiverSpacing <= 0 {
		o.QuiverSpacing = DefaultQuiverSpacing
	}
	if o.QuiverColor == "" {
		o.QuiverColor = DefaultQuiverColor
	}
	if o.Colors <= 0 {
		o.Colors = 64
	}
	return o
}

// ScalarMap draws a heat map of g over its lon/lat axes.
func ScalarMap(g *grid.Grid2D, opts Options) (*plot.Plot, error) {
	opts = opts.withDefaults()
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("failed to draw map: %w", err)
	}

	p := newMap(opts)
	hm, err := heatMap(g.Ascending(), opts)
	if err != nil {
		return nil, err
	}
	p.Add(hm)
	return p, nil
}

// VectorMap draws the magnitude as a heat map and overlays quiver arrows every
// QuiverSpacing cells. Arrows take the lat component as U (horizontal) and the
// lon component as V (vertical).
func VectorMap(magnitude *grid.Grid2D, latComponent, lonComponent *mat.Dense, opts Options) (*plot.Plot, error) {
	opts = opts.withDefaults()
	if err := magnitude.Validate(); err != nil {
		return nil, fmt.Errorf("failed to draw map: %w", err)
	}
	u, err := grid.New(magnitude.Lon, magnitude.Lat, latComponent)
	if err != nil {
		return nil, fmt.Errorf("failed to draw quiver: lat component: %w", err)
	}
	v, err := grid.New(magnitude.Lon, magnitude.Lat, lonComponent)
	if err != nil {
		return nil, fmt.Errorf("failed to draw quiver: lon component: %w", err)
	}
	col, err := ParseColor(opts.QuiverColor)
	if err != nil {
		return nil, err
	}

	p := newMap(opts)
	hm, err := heatMap(magnitude.Ascending(), opts)
	if err != nil {
		return nil, err
	}
	p.Add(hm)
	p.Add(&Quiver{
		U:       u.Ascending(),
		V:       v.Ascending(),
		Spacing: opts.QuiverSpacing,
		LineStyle: draw.LineStyle{
			Color: col,
			Width: vg.Points(0.8),
		},
	})
	return p, nil
}

// Graph draws y against x as a scatter plot. Pairs with a NaN are skipped.
func Graph(x, y *mat.Dense, opts Options) (*plot.Plot, error) {
	opts = opts.withDefaults()
	xr, xc := x.Dims()
	yr, yc := y.Dims()
	if xr != yr || xc != yc {
		return nil, fmt.Errorf("failed to draw graph: x is %dx%d but y is %dx%d", xr, xc, yr, yc)
	}

	pts := make(plotter.XYs, 0, xr*xc)
	for i := 0; i < xr; i++ {
		for j := 0; j < xc; j++ {
			xv, yv := x.At(i, j), y.At(i, j)
			if math.IsNaN(xv) || math.IsNaN(yv) || math.IsInf(xv, 0) || math.IsInf(yv, 0) {
				continue
			}
			pts = append(pts, plotter.XY{X: xv, Y: yv})
		}
	}
	if len(pts) == 0 {
		return nil, fmt.Errorf("failed to draw graph: no finite points")
	}

	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = opts.XLabel
	p.Y.Label.Text = opts.YLabel
	s, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, fmt.Errorf("failed to draw graph: %w", err)
	}
	s.GlyphStyle.Shape = draw.CircleGlyph{}
	s.GlyphStyle.Radius = vg.Points(1.5)
	p.Add(s, plotter.NewGrid())
	return p, nil
}

// Save writes p to path; the format follows the file extension.
func Save(p *plot.Plot, opts Options, path string) error {
	opts = opts.withDefaults()
	if err := p.Save(opts.Width, opts.Height, path); err != nil {
		return fmt.Errorf("failed to save figure: %w", err)
	}
	return nil
}

// Encode writes p to w in the given format.
func Encode(p *plot.Plot, opts Options, format string, w io.Writer) error {
	opts = opts.withDefaults()
	format = strings.ToLower(format)
	if !SupportedFormat(format) {
		return fmt.Errorf("unsupported format %q", format)
	}
	wt, err := p.WriterTo(opts.Width, opts.Height, format)
	if err != nil {
		return fmt.Errorf("failed to encode figure: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write figure: %w", err)
	}
	return nil
}

// SupportedFormat reports whether Encode accepts format.
func SupportedFormat(format string) bool {
	for _, f := range Formats {
		if f == strings.ToLower(format) {
			return true
		}
	}
	return false
}

// ContentType returns the MIME type of an output format.
func ContentType(format string) string {
	switch strings.ToLower(format) {
	case "png":
		return "image/png"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "svg":
		return "image/svg+xml"
	case "pdf":
		return "application/pdf"
	case "eps":
		return "application/postscript"
	case "tif", "tiff":
		return "image/tiff"
	default:
		return "application/octet-stream"
	}
}

func newMap(opts Options) *plot.Plot {
	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = "Longitude"
	p.Y.Label.Text = "Latitude"
	return p
}

func heatMap(g *grid.Grid2D, opts Options) (*plotter.HeatMap, error) {
	finite := make([]float64, 0, len(g.Lon)*len(g.Lat))
	for _, v := range g.Values.RawMatrix().Data {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			finite = append(finite, v)
		}
	}
	if len(finite) == 0 {
		return nil, fmt.Errorf("failed to draw map: slice has no finite values")
	}
	lo, hi := floats.Min(finite), floats.Max(finite)
	if lo == hi {
		hi = lo + 1
	}

	cmap := moreland.SmoothBlueRed()
	cmap.SetMin(lo)
	cmap.SetMax(hi)
	hm := plotter.NewHeatMap(g, cmap.Palette(opts.Colors))
	hm.Min, hm.Max = lo, hi
	hm.NaN = color.Transparent
	return hm, nil
}

var namedColors = map[string]color.Color{
	"b": color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
	"g": color.RGBA{G: 0x80, A: 0xff},
	"r": color.RGBA{R: 0xff, A: 0xff},
	"c": color.RGBA{G: 0xbf, B: 0xbf, A: 0xff},
	"m": color.RGBA{R: 0xbf, B: 0xbf, A: 0xff},
	"y": color.RGBA{R: 0xbf, G: 0xbf, A: 0xff},
	"k": color.Black,
	"w": color.White,
}

// ParseColor accepts a single-letter color code (b g r c m y k w) or #rrggbb.
func ParseColor(s string) (color.Color, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if c, ok := namedColors[s]; ok {
		return c, nil
	}
	var r, g, b uint8
	if len(s) == 7 && s[0] == '#' {
		if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b); err == nil {
			return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
		}
	}
	return nil, fmt.Errorf("unknown color %q", s)
}
