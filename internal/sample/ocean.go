// Package sample writes synthetic ocean datasets used for demos and tests.
//
// The dataset deliberately stores variables in different axis orders and with
// different time/depth dependence so that every normalization case and both
// vector forms can be exercised from one file.
package sample

import (
	"fmt"
	"math"

	"github.com/fhs/go-netcdf/netcdf"
)

// FillValue marks land cells in float variables.
const FillValue float32 = -9999

// Grid defines the extent and resolution of a synthetic dataset.
type Grid struct {
	LatMin     float64
	LatMax     float64
	LonMin     float64
	LonMax     float64
	Resolution float64 // degrees
	Times      int     // number of 6-hourly time steps
	Depths     []float64
}

// DefaultGrid returns a small grid off the coast of Japan.
func DefaultGrid() Grid {
	return Grid{
		LatMin:     30.0,
		LatMax:     40.0,
		LonMin:     130.0,
		LonMax:     145.0,
		Resolution: 0.5,
		Times:      4,
		Depths:     []float64{0, 10, 50, 100},
	}
}

// Axes returns the coordinate values of the grid.
func (g Grid) Axes() (lat, lon, times, depths []float64) {
	nLat := int(math.Round((g.LatMax-g.LatMin)/g.Resolution)) + 1
	nLon := int(math.Round((g.LonMax-g.LonMin)/g.Resolution)) + 1

	lat = make([]float64, nLat)
	for i := range lat {
		lat[i] = g.LatMin + float64(i)*g.Resolution
	}
	lon = make([]float64, nLon)
	for i := range lon {
		lon[i] = g.LonMin + float64(i)*g.Resolution
	}
	times = make([]float64, g.Times)
	for i := range times {
		times[i] = float64(6 * i)
	}
	depths = append([]float64(nil), g.Depths...)
	return lat, lon, times, depths
}

// point is one grid location with its coordinate values.
type point struct {
	t, d, lat, lon    int
	time, depth, y, x float64
}

// variable describes one synthetic data variable.
type variable struct {
	name  string
	dims  []string
	typ   netcdf.Type
	units string
	fill  bool
	scale float64 // packing scale_factor for SHORT variables
	value func(p point) float64
}

// Variables lists the data variables WriteOcean creates, with their dimension order.
func Variables() map[string][]string {
	out := make(map[string][]string)
	for _, v := range oceanVariables() {
		out[v.name] = v.dims
	}
	return out
}

func oceanVariables() []variable {
	return []variable{
		{name: "temp", dims: []string{"time", "depth", "lat", "lon"}, typ: netcdf.DOUBLE, units: "degC", value: temperature},
		{name: "sst", dims: []string{"lon", "time", "lat"}, typ: netcdf.FLOAT, units: "degC", value: func(p point) float64 {
			p.depth = 0
			return temperature(p)
		}},
		{name: "salinity", dims: []string{"lat", "depth", "lon"}, typ: netcdf.FLOAT, units: "psu", value: func(p point) float64 {
			return 34.0 + 0.004*p.depth + 0.05*math.Sin(p.x*math.Pi/15.0)
		}},
		{name: "bathy", dims: []string{"lon", "lat"}, typ: netcdf.FLOAT, units: "m", fill: true, value: bathymetry},
		{name: "ssh", dims: []string{"time", "lat", "lon"}, typ: netcdf.SHORT, units: "m", scale: 0.001, value: func(p point) float64 {
			return 0.5 * math.Sin(p.y*math.Pi/10.0+p.time*math.Pi/12.0)
		}},
		{name: "u", dims: []string{"time", "lat", "lon"}, typ: netcdf.FLOAT, units: "m s-1", value: eastward},
		{name: "v", dims: []string{"time", "lat", "lon"}, typ: netcdf.FLOAT, units: "m s-1", value: northward},
		{name: "speed", dims: []string{"lat", "lon", "time"}, typ: netcdf.DOUBLE, units: "m s-1", value: func(p point) float64 {
			return math.Hypot(eastward(p), northward(p))
		}},
		{name: "direction", dims: []string{"time", "lat", "lon"}, typ: netcdf.DOUBLE, units: "degree", value: direction},
	}
}

func temperature(p point) float64 {
	return 28.0 - 0.4*(p.y-30.0) - 0.08*p.depth + 0.5*math.Sin(p.time*math.Pi/12.0)
}

func bathymetry(p point) float64 {
	// Land west of a diagonal coastline.
	coast := 130.0 + 0.6*(p.y-30.0)
	if p.x < coast {
		return math.NaN()
	}
	return -200.0 - 300.0*(p.x-coast)
}

func eastward(p point) float64 {
	return 0.8 * math.Cos((p.y-35.0)*math.Pi/10.0) * (1 + 0.1*math.Sin(p.time*math.Pi/12.0))
}

func northward(p point) float64 {
	return 0.3 * math.Sin((p.x-137.5)*math.Pi/15.0)
}

// direction is the angle whose polar decomposition reproduces (northward, eastward):
// lat = m cos(θ+90°) = -m sin θ and lon = m sin(θ+90°) = m cos θ.
func direction(p point) float64 {
	return math.Atan2(-northward(p), eastward(p)) * 180.0 / math.Pi
}

// WriteOcean writes the synthetic dataset to path, replacing any existing file.
//
//nolint:gocyclo // Straight-line NetCDF definition code.
func WriteOcean(path string, g Grid) error {
	lat, lon, times, depths := g.Axes()

	ds, err := netcdf.CreateFile(path, netcdf.CLOBBER)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() { _ = ds.Close() }()

	// Create dimensions.
	axes := map[string][]float64{"time": times, "depth": depths, "lat": lat, "lon": lon}
	order := []string{"time", "depth", "lat", "lon"}
	dims := make(map[string]netcdf.Dim, len(order))
	coordVars := make(map[string]netcdf.Var, len(order))
	for _, name := range order {
		d, err := ds.AddDim(name, uint64(len(axes[name])))
		if err != nil {
			return fmt.Errorf("failed to add dimension %s: %w", name, err)
		}
		dims[name] = d
		v, err := ds.AddVar(name, netcdf.DOUBLE, []netcdf.Dim{d})
		if err != nil {
			return fmt.Errorf("failed to add coordinate %s: %w", name, err)
		}
		coordVars[name] = v
	}

	// Create data variables.
	defs := oceanVariables()
	dataVars := make([]netcdf.Var, len(defs))
	for i, def := range defs {
		vdims := make([]netcdf.Dim, len(def.dims))
		for j, name := range def.dims {
			vdims[j] = dims[name]
		}
		v, err := ds.AddVar(def.name, def.typ, vdims)
		if err != nil {
			return fmt.Errorf("failed to add variable %s: %w", def.name, err)
		}
		if err := v.Attr("units").WriteBytes([]byte(def.units)); err != nil {
			return fmt.Errorf("failed to write units of %s: %w", def.name, err)
		}
		if def.fill {
			if err := v.Attr("_FillValue").WriteFloat32s([]float32{FillValue}); err != nil {
				return fmt.Errorf("failed to write _FillValue of %s: %w", def.name, err)
			}
		}
		if def.scale != 0 {
			if err := v.Attr("scale_factor").WriteFloat64s([]float64{def.scale}); err != nil {
				return fmt.Errorf("failed to write scale_factor of %s: %w", def.name, err)
			}
		}
		dataVars[i] = v
	}

	if err := ds.EndDef(); err != nil {
		return fmt.Errorf("failed to end define mode: %w", err)
	}

	for _, name := range order {
		if err := coordVars[name].WriteFloat64s(axes[name]); err != nil {
			return fmt.Errorf("failed to write coordinate %s: %w", name, err)
		}
	}

	for i, def := range defs {
		values := evaluate(def, axes)
		if err := writeValues(dataVars[i], def, values); err != nil {
			return fmt.Errorf("failed to write %s: %w", def.name, err)
		}
	}
	return nil
}

// evaluate computes def over its dimensions in row-major order.
func evaluate(def variable, axes map[string][]float64) []float64 {
	shape := make([]int, len(def.dims))
	total := 1
	for i, name := range def.dims {
		shape[i] = len(axes[name])
		total *= shape[i]
	}

	out := make([]float64, 0, total)
	idx := make([]int, len(shape))
	for n := 0; n < total; n++ {
		var p point
		for i, name := range def.dims {
			c := axes[name][idx[i]]
			switch name {
			case "time":
				p.t, p.time = idx[i], c
			case "depth":
				p.d, p.depth = idx[i], c
			case "lat":
				p.lat, p.y = idx[i], c
			case "lon":
				p.lon, p.x = idx[i], c
			}
		}
		out = append(out, def.value(p))

		for ax := len(shape) - 1; ax >= 0; ax-- {
			idx[ax]++
			if idx[ax] < shape[ax] {
				break
			}
			idx[ax] = 0
		}
	}
	return out
}

func writeValues(v netcdf.Var, def variable, values []float64) error {
	switch def.typ {
	case netcdf.DOUBLE:
		return v.WriteFloat64s(values)
	case netcdf.FLOAT:
		buf := make([]float32, len(values))
		for i, val := range values {
			if math.IsNaN(val) && def.fill {
				buf[i] = FillValue
				continue
			}
			buf[i] = float32(val)
		}
		return v.WriteFloat32s(buf)
	case netcdf.SHORT:
		buf := make([]int16, len(values))
		for i, val := range values {
			buf[i] = int16(math.Round(val / def.scale))
		}
		return v.WriteInt16s(buf)
	default:
		return fmt.Errorf("unsupported sample type: %v", def.typ)
	}
}
