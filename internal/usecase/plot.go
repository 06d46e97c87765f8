package usecase

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"

	"go.ngs.io/fieldmap/internal/adapter/grid"
	"go.ngs.io/fieldmap/internal/adapter/render"
	"go.ngs.io/fieldmap/internal/adapter/store"
	"go.ngs.io/fieldmap/internal/domain"
	"go.ngs.io/fieldmap/internal/metrics"
)

// VariableList describes the variables of a dataset.
type VariableList struct {
	All  []string `json:"all"`
	Data []string `json:"data"`
}

// Frame is one selected lat x lon slice ready for rendering. Exactly one of
// Scalar, the vector triple, or X/Y is set, according to Kind.
type Frame struct {
	Kind       string
	Variables  []string
	TimeIndex  int
	DepthIndex int
	Lat        []float64
	Lon        []float64

	Scalar *mat.Dense

	LatComponent *mat.Dense
	LonComponent *mat.Dense
	Magnitude    *mat.Dense

	X *mat.Dense
	Y *mat.Dense
}

// Grid places values on the frame's lat/lon axes.
func (f *Frame) Grid(values *mat.Dense) (*grid.Grid2D, error) {
	return grid.New(f.Lon, f.Lat, values)
}

// MapValues returns the slice drawn as the map background: the scalar field or
// the vector magnitude.
func (f *Frame) MapValues() *mat.Dense {
	if f.Scalar != nil {
		return f.Scalar
	}
	return f.Magnitude
}

// PlotUseCase orchestrates reading, normalizing, decomposing and slicing fields.
type PlotUseCase struct {
	reader  store.DatasetReader
	log     logrus.FieldLogger
	metrics *metrics.Recorder
}

// NewPlotUseCase creates a new plot use case. metrics may be nil.
func NewPlotUseCase(reader store.DatasetReader, log logrus.FieldLogger, rec *metrics.Recorder) *PlotUseCase {
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		log = l
	}
	return &PlotUseCase{
		reader:  reader,
		log:     log,
		metrics: rec,
	}
}

// Variables lists all variables and the data variables among them.
func (uc *PlotUseCase) Variables() (*VariableList, error) {
	all, err := uc.reader.VariableNames()
	if err != nil {
		return nil, fmt.Errorf("failed to list variables: %w", err)
	}
	data, err := store.DataVariableNames(uc.reader)
	if err != nil {
		return nil, fmt.Errorf("failed to list data variables: %w", err)
	}
	return &VariableList{All: all, Data: data}, nil
}

// Dimensions lists the dimension names of a variable in axis order.
func (uc *PlotUseCase) Dimensions(variable string) ([]string, error) {
	dims, err := uc.reader.DimensionNames(variable)
	if err != nil {
		return nil, fmt.Errorf("failed to get dimensions: %w", err)
	}
	return dims, nil
}

// AxisLength returns the number of values of a coordinate variable, the
// bound for time and depth indices.
func (uc *PlotUseCase) AxisLength(variable string) (int, error) {
	raw, err := uc.reader.ReadValues(variable)
	if err != nil {
		return 0, fmt.Errorf("failed to read axis %s: %w", variable, err)
	}
	return raw.Len(), nil
}

// BuildFrame resolves, normalizes and slices the fields of req.
func (uc *PlotUseCase) BuildFrame(req PlotRequest) (frame *Frame, err error) {
	req.ApplyDefaults()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	kind := req.FieldKind()
	started := time.Now()
	defer func() {
		uc.metrics.ObserveFrame(kind, started, err)
	}()

	spec := req.FieldSpec()
	timeIndex, depthIndex := req.SliceIndices()
	frame = &Frame{
		Kind:       kind,
		Variables:  req.Variables(),
		TimeIndex:  timeIndex,
		DepthIndex: depthIndex,
	}

	switch kind {
	case FieldScalar:
		field, err := uc.canonical(req.Scalar, spec)
		if err != nil {
			return nil, err
		}
		if frame.Scalar, err = domain.SelectSlice(field, timeIndex, depthIndex); err != nil {
			return nil, fmt.Errorf("failed to select %s: %w", req.Scalar, err)
		}

	case FieldPolar, FieldCartesian:
		triple, err := uc.vector(req, spec)
		if err != nil {
			return nil, err
		}
		if frame.LatComponent, err = domain.SelectSlice(triple.LatComponent, timeIndex, depthIndex); err != nil {
			return nil, fmt.Errorf("failed to select lat component: %w", err)
		}
		if frame.LonComponent, err = domain.SelectSlice(triple.LonComponent, timeIndex, depthIndex); err != nil {
			return nil, fmt.Errorf("failed to select lon component: %w", err)
		}
		if frame.Magnitude, err = domain.SelectSlice(triple.Magnitude, timeIndex, depthIndex); err != nil {
			return nil, fmt.Errorf("failed to select magnitude: %w", err)
		}

	case FieldGraph:
		x, err := uc.canonical(req.X, spec)
		if err != nil {
			return nil, err
		}
		y, err := uc.canonical(req.Y, spec)
		if err != nil {
			return nil, err
		}
		if x.Shape() != y.Shape() {
			return nil, fmt.Errorf("%w: %s is %v but %s is %v", domain.ErrShapeMismatch, req.X, x.Shape(), req.Y, y.Shape())
		}
		if frame.X, err = domain.SelectSlice(x, timeIndex, depthIndex); err != nil {
			return nil, fmt.Errorf("failed to select %s: %w", req.X, err)
		}
		if frame.Y, err = domain.SelectSlice(y, timeIndex, depthIndex); err != nil {
			return nil, fmt.Errorf("failed to select %s: %w", req.Y, err)
		}
	}

	rows, cols := frame.anySlice().Dims()
	if frame.Lat, err = uc.axis(req.Lat, rows); err != nil {
		return nil, err
	}
	if frame.Lon, err = uc.axis(req.Lon, cols); err != nil {
		return nil, err
	}

	uc.log.WithFields(logrus.Fields{
		"kind":        kind,
		"variables":   frame.Variables,
		"time_index":  timeIndex,
		"depth_index": depthIndex,
		"lat":         rows,
		"lon":         cols,
	}).Debug("frame built")

	return frame, nil
}

// Render builds the frame of req and draws it.
func (uc *PlotUseCase) Render(req PlotRequest) (*plot.Plot, render.Options, *Frame, error) {
	req.ApplyDefaults()
	frame, err := uc.BuildFrame(req)
	if err != nil {
		return nil, render.Options{}, nil, err
	}

	opts := RenderOptions(req)
	var p *plot.Plot
	switch frame.Kind {
	case FieldScalar:
		g, gerr := frame.Grid(frame.Scalar)
		if gerr != nil {
			return nil, opts, nil, fmt.Errorf("failed to build map base: %w", gerr)
		}
		p, err = render.ScalarMap(g, opts)
	case FieldPolar, FieldCartesian:
		g, gerr := frame.Grid(frame.Magnitude)
		if gerr != nil {
			return nil, opts, nil, fmt.Errorf("failed to build map base: %w", gerr)
		}
		p, err = render.VectorMap(g, frame.LatComponent, frame.LonComponent, opts)
	case FieldGraph:
		p, err = render.Graph(frame.X, frame.Y, opts)
	}
	if err != nil {
		return nil, opts, nil, err
	}
	return p, opts, frame, nil
}

// RenderOptions converts the style fields of req.
func RenderOptions(req PlotRequest) render.Options {
	opts := render.Options{
		Title:         req.DefaultTitle(),
		Width:         vg.Length(req.Width) * vg.Inch,
		Height:        vg.Length(req.Height) * vg.Inch,
		QuiverSpacing: req.QuiverSpacing,
		QuiverColor:   req.QuiverColor,
	}
	if req.Kind == KindGraph {
		opts.XLabel, opts.YLabel = req.X, req.Y
	}
	return opts
}

// Probe interpolates the map values of req at (lon, lat).
func (uc *PlotUseCase) Probe(req PlotRequest, lon, lat float64) (float64, *Frame, error) {
	req.ApplyDefaults()
	if req.Kind == KindGraph {
		return 0, nil, fmt.Errorf("%w: probes need a map request", ErrInvalidRequest)
	}
	frame, err := uc.BuildFrame(req)
	if err != nil {
		return 0, nil, err
	}
	g, err := frame.Grid(frame.MapValues())
	if err != nil {
		return 0, nil, fmt.Errorf("failed to build map base: %w", err)
	}
	v, err := g.InterpolateAt(lon, lat)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return v, frame, nil
}

// canonical reads a variable and normalizes it to [time, depth, lat, lon].
func (uc *PlotUseCase) canonical(variable string, spec domain.FieldSpec) (*domain.CanonicalField, error) {
	dims, err := uc.reader.DimensionNames(variable)
	if err != nil {
		return nil, fmt.Errorf("failed to get dimensions: %w", err)
	}
	roles, err := domain.Resolve(dims, spec.EffectiveNames())
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", variable, err)
	}
	raw, err := uc.reader.ReadValues(variable)
	if err != nil {
		return nil, fmt.Errorf("failed to read values: %w", err)
	}
	field, err := domain.Normalize(raw, roles, spec.Flags)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize %s: %w", variable, err)
	}
	return field, nil
}

func (uc *PlotUseCase) vector(req PlotRequest, spec domain.FieldSpec) (*domain.VectorTriple, error) {
	names := req.Variables()
	a, err := uc.canonical(names[0], spec)
	if err != nil {
		return nil, err
	}
	b, err := uc.canonical(names[1], spec)
	if err != nil {
		return nil, err
	}

	var triple *domain.VectorTriple
	if req.Vector.Polar {
		triple, err = domain.DecomposePolar(a, b)
	} else {
		triple, err = domain.DecomposeCartesian(a, b)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decompose %s/%s: %w", names[0], names[1], err)
	}
	return triple, nil
}

// axis reads the coordinate variable of a dimension. Dimensions without a
// coordinate variable get their index values.
func (uc *PlotUseCase) axis(name string, n int) ([]float64, error) {
	raw, err := uc.reader.ReadValues(name)
	if errors.Is(err, store.ErrVariableNotFound) {
		out := make([]float64, n)
		for i := range out {
			out[i] = float64(i)
		}
		return out, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read coordinate %s: %w", name, err)
	}
	if raw.Rank() != 1 || raw.Len() != n {
		return nil, fmt.Errorf("%w: coordinate %s has shape %v, expected [%d]", domain.ErrShapeMismatch, name, raw.Shape(), n)
	}
	return raw.Values(), nil
}

func (f *Frame) anySlice() *mat.Dense {
	switch {
	case f.Scalar != nil:
		return f.Scalar
	case f.Magnitude != nil:
		return f.Magnitude
	default:
		return f.X
	}
}
