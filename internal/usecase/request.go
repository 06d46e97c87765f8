package usecase

import (
	"errors"
	"fmt"
	"strings"

	"go.ngs.io/fieldmap/internal/adapter/render"
	"go.ngs.io/fieldmap/internal/domain"
)

// ErrInvalidRequest is returned when a plot request is incomplete or contradictory.
var ErrInvalidRequest = errors.New("invalid request")

// Plot kinds.
const (
	KindMap   = "map"
	KindGraph = "graph"
)

// Field kinds, used as metric labels and in frames.
const (
	FieldScalar    = "scalar"
	FieldPolar     = "polar"
	FieldCartesian = "cartesian"
	FieldGraph     = "graph"
)

// PlotRequest holds every answer needed to build one figure. It is the unit
// saved to and replayed from request files.
type PlotRequest struct {
	Kind string `yaml:"kind" json:"kind"` // "map" or "graph"

	// Dimension (and coordinate variable) names
	Lat   string `yaml:"lat" json:"lat"`
	Lon   string `yaml:"lon" json:"lon"`
	Time  string `yaml:"time,omitempty" json:"time,omitempty"`
	Depth string `yaml:"depth,omitempty" json:"depth,omitempty"`

	DependsOnTime  bool `yaml:"depends_on_time" json:"depends_on_time"`
	DependsOnDepth bool `yaml:"depends_on_depth" json:"depends_on_depth"`
	TimeIndex      int  `yaml:"time_index" json:"time_index"`
	DepthIndex     int  `yaml:"depth_index" json:"depth_index"`

	// Map fields (exactly one of Scalar or Vector)
	Scalar string         `yaml:"scalar,omitempty" json:"scalar,omitempty"`
	Vector *VectorRequest `yaml:"vector,omitempty" json:"vector,omitempty"`

	// Graph fields
	X string `yaml:"x,omitempty" json:"x,omitempty"`
	Y string `yaml:"y,omitempty" json:"y,omitempty"`

	// Style
	QuiverSpacing int     `yaml:"quiver_spacing,omitempty" json:"quiver_spacing,omitempty"`
	QuiverColor   string  `yaml:"quiver_color,omitempty" json:"quiver_color,omitempty"`
	Width         float64 `yaml:"width,omitempty" json:"width,omitempty"`   // inches
	Height        float64 `yaml:"height,omitempty" json:"height,omitempty"` // inches
	Title         string  `yaml:"title,omitempty" json:"title,omitempty"`

	// Output
	Name     string `yaml:"name,omitempty" json:"name,omitempty"`
	Location string `yaml:"location,omitempty" json:"location,omitempty"`
	Format   string `yaml:"format,omitempty" json:"format,omitempty"`
}

// VectorRequest selects the variables of a vector field.
type VectorRequest struct {
	Polar        bool   `yaml:"polar" json:"polar"`
	Magnitude    string `yaml:"magnitude,omitempty" json:"magnitude,omitempty"`
	Angle        string `yaml:"angle,omitempty" json:"angle,omitempty"` // degrees
	LatComponent string `yaml:"lat_component,omitempty" json:"lat_component,omitempty"`
	LonComponent string `yaml:"lon_component,omitempty" json:"lon_component,omitempty"`
}

// ApplyDefaults fills unset style and output fields.
func (r *PlotRequest) ApplyDefaults() {
	if r.Kind == "" {
		r.Kind = KindMap
	}
	if r.QuiverSpacing == 0 {
		r.QuiverSpacing = render.DefaultQuiverSpacing
	}
	if r.QuiverColor == "" {
		r.QuiverColor = render.DefaultQuiverColor
	}
	if r.Format == "" {
		r.Format = render.DefaultFormat
	}
	r.Format = strings.ToLower(r.Format)
}

// Validate checks that the request is complete and consistent.
func (r *PlotRequest) Validate() error {
	if r.Lat == "" || r.Lon == "" {
		return fmt.Errorf("%w: lat and lon dimension names are required", ErrInvalidRequest)
	}
	if r.DependsOnTime && r.Time == "" {
		return fmt.Errorf("%w: depends_on_time requires a time dimension name", ErrInvalidRequest)
	}
	if r.DependsOnDepth && r.Depth == "" {
		return fmt.Errorf("%w: depends_on_depth requires a depth dimension name", ErrInvalidRequest)
	}
	if r.QuiverSpacing < 0 {
		return fmt.Errorf("%w: quiver_spacing must be positive", ErrInvalidRequest)
	}
	if r.Width < 0 || r.Height < 0 {
		return fmt.Errorf("%w: width and height must be positive", ErrInvalidRequest)
	}
	if r.Format != "" && !render.SupportedFormat(r.Format) {
		return fmt.Errorf("%w: unsupported format %q", ErrInvalidRequest, r.Format)
	}
	if r.QuiverColor != "" {
		if _, err := render.ParseColor(r.QuiverColor); err != nil {
			return fmt.Errorf("%w: quiver_color: %v", ErrInvalidRequest, err)
		}
	}

	switch r.Kind {
	case KindMap, "":
		return r.validateMap()
	case KindGraph:
		if r.X == "" || r.Y == "" {
			return fmt.Errorf("%w: graph requires x and y variables", ErrInvalidRequest)
		}
		if r.Scalar != "" || r.Vector != nil {
			return fmt.Errorf("%w: graph takes x and y, not scalar or vector", ErrInvalidRequest)
		}
		return nil
	default:
		return fmt.Errorf("%w: kind must be %q or %q, got %q", ErrInvalidRequest, KindMap, KindGraph, r.Kind)
	}
}

func (r *PlotRequest) validateMap() error {
	if r.X != "" || r.Y != "" {
		return fmt.Errorf("%w: map takes scalar or vector, not x and y", ErrInvalidRequest)
	}
	hasScalar := r.Scalar != ""
	hasVector := r.Vector != nil
	if hasScalar == hasVector {
		return fmt.Errorf("%w: exactly one of scalar or vector must be provided", ErrInvalidRequest)
	}
	if !hasVector {
		return nil
	}

	v := r.Vector
	if v.Polar {
		if v.Magnitude == "" || v.Angle == "" {
			return fmt.Errorf("%w: polar vector requires magnitude and angle", ErrInvalidRequest)
		}
		if v.LatComponent != "" || v.LonComponent != "" {
			return fmt.Errorf("%w: polar vector takes magnitude and angle, not components", ErrInvalidRequest)
		}
		return nil
	}
	if v.LatComponent == "" || v.LonComponent == "" {
		return fmt.Errorf("%w: cartesian vector requires lat_component and lon_component", ErrInvalidRequest)
	}
	if v.Magnitude != "" || v.Angle != "" {
		return fmt.Errorf("%w: cartesian vector takes components, not magnitude and angle", ErrInvalidRequest)
	}
	return nil
}

// FieldKind names the selector path the request takes.
func (r *PlotRequest) FieldKind() string {
	switch {
	case r.Kind == KindGraph:
		return FieldGraph
	case r.Vector != nil && r.Vector.Polar:
		return FieldPolar
	case r.Vector != nil:
		return FieldCartesian
	default:
		return FieldScalar
	}
}

// FieldSpec is the role and flag record shared by every variable of the request.
func (r *PlotRequest) FieldSpec() domain.FieldSpec {
	return domain.FieldSpec{
		Names: domain.RoleNames{
			Time:  r.Time,
			Depth: r.Depth,
			Lat:   r.Lat,
			Lon:   r.Lon,
		},
		Flags: domain.DependencyFlags{
			Time:  r.DependsOnTime,
			Depth: r.DependsOnDepth,
		},
	}
}

// SliceIndices returns the time and depth indices to slice at. An axis the
// field does not depend on is synthetic and always sliced at 0.
func (r *PlotRequest) SliceIndices() (timeIndex, depthIndex int) {
	if r.DependsOnTime {
		timeIndex = r.TimeIndex
	}
	if r.DependsOnDepth {
		depthIndex = r.DepthIndex
	}
	return timeIndex, depthIndex
}

// Variables lists the data variables the request reads.
func (r *PlotRequest) Variables() []string {
	switch r.FieldKind() {
	case FieldGraph:
		return []string{r.X, r.Y}
	case FieldPolar:
		return []string{r.Vector.Magnitude, r.Vector.Angle}
	case FieldCartesian:
		return []string{r.Vector.LatComponent, r.Vector.LonComponent}
	default:
		return []string{r.Scalar}
	}
}

// DefaultTitle describes the plotted fields when no title is set.
func (r *PlotRequest) DefaultTitle() string {
	if r.Title != "" {
		return r.Title
	}
	vars := r.Variables()
	if r.FieldKind() == FieldGraph {
		return fmt.Sprintf("%s vs %s", vars[1], vars[0])
	}
	return strings.Join(vars, ", ")
}
