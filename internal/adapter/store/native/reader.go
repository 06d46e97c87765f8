// Package native reads gridded variables with the pure-Go NetCDF decoder, for
// hosts without libnetcdf.
package native

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"

	"go.ngs.io/fieldmap/internal/adapter/store"
	"go.ngs.io/fieldmap/internal/domain"
)

// Reader provides access to the variables of one NetCDF (CDF or HDF5) file.
type Reader struct {
	path string
	nc   api.Group
	mu   sync.Mutex
}

// Open opens a NetCDF file.
func Open(path string) (*Reader, error) {
	nc, err := netcdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open NetCDF file: %w", err)
	}
	return &Reader{path: path, nc: nc}, nil
}

// Close closes the underlying file.
func (r *Reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nc.Close()
	return nil
}

// VariableNames lists every variable in file order.
func (r *Reader) VariableNames() ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.nc.ListVariables(), nil
}

// DimensionNames lists the dimensions of a variable in axis order.
func (r *Reader) DimensionNames(variable string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	vg, err := r.nc.GetVarGetter(variable)
	if err != nil {
		return nil, fmt.Errorf("%w: %s in %s", store.ErrVariableNotFound, variable, r.path)
	}
	return append([]string(nil), vg.Dimensions()...), nil
}

// ReadValues reads a whole variable as float64. Fill values become NaN and
// scale_factor/add_offset are applied.
func (r *Reader) ReadValues(variable string) (*domain.RawField, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, err := r.nc.GetVariable(variable)
	if err != nil {
		return nil, fmt.Errorf("%w: %s in %s", store.ErrVariableNotFound, variable, r.path)
	}

	shape, values, err := flatten(v.Values)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", variable, err)
	}
	if len(shape) != len(v.Dimensions) {
		return nil, fmt.Errorf("failed to read %s: %d dimensions but %d-d values", variable, len(v.Dimensions), len(shape))
	}
	packingOf(v.Attributes).Apply(values)

	return domain.NewRawField(shape, values)
}

// flatten converts the decoder's nested slices into a shape and row-major values.
func flatten(values interface{}) ([]int, []float64, error) {
	rv := reflect.ValueOf(values)
	if !rv.IsValid() {
		return nil, nil, fmt.Errorf("variable has no values")
	}

	var shape []int
	for t := rv; t.Kind() == reflect.Slice; {
		shape = append(shape, t.Len())
		if t.Len() == 0 {
			break
		}
		t = t.Index(0)
	}

	out := make([]float64, 0, product(shape))
	var walk func(v reflect.Value, depth int) error
	walk = func(v reflect.Value, depth int) error {
		if depth == len(shape) {
			f, ok := toFloat(v)
			if !ok {
				return fmt.Errorf("unsupported element type %s", v.Type())
			}
			out = append(out, f)
			return nil
		}
		if v.Kind() != reflect.Slice || v.Len() != shape[depth] {
			return fmt.Errorf("ragged values at depth %d", depth)
		}
		for i := 0; i < v.Len(); i++ {
			if err := walk(v.Index(i), depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(rv, 0); err != nil {
		return nil, nil, err
	}
	return shape, out, nil
}

func product(shape []int) int {
	n := 1
	for _, s := range shape {
		n *= s
	}
	return n
}

// toFloat converts a numeric scalar (or the first element of a numeric slice) to float64.
func toFloat(v reflect.Value) (float64, bool) {
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		return v.Float(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint()), true
	case reflect.Slice:
		if v.Len() == 0 {
			return 0, false
		}
		return toFloat(v.Index(0))
	case reflect.Interface:
		return toFloat(v.Elem())
	default:
		return 0, false
	}
}

func packingOf(attrs api.AttributeMap) store.Packing {
	p := store.NewPacking()
	if attrs == nil {
		return p
	}
	lookup := func(name string) (float64, bool) {
		val, ok := attrs.Get(name)
		if !ok {
			return 0, false
		}
		return toFloat(reflect.ValueOf(val))
	}
	if fv, ok := lookup("_FillValue"); ok {
		p.FillValue = &fv
	}
	if mv, ok := lookup("missing_value"); ok {
		p.MissingValue = &mv
	}
	if sf, ok := lookup("scale_factor"); ok {
		p.ScaleFactor = sf
	}
	if ao, ok := lookup("add_offset"); ok {
		p.AddOffset = ao
	}
	return p
}
