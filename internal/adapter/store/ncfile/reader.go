// Package ncfile reads gridded variables from NetCDF files through libnetcdf.
package ncfile

import (
	"fmt"
	"sync"

	"github.com/fhs/go-netcdf/netcdf"

	"go.ngs.io/fieldmap/internal/adapter/store"
	"go.ngs.io/fieldmap/internal/domain"
)

// Reader provides access to the variables of one NetCDF file.
type Reader struct {
	path string
	nc   netcdf.Dataset
	mu   sync.Mutex // libnetcdf handles are not safe for concurrent use.
}

// Open opens a NetCDF file read-only.
func Open(path string) (*Reader, error) {
	//nolint:gosec // G304: Dataset path comes from operator configuration.
	nc, err := netcdf.OpenFile(path, netcdf.NOWRITE)
	if err != nil {
		return nil, fmt.Errorf("failed to open NetCDF file: %w", err)
	}
	return &Reader{path: path, nc: nc}, nil
}

// Path returns the file the reader was opened on.
func (r *Reader) Path() string {
	return r.path
}

// Close closes the underlying file.
func (r *Reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.nc.Close()
}

// VariableNames lists every variable in file order.
func (r *Reader) VariableNames() ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, err := r.nc.NVars()
	if err != nil {
		return nil, fmt.Errorf("failed to count variables: %w", err)
	}
	names := make([]string, 0, n)
	for i := 0; i < n; i++ {
		name, err := r.nc.VarN(i).Name()
		if err != nil {
			return nil, fmt.Errorf("failed to get name of variable %d: %w", i, err)
		}
		names = append(names, name)
	}
	return names, nil
}

// DimensionNames lists the dimensions of a variable in axis order.
func (r *Reader) DimensionNames(variable string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, err := r.lookup(variable)
	if err != nil {
		return nil, err
	}
	dims, err := v.Dims()
	if err != nil {
		return nil, fmt.Errorf("failed to get dimensions of %s: %w", variable, err)
	}
	names := make([]string, len(dims))
	for i, d := range dims {
		names[i], err = d.Name()
		if err != nil {
			return nil, fmt.Errorf("failed to get dimension %d name of %s: %w", i, variable, err)
		}
	}
	return names, nil
}

// ReadValues reads a whole variable as float64. Fill values become NaN and
// scale_factor/add_offset are applied.
func (r *Reader) ReadValues(variable string) (*domain.RawField, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, err := r.lookup(variable)
	if err != nil {
		return nil, err
	}

	dims, err := v.Dims()
	if err != nil {
		return nil, fmt.Errorf("failed to get dimensions of %s: %w", variable, err)
	}
	shape := make([]int, len(dims))
	total := 1
	for i, d := range dims {
		n, err := d.Len()
		if err != nil {
			return nil, fmt.Errorf("failed to get dim%d length of %s: %w", i, variable, err)
		}
		shape[i] = int(n)
		total *= int(n)
	}

	values, err := readFloat64s(v, total)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", variable, err)
	}
	packingOf(v).Apply(values)

	return domain.NewRawField(shape, values)
}

func (r *Reader) lookup(variable string) (netcdf.Var, error) {
	v, err := r.nc.Var(variable)
	if err != nil {
		return netcdf.Var{}, fmt.Errorf("%w: %s in %s", store.ErrVariableNotFound, variable, r.path)
	}
	return v, nil
}

// number is an element type libnetcdf reads into a Go slice.
type number interface {
	~int8 | ~uint8 | ~int16 | ~uint16 | ~int32 | ~uint32 | ~int64 | ~uint64 | ~float32 | ~float64
}

// readAs reads into a []T of len(out) and widens it to float64.
func readAs[T number](out []float64, read func([]T) error) error {
	tmp := make([]T, len(out))
	if err := read(tmp); err != nil {
		return err
	}
	for i, val := range tmp {
		out[i] = float64(val)
	}
	return nil
}

// readFloat64s reads total elements of v, converting to float64.
func readFloat64s(v netcdf.Var, total int) ([]float64, error) {
	t, err := v.Type()
	if err != nil {
		return nil, fmt.Errorf("failed to get var type: %w", err)
	}

	out := make([]float64, total)
	if total == 0 {
		return out, nil
	}
	switch t {
	case netcdf.DOUBLE:
		err = v.ReadFloat64s(out)
	case netcdf.FLOAT:
		err = readAs(out, v.ReadFloat32s)
	case netcdf.INT64:
		err = readAs(out, v.ReadInt64s)
	case netcdf.UINT64:
		err = readAs(out, v.ReadUint64s)
	case netcdf.INT:
		err = readAs(out, v.ReadInt32s)
	case netcdf.UINT:
		err = readAs(out, v.ReadUint32s)
	case netcdf.SHORT:
		err = readAs(out, v.ReadInt16s)
	case netcdf.USHORT:
		err = readAs(out, v.ReadUint16s)
	case netcdf.BYTE:
		err = readAs(out, v.ReadInt8s)
	case netcdf.UBYTE:
		err = readAs(out, v.ReadUint8s)
	default:
		return nil, fmt.Errorf("unsupported var type: %v", t)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// packingOf collects _FillValue, missing_value, scale_factor and add_offset.
func packingOf(v netcdf.Var) store.Packing {
	p := store.NewPacking()
	if fv, ok := attrFloat(v, "_FillValue"); ok {
		p.FillValue = &fv
	}
	if mv, ok := attrFloat(v, "missing_value"); ok {
		p.MissingValue = &mv
	}
	if sf, ok := attrFloat(v, "scale_factor"); ok {
		p.ScaleFactor = sf
	}
	if ao, ok := attrFloat(v, "add_offset"); ok {
		p.AddOffset = ao
	}
	return p
}

// attrFloat returns the first value of a numeric attribute as float64.
func attrFloat(v netcdf.Var, name string) (float64, bool) {
	a := v.Attr(name)
	n, err := a.Len()
	if err != nil || n == 0 {
		return 0, false
	}
	t, err := a.Type()
	if err != nil {
		return 0, false
	}

	buf := make([]float64, n)
	switch t {
	case netcdf.DOUBLE:
		err = a.ReadFloat64s(buf)
	case netcdf.FLOAT:
		err = readAs(buf, a.ReadFloat32s)
	case netcdf.INT64:
		err = readAs(buf, a.ReadInt64s)
	case netcdf.UINT64:
		err = readAs(buf, a.ReadUint64s)
	case netcdf.INT:
		err = readAs(buf, a.ReadInt32s)
	case netcdf.UINT:
		err = readAs(buf, a.ReadUint32s)
	case netcdf.SHORT:
		err = readAs(buf, a.ReadInt16s)
	case netcdf.USHORT:
		err = readAs(buf, a.ReadUint16s)
	case netcdf.BYTE:
		err = readAs(buf, a.ReadInt8s)
	case netcdf.UBYTE:
		err = readAs(buf, a.ReadUint8s)
	default:
		return 0, false
	}
	if err != nil {
		return 0, false
	}
	return buf[0], true
}
