package store

import (
	"errors"

	"go.ngs.io/fieldmap/internal/domain"
)

// ErrVariableNotFound is returned when a requested variable does not exist in the dataset.
var ErrVariableNotFound = errors.New("variable not found")

// DatasetReader is the interface for reading gridded variables from a dataset file.
type DatasetReader interface {
	// VariableNames lists every variable in file order.
	VariableNames() ([]string, error)

	// DimensionNames lists the dimensions of a variable in axis order.
	DimensionNames(variable string) ([]string, error)

	// ReadValues reads a variable as float64 with fill values mapped to NaN
	// and packing attributes applied.
	ReadValues(variable string) (*domain.RawField, error)

	// Close releases the underlying file.
	Close() error
}

// DataVariableNames returns the variables that are not coordinate variables,
// i.e. whose name is not one of the dataset's dimension names.
func DataVariableNames(r DatasetReader) ([]string, error) {
	names, err := r.VariableNames()
	if err != nil {
		return nil, err
	}

	dims := make(map[string]bool)
	for _, name := range names {
		varDims, err := r.DimensionNames(name)
		if err != nil {
			return nil, err
		}
		for _, d := range varDims {
			dims[d] = true
		}
	}

	data := make([]string, 0, len(names))
	for _, name := range names {
		if !dims[name] {
			data = append(data, name)
		}
	}
	return data, nil
}
