// Package output writes selected slices and figures to disk.
package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// DefaultName is the figure name used when a request leaves it empty.
const DefaultName = "figure"

// Column is one named lat x lon slice.
type Column struct {
	Name   string
	Values *mat.Dense
}

// WriteSliceCSV writes one row per grid point: lat, lon and each column's
// value. NaN cells are written as "NaN".
func WriteSliceCSV(w io.Writer, lat, lon []float64, columns ...Column) error {
	for _, c := range columns {
		r, k := c.Values.Dims()
		if r != len(lat) || k != len(lon) {
			return fmt.Errorf("column %s is %dx%d, expected %dx%d", c.Name, r, k, len(lat), len(lon))
		}
	}

	cw := csv.NewWriter(w)
	header := []string{"lat", "lon"}
	for _, c := range columns {
		header = append(header, c.Name)
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	record := make([]string, len(header))
	for i, y := range lat {
		for j, x := range lon {
			record[0] = formatFloat(y)
			record[1] = formatFloat(x)
			for k, c := range columns {
				record[2+k] = formatFloat(c.Values.At(i, j))
			}
			if err := cw.Write(record); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

// WriteSliceCSVFile writes the slice CSV to path, creating parent directories.
func WriteSliceCSVFile(path string, lat, lon []float64, columns ...Column) (err error) {
	//nolint:gosec // G301: Output directories are user-facing.
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	//nolint:gosec // G304: Output path comes from the command line.
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close CSV file: %w", cerr)
		}
	}()
	return WriteSliceCSV(f, lat, lon, columns...)
}

// FigurePath joins location, name and format into a figure file path. A name
// that already carries the format extension is kept as is.
func FigurePath(location, name, format string) string {
	if name == "" {
		name = DefaultName
	}
	format = strings.TrimPrefix(strings.ToLower(format), ".")
	if format == "" {
		format = "png"
	}
	if !strings.EqualFold(filepath.Ext(name), "."+format) {
		name += "." + format
	}
	if location == "" {
		return name
	}
	return filepath.Join(location, name)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
