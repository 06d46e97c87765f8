package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ngs.io/fieldmap/internal/adapter/script"
	"go.ngs.io/fieldmap/internal/adapter/store"
	"go.ngs.io/fieldmap/internal/domain"
	"go.ngs.io/fieldmap/internal/sample"
	"go.ngs.io/fieldmap/internal/usecase"
)

func writeDataset(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ocean.nc")
	require.NoError(t, sample.WriteOcean(path, sample.DefaultGrid()))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	a := newApp(&out)
	a.root.SetArgs(args)
	err := a.root.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "fieldmap v"+version+"\n", out)
}

func TestVariables(t *testing.T) {
	dataset := writeDataset(t)

	out, err := run(t, "variables", "--dataset", dataset)
	require.NoError(t, err)
	assert.Contains(t, out, "lat\tcoordinate\n")
	assert.Contains(t, out, "depth\tcoordinate\n")
	assert.Contains(t, out, "sst\tdata\n")
	assert.Contains(t, out, "direction\tdata\n")
}

func TestDims(t *testing.T) {
	dataset := writeDataset(t)

	for _, reader := range []string{ReaderNetCDF, ReaderNative} {
		t.Run(reader, func(t *testing.T) {
			out, err := run(t, "dims", "sst", "-d", dataset, "--reader", reader)
			require.NoError(t, err)
			assert.Equal(t, "lon\t31\ntime\t4\nlat\t21\n", out)
		})
	}
}

func TestDims_FromEnvironment(t *testing.T) {
	t.Setenv("FIELDMAP_DATASET", writeDataset(t))

	out, err := run(t, "dims", "bathy")
	require.NoError(t, err)
	assert.Equal(t, "lon\t31\nlat\t21\n", out)
}

func TestCommandErrors(t *testing.T) {
	dataset := writeDataset(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no dataset", []string{"variables"}, "no dataset given"},
		{"unknown reader", []string{"variables", "-d", dataset, "--reader", "hdf"}, "unknown reader"},
		{"unknown variable", []string{"dims", "salt", "-d", dataset}, "variable not found"},
		{"no request", []string{"plot", "-d", dataset}, "no plot request given"},
		{"bad log level", []string{"variables", "-d", dataset, "--log-level", "loud"}, "invalid log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestPlot_PolarVector(t *testing.T) {
	dataset := writeDataset(t)
	dir := t.TempDir()

	reqPath := filepath.Join(dir, "wind.yaml")
	require.NoError(t, os.WriteFile(reqPath, []byte(`lat: lat
lon: lon
time: time
depends_on_time: true
time_index: 1
vector:
  polar: true
  magnitude: speed
  angle: direction
name: currents
location: `+dir+`
`), 0o644))

	csvPath := filepath.Join(dir, "currents.csv")
	savedPath := filepath.Join(dir, "saved.yaml")
	out, err := run(t, "plot", "-d", dataset, "-r", reqPath, "--csv", csvPath, "--save-request", savedPath)
	require.NoError(t, err)
	assert.Contains(t, out, "figure saved")

	png, err := os.ReadFile(filepath.Join(dir, "currents.png"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	csv, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(csv)), "\n")
	assert.Equal(t, "lat,lon,lat_component,lon_component,magnitude", lines[0])
	assert.Len(t, lines, 1+21*31)

	saved, err := script.Load(savedPath)
	require.NoError(t, err)
	assert.Equal(t, 15, saved.QuiverSpacing)
	assert.Equal(t, "png", saved.Format)
	assert.Equal(t, "speed", saved.Vector.Magnitude)
}

func TestPlot_GraphWithOverrides(t *testing.T) {
	dataset := writeDataset(t)
	dir := t.TempDir()

	reqPath := filepath.Join(dir, "graph.yaml")
	require.NoError(t, os.WriteFile(reqPath, []byte(`kind: graph
lat: lat
lon: lon
time: time
depends_on_time: true
time_index: 3
x: u
y: v
`), 0o644))

	figPath := filepath.Join(dir, "uv.svg")
	_, err := run(t, "plot", "-d", dataset, "-r", reqPath, "--format", "svg", "-o", figPath)
	require.NoError(t, err)

	svg, err := os.ReadFile(figPath)
	require.NoError(t, err)
	assert.Contains(t, string(svg), "<svg")
}

// iceReader serves ice(time, lat, lon) where time has no coordinate variable
// and lon fails to read unless lonOK is set.
type iceReader struct {
	lonOK bool
}

func (iceReader) VariableNames() ([]string, error) { return []string{"lat", "lon", "ice"}, nil }

func (iceReader) DimensionNames(v string) ([]string, error) {
	switch v {
	case "ice":
		return []string{"time", "lat", "lon"}, nil
	case "lat", "lon":
		return []string{v}, nil
	}
	return nil, fmt.Errorf("%w: %s", store.ErrVariableNotFound, v)
}

func (r iceReader) ReadValues(v string) (*domain.RawField, error) {
	switch {
	case v == "lat":
		return domain.NewRawField([]int{2}, []float64{60, 61})
	case v == "lon" && r.lonOK:
		return domain.NewRawField([]int{3}, []float64{0, 1, 2})
	case v == "lon":
		return nil, errors.New("HDF error: read failed")
	}
	return nil, fmt.Errorf("%w: %s", store.ErrVariableNotFound, v)
}

func (iceReader) Close() error { return nil }

func TestPrintDims(t *testing.T) {
	var out bytes.Buffer
	err := printDims(&out, usecase.NewPlotUseCase(iceReader{lonOK: true}, nil, nil), "ice")
	require.NoError(t, err)
	assert.Equal(t, "time\nlat\t2\nlon\t3\n", out.String())
}

func TestPrintDims_ReadFailure(t *testing.T) {
	var out bytes.Buffer
	err := printDims(&out, usecase.NewPlotUseCase(iceReader{}, nil, nil), "ice")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read failed")
	assert.False(t, errors.Is(err, store.ErrVariableNotFound))
}
