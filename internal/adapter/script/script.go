// Package script saves plot requests as YAML files and replays them.
package script

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"go.ngs.io/fieldmap/internal/usecase"
)

// Save writes req to path as YAML, creating parent directories.
func Save(path string, req usecase.PlotRequest) error {
	var buf bytes.Buffer
	if err := Encode(&buf, req); err != nil {
		return err
	}
	//nolint:gosec // G301: Request files are user-facing.
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create request directory: %w", err)
	}
	//nolint:gosec // G306: Request files are user-facing.
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write request file: %w", err)
	}
	return nil
}

// Load reads a request file. Unknown keys are rejected.
func Load(path string) (usecase.PlotRequest, error) {
	//nolint:gosec // G304: Request path comes from the command line.
	f, err := os.Open(path)
	if err != nil {
		return usecase.PlotRequest{}, fmt.Errorf("failed to open request file: %w", err)
	}
	defer func() { _ = f.Close() }()

	req, err := Decode(f)
	if err != nil {
		return usecase.PlotRequest{}, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return req, nil
}

// Encode writes req as YAML.
func Encode(w io.Writer, req usecase.PlotRequest) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(req); err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	return nil
}

// Decode reads one YAML request.
func Decode(r io.Reader) (usecase.PlotRequest, error) {
	var req usecase.PlotRequest
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&req); err != nil {
		if err == io.EOF {
			return req, fmt.Errorf("empty request file")
		}
		return req, fmt.Errorf("failed to decode request: %w", err)
	}
	return req, nil
}
