// Command ncgen writes a synthetic ocean dataset for trying out fieldmap.
//
// The file holds variables stored in several axis orders, with and without
// time and depth dependence, a packed SHORT variable, a variable with land
// fill values, and a current field in both polar and Cartesian form.
package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.ngs.io/fieldmap/internal/sample"
)

func main() {
	// Command line flags
	out := flag.String("out", "./data/ocean.nc", "Output NetCDF file")
	region := flag.String("region", "japan", "Region: japan or custom")
	latMin := flag.Float64("lat-min", 30.0, "Minimum latitude (custom region)")
	latMax := flag.Float64("lat-max", 40.0, "Maximum latitude (custom region)")
	lonMin := flag.Float64("lon-min", 130.0, "Minimum longitude (custom region)")
	lonMax := flag.Float64("lon-max", 145.0, "Maximum longitude (custom region)")
	resolution := flag.Float64("resolution", 0.5, "Grid resolution in degrees")
	times := flag.Int("times", 4, "Number of 6-hourly time steps")

	flag.Parse()

	// Define grid based on region
	grid := sample.DefaultGrid()
	switch *region {
	case "japan":
	case "custom":
		grid.LatMin, grid.LatMax = *latMin, *latMax
		grid.LonMin, grid.LonMax = *lonMin, *lonMax
	default:
		log.Fatalf("Unknown region: %s (use japan or custom)", *region)
	}
	grid.Resolution = *resolution
	grid.Times = *times

	if grid.LatMax <= grid.LatMin || grid.LonMax <= grid.LonMin || grid.Resolution <= 0 || grid.Times < 1 {
		log.Fatalf("Invalid grid: %+v", grid)
	}

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	lat, lon, ts, depths := grid.Axes()
	log.Printf("Writing %s", *out)
	log.Printf("  Grid: %d lat x %d lon, %d times, %d depths", len(lat), len(lon), len(ts), len(depths))

	if err := sample.WriteOcean(*out, grid); err != nil {
		log.Fatalf("Failed to write dataset: %v", err)
	}

	vars := sample.Variables()
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		log.Printf("  %-10s [%s]", name, strings.Join(vars[name], ", "))
	}
	log.Printf("Done")
}
