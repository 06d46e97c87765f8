// Package main provides the fieldmap HTTP server.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"go.ngs.io/fieldmap/internal/adapter/store"
	"go.ngs.io/fieldmap/internal/adapter/store/native"
	"go.ngs.io/fieldmap/internal/adapter/store/ncfile"
	httpHandler "go.ngs.io/fieldmap/internal/http"
	"go.ngs.io/fieldmap/internal/metrics"
	"go.ngs.io/fieldmap/internal/usecase"
)

const version = "0.1.0"

func main() {
	// Parse command-line flags.
	showHelp := flag.Bool("help", false, "Show usage information")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showHelp {
		printUsage()
		return
	}

	if *showVersion {
		fmt.Printf("fieldmap-server version %s\n", version)
		return
	}

	// Load configuration from environment.
	port := getEnv("PORT", "8080")
	datasetPath := getEnv("DATASET_PATH", "./data/ocean.nc")
	readerKind := getEnv("READER", "netcdf")
	logLevel := getEnv("LOG_LEVEL", "info")
	cacheVars := getEnv("CACHE_VARIABLES", "false")

	log := logrus.New()
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		log.Fatalf("Invalid LOG_LEVEL %q: %v", logLevel, err)
	}
	log.SetLevel(level)

	log.WithFields(logrus.Fields{
		"port":    port,
		"dataset": datasetPath,
		"reader":  readerKind,
		"cache":   cacheVars,
	}).Info("Starting fieldmap server")

	// Open the dataset.
	reader, err := openReader(readerKind, datasetPath)
	if err != nil {
		log.Fatalf("Failed to open dataset: %v", err)
	}
	defer reader.Close()

	// Fields are read fresh for every request unless caching is enabled.
	datasetReader, err := withCache(reader, cacheVars)
	if err != nil {
		log.Fatalf("Invalid CACHE_VARIABLES: %v", err)
	}

	// Initialize use case.
	rec := metrics.NewRecorder()
	plotUC := usecase.NewPlotUseCase(datasetReader, log, rec)

	// Setup router.
	router := httpHandler.SetupRouter(plotUC, log, rec)

	// Start server.
	addr := fmt.Sprintf(":%s", port)
	log.Infof("Server listening on %s", addr)
	log.Infof("Health check: http://localhost:%s/health", port)
	log.Info("API endpoints:")
	log.Info("  - GET  /v1/variables")
	log.Info("  - GET  /v1/variables/:name/dimensions")
	log.Info("  - POST /v1/frames")
	log.Info("  - POST /v1/renders")
	log.Info("  - POST /v1/probes")

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// openReader opens path with the libnetcdf or the pure-Go backend.
func openReader(kind, path string) (store.DatasetReader, error) {
	switch strings.ToLower(kind) {
	case "netcdf":
		return ncfile.Open(path)
	case "native":
		return native.Open(path)
	default:
		return nil, fmt.Errorf("unknown READER %q (want netcdf or native)", kind)
	}
}

// withCache wraps r in a variable cache when enabled parses as true. An empty
// value leaves r uncached.
func withCache(r store.DatasetReader, enabled string) (store.DatasetReader, error) {
	if enabled == "" {
		return r, nil
	}
	on, err := strconv.ParseBool(enabled)
	if err != nil {
		return nil, err
	}
	if !on {
		return r, nil
	}
	return store.NewCachedReader(r), nil
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// printUsage prints usage information.
func printUsage() {
	fmt.Printf("Fieldmap Server v%s\n\n", version)
	fmt.Println("USAGE:")
	fmt.Println("  fieldmap-server [flags]")
	fmt.Println()
	fmt.Println("FLAGS:")
	fmt.Println("  -help          Show this help message")
	fmt.Println("  -version       Show version information")
	fmt.Println()
	fmt.Println("ENVIRONMENT VARIABLES:")
	fmt.Println("  PORT                    Server port (default: 8080)")
	fmt.Println("  DATASET_PATH            NetCDF dataset to serve (default: ./data/ocean.nc)")
	fmt.Println("  READER                  NetCDF backend: netcdf or native (default: netcdf)")
	fmt.Println("  LOG_LEVEL               debug, info, warn or error (default: info)")
	fmt.Println("  CACHE_VARIABLES         Keep read variables in memory; a dataset rewritten while serving stays stale (default: false)")
	fmt.Println("  CORS_ALLOWED_ORIGINS    Comma-separated list of allowed origins (default: all origins)")
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  # Generate a sample dataset and serve it")
	fmt.Println("  ncgen -out ./data/ocean.nc && fieldmap-server")
	fmt.Println()
	fmt.Println("  # Serve with the pure-Go reader on a custom port")
	fmt.Println("  PORT=3000 READER=native DATASET_PATH=/data/roms.nc fieldmap-server")
	fmt.Println()
	fmt.Println("API ENDPOINTS:")
	fmt.Println("  GET  /health                          Health check")
	fmt.Println("  GET  /metrics                         Prometheus metrics")
	fmt.Println("  GET  /v1/variables                    List dataset variables")
	fmt.Println("  GET  /v1/variables/:name/dimensions   Dimensions of a variable")
	fmt.Println("  POST /v1/frames                       Build a lat/lon frame as JSON")
	fmt.Println("  POST /v1/renders?format=png           Render a frame as an image")
	fmt.Println("  POST /v1/probes                       Interpolate a map value at a point")
	fmt.Println()
}
