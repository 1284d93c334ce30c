// Package config provides centralized configuration management for startup-eda.
// It loads configuration from multiple sources, validates it, and exposes the
// typed column lists every preprocessing stage declares as its inputs.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. YAML configuration file
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern EDA_* for namespacing. List
// values are comma separated:
//
//	EDA_PATHS_INPUT_FILE=data/startup.csv
//	EDA_PIPELINE_OUTLIER_THRESHOLD=3.5
//	EDA_PIPELINE_OUTLIER_DEVIATION=population
//	EDA_PIPELINE_DROP_COLUMNS=latitude,longitude
//	EDA_LOGGING_LEVEL=debug
//
// # Path Management
//
// ResolvePaths turns the configured paths into absolute ones relative to a
// base directory. Bare output file names land in the reports directory:
//
//	paths, err := config.ResolvePaths(cfg.Paths)
//	err = paths.EnsureDirectories()
//
// # Validation
//
// Struct tags are checked with go-playground/validator at load time; the
// outlier threshold must be positive, the deviation mode must be "sample" or
// "population" and the input encoding must be "latin1" or "utf-8".
package config
