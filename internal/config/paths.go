package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains all resolved file paths of one run.
// This is the single source of truth for every file the CLI reads or writes.
type Paths struct {
	BaseDir    string
	InputFile  string
	ReportsDir string
	LogsDir    string

	CleanedCSV   string
	MappingsJSON string
	ReportJSON   string // empty disables the analysis report
	WorkbookXLSX string // empty disables the workbook export
	MetricsFile  string // empty disables the metrics snapshot
}

// ResolvePaths turns the configured (possibly relative) paths into absolute
// ones. Relative paths are resolved against BaseDir, which itself defaults to
// the current working directory. Output file names without a directory are
// placed in ReportsDir.
func ResolvePaths(cfg PathsConfig) (*Paths, error) {
	base := cfg.BaseDir
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		base = wd
	}
	base, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	reportsDir := resolveAgainst(base, cfg.ReportsDir)

	return &Paths{
		BaseDir:      base,
		InputFile:    resolveAgainst(base, cfg.InputFile),
		ReportsDir:   reportsDir,
		LogsDir:      resolveAgainst(base, cfg.LogsDir),
		CleanedCSV:   resolveOutput(base, reportsDir, cfg.CleanedFile),
		MappingsJSON: resolveOutput(base, reportsDir, cfg.MappingsFile),
		ReportJSON:   resolveOutput(base, reportsDir, cfg.ReportFile),
		WorkbookXLSX: resolveOutput(base, reportsDir, cfg.WorkbookFile),
		MetricsFile:  resolveOutput(base, reportsDir, cfg.MetricsFile),
	}, nil
}

// EnsureDirectories creates the output directories of the run.
func (p *Paths) EnsureDirectories() error {
	dirs := []string{p.ReportsDir}
	for _, f := range []string{p.CleanedCSV, p.MappingsJSON, p.ReportJSON, p.WorkbookXLSX, p.MetricsFile} {
		if f != "" {
			dirs = append(dirs, filepath.Dir(f))
		}
	}
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// LogPathResolution logs the resolved paths at debug level
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("Resolved paths",
		slog.String("base_dir", p.BaseDir),
		slog.String("input_file", p.InputFile),
		slog.String("reports_dir", p.ReportsDir),
		slog.String("cleaned_csv", p.CleanedCSV),
		slog.String("mappings_json", p.MappingsJSON),
		slog.String("report_json", p.ReportJSON),
		slog.String("workbook_xlsx", p.WorkbookXLSX),
		slog.String("metrics_file", p.MetricsFile))
}

func resolveAgainst(base, p string) string {
	if p == "" {
		return ""
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(base, p)
}

func resolveOutput(base, reportsDir, p string) string {
	if p == "" {
		return ""
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	if filepath.Base(p) == p {
		return filepath.Join(reportsDir, p)
	}
	return filepath.Join(base, p)
}
