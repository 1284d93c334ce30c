package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"startupeda/internal/analysis"
	"startupeda/internal/config"
	"startupeda/internal/exporter"
	"startupeda/internal/infrastructure"
	"startupeda/internal/preprocess"
	"startupeda/internal/table"
	"startupeda/internal/validation"
	"startupeda/pkg/contracts"
)

// options are the command line overrides applied on top of the loaded config
type options struct {
	configPath string
	input      string
	output     string
	mappings   string
	report     string
	workbook   string
	threshold  float64
	tolerant   bool
	version    bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet(config.AppName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "YAML config file (defaults to startup-eda.yaml if present)")
	fs.StringVar(&opts.input, "in", "", "input CSV file (defaults to data/startup.csv)")
	fs.StringVar(&opts.output, "out", "", "cleaned CSV output (defaults to data/reports/cleaned_data.csv)")
	fs.StringVar(&opts.mappings, "mappings", "", "column mappings JSON output")
	fs.StringVar(&opts.report, "report", "", "analysis report JSON output")
	fs.StringVar(&opts.workbook, "xlsx", "", "optional XLSX workbook output")
	fs.Float64Var(&opts.threshold, "threshold", 0, "outlier threshold in deviations (overrides config)")
	fs.BoolVar(&opts.version, "version", false, "print version information and exit")
	fs.BoolVar(&opts.tolerant, "tolerant", false, "skip configured columns that are missing instead of failing")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	return opts, nil
}

// apply copies the non-zero overrides into cfg and revalidates it
func (o options) apply(cfg *config.Config) error {
	if o.input != "" {
		cfg.Paths.InputFile = o.input
	}
	if o.output != "" {
		cfg.Paths.CleanedFile = o.output
	}
	if o.mappings != "" {
		cfg.Paths.MappingsFile = o.mappings
	}
	if o.report != "" {
		cfg.Paths.ReportFile = o.report
	}
	if o.workbook != "" {
		cfg.Paths.WorkbookFile = o.workbook
	}
	if o.threshold != 0 {
		cfg.Pipeline.OutlierThreshold = o.threshold
	}
	if o.tolerant {
		cfg.Pipeline.Tolerant = true
	}
	return cfg.Validate()
}

func main() {
	os.Exit(execute(os.Args[1:]))
}

// execute runs the CLI and returns the process exit code
func execute(args []string) int {
	opts, err := parseFlags(args, os.Stderr)
	if err != nil {
		return 2
	}
	if opts.version {
		fmt.Println(contracts.GetFullVersionString())
		return 0
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		return 1
	}
	if err := opts.apply(cfg); err != nil {
		slog.Error("Invalid command line options", "error", err)
		return 1
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = infrastructure.EnsureRunID(ctx)

	if err := run(ctx, cfg, logger); err != nil {
		infrastructure.WithError(logger, err).ErrorContext(ctx, "Run failed")
		fmt.Fprintf(os.Stderr, "%s: %v\n", config.AppName, err)
		return 1
	}
	return 0
}

// run executes one full load, preprocess, export and report cycle
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) (err error) {
	started := time.Now()
	logger = infrastructure.WithComponent(logger, "cli")

	paths, err := config.ResolvePaths(cfg.Paths)
	if err != nil {
		return err
	}
	paths.LogPathResolution(logger)

	tel, err := infrastructure.InitializeTelemetry(cfg.Telemetry, logger)
	if err != nil {
		return err
	}
	defer func() {
		if werr := tel.WriteMetrics(paths.MetricsFile); werr != nil && err == nil {
			err = werr
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if serr := tel.Shutdown(shutdownCtx); serr != nil {
			logger.Warn("Telemetry shutdown failed", slog.String("error", serr.Error()))
		}
	}()

	validator := validation.NewFileValidator(logger)
	if err := validator.ValidateCSVFile(paths.InputFile); err != nil {
		return err
	}
	if err := paths.EnsureDirectories(); err != nil {
		return err
	}
	if err := validator.ValidateOutputFiles(paths.CleanedCSV, paths.MappingsJSON, paths.ReportJSON, paths.WorkbookXLSX); err != nil {
		return err
	}

	logger.InfoContext(ctx, "Starting startup EDA run",
		slog.String("version", contracts.GetVersionString()),
		slog.String("input_file", paths.InputFile),
		slog.String("reports_dir", paths.ReportsDir),
		slog.Bool("tolerant", cfg.Pipeline.Tolerant),
		slog.Float64("outlier_threshold", cfg.Pipeline.OutlierThreshold))

	raw, err := table.LoadCSV(ctx, paths.InputFile, table.LoadOptions{
		Encoding: cfg.Pipeline.Encoding,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	pipeline, err := preprocess.Build(cfg.Pipeline, tel, logger)
	if err != nil {
		return err
	}
	result, _, err := pipeline.Run(ctx, raw)
	if err != nil {
		return err
	}

	if err := exporter.NewCSVWriter(logger).WriteTable(paths.CleanedCSV, result.Table); err != nil {
		return err
	}
	tel.Metrics.RecordFileWritten(ctx, "cleaned_csv")
	if err := exporter.WriteMappings(paths.MappingsJSON, result.Mappings); err != nil {
		return err
	}
	tel.Metrics.RecordFileWritten(ctx, "mappings_json")

	report, err := analysis.NewBuilder(logger, cfg.Analysis).Build(ctx, result)
	if err != nil {
		return err
	}
	if paths.ReportJSON != "" {
		if err := exporter.WriteJSON(paths.ReportJSON, report); err != nil {
			return err
		}
		tel.Metrics.RecordFileWritten(ctx, "report_json")
	}
	if paths.WorkbookXLSX != "" {
		if err := exporter.NewWorkbookWriter(logger).Write(paths.WorkbookXLSX, result.Table, result.Mappings, report); err != nil {
			return err
		}
		tel.Metrics.RecordFileWritten(ctx, "workbook_xlsx")
	}

	logger.InfoContext(ctx, "Startup EDA run completed",
		slog.Int("rows", result.Table.NumRows()),
		slog.Int("columns", result.Table.NumColumns()),
		slog.Int("outliers", result.OutlierCount),
		slog.String("cleaned_csv", paths.CleanedCSV),
		slog.String("mappings_json", paths.MappingsJSON),
		slog.Duration("duration", time.Since(started)))
	return nil
}
