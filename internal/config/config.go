package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "startupeda/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Pipeline  PipelineConfig  `yaml:"pipeline" envconfig:"PIPELINE"`
	Analysis  AnalysisConfig  `yaml:"analysis" envconfig:"ANALYSIS"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"omitempty,oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"omitempty,oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	BaseDir      string `yaml:"base_dir" envconfig:"BASE_DIR"`
	InputFile    string `yaml:"input_file" envconfig:"INPUT_FILE" validate:"required"`
	ReportsDir   string `yaml:"reports_dir" envconfig:"REPORTS_DIR" validate:"required"`
	LogsDir      string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
	CleanedFile  string `yaml:"cleaned_file" envconfig:"CLEANED_FILE" validate:"required"`
	MappingsFile string `yaml:"mappings_file" envconfig:"MAPPINGS_FILE" validate:"required"`
	ReportFile   string `yaml:"report_file" envconfig:"REPORT_FILE"`
	WorkbookFile string `yaml:"workbook_file" envconfig:"WORKBOOK_FILE"`
	MetricsFile  string `yaml:"metrics_file" envconfig:"METRICS_FILE"`
}

// PipelineConfig enumerates the columns each preprocessing stage reads and
// the parameters it runs with.
type PipelineConfig struct {
	Encoding             string   `yaml:"encoding" envconfig:"ENCODING" validate:"oneof=latin1 utf-8"`
	Tolerant             bool     `yaml:"tolerant" envconfig:"TOLERANT"`
	DropColumns          []string `yaml:"drop_columns" envconfig:"DROP_COLUMNS"`
	ImputeColumns        []string `yaml:"impute_columns" envconfig:"IMPUTE_COLUMNS"`
	KeepMissingColumns   []string `yaml:"keep_missing_columns" envconfig:"KEEP_MISSING_COLUMNS"`
	ParseDateColumns     []string `yaml:"parse_date_columns" envconfig:"PARSE_DATE_COLUMNS"`
	AbsColumns           []string `yaml:"abs_columns" envconfig:"ABS_COLUMNS"`
	OutlierColumns       []string `yaml:"outlier_columns" envconfig:"OUTLIER_COLUMNS"`
	OutlierThreshold     float64  `yaml:"outlier_threshold" envconfig:"OUTLIER_THRESHOLD" validate:"gt=0"`
	OutlierDeviation     string   `yaml:"outlier_deviation" envconfig:"OUTLIER_DEVIATION" validate:"oneof=sample population"`
	SortColumn           string   `yaml:"sort_column" envconfig:"SORT_COLUMN"`
	DropAfterSortColumns []string `yaml:"drop_after_sort_columns" envconfig:"DROP_AFTER_SORT_COLUMNS"`
	YearSourceColumn     string   `yaml:"year_source_column" envconfig:"YEAR_SOURCE_COLUMN"`
	YearColumn           string   `yaml:"year_column" envconfig:"YEAR_COLUMN" validate:"required_with=YearSourceColumn"`
	CategoricalColumns   []string `yaml:"categorical_columns" envconfig:"CATEGORICAL_COLUMNS"`
	NormalizeDateColumns []string `yaml:"normalize_date_columns" envconfig:"NORMALIZE_DATE_COLUMNS"`
}

// AnalysisConfig drives the descriptive report built from the cleaned table.
type AnalysisConfig struct {
	TargetColumn      string   `yaml:"target_column" envconfig:"TARGET_COLUMN" validate:"required"`
	PositiveLabel     string   `yaml:"positive_label" envconfig:"POSITIVE_LABEL" validate:"required"`
	NegativeLabel     string   `yaml:"negative_label" envconfig:"NEGATIVE_LABEL" validate:"required,nefield=PositiveLabel"`
	CategoryColumn    string   `yaml:"category_column" envconfig:"CATEGORY_COLUMN"`
	StateColumn       string   `yaml:"state_column" envconfig:"STATE_COLUMN"`
	YearColumn        string   `yaml:"year_column" envconfig:"YEAR_COLUMN"`
	MilestoneColumn   string   `yaml:"milestone_column" envconfig:"MILESTONE_COLUMN"`
	FundingColumn     string   `yaml:"funding_column" envconfig:"FUNDING_COLUMN"`
	InvestmentColumns []string `yaml:"investment_columns" envconfig:"INVESTMENT_COLUMNS"`
	LogColumns        []string `yaml:"log_columns" envconfig:"LOG_COLUMNS"`
	TopN              int      `yaml:"top_n" envconfig:"TOP_N" validate:"gt=0"`
	HistogramBins     int      `yaml:"histogram_bins" envconfig:"HISTOGRAM_BINS" validate:"gt=0"`
	FundingQuantile   float64  `yaml:"funding_quantile" envconfig:"FUNDING_QUANTILE" validate:"gt=0,lte=1"`
}

// TelemetryConfig holds OpenTelemetry settings for the batch run
type TelemetryConfig struct {
	EnableTracing bool    `yaml:"enable_tracing" envconfig:"ENABLE_TRACING"`
	EnableMetrics bool    `yaml:"enable_metrics" envconfig:"ENABLE_METRICS"`
	TraceFile     string  `yaml:"trace_file" envconfig:"TRACE_FILE"`
	SampleRatio   float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" validate:"gte=0,lte=1"`
	Environment   string  `yaml:"environment" envconfig:"ENVIRONMENT"`
}

// Load builds the configuration: defaults, then the YAML file at path (if
// any), then EDA_* environment overrides. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = getConfigFilePath()
	}
	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, apperrors.NewConfigError("failed to load config from file", err).
				WithContext("path", path)
		}
	}

	// envconfig only overwrites fields whose variables are set
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, apperrors.NewConfigError("config validation failed", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks struct constraints and normalises logging settings.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return err
	}

	c.Logging.Format = "json"
	if c.Logging.Output == "" {
		c.Logging.Output = "console"
	}
	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/startup-eda.log"
	}

	for _, col := range c.Pipeline.ImputeColumns {
		for _, keep := range c.Pipeline.KeepMissingColumns {
			if strings.EqualFold(col, keep) {
				return fmt.Errorf("column %q cannot be both imputed and kept missing", col)
			}
		}
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"startup-eda.yaml",
		"configs/startup-eda.yaml",
		"../configs/startup-eda.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "console",
		},
		Paths: PathsConfig{
			InputFile:    DefaultInputFile,
			ReportsDir:   DefaultReportsDir,
			LogsDir:      DefaultLogsDir,
			CleanedFile:  DefaultCleanedFile,
			MappingsFile: DefaultMappingsFile,
			ReportFile:   DefaultReportFile,
			MetricsFile:  DefaultMetricsFile,
		},
		Pipeline: PipelineConfig{
			Encoding:             EncodingLatin1,
			DropColumns:          clone(DefaultDropColumns),
			ImputeColumns:        clone(DefaultImputeColumns),
			KeepMissingColumns:   []string{"closed_at"},
			ParseDateColumns:     clone(DefaultParseDateColumns),
			AbsColumns:           clone(DefaultAgeColumns),
			OutlierColumns:       clone(DefaultAgeColumns),
			OutlierThreshold:     DefaultOutlierThreshold,
			OutlierDeviation:     DeviationSample,
			SortColumn:           "closed_at",
			DropAfterSortColumns: []string{"closed_at"},
			YearSourceColumn:     "founded_at",
			YearColumn:           "founded_year",
			CategoricalColumns:   clone(DefaultCategoricalColumns),
			NormalizeDateColumns: clone(DefaultNormalizeDateColumns),
		},
		Analysis: AnalysisConfig{
			TargetColumn:      "status",
			PositiveLabel:     "acquired",
			NegativeLabel:     "closed",
			CategoryColumn:    "category_code",
			StateColumn:       "state_code",
			YearColumn:        "founded_year",
			MilestoneColumn:   "milestones",
			FundingColumn:     "funding_total_usd",
			InvestmentColumns: clone(DefaultInvestmentColumns),
			LogColumns:        clone(DefaultAgeColumns),
			TopN:              DefaultTopN,
			HistogramBins:     DefaultHistogramBins,
			FundingQuantile:   DefaultFundingQuantile,
		},
		Telemetry: TelemetryConfig{
			EnableTracing: false,
			EnableMetrics: true,
			SampleRatio:   1.0,
			Environment:   "development",
		},
	}
}

func clone(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
