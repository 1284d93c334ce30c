package config

import (
	"startupeda/internal/table"
	"startupeda/pkg/contracts"
)

// Application constants
const (
	AppName    = "startup-eda"
	AppVersion = contracts.Version

	// EnvPrefix namespaces every environment override (EDA_PIPELINE_OUTLIER_THRESHOLD, ...).
	EnvPrefix = "EDA"

	// File Paths (relative to the base directory)
	DefaultDataDir    = "data"
	DefaultReportsDir = "data/reports"
	DefaultLogsDir    = "logs"

	DefaultInputFile    = "data/startup.csv"
	DefaultCleanedFile  = "cleaned_data.csv"
	DefaultMappingsFile = "column_mappings.json"
	DefaultReportFile   = "analysis_report.json"
	DefaultWorkbookFile = "cleaned_data.xlsx"
	DefaultMetricsFile  = "pipeline.prom"

	// Input encoding of the raw dataset; the loader owns the names
	EncodingLatin1 = table.EncodingLatin1
	EncodingUTF8   = table.EncodingUTF8

	// Outlier detection
	DefaultOutlierThreshold = 4.0
	DeviationSample         = "sample"
	DeviationPopulation     = "population"
	OutlierColumn           = "is_outlier"

	// Missing meaning attached to the deliberately unfilled closure date
	MissingMeaningStillActive = "still_active"

	// Suffix given to day-offset columns derived from dates
	DaysSuffix = "_days"

	// Analysis
	DefaultTopN            = 10
	DefaultHistogramBins   = 20
	DefaultFundingQuantile = 0.99
)

// DefaultDropColumns are identifiers, coordinates and one-hot flags already
// carried by state_code, category_code and status.
var DefaultDropColumns = []string{
	"Unnamed: 0",
	"latitude",
	"longitude",
	"zip_code",
	"id",
	"name",
	"Unnamed: 6",
	"object_id",
	"labels",
	"state_code.1",
	"is_CA",
	"is_NY",
	"is_MA",
	"is_TX",
	"is_otherstate",
	"is_software",
	"is_web",
	"is_mobile",
	"is_enterprise",
	"is_advertising",
	"is_gamesvideo",
	"is_ecommerce",
	"is_biotech",
	"is_consulting",
	"is_othercategory",
}

// DefaultAgeColumns are elapsed-year columns: sign-corrected, outlier-monitored
// and previewed under log1p.
var DefaultAgeColumns = []string{
	"age_first_funding_year",
	"age_last_funding_year",
	"age_first_milestone_year",
	"age_last_milestone_year",
}

var DefaultImputeColumns = []string{
	"age_first_milestone_year",
	"age_last_milestone_year",
}

var DefaultParseDateColumns = []string{
	"founded_at",
	"closed_at",
	"first_funding_at",
	"last_funding_at",
}

var DefaultNormalizeDateColumns = []string{
	"founded_at",
	"first_funding_at",
	"last_funding_at",
}

var DefaultCategoricalColumns = []string{
	"state_code",
	"city",
	"category_code",
	"founded_year",
	"status",
}

var DefaultInvestmentColumns = []string{
	"has_VC",
	"has_angel",
	"has_roundA",
	"has_roundB",
	"has_roundC",
	"has_roundD",
}
