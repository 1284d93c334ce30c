package domain

import (
	"time"
)

// AnalysisReport holds the descriptive statistics computed from the cleaned
// startup table. Each section carries the numbers behind one chart of the
// exploratory analysis.
type AnalysisReport struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Rows        int       `json:"rows"`
	Columns     int       `json:"columns"`
	Target      string    `json:"target"`

	Pipeline         PipelineFacts       `json:"pipeline"`
	Status           []LabelCount        `json:"status"`
	AcquiredShare    float64             `json:"acquired_share"`
	TopCategories    []CategoryBreakdown `json:"top_categories"`
	FoundedYears     []YearShare         `json:"founded_years"`
	TopStates        []CategoryBreakdown `json:"top_states"`
	Correlations     Correlations        `json:"correlations"`
	MilestoneFlows   []Flow              `json:"milestone_flows"`
	Investments      []LabelCount        `json:"investments_among_acquired"`
	FundingHistogram FundingHistogram    `json:"funding_histogram"`
	LogPreview       []TransformPreview  `json:"log1p_preview"`
	FeatureTypes     map[string]int      `json:"feature_types"`
}

// PipelineFacts summarises what preprocessing did to the data
type PipelineFacts struct {
	ReferenceDate      string             `json:"reference_date,omitempty"`
	NegativesCorrected int                `json:"negatives_corrected"`
	OutliersFlagged    int                `json:"outliers_flagged"`
	StillActive        int                `json:"still_active"`
	ImputedValues      map[string]float64 `json:"imputed_values,omitempty"`
	Stages             []StageFact        `json:"stages"`
}

// StageFact is the outcome of one preprocessing stage
type StageFact struct {
	ID         string                 `json:"id"`
	Name       string                 `json:"name"`
	Status     string                 `json:"status"`
	DurationMS float64                `json:"duration_ms"`
	Stats      map[string]interface{} `json:"stats,omitempty"`
}

// LabelCount is a frequency of one label
type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// CategoryBreakdown counts one label overall and per outcome status
type CategoryBreakdown struct {
	Label    string         `json:"label"`
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"by_status"`
}

// YearShare is the count and proportion of startups founded in one year
type YearShare struct {
	Year       string  `json:"year"`
	Count      int     `json:"count"`
	Proportion float64 `json:"proportion"`
}

// Correlations ranks numeric features by their correlation with the target
type Correlations struct {
	Target   string               `json:"target"`
	Pearson  []FeatureCorrelation `json:"pearson"`
	Spearman []FeatureCorrelation `json:"spearman"`
}

// FeatureCorrelation is the coefficient of one feature against the target
type FeatureCorrelation struct {
	Feature     string  `json:"feature"`
	Coefficient float64 `json:"coefficient"`
}

// Flow is one link of the milestones → status diagram
type Flow struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Count  int    `json:"count"`
}

// FundingHistogram bins total funding below a quantile cutoff, per status
type FundingHistogram struct {
	Column   string            `json:"column"`
	Quantile float64           `json:"quantile"`
	Cutoff   float64           `json:"cutoff"`
	Series   []HistogramSeries `json:"series"`
}

// HistogramSeries is the histogram of one status
type HistogramSeries struct {
	Status string         `json:"status"`
	Bins   []HistogramBin `json:"bins"`
}

// HistogramBin counts the values in [Lower, Upper)
type HistogramBin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// TransformPreview compares a column before and after log1p
type TransformPreview struct {
	Column string       `json:"column"`
	Before SummaryStats `json:"before"`
	After  SummaryStats `json:"after"`
}

// SummaryStats describes a numeric sample. Undefined statistics are zero.
type SummaryStats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Median float64 `json:"median"`
	Max    float64 `json:"max"`
}
