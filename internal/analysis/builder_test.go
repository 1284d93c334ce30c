package analysis

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"startupeda/internal/config"
	apperrors "startupeda/internal/errors"
	"startupeda/internal/infrastructure"
	"startupeda/internal/preprocess"
	"startupeda/internal/shared/testutil"
	"startupeda/internal/table"
	"startupeda/pkg/contracts/domain"
)

func analysisConfig() config.AnalysisConfig {
	cfg := config.Default().Analysis
	cfg.InvestmentColumns = []string{"has_VC", "has_angel"}
	cfg.LogColumns = []string{"age", "missing_age"}
	cfg.FundingQuantile = 0.5
	cfg.HistogramBins = 2
	return cfg
}

// smallResult is six startups with an operating row that no outcome covers
func smallResult() *preprocess.Result {
	tbl := table.MustNew(
		table.NewCategorical("status", []string{"acquired", "closed", "acquired", "operating", "acquired", "closed"}, nil),
		table.NewCategorical("category_code", []string{"web", "web", "games", "web", "games", "mobile"}, nil),
		table.NewCategorical("state_code", []string{"CA", "NY", "CA", "MA", "NY", "NY"}, nil),
		table.NewCategorical("founded_year", []string{"2005", "2007", "2005", "2010", "2007", "2005"}, nil),
		table.NewNumeric("milestones", []float64{1, 0, 2, 1, 1, 0}, nil),
		table.NewNumeric("funding_total_usd", []float64{100, 200, 300, 400, 500, 10000}, nil),
		table.NewNumeric("has_VC", []float64{1, 0, 1, 1, 0, 1}, nil),
		table.NewNumeric("age", []float64{0, 1, 3, 7, 15, 31}, nil),
		table.NewNumeric("signal", []float64{1, 0, 1, 0.5, 1, 0}, nil),
		table.NewNumeric("flat", []float64{7, 7, 7, 7, 7, 7}, nil),
	)
	return &preprocess.Result{Table: tbl}
}

func TestBuilder_Build_Sections(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	b := NewBuilder(logger, analysisConfig())
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	b.now = func() time.Time { return fixed }

	ctx := infrastructure.WithRunID(context.Background(), "run-1")
	report, err := b.Build(ctx, smallResult())
	require.NoError(t, err)

	assert.Equal(t, "run-1", report.RunID)
	assert.Equal(t, fixed, report.GeneratedAt)
	assert.Equal(t, 6, report.Rows)
	assert.Equal(t, 10, report.Columns)
	assert.Equal(t, "status", report.Target)

	assert.Equal(t, []domain.LabelCount{
		{Label: "acquired", Count: 3},
		{Label: "closed", Count: 2},
		{Label: "operating", Count: 1},
	}, report.Status)
	assert.InDelta(t, 0.5, report.AcquiredShare, 1e-12)

	require.Len(t, report.TopCategories, 3)
	assert.Equal(t, "web", report.TopCategories[0].Label)
	assert.Equal(t, 3, report.TopCategories[0].Total)
	assert.Equal(t, map[string]int{"acquired": 1, "closed": 1, "operating": 1}, report.TopCategories[0].ByStatus)
	assert.Equal(t, "games", report.TopCategories[1].Label)
	assert.Equal(t, "mobile", report.TopCategories[2].Label)

	require.Len(t, report.FoundedYears, 3)
	assert.Equal(t, "2005", report.FoundedYears[0].Year)
	assert.Equal(t, 3, report.FoundedYears[0].Count)
	assert.InDelta(t, 0.5, report.FoundedYears[0].Proportion, 1e-12)
	assert.Equal(t, "2007", report.FoundedYears[1].Year)
	assert.Equal(t, "2010", report.FoundedYears[2].Year)
	assert.InDelta(t, 1.0/6, report.FoundedYears[2].Proportion, 1e-12)

	var states []string
	for _, s := range report.TopStates {
		states = append(states, s.Label)
	}
	assert.Equal(t, []string{"CA", "NY", "MA"}, states)
	assert.Equal(t, map[string]int{"acquired": 1, "closed": 2}, report.TopStates[1].ByStatus)

	assert.Equal(t, []domain.Flow{
		{Source: "milestones=0", Target: "closed", Count: 2},
		{Source: "milestones=1", Target: "acquired", Count: 2},
		{Source: "milestones=1", Target: "operating", Count: 1},
		{Source: "milestones=2", Target: "acquired", Count: 1},
	}, report.MilestoneFlows)

	assert.Equal(t, []domain.LabelCount{{Label: "has_VC", Count: 2}}, report.Investments)

	assert.Equal(t, map[string]int{"categorical": 4, "numeric": 6}, report.FeatureTypes)
}

func TestBuilder_Build_Correlations(t *testing.T) {
	b := NewBuilder(nil, analysisConfig())

	report, err := b.Build(context.Background(), smallResult())
	require.NoError(t, err)

	corr := report.Correlations
	assert.Equal(t, "status", corr.Target)
	require.NotEmpty(t, corr.Pearson)
	require.NotEmpty(t, corr.Spearman)

	assert.Equal(t, "signal", corr.Pearson[0].Feature)
	assert.InDelta(t, 1.0, corr.Pearson[0].Coefficient, 1e-9)
	assert.Equal(t, "signal", corr.Spearman[0].Feature)
	assert.InDelta(t, 1.0, corr.Spearman[0].Coefficient, 1e-9)

	for _, ranked := range [][]domain.FeatureCorrelation{corr.Pearson, corr.Spearman} {
		for i, fc := range ranked {
			assert.NotEqual(t, "flat", fc.Feature, "constant feature has no coefficient")
			assert.NotEqual(t, "status", fc.Feature)
			assert.False(t, math.IsNaN(fc.Coefficient))
			if i > 0 {
				assert.GreaterOrEqual(t, math.Abs(ranked[i-1].Coefficient), math.Abs(fc.Coefficient))
			}
		}
	}
}

func TestBuilder_Build_FundingAndLogPreview(t *testing.T) {
	b := NewBuilder(nil, analysisConfig())

	report, err := b.Build(context.Background(), smallResult())
	require.NoError(t, err)

	h := report.FundingHistogram
	assert.Equal(t, "funding_total_usd", h.Column)
	assert.Equal(t, 0.5, h.Quantile)
	assert.InDelta(t, 350.0, h.Cutoff, 1e-9)
	require.Len(t, h.Series, 2, "operating has no funding below the cutoff")

	acquired, closed := h.Series[0], h.Series[1]
	assert.Equal(t, "acquired", acquired.Status)
	assert.Equal(t, []domain.HistogramBin{
		{Lower: 100, Upper: 200, Count: 1},
		{Lower: 200, Upper: 300, Count: 1},
	}, acquired.Bins)
	assert.Equal(t, "closed", closed.Status)
	assert.Equal(t, []int{0, 1}, []int{closed.Bins[0].Count, closed.Bins[1].Count})

	require.Len(t, report.LogPreview, 1)
	preview := report.LogPreview[0]
	assert.Equal(t, "age", preview.Column)
	assert.Equal(t, 6, preview.Before.Count)
	assert.Equal(t, 31.0, preview.Before.Max)
	assert.Equal(t, 5.0, preview.Before.Median)
	assert.Equal(t, 0.0, preview.After.Min)
	assert.InDelta(t, math.Log(32), preview.After.Max, 1e-12)
}

func TestBuilder_Build_TopN(t *testing.T) {
	cfg := analysisConfig()
	cfg.TopN = 1
	b := NewBuilder(nil, cfg)

	report, err := b.Build(context.Background(), smallResult())
	require.NoError(t, err)

	require.Len(t, report.TopCategories, 1)
	assert.Equal(t, "web", report.TopCategories[0].Label)
	require.Len(t, report.TopStates, 1)
	assert.Equal(t, "CA", report.TopStates[0].Label)
	assert.Len(t, report.Correlations.Pearson, 1)
	assert.Len(t, report.Correlations.Spearman, 1)
}

func TestBuilder_Build_MissingColumns(t *testing.T) {
	t.Run("missing target is a schema error", func(t *testing.T) {
		tbl := table.MustNew(table.NewNumeric("milestones", []float64{1, 2}, nil))
		_, err := NewBuilder(nil, analysisConfig()).Build(context.Background(), &preprocess.Result{Table: tbl})
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeSchema))
	})

	t.Run("absent sections stay empty", func(t *testing.T) {
		tbl := table.MustNew(table.NewCategorical("status", []string{"acquired", "closed"}, nil))
		report, err := NewBuilder(nil, analysisConfig()).Build(context.Background(), &preprocess.Result{Table: tbl})
		require.NoError(t, err)

		assert.Len(t, report.Status, 2)
		assert.Empty(t, report.TopCategories)
		assert.Empty(t, report.FoundedYears)
		assert.Empty(t, report.TopStates)
		assert.Empty(t, report.MilestoneFlows)
		assert.Empty(t, report.Investments)
		assert.Empty(t, report.FundingHistogram.Series)
		assert.Empty(t, report.LogPreview)
		assert.Empty(t, report.Correlations.Pearson)
	})
}

func TestBuilder_Build_PreprocessedFixture(t *testing.T) {
	path := testutil.WriteCSV(t, "startup.csv", testutil.SampleStartupRows())
	raw, err := table.LoadCSV(context.Background(), path, table.LoadOptions{})
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Pipeline.Tolerant = true
	p, err := preprocess.Build(cfg.Pipeline, nil, nil)
	require.NoError(t, err)
	result, _, err := p.Run(context.Background(), raw)
	require.NoError(t, err)

	report, err := NewBuilder(nil, cfg.Analysis).Build(context.Background(), result)
	require.NoError(t, err)

	assert.Equal(t, []domain.LabelCount{
		{Label: "acquired", Count: 4},
		{Label: "closed", Count: 2},
	}, report.Status)
	assert.InDelta(t, 4.0/6, report.AcquiredShare, 1e-12)

	require.NotEmpty(t, report.TopStates)
	assert.Equal(t, "CA", report.TopStates[0].Label)
	assert.Equal(t, map[string]int{"acquired": 4, "closed": 1}, report.TopStates[0].ByStatus)

	assert.Equal(t, []domain.LabelCount{
		{Label: "has_VC", Count: 1},
		{Label: "has_angel", Count: 1},
		{Label: "has_roundA", Count: 1},
		{Label: "has_roundB", Count: 2},
		{Label: "has_roundC", Count: 2},
		{Label: "has_roundD", Count: 2},
	}, report.Investments)

	var years []string
	for _, y := range report.FoundedYears {
		years = append(years, y.Year)
	}
	assert.Equal(t, []string{"2000", "2002", "2007", "2009", "2010"}, years)

	facts := report.Pipeline
	assert.Equal(t, "2000-01-01", facts.ReferenceDate)
	assert.Equal(t, 1, facts.NegativesCorrected)
	assert.Equal(t, 4, facts.StillActive)
	require.Len(t, facts.Stages, 10)
	assert.Equal(t, preprocess.StageDrop, facts.Stages[0].ID)
	for _, s := range facts.Stages {
		assert.Equal(t, "completed", s.Status, s.ID)
	}
	assert.Len(t, report.LogPreview, 4)
}
