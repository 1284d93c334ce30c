package analysis

import (
	"context"
	"log/slog"
	"time"

	"startupeda/internal/config"
	"startupeda/internal/infrastructure"
	"startupeda/internal/preprocess"
	"startupeda/internal/table"
	"startupeda/pkg/contracts/domain"
)

// Builder computes the AnalysisReport of a preprocessed table
type Builder struct {
	logger *slog.Logger
	cfg    config.AnalysisConfig
	now    func() time.Time
}

// NewBuilder creates a report builder. Zero sizes in cfg fall back to the
// package defaults.
func NewBuilder(logger *slog.Logger, cfg config.AnalysisConfig) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.TopN <= 0 {
		cfg.TopN = config.DefaultTopN
	}
	if cfg.HistogramBins <= 0 {
		cfg.HistogramBins = config.DefaultHistogramBins
	}
	if cfg.FundingQuantile <= 0 || cfg.FundingQuantile > 1 {
		cfg.FundingQuantile = config.DefaultFundingQuantile
	}
	return &Builder{
		logger: infrastructure.WithComponent(logger, "analysis"),
		cfg:    cfg,
		now:    time.Now,
	}
}

// Build derives every report section from result. The target column must
// exist; sections whose source columns are absent stay empty.
func (b *Builder) Build(ctx context.Context, result *preprocess.Result) (*domain.AnalysisReport, error) {
	t := result.Table
	b.logger.InfoContext(ctx, "building analysis report",
		slog.Int("rows", t.NumRows()),
		slog.Int("columns", t.NumColumns()))

	status, err := decodeLabels(t, result.Mappings, b.cfg.TargetColumn)
	if err != nil {
		return nil, err
	}

	report := &domain.AnalysisReport{
		RunID:        infrastructure.GetRunID(ctx),
		GeneratedAt:  b.now().UTC(),
		Rows:         t.NumRows(),
		Columns:      t.NumColumns(),
		Target:       b.cfg.TargetColumn,
		Pipeline:     pipelineFacts(result),
		FeatureTypes: featureTypes(t),
	}

	report.Status = countLabels(status)
	report.AcquiredShare = share(report.Status, b.cfg.PositiveLabel)

	if col, ok, err := b.labels(t, result.Mappings, b.cfg.CategoryColumn); err != nil {
		return nil, err
	} else if ok {
		report.TopCategories = topByTotal(breakdown(col, status), b.cfg.TopN)
	}
	if col, ok, err := b.labels(t, result.Mappings, b.cfg.YearColumn); err != nil {
		return nil, err
	} else if ok {
		report.FoundedYears = yearShares(col)
	}
	if col, ok, err := b.labels(t, result.Mappings, b.cfg.StateColumn); err != nil {
		return nil, err
	} else if ok {
		report.TopStates = topByOutcome(breakdown(col, status), b.cfg.PositiveLabel, b.cfg.NegativeLabel, b.cfg.TopN)
	}

	outcome, outcomeNull := outcomeIndicator(status, b.cfg.PositiveLabel, b.cfg.NegativeLabel)
	report.Correlations, err = correlations(ctx, t, b.cfg.TargetColumn, outcome, outcomeNull, b.cfg.TopN)
	if err != nil {
		return nil, err
	}

	if col := b.numeric(t, b.cfg.MilestoneColumn); col != nil {
		report.MilestoneFlows = milestoneFlows(col, status)
	}

	for _, name := range b.cfg.InvestmentColumns {
		if !t.Has(name) {
			b.logger.DebugContext(ctx, "investment column not present", slog.String("column", name))
			continue
		}
		col, _ := t.Column(name)
		if n, ok := investmentCount(col, status, b.cfg.PositiveLabel); ok {
			report.Investments = append(report.Investments, domain.LabelCount{Label: name, Count: n})
		}
	}

	if col := b.numeric(t, b.cfg.FundingColumn); col != nil {
		report.FundingHistogram = fundingHistogram(col, status, report.Status, b.cfg.FundingQuantile, b.cfg.HistogramBins)
	}

	for _, name := range b.cfg.LogColumns {
		if col := b.numeric(t, name); col != nil {
			report.LogPreview = append(report.LogPreview, logPreview(col))
		}
	}

	b.logger.InfoContext(ctx, "analysis report built",
		slog.Int("status_labels", len(report.Status)),
		slog.Int("pearson_features", len(report.Correlations.Pearson)),
		slog.Float64("acquired_share", report.AcquiredShare))
	return report, nil
}

func (b *Builder) labels(t *table.Table, mappings domain.Mappings, column string) (labelColumn, bool, error) {
	if column == "" || !t.Has(column) {
		return labelColumn{}, false, nil
	}
	col, err := decodeLabels(t, mappings, column)
	if err != nil {
		return labelColumn{}, false, err
	}
	return col, true, nil
}

// numeric returns the named column when it exists and is numeric
func (b *Builder) numeric(t *table.Table, column string) *table.Column {
	if column == "" {
		return nil
	}
	col, err := t.Require(column, table.Numeric)
	if err != nil {
		b.logger.Debug("skipping analysis column", slog.String("column", column), slog.String("reason", err.Error()))
		return nil
	}
	return col
}

func pipelineFacts(result *preprocess.Result) domain.PipelineFacts {
	facts := domain.PipelineFacts{
		NegativesCorrected: result.NegativesCorrected,
		OutliersFlagged:    result.OutlierCount,
		StillActive:        result.StillActive,
		ImputedValues:      result.ImputedValues,
	}
	if !result.ReferenceDate.IsZero() {
		facts.ReferenceDate = result.ReferenceDate.Format(table.DateLayout)
	}
	if result.State != nil {
		for _, s := range result.State.OrderedSteps() {
			facts.Stages = append(facts.Stages, domain.StageFact{
				ID:         s.ID,
				Name:       s.Name,
				Status:     string(s.GetStatus()),
				DurationMS: float64(s.Duration().Microseconds()) / 1000,
				Stats:      s.MetadataSnapshot(),
			})
		}
	}
	return facts
}

func featureTypes(t *table.Table) map[string]int {
	out := make(map[string]int)
	for typ, n := range t.TypeCounts() {
		out[typ.String()] = n
	}
	return out
}
