package preprocess

import (
	"context"
	"log/slog"
	"time"

	"startupeda/internal/config"
	"startupeda/internal/infrastructure"
	"startupeda/internal/operations"
	"startupeda/internal/table"
	"startupeda/pkg/contracts/domain"
)

// Stage identifiers, in execution order
const (
	StageDrop           = "drop_columns"
	StageImpute         = "impute"
	StageParseDates     = "parse_dates"
	StageSignNormalize  = "sign_normalize"
	StageFlagOutliers   = "flag_outliers"
	StageSortRows       = "sort_rows"
	StageDropAfterSort  = "drop_after_sort"
	StageExtractYear    = "extract_year"
	StageEncode         = "encode_categoricals"
	StageNormalizeDates = "normalize_dates"
)

// Pipeline runs the preprocessing stages over one table
type Pipeline struct {
	runner *operations.Runner
	logger *slog.Logger
}

// Result is the output of one run
type Result struct {
	Table              *table.Table
	Mappings           domain.Mappings
	ReferenceDate      time.Time
	OutlierCount       int
	NegativesCorrected int
	StillActive        int
	ImputedValues      map[string]float64
	State              *operations.OperationState
}

// Build wires the stages described by cfg. Stages whose column lists are
// empty are left out.
func Build(cfg config.PipelineConfig, tel *infrastructure.Telemetry, logger *slog.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = infrastructure.WithComponent(logger, "preprocess")

	var steps []operations.Step
	if len(cfg.DropColumns) > 0 {
		steps = append(steps, NewColumnPruner(StageDrop, cfg.DropColumns, cfg.Tolerant, logger))
	}
	if len(cfg.ImputeColumns) > 0 || len(cfg.KeepMissingColumns) > 0 {
		keep := make(map[string]string, len(cfg.KeepMissingColumns))
		for _, c := range cfg.KeepMissingColumns {
			keep[c] = config.MissingMeaningStillActive
		}
		steps = append(steps, NewMeanImputer(StageImpute, cfg.ImputeColumns, keep, logger))
	}
	if len(cfg.ParseDateColumns) > 0 {
		steps = append(steps, NewDateParser(StageParseDates, cfg.ParseDateColumns, logger))
	}
	if len(cfg.AbsColumns) > 0 {
		steps = append(steps, NewSignNormalizer(StageSignNormalize, cfg.AbsColumns))
	}
	if len(cfg.OutlierColumns) > 0 {
		steps = append(steps, NewOutlierFlagger(StageFlagOutliers, cfg.OutlierColumns,
			cfg.OutlierThreshold, cfg.OutlierDeviation, logger))
	}
	if cfg.SortColumn != "" {
		steps = append(steps, NewRowSorter(StageSortRows, cfg.SortColumn))
	}
	if len(cfg.DropAfterSortColumns) > 0 {
		steps = append(steps, NewColumnPruner(StageDropAfterSort, cfg.DropAfterSortColumns, cfg.Tolerant, logger))
	}
	if cfg.YearSourceColumn != "" {
		steps = append(steps, NewYearExtractor(StageExtractYear, cfg.YearSourceColumn, cfg.YearColumn))
	}
	if len(cfg.CategoricalColumns) > 0 {
		steps = append(steps, NewCategoricalEncoder(StageEncode, cfg.CategoricalColumns, logger))
	}
	if len(cfg.NormalizeDateColumns) > 0 {
		steps = append(steps, NewDateNormalizer(StageNormalizeDates, cfg.NormalizeDateColumns, logger))
	}

	registry := operations.NewRegistry()
	for _, step := range steps {
		if err := registry.Register(step); err != nil {
			return nil, err
		}
	}

	return &Pipeline{
		runner: operations.NewRunner(registry, operations.NewRunTracer(tel), logger),
		logger: logger,
	}, nil
}

// StageIDs lists the wired stages in execution order
func (p *Pipeline) StageIDs() []string {
	return p.runner.Registry().ListIDs()
}

// Run executes every stage over in. The returned State is set on failure
// too; Result is nil then.
func (p *Pipeline) Run(ctx context.Context, in *table.Table) (*Result, *operations.OperationState, error) {
	out, state, err := p.runner.Run(ctx, in)
	if err != nil {
		return nil, state, err
	}

	result := &Result{Table: out, State: state}
	if v, ok := state.GetContext(operations.ContextKeyMappings); ok {
		result.Mappings, _ = v.(domain.Mappings)
	}
	if v, ok := state.GetContext(operations.ContextKeyReferenceDate); ok {
		result.ReferenceDate, _ = v.(time.Time)
	}
	if v, ok := state.GetContext(operations.ContextKeyOutlierCount); ok {
		result.OutlierCount, _ = v.(int)
	}
	if v, ok := state.GetContext(operations.ContextKeyNegativesCorrected); ok {
		result.NegativesCorrected, _ = v.(int)
	}
	if v, ok := state.GetContext(operations.ContextKeyStillActive); ok {
		result.StillActive, _ = v.(int)
	}
	if v, ok := state.GetContext(operations.ContextKeyImputedValues); ok {
		result.ImputedValues, _ = v.(map[string]float64)
	}
	return result, state, nil
}

// StageStats returns the metadata each completed stage recorded, keyed by
// stage ID.
func (r *Result) StageStats() map[string]map[string]interface{} {
	out := make(map[string]map[string]interface{})
	for _, s := range r.State.OrderedSteps() {
		out[s.ID] = s.MetadataSnapshot()
	}
	return out
}
