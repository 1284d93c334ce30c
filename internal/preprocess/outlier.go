package preprocess

import (
	"context"
	"log/slog"
	"math"

	"startupeda/internal/config"
	"startupeda/internal/operations"
	"startupeda/internal/stats"
	"startupeda/internal/table"
)

// OutlierFlagger marks rows where any monitored column lies more than
// threshold standard deviations from that column's mean. Flags from all
// columns are ORed into one Boolean column. A column whose deviation is zero
// or undefined contributes no flags; null cells never flag.
type OutlierFlagger struct {
	operations.BaseStep
	columns   []string
	threshold float64
	ddof      int
	output    string
	logger    *slog.Logger
}

// ColumnBounds records the statistics one monitored column was judged by
type ColumnBounds struct {
	Mean    float64
	Std     float64
	Flagged int
	Skipped bool
}

// OutlierResult summarises one flagging pass
type OutlierResult struct {
	Flagged int
	Columns map[string]ColumnBounds
}

// NewOutlierFlagger creates a flagging stage. deviation is
// config.DeviationSample or config.DeviationPopulation.
func NewOutlierFlagger(id string, columns []string, threshold float64, deviation string, logger *slog.Logger) *OutlierFlagger {
	if logger == nil {
		logger = slog.Default()
	}
	ddof := stats.Sample
	if deviation == config.DeviationPopulation {
		ddof = stats.Population
	}
	return &OutlierFlagger{
		BaseStep:  operations.NewBaseStep(id, "Outlier Flagging"),
		columns:   append([]string(nil), columns...),
		threshold: threshold,
		ddof:      ddof,
		output:    config.OutlierColumn,
		logger:    logger,
	}
}

func (o *OutlierFlagger) RequiredInputs() []operations.Requirement {
	reqs := make([]operations.Requirement, len(o.columns))
	for i, c := range o.columns {
		reqs[i] = operations.Require(c, table.Numeric)
	}
	return reqs
}

func (o *OutlierFlagger) ProducedOutputs() []operations.Output {
	return []operations.Output{operations.Produce(o.output, table.Boolean)}
}

// Flag returns in with the indicator column added
func (o *OutlierFlagger) Flag(in *table.Table) (*table.Table, OutlierResult, error) {
	result := OutlierResult{Columns: make(map[string]ColumnBounds, len(o.columns))}
	flags := make([]bool, in.NumRows())

	for _, name := range o.columns {
		col, err := in.Require(name, table.Numeric)
		if err != nil {
			return nil, result, err
		}
		observed := col.ObservedFloats()
		bounds := ColumnBounds{
			Mean: stats.Mean(observed),
			Std:  stats.Std(observed, o.ddof),
		}
		if math.IsNaN(bounds.Std) || bounds.Std == 0 {
			bounds.Skipped = true
			result.Columns[name] = bounds
			continue
		}

		limit := o.threshold * bounds.Std
		for i := range flags {
			v, ok := col.Float(i)
			if ok && math.Abs(v-bounds.Mean) > limit {
				flags[i] = true
				bounds.Flagged++
			}
		}
		result.Columns[name] = bounds
	}

	for _, f := range flags {
		if f {
			result.Flagged++
		}
	}
	out, err := in.WithColumn(table.NewBoolean(o.output, flags, nil))
	if err != nil {
		return nil, result, err
	}
	return out, result, nil
}

// Execute implements operations.Step
func (o *OutlierFlagger) Execute(ctx context.Context, state *operations.OperationState, in *table.Table) (*table.Table, error) {
	out, result, err := o.Flag(in)
	if err != nil {
		return nil, err
	}
	for _, name := range o.columns {
		b := result.Columns[name]
		if b.Skipped {
			o.logger.WarnContext(ctx, "Skipping outlier column with degenerate deviation",
				slog.String("column", name))
			continue
		}
		o.logger.DebugContext(ctx, "Outlier column bounds",
			slog.String("column", name),
			slog.Float64("mean", b.Mean),
			slog.Float64("std", b.Std),
			slog.Int("flagged", b.Flagged))
	}
	state.SetContext(operations.ContextKeyOutlierCount, result.Flagged)
	state.RecordStepMetadata(o.ID(), operations.MetadataRowsTouched, result.Flagged)
	state.RecordStepMetadata(o.ID(), "threshold", o.threshold)
	return out, nil
}
