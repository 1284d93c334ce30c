package preprocess

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"startupeda/internal/config"
	apperrors "startupeda/internal/errors"
	"startupeda/internal/operations"
	"startupeda/internal/table"
)

// DateLayouts are tried in order when parsing a date cell
var DateLayouts = []string{
	"2006-01-02",
	"1/2/2006",
	"01/02/2006",
	"2006-01-02 15:04:05",
	"2006/01/02",
	time.RFC3339,
}

const day = 24 * time.Hour

// DateParser converts text columns to Date columns. A non-null cell that
// matches no layout fails the stage; nulls stay null.
type DateParser struct {
	operations.BaseStep
	columns []string
	logger  *slog.Logger
}

// NewDateParser creates a date parsing stage
func NewDateParser(id string, columns []string, logger *slog.Logger) *DateParser {
	if logger == nil {
		logger = slog.Default()
	}
	return &DateParser{
		BaseStep: operations.NewBaseStep(id, "Date Parsing"),
		columns:  append([]string(nil), columns...),
		logger:   logger,
	}
}

// RequiredInputs accepts numeric columns too: a column with no values at
// all loads as numeric.
func (d *DateParser) RequiredInputs() []operations.Requirement {
	reqs := make([]operations.Requirement, len(d.columns))
	for i, c := range d.columns {
		reqs[i] = operations.Require(c, table.Categorical, table.Date, table.Numeric)
	}
	return reqs
}

func (d *DateParser) ProducedOutputs() []operations.Output {
	outs := make([]operations.Output, len(d.columns))
	for i, c := range d.columns {
		outs[i] = operations.Produce(c, table.Date)
	}
	return outs
}

// Parse returns in with every configured column converted to Date
func (d *DateParser) Parse(ctx context.Context, in *table.Table) (*table.Table, int, error) {
	out := in
	parsed := 0
	for _, name := range d.columns {
		if err := ctx.Err(); err != nil {
			return nil, parsed, err
		}
		col, err := out.Require(name, table.Categorical, table.Date, table.Numeric)
		if err != nil {
			return nil, parsed, err
		}
		converted, n, err := parseDateColumn(col)
		if err != nil {
			return nil, parsed, err
		}
		if out, err = out.WithColumn(converted); err != nil {
			return nil, parsed, err
		}
		parsed += n
	}
	return out, parsed, nil
}

func parseDateColumn(col *table.Column) (*table.Column, int, error) {
	switch col.Type() {
	case table.Date:
		return col, 0, nil
	case table.Numeric:
		if col.NullCount() != col.Len() {
			return nil, 0, apperrors.NewTypeError(col.Name(), "date", col.Type().String())
		}
		return table.NewDate(col.Name(), make([]time.Time, col.Len()), col.Nulls()).
			WithMissingMeaning(col.MissingMeaning()), 0, nil
	}

	values := make([]time.Time, col.Len())
	nulls := col.Nulls()
	parsed := 0
	for i := range values {
		text, ok := col.Text(i)
		if !ok {
			continue
		}
		t, err := ParseDate(text)
		if err != nil {
			return nil, 0, apperrors.NewDateParseError(col.Name(), i, text)
		}
		values[i] = t
		parsed++
	}
	return table.NewDate(col.Name(), values, nulls).WithMissingMeaning(col.MissingMeaning()), parsed, nil
}

// ParseDate parses s with the first matching layout in DateLayouts. The
// result is truncated to midnight UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			y, m, dd := t.Date()
			return time.Date(y, m, dd, 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

// Execute implements operations.Step
func (d *DateParser) Execute(ctx context.Context, state *operations.OperationState, in *table.Table) (*table.Table, error) {
	out, parsed, err := d.Parse(ctx, in)
	if err != nil {
		return nil, err
	}
	state.RecordStepMetadata(d.ID(), "cells_parsed", parsed)
	return out, nil
}

// DateNormalizer replaces date columns with whole-day offsets from the
// earliest date found in any of them. The derived columns are appended as
// "<column>_days" and the originals removed.
type DateNormalizer struct {
	operations.BaseStep
	columns []string
	logger  *slog.Logger
}

// NewDateNormalizer creates a date normalisation stage
func NewDateNormalizer(id string, columns []string, logger *slog.Logger) *DateNormalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &DateNormalizer{
		BaseStep: operations.NewBaseStep(id, "Date Normalization"),
		columns:  append([]string(nil), columns...),
		logger:   logger,
	}
}

func (n *DateNormalizer) RequiredInputs() []operations.Requirement {
	reqs := make([]operations.Requirement, len(n.columns))
	for i, c := range n.columns {
		reqs[i] = operations.Require(c, table.Date)
	}
	return reqs
}

func (n *DateNormalizer) ProducedOutputs() []operations.Output {
	outs := make([]operations.Output, len(n.columns))
	for i, c := range n.columns {
		outs[i] = operations.Produce(DaysColumn(c), table.Numeric)
	}
	return outs
}

// DaysColumn names the offset column derived from a date column
func DaysColumn(column string) string {
	return column + config.DaysSuffix
}

// Normalize returns the table with offsets in place of dates, and the
// reference date. With no columns configured it returns in unchanged and a
// zero reference.
func (n *DateNormalizer) Normalize(in *table.Table) (*table.Table, time.Time, error) {
	if len(n.columns) == 0 {
		return in, time.Time{}, nil
	}

	cols := make([]*table.Column, len(n.columns))
	var ref time.Time
	found := false
	for i, name := range n.columns {
		col, err := in.Require(name, table.Date)
		if err != nil {
			return nil, time.Time{}, err
		}
		cols[i] = col
		for r := 0; r < col.Len(); r++ {
			if t, ok := col.Time(r); ok && (!found || t.Before(ref)) {
				ref = t
				found = true
			}
		}
	}
	if !found {
		return nil, time.Time{}, apperrors.NewValidationError("date columns hold no values to take a reference date from").
			WithContext("columns", strings.Join(n.columns, ","))
	}

	out := in
	for _, col := range cols {
		offsets := make([]float64, col.Len())
		for r := range offsets {
			if t, ok := col.Time(r); ok {
				offsets[r] = math.Floor(float64(t.Sub(ref)) / float64(day))
			}
		}
		var err error
		if out, err = out.WithColumn(table.NewNumeric(DaysColumn(col.Name()), offsets, col.Nulls())); err != nil {
			return nil, time.Time{}, err
		}
	}
	out, err := out.Drop(n.columns...)
	if err != nil {
		return nil, time.Time{}, err
	}
	return out, ref, nil
}

// Execute implements operations.Step
func (n *DateNormalizer) Execute(ctx context.Context, state *operations.OperationState, in *table.Table) (*table.Table, error) {
	out, ref, err := n.Normalize(in)
	if err != nil {
		return nil, err
	}
	if !ref.IsZero() {
		state.SetContext(operations.ContextKeyReferenceDate, ref)
		n.logger.InfoContext(ctx, "Normalized date columns",
			slog.String("reference_date", ref.Format(table.DateLayout)),
			slog.Int("columns", len(n.columns)))
	}
	return out, nil
}

// YearExtractor derives a categorical "YYYY" column from a date column
type YearExtractor struct {
	operations.BaseStep
	source string
	target string
}

// NewYearExtractor creates a year extraction stage
func NewYearExtractor(id, source, target string) *YearExtractor {
	return &YearExtractor{
		BaseStep: operations.NewBaseStep(id, "Year Extraction"),
		source:   source,
		target:   target,
	}
}

func (y *YearExtractor) RequiredInputs() []operations.Requirement {
	return []operations.Requirement{operations.Require(y.source, table.Date)}
}

func (y *YearExtractor) ProducedOutputs() []operations.Output {
	return []operations.Output{operations.Produce(y.target, table.Categorical)}
}

// Extract returns in with the year column added or replaced
func (y *YearExtractor) Extract(in *table.Table) (*table.Table, error) {
	col, err := in.Require(y.source, table.Date)
	if err != nil {
		return nil, err
	}
	years := make([]string, col.Len())
	for i := range years {
		if t, ok := col.Time(i); ok {
			years[i] = fmt.Sprintf("%04d", t.Year())
		}
	}
	return in.WithColumn(table.NewCategorical(y.target, years, col.Nulls()))
}

// Execute implements operations.Step
func (y *YearExtractor) Execute(_ context.Context, state *operations.OperationState, in *table.Table) (*table.Table, error) {
	out, err := y.Extract(in)
	if err != nil {
		return nil, err
	}
	col, _ := out.Column(y.target)
	state.RecordStepMetadata(y.ID(), operations.MetadataRowsTouched, col.Len()-col.NullCount())
	return out, nil
}
