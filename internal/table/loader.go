package table

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cast"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	apperrors "startupeda/internal/errors"
)

// Supported input encodings
const (
	EncodingLatin1 = "latin1"
	EncodingUTF8   = "utf-8"
)

// DefaultNullTokens are the cell values read as missing
var DefaultNullTokens = []string{"", "NA", "N/A", "NaN", "nan", "null", "NULL"}

// LoadOptions controls how a delimited file becomes a Table
type LoadOptions struct {
	Encoding   string   // EncodingLatin1 (default) or EncodingUTF8
	NullTokens []string // defaults to DefaultNullTokens
	Logger     *slog.Logger
}

// LoadCSV opens path and reads it with ReadCSV
func LoadCSV(ctx context.Context, path string, opts LoadOptions) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to open input file", err).
			WithContext("path", path)
	}
	defer f.Close()

	t, err := ReadCSV(ctx, f, opts)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "Loaded input table",
		slog.String("path", path),
		slog.Int("rows", t.NumRows()),
		slog.Int("columns", t.NumColumns()))
	return t, nil
}

// ReadCSV decodes comma separated records from r. The first record is the
// header; empty header cells become "Unnamed: <i>" and repeated names get a
// ".1", ".2", ... suffix. Columns whose non-null cells all parse as numbers
// are Numeric (so are all-null columns), every other column is Categorical.
func ReadCSV(ctx context.Context, r io.Reader, opts LoadOptions) (*Table, error) {
	decoded, err := decodeReader(r, opts.Encoding)
	if err != nil {
		return nil, err
	}

	nullTokens := opts.NullTokens
	if nullTokens == nil {
		nullTokens = DefaultNullTokens
	}
	isNull := make(map[string]bool, len(nullTokens))
	for _, tok := range nullTokens {
		isNull[tok] = true
	}

	reader := csv.NewReader(decoded)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, apperrors.NewParsingError("input has no header row", nil)
	}
	if err != nil {
		return nil, apperrors.NewParsingError("failed to read header", err)
	}
	names := normalizeHeader(header)

	cells := make([][]string, len(names))
	nulls := make([][]bool, len(names))
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, apperrors.NewParsingError("failed to read record", err).
				WithContext("line", line+1)
		}
		line++
		if line%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if len(record) > len(names) {
			return nil, apperrors.NewParsingError(
				fmt.Sprintf("record has %d fields, header has %d", len(record), len(names)), nil).
				WithContext("line", line)
		}
		for i := range names {
			var v string
			if i < len(record) {
				v = record[i]
			}
			cells[i] = append(cells[i], v)
			nulls[i] = append(nulls[i], isNull[v])
		}
	}

	columns := make([]*Column, len(names))
	for i, name := range names {
		columns[i] = inferColumn(name, cells[i], nulls[i])
	}
	return New(columns...)
}

func decodeReader(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(encoding) {
	case "", EncodingLatin1, "iso-8859-1":
		return charmap.ISO8859_1.NewDecoder().Reader(r), nil
	case EncodingUTF8, "utf8":
		// strips a leading byte order mark if present
		return transform.NewReader(r, unicode.UTF8BOM.NewDecoder()), nil
	default:
		return nil, apperrors.NewValidationError(fmt.Sprintf("unsupported encoding %q", encoding))
	}
}

func normalizeHeader(header []string) []string {
	names := make([]string, len(header))
	used := make(map[string]bool, len(header))
	for i, h := range header {
		name := h
		if strings.TrimSpace(name) == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if used[name] {
			base := name
			for n := 1; used[name]; n++ {
				name = fmt.Sprintf("%s.%d", base, n)
			}
		}
		used[name] = true
		names[i] = name
	}
	return names
}

func inferColumn(name string, cells []string, nulls []bool) *Column {
	values := make([]float64, len(cells))
	for i, cell := range cells {
		if nulls[i] {
			continue
		}
		v, ok := parseNumber(cell)
		if !ok {
			return NewCategorical(name, cells, nulls)
		}
		values[i] = v
	}
	// an all-null column reads as numeric, like a float column of NaN
	return NewNumeric(name, values, nulls)
}

// parseNumber reads a decimal number. Digit separators ("1_000") and hex
// literals stay text; "inf" and "Infinity" are numbers.
func parseNumber(cell string) (float64, bool) {
	s := strings.TrimSpace(cell)
	if strings.Contains(s, "_") {
		return 0, false
	}
	unsigned := strings.TrimLeft(s, "+-")
	if len(unsigned) > 1 && unsigned[0] == '0' && (unsigned[1] == 'x' || unsigned[1] == 'X') {
		return 0, false
	}
	v, err := cast.ToFloat64E(s)
	if err != nil {
		return 0, false
	}
	return v, true
}
