package table

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// ColumnType is the declared type of a column. Stages check it before they
// read a column instead of inspecting cell values.
type ColumnType int

const (
	Numeric ColumnType = iota
	Categorical
	Date
	Boolean
)

// String returns the lower-case name of the type
func (t ColumnType) String() string {
	switch t {
	case Numeric:
		return "numeric"
	case Categorical:
		return "categorical"
	case Date:
		return "date"
	case Boolean:
		return "boolean"
	default:
		return fmt.Sprintf("ColumnType(%d)", int(t))
	}
}

// DateLayout is the layout dates are rendered with on export
const DateLayout = "2006-01-02"

// Column is an immutable, typed column. Exactly one of the value slices is
// populated, matching the declared type; nulls[i] marks row i as missing.
// Builders copy their inputs so tables may share columns freely.
type Column struct {
	name           string
	typ            ColumnType
	nulls          []bool
	nums           []float64
	strs           []string
	dates          []time.Time
	bools          []bool
	missingMeaning string
}

// NewNumeric builds a numeric column. A nil nulls slice means no nulls;
// NaN values are treated as null.
func NewNumeric(name string, values []float64, nulls []bool) *Column {
	c := &Column{name: name, typ: Numeric, nums: append([]float64(nil), values...)}
	c.nulls = buildNulls(len(values), nulls)
	for i, v := range c.nums {
		if math.IsNaN(v) {
			c.nulls[i] = true
		}
		if c.nulls[i] {
			c.nums[i] = math.NaN()
		}
	}
	return c
}

// NewCategorical builds a text column
func NewCategorical(name string, values []string, nulls []bool) *Column {
	c := &Column{name: name, typ: Categorical, strs: append([]string(nil), values...)}
	c.nulls = buildNulls(len(values), nulls)
	for i := range c.strs {
		if c.nulls[i] {
			c.strs[i] = ""
		}
	}
	return c
}

// NewDate builds a date column
func NewDate(name string, values []time.Time, nulls []bool) *Column {
	c := &Column{name: name, typ: Date, dates: append([]time.Time(nil), values...)}
	c.nulls = buildNulls(len(values), nulls)
	for i := range c.dates {
		if c.nulls[i] {
			c.dates[i] = time.Time{}
		}
	}
	return c
}

// NewBoolean builds a boolean column
func NewBoolean(name string, values []bool, nulls []bool) *Column {
	c := &Column{name: name, typ: Boolean, bools: append([]bool(nil), values...)}
	c.nulls = buildNulls(len(values), nulls)
	for i := range c.bools {
		if c.nulls[i] {
			c.bools[i] = false
		}
	}
	return c
}

func buildNulls(n int, nulls []bool) []bool {
	out := make([]bool, n)
	copy(out, nulls)
	return out
}

func (c *Column) Name() string     { return c.name }
func (c *Column) Type() ColumnType { return c.typ }
func (c *Column) Len() int         { return len(c.nulls) }

// MissingMeaning describes what a null cell stands for, e.g. "still_active".
// Empty means nulls are plain unknowns.
func (c *Column) MissingMeaning() string { return c.missingMeaning }

// IsNull reports whether row i is missing
func (c *Column) IsNull(i int) bool { return c.nulls[i] }

// NullCount returns the number of missing rows
func (c *Column) NullCount() int {
	n := 0
	for _, null := range c.nulls {
		if null {
			n++
		}
	}
	return n
}

// Float returns the numeric value at row i; ok is false for nulls or
// non-numeric columns.
func (c *Column) Float(i int) (float64, bool) {
	if c.typ != Numeric || c.nulls[i] {
		return math.NaN(), false
	}
	return c.nums[i], true
}

// Text returns the categorical value at row i
func (c *Column) Text(i int) (string, bool) {
	if c.typ != Categorical || c.nulls[i] {
		return "", false
	}
	return c.strs[i], true
}

// Time returns the date value at row i
func (c *Column) Time(i int) (time.Time, bool) {
	if c.typ != Date || c.nulls[i] {
		return time.Time{}, false
	}
	return c.dates[i], true
}

// Bool returns the boolean value at row i
func (c *Column) Bool(i int) (bool, bool) {
	if c.typ != Boolean || c.nulls[i] {
		return false, false
	}
	return c.bools[i], true
}

// Floats returns a copy of the numeric values with NaN for nulls
func (c *Column) Floats() []float64 {
	return append([]float64(nil), c.nums...)
}

// Texts returns a copy of the categorical values, "" for nulls
func (c *Column) Texts() []string {
	return append([]string(nil), c.strs...)
}

// Bools returns a copy of the boolean values, false for nulls
func (c *Column) Bools() []bool {
	return append([]bool(nil), c.bools...)
}

// Nulls returns a copy of the null mask
func (c *Column) Nulls() []bool {
	return append([]bool(nil), c.nulls...)
}

// ObservedFloats returns the non-null numeric values in row order
func (c *Column) ObservedFloats() []float64 {
	if c.typ != Numeric {
		return nil
	}
	out := make([]float64, 0, len(c.nums))
	for i, v := range c.nums {
		if !c.nulls[i] {
			out = append(out, v)
		}
	}
	return out
}

// WithMissingMeaning returns a copy of the column annotated with meaning
func (c *Column) WithMissingMeaning(meaning string) *Column {
	out := c.clone()
	out.missingMeaning = meaning
	return out
}

// Take returns a new column whose row i is row perm[i] of c
func (c *Column) Take(perm []int) *Column {
	out := &Column{name: c.name, typ: c.typ, missingMeaning: c.missingMeaning}
	out.nulls = make([]bool, len(perm))
	for i, p := range perm {
		out.nulls[i] = c.nulls[p]
	}
	switch c.typ {
	case Numeric:
		out.nums = make([]float64, len(perm))
		for i, p := range perm {
			out.nums[i] = c.nums[p]
		}
	case Categorical:
		out.strs = make([]string, len(perm))
		for i, p := range perm {
			out.strs[i] = c.strs[p]
		}
	case Date:
		out.dates = make([]time.Time, len(perm))
		for i, p := range perm {
			out.dates[i] = c.dates[p]
		}
	case Boolean:
		out.bools = make([]bool, len(perm))
		for i, p := range perm {
			out.bools[i] = c.bools[p]
		}
	}
	return out
}

// Format renders row i for export: shortest round-trip numbers, 1/0 for
// booleans, DateLayout for dates and "" for nulls.
func (c *Column) Format(i int) string {
	if c.nulls[i] {
		return ""
	}
	switch c.typ {
	case Numeric:
		return strconv.FormatFloat(c.nums[i], 'f', -1, 64)
	case Categorical:
		return c.strs[i]
	case Date:
		return c.dates[i].Format(DateLayout)
	case Boolean:
		if c.bools[i] {
			return "1"
		}
		return "0"
	}
	return ""
}

// Equal reports whether two columns have the same name, type, annotation
// and cells.
func (c *Column) Equal(o *Column) bool {
	if c.name != o.name || c.typ != o.typ || c.missingMeaning != o.missingMeaning || c.Len() != o.Len() {
		return false
	}
	for i := range c.nulls {
		if c.nulls[i] != o.nulls[i] {
			return false
		}
		if c.nulls[i] {
			continue
		}
		switch c.typ {
		case Numeric:
			if c.nums[i] != o.nums[i] {
				return false
			}
		case Categorical:
			if c.strs[i] != o.strs[i] {
				return false
			}
		case Date:
			if !c.dates[i].Equal(o.dates[i]) {
				return false
			}
		case Boolean:
			if c.bools[i] != o.bools[i] {
				return false
			}
		}
	}
	return true
}

func (c *Column) clone() *Column {
	return &Column{
		name:           c.name,
		typ:            c.typ,
		nulls:          append([]bool(nil), c.nulls...),
		nums:           append([]float64(nil), c.nums...),
		strs:           append([]string(nil), c.strs...),
		dates:          append([]time.Time(nil), c.dates...),
		bools:          append([]bool(nil), c.bools...),
		missingMeaning: c.missingMeaning,
	}
}
