// pkg/model/column.go
package model

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/go-gota/gota/series"
)

// Kind identifies the storage type of a column
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindBool
	KindTime
)

// String returns a string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindTime:
		return "time"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// Numeric reports whether values of this kind can be read as float64
func (k Kind) Numeric() bool {
	return k == KindInt || k == KindFloat || k == KindBool
}

// seriesType maps a kind to its gota storage type. Timestamps are stored as
// RFC 3339 text so the zone offset survives.
func (k Kind) seriesType() series.Type {
	switch k {
	case KindInt:
		return series.Int
	case KindFloat:
		return series.Float
	case KindBool:
		return series.Bool
	default:
		return series.String
	}
}

func kindOf(t series.Type) Kind {
	switch t {
	case series.Int:
		return KindInt
	case series.Float:
		return KindFloat
	case series.Bool:
		return KindBool
	default:
		return KindString
	}
}

const timeLayout = time.RFC3339Nano

// Column is a named, typed view over a gota series
type Column struct {
	Name string
	Kind Kind

	s series.Series
}

func newColumn(name string, kind Kind, s series.Series) *Column {
	s.Name = name
	return &Column{Name: name, Kind: kind, s: s}
}

// NewStringColumn creates a string column
func NewStringColumn(name string, values []string) *Column {
	return newColumn(name, KindString, series.New(values, series.String, name))
}

// NewIntColumn creates an integer column
func NewIntColumn(name string, values []int64) *Column {
	ints := make([]int, len(values))
	for i, v := range values {
		ints[i] = int(v)
	}
	return newColumn(name, KindInt, series.New(ints, series.Int, name))
}

// NewNullableIntColumn creates an integer column where rows with valid[i]
// false hold no value
func NewNullableIntColumn(name string, values []int64, valid []bool) *Column {
	col := NewIntColumn(name, values)
	for i, ok := range valid {
		if !ok {
			col.s.Elem(i).Set("NaN")
		}
	}
	return col
}

// NewFloatColumn creates a float column
func NewFloatColumn(name string, values []float64) *Column {
	return newColumn(name, KindFloat, series.New(values, series.Float, name))
}

// NewBoolColumn creates a boolean column
func NewBoolColumn(name string, values []bool) *Column {
	return newColumn(name, KindBool, series.New(values, series.Bool, name))
}

// NewTimeColumn creates a timestamp column
func NewTimeColumn(name string, values []time.Time) *Column {
	text := make([]string, len(values))
	for i, v := range values {
		text[i] = v.Format(timeLayout)
	}
	return newColumn(name, KindTime, series.New(text, series.String, name))
}

// Series returns a copy of the backing series
func (c *Column) Series() series.Series {
	return c.s.Copy()
}

// Len returns the number of values in the column
func (c *Column) Len() int {
	return c.s.Len()
}

// IsNull reports whether row i holds no value. NaN floats count as null.
func (c *Column) IsNull(i int) bool {
	e := c.s.Elem(i)
	if e.IsNA() {
		return true
	}
	return c.Kind == KindFloat && math.IsNaN(e.Float())
}

func (c *Column) kindError(want Kind) error {
	return fmt.Errorf("%w: column %q is %s, want %s", ErrColumnKind, c.Name, c.Kind, want)
}

// Strings returns the values of a string column. Null rows read as "".
func (c *Column) Strings() ([]string, error) {
	if c.Kind != KindString {
		return nil, c.kindError(KindString)
	}
	out := make([]string, c.s.Len())
	for i := range out {
		if e := c.s.Elem(i); !e.IsNA() {
			out[i] = e.String()
		}
	}
	return out, nil
}

// Ints returns the values of an integer column. It fails with ErrNullValue
// if any row is null.
func (c *Column) Ints() ([]int64, error) {
	if c.Kind != KindInt {
		return nil, c.kindError(KindInt)
	}
	ints, err := c.s.Int()
	if err != nil {
		return nil, fmt.Errorf("%w: column %q: %v", ErrNullValue, c.Name, err)
	}
	out := make([]int64, len(ints))
	for i, v := range ints {
		out[i] = int64(v)
	}
	return out, nil
}

// Bools returns the values of a boolean column
func (c *Column) Bools() ([]bool, error) {
	if c.Kind != KindBool {
		return nil, c.kindError(KindBool)
	}
	bools, err := c.s.Bool()
	if err != nil {
		return nil, fmt.Errorf("%w: column %q: %v", ErrNullValue, c.Name, err)
	}
	return bools, nil
}

// Times returns the values of a timestamp column
func (c *Column) Times() ([]time.Time, error) {
	if c.Kind != KindTime {
		return nil, c.kindError(KindTime)
	}
	out := make([]time.Time, c.s.Len())
	for i := range out {
		t, err := time.Parse(timeLayout, c.s.Elem(i).String())
		if err != nil {
			return nil, fmt.Errorf("column %q row %d: %w", c.Name, i, err)
		}
		out[i] = t
	}
	return out, nil
}

// Floats returns the column as float64 values in a new slice. Int and bool
// columns are converted; null rows read as NaN.
func (c *Column) Floats() ([]float64, error) {
	if !c.Kind.Numeric() {
		return nil, fmt.Errorf("%w: column %q is %s, want numeric", ErrColumnKind, c.Name, c.Kind)
	}
	return c.s.Float(), nil
}

// Key returns a grouping key for row i, valid for every kind. Null rows
// return "", which callers treat as a missing key.
func (c *Column) Key(i int) string {
	if c.IsNull(i) {
		return ""
	}
	e := c.s.Elem(i)
	switch c.Kind {
	case KindInt:
		v, _ := e.Int()
		return strconv.Itoa(v)
	case KindFloat:
		return strconv.FormatFloat(e.Float(), 'g', -1, 64)
	case KindBool:
		v, _ := e.Bool()
		return strconv.FormatBool(v)
	default:
		return e.String()
	}
}

// Value returns row i as an interface value, suitable for database/sql
// arguments. Null rows return nil, except float NaN which is kept.
func (c *Column) Value(i int) interface{} {
	e := c.s.Elem(i)
	if c.Kind == KindFloat {
		return e.Float()
	}
	if e.IsNA() {
		return nil
	}
	switch c.Kind {
	case KindInt:
		v, _ := e.Int()
		return int64(v)
	case KindBool:
		v, _ := e.Bool()
		return v
	case KindTime:
		t, err := time.Parse(timeLayout, e.String())
		if err != nil {
			return nil
		}
		return t
	default:
		return e.String()
	}
}

// Clone returns a deep copy of the column
func (c *Column) Clone() *Column {
	return newColumn(c.Name, c.Kind, c.s.Copy())
}

// Renamed returns a copy of the column under a new name
func (c *Column) Renamed(name string) *Column {
	return newColumn(name, c.Kind, c.s.Copy())
}
