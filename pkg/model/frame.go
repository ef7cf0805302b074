// pkg/model/frame.go
package model

import (
	"errors"
	"fmt"

	"github.com/go-gota/gota/dataframe"
)

var (
	// ErrColumnNotFound is returned when a referenced column does not exist
	ErrColumnNotFound = errors.New("column not found")
	// ErrColumnKind is returned when a column has the wrong storage type
	ErrColumnKind = errors.New("unexpected column kind")
	// ErrLengthMismatch is returned when a column length differs from the frame
	ErrLengthMismatch = errors.New("column length mismatch")
	// ErrNullValue is returned when a null row is read as a non-nullable value
	ErrNullValue = errors.New("null value")
)

// Frame is an in-memory table backed by a gota DataFrame. All columns have
// the same length; row order is preserved across every operation. The row
// index is held beside the DataFrame, not inside it.
type Frame struct {
	df    dataframe.DataFrame
	kinds map[string]Kind
	rows  int

	index *Column
}

// NewFrame creates a frame from the given columns
func NewFrame(columns ...*Column) (*Frame, error) {
	f := &Frame{kinds: make(map[string]Kind, len(columns)), rows: -1}
	for _, col := range columns {
		if err := f.Set(col); err != nil {
			return nil, err
		}
	}
	if f.rows < 0 {
		f.rows = 0
	}
	return f, nil
}

// FromDataFrame wraps a loaded DataFrame. Kinds follow the series types.
func FromDataFrame(df dataframe.DataFrame) (*Frame, error) {
	if df.Err != nil {
		return nil, df.Err
	}
	f := &Frame{
		df:    df,
		kinds: make(map[string]Kind, df.Ncol()),
		rows:  df.Nrow(),
	}
	for i, t := range df.Types() {
		f.kinds[df.Names()[i]] = kindOf(t)
	}
	return f, nil
}

// DataFrame returns a copy of the backing DataFrame, without the index.
// Timestamp columns appear as RFC 3339 strings.
func (f *Frame) DataFrame() dataframe.DataFrame {
	return copyDataFrame(f.df)
}

// Len returns the number of rows
func (f *Frame) Len() int {
	return f.rows
}

// Names returns the column names in order. The index is not included.
func (f *Frame) Names() []string {
	if f.df.Ncol() == 0 {
		return []string{}
	}
	return f.df.Names()
}

// Has reports whether a column exists
func (f *Frame) Has(name string) bool {
	_, ok := f.kinds[name]
	return ok
}

// Column returns a copy of a column by name
func (f *Frame) Column(name string) (*Column, error) {
	kind, ok := f.kinds[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	s := f.df.Col(name)
	if s.Err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrColumnNotFound, name, s.Err)
	}
	return newColumn(name, kind, s), nil
}

// Columns returns copies of the columns in order
func (f *Frame) Columns() []*Column {
	names := f.Names()
	out := make([]*Column, 0, len(names))
	for _, name := range names {
		col, err := f.Column(name)
		if err != nil {
			continue
		}
		out = append(out, col)
	}
	return out
}

// Set adds a column, or replaces an existing column of the same name in place
func (f *Frame) Set(col *Column) error {
	if col == nil {
		return errors.New("column cannot be nil")
	}
	n := col.Len()
	if f.rows >= 0 && (f.df.Ncol() > 0 || f.index != nil) && n != f.rows {
		return fmt.Errorf("%w: column %q has %d rows, frame has %d", ErrLengthMismatch, col.Name, n, f.rows)
	}

	s := col.Series()
	s.Name = col.Name
	var df dataframe.DataFrame
	if f.df.Ncol() == 0 {
		df = dataframe.New(s)
	} else {
		df = f.df.Mutate(s)
	}
	if df.Err != nil {
		return fmt.Errorf("failed to set column %q: %w", col.Name, df.Err)
	}

	f.df = df
	f.kinds[col.Name] = col.Kind
	f.rows = n
	return nil
}

// Drop removes the named columns. Every name must exist; on error the frame is unchanged.
func (f *Frame) Drop(names ...string) error {
	drop := make(map[string]bool, len(names))
	for _, name := range names {
		if !f.Has(name) {
			return fmt.Errorf("%w: %q", ErrColumnNotFound, name)
		}
		drop[name] = true
	}
	if len(drop) == 0 {
		return nil
	}

	var df dataframe.DataFrame
	if len(drop) < f.df.Ncol() {
		df = f.df.Drop(names)
		if df.Err != nil {
			return fmt.Errorf("failed to drop columns: %w", df.Err)
		}
	}

	f.df = df
	for name := range drop {
		delete(f.kinds, name)
	}
	return nil
}

// SetIndex moves the named column out of the regular columns and into the row index.
// Duplicate keys are allowed.
func (f *Frame) SetIndex(name string) error {
	col, err := f.Column(name)
	if err != nil {
		return err
	}
	if err := f.Drop(name); err != nil {
		return err
	}
	f.index = col
	return nil
}

// Index returns the row index column, or nil if none has been set
func (f *Frame) Index() *Column {
	return f.index
}

// Clone returns a deep copy of the frame
func (f *Frame) Clone() *Frame {
	out := &Frame{
		df:    copyDataFrame(f.df),
		kinds: make(map[string]Kind, len(f.kinds)),
		rows:  f.rows,
	}
	for name, kind := range f.kinds {
		out.kinds[name] = kind
	}
	if f.index != nil {
		out.index = f.index.Clone()
	}
	return out
}

// copyDataFrame copies df; gota refuses to build a DataFrame with no columns
func copyDataFrame(df dataframe.DataFrame) dataframe.DataFrame {
	if df.Ncol() == 0 {
		return dataframe.DataFrame{}
	}
	return df.Copy()
}
