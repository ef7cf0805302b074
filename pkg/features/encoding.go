// pkg/features/encoding.go
package features

import (
	"sort"

	"github.com/suraphelalemu/Detection-of-Fraud/pkg/model"
)

// Encoding expands categorical columns into indicator columns, dropping the
// first (reference) level of each, then casts every bool column to float
type Encoding struct {
	Columns []string
}

// NewEncoding returns the indicator encoding step over source, browser and sex
func NewEncoding() Encoding {
	return Encoding{Columns: []string{model.ColSource, model.ColBrowser, model.ColSex}}
}

// Produces is empty since indicator names depend on the levels in the data.
func (s Encoding) Name() string       { return StageEncoding }
func (s Encoding) Requires() []string { return s.Columns }
func (s Encoding) Produces() []string { return nil }
func (s Encoding) Removes() []string  { return s.Columns }

// Apply appends one <column>_<level> indicator per non-reference level and
// removes the raw columns. Levels are sorted; empty values belong to no level.
func (s Encoding) Apply(f *model.Frame) error {
	var indicators []*model.Column
	for _, name := range s.Columns {
		col, err := f.Column(name)
		if err != nil {
			return err
		}
		indicators = append(indicators, indicatorColumns(col)...)
	}

	if err := f.Drop(s.Columns...); err != nil {
		return err
	}
	for _, col := range indicators {
		if err := f.Set(col); err != nil {
			return err
		}
	}
	return castBoolsToFloat(f)
}

// Levels returns the sorted distinct non-empty values of a column
func Levels(col *model.Column) []string {
	seen := make(map[string]bool)
	var levels []string
	for i := 0; i < col.Len(); i++ {
		key := col.Key(i)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		levels = append(levels, key)
	}
	sort.Strings(levels)
	return levels
}

func indicatorColumns(col *model.Column) []*model.Column {
	levels := Levels(col)
	if len(levels) <= 1 {
		return nil
	}

	position := make(map[string]int, len(levels)-1)
	values := make([][]bool, len(levels)-1)
	for j, level := range levels[1:] {
		position[level] = j
		values[j] = make([]bool, col.Len())
	}
	for i := 0; i < col.Len(); i++ {
		if j, ok := position[col.Key(i)]; ok {
			values[j][i] = true
		}
	}

	out := make([]*model.Column, len(values))
	for j, level := range levels[1:] {
		out[j] = model.NewBoolColumn(col.Name+"_"+level, values[j])
	}
	return out
}

func castBoolsToFloat(f *model.Frame) error {
	for _, col := range f.Columns() {
		if col.Kind != model.KindBool {
			continue
		}
		vals, err := col.Floats()
		if err != nil {
			return err
		}
		if err := f.Set(model.NewFloatColumn(col.Name, vals)); err != nil {
			return err
		}
	}
	return nil
}
