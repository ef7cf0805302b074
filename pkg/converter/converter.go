// pkg/converter/converter.go
package converter

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"go.uber.org/zap"

	"github.com/suraphelalemu/Detection-of-Fraud/pkg/model"
)

// TypeConverter builds typed frames from raw records and maps column kinds to
// database types
type TypeConverter struct {
	logger *zap.Logger
	// Configuration options
	config TypeConverterConfig
}

// TypeConverterConfig provides configuration options for type conversion
type TypeConverterConfig struct {
	// Location used for timestamps without an explicit zone
	DefaultTimezone string
	// Whether null-like cells in float columns become NaN instead of failing
	NullAsNaN bool
	// Whether to keep columns that are not declared in the metadata (as strings)
	KeepUndeclared bool
}

// DefaultConfig returns the default configuration
func DefaultConfig() TypeConverterConfig {
	return TypeConverterConfig{
		DefaultTimezone: "UTC",
		NullAsNaN:       true,
		KeepUndeclared:  true,
	}
}

// NewTypeConverter creates a new TypeConverter with default configuration
func NewTypeConverter(logger *zap.Logger) *TypeConverter {
	return NewTypeConverterWithConfig(logger, DefaultConfig())
}

// NewTypeConverterWithConfig creates a TypeConverter with custom configuration
func NewTypeConverterWithConfig(logger *zap.Logger, config TypeConverterConfig) *TypeConverter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TypeConverter{
		logger: logger,
		config: config,
	}
}

func (c *TypeConverter) location() *time.Location {
	if c.config.DefaultTimezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.config.DefaultTimezone)
	if err != nil {
		c.logger.Warn("Unknown timezone, falling back to UTC",
			zap.String("timezone", c.config.DefaultTimezone),
			zap.Error(err))
		return time.UTC
	}
	return loc
}

// FrameFromRecords converts a header and row-major raw cells into a typed frame.
// Declared columns are converted to their kind; undeclared ones stay strings.
func (c *TypeConverter) FrameFromRecords(
	header []string,
	records [][]interface{},
	metadata *model.TableMetadata,
) (*model.Frame, error) {
	if metadata == nil {
		metadata = &model.TableMetadata{}
	}
	loc := c.location()

	columns := make([]*model.Column, 0, len(header))
	for j, name := range header {
		spec, ok := c.columnSpec(name, metadata)
		if !ok {
			continue
		}

		cell := func(i int) interface{} {
			if j < len(records[i]) {
				return records[i][j]
			}
			return nil
		}
		col, err := c.convertColumn(spec, len(records), cell, loc)
		if err != nil {
			return nil, err
		}
		columns = append(columns, col)
	}

	frame, err := model.NewFrame(columns...)
	if err != nil {
		return nil, fmt.Errorf("failed to assemble frame: %w", err)
	}

	c.logger.Debug("Converted records to frame",
		zap.String("table", metadata.FullName()),
		zap.Int("rows", frame.Len()),
		zap.Int("columns", len(columns)))
	return frame, nil
}

// FrameFromCSV loads header-first text records through a gota DataFrame
// typed from the metadata. Cells gota cannot parse, null cells in
// non-nullable columns and timestamp columns go through the strict
// per-cell conversion, so bad input fails with its row and column.
func (c *TypeConverter) FrameFromCSV(records [][]string, metadata *model.TableMetadata) (*model.Frame, error) {
	if len(records) == 0 {
		return nil, errors.New("missing header row")
	}
	if metadata == nil {
		metadata = &model.TableMetadata{}
	}

	var keep []int
	var specs []model.ColumnSpec
	for j, name := range records[0] {
		if spec, ok := c.columnSpec(name, metadata); ok {
			keep = append(keep, j)
			specs = append(specs, spec)
		}
	}

	header := make([]string, len(specs))
	types := make(map[string]series.Type, len(specs))
	for k, spec := range specs {
		header[k] = spec.Name
		types[spec.Name] = loadType(spec.Kind)
	}

	rows := make([][]string, len(records)-1)
	for i, record := range records[1:] {
		row := make([]string, len(keep))
		for k, j := range keep {
			if j < len(record) {
				row[k] = record[j]
			}
		}
		rows[i] = row
	}

	if len(rows) == 0 {
		return c.FrameFromRecords(header, nil, metadata)
	}

	df := dataframe.LoadRecords(
		append([][]string{header}, rows...),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.WithTypes(types),
		dataframe.NaNValues(NullValues),
	)
	frame, err := model.FromDataFrame(df)
	if err != nil {
		return nil, fmt.Errorf("failed to load records: %w", err)
	}

	loc := c.location()
	for k, spec := range specs {
		loaded, err := frame.Column(spec.Name)
		if err != nil {
			return nil, err
		}
		if !c.needsConversion(spec, loaded, rows, k) {
			continue
		}

		k := k
		cell := func(i int) interface{} { return rows[i][k] }
		col, err := c.convertColumn(spec, len(rows), cell, loc)
		if err != nil {
			return nil, err
		}
		if err := frame.Set(col); err != nil {
			return nil, err
		}
	}

	c.logger.Debug("Loaded records into frame",
		zap.String("table", metadata.FullName()),
		zap.Int("rows", frame.Len()),
		zap.Int("columns", len(specs)))
	return frame, nil
}

// columnSpec returns the declared spec for name, or a string spec for an
// undeclared column when those are kept
func (c *TypeConverter) columnSpec(name string, metadata *model.TableMetadata) (model.ColumnSpec, bool) {
	name = strings.TrimSpace(name)
	if spec := metadata.GetColumnByName(name); spec != nil {
		return model.ColumnSpec{Name: name, Kind: spec.Kind, Nullable: spec.Nullable}, true
	}
	if !c.config.KeepUndeclared {
		c.logger.Debug("Skipping undeclared column", zap.String("column", name))
		return model.ColumnSpec{}, false
	}
	return model.ColumnSpec{Name: name, Kind: model.KindString, Nullable: true}, true
}

func (c *TypeConverter) allowsNull(spec model.ColumnSpec) bool {
	switch spec.Kind {
	case model.KindString:
		return true
	case model.KindFloat:
		return spec.Nullable || c.config.NullAsNaN
	default:
		return spec.Nullable
	}
}

// needsConversion reports whether a gota-loaded column must be rebuilt cell by cell
func (c *TypeConverter) needsConversion(spec model.ColumnSpec, loaded *model.Column, rows [][]string, k int) bool {
	switch spec.Kind {
	case model.KindString:
		return false
	case model.KindTime:
		return true
	}
	for i := range rows {
		if !loaded.IsNull(i) {
			continue
		}
		if !IsNull(rows[i][k]) || !c.allowsNull(spec) {
			return true
		}
	}
	return false
}

func loadType(kind model.Kind) series.Type {
	switch kind {
	case model.KindInt:
		return series.Int
	case model.KindFloat:
		return series.Float
	case model.KindBool:
		return series.Bool
	default:
		return series.String
	}
}

func (c *TypeConverter) convertColumn(
	spec model.ColumnSpec,
	n int,
	cell func(i int) interface{},
	loc *time.Location,
) (*model.Column, error) {
	name := spec.Name
	fail := func(i int, err error) error {
		return fmt.Errorf("row %d, column %s: %w", i, name, err)
	}
	null := func(i int) (bool, error) {
		if !IsNull(cell(i)) {
			return false, nil
		}
		if !c.allowsNull(spec) {
			return true, fail(i, model.ErrNullValue)
		}
		return true, nil
	}

	switch spec.Kind {
	case model.KindInt:
		vals := make([]int64, n)
		valid := make([]bool, n)
		for i := 0; i < n; i++ {
			isNull, err := null(i)
			if err != nil {
				return nil, err
			}
			if isNull {
				continue
			}
			v, err := ToInt(cell(i))
			if err != nil {
				return nil, fail(i, err)
			}
			vals[i], valid[i] = v, true
		}
		return model.NewNullableIntColumn(name, vals, valid), nil

	case model.KindFloat:
		vals := make([]float64, n)
		for i := 0; i < n; i++ {
			isNull, err := null(i)
			if err != nil {
				return nil, err
			}
			if isNull {
				vals[i] = math.NaN()
				continue
			}
			v, err := ToFloat(cell(i))
			if err != nil {
				return nil, fail(i, err)
			}
			vals[i] = v
		}
		return model.NewFloatColumn(name, vals), nil

	case model.KindBool:
		vals := make([]bool, n)
		for i := 0; i < n; i++ {
			v, err := ToBool(cell(i))
			if err != nil {
				return nil, fail(i, err)
			}
			vals[i] = v
		}
		return model.NewBoolColumn(name, vals), nil

	case model.KindTime:
		vals := make([]time.Time, n)
		for i := 0; i < n; i++ {
			v, err := ToTimeIn(cell(i), loc)
			if err != nil {
				return nil, fail(i, err)
			}
			vals[i] = v
		}
		return model.NewTimeColumn(name, vals), nil

	default:
		vals := make([]string, n)
		for i := 0; i < n; i++ {
			vals[i] = ToString(cell(i))
		}
		return model.NewStringColumn(name, vals), nil
	}
}

// PostgresType maps a column kind to a PostgreSQL column type
func (c *TypeConverter) PostgresType(kind model.Kind) string {
	switch kind {
	case model.KindInt:
		return "BIGINT"
	case model.KindFloat:
		return "DOUBLE PRECISION"
	case model.KindBool:
		return "BOOLEAN"
	case model.KindTime:
		return "TIMESTAMP WITH TIME ZONE"
	default:
		return "TEXT"
	}
}
