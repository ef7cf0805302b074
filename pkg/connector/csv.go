// pkg/connector/csv.go
package connector

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"

	"github.com/suraphelalemu/Detection-of-Fraud/pkg/converter"
	"github.com/suraphelalemu/Detection-of-Fraud/pkg/model"
)

// CSVSource reads transactions from a delimited file with a header row
type CSVSource struct {
	path      string
	converter *converter.TypeConverter
	logger    *zap.Logger
}

// NewCSVSource creates a source reading from path
func NewCSVSource(path string, conv *converter.TypeConverter, logger *zap.Logger) *CSVSource {
	return &CSVSource{
		path:      path,
		converter: conv,
		logger:    logger.Named("csv-source"),
	}
}

// LoadTransactions parses the whole file. Columns with an empty header, such
// as a leftover unnamed index, are skipped.
func (s *CSVSource) LoadTransactions(ctx context.Context) (*model.Frame, error) {
	file, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", s.path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", s.path, err)
	}

	var keep []int
	for i, name := range header {
		if name != "" {
			keep = append(keep, i)
		}
	}

	records := [][]string{pick(header, keep)}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
		}
		records = append(records, pick(row, keep))
	}

	frame, err := s.converter.FrameFromCSV(records, model.TransactionSchema())
	if err != nil {
		return nil, fmt.Errorf("failed to convert %s: %w", s.path, err)
	}

	s.logger.Info("Loaded transactions",
		zap.String("path", s.path),
		zap.Int("rows", frame.Len()))
	return frame, nil
}

func pick(row []string, keep []int) []string {
	out := make([]string, len(keep))
	for j, i := range keep {
		out[j] = row[i]
	}
	return out
}

// Close is a no-op
func (s *CSVSource) Close() error {
	return nil
}

// CSVSink writes the feature table to a file, index column first
type CSVSink struct {
	path   string
	logger *zap.Logger
}

// NewCSVSink creates a sink writing to path
func NewCSVSink(path string, logger *zap.Logger) *CSVSink {
	return &CSVSink{
		path:   path,
		logger: logger.Named("csv-sink"),
	}
}

// WriteFeatures writes the frame to the sink's path. The run ID is logged but
// not written, so the file layout matches the feature table exactly.
func (s *CSVSink) WriteFeatures(ctx context.Context, runID string, f *model.Frame) (int64, error) {
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	file, err := os.Create(s.path)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", s.path, err)
	}
	defer file.Close()

	columns := outputColumns(f)
	writer := csv.NewWriter(file)

	header := make([]string, len(columns))
	for i, col := range columns {
		header[i] = col.Name
	}
	if err := writer.Write(header); err != nil {
		return 0, fmt.Errorf("failed to write header: %w", err)
	}

	record := make([]string, len(columns))
	var written int64
	for i := 0; i < f.Len(); i++ {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		for j, col := range columns {
			record[j] = formatCell(col, i)
		}
		if err := writer.Write(record); err != nil {
			return written, fmt.Errorf("failed to write row %d: %w", i, err)
		}
		written++
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return written, fmt.Errorf("failed to flush %s: %w", s.path, err)
	}

	s.logger.Info("Wrote feature table",
		zap.String("path", s.path),
		zap.String("run_id", runID),
		zap.Int64("rows", written))
	return written, nil
}

// Close is a no-op
func (s *CSVSink) Close() error {
	return nil
}

// formatCell renders nulls and NaN as an empty cell and infinities as inf / -inf
func formatCell(col *model.Column, i int) string {
	if col.Kind != model.KindFloat || col.IsNull(i) {
		return col.Key(i)
	}
	v, _ := col.Value(i).(float64)
	switch {
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
