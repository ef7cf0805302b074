// pkg/connector/connector.go
package connector

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/suraphelalemu/Detection-of-Fraud/pkg/converter"
	"github.com/suraphelalemu/Detection-of-Fraud/pkg/model"
)

// TransactionSource supplies the raw transaction table
type TransactionSource interface {
	// LoadTransactions reads the whole table into memory
	LoadTransactions(ctx context.Context) (*model.Frame, error)

	// Close releases resources
	Close() error
}

// FeatureSink persists a processed feature table
type FeatureSink interface {
	// WriteFeatures writes every row of the frame, tagged with runID, and
	// returns the number of rows written
	WriteFeatures(ctx context.Context, runID string, f *model.Frame) (int64, error)

	// Close releases resources
	Close() error
}

// ErrRowCountMismatch is returned when a sink reports a different number of
// rows than it was given
var ErrRowCountMismatch = errors.New("row count mismatch")

// VerifyRowCount checks a sink's written count against the frame length
func VerifyRowCount(expected int, written int64) error {
	if written != int64(expected) {
		return fmt.Errorf("%w: expected %d rows, wrote %d", ErrRowCountMismatch, expected, written)
	}
	return nil
}

// ConnStats contains standardized connection statistics
type ConnStats struct {
	OpenConnections int
	InUse           int
	Idle            int
	MaxOpenConns    int
}

// GetConnectionStats returns connection pool statistics for logging
func GetConnectionStats(db *sql.DB) ConnStats {
	stats := db.Stats()
	return ConnStats{
		OpenConnections: stats.OpenConnections,
		InUse:           stats.InUse,
		Idle:            stats.Idle,
		MaxOpenConns:    stats.MaxOpenConnections,
	}
}

// LogConnectionStats logs connection pool statistics
func LogConnectionStats(logger *zap.Logger, name string, db *sql.DB) {
	stats := GetConnectionStats(db)
	logger.Debug("Connection pool stats",
		zap.String("database", name),
		zap.Int("open_connections", stats.OpenConnections),
		zap.Int("in_use", stats.InUse),
		zap.Int("idle", stats.Idle),
		zap.Int("max_open", stats.MaxOpenConns),
	)
}

// PingWithTimeout attempts to ping a database with a timeout
func PingWithTimeout(ctx context.Context, db *sqlx.DB, timeout time.Duration) error {
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		if pingCtx.Err() != nil {
			return fmt.Errorf("ping timed out after %v: %w", timeout, pingCtx.Err())
		}
		return err
	}
	return nil
}

// ApplyConnectionSettings configures database connection pool settings
func ApplyConnectionSettings(db *sqlx.DB, maxOpen, maxIdle int, maxLifetime, maxIdleTime time.Duration) {
	if maxOpen > 0 {
		db.SetMaxOpenConns(maxOpen)
	}
	if maxIdle > 0 {
		db.SetMaxIdleConns(maxIdle)
	}
	if maxLifetime > 0 {
		db.SetConnMaxLifetime(maxLifetime)
	}
	if maxIdleTime > 0 {
		db.SetConnMaxIdleTime(maxIdleTime)
	}
}

// scanFrame reads every row of a result set into a typed frame. Column names
// are lower-cased so upper-case warehouse identifiers match the schema.
func scanFrame(
	rows *sqlx.Rows,
	conv *converter.TypeConverter,
	metadata *model.TableMetadata,
) (*model.Frame, error) {
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read result columns: %w", err)
	}
	header := make([]string, len(columns))
	for i, name := range columns {
		header[i] = strings.ToLower(name)
	}

	var records [][]interface{}
	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return nil, fmt.Errorf("failed to scan row %d: %w", len(records), err)
		}
		records = append(records, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return conv.FrameFromRecords(header, records, metadata)
}

// outputColumns returns the index (if any) followed by the regular columns
func outputColumns(f *model.Frame) []*model.Column {
	cols := f.Columns()
	if idx := f.Index(); idx != nil {
		cols = append([]*model.Column{idx}, cols...)
	}
	return cols
}
