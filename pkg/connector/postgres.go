// pkg/connector/postgres.go
package connector

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/suraphelalemu/Detection-of-Fraud/pkg/config"
	"github.com/suraphelalemu/Detection-of-Fraud/pkg/converter"
	"github.com/suraphelalemu/Detection-of-Fraud/pkg/model"
)

// RunIDColumn tags every persisted feature row with the pipeline run
const RunIDColumn = "run_id"

// PostgresConnector reads transactions from and writes features to PostgreSQL
type PostgresConnector struct {
	db        *sqlx.DB
	logger    *zap.Logger
	cfg       *config.PostgresConfig
	converter *converter.TypeConverter
	batchSize int
}

// NewPostgresConnector creates and initializes a new PostgreSQL connector
func NewPostgresConnector(
	ctx context.Context,
	cfg *config.PostgresConfig,
	conv *converter.TypeConverter,
	batchSize int,
	logger *zap.Logger,
) (*PostgresConnector, error) {
	logger = logger.Named("postgres-connector")

	logger.Info("Connecting to PostgreSQL",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Database),
		zap.String("user", cfg.User))

	db, err := sqlx.Open("pgx", cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize PostgreSQL connection: %w", err)
	}

	ApplyConnectionSettings(
		db,
		cfg.MaxOpenConns,
		cfg.MaxIdleConns,
		cfg.ConnMaxLifetime,
		cfg.ConnMaxIdleTime,
	)

	if err := PingWithTimeout(ctx, db, 5*time.Second); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	if batchSize <= 0 {
		batchSize = 1000
	}

	connector := &PostgresConnector{
		db:        db,
		logger:    logger,
		cfg:       cfg,
		converter: conv,
		batchSize: batchSize,
	}

	LogConnectionStats(logger, cfg.Database, db.DB)
	return connector, nil
}

// DB returns the underlying database connection
func (c *PostgresConnector) DB() *sqlx.DB {
	return c.db
}

// Close closes the database connection
func (c *PostgresConnector) Close() error {
	c.logger.Info("Closing PostgreSQL connection")
	LogConnectionStats(c.logger, c.cfg.Database, c.db.DB)
	return c.db.Close()
}

func (c *PostgresConnector) withStatementTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.cfg.StatementTimeout > 0 {
		return context.WithTimeout(ctx, c.cfg.StatementTimeout)
	}
	return context.WithCancel(ctx)
}

// LoadTransactions reads the configured transactions table
func (c *PostgresConnector) LoadTransactions(ctx context.Context) (*model.Frame, error) {
	metadata := model.TransactionSchema()
	metadata.Schema = c.cfg.Schema
	metadata.Table = c.cfg.TransactionsTable

	query := selectQuery(quoteQualified(c.cfg.Schema, c.cfg.TransactionsTable), metadata.ColumnNames(), pq.QuoteIdentifier)

	queryCtx, cancel := c.withStatementTimeout(ctx)
	defer cancel()

	rows, err := c.db.QueryxContext(queryCtx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions from %s: %w", metadata.FullName(), err)
	}

	frame, err := scanFrame(rows, c.converter, metadata)
	if err != nil {
		return nil, err
	}

	c.logger.Info("Loaded transactions",
		zap.String("table", metadata.FullName()),
		zap.Int("rows", frame.Len()))
	return frame, nil
}

// WriteFeatures creates the features table if needed and inserts every row in
// batches inside a single transaction
func (c *PostgresConnector) WriteFeatures(ctx context.Context, runID string, f *model.Frame) (int64, error) {
	table := quoteQualified(c.cfg.Schema, c.cfg.FeaturesTable)
	columns := outputColumns(f)

	names := make([]string, 0, len(columns)+1)
	defs := make([]string, 0, len(columns)+1)
	names = append(names, RunIDColumn)
	defs = append(defs, pq.QuoteIdentifier(RunIDColumn)+" TEXT NOT NULL")
	for _, col := range columns {
		names = append(names, col.Name)
		defs = append(defs, pq.QuoteIdentifier(col.Name)+" "+c.converter.PostgresType(col.Kind))
	}

	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				c.logger.Error("Failed to rollback transaction",
					zap.Error(rbErr),
					zap.Error(err))
			}
		}
	}()

	if _, err = tx.ExecContext(ctx, createTableSQL(table, defs)); err != nil {
		return 0, fmt.Errorf("failed to create table %s: %w", table, err)
	}

	batch := batchRows(c.batchSize, len(names))
	if batch < c.batchSize {
		c.logger.Debug("Reduced batch size to fit the bind parameter limit",
			zap.Int("configured", c.batchSize),
			zap.Int("batch", batch))
	}

	var written int64
	for start := 0; start < f.Len(); start += batch {
		end := start + batch
		if end > f.Len() {
			end = f.Len()
		}

		args := make([]interface{}, 0, (end-start)*len(names))
		for i := start; i < end; i++ {
			args = append(args, runID)
			for _, col := range columns {
				args = append(args, col.Value(i))
			}
		}

		query := insertSQL(table, quoteAll(names), end-start)
		var result sql.Result
		result, err = tx.ExecContext(ctx, query, args...)
		if err != nil {
			return written, fmt.Errorf("batch insert failed at row %d: %w", start, err)
		}
		var n int64
		n, err = result.RowsAffected()
		if err != nil {
			return written, fmt.Errorf("failed to read rows affected at row %d: %w", start, err)
		}
		written += n
	}

	if err = VerifyRowCount(f.Len(), written); err != nil {
		return written, err
	}
	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	c.logger.Info("Wrote feature table",
		zap.String("table", table),
		zap.String("run_id", runID),
		zap.Int64("rows", written))
	return written, nil
}

// maxBindParams is the PostgreSQL limit on parameters in one statement
const maxBindParams = 65535

// batchRows caps the rows per INSERT so rows*columns stays within maxBindParams
func batchRows(batchSize, columns int) int {
	if columns <= 0 {
		return batchSize
	}
	if limit := maxBindParams / columns; batchSize > limit {
		return limit
	}
	return batchSize
}

func quoteQualified(schema, table string) string {
	if schema == "" {
		return pq.QuoteIdentifier(table)
	}
	return pq.QuoteIdentifier(schema) + "." + pq.QuoteIdentifier(table)
}

func quoteAll(names []string) []string {
	out := make([]string, len(names))
	for i, name := range names {
		out[i] = pq.QuoteIdentifier(name)
	}
	return out
}

// selectQuery builds a SELECT of the named columns, quoting each with quote
func selectQuery(table string, columns []string, quote func(string) string) string {
	quoted := make([]string, len(columns))
	for i, name := range columns {
		quoted[i] = quote(name)
	}
	return fmt.Sprintf("SELECT %s FROM %s", strings.Join(quoted, ", "), table)
}

func createTableSQL(table string, defs []string) string {
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)", table, strings.Join(defs, ",\n\t"))
}

// insertSQL builds a multi-row INSERT with $n placeholders
func insertSQL(table string, quotedColumns []string, rows int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "INSERT INTO %s (%s) VALUES ", table, strings.Join(quotedColumns, ", "))

	param := 1
	for r := 0; r < rows; r++ {
		if r > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('(')
		for j := range quotedColumns {
			if j > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "$%d", param)
			param++
		}
		sb.WriteByte(')')
	}
	return sb.String()
}
