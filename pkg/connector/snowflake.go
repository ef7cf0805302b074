// pkg/connector/snowflake.go
package connector

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	sf "github.com/snowflakedb/gosnowflake"
	"go.uber.org/zap"

	"github.com/suraphelalemu/Detection-of-Fraud/pkg/config"
	"github.com/suraphelalemu/Detection-of-Fraud/pkg/converter"
	"github.com/suraphelalemu/Detection-of-Fraud/pkg/model"
)

// SnowflakeConnector reads raw transactions from a Snowflake warehouse
type SnowflakeConnector struct {
	db        *sqlx.DB
	logger    *zap.Logger
	cfg       *config.SnowflakeConfig
	converter *converter.TypeConverter
}

// NewSnowflakeConnector creates a new Snowflake connection
func NewSnowflakeConnector(
	ctx context.Context,
	cfg *config.SnowflakeConfig,
	conv *converter.TypeConverter,
	logger *zap.Logger,
) (*SnowflakeConnector, error) {
	logger = logger.Named("snowflake-connector")

	// Log connection attempt (without credentials)
	logger.Info("Connecting to Snowflake",
		zap.String("account", cfg.Account),
		zap.String("user", cfg.User),
		zap.String("database", cfg.Database),
		zap.String("warehouse", cfg.Warehouse),
		zap.String("role", cfg.Role))

	dsn, err := sf.DSN(cfg.DriverConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to build Snowflake DSN: %w", err)
	}

	db, err := sqlx.Open("snowflake", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Snowflake connection: %w", err)
	}

	ApplyConnectionSettings(
		db,
		cfg.MaxOpenConns,
		cfg.MaxIdleConns,
		cfg.ConnMaxLifetime,
		cfg.ConnMaxIdleTime,
	)

	if cfg.QueryTimeout > 0 {
		_, err = db.ExecContext(
			ctx,
			fmt.Sprintf("ALTER SESSION SET STATEMENT_TIMEOUT_IN_SECONDS = %d",
				int(cfg.QueryTimeout.Seconds())),
		)
		if err != nil {
			logger.Warn("Failed to set statement timeout", zap.Error(err))
		}
	}

	if err := PingWithTimeout(ctx, db, 10*time.Second); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to Snowflake: %w", err)
	}

	LogConnectionStats(logger, cfg.Database, db.DB)
	return &SnowflakeConnector{
		db:        db,
		logger:    logger,
		cfg:       cfg,
		converter: conv,
	}, nil
}

// DB returns the underlying database connection
func (c *SnowflakeConnector) DB() *sqlx.DB {
	return c.db
}

// Close closes the database connection
func (c *SnowflakeConnector) Close() error {
	c.logger.Info("Closing Snowflake connection")
	LogConnectionStats(c.logger, c.cfg.Database, c.db.DB)
	return c.db.Close()
}

// LoadTransactions reads the configured transactions table. Snowflake folds
// unquoted identifiers to upper case; scanFrame lower-cases them again.
func (c *SnowflakeConnector) LoadTransactions(ctx context.Context) (*model.Frame, error) {
	metadata := model.TransactionSchema()
	metadata.Schema = c.cfg.Schema
	metadata.Table = c.cfg.TransactionsTable

	columns := c.cfg.Columns
	if len(columns) == 0 {
		columns = metadata.ColumnNames()
	}

	table := strings.ToUpper(c.cfg.TransactionsTable)
	if c.cfg.Schema != "" {
		table = strings.ToUpper(c.cfg.Schema) + "." + table
	}
	query := selectQuery(table, columns, strings.ToUpper)

	c.logger.Debug("Querying transactions", zap.String("query", query))

	rows, err := c.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions from %s: %w", table, err)
	}

	frame, err := scanFrame(rows, c.converter, metadata)
	if err != nil {
		return nil, err
	}

	c.logger.Info("Loaded transactions",
		zap.String("table", table),
		zap.Int("rows", frame.Len()))
	return frame, nil
}
