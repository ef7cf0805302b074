// pkg/connector/factory.go
package connector

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/suraphelalemu/Detection-of-Fraud/pkg/config"
	"github.com/suraphelalemu/Detection-of-Fraud/pkg/converter"
)

// ConnectorFactory creates transaction sources and feature sinks
type ConnectorFactory struct {
	cfg       *config.Config
	logger    *zap.Logger
	converter *converter.TypeConverter
}

// NewConnectorFactory creates a new connector factory
func NewConnectorFactory(cfg *config.Config, logger *zap.Logger) *ConnectorFactory {
	convCfg := converter.DefaultConfig()
	if cfg.Timezone != "" {
		convCfg.DefaultTimezone = cfg.Timezone
	}

	return &ConnectorFactory{
		cfg:       cfg,
		logger:    logger,
		converter: converter.NewTypeConverterWithConfig(logger.Named("converter"), convCfg),
	}
}

// CreateSource creates the configured transaction source
func (f *ConnectorFactory) CreateSource(ctx context.Context) (TransactionSource, error) {
	f.logger.Info("Creating transaction source", zap.String("kind", f.cfg.Source))

	switch f.cfg.Source {
	case config.KindCSV:
		return NewCSVSource(f.cfg.InputPath, f.converter, f.logger), nil
	case config.KindPostgres:
		connector, err := NewPostgresConnector(ctx, f.cfg.Postgres, f.converter, f.cfg.BatchSize, f.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create PostgreSQL connector: %w", err)
		}
		return connector, nil
	case config.KindSnowflake:
		connector, err := NewSnowflakeConnector(ctx, f.cfg.Snowflake, f.converter, f.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create Snowflake connector: %w", err)
		}
		return connector, nil
	}
	return nil, fmt.Errorf("unsupported source %q", f.cfg.Source)
}

// CreateSink creates the configured feature sink
func (f *ConnectorFactory) CreateSink(ctx context.Context) (FeatureSink, error) {
	f.logger.Info("Creating feature sink", zap.String("kind", f.cfg.Sink))

	switch f.cfg.Sink {
	case config.KindCSV:
		return NewCSVSink(f.cfg.OutputPath, f.logger), nil
	case config.KindPostgres:
		connector, err := NewPostgresConnector(ctx, f.cfg.Postgres, f.converter, f.cfg.BatchSize, f.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create PostgreSQL connector: %w", err)
		}
		return connector, nil
	}
	return nil, fmt.Errorf("unsupported sink %q", f.cfg.Sink)
}
