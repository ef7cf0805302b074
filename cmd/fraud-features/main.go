// cmd/fraud-features/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/suraphelalemu/Detection-of-Fraud/pkg/config"
	"github.com/suraphelalemu/Detection-of-Fraud/pkg/connector"
	"github.com/suraphelalemu/Detection-of-Fraud/pkg/features"
)

var Version = "dev"

// flagEnv maps command-line flags to the environment variables they override
var flagEnv = map[string]string{
	"source":            "FEATURES_SOURCE",
	"sink":              "FEATURES_SINK",
	"input":             "INPUT_PATH",
	"output":            "OUTPUT_PATH",
	"timezone":          "TIMEZONE",
	"velocity-sentinel": "VELOCITY_SENTINEL",
	"log-level":         "LOG_LEVEL",
	"log-format":        "LOG_FORMAT",
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var envFile, metricsFile string

	cmd := &cobra.Command{
		Use:           "fraud-features",
		Short:         "Turn raw e-commerce transactions into a model-ready fraud feature table",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("failed to load %s: %w", envFile, err)
			}
			for flag, env := range flagEnv {
				if cmd.Flags().Changed(flag) {
					value, _ := cmd.Flags().GetString(flag)
					os.Setenv(env, value)
				}
			}

			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			logger, err := newLogger(cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return run(ctx, cfg, metricsFile, logger)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", ".env", "Environment file to load before reading configuration")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Write Prometheus metrics in text format to this file")
	cmd.Flags().String("source", "", "Transaction source (csv, postgres, snowflake)")
	cmd.Flags().String("sink", "", "Feature sink (csv, postgres)")
	cmd.Flags().StringP("input", "i", "", "Input CSV path")
	cmd.Flags().StringP("output", "o", "", "Output CSV path")
	cmd.Flags().String("timezone", "", "Timezone for timestamps without an offset")
	cmd.Flags().String("velocity-sentinel", "", "Replace non-finite velocity values (\"nan\" or a number)")
	cmd.Flags().String("log-level", "", "Log level (debug, info, warn, error)")
	cmd.Flags().String("log-format", "", "Log format (json, console)")

	return cmd
}

func run(ctx context.Context, cfg *config.Config, metricsFile string, logger *zap.Logger) error {
	registry := prometheus.NewRegistry()
	metrics, err := features.NewMetrics(registry)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}
	if metricsFile != "" {
		defer func() {
			if werr := prometheus.WriteToTextfile(metricsFile, registry); werr != nil {
				logger.Warn("Failed to write metrics", zap.String("path", metricsFile), zap.Error(werr))
			}
		}()
	}

	factory := connector.NewConnectorFactory(cfg, logger)

	source, err := factory.CreateSource(ctx)
	if err != nil {
		return err
	}
	defer source.Close()

	raw, err := source.LoadTransactions(ctx)
	if err != nil {
		return fmt.Errorf("failed to load transactions: %w", err)
	}

	opts := []features.Option{features.WithMetrics(metrics)}
	sentinel, err := cfg.Sentinel()
	if err != nil {
		return err
	}
	if sentinel != nil {
		opts = append(opts, features.WithVelocitySentinel(*sentinel))
	}

	fe, err := features.New(raw, logger, opts...)
	if err != nil {
		return err
	}
	if err := fe.Pipeline(); err != nil {
		return err
	}
	processed, err := fe.ProcessedData()
	if err != nil {
		return err
	}

	sink, err := factory.CreateSink(ctx)
	if err != nil {
		return err
	}
	defer sink.Close()

	written, err := sink.WriteFeatures(ctx, fe.RunID().String(), processed)
	if err != nil {
		return fmt.Errorf("failed to write features: %w", err)
	}
	if err := connector.VerifyRowCount(processed.Len(), written); err != nil {
		return err
	}

	report := fe.Report()
	logger.Info("Feature engineering complete",
		zap.String("run_id", fe.RunID().String()),
		zap.Int64("rows_written", written),
		zap.Int("columns", len(processed.Names())),
		zap.Duration("duration", report.Duration()))
	return nil
}

func newLogger(level, format string) (*zap.Logger, error) {
	atomic, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var zcfg zap.Config
	switch format {
	case "console":
		zcfg = zap.NewDevelopmentConfig()
	case "json", "":
		zcfg = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("unsupported log format %q", format)
	}
	zcfg.Level = atomic

	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}
