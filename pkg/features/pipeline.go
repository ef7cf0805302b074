// pkg/features/pipeline.go
package features

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/suraphelalemu/Detection-of-Fraud/pkg/model"
)

// FeatureEngineering turns a raw transaction frame into the model feature table.
// It owns a private copy of the input and is not safe for concurrent use.
type FeatureEngineering struct {
	df        *model.Frame
	processed *model.Frame
	scaler    *StandardScaler
	logger    *zap.Logger
	metrics   *Metrics
	runID     uuid.UUID
	sentinel  *float64
	report    RunReport
	running   bool
}

// Option configures a FeatureEngineering instance
type Option func(*FeatureEngineering)

// WithMetrics records stage timings and run outcomes
func WithMetrics(m *Metrics) Option {
	return func(fe *FeatureEngineering) {
		fe.metrics = m
	}
}

// WithRunID fixes the run identifier used in logs and reports
func WithRunID(id uuid.UUID) Option {
	return func(fe *FeatureEngineering) {
		fe.runID = id
	}
}

// WithVelocitySentinel replaces non-finite velocity values with v.
// Without it a zero purchase delay yields +Inf, which the scaler rejects.
func WithVelocitySentinel(v float64) Option {
	return func(fe *FeatureEngineering) {
		fe.sentinel = &v
	}
}

// New creates a FeatureEngineering over a deep copy of df
func New(df *model.Frame, logger *zap.Logger, opts ...Option) (*FeatureEngineering, error) {
	if df == nil {
		return nil, errors.New("input frame cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	fe := &FeatureEngineering{
		df:     df.Clone(),
		scaler: NewStandardScaler(NumericFeatures...),
		runID:  uuid.New(),
	}
	for _, opt := range opts {
		opt(fe)
	}
	fe.logger = logger.Named("feature-engineering").With(zap.String("run_id", fe.runID.String()))

	fe.logger.Info("FeatureEngineering initialized",
		zap.Int("rows", fe.df.Len()),
		zap.Int("columns", len(fe.df.Names())))
	return fe, nil
}

// RunID returns the identifier of this instance's runs
func (fe *FeatureEngineering) RunID() uuid.UUID {
	return fe.runID
}

// Steps returns the ordered transformation plan
func (fe *FeatureEngineering) Steps() []Step {
	return []Step{
		fe.fraudRateStep(),
		fe.temporalStep(),
		fe.frequencyStep(),
		fe.encodingStep(),
		fe.scalingStep(),
		NewFinalize(),
	}
}

func (fe *FeatureEngineering) fraudRateStep() Step { return NewFraudRate() }
func (fe *FeatureEngineering) temporalStep() Step  { return NewTemporal() }
func (fe *FeatureEngineering) encodingStep() Step  { return NewEncoding() }
func (fe *FeatureEngineering) scalingStep() Step   { return Scaling{Scaler: fe.scaler} }

func (fe *FeatureEngineering) frequencyStep() Step {
	step := NewFrequency()
	step.Sentinel = fe.sentinel
	return step
}

// CalculateFraudRate adds the per-country fraud_rate column
func (fe *FeatureEngineering) CalculateFraudRate() error {
	return fe.runStep(fe.fraudRateStep())
}

// PreprocessDatetime parses the timestamps and adds hour, weekday and delay columns
func (fe *FeatureEngineering) PreprocessDatetime() error {
	return fe.runStep(fe.temporalStep())
}

// CalculateTransactionFrequency adds user/device frequency and user velocity.
// PreprocessDatetime must have run first.
func (fe *FeatureEngineering) CalculateTransactionFrequency() error {
	return fe.runStep(fe.frequencyStep())
}

// EncodeCategoricalFeatures replaces source, browser and sex with indicator columns
func (fe *FeatureEngineering) EncodeCategoricalFeatures() error {
	return fe.runStep(fe.encodingStep())
}

// NormalizeAndScale standardizes NumericFeatures using this frame's own statistics
func (fe *FeatureEngineering) NormalizeAndScale() error {
	return fe.runStep(fe.scalingStep())
}

// Pipeline validates the step plan and runs every stage in order. On failure
// the processed data stays unset; the working frame may be partially mutated.
func (fe *FeatureEngineering) Pipeline() error {
	fe.logger.Info("Starting the feature engineering pipeline")
	fe.startReport()

	fe.running = true
	err := fe.pipeline()
	fe.running = false
	fe.report.EndTime = time.Now()
	fe.report.Success = err == nil
	fe.metrics.observeRun(fe.df.Len(), err)

	if err != nil {
		fe.logger.Error("Feature engineering pipeline failed", zap.Error(err))
		return err
	}

	fe.processed = fe.df.Clone()
	fe.logger.Info("Feature engineering pipeline executed successfully",
		zap.Int("rows", fe.processed.Len()),
		zap.Int("columns", len(fe.processed.Names())),
		zap.Duration("duration", fe.report.Duration()))
	return nil
}

func (fe *FeatureEngineering) pipeline() error {
	steps := fe.Steps()
	if err := ValidatePlan(fe.df.Names(), steps); err != nil {
		fe.metrics.observeStage(StagePlan, 0, err)
		return err
	}

	for _, step := range steps {
		if err := fe.runStep(step); err != nil {
			return err
		}
	}
	return nil
}

var stageMessages = map[string]string{
	StageFraudRate: "Calculating fraud rate by country",
	StageTemporal:  "Preprocessing datetime features",
	StageFrequency: "Calculating transaction frequency and velocity",
	StageEncoding:  "Encoding categorical features",
	StageScaling:   "Normalizing and scaling numerical features",
	StageFinalize:  "Dropping excluded columns and indexing by user",
}

func (fe *FeatureEngineering) startReport() {
	fe.report = RunReport{
		RunID:     fe.runID.String(),
		StartTime: time.Now(),
		Rows:      fe.df.Len(),
	}
}

// runStep applies one step with logging, timing and error wrapping. A stage
// method called outside Pipeline gets a report of its own.
func (fe *FeatureEngineering) runStep(step Step) error {
	logger := fe.logger.With(zap.String("stage", step.Name()))
	logger.Info(stageMessages[step.Name()])

	standalone := !fe.running
	if standalone {
		fe.startReport()
		defer func() {
			fe.report.EndTime = time.Now()
			last := fe.report.Stages[len(fe.report.Stages)-1]
			fe.report.Success = last.Error == ""
		}()
	}

	sr := StageReport{
		Stage:         step.Name(),
		StartTime:     time.Now(),
		ColumnsBefore: len(fe.df.Names()),
	}
	err := newStageError(step.Name(), step.Apply(fe.df))
	sr.EndTime = time.Now()
	sr.ColumnsAfter = len(fe.df.Names())
	fe.metrics.observeStage(step.Name(), sr.Duration(), err)

	if err != nil {
		sr.Error = err.Error()
		fe.report.Stages = append(fe.report.Stages, sr)
		logger.Error("Stage failed", zap.Error(err))
		return err
	}

	fe.report.Stages = append(fe.report.Stages, sr)
	logger.Info("Stage completed",
		zap.Duration("duration", sr.Duration()),
		zap.Int("columns", sr.ColumnsAfter))
	return nil
}

// ProcessedData returns the finalized frame, or ErrNotProcessed before a
// successful Pipeline run
func (fe *FeatureEngineering) ProcessedData() (*model.Frame, error) {
	fe.logger.Info("Retrieving processed data")
	if fe.processed == nil {
		err := &StageError{Stage: StageFinalize, Category: CategoryState, Err: ErrNotProcessed}
		fe.logger.Error("Processed data requested before the pipeline ran", zap.Error(err))
		return nil, err
	}
	return fe.processed, nil
}

// Report returns the timing report of the most recent run
func (fe *FeatureEngineering) Report() RunReport {
	out := fe.report
	out.Stages = append([]StageReport(nil), fe.report.Stages...)
	return out
}
