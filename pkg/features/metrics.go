// pkg/features/metrics.go
package features

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StageReport records one stage execution
type StageReport struct {
	Stage         string
	StartTime     time.Time
	EndTime       time.Time
	ColumnsBefore int
	ColumnsAfter  int
	Error         string
}

// Duration returns how long the stage ran
func (r StageReport) Duration() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}

// RunReport summarizes the most recent pipeline run
type RunReport struct {
	RunID     string
	StartTime time.Time
	EndTime   time.Time
	Rows      int
	Stages    []StageReport
	Success   bool
}

// Duration returns the total duration of the run
func (r RunReport) Duration() time.Duration {
	if r.EndTime.IsZero() {
		return time.Since(r.StartTime)
	}
	return r.EndTime.Sub(r.StartTime)
}

// Metrics exposes pipeline timings and outcomes as prometheus collectors
type Metrics struct {
	stageDuration *prometheus.HistogramVec
	stageErrors   *prometheus.CounterVec
	runs          *prometheus.CounterVec
	rows          prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "fraud_features",
			Name:      "stage_duration_seconds",
			Help:      "Duration of each feature engineering stage.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"stage"}),
		stageErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fraud_features",
			Name:      "stage_errors_total",
			Help:      "Stage failures by stage and error category.",
		}, []string{"stage", "category"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fraud_features",
			Name:      "pipeline_runs_total",
			Help:      "Completed pipeline runs by outcome.",
		}, []string{"outcome"}),
		rows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fraud_features",
			Name:      "rows_processed_total",
			Help:      "Rows emitted by successful pipeline runs.",
		}),
	}

	for _, c := range []prometheus.Collector{m.stageDuration, m.stageErrors, m.runs, m.rows} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observeStage(stage string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
	if err != nil {
		m.stageErrors.WithLabelValues(stage, categorize(err).String()).Inc()
	}
}

func (m *Metrics) observeRun(rows int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.runs.WithLabelValues("failure").Inc()
		return
	}
	m.runs.WithLabelValues("success").Inc()
	m.rows.Add(float64(rows))
}
