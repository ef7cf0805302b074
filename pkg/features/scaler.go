// pkg/features/scaler.go
package features

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/suraphelalemu/Detection-of-Fraud/pkg/model"
)

// NumericFeatures are the columns standardized by the scaling step
var NumericFeatures = []string{
	model.ColPurchaseValue,
	ColUserFrequency,
	ColDeviceFrequency,
	ColUserVelocity,
	ColHourOfDay,
	ColDayOfWeek,
	ColPurchaseDelay,
	model.ColAge,
	ColFraudRate,
}

// StandardScaler standardizes columns to zero mean and unit variance using
// population statistics. NaN values are ignored when fitting and left as NaN.
type StandardScaler struct {
	columns []string
	mean    []float64
	scale   []float64
	fitted  bool
}

// NewStandardScaler creates an unfitted scaler over the named columns
func NewStandardScaler(columns ...string) *StandardScaler {
	return &StandardScaler{columns: append([]string(nil), columns...)}
}

// Fit computes per-column mean and standard deviation from f.
// A constant column gets scale 1 so it maps to zeros.
func (s *StandardScaler) Fit(f *model.Frame) error {
	mean := make([]float64, len(s.columns))
	scale := make([]float64, len(s.columns))

	for j, name := range s.columns {
		vals, err := numericValues(f, name)
		if err != nil {
			return err
		}

		observed := make([]float64, 0, len(vals))
		for _, v := range vals {
			if !math.IsNaN(v) {
				observed = append(observed, v)
			}
		}
		if len(observed) == 0 {
			mean[j], scale[j] = math.NaN(), 1
			continue
		}

		m, variance := stat.PopMeanVariance(observed, nil)
		sd := math.Sqrt(variance)
		if sd == 0 || math.IsNaN(sd) {
			sd = 1
		}
		mean[j], scale[j] = m, sd
	}

	s.mean, s.scale, s.fitted = mean, scale, true
	return nil
}

// Transform replaces each scaled column with its standardized float values
func (s *StandardScaler) Transform(f *model.Frame) error {
	if !s.fitted {
		return ErrNotFitted
	}

	scaled := make([]*model.Column, len(s.columns))
	for j, name := range s.columns {
		vals, err := numericValues(f, name)
		if err != nil {
			return err
		}
		out := make([]float64, len(vals))
		for i, v := range vals {
			out[i] = (v - s.mean[j]) / s.scale[j]
		}
		scaled[j] = model.NewFloatColumn(name, out)
	}

	for _, col := range scaled {
		if err := f.Set(col); err != nil {
			return err
		}
	}
	return nil
}

// FitTransform fits on f and transforms f in place
func (s *StandardScaler) FitTransform(f *model.Frame) error {
	if err := s.Fit(f); err != nil {
		return err
	}
	return s.Transform(f)
}

// Columns returns the scaled column names
func (s *StandardScaler) Columns() []string {
	return append([]string(nil), s.columns...)
}

func numericValues(f *model.Frame, name string) ([]float64, error) {
	col, err := f.Column(name)
	if err != nil {
		return nil, err
	}
	vals, err := col.Floats()
	if err != nil {
		return nil, err
	}
	for i, v := range vals {
		if math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: column %q row %d", ErrNonFinite, name, i)
		}
	}
	return vals, nil
}

// Scaling fits a fresh scaler on the frame and applies it in one pass
type Scaling struct {
	Scaler *StandardScaler
}

// NewScaling returns the scaling step over NumericFeatures
func NewScaling() Scaling {
	return Scaling{Scaler: NewStandardScaler(NumericFeatures...)}
}

func (s Scaling) Name() string       { return StageScaling }
func (s Scaling) Requires() []string { return s.Scaler.Columns() }
func (s Scaling) Produces() []string { return nil }
func (s Scaling) Removes() []string  { return nil }

// Apply refits on the current frame every time; statistics are not reused across frames
func (s Scaling) Apply(f *model.Frame) error {
	return s.Scaler.FitTransform(f)
}
