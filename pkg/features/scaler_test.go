// pkg/features/scaler_test.go
package features

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suraphelalemu/Detection-of-Fraud/pkg/model"
)

func TestStandardScalerZeroMeanUnitVariance(t *testing.T) {
	f, err := model.NewFrame(
		model.NewFloatColumn("a", []float64{1, 2, 3, 4, 10}),
		model.NewIntColumn("b", []int64{100, 200, 200, 300, 1000}),
	)
	require.NoError(t, err)

	require.NoError(t, NewStandardScaler("a", "b").FitTransform(f))

	for _, name := range []string{"a", "b"} {
		mean, std := popMeanStd(floatsOf(t, f, name))
		assert.InDelta(t, 0, mean, 1e-9, name)
		assert.InDelta(t, 1, std, 1e-9, name)
	}
	col, err := f.Column("b")
	require.NoError(t, err)
	assert.Equal(t, model.KindFloat, col.Kind)
}

func TestStandardScalerConstantColumn(t *testing.T) {
	f, err := model.NewFrame(model.NewFloatColumn("c", []float64{5, 5, 5}))
	require.NoError(t, err)

	require.NoError(t, NewStandardScaler("c").FitTransform(f))
	assert.Equal(t, []float64{0, 0, 0}, floatsOf(t, f, "c"))
}

func TestStandardScalerIgnoresNaN(t *testing.T) {
	f, err := model.NewFrame(model.NewFloatColumn("a", []float64{1, math.NaN(), 3}))
	require.NoError(t, err)

	require.NoError(t, NewStandardScaler("a").FitTransform(f))
	vals := floatsOf(t, f, "a")
	assert.InDelta(t, -1, vals[0], 1e-12)
	assert.True(t, math.IsNaN(vals[1]))
	assert.InDelta(t, 1, vals[2], 1e-12)
}

func TestStandardScalerRejectsInfinity(t *testing.T) {
	f, err := model.NewFrame(model.NewFloatColumn("a", []float64{1, math.Inf(1)}))
	require.NoError(t, err)

	err = NewStandardScaler("a").FitTransform(f)
	assert.True(t, errors.Is(err, ErrNonFinite))
	assert.Equal(t, CategoryNumeric, categorize(err))
}

func TestStandardScalerSchemaErrors(t *testing.T) {
	f, err := model.NewFrame(model.NewStringColumn("s", []string{"x"}))
	require.NoError(t, err)

	assert.True(t, errors.Is(NewStandardScaler("s").Fit(f), model.ErrColumnKind))
	assert.True(t, errors.Is(NewStandardScaler("missing").Fit(f), model.ErrColumnNotFound))
	assert.True(t, errors.Is(NewStandardScaler("s").Transform(f), ErrNotFitted))
}

func TestStandardScalerTransformUsesFittedStatistics(t *testing.T) {
	train, err := model.NewFrame(model.NewFloatColumn("a", []float64{0, 2}))
	require.NoError(t, err)
	other, err := model.NewFrame(model.NewFloatColumn("a", []float64{4}))
	require.NoError(t, err)

	s := NewStandardScaler("a")
	require.NoError(t, s.Fit(train))
	require.NoError(t, s.Transform(other))

	assert.Equal(t, []float64{3}, floatsOf(t, other, "a"))
}
