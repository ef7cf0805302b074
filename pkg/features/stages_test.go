// pkg/features/stages_test.go
package features

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suraphelalemu/Detection-of-Fraud/pkg/model"
)

func TestFraudRateByCountry(t *testing.T) {
	f := rawTransactions(t)
	require.NoError(t, NewFraudRate().Apply(f))

	assert.Equal(t, []float64{0.5, 0.5, 0, 0, 0}, floatsOf(t, f, ColFraudRate))
	assert.True(t, f.Has(model.ColCountry), "country is kept until finalization")
}

func TestFraudRateMeanMatchesLabelShare(t *testing.T) {
	f, err := model.NewFrame(
		model.NewStringColumn(model.ColCountry, []string{"A", "B", "A", "C", "A", "B"}),
		model.NewIntColumn(model.ColClass, []int64{1, 1, 0, 0, 1, 0}),
	)
	require.NoError(t, err)
	require.NoError(t, NewFraudRate().Apply(f))

	want := map[string]float64{"A": 2.0 / 3.0, "B": 0.5, "C": 0}
	countries, _ := f.Column(model.ColCountry)
	for i, rate := range floatsOf(t, f, ColFraudRate) {
		assert.InDelta(t, want[countries.Key(i)], rate, 1e-12)
	}
}

func TestFraudRateEmptyCountryDefaultsToZero(t *testing.T) {
	f, err := model.NewFrame(
		model.NewStringColumn(model.ColCountry, []string{"", "", "US"}),
		model.NewIntColumn(model.ColClass, []int64{1, 1, 1}),
	)
	require.NoError(t, err)
	require.NoError(t, NewFraudRate().Apply(f))

	assert.Equal(t, []float64{0, 0, 1}, floatsOf(t, f, ColFraudRate))
}

func TestFraudRateSchemaErrors(t *testing.T) {
	f, err := model.NewFrame(model.NewIntColumn(model.ColClass, []int64{1}))
	require.NoError(t, err)
	assert.True(t, errors.Is(NewFraudRate().Apply(f), model.ErrColumnNotFound))

	f, err = model.NewFrame(
		model.NewStringColumn(model.ColCountry, []string{"US"}),
		model.NewStringColumn(model.ColClass, []string{"yes"}),
	)
	require.NoError(t, err)
	assert.True(t, errors.Is(NewFraudRate().Apply(f), model.ErrColumnKind))
}

func TestTemporalFeatures(t *testing.T) {
	f := rawTransactions(t)
	require.NoError(t, NewTemporal().Apply(f))

	hours := floatsOf(t, f, ColHourOfDay)
	days := floatsOf(t, f, ColDayOfWeek)
	delays := floatsOf(t, f, ColPurchaseDelay)

	assert.Equal(t, []float64{2, 1, 18, 13, 18}, hours)
	// Sat, Mon, Thu, Mon, Wed with Monday=0
	assert.Equal(t, []float64{5, 0, 3, 0, 2}, days)
	assert.InDelta(t, (4*3600+59*60+4)/3600.0, delays[1], 1e-9)
	assert.InDelta(t, 1/3600.0, delays[2], 1e-12)

	signup, err := f.Column(model.ColSignupTime)
	require.NoError(t, err)
	assert.Equal(t, model.KindTime, signup.Kind)
}

func TestTemporalNegativeDelayIsKept(t *testing.T) {
	f, err := model.NewFrame(
		model.NewStringColumn(model.ColSignupTime, []string{"2015-01-02 00:00:00"}),
		model.NewStringColumn(model.ColPurchaseTime, []string{"2015-01-01 12:00:00"}),
	)
	require.NoError(t, err)
	require.NoError(t, NewTemporal().Apply(f))

	assert.Equal(t, []float64{-12}, floatsOf(t, f, ColPurchaseDelay))
}

func TestTemporalParseError(t *testing.T) {
	f, err := model.NewFrame(
		model.NewStringColumn(model.ColSignupTime, []string{"2015-01-02 00:00:00"}),
		model.NewStringColumn(model.ColPurchaseTime, []string{"yesterday"}),
	)
	require.NoError(t, err)

	err = NewTemporal().Apply(f)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrParse))
	assert.Equal(t, CategoryParse, categorize(err))
}

func TestFrequencyCounts(t *testing.T) {
	f := rawTransactions(t)
	require.NoError(t, NewTemporal().Apply(f))
	require.NoError(t, NewFrequency().Apply(f))

	assert.Equal(t, []float64{2, 2, 1, 1, 1}, floatsOf(t, f, ColUserFrequency))
	assert.Equal(t, []float64{3, 3, 3, 1, 1}, floatsOf(t, f, ColDeviceFrequency))

	delays := floatsOf(t, f, ColPurchaseDelay)
	velocity := floatsOf(t, f, ColUserVelocity)
	assert.InDelta(t, 2/delays[0], velocity[0], 1e-12)
	assert.InDelta(t, 3600.0, velocity[2], 1e-6)
}

func TestFrequencyZeroDelayYieldsPositiveInfinity(t *testing.T) {
	f, err := model.NewFrame(
		model.NewIntColumn(model.ColUserID, []int64{7, 8}),
		model.NewStringColumn(model.ColDeviceID, []string{"a", "b"}),
		model.NewFloatColumn(ColPurchaseDelay, []float64{0, math.NaN()}),
	)
	require.NoError(t, err)
	require.NoError(t, NewFrequency().Apply(f))

	velocity := floatsOf(t, f, ColUserVelocity)
	assert.True(t, math.IsInf(velocity[0], 1), "zero delay must give +Inf, got %v", velocity[0])
	assert.True(t, math.IsNaN(velocity[1]), "NaN delay must give NaN, got %v", velocity[1])
}

func TestFrequencySentinel(t *testing.T) {
	f, err := model.NewFrame(
		model.NewIntColumn(model.ColUserID, []int64{7, 8}),
		model.NewStringColumn(model.ColDeviceID, []string{"a", "b"}),
		model.NewFloatColumn(ColPurchaseDelay, []float64{0, 2}),
	)
	require.NoError(t, err)

	step := NewFrequency()
	sentinel := -1.0
	step.Sentinel = &sentinel
	require.NoError(t, step.Apply(f))

	assert.Equal(t, []float64{-1, 0.5}, floatsOf(t, f, ColUserVelocity))
}

func TestMissingKeysFormNoGroup(t *testing.T) {
	f, err := model.NewFrame(
		model.NewIntColumn(model.ColUserID, []int64{1, 2, 3}),
		model.NewStringColumn(model.ColDeviceID, []string{"", "", "d"}),
		model.NewStringColumn(model.ColCountry, []string{"", "", "US"}),
		model.NewIntColumn(model.ColClass, []int64{1, 1, 1}),
		model.NewFloatColumn(ColPurchaseDelay, []float64{1, 2, 4}),
	)
	require.NoError(t, err)
	require.NoError(t, NewFraudRate().Apply(f))
	require.NoError(t, NewFrequency().Apply(f))

	assert.Equal(t, []float64{0, 0, 1}, floatsOf(t, f, ColFraudRate))
	assert.Equal(t, []float64{1, 1, 1}, floatsOf(t, f, ColUserFrequency))

	devices, err := f.Column(ColDeviceFrequency)
	require.NoError(t, err)
	assert.True(t, devices.IsNull(0))
	assert.True(t, devices.IsNull(1))
	assert.Equal(t, int64(1), devices.Value(2))

	deviceFreq := floatsOf(t, f, ColDeviceFrequency)
	assert.True(t, math.IsNaN(deviceFreq[0]))
	assert.Equal(t, []float64{1, 0.5, 0.25}, floatsOf(t, f, ColUserVelocity))
}

func TestMissingUserGivesNaNVelocity(t *testing.T) {
	f, err := model.NewFrame(
		model.NewNullableIntColumn(model.ColUserID, []int64{0, 5}, []bool{false, true}),
		model.NewStringColumn(model.ColDeviceID, []string{"a", "b"}),
		model.NewFloatColumn(ColPurchaseDelay, []float64{1, 1}),
	)
	require.NoError(t, err)
	require.NoError(t, NewFrequency().Apply(f))

	velocity := floatsOf(t, f, ColUserVelocity)
	assert.True(t, math.IsNaN(velocity[0]))
	assert.Equal(t, 1.0, velocity[1])
}

func TestFrequencyRequiresDelay(t *testing.T) {
	f := rawTransactions(t)
	err := NewFrequency().Apply(f)
	assert.True(t, errors.Is(err, model.ErrColumnNotFound))
}

func TestEncodingDropsReferenceLevel(t *testing.T) {
	f := rawTransactions(t)
	require.NoError(t, NewEncoding().Apply(f))

	for _, name := range []string{model.ColSource, model.ColBrowser, model.ColSex} {
		assert.False(t, f.Has(name), "raw column %s must be removed", name)
	}
	for _, name := range []string{"source_Ads", "browser_Chrome", "sex_F"} {
		assert.False(t, f.Has(name), "reference level %s must be dropped", name)
	}

	names := f.Names()
	assert.Equal(t, []string{
		"source_Direct", "source_SEO",
		"browser_FireFox", "browser_IE", "browser_Safari",
		"sex_M",
	}, names[len(names)-6:])

	assert.Equal(t, []float64{0, 0, 1, 0, 0}, floatsOf(t, f, "source_Direct"))
	assert.Equal(t, []float64{1, 0, 0, 1, 0}, floatsOf(t, f, "source_SEO"))
	assert.Equal(t, []float64{1, 0, 1, 0, 1}, floatsOf(t, f, "sex_M"))

	col, err := f.Column("sex_M")
	require.NoError(t, err)
	assert.Equal(t, model.KindFloat, col.Kind)
}

func TestEncodingCastsExistingBoolColumns(t *testing.T) {
	f, err := model.NewFrame(
		model.NewStringColumn(model.ColSource, []string{"a", "b"}),
		model.NewStringColumn(model.ColBrowser, []string{"x", "x"}),
		model.NewStringColumn(model.ColSex, []string{"F", "M"}),
		model.NewBoolColumn("is_mobile", []bool{true, false}),
	)
	require.NoError(t, err)
	require.NoError(t, NewEncoding().Apply(f))

	col, err := f.Column("is_mobile")
	require.NoError(t, err)
	assert.Equal(t, model.KindFloat, col.Kind)
	assert.Equal(t, []string{"is_mobile", "source_b", "sex_M"}, f.Names())
}

func TestEncodingMissingColumn(t *testing.T) {
	f, err := model.NewFrame(model.NewStringColumn(model.ColSource, []string{"a"}))
	require.NoError(t, err)

	err = NewEncoding().Apply(f)
	assert.True(t, errors.Is(err, model.ErrColumnNotFound))
	assert.True(t, f.Has(model.ColSource), "failed encoding must not drop columns")
}

func TestFinalize(t *testing.T) {
	f := rawTransactions(t)
	require.NoError(t, NewFinalize().Apply(f))

	for _, name := range ExcludedColumns {
		assert.False(t, f.Has(name))
	}
	assert.False(t, f.Has(model.ColUserID))
	require.NotNil(t, f.Index())
	assert.Equal(t, model.ColUserID, f.Index().Name)
}
