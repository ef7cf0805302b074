// pkg/features/helpers_test.go
package features

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"

	"github.com/suraphelalemu/Detection-of-Fraud/pkg/model"
)

// rawTransactions builds a five-row raw table: US has 1/2 fraud, FR has 0/3.
func rawTransactions(t *testing.T) *model.Frame {
	t.Helper()
	f, err := model.NewFrame(
		model.NewIntColumn(model.ColUserID, []int64{1, 1, 2, 3, 4}),
		model.NewStringColumn(model.ColSignupTime, []string{
			"2015-02-24 22:55:49",
			"2015-06-07 20:39:50",
			"2015-01-01 18:52:44",
			"2015-04-28 21:13:25",
			"2015-07-21 07:09:52",
		}),
		model.NewStringColumn(model.ColPurchaseTime, []string{
			"2015-04-18 02:47:11",
			"2015-06-08 01:38:54",
			"2015-01-01 18:52:45",
			"2015-05-04 13:54:50",
			"2015-09-09 18:40:53",
		}),
		model.NewFloatColumn(model.ColPurchaseValue, []float64{34, 16, 15, 44, 39}),
		model.NewStringColumn(model.ColDeviceID, []string{"QVPSPJUOCKZAR", "QVPSPJUOCKZAR", "QVPSPJUOCKZAR", "EOGFQPIZPYXFZ", "YSSKYOSJHPPLJ"}),
		model.NewStringColumn(model.ColSource, []string{"SEO", "Ads", "Direct", "SEO", "Ads"}),
		model.NewStringColumn(model.ColBrowser, []string{"Chrome", "Safari", "Chrome", "FireFox", "IE"}),
		model.NewStringColumn(model.ColSex, []string{"M", "F", "M", "F", "M"}),
		model.NewFloatColumn(model.ColAge, []float64{39, 53, 53, 41, 45}),
		model.NewFloatColumn(model.ColIPAddress, []float64{732758368.8, 350311387.9, 2621473820.1, 3840542443.9, 415583117.5}),
		model.NewIntColumn(model.ColClass, []int64{1, 0, 0, 0, 0}),
		model.NewStringColumn(model.ColCountry, []string{"US", "US", "FR", "FR", "FR"}),
		model.NewIntColumn(model.ColIPInt, []int64{732758368, 350311387, 2621473820, 3840542443, 415583117}),
	)
	require.NoError(t, err)
	return f
}

func floatsOf(t *testing.T, f *model.Frame, name string) []float64 {
	t.Helper()
	col, err := f.Column(name)
	require.NoError(t, err)
	vals, err := col.Floats()
	require.NoError(t, err)
	return vals
}

func popMeanStd(vals []float64) (float64, float64) {
	mean, variance := stat.PopMeanVariance(vals, nil)
	return mean, math.Sqrt(variance)
}
