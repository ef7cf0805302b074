// pkg/connector/csv_test.go
package connector

import (
	"context"
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/suraphelalemu/Detection-of-Fraud/pkg/converter"
	"github.com/suraphelalemu/Detection-of-Fraud/pkg/features"
	"github.com/suraphelalemu/Detection-of-Fraud/pkg/model"
)

const rawCSV = `,user_id,signup_time,purchase_time,purchase_value,device_id,source,browser,sex,age,ip_address,class,country,ip_int
0,1,2015-02-24 22:55:49,2015-04-18 02:47:11,34,QVPSPJUOCKZAR,SEO,Chrome,M,39,732758368.8,1,US,732758368
1,1,2015-06-07 20:39:50,2015-06-08 01:38:54,16,QVPSPJUOCKZAR,Ads,Safari,F,53,350311387.9,0,US,350311387
2,2,2015-01-01 18:52:44,2015-01-01 18:52:45,15,QVPSPJUOCKZAR,Direct,Chrome,M,53,2621473820.1,0,FR,2621473820
3,3,2015-04-28 21:13:25,2015-05-04 13:54:50,44,EOGFQPIZPYXFZ,SEO,FireFox,F,41,3840542443.9,0,FR,3840542443
4,4,2015-07-21 07:09:52,2015-09-09 18:40:53,39,YSSKYOSJHPPLJ,Ads,IE,M,45,415583117.5,0,FR,415583117
`

func writeFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "transactions.csv")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()
	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	return records
}

func TestCSVSourceLoadsTypedFrame(t *testing.T) {
	logger := zaptest.NewLogger(t)
	source := NewCSVSource(writeFile(t, rawCSV), converter.NewTypeConverter(logger), logger)

	frame, err := source.LoadTransactions(context.Background())
	require.NoError(t, err)
	require.NoError(t, source.Close())

	assert.Equal(t, 5, frame.Len())
	assert.False(t, frame.Has(""), "unnamed index column should be skipped")

	kinds := map[string]model.Kind{
		model.ColUserID:        model.KindInt,
		model.ColSignupTime:    model.KindTime,
		model.ColPurchaseValue: model.KindFloat,
		model.ColCountry:       model.KindString,
		model.ColClass:         model.KindInt,
	}
	for name, kind := range kinds {
		col, err := frame.Column(name)
		require.NoError(t, err)
		assert.Equal(t, kind, col.Kind, name)
	}

	purchase, err := frame.Column(model.ColPurchaseTime)
	require.NoError(t, err)
	times, err := purchase.Times()
	require.NoError(t, err)
	assert.True(t, time.Date(2015, 1, 1, 18, 52, 45, 0, time.UTC).Equal(times[2]), times[2].String())
}

func TestCSVSourceBlankNullableColumns(t *testing.T) {
	logger := zaptest.NewLogger(t)
	blanked := strings.Replace(rawCSV, ",732758368.8,1,US,732758368\n", ",,1,US,\n", 1)
	require.NotEqual(t, rawCSV, blanked)
	source := NewCSVSource(writeFile(t, blanked), converter.NewTypeConverter(logger), logger)

	frame, err := source.LoadTransactions(context.Background())
	require.NoError(t, err)
	require.Equal(t, 5, frame.Len())

	ipInt, err := frame.Column(model.ColIPInt)
	require.NoError(t, err)
	assert.Equal(t, model.KindInt, ipInt.Kind)
	assert.True(t, ipInt.IsNull(0))
	assert.False(t, ipInt.IsNull(1))

	ipAddress, err := frame.Column(model.ColIPAddress)
	require.NoError(t, err)
	vals, err := ipAddress.Floats()
	require.NoError(t, err)
	assert.True(t, math.IsNaN(vals[0]))

	fe, err := features.New(frame, logger)
	require.NoError(t, err)
	require.NoError(t, fe.Pipeline(), "nullable columns are dropped before output")
}

func TestCSVSourceMissingFile(t *testing.T) {
	logger := zaptest.NewLogger(t)
	source := NewCSVSource(filepath.Join(t.TempDir(), "missing.csv"), converter.NewTypeConverter(logger), logger)

	_, err := source.LoadTransactions(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCSVSourceBadCell(t *testing.T) {
	logger := zaptest.NewLogger(t)
	path := writeFile(t, "user_id,purchase_value\n1,abc\n")
	source := NewCSVSource(path, converter.NewTypeConverter(logger), logger)

	_, err := source.LoadTransactions(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 0, column purchase_value")
}

func TestCSVSinkWritesIndexFirst(t *testing.T) {
	logger := zaptest.NewLogger(t)
	frame, err := model.NewFrame(
		model.NewIntColumn(model.ColUserID, []int64{7, 7, 9}),
		model.NewFloatColumn("score", []float64{0.5, math.NaN(), math.Inf(1)}),
		model.NewStringColumn("label", []string{"a", "b", "c"}),
		model.NewNullableIntColumn("count", []int64{1, 0, 3}, []bool{true, false, true}),
	)
	require.NoError(t, err)
	require.NoError(t, frame.SetIndex(model.ColUserID))

	path := filepath.Join(t.TempDir(), "out", "features.csv")
	sink := NewCSVSink(path, logger)
	n, err := sink.WriteFeatures(context.Background(), "run-1", frame)
	require.NoError(t, err)
	require.NoError(t, sink.Close())
	assert.Equal(t, int64(3), n)

	assert.Equal(t, [][]string{
		{"user_id", "score", "label", "count"},
		{"7", "0.5", "a", "1"},
		{"7", "", "b", ""},
		{"9", "inf", "c", "3"},
	}, readCSV(t, path))
}

func TestCSVEndToEnd(t *testing.T) {
	logger := zaptest.NewLogger(t)
	ctx := context.Background()

	source := NewCSVSource(writeFile(t, rawCSV), converter.NewTypeConverter(logger), logger)
	raw, err := source.LoadTransactions(ctx)
	require.NoError(t, err)

	fe, err := features.New(raw, logger, features.WithVelocitySentinel(math.NaN()))
	require.NoError(t, err)
	require.NoError(t, fe.Pipeline())
	processed, err := fe.ProcessedData()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "features.csv")
	n, err := NewCSVSink(path, logger).WriteFeatures(ctx, fe.RunID().String(), processed)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	records := readCSV(t, path)
	require.Len(t, records, 6)
	assert.Equal(t, model.ColUserID, records[0][0])
	assert.Contains(t, records[0], features.ColUserVelocity)
	assert.NotContains(t, records[0], model.ColCountry)
	assert.Contains(t, records[0], model.ColClass)
}
