// pkg/model/frame_test.go
package model

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFrame(t *testing.T) *Frame {
	t.Helper()
	f, err := NewFrame(
		NewIntColumn("user_id", []int64{1, 2, 1}),
		NewStringColumn("country", []string{"US", "FR", "US"}),
		NewFloatColumn("purchase_value", []float64{10, 20, 30}),
	)
	require.NoError(t, err)
	return f
}

func TestNewFrameRejectsLengthMismatch(t *testing.T) {
	_, err := NewFrame(
		NewIntColumn("a", []int64{1, 2}),
		NewIntColumn("b", []int64{1}),
	)
	assert.True(t, errors.Is(err, ErrLengthMismatch))
}

func TestFrameSetReplacesInPlace(t *testing.T) {
	f := testFrame(t)
	require.NoError(t, f.Set(NewFloatColumn("country", []float64{1, 2, 3})))

	assert.Equal(t, []string{"user_id", "country", "purchase_value"}, f.Names())
	col, err := f.Column("country")
	require.NoError(t, err)
	assert.Equal(t, KindFloat, col.Kind)
}

func TestFrameDrop(t *testing.T) {
	f := testFrame(t)
	require.NoError(t, f.Drop("country"))
	assert.Equal(t, []string{"user_id", "purchase_value"}, f.Names())
	assert.Equal(t, 3, f.Len())

	err := f.Drop("purchase_value", "missing")
	assert.True(t, errors.Is(err, ErrColumnNotFound))
	assert.True(t, f.Has("purchase_value"), "failed drop must leave the frame unchanged")
}

func TestFrameSetIndexAllowsDuplicates(t *testing.T) {
	f := testFrame(t)
	require.NoError(t, f.SetIndex("user_id"))

	assert.False(t, f.Has("user_id"))
	require.NotNil(t, f.Index())
	assert.Equal(t, "user_id", f.Index().Name)
	ids, err := f.Index().Ints()
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 1}, ids)
}

func TestFrameCloneIsDeep(t *testing.T) {
	f := testFrame(t)
	clone := f.Clone()

	col, err := clone.Column("purchase_value")
	require.NoError(t, err)
	vals, err := col.Floats()
	require.NoError(t, err)
	vals[0] = 99

	orig, _ := f.Column("purchase_value")
	origVals, _ := orig.Floats()
	assert.Equal(t, 10.0, origVals[0])
}

func TestColumnFloatsCoercion(t *testing.T) {
	vals, err := NewBoolColumn("b", []bool{true, false}).Floats()
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0}, vals)

	vals, err = NewIntColumn("i", []int64{3, 4}).Floats()
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 4}, vals)

	_, err = NewStringColumn("s", []string{"x"}).Floats()
	assert.True(t, errors.Is(err, ErrColumnKind))

	_, err = NewTimeColumn("t", []time.Time{time.Now()}).Floats()
	assert.True(t, errors.Is(err, ErrColumnKind))
}

func TestColumnKey(t *testing.T) {
	assert.Equal(t, "42", NewIntColumn("i", []int64{42}).Key(0))
	assert.Equal(t, "abc", NewStringColumn("s", []string{"abc"}).Key(0))
	assert.Equal(t, "1.5", NewFloatColumn("f", []float64{1.5}).Key(0))
}

func TestTransactionSchemaLookup(t *testing.T) {
	schema := TransactionSchema()
	assert.Len(t, schema.Columns, 13)

	col := schema.GetColumnByName("PURCHASE_TIME")
	require.NotNil(t, col)
	assert.Equal(t, KindTime, col.Kind)
	assert.Nil(t, schema.GetColumnByName("nope"))
}

func TestNullableIntColumn(t *testing.T) {
	col := NewNullableIntColumn("ip_int", []int64{7, 0, 9}, []bool{true, false, true})

	assert.False(t, col.IsNull(0))
	assert.True(t, col.IsNull(1))
	assert.Equal(t, "", col.Key(1))
	assert.Nil(t, col.Value(1))
	assert.Equal(t, int64(9), col.Value(2))

	vals, err := col.Floats()
	require.NoError(t, err)
	assert.Equal(t, 7.0, vals[0])
	assert.True(t, math.IsNaN(vals[1]))

	_, err = col.Ints()
	assert.True(t, errors.Is(err, ErrNullValue))
}

func TestTimeColumnKeepsOffset(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	ts := time.Date(2015, 4, 18, 2, 47, 11, 500, loc)

	times, err := NewTimeColumn("t", []time.Time{ts}).Times()
	require.NoError(t, err)
	assert.True(t, ts.Equal(times[0]))
	assert.Equal(t, 2, times[0].Hour())
}

func TestFrameDropEveryColumnKeepsRowCount(t *testing.T) {
	f := testFrame(t)
	require.NoError(t, f.SetIndex("user_id"))
	require.NoError(t, f.Drop("country", "purchase_value"))

	assert.Empty(t, f.Names())
	assert.Equal(t, 3, f.Len())
	assert.Equal(t, 0, f.Clone().DataFrame().Ncol())
}

func TestFromDataFrame(t *testing.T) {
	df := dataframe.New(
		series.New([]int{1, 2}, series.Int, "user_id"),
		series.New([]string{"US", "FR"}, series.String, "country"),
		series.New([]float64{1.5, 2.5}, series.Float, "purchase_value"),
	)
	f, err := FromDataFrame(df)
	require.NoError(t, err)

	assert.Equal(t, 2, f.Len())
	col, err := f.Column("purchase_value")
	require.NoError(t, err)
	assert.Equal(t, KindFloat, col.Kind)

	require.NoError(t, f.Set(NewFloatColumn("fraud_rate", []float64{0, 1})))
	assert.Equal(t, []string{"user_id", "country", "purchase_value", "fraud_rate"}, f.DataFrame().Names())
	assert.Equal(t, 3, df.Ncol(), "the wrapped DataFrame must not change")
}
