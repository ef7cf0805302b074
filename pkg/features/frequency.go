// pkg/features/frequency.go
package features

import (
	"math"

	"github.com/suraphelalemu/Detection-of-Fraud/pkg/model"
)

// Frequency counts rows per user and per device and derives user velocity
type Frequency struct {
	UserColumn   string
	DeviceColumn string
	DelayColumn  string
	// Sentinel, when set, replaces non-finite velocity values
	Sentinel *float64
}

// NewFrequency returns the frequency/velocity step
func NewFrequency() Frequency {
	return Frequency{
		UserColumn:   model.ColUserID,
		DeviceColumn: model.ColDeviceID,
		DelayColumn:  ColPurchaseDelay,
	}
}

func (s Frequency) Name() string { return StageFrequency }
func (s Frequency) Requires() []string {
	return []string{s.UserColumn, s.DeviceColumn, s.DelayColumn}
}
func (s Frequency) Produces() []string {
	return []string{ColUserFrequency, ColDeviceFrequency, ColUserVelocity}
}
func (s Frequency) Removes() []string { return nil }

// Apply adds both frequency columns and the velocity column.
// Velocity uses IEEE division: a zero delay yields +Inf, a NaN delay yields NaN.
// Rows with a missing id get a null frequency, and a missing user id gives NaN velocity.
func (s Frequency) Apply(f *model.Frame) error {
	userCol, err := f.Column(s.UserColumn)
	if err != nil {
		return err
	}
	deviceCol, err := f.Column(s.DeviceColumn)
	if err != nil {
		return err
	}
	delayCol, err := f.Column(s.DelayColumn)
	if err != nil {
		return err
	}
	delays, err := delayCol.Floats()
	if err != nil {
		return err
	}

	userFreq, userKnown := countByKey(userCol)
	deviceFreq, deviceKnown := countByKey(deviceCol)

	velocity := make([]float64, len(userFreq))
	for i, freq := range userFreq {
		v := math.NaN()
		if userKnown[i] {
			v = float64(freq) / delays[i]
		}
		if s.Sentinel != nil && (math.IsInf(v, 0) || math.IsNaN(v)) {
			v = *s.Sentinel
		}
		velocity[i] = v
	}

	for _, col := range []*model.Column{
		model.NewNullableIntColumn(ColUserFrequency, userFreq, userKnown),
		model.NewNullableIntColumn(ColDeviceFrequency, deviceFreq, deviceKnown),
		model.NewFloatColumn(ColUserVelocity, velocity),
	} {
		if err := f.Set(col); err != nil {
			return err
		}
	}
	return nil
}

// countByKey returns, for every row, how many rows share its key. Rows with
// an empty key are not counted and are reported as unknown.
func countByKey(col *model.Column) ([]int64, []bool) {
	n := col.Len()
	keys := make([]string, n)
	counts := make(map[string]int64)
	for i := 0; i < n; i++ {
		keys[i] = col.Key(i)
		if keys[i] != "" {
			counts[keys[i]]++
		}
	}

	out := make([]int64, n)
	known := make([]bool, n)
	for i, key := range keys {
		if key == "" {
			continue
		}
		out[i], known[i] = counts[key], true
	}
	return out, known
}
