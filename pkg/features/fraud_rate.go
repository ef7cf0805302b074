// pkg/features/fraud_rate.go
package features

import (
	"github.com/suraphelalemu/Detection-of-Fraud/pkg/model"
)

// Derived column names
const (
	ColFraudRate       = "fraud_rate"
	ColHourOfDay       = "hour_of_day"
	ColDayOfWeek       = "day_of_week"
	ColPurchaseDelay   = "purchase_delay"
	ColUserFrequency   = "user_transaction_frequency"
	ColDeviceFrequency = "device_transaction_frequency"
	ColUserVelocity    = "user_transaction_velocity"
)

// FraudRate joins the per-group share of positive labels back onto every row
type FraudRate struct {
	GroupColumn string
	LabelColumn string
	Output      string
}

// NewFraudRate returns the per-country fraud rate step
func NewFraudRate() FraudRate {
	return FraudRate{
		GroupColumn: model.ColCountry,
		LabelColumn: model.ColClass,
		Output:      ColFraudRate,
	}
}

func (s FraudRate) Name() string       { return StageFraudRate }
func (s FraudRate) Requires() []string { return []string{s.GroupColumn, s.LabelColumn} }
func (s FraudRate) Produces() []string { return []string{s.Output} }
func (s FraudRate) Removes() []string  { return nil }

// Apply adds the rate column. Rows with an empty group key form no group and get 0.
func (s FraudRate) Apply(f *model.Frame) error {
	group, err := f.Column(s.GroupColumn)
	if err != nil {
		return err
	}
	labelCol, err := f.Column(s.LabelColumn)
	if err != nil {
		return err
	}
	labels, err := labelCol.Floats()
	if err != nil {
		return err
	}

	n := f.Len()
	keys := make([]string, n)
	totals := make(map[string]int)
	frauds := make(map[string]int)
	for i := 0; i < n; i++ {
		key := group.Key(i)
		keys[i] = key
		if key == "" {
			continue
		}
		totals[key]++
		if labels[i] == 1 {
			frauds[key]++
		}
	}

	rates := make([]float64, n)
	for i, key := range keys {
		total := totals[key]
		if total == 0 {
			continue
		}
		rates[i] = float64(frauds[key]) / float64(total)
	}

	return f.Set(model.NewFloatColumn(s.Output, rates))
}
