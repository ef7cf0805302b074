// pkg/features/temporal.go
package features

import (
	"fmt"
	"time"

	"github.com/suraphelalemu/Detection-of-Fraud/pkg/converter"
	"github.com/suraphelalemu/Detection-of-Fraud/pkg/model"
)

// Temporal derives hour-of-day, day-of-week and signup-to-purchase delay
type Temporal struct {
	SignupColumn   string
	PurchaseColumn string
	// Location for zone-less timestamp text
	Location *time.Location
}

// NewTemporal returns the datetime step over signup_time and purchase_time
func NewTemporal() Temporal {
	return Temporal{
		SignupColumn:   model.ColSignupTime,
		PurchaseColumn: model.ColPurchaseTime,
		Location:       time.UTC,
	}
}

func (s Temporal) Name() string       { return StageTemporal }
func (s Temporal) Requires() []string { return []string{s.SignupColumn, s.PurchaseColumn} }
func (s Temporal) Produces() []string {
	return []string{ColHourOfDay, ColDayOfWeek, ColPurchaseDelay}
}
func (s Temporal) Removes() []string { return nil }

// Apply parses both timestamp columns in place and adds the derived columns.
// The delay is not validated and may be zero or negative.
func (s Temporal) Apply(f *model.Frame) error {
	signup, err := s.parse(f, s.SignupColumn)
	if err != nil {
		return err
	}
	purchase, err := s.parse(f, s.PurchaseColumn)
	if err != nil {
		return err
	}

	n := f.Len()
	hours := make([]int64, n)
	days := make([]int64, n)
	delays := make([]float64, n)
	for i := 0; i < n; i++ {
		p := purchase[i]
		hours[i] = int64(p.Hour())
		days[i] = int64(mondayFirst(p.Weekday()))
		delays[i] = p.Sub(signup[i]).Hours()
	}

	for _, col := range []*model.Column{
		model.NewTimeColumn(s.SignupColumn, signup),
		model.NewTimeColumn(s.PurchaseColumn, purchase),
		model.NewIntColumn(ColHourOfDay, hours),
		model.NewIntColumn(ColDayOfWeek, days),
		model.NewFloatColumn(ColPurchaseDelay, delays),
	} {
		if err := f.Set(col); err != nil {
			return err
		}
	}
	return nil
}

func (s Temporal) parse(f *model.Frame, name string) ([]time.Time, error) {
	col, err := f.Column(name)
	if err != nil {
		return nil, err
	}
	if col.Kind == model.KindTime {
		return col.Times()
	}
	raw, err := col.Strings()
	if err != nil {
		return nil, err
	}

	loc := s.Location
	if loc == nil {
		loc = time.UTC
	}
	out := make([]time.Time, len(raw))
	for i, v := range raw {
		t, err := converter.ToTimeIn(v, loc)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d, column %s: %w", ErrParse, i, name, err)
		}
		out[i] = t
	}
	return out, nil
}

// mondayFirst maps time.Weekday (Sunday=0) to Monday=0 .. Sunday=6
func mondayFirst(d time.Weekday) int {
	return (int(d) + 6) % 7
}
