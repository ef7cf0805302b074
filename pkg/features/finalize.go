// pkg/features/finalize.go
package features

import (
	"github.com/suraphelalemu/Detection-of-Fraud/pkg/model"
)

// ExcludedColumns are identifier and leakage-prone columns removed at the end
var ExcludedColumns = []string{
	model.ColSignupTime,
	model.ColPurchaseTime,
	model.ColIPAddress,
	model.ColDeviceID,
	model.ColIPInt,
	model.ColCountry,
}

// Finalize drops excluded columns and moves the key column into the row index
type Finalize struct {
	DropColumns []string
	IndexColumn string
}

// NewFinalize returns the finalization step keyed by user_id
func NewFinalize() Finalize {
	return Finalize{DropColumns: ExcludedColumns, IndexColumn: model.ColUserID}
}

func (s Finalize) Name() string { return StageFinalize }
func (s Finalize) Requires() []string {
	return append(append([]string(nil), s.DropColumns...), s.IndexColumn)
}
func (s Finalize) Produces() []string { return nil }
func (s Finalize) Removes() []string {
	return append(append([]string(nil), s.DropColumns...), s.IndexColumn)
}

func (s Finalize) Apply(f *model.Frame) error {
	if err := f.Drop(s.DropColumns...); err != nil {
		return err
	}
	return f.SetIndex(s.IndexColumn)
}
