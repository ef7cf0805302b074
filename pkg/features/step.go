// pkg/features/step.go
package features

import (
	"fmt"

	"github.com/suraphelalemu/Detection-of-Fraud/pkg/model"
)

// Stage names, also used as metric labels
const (
	StageFraudRate = "fraud_rate"
	StageTemporal  = "datetime"
	StageFrequency = "transaction_frequency"
	StageEncoding  = "categorical_encoding"
	StageScaling   = "normalize_and_scale"
	StageFinalize  = "finalize"
	StagePlan      = "plan"
)

// Step is one named transformation over the transaction frame. Apply mutates
// the frame in place and does not log; the caller owns logging.
type Step interface {
	Name() string
	// Requires lists the columns that must exist before Apply
	Requires() []string
	// Produces lists the columns Apply is guaranteed to add
	Produces() []string
	// Removes lists the columns Apply takes away
	Removes() []string
	Apply(f *model.Frame) error
}

// ValidatePlan checks that every step's required columns are present in the
// input or produced by an earlier step, before anything runs
func ValidatePlan(columns []string, steps []Step) error {
	available := make(map[string]string, len(columns))
	for _, name := range columns {
		available[name] = "input"
	}
	removedBy := make(map[string]string)

	for _, step := range steps {
		for _, name := range step.Requires() {
			if _, ok := available[name]; ok {
				continue
			}
			if by, ok := removedBy[name]; ok {
				return &StageError{
					Stage:    step.Name(),
					Category: CategorySchema,
					Err:      fmt.Errorf("%w: column %q is removed by %s before it is needed", ErrPlan, name, by),
				}
			}
			return &StageError{
				Stage:    step.Name(),
				Category: CategorySchema,
				Err:      fmt.Errorf("%w: column %q is neither an input nor produced by an earlier step", ErrPlan, name),
			}
		}
		for _, name := range step.Removes() {
			delete(available, name)
			removedBy[name] = step.Name()
		}
		for _, name := range step.Produces() {
			available[name] = step.Name()
			delete(removedBy, name)
		}
	}
	return nil
}
