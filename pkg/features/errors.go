// pkg/features/errors.go
package features

import (
	"errors"
	"fmt"

	"github.com/suraphelalemu/Detection-of-Fraud/pkg/model"
)

var (
	// ErrNotProcessed is returned when processed data is requested before the
	// pipeline has completed
	ErrNotProcessed = errors.New("data has not been processed, run the pipeline first")
	// ErrNonFinite is returned when the scaler meets an infinite value
	ErrNonFinite = errors.New("input contains infinity")
	// ErrNotFitted is returned when a scaler transforms before fitting
	ErrNotFitted = errors.New("scaler has not been fitted")
	// ErrParse is returned when a raw value cannot be parsed
	ErrParse = errors.New("parse error")
	// ErrPlan is returned when a step contract cannot be satisfied
	ErrPlan = errors.New("invalid step plan")
)

// Category classifies stage failures
type Category int

const (
	CategoryUnknown Category = iota
	// CategorySchema covers missing or mistyped columns
	CategorySchema
	// CategoryParse covers unparseable raw values
	CategoryParse
	// CategoryNumeric covers numeric degeneracy the scaler refuses
	CategoryNumeric
	// CategoryState covers calls made in the wrong lifecycle state
	CategoryState
)

// String returns a string representation of the category
func (c Category) String() string {
	switch c {
	case CategorySchema:
		return "Schema"
	case CategoryParse:
		return "Parse"
	case CategoryNumeric:
		return "Numeric"
	case CategoryState:
		return "State"
	default:
		return fmt.Sprintf("Unknown(%d)", int(c))
	}
}

// StageError carries the failing stage and the underlying cause
type StageError struct {
	Stage    string
	Category Category
	Err      error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s [%s]: %v", e.Stage, e.Category, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// newStageError wraps err with the stage name. An existing StageError is returned as-is.
func newStageError(stage string, err error) error {
	if err == nil {
		return nil
	}
	var se *StageError
	if errors.As(err, &se) {
		return err
	}
	return &StageError{Stage: stage, Category: categorize(err), Err: err}
}

func categorize(err error) Category {
	switch {
	case errors.Is(err, model.ErrColumnNotFound),
		errors.Is(err, model.ErrColumnKind),
		errors.Is(err, model.ErrLengthMismatch),
		errors.Is(err, ErrPlan):
		return CategorySchema
	case errors.Is(err, ErrParse):
		return CategoryParse
	case errors.Is(err, ErrNonFinite):
		return CategoryNumeric
	case errors.Is(err, ErrNotProcessed), errors.Is(err, ErrNotFitted):
		return CategoryState
	default:
		return CategoryUnknown
	}
}
