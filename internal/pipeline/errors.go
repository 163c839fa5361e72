package pipeline

import (
	"errors"
	"fmt"
)

// ErrMissingEmissions marks an in-range emissions row without a value.
var ErrMissingEmissions = errors.New("missing values found in annual CO2 emissions data")

// ErrUnknownPipeline is returned for a name that is not registered.
var ErrUnknownPipeline = errors.New("unknown pipeline")

// ValidationError is a data check that aborted a pipeline before output.
type ValidationError struct {
	Pipeline string
	Rows     int
	Err      error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v (%d row(s))", e.Pipeline, e.Err, e.Rows)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
