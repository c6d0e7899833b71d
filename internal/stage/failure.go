// Package stage runs a single pipeline stage: render the prompt, call the
// model, extract and validate its record, and substitute a fallback on any
// failure.
package stage

import (
	"fmt"

	"github.com/jywlabs/analyst/internal/record"
)

// FailureKind classifies why a stage fell back.
type FailureKind string

const (
	KindModel      FailureKind = "model_invocation"
	KindSearch     FailureKind = "search"
	KindExtraction FailureKind = "extraction"
	KindValidation FailureKind = "validation"
)

// Failure is a stage-local failure. It never escapes a Runner method; it is
// reported through Outcome.
type Failure struct {
	Kind  FailureKind
	Stage record.Stage
	Err   error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s %s failure: %v", f.Stage, f.Kind, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Outcome reports how a stage record was produced.
type Outcome struct {
	Degraded bool
	Failure  *Failure // nil when Degraded is false
}

func ok() Outcome {
	return Outcome{}
}

func degraded(f *Failure) Outcome {
	return Outcome{Degraded: true, Failure: f}
}
