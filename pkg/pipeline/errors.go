package pipeline

import (
	"errors"
	"fmt"

	"github.com/dd0wney/cluso-tcd/pkg/algorithms"
	"github.com/dd0wney/cluso-tcd/pkg/edgetable"
)

// Sentinel errors of a detection run. ErrInputUnreadable and
// ErrCentralityUndefined are recovered inside Run; the others are returned.
var (
	ErrInputUnreadable     = edgetable.ErrInputUnreadable
	ErrSchemaMismatch      = edgetable.ErrSchemaMismatch
	ErrCentralityUndefined = algorithms.ErrCentralityUndefined
	ErrUnknownNode         = algorithms.ErrUnknownNode
	ErrInvalidConfig       = errors.New("invalid pipeline configuration")
)

// Stage names one step of a run.
type Stage string

const (
	StageConfig           Stage = "config"
	StageLoad             Stage = "load"
	StageSupportFilter    Stage = "support_filter"
	StageBuild            Stage = "build"
	StageCentrality       Stage = "centrality"
	StageCentralityFilter Stage = "centrality_filter"
	StageComponents       Stage = "components"
	StageWrite            Stage = "write"
)

// PipelineError provides structured error information for a failed stage.
type PipelineError struct {
	Stage   Stage  // Stage that failed
	Cause   error  // Underlying error
	Context string // Additional context, e.g. the input location
}

// Error implements the error interface.
func (e *PipelineError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s (%s): %v", e.Stage, e.Context, e.Cause)
	}
	return fmt.Sprintf("%s: %v", e.Stage, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target error matches this error or its cause.
func (e *PipelineError) Is(target error) bool {
	if target == nil {
		return false
	}
	return errors.Is(e.Cause, target)
}

func stageError(stage Stage, context string, cause error) error {
	return &PipelineError{Stage: stage, Cause: cause, Context: context}
}
