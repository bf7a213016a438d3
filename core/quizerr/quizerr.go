// Package quizerr provides standardized error types for the QuizForge pipeline.
//
// The taxonomy draws a firm line between caller-data problems and defects:
// SpecError, StructuralError, and BoundsError mean the author's input needs
// editing; GenerationError always means a bug in this codebase. Fairness
// findings are warnings, not errors, and never abort a run.
package quizerr

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for errors.Is matching.
var (
	// ErrSpec indicates the input spec could not be parsed.
	ErrSpec = errors.New("spec error")
	// ErrStructural indicates the parsed quiz violates a structural rule.
	ErrStructural = errors.New("structural error")
	// ErrBounds indicates a self-contradictory numeric tolerance.
	ErrBounds = errors.New("bounds error")
	// ErrGeneration indicates an internal invariant violation during output generation.
	ErrGeneration = errors.New("generation error")
)

// SpecError is a parse-time failure with a locator into the source spec.
type SpecError struct {
	Line  int    // 1-based line of the offending block; 0 when unknown
	Block int    // 1-based block index; 0 when unknown
	Cause string // human-readable cause
	Err   error  // underlying error, if any
}

func (e *SpecError) Error() string {
	switch {
	case e.Line > 0 && e.Block > 0:
		return fmt.Sprintf("spec error at line %d (block %d): %s", e.Line, e.Block, e.Cause)
	case e.Line > 0:
		return fmt.Sprintf("spec error at line %d: %s", e.Line, e.Cause)
	case e.Block > 0:
		return fmt.Sprintf("spec error in block %d: %s", e.Block, e.Cause)
	default:
		return fmt.Sprintf("spec error: %s", e.Cause)
	}
}

func (e *SpecError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrSpec
}

// Specf builds a SpecError with a formatted cause.
func Specf(line, block int, format string, args ...any) *SpecError {
	return &SpecError{Line: line, Block: block, Cause: fmt.Sprintf(format, args...)}
}

// StructuralError is a single hard validation failure on one item.
type StructuralError struct {
	Index   int    // 1-based item position in the quiz; 0 for quiz-level failures
	Kind    string // item kind label, empty for quiz-level failures
	Message string
}

func (e *StructuralError) Error() string {
	if e.Index > 0 {
		return fmt.Sprintf("item %d (%s): %s", e.Index, e.Kind, e.Message)
	}
	return e.Message
}

func (e *StructuralError) Unwrap() error { return ErrStructural }

// StructuralErrors aggregates every hard failure found in one validation
// pass so the author can fix them all at once.
type StructuralErrors []*StructuralError

func (e StructuralErrors) Error() string {
	if len(e) == 1 {
		return "validation failed: " + e[0].Error()
	}
	parts := make([]string, len(e))
	for i, err := range e {
		parts[i] = err.Error()
	}
	return fmt.Sprintf("validation failed (%d errors): %s", len(e), strings.Join(parts, "; "))
}

func (e StructuralErrors) Unwrap() error { return ErrStructural }

// BoundsError indicates a numeric tolerance that cannot yield a valid
// acceptance interval.
type BoundsError struct {
	Mode    string // tolerance mode label
	Message string
}

func (e *BoundsError) Error() string {
	if e.Mode != "" {
		return fmt.Sprintf("bounds error (%s): %s", e.Mode, e.Message)
	}
	return "bounds error: " + e.Message
}

func (e *BoundsError) Unwrap() error { return ErrBounds }

// GenerationError is an internal invariant violation. It is never the
// author's fault and no partial output may survive it.
type GenerationError struct {
	Stage   string // pipeline stage (e.g. "formatter", "crosscheck")
	Message string
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation error in %s: %s", e.Stage, e.Message)
}

func (e *GenerationError) Unwrap() error { return ErrGeneration }

// Generationf builds a GenerationError with a formatted message.
func Generationf(stage, format string, args ...any) *GenerationError {
	return &GenerationError{Stage: stage, Message: fmt.Sprintf(format, args...)}
}

// FairnessWarning is a soft finding. Warnings accumulate alongside a
// still-valid output and never abort the pipeline.
type FairnessWarning struct {
	Code    string // stable machine code, e.g. "longest-bias"
	Message string
}

func (w FairnessWarning) String() string {
	return fmt.Sprintf("[%s] %s", w.Code, w.Message)
}
