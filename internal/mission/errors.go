package mission

import (
	"fmt"

	"github.com/purrsec/Hackathon-parrotAI/internal/types"
)

// ErrNoSuchPending is reported when confirm/reject names an id with no
// pending entry, whether it never existed or was already resolved.
var ErrNoSuchPending = types.NewError(types.MISSION_NOT_PENDING, "no such pending mission")

// GenerationError means the language model's output could not be turned
// into a mission plan after retries. It carries the raw text for operator
// display; it is surfaced to the caller, never raised past it.
type GenerationError struct {
	// Raw is the model's final raw response text.
	Raw string

	// Cause is the extraction or decode failure.
	Cause error
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to generate mission plan: %v", e.Cause)
	}
	return "failed to generate mission plan"
}

// Unwrap returns the underlying cause.
func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// ValidationError means a plan is structurally unfit to run and was
// rejected before any flight command was issued.
type ValidationError struct {
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return "invalid mission plan: " + e.Reason
}
