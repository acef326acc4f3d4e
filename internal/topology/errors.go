package topology

import (
	"errors"
	"strconv"
)

// ErrUnknownBus is returned when a step names a bus not in the forest.
var ErrUnknownBus = errors.New("unknown bus")

// StepError reports the link or step that failed.
type StepError struct {
	// Index is the position of the link or step in the document.
	Index int

	// Kind is "link", "attach", "detach" or "broadcast".
	Kind string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *StepError) Error() string {
	return e.Kind + " " + strconv.Itoa(e.Index) + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *StepError) Unwrap() error {
	return e.Err
}
