package script

import "errors"

// Errors for script operations.
var (
	// ErrClosed is returned when operating on a closed script.
	ErrClosed = errors.New("script is closed")

	// ErrNoHandler is returned when a script does not define on_message.
	ErrNoHandler = errors.New("script does not define on_message")
)

// ScriptError wraps a failure raised while loading or running a script.
type ScriptError struct {
	// Path is the script file.
	Path string

	// Op is "load" or "on_message".
	Op string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ScriptError) Error() string {
	return "script " + e.Path + ": " + e.Op + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ScriptError) Unwrap() error {
	return e.Err
}
