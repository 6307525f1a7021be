package config

import "fmt"

// SimError is the engine's typed error, carrying enough structure for
// callers to distinguish failure sites programmatically (errors.As) while
// still reading as a normal error message.
type SimError struct {
	Component string
	Operation string
	Message   string
	Err       error
}

func (e *SimError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Component, e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Component, e.Operation, e.Message)
}

func (e *SimError) Unwrap() error {
	return e.Err
}

// NewError constructs a SimError.
func NewError(component, operation, message string, err error) *SimError {
	return &SimError{Component: component, Operation: operation, Message: message, Err: err}
}
